package router

import (
	"fmt"

	"github.com/agency/backend/internal/infrastructure/config"
	"github.com/agency/backend/internal/infrastructure/logger"
	"github.com/agency/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EngineConfig configures the gin engine
type EngineConfig struct {
	HTTP        config.HTTPConfig
	Env         string
	ServiceName string
	Tracing     bool
	BodyLimit   int64
	Logger      *zap.Logger
}

// NewEngine creates a gin engine with the middleware chain every route shares:
// request id, access log, panic recovery, tracing, CORS, the optional rate
// limit and the body limit.
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = middleware.DefaultBodyLimit
	}
	if err := middleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(cfg.Logger),
		logger.Recovery(cfg.Logger),
	)
	engine.Use(middleware.Tracing(cfg.ServiceName, cfg.Tracing)...)
	engine.Use(middleware.CORS(cfg.HTTP))
	if cfg.HTTP.RateLimit > 0 {
		engine.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateLimitWindow)))
	}
	engine.Use(middleware.BodyLimit(cfg.BodyLimit))
	return engine, nil
}
