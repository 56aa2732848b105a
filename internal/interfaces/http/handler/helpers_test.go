package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/agency/backend/internal/application/activity"
	"github.com/agency/backend/internal/application/store"
	"github.com/agency/backend/internal/application/syncer"
	"github.com/agency/backend/internal/domain/shared"
	"github.com/agency/backend/internal/domain/system"
	"github.com/agency/backend/internal/interfaces/http/dto"
	"github.com/agency/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return testNow }

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := middleware.RegisterValidators(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// memoryRemote is an in-memory settings row
type memoryRemote struct {
	mu  sync.Mutex
	row *system.SiteSettings
	err error
}

func (m *memoryRemote) Get(_ context.Context, _ string) (*system.SiteSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.row == nil {
		return nil, shared.ErrNotFound
	}
	return m.row.Clone(), nil
}

func (m *memoryRemote) Upsert(_ context.Context, s *system.SiteSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.row = s.Clone()
	return nil
}

func (m *memoryRemote) set(s *system.SiteSettings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.row = s.Clone()
}

func (m *memoryRemote) current() *system.SiteSettings {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.row == nil {
		return nil
	}
	return m.row.Clone()
}

type fixture struct {
	tracker  *syncer.Tracker
	activity *activity.Log
	business *store.BusinessStore
	content  *store.ContentStore
	system   *store.SystemStore
	remote   *memoryRemote
}

// newFixture builds in-memory stores over one tracker. The settings store
// writes to an in-memory remote.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	tracker := syncer.NewTracker(time.Hour)
	t.Cleanup(tracker.Close)

	log := activity.NewLog(100, activity.WithClock(clock))
	remote := &memoryRemote{}
	opts := store.Options{Tracker: tracker, Activity: log, Clock: clock}
	return &fixture{
		tracker:  tracker,
		activity: log,
		business: store.NewBusinessStore(store.BusinessTables{}, opts),
		content:  store.NewContentStore(store.ContentTables{}, opts),
		system:   store.NewSystemStore(remote, opts),
		remote:   remote,
	}
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func dataMap(t *testing.T, resp dto.Response) map[string]any {
	t.Helper()
	m, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data is %T", resp.Data)
	return m
}
