package store

import (
	"context"
	"errors"

	"github.com/agency/backend/internal/domain/content"
	"github.com/agency/backend/internal/domain/system"
)

// ContentTables are the remote tables of the content store. Nil fields keep
// the matching collection in memory.
type ContentTables struct {
	Services Table
	Articles Table
}

// ContentStore owns the public catalogue
type ContentStore struct {
	rt       *runtime
	Services *Collection[*content.Service]
	Articles *Collection[*content.Article]
}

// NewContentStore creates the store
func NewContentStore(tables ContentTables, opts Options) *ContentStore {
	rt := newRuntime(opts, "content_store")
	return &ContentStore{
		rt: rt,
		Services: newCollection(rt, "services", content.ServiceIDPrefix, system.ActivityTypeService,
			tables.Services, func() *content.Service { return &content.Service{} }),
		Articles: newCollection(rt, "articles", content.ArticleIDPrefix, system.ActivityTypeArticle,
			tables.Articles, func() *content.Article { return &content.Article{} }),
	}
}

// Init loads every collection from the remote
func (s *ContentStore) Init(ctx context.Context) error {
	return errors.Join(s.Services.Load(ctx), s.Articles.Load(ctx))
}

// Dispose waits for in-flight writes
func (s *ContentStore) Dispose(ctx context.Context) error {
	return s.rt.wait(ctx)
}

// Wait blocks until every dispatched write has finished
func (s *ContentStore) Wait() {
	s.rt.wg.Wait()
}
