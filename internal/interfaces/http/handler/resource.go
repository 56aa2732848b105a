package handler

import (
	"github.com/agency/backend/internal/application/store"
	"github.com/gin-gonic/gin"
)

// ResourceHandler serves list/get/create/update/delete for one store
// collection. C is the create body and U the update body.
type ResourceHandler[T store.Record[T], C any, U any] struct {
	BaseHandler
	name     string
	items    *store.Collection[T]
	toRecord func(C) T
	toPatch  func(U) store.Patch[T]
}

// NewResourceHandler creates a handler over items. name is used in error messages.
func NewResourceHandler[T store.Record[T], C any, U any](
	name string,
	items *store.Collection[T],
	toRecord func(C) T,
	toPatch func(U) store.Patch[T],
) *ResourceHandler[T, C, U] {
	return &ResourceHandler[T, C, U]{
		name:     name,
		items:    items,
		toRecord: toRecord,
		toPatch:  toPatch,
	}
}

// List returns every record in insertion order
func (h *ResourceHandler[T, C, U]) List(c *gin.Context) {
	items := h.items.List()
	h.SuccessList(c, items, len(items))
}

// Get returns one record
func (h *ResourceHandler[T, C, U]) Get(c *gin.Context) {
	rec, ok := h.items.Get(c.Param("id"))
	if !ok {
		h.NotFound(c, h.name+" not found")
		return
	}
	h.Success(c, rec)
}

// Create stores a new record. The remote insert runs in the background; the
// response carries the record as held in memory.
func (h *ResourceHandler[T, C, U]) Create(c *gin.Context) {
	var req C
	if !h.BindJSON(c, &req) {
		return
	}
	id := h.items.Create(c.Request.Context(), h.toRecord(req))
	rec, ok := h.items.Get(id)
	if !ok {
		// rolled back before we could read it
		h.NotFound(c, h.name+" not found")
		return
	}
	h.Created(c, rec)
}

// Update merges the body into an existing record
func (h *ResourceHandler[T, C, U]) Update(c *gin.Context) {
	var req U
	if !h.BindJSON(c, &req) {
		return
	}
	id := c.Param("id")
	if !h.items.Update(c.Request.Context(), id, h.toPatch(req)) {
		h.NotFound(c, h.name+" not found")
		return
	}
	rec, ok := h.items.Get(id)
	if !ok {
		h.NotFound(c, h.name+" not found")
		return
	}
	h.Success(c, rec)
}

// Delete removes a record
func (h *ResourceHandler[T, C, U]) Delete(c *gin.Context) {
	if !h.items.Delete(c.Request.Context(), c.Param("id")) {
		h.NotFound(c, h.name+" not found")
		return
	}
	h.NoContent(c)
}
