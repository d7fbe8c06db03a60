package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable/internal/service"
	"github.com/noah-isme/sma-timetable/pkg/response"
)

type namedCatalog[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int64) (*T, error)
	Create(ctx context.Context, req service.NameRequest) (*T, error)
	Rename(ctx context.Context, id int64, req service.NameRequest) (*T, error)
	Delete(ctx context.Context, id int64) error
}

// namedHandler serves the CRUD routes shared by teachers, plans, cycles and shifts.
type namedHandler[T any] struct {
	catalog namedCatalog[T]
}

func (h namedHandler[T]) List(c *gin.Context) {
	items, err := h.catalog.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

func (h namedHandler[T]) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	item, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item)
}

func (h namedHandler[T]) Create(c *gin.Context) {
	var req service.NameRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.catalog.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

func (h namedHandler[T]) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.NameRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.catalog.Rename(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item)
}

func (h namedHandler[T]) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// link binds a LinkRequest and hands it to fn with the path id.
func link(c *gin.Context, fn func(ctx context.Context, id int64, req service.LinkRequest) error) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.LinkRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := fn(c.Request.Context(), id, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// unlink reads both path ids and hands them to fn.
func unlink(c *gin.Context, other string, fn func(ctx context.Context, id, otherID int64) error) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	otherID, ok := pathID(c, other)
	if !ok {
		return
	}
	if err := fn(c.Request.Context(), id, otherID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func listBy[T any](c *gin.Context, fn func(ctx context.Context, id int64) ([]T, error)) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	items, err := fn(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}
