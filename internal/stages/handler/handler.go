package handler

import (
	"errors"
	"net/http"

	"leadflow_backend/internal/stages/domain"
	"leadflow_backend/internal/stages/transport"
	"leadflow_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	resolver *domain.Resolver
}

func New(resolver *domain.Resolver) *Handler {
	return &Handler{resolver: resolver}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/resolve", h.Resolve)
}

// List returns the stage catalog in load order.
func (h *Handler) List(c *gin.Context) {
	catalog := h.resolver.Catalog()
	items := make([]transport.StageResponse, 0, catalog.Len())
	for _, stage := range catalog.Stages() {
		items = append(items, transport.StageResponse{
			ID:     stage.ID,
			Name:   stage.Name,
			Key:    domain.Canonical(stage.Name),
			Colour: stage.Colour,
		})
	}
	httpkit.OK(c, items)
}

// Resolve maps ?value= to a stage id, surfacing the canonical key on failure
// so catalog/alias gaps are diagnosable from the client.
func (h *Handler) Resolve(c *gin.Context) {
	value, ok := c.GetQuery("value")
	if !ok {
		httpkit.Error(c, http.StatusBadRequest, "missing value parameter", nil)
		return
	}

	id, err := h.resolver.Resolve(value)
	if err != nil {
		var resErr *domain.ResolutionError
		if errors.As(err, &resErr) {
			httpkit.Error(c, http.StatusUnprocessableEntity, err.Error(), gin.H{
				"input":        resErr.Input,
				"canonicalKey": resErr.CanonicalKey,
			})
			return
		}
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	resp := transport.ResolveResponse{
		Input:        value,
		CanonicalKey: domain.Canonical(value),
		StageID:      id,
	}
	if stage, ok := h.resolver.Catalog().Get(id); ok {
		resp.StageName = stage.Name
	}

	httpkit.OK(c, resp)
}
