package handler

import (
	"net/http"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/service"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/httpkit"
	"leadflow_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/:ref", h.Snapshot)
	rg.GET("/:ref/actions", h.Actions)
	rg.POST("/:ref/stage", h.Transition)
	rg.POST("/:ref/reactivate", h.Reactivate)
	rg.GET("/:ref/history", h.History)
}

// parseRef routes the raw path identifier to a schema, rejecting unroutable
// shapes before any backend work.
func parseRef(c *gin.Context) (domain.LeadReference, bool) {
	ref, err := domain.ParseLeadReference(c.Param("ref"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return domain.LeadReference{}, false
	}
	return ref, true
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	snapshot, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, snapshot)
}

func (h *Handler) Snapshot(c *gin.Context) {
	ref, ok := parseRef(c)
	if !ok {
		return
	}

	snapshot, err := h.svc.Snapshot(c.Request.Context(), ref)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, snapshot)
}

func (h *Handler) Actions(c *gin.Context) {
	ref, ok := parseRef(c)
	if !ok {
		return
	}

	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	menu, err := h.svc.Actions(c.Request.Context(), ref, id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, menu)
}

func (h *Handler) Transition(c *gin.Context) {
	ref, ok := parseRef(c)
	if !ok {
		return
	}

	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req transport.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	snapshot, err := h.svc.Transition(c.Request.Context(), ref, id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, snapshot)
}

func (h *Handler) Reactivate(c *gin.Context) {
	ref, ok := parseRef(c)
	if !ok {
		return
	}

	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	snapshot, err := h.svc.Reactivate(c.Request.Context(), ref, id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, snapshot)
}

func (h *Handler) History(c *gin.Context) {
	ref, ok := parseRef(c)
	if !ok {
		return
	}

	items, err := h.svc.History(c.Request.Context(), ref)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, items)
}
