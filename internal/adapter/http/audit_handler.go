package http

import (
	"net/http"

	"pawn-lending-backend/internal/adapter/middleware"
	"pawn-lending-backend/internal/usecase/audit"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AuditHandler struct {
	responder
	uc *audit.Usecase
}

func NewAuditHandler(uc *audit.Usecase, log *zap.Logger) *AuditHandler {
	return &AuditHandler{responder: newResponder(log), uc: uc}
}

func (h *AuditHandler) List(c echo.Context) error {
	id, ok := pathID(c, "entity_id")
	if !ok {
		return nil
	}
	entries, err := h.uc.List(c.Request().Context(), middleware.IdentityFrom(c), c.Param("entity_type"), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"entries": entries})
}
