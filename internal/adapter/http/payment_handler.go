package http

import (
	"net/http"

	"pawn-lending-backend/internal/adapter/middleware"
	"pawn-lending-backend/internal/usecase/payment"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	responder
	uc *payment.Usecase
}

func NewPaymentHandler(uc *payment.Usecase, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{responder: newResponder(log), uc: uc}
}

type validatePaymentReq struct {
	Decision     string `json:"decision" validate:"required,oneof=validate reject"`
	Observations string `json:"observations" validate:"required_if=Decision reject,max=2000"`
}

func (h *PaymentHandler) Validate(c echo.Context) error {
	id, ok := pathID(c, "payment_id")
	if !ok {
		return nil
	}
	var req validatePaymentReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return invalid(c, err)
	}
	dto, err := h.uc.Validate(c.Request().Context(), middleware.IdentityFrom(c), id, payment.ValidateInput(req))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
