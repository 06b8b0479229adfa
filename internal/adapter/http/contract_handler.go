package http

import (
	"net/http"

	"pawn-lending-backend/internal/adapter/middleware"
	"pawn-lending-backend/internal/usecase/contract"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ContractHandler struct {
	responder
	uc *contract.Usecase
}

func NewContractHandler(uc *contract.Usecase, log *zap.Logger) *ContractHandler {
	return &ContractHandler{responder: newResponder(log), uc: uc}
}

func (h *ContractHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "contract_id")
	if !ok {
		return nil
	}
	dto, err := h.uc.Get(c.Request().Context(), middleware.IdentityFrom(c), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type signReq struct {
	SignatureRef string `json:"signature_ref" validate:"required,max=1024"`
}

func (h *ContractHandler) Sign(c echo.Context) error {
	id, ok := pathID(c, "contract_id")
	if !ok {
		return nil
	}
	var req signReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return invalid(c, err)
	}
	dto, err := h.uc.Sign(c.Request().Context(), middleware.IdentityFrom(c), id, contract.SignInput(req))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
