package http

import (
	"net/http"
	"time"

	"pawn-lending-backend/internal/adapter/middleware"
	"pawn-lending-backend/internal/usecase/loan"
	"pawn-lending-backend/internal/usecase/payment"
	"pawn-lending-backend/internal/usecase/renewal"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type LoanHandler struct {
	responder
	loans    *loan.Usecase
	payments *payment.Usecase
	renewals *renewal.Usecase
}

func NewLoanHandler(loans *loan.Usecase, payments *payment.Usecase, renewals *renewal.Usecase, log *zap.Logger) *LoanHandler {
	return &LoanHandler{responder: newResponder(log), loans: loans, payments: payments, renewals: renewals}
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	id, ok := pathID(c, "loan_id")
	if !ok {
		return nil
	}
	dto, err := h.loans.Get(c.Request().Context(), middleware.IdentityFrom(c), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type submitPaymentReq struct {
	Amount     decimal.Decimal `json:"amount" validate:"gt=0,dec2"`
	PaidOn     string          `json:"paid_on" validate:"omitempty,datetime=2006-01-02"`
	Method     string          `json:"method" validate:"required,oneof=cash transfer deposit card"`
	BankRef    string          `json:"bank_ref" validate:"max=64"`
	ReceiptRef string          `json:"receipt_ref" validate:"max=1024"`
}

func (h *LoanHandler) SubmitPayment(c echo.Context) error {
	id, ok := pathID(c, "loan_id")
	if !ok {
		return nil
	}
	var req submitPaymentReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return invalid(c, err)
	}

	in := payment.SubmitInput{
		Amount:     req.Amount,
		Method:     req.Method,
		BankRef:    req.BankRef,
		ReceiptRef: req.ReceiptRef,
	}
	if req.PaidOn != "" {
		// format already checked by the validator
		in.PaidOn, _ = time.Parse(time.DateOnly, req.PaidOn)
	}

	dto, err := h.payments.Submit(c.Request().Context(), middleware.IdentityFrom(c), id, in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) ListPayments(c echo.Context) error {
	id, ok := pathID(c, "loan_id")
	if !ok {
		return nil
	}
	list, err := h.payments.List(c.Request().Context(), middleware.IdentityFrom(c), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"payments": list})
}

type renewReq struct {
	TermMonths int    `json:"term_months" validate:"required,gte=1"`
	Reason     string `json:"reason" validate:"max=500"`
}

func (h *LoanHandler) Renew(c echo.Context) error {
	id, ok := pathID(c, "loan_id")
	if !ok {
		return nil
	}
	var req renewReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return invalid(c, err)
	}
	dto, err := h.renewals.Renew(c.Request().Context(), middleware.IdentityFrom(c), id, renewal.RenewInput(req))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
