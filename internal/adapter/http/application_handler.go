package http

import (
	"net/http"

	"pawn-lending-backend/internal/adapter/middleware"
	"pawn-lending-backend/internal/usecase/application"
	"pawn-lending-backend/internal/usecase/contract"
	"pawn-lending-backend/internal/usecase/evaluation"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ApplicationHandler struct {
	responder
	apps      *application.Usecase
	eval      *evaluation.Usecase
	contracts *contract.Usecase
}

func NewApplicationHandler(apps *application.Usecase, eval *evaluation.Usecase, contracts *contract.Usecase, log *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{responder: newResponder(log), apps: apps, eval: eval, contracts: contracts}
}

type itemReq struct {
	Description    string          `json:"description" validate:"required,max=2000"`
	Category       string          `json:"category" validate:"required,max=64"`
	Condition      string          `json:"condition" validate:"required,max=32"`
	EstimatedValue decimal.Decimal `json:"estimated_value" validate:"gt=0,dec2"`
	TechnicalNotes string          `json:"technical_notes" validate:"max=2000"`
}

type documentReq struct {
	Kind        string `json:"kind" validate:"required,oneof=identity item_photo other"`
	ArtifactRef string `json:"artifact_ref" validate:"required,max=1024"`
}

type submitApplicationReq struct {
	Item       itemReq         `json:"item"`
	Amount     decimal.Decimal `json:"amount" validate:"gt=0,dec2"`
	TermMonths int             `json:"term_months" validate:"required,gte=1"`
	Modality   string          `json:"modality" validate:"required,oneof=monthly biweekly weekly"`
	Documents  []documentReq   `json:"documents" validate:"omitempty,dive"`
}

func (h *ApplicationHandler) Submit(c echo.Context) error {
	var req submitApplicationReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return invalid(c, err)
	}

	in := application.SubmitInput{
		Item: application.ItemInput{
			Description:    req.Item.Description,
			Category:       req.Item.Category,
			Condition:      req.Item.Condition,
			EstimatedValue: req.Item.EstimatedValue,
			TechnicalNotes: req.Item.TechnicalNotes,
		},
		Amount:     req.Amount,
		TermMonths: req.TermMonths,
		Modality:   req.Modality,
	}
	for _, d := range req.Documents {
		in.Documents = append(in.Documents, application.DocumentInput(d))
	}

	dto, err := h.apps.Submit(c.Request().Context(), middleware.IdentityFrom(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *ApplicationHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "application_id")
	if !ok {
		return nil
	}
	dto, err := h.apps.Get(c.Request().Context(), middleware.IdentityFrom(c), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApplicationHandler) AttachDocument(c echo.Context) error {
	id, ok := pathID(c, "application_id")
	if !ok {
		return nil
	}
	var req documentReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return invalid(c, err)
	}
	dto, err := h.apps.AttachDocument(c.Request().Context(), middleware.IdentityFrom(c), id, application.DocumentInput(req))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *ApplicationHandler) StartEvaluation(c echo.Context) error {
	id, ok := pathID(c, "application_id")
	if !ok {
		return nil
	}
	dto, err := h.apps.StartEvaluation(c.Request().Context(), middleware.IdentityFrom(c), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type appraisalReq struct {
	CommercialValue   decimal.Decimal `json:"commercial_value" validate:"gt=0,dec2"`
	AppliedPercentage decimal.Decimal `json:"applied_percentage" validate:"gt=0,lte=100"`
}

type evaluateReq struct {
	Decision     string           `json:"decision" validate:"required,oneof=approve reject"`
	Amount       *decimal.Decimal `json:"amount" validate:"omitempty,gt=0,dec2"`
	Rate         *decimal.Decimal `json:"rate" validate:"omitempty,gte=0,lte=100"`
	TermMonths   *int             `json:"term_months" validate:"omitempty,gte=1"`
	Observations string           `json:"observations" validate:"max=2000"`
	Appraisal    *appraisalReq    `json:"appraisal"`
}

func (h *ApplicationHandler) Evaluate(c echo.Context) error {
	id, ok := pathID(c, "application_id")
	if !ok {
		return nil
	}
	var req evaluateReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return invalid(c, err)
	}

	in := evaluation.EvaluateInput{
		Decision:     evaluation.Decision(req.Decision),
		Amount:       req.Amount,
		Rate:         req.Rate,
		TermMonths:   req.TermMonths,
		Observations: req.Observations,
	}
	if req.Appraisal != nil {
		in.Appraisal = &evaluation.AppraisalInput{
			CommercialValue:   req.Appraisal.CommercialValue,
			AppliedPercentage: req.Appraisal.AppliedPercentage,
		}
	}

	dto, err := h.eval.Evaluate(c.Request().Context(), middleware.IdentityFrom(c), id, in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type acceptReq struct {
	Email string `json:"email" validate:"omitempty,email,max=255"`
	Phone string `json:"phone" validate:"omitempty,max=32"`
}

func (h *ApplicationHandler) Accept(c echo.Context) error {
	id, ok := pathID(c, "application_id")
	if !ok {
		return nil
	}
	var req acceptReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return invalid(c, err)
	}
	dto, err := h.apps.AcceptOffer(c.Request().Context(), middleware.IdentityFrom(c), id, application.AcceptInput(req))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApplicationHandler) Cancel(c echo.Context) error {
	id, ok := pathID(c, "application_id")
	if !ok {
		return nil
	}
	dto, err := h.apps.Cancel(c.Request().Context(), middleware.IdentityFrom(c), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// GenerateContract returns 201 for a new contract and 200 when the
// application already had one.
func (h *ApplicationHandler) GenerateContract(c echo.Context) error {
	id, ok := pathID(c, "application_id")
	if !ok {
		return nil
	}
	dto, err := h.contracts.Generate(c.Request().Context(), middleware.IdentityFrom(c), id)
	if err != nil {
		return h.fail(c, err)
	}
	status := http.StatusOK
	if dto.Created {
		status = http.StatusCreated
	}
	return c.JSON(status, dto)
}
