package http

import "github.com/labstack/echo/v4"

type Routes struct {
	Health       *Handler
	Applications *ApplicationHandler
	Contracts    *ContractHandler
	Loans        *LoanHandler
	Payments     *PaymentHandler
	Audit        *AuditHandler
}

// Register mounts the API. mw wraps every route except /health.
func (r Routes) Register(e *echo.Echo, mw ...echo.MiddlewareFunc) {
	e.GET("/health", r.Health.Health)

	apps := e.Group("/applications", mw...)
	apps.POST("", r.Applications.Submit)
	apps.GET("/:application_id", r.Applications.Get)
	apps.POST("/:application_id/documents", r.Applications.AttachDocument)
	apps.POST("/:application_id/start-evaluation", r.Applications.StartEvaluation)
	apps.POST("/:application_id/evaluate", r.Applications.Evaluate)
	apps.POST("/:application_id/accept", r.Applications.Accept)
	apps.POST("/:application_id/cancel", r.Applications.Cancel)
	apps.POST("/:application_id/contract", r.Applications.GenerateContract)

	contracts := e.Group("/contracts", mw...)
	contracts.GET("/:contract_id", r.Contracts.Get)
	contracts.POST("/:contract_id/sign", r.Contracts.Sign)

	loans := e.Group("/loans", mw...)
	loans.GET("/:loan_id", r.Loans.GetLoan)
	loans.POST("/:loan_id/payments", r.Loans.SubmitPayment)
	loans.GET("/:loan_id/payments", r.Loans.ListPayments)
	loans.POST("/:loan_id/renew", r.Loans.Renew)

	e.Group("/payments", mw...).POST("/:payment_id/validate", r.Payments.Validate)
	e.Group("/audit", mw...).GET("/:entity_type/:entity_id", r.Audit.List)
}
