package middleware

import (
	"net/http"
	"testing"

	"pawn-lending-backend/internal/domain/access"

	"github.com/labstack/echo/v4"
)

func Test_Identity(t *testing.T) {
	e := echo.New()
	e.Use(Identity())
	var got access.Identity
	e.GET("/me", func(c echo.Context) error {
		got = IdentityFrom(c)
		return c.NoContent(http.StatusNoContent)
	})

	tests := []struct {
		name string
		hdr  map[string]string
		code int
	}{
		{"valid", map[string]string{HeaderUserID: "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", HeaderUserRole: "Evaluator"}, http.StatusNoContent},
		{"missing user", map[string]string{HeaderUserRole: "applicant"}, http.StatusUnauthorized},
		{"bad user", map[string]string{HeaderUserID: "BBBB", HeaderUserRole: "applicant"}, http.StatusUnauthorized},
		{"missing role", map[string]string{HeaderUserID: "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"}, http.StatusUnauthorized},
		{"unknown role", map[string]string{HeaderUserID: "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", HeaderUserRole: "root"}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doReq(t, e, http.MethodGet, "/me", nil, tt.hdr)
			if rec.Code != tt.code {
				t.Fatalf("want %d, got %d", tt.code, rec.Code)
			}
		})
	}
	if got.Role != access.RoleEvaluator || got.UserID != "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb" {
		t.Fatalf("identity not stored: %+v", got)
	}
}
