package http

import (
	"encoding/json"
	"errors"
	"fmt"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pawn-lending-backend/internal/domain/apperr"

	"github.com/labstack/echo/v4"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.Validation("bad"), stdhttp.StatusUnprocessableEntity},
		{apperr.Conflict("state"), stdhttp.StatusConflict},
		{apperr.NotFound("gone"), stdhttp.StatusNotFound},
		{apperr.LimitExceeded("too much"), stdhttp.StatusUnprocessableEntity},
		{apperr.Forbidden("no"), stdhttp.StatusForbidden},
		{apperr.Wrap(apperr.CodeDependencyFailure, "db down", errors.New("dial")), stdhttp.StatusServiceUnavailable},
		{fmt.Errorf("save: %w", apperr.Conflict("wrapped")), stdhttp.StatusConflict},
		{errors.New("boom"), stdhttp.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := StatusOf(c.err); got != c.want {
			t.Errorf("StatusOf(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func failWith(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(stdhttp.MethodGet, "/", nil), rec)
	_ = newResponder(nil).fail(c, err)
	return rec
}

func TestFail_HidesInternalErrors(t *testing.T) {
	rec := failWith(t, errors.New("sql: connection refused"))

	if rec.Code != stdhttp.StatusInternalServerError {
		t.Fatalf("status %d", rec.Code)
	}
	if body := rec.Body.String(); strings.Contains(body, "connection refused") || !strings.Contains(body, `"code":"internal"`) {
		t.Fatalf("body %s", body)
	}
}

func TestFail_UsesTaxonomyMessage(t *testing.T) {
	rec := failWith(t, fmt.Errorf("appraise: %w",
		apperr.Wrap(apperr.CodeLimitExceeded, "approved amount exceeds the appraisal loan amount", errors.New("4500 > 4000"))))

	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status %d", rec.Code)
	}
	var got map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["error"] != "approved amount exceeds the appraisal loan amount" || got["code"] != "limit_exceeded" || len(got) != 2 {
		t.Fatalf("body %v", got)
	}
}
