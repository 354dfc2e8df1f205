package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/melodix/melodix-backend/internal/catalog"
	"github.com/melodix/melodix-backend/internal/repository"
)

func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestFailErrMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{repository.ErrNotFound, http.StatusNotFound},
		{repository.ErrForbidden, http.StatusForbidden},
		{repository.ErrConflict, http.StatusConflict},
		{repository.ErrEmailExists, http.StatusConflict},
		{catalog.ErrNotFound, http.StatusNotFound},
		{catalog.ErrUnavailable, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		c, rec := newContext(http.MethodGet, "/", "")
		if err := failErr(c, tc.err); err != nil {
			t.Fatalf("failErr returned %v", err)
		}
		if rec.Code != tc.code {
			t.Errorf("failErr(%v): status = %d, want %d", tc.err, rec.Code, tc.code)
		}
		if !strings.Contains(rec.Body.String(), `"success":false`) {
			t.Errorf("failErr(%v): body = %s", tc.err, rec.Body.String())
		}
	}
}

func TestFailErrHidesInternals(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/", "")
	_ = failErr(c, errors.New("dial tcp 10.0.0.5:3306: connection refused"))
	if strings.Contains(rec.Body.String(), "10.0.0.5") {
		t.Error("internal error details leaked into the response")
	}
}

func TestEnvelopeShape(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/", "")
	_ = ok(c, http.StatusOK, echo.Map{"value": 1})
	body := rec.Body.String()
	if !strings.Contains(body, `"success":true`) || !strings.Contains(body, `"data"`) {
		t.Errorf("body = %s", body)
	}

	c, rec = newContext(http.MethodGet, "/", "")
	_ = okMeta(c, http.StatusOK, echo.Map{}, echo.Map{"page": 2})
	if !strings.Contains(rec.Body.String(), `"meta"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestPageParams(t *testing.T) {
	cases := []struct {
		query                      string
		wantPage, wantLim, wantOff int
	}{
		{"", 1, 20, 0},
		{"?page=3&limit=10", 3, 10, 20},
		{"?page=0&limit=0", 1, 20, 0},
		{"?page=2&limit=500", 2, 100, 100},
		{"?page=abc&limit=xyz", 1, 20, 0},
	}
	for _, tc := range cases {
		c, _ := newContext(http.MethodGet, "/"+tc.query, "")
		page, limit, offset := pageParams(c, 20, 100)
		if page != tc.wantPage || limit != tc.wantLim || offset != tc.wantOff {
			t.Errorf("pageParams(%q) = (%d, %d, %d), want (%d, %d, %d)",
				tc.query, page, limit, offset, tc.wantPage, tc.wantLim, tc.wantOff)
		}
	}
}

func TestCurrentUserID(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/", "")
	if got := currentUserID(c); got != 0 {
		t.Errorf("anonymous currentUserID = %d, want 0", got)
	}
	c.Set("user_id", uint64(17))
	if got := currentUserID(c); got != 17 {
		t.Errorf("currentUserID = %d, want 17", got)
	}
}

func TestNormalizeSongType(t *testing.T) {
	cases := []struct{ in, want string }{
		{"admin", "admin"},
		{" ADMIN ", "admin"},
		{"itunes", "itunes"},
		{"", "itunes"},
		{"bogus", "itunes"},
	}
	for _, tc := range cases {
		if got := normalizeSongType(tc.in); got != tc.want {
			t.Errorf("normalizeSongType(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
