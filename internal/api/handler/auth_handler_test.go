package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/schoolrun/bus-tracking/internal/core/domain"
)

type stubAuthService struct {
	token  string
	driver *domain.Driver
	err    error
}

func (s *stubAuthService) Login(context.Context, string, string) (string, *domain.Driver, error) {
	return s.token, s.driver, s.err
}

func loginContext(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Login(t *testing.T) {
	svc := &stubAuthService{
		token:  "signed.jwt.token",
		driver: &domain.Driver{ID: "drv1", Name: "Pat Jones", Role: domain.RoleDriver},
	}
	h := NewAuthHandler(svc)

	c, rec := loginContext(t, `{"email":"pat@district.example","password":"bus-route-7"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Token != "signed.jwt.token" || got.Driver == nil || got.Driver.ID != "drv1" {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestAuthHandler_LoginValidation(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	cases := []struct {
		name string
		body string
	}{
		{"missing password", `{"email":"pat@district.example"}`},
		{"bad email", `{"email":"not-an-email","password":"x"}`},
		{"empty body", `{}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := loginContext(t, tc.body)
			err := h.Login(c)
			he, ok := err.(*echo.HTTPError)
			if !ok || he.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422 HTTPError, got %v", err)
			}
		})
	}
}

func TestAuthHandler_LoginBadCredentials(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{err: domain.ErrInvalidCredentials})

	c, _ := loginContext(t, `{"email":"pat@district.example","password":"wrong"}`)
	err := h.Login(c)
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials to propagate, got %v", err)
	}
}
