package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	deliverycontext "accounts/internal/delivery/context"
	"accounts/internal/domain/entity"
	domainerrors "accounts/internal/domain/errors"
	"accounts/internal/domain/service"
	mockSvc "accounts/internal/mocks/service"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newGateEcho(t *testing.T) (*echo.Echo, *mockSvc.MockTokenService) {
	t.Helper()

	tokens := mockSvc.NewMockTokenService(t)
	gate := NewAuthMiddleware(AuthMiddlewareParams{
		TokenService: tokens,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	e := echo.New()
	e.HTTPErrorHandler = NewErrorMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil))).HandleHTTPError
	e.Use(gate.Gate)

	whoami := func(c echo.Context) error {
		principal, ok := GetPrincipal(c)
		if !ok {
			return c.String(http.StatusOK, "anonymous")
		}
		fromCtx, ok := deliverycontext.PrincipalFromContext(c.Request().Context())
		if !ok || fromCtx != principal {
			return c.String(http.StatusInternalServerError, "principal missing from request context")
		}

		return c.String(http.StatusOK, principal.Email)
	}
	e.POST("/users", whoami)
	e.POST("/users/login", whoami)
	e.GET("/health", whoami)
	e.GET("/users", whoami)
	e.GET("/users/:id", whoami)

	return e, tokens
}

func serve(e *echo.Echo, method, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}

func TestGate_PublicRoutesSkipAuthentication(t *testing.T) {
	e, tokens := newGateEcho(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/users"},
		{http.MethodPost, "/users/login"},
		{http.MethodGet, "/health"},
	} {
		rec := serve(e, tc.method, tc.path, "")
		assert.Equal(t, http.StatusOK, rec.Code, tc.path)
		assert.Equal(t, "anonymous", rec.Body.String())
	}
	tokens.AssertNotCalled(t, "Verify", mock.Anything)
}

func TestGate_ProtectedRoutes(t *testing.T) {
	e, tokens := newGateEcho(t)
	claims := &entity.TokenClaims{UserID: 7, Email: "ann@x.com", IssuedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour)}

	tokens.EXPECT().Verify("good").Return(claims, nil)
	tokens.EXPECT().Verify("expired").Return(nil, errors.Wrap(service.ErrInvalidToken, "token is expired"))

	tests := []struct {
		name          string
		path          string
		authorization string
		wantCode      int
		wantBody      string
	}{
		{name: "missing header", path: "/users", wantCode: http.StatusUnauthorized, wantBody: "Authorization header is missing"},
		{name: "wrong scheme", path: "/users", authorization: "Basic good", wantCode: http.StatusUnauthorized, wantBody: "must be Bearer token"},
		{name: "empty token", path: "/users", authorization: "Bearer ", wantCode: http.StatusUnauthorized, wantBody: "must be Bearer token"},
		{name: "expired", path: "/users/7", authorization: "Bearer expired", wantCode: http.StatusUnauthorized, wantBody: "Invalid or expired token"},
		{name: "valid", path: "/users/7", authorization: "Bearer good", wantCode: http.StatusOK, wantBody: "ann@x.com"},
		{name: "scheme is case-insensitive", path: "/users", authorization: "bearer good", wantCode: http.StatusOK, wantBody: "ann@x.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, http.MethodGet, tt.path, tt.authorization)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestGate_RejectionIsUnauthorizedNotForbidden(t *testing.T) {
	e, _ := newGateEcho(t)

	rec := serve(e, http.MethodGet, "/users/1", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
}

func TestIsPublicRoute(t *testing.T) {
	assert.True(t, IsPublicRoute(http.MethodPost, "/users"))
	assert.False(t, IsPublicRoute(http.MethodGet, "/users"))
	assert.False(t, IsPublicRoute(http.MethodPost, "/users/:id"))
}

func TestErrorMiddleware_ValidationDetails(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = NewErrorMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil))).HandleHTTPError
	e.GET("/fail", func(echo.Context) error {
		verr := &domainerrors.ValidationError{}
		verr.Add("email", "email must be an email")

		return errors.WithStack(verr)
	})
	e.GET("/boom", func(echo.Context) error {
		return errors.New("driver exploded")
	})

	rec := serve(e, http.MethodGet, "/fail", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"email"`)
	assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")

	rec = serve(e, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "driver exploded")
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}
