package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	deliverycontext "accounts/internal/delivery/context"
	"accounts/internal/domain/entity"
	domainerrors "accounts/internal/domain/errors"
	"accounts/internal/domain/service"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const bearerScheme = "Bearer"

type publicRoute struct {
	method string
	path   string
}

// publicRoutes are reachable without a bearer token. Paths are echo route patterns.
var publicRoutes = map[publicRoute]struct{}{
	{http.MethodPost, "/users"}:       {},
	{http.MethodPost, "/users/login"}: {},
	{http.MethodGet, "/health"}:       {},
}

// IsPublicRoute reports whether the route pattern is exempt from authentication.
func IsPublicRoute(method, path string) bool {
	_, ok := publicRoutes[publicRoute{method: method, path: path}]

	return ok
}

// AuthMiddlewareParams holds dependencies for AuthMiddleware, injected by Fx.
type AuthMiddlewareParams struct {
	fx.In

	TokenService service.TokenService
	Logger       *slog.Logger
}

// AuthMiddleware verifies bearer tokens and attaches the caller's principal to the request.
type AuthMiddleware struct {
	tokenSvc service.TokenService
	logger   *slog.Logger
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(params AuthMiddlewareParams) *AuthMiddleware {
	return &AuthMiddleware{
		tokenSvc: params.TokenService,
		logger:   params.Logger,
	}
}

// Gate is installed once on the whole server. Every route outside publicRoutes
// needs a valid token; ownership is decided later by the user service.
// It relies on echo running e.Use middleware after routing, so c.Path() is the matched pattern.
func (m *AuthMiddleware) Gate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if IsPublicRoute(c.Request().Method, c.Path()) {
			return next(c)
		}

		principal, err := m.authenticate(c)
		if err != nil {
			deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger).
				Debug("Request rejected by auth gate", slog.String("path", c.Path()), slog.Any("error", err))

			return err
		}

		deliverycontext.SetPrincipal(c, principal)

		return next(c)
	}
}

func (m *AuthMiddleware) authenticate(c echo.Context) (entity.Principal, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return entity.Principal{}, errors.WithStack(domainerrors.ErrUnauthorized.WithMessage("Authorization header is missing"))
	}

	scheme, token, found := strings.Cut(authHeader, " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, bearerScheme) || token == "" {
		return entity.Principal{}, errors.WithStack(domainerrors.ErrUnauthorized.WithMessage("Invalid token format, must be Bearer token"))
	}

	claims, err := m.tokenSvc.Verify(token)
	if err != nil {
		return entity.Principal{}, errors.Wrap(domainerrors.ErrUnauthorized, err.Error())
	}

	return entity.PrincipalFromClaims(claims), nil
}

// GetPrincipal extracts the authenticated caller set by Gate.
func GetPrincipal(c echo.Context) (entity.Principal, bool) {
	return deliverycontext.GetPrincipal(c)
}
