package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// DefaultClaimsContextKey is where the bearer middleware stores decoded claims.
const DefaultClaimsContextKey = "claims"

// ErrorResponse is the JSON error envelope written by the boundary layer.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// WriteError maps a domain error onto the transport: Conflict 409,
// BadInput 400, Auth 401, Authz 403, unclassified 500.
func WriteError(ctx router.Context, err error) error {
	status := MapToHTTPStatus(err)

	resp := ErrorResponse{Error: "internal server error"}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && status < 500 {
		resp.Error = richErr.Message
		resp.Code = richErr.TextCode
	}

	return ctx.JSON(status, resp)
}

// Protected guards a route with bearer-token authentication followed by the
// authorization decision engine. Public requirements skip both checks.
func Protected(tokens *TokenService, req RouteRequirements) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if req.Public {
				return next(ctx)
			}

			raw := bearerToken(ctx.Header("Authorization"))
			if raw == "" {
				return WriteError(ctx, ErrTokenMalformed)
			}

			claims, err := tokens.ValidateAccessToken(raw)
			if err != nil {
				return WriteError(ctx, err)
			}

			ctx.Locals(DefaultClaimsContextKey, claims)
			ctx.SetContext(WithClaimsContext(ctx.Context(), claims))

			if err := Authorize(claims, req); err != nil {
				return WriteError(ctx, err)
			}

			return next(ctx)
		}
	}
}

func bearerToken(header string) string {
	const scheme = "Bearer "
	if len(header) > len(scheme) && strings.EqualFold(header[:len(scheme)], scheme) {
		return strings.TrimSpace(header[len(scheme):])
	}
	return ""
}
