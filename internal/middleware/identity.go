package middleware

import (
	"context"
	"log/slog"
	"strings"

	"inkwell/internal/auth"
	"inkwell/internal/authz"
	"inkwell/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// IdentityLocal is the fiber locals key holding the resolved authz.Identity.
const IdentityLocal = "identity"

// ResolveIdentity resolves the Authorization header into an identity on every
// request. A missing, malformed, expired or otherwise invalid token degrades
// to anonymous: the failure is logged here and never surfaced, so public
// operations still proceed and the authorization engine stays the only place
// access is denied.
func ResolveIdentity(tokens *auth.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := authz.Anonymous()

		if tokenString := bearerToken(c); tokenString != "" {
			accountID, err := tokens.Verify(tokenString)
			if err != nil {
				observability.TokenResolutionFailures.Inc()
				Logger.WarnContext(c.UserContext(), "token resolution failed, proceeding as anonymous",
					slog.String("error", err.Error()))
			} else {
				identity = authz.Identified(accountID)
			}
		}

		c.Locals(IdentityLocal, identity)
		if identity.Known() {
			ctx := context.WithValue(c.UserContext(), AccountIDKey, identity.AccountID)
			c.SetUserContext(ctx)
		}

		return c.Next()
	}
}

// IdentityFromCtx returns the identity resolved by ResolveIdentity, or
// anonymous when the middleware did not run.
func IdentityFromCtx(c *fiber.Ctx) authz.Identity {
	if identity, ok := c.Locals(IdentityLocal).(authz.Identity); ok {
		return identity
	}
	return authz.Anonymous()
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
