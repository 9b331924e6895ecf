package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ArtEnginer/POS/internal/domain/entity"
	"github.com/ArtEnginer/POS/pkg/jwt"
)

// Locals keys para los claims del token en Fiber.
const (
	LocalUserID   = "user_id"
	LocalBranchID = "branch_id"
	LocalRole     = "role"
	LocalTokenID  = "jti"
	LocalToken    = "token"
)

// revocationChecker contrato mínimo para consultar la lista negra de tokens.
// Lo implementa *auth.AuthUseCase; la interfaz evita el import circular.
type revocationChecker interface {
	IsRevoked(ctx context.Context, jti string) bool
}

// AuthMiddleware valida el Bearer Token JWT y carga user_id, branch_id, role y jti en c.Locals.
// revoked puede ser nil (sin lista negra).
func AuthMiddleware(jwtSecret string, revoked revocationChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fail(c, fiber.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required", nil)
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fail(c, fiber.StatusUnauthorized, "INVALID_TOKEN", "Format: Bearer <token>", nil)
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return fail(c, fiber.StatusUnauthorized, "MISSING_TOKEN", "Empty token", nil)
		}
		claims, err := jwt.ParseClaims(jwtSecret, tokenString)
		if err != nil {
			return fail(c, fiber.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token", nil)
		}
		if revoked != nil && revoked.IsRevoked(c.UserContext(), claims.ID) {
			return fail(c, fiber.StatusUnauthorized, "TOKEN_REVOKED", "Token has been revoked", nil)
		}
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalBranchID, claims.BranchID)
		c.Locals(LocalRole, claims.Role)
		c.Locals(LocalTokenID, claims.ID)
		c.Locals(LocalToken, tokenString)
		return c.Next()
	}
}

// RequireRole deja pasar solo a los roles indicados; super_admin siempre pasa.
// Debe usarse DESPUÉS de AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return fail(c, fiber.StatusUnauthorized, "MISSING_ROLE", "Token has no role", nil)
		}
		if role == entity.RoleSuperAdmin {
			return c.Next()
		}
		if _, ok := allowed[role]; !ok {
			return fail(c, fiber.StatusForbidden, "FORBIDDEN", "Insufficient permissions", nil)
		}
		return c.Next()
	}
}

func localString(c *fiber.Ctx, key string) string {
	v := c.Locals(key)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string { return localString(c, LocalUserID) }

// GetBranchID devuelve la sucursal asignada al usuario; vacío para usuarios sin sucursal.
func GetBranchID(c *fiber.Ctx) string { return localString(c, LocalBranchID) }

// GetRole devuelve el rol del token.
func GetRole(c *fiber.Ctx) string { return localString(c, LocalRole) }
