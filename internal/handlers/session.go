// internal/handlers/session.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/storefront-backend/internal/guard"
	"github.com/javajoker/storefront-backend/internal/i18n"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/utils"
)

// SessionHandler lets the storefront ask whether the caller may open a page
// and where to go after signing in.
type SessionHandler struct {
	guard *guard.Guard
}

func NewSessionHandler(g *guard.Guard) *SessionHandler {
	return &SessionHandler{guard: g}
}

// GET /session/route?path=/checkout&redirect=/cart
// Runs behind OptionalAuth: a valid token counts as an authenticated
// session, a token that failed to verify as an invalid one.
func (h *SessionHandler) Route(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationRequired, "path"), nil)
		return
	}

	session := guard.Session{State: guard.SessionAnonymous}
	if _, ok := utils.GetUserIDFromContext(c); ok {
		role, _ := utils.GetUserRoleFromContext(c)
		session = guard.Session{State: guard.SessionAuthenticated, Role: models.UserRole(role)}
	} else if c.GetHeader("Authorization") != "" {
		session.State = guard.SessionInvalid
	}

	utils.SuccessResponse(c, gin.H{
		"session":     session,
		"decision":    h.guard.Check(path, session),
		"after_login": guard.AfterLogin(c.Query("redirect")),
	})
}
