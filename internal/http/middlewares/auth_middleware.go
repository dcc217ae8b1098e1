package middlewares

import (
	"net/http"

	"github.com/geocoder89/todohub/internal/actorctx"
	"github.com/gin-gonic/gin"
)

const TokenHeader = "x-access-token"

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

type AuthMiddleware struct {
	tokens TokenVerifier
}

func NewAuthMiddleware(tokens TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireAuth admits requests carrying a valid token in x-access-token.
// It does not check that the user still exists; handlers deal with that.
// Failure bodies are plain text because existing clients match on them.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(TokenHeader)
		if raw == "" {
			abortText(c, http.StatusUnauthorized, "access denied")
			return
		}

		userID, err := m.tokens.Verify(raw)
		if err != nil {
			abortText(c, http.StatusBadRequest, "invalid token")
			return
		}

		c.Set(CtxUserID, userID)
		c.Request = c.Request.WithContext(actorctx.WithUserID(c.Request.Context(), userID))

		c.Next()
	}
}

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

func abortText(c *gin.Context, status int, body string) {
	c.Data(status, "text/html; charset=utf-8", []byte(body))
	c.Abort()
}
