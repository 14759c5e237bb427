package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yooputer/eng-tube/models"
	"github.com/yooputer/eng-tube/utils"
)

const callerKey = "caller"

// Caller is the identity resolved for the current request. Every gated
// operation receives it explicitly instead of reading ambient globals.
type Caller struct {
	ID              uuid.UUID
	IsAuthenticated bool
}

// CallerFrom returns the resolved caller, or the anonymous zero value when
// the request carried no valid token.
func CallerFrom(c *gin.Context) Caller {
	if v, ok := c.Get(callerKey); ok {
		return v.(Caller)
	}
	return Caller{}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// resolveCaller verifies the token and lazily materialises the user row on
// first authenticated interaction.
func resolveCaller(c *gin.Context, token string) (Caller, bool) {
	claims, err := utils.VerifyToken(token)
	if err != nil {
		return Caller{}, false
	}

	db := c.MustGet("db").(*gorm.DB)
	user := models.User{
		ExternalAuthID: claims.Subject,
		Name:           claims.Name,
		ImageURL:       claims.Picture,
	}
	if err := db.Where("external_auth_id = ?", claims.Subject).FirstOrCreate(&user).Error; err != nil {
		return Caller{}, false
	}

	return Caller{ID: user.ID, IsAuthenticated: true}, true
}

// AuthMiddleware gates mutations and protected reads: no valid token means
// 401 before the handler runs.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			c.Abort()
			return
		}

		caller, ok := resolveCaller(c, token)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			c.Abort()
			return
		}

		c.Set(callerKey, caller)
		c.Next()
	}
}

// OptionalAuthMiddleware resolves the caller when a valid token is present
// and falls through anonymous otherwise. Open listings use it so viewer-state
// overlays can be joined in without ever gating the read.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		if caller, ok := resolveCaller(c, token); ok {
			c.Set(callerKey, caller)
		}
		c.Next()
	}
}
