package middleware

import (
	"net/http"
	"strings"

	"github.com/Aravind-528/StyleKart/config"
	"github.com/Aravind-528/StyleKart/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

// AdminMiddleware gates the order management routes. It validates the bearer
// token and checks the claimed email against the configured whitelist; token
// issuance belongs to the storefront's auth system, not this service.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		utils.LogInfo("AdminMiddleware called")

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.LogError("Missing Authorization header")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Please login for access"})
			c.Abort()
			return
		}

		tokenString := strings.Replace(authHeader, "Bearer ", "", 1)
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return []byte(config.App.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			utils.LogError("Invalid token: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Please login for access"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			utils.LogError("Invalid token claims")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		email, _ := claims["email"].(string)
		if email == "" {
			utils.LogError("Token missing email claim")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		if !isWhitelisted(email) {
			utils.LogError("Non-admin email attempted admin access: %s", email)
			c.JSON(http.StatusForbidden, gin.H{"error": "Access forbidden"})
			c.Abort()
			return
		}

		c.Set("adminEmail", strings.ToLower(email))
		utils.LogInfo("Admin %s authenticated successfully", email)
		c.Next()
	}
}

func isWhitelisted(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, allowed := range config.App.AdminWhitelist() {
		if email == allowed {
			return true
		}
	}
	return false
}
