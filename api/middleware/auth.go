// api/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/IvanBrasilico/apirecintos/internal/models"
	"github.com/IvanBrasilico/apirecintos/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// contextKey is a type for context keys
type contextKey string

// Context keys
const (
	APIKeyContextKey   contextKey = "api_key"
	FacilityContextKey contextKey = "facility_code"
)

// FacilityAuth validates bearer API keys and binds the request to the
// key's facility. Everything downstream trusts the facility code set
// here, never one taken from the payload.
func FacilityAuth(repo repository.Repository, log *logrus.Logger, requiredLevel models.AuthorizationLevel) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid Authorization header format. Expected: 'Bearer {token}'",
			})
			c.Abort()
			return
		}

		token := parts[1]

		apiKey, err := repo.GetAPIKeyByKey(c.Request.Context(), token)
		if err != nil {
			log.WithError(err).Warn("Invalid API key")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid API key",
			})
			c.Abort()
			return
		}

		if !apiKey.Active {
			log.Warn("Revoked API key")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "API key revoked",
			})
			c.Abort()
			return
		}

		if apiKey.ExpiresAt != nil && apiKey.ExpiresAt.Before(time.Now()) {
			log.Warn("Expired API key")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "API key expired",
			})
			c.Abort()
			return
		}

		if apiKey.AuthorizationLevel < requiredLevel {
			log.Warnf("Insufficient permissions. Required: %d, Provided: %d",
				requiredLevel, apiKey.AuthorizationLevel)
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Insufficient permissions",
			})
			c.Abort()
			return
		}

		// Update last used timestamp
		now := time.Now()
		apiKey.LastUsedAt = &now
		go func() {
			// Update in a goroutine to avoid blocking the request
			if err := repo.UpdateAPIKey(context.Background(), apiKey); err != nil {
				log.WithError(err).Warn("Failed to update API key last-used timestamp")
			}
		}()

		c.Set(string(APIKeyContextKey), apiKey)
		c.Set(string(FacilityContextKey), apiKey.FacilityCode)

		c.Next()
	}
}

// StaticFacility attributes every request to a fixed facility code.
// Used when authentication is disabled.
func StaticFacility(code string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(string(FacilityContextKey), code)
		c.Next()
	}
}

// FacilityFromContext returns the facility code bound to the request.
func FacilityFromContext(c *gin.Context) string {
	return c.GetString(string(FacilityContextKey))
}
