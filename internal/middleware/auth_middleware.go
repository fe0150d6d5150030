package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// AdminKeyHeader carries the raw admin key
	AdminKeyHeader = "X-Admin-Key"
	// AdminCredentialKey is the gin context key holding the extracted credential
	AdminCredentialKey = "adminCredential"

	bearerSchema = "Bearer "
)

// AdminCredentialMiddleware extracts the admin credential from the X-Admin-Key header,
// an Authorization bearer token or the "key" query parameter. Checking it is left to the
// admin service so that rejection happens before any state is read.
func AdminCredentialMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		credential := c.GetHeader(AdminKeyHeader)
		if credential == "" {
			if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, bearerSchema) {
				credential = strings.TrimSpace(auth[len(bearerSchema):])
			}
		}
		if credential == "" {
			credential = c.Query("key")
		}
		c.Set(AdminCredentialKey, credential)
		c.Next()
	}
}

// AdminCredential returns the credential extracted by AdminCredentialMiddleware
func AdminCredential(c *gin.Context) string {
	return c.GetString(AdminCredentialKey)
}
