package middleware

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sounddesk/backend/internal/services"
)

// AuditLog records admin write operations (POST/PUT/PATCH/DELETE) to system_logs.
func AuditLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		// Only audit write operations
		if method != "POST" && method != "PUT" && method != "PATCH" && method != "DELETE" {
			c.Next()
			return
		}

		// Capture request body (up to 2000 chars for Extra)
		var bodySnippet string
		if c.Request.Body != nil {
			bodyBytes, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			bodySnippet = string(bodyBytes)
			if len(bodySnippet) > 2000 {
				bodySnippet = bodySnippet[:2000] + "...[truncated]"
			}
			bodySnippet = maskSensitiveFields(bodySnippet)
		}

		c.Next()

		// After handler — record audit log
		userID := GetUserID(c)
		ip := c.ClientIP()
		userAgent := c.Request.UserAgent()
		status := c.Writer.Status()

		module := parseModule(c.FullPath())
		message := fmt.Sprintf("%s %s -> %d", method, c.Request.URL.Path, status)

		var uid *uint
		if userID > 0 {
			uid = &userID
		}

		services.LogInfo(module, method, message, uid, ip, userAgent, map[string]interface{}{
			"method": method,
			"path":   c.Request.URL.Path,
			"status": status,
			"body":   bodySnippet,
			"audit":  true,
		})
	}
}

// parseModule derives a coarse module name from the route path.
func parseModule(fullPath string) string {
	parts := strings.Split(strings.TrimPrefix(fullPath, "/api/"), "/")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "api"
}

// maskSensitiveFields blanks out credential-bearing JSON fields in the audit snippet.
func maskSensitiveFields(body string) string {
	for _, field := range []string{"password", "secret", "api_key", "token"} {
		idx := 0
		for {
			pos := strings.Index(body[idx:], `"`+field+`"`)
			if pos == -1 {
				break
			}
			start := idx + pos
			colonIdx := strings.Index(body[start:], ":")
			if colonIdx == -1 {
				break
			}
			valStart := start + colonIdx + 1
			// Find the value bounds (quoted string)
			rest := body[valStart:]
			q1 := strings.Index(rest, `"`)
			if q1 == -1 {
				break
			}
			q2 := strings.Index(rest[q1+1:], `"`)
			if q2 == -1 {
				break
			}
			body = body[:valStart+q1+1] + "***" + body[valStart+q1+1+q2:]
			idx = valStart
		}
	}
	return body
}
