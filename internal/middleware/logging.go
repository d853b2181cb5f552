// internal/middleware/logging.go
package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/utils"
)

// AuditRecorder persists admin actions.
type AuditRecorder interface {
	RecordAudit(ctx context.Context, entry *models.AuditLog)
}

var redactedFields = []string{"password", "current_password", "new_password", "confirm_password"}

// AuditLog records every mutating request that passes through it. Mount it
// on the admin group after AuthRequired.
func AuditLog(recorder AuditRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			c.Next()
			return
		}

		var requestData map[string]interface{}
		if c.Request.Body != nil && isJSON(c.ContentType()) {
			body, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
			if len(body) > 0 {
				_ = json.Unmarshal(body, &requestData)
			}
			for _, f := range redactedFields {
				if _, ok := requestData[f]; ok {
					requestData[f] = "[redacted]"
				}
			}
		}

		c.Next()

		entry := &models.AuditLog{
			Action:       c.Request.Method + " " + c.FullPath(),
			ResourceType: extractResourceType(c.Request.URL.Path),
			ResourceID:   extractResourceID(c.Request.URL.Path),
			NewValues:    models.JSONB(requestData),
			Status:       c.Writer.Status(),
			IPAddress:    c.ClientIP(),
			UserAgent:    c.Request.UserAgent(),
		}
		if uid, ok := utils.GetUserIDFromContext(c); ok {
			if parsed, err := uuid.Parse(uid); err == nil {
				entry.UserID = &parsed
			}
		}

		recorder.RecordAudit(c.Request.Context(), entry)
	}
}

func isJSON(contentType string) bool {
	return contentType == gin.MIMEJSON
}

// extractResourceType returns the first path segment after the API prefix
// and the admin group, e.g. /v1/admin/orders/123/status gives "orders".
func extractResourceType(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for len(parts) > 0 && (parts[0] == "v1" || parts[0] == "admin") {
		parts = parts[1:]
	}
	if len(parts) == 0 || parts[0] == "" {
		return "unknown"
	}
	return parts[0]
}

func extractResourceID(path string) string {
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if _, err := uuid.Parse(part); err == nil {
			return part
		}
	}
	return ""
}

// RequestLogger writes one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).Milliseconds(),
			"ip":         c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		}
		if uid, ok := c.Get("user_id"); ok {
			fields["user_id"] = uid
		}

		entry := logrus.WithFields(fields)
		switch {
		case len(c.Errors) > 0:
			entry.WithError(c.Errors.Last()).Error("Request failed")
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("Request processed")
		default:
			entry.Info("Request processed")
		}
	}
}
