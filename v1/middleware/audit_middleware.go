package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/raven2t2/importiq-backend/audit"
	"github.com/raven2t2/importiq-backend/monitoring"
	"github.com/raven2t2/importiq-backend/v1/models"
	v1utils "github.com/raven2t2/importiq-backend/v1/utils"
)

// LogAudit publishes an audit event for one request. Only write operations
// (POST, PUT, PATCH, DELETE) are recorded.
func LogAudit(auditor audit.Auditor, r *http.Request, resource string, resourceID *string, status models.AuditStatus) {
	if auditor == nil || !auditor.IsEnabled() {
		return
	}
	if !isWriteOperation(r.Method) {
		return
	}

	action := determineEventAction(r.Method)
	if action == "" {
		return
	}

	var actorID *string
	if user, err := v1utils.GetAuthenticatedUser(r.Context()); err == nil {
		actorID = &user.UserID
	}

	event := &audit.Event{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Action:     action,
		Status:     string(status),
		ActorID:    actorID,
		Resource:   resource,
		ResourceID: resourceID,
		RequestIP:  v1utils.GetRequestIP(r),
	}

	// Fire-and-forget with a background context; the request context may be
	// cancelled before the publish completes
	auditor.LogEvent(context.Background(), event)
}

// LogAuditEvent records an audit event through the global auditor and counts
// the mutation as a business event. Handlers call this directly after each
// write operation.
func LogAuditEvent(r *http.Request, resource models.ResourceType, resourceID *string, status models.AuditStatus) {
	if action := determineEventAction(r.Method); action != "" {
		monitoring.RecordBusinessEvent(
			strings.ToLower(string(resource))+"_"+strings.ToLower(action),
			string(status),
		)
	}

	auditor := audit.GlobalAuditor()
	if auditor == nil {
		slog.Warn("Audit logging skipped: global auditor is not initialized")
		return
	}
	LogAudit(auditor, r, string(resource), resourceID, status)
}

func isWriteOperation(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch || method == http.MethodDelete
}

func determineEventAction(method string) string {
	switch method {
	case http.MethodPost:
		return "CREATE"
	case http.MethodPut, http.MethodPatch:
		return "UPDATE"
	case http.MethodDelete:
		return "DELETE"
	default:
		return ""
	}
}
