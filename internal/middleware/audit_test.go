package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/student-portal-api/internal/models"
)

func newAuditRouter(logger *zap.Logger, status int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
		c.Next()
	})
	router.DELETE("/calendar-events/:id", Audit(logger, "delete", "calendar_event"), func(c *gin.Context) {
		c.Status(status)
	})
	return router
}

func TestAuditLogsSuccessfulWrites(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	router := newAuditRouter(zap.New(core), http.StatusNoContent)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodDelete, "/calendar-events/evt-1", nil))

	entries := logs.FilterMessage("audit").All()
	if len(entries) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["user_id"] != "admin-1" {
		t.Fatalf("expected user_id admin-1, got %v", fields["user_id"])
	}
	if fields["resource_id"] != "evt-1" {
		t.Fatalf("expected resource_id evt-1, got %v", fields["resource_id"])
	}
	if fields["action"] != "delete" {
		t.Fatalf("expected action delete, got %v", fields["action"])
	}
}

func TestAuditSkipsFailedWrites(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	router := newAuditRouter(zap.New(core), http.StatusNotFound)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodDelete, "/calendar-events/missing", nil))

	if logs.Len() != 0 {
		t.Fatalf("expected no audit entries, got %d", logs.Len())
	}
}
