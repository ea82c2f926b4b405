package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/curlben/msuas-server/internal/auth"
	"github.com/curlben/msuas-server/internal/config"
	"github.com/curlben/msuas-server/internal/httpapi/middleware"
	"github.com/curlben/msuas-server/internal/models"
)

type fakePresence struct {
	statuses map[uint64]string
}

func (f *fakePresence) GetPresence(ctx context.Context, userID uint64) (string, error) {
	if s, ok := f.statuses[userID]; ok {
		return s, nil
	}
	return "offline", nil
}

func newPresenceFixture(t *testing.T, presence PresenceReader) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewHandler(nil, config.Config{JWTSecret: testSecret}, nil, nil, nil, presence)

	r := gin.New()
	authed := r.Group("/api/v1", middleware.AuthRequired(testSecret))
	authed.GET("/users/:id/presence", h.GetUserPresence)
	return r
}

func getPresence(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	token, err := auth.SignJWT(1, "Amina Yusuf", models.RoleStudent, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetUserPresence_ReturnsStoredStatus(t *testing.T) {
	r := newPresenceFixture(t, &fakePresence{statuses: map[uint64]string{42: "busy"}})

	w := getPresence(t, r, "/api/v1/users/42/presence")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	code, data := decodeEnvelope(t, w)
	if code != 0 {
		t.Fatalf("code = %d", code)
	}
	if data["status"] != "busy" || data["userId"].(float64) != 42 {
		t.Fatalf("data = %v", data)
	}
}

func TestGetUserPresence_UnknownUserReadsOffline(t *testing.T) {
	r := newPresenceFixture(t, &fakePresence{})

	w := getPresence(t, r, fmt.Sprintf("/api/v1/users/%d/presence", 9999))
	_, data := decodeEnvelope(t, w)
	if data["status"] != "offline" {
		t.Fatalf("status = %v, want offline", data["status"])
	}
}

func TestGetUserPresence_BadID(t *testing.T) {
	r := newPresenceFixture(t, &fakePresence{})

	w := getPresence(t, r, "/api/v1/users/notanumber/presence")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	code, _ := decodeEnvelope(t, w)
	if code != 10014 {
		t.Fatalf("code = %d, want 10014", code)
	}
}
