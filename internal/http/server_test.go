package http

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestServerServesHealthcheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv := NewServer(RouterConfig{})
	if srv.Engine == nil {
		t.Fatalf("expected engine to be configured")
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/healthcheck", nil)
	srv.Engine.ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("healthcheck status = %d, want 200", w.Code)
	}
	var body struct {
		Success bool   `json:"success"`
		Version string `json:"version"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode healthcheck body: %v", err)
	}
	if !body.Success || body.Version == "" {
		t.Fatalf("unexpected healthcheck body: %s", w.Body.String())
	}
}
