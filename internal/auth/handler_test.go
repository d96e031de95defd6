package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/booknest/booknest/internal/auth"
	"github.com/booknest/booknest/pkg/database"
	"github.com/booknest/booknest/pkg/models"
	"github.com/gin-gonic/gin"
)

func setupAuthTest(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	handler := auth.NewHandler(db)

	router := gin.New()
	router.POST("/api/auth/register", handler.Register)
	router.POST("/api/auth/login", handler.Login)

	protected := router.Group("")
	protected.Use(auth.Identify(), auth.RequireUser())
	protected.PUT("/api/auth/nickname", handler.UpdateNickname)

	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestRegister_ReturnsDecodableToken(t *testing.T) {
	router := setupAuthTest(t)

	resp := doJSON(t, router, "POST", "/api/auth/register",
		gin.H{"username": "alice", "password": "secret1"}, "")
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var body models.AuthResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if body.Username != "alice" {
		t.Fatalf("expected username alice, got %s", body.Username)
	}
	if body.Nickname != "alice" {
		t.Fatalf("expected nickname to default to username, got %s", body.Nickname)
	}

	id, err := auth.DecodeToken(body.Token)
	if err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if id != body.UserID {
		t.Fatalf("token user id %d does not match response user id %d", id, body.UserID)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	router := setupAuthTest(t)

	first := doJSON(t, router, "POST", "/api/auth/register",
		gin.H{"username": "bob", "password": "secret1"}, "")
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", first.Code)
	}

	second := doJSON(t, router, "POST", "/api/auth/register",
		gin.H{"username": "bob", "password": "other12"}, "")
	if second.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", second.Code, second.Body.String())
	}
}

func TestLogin(t *testing.T) {
	router := setupAuthTest(t)

	doJSON(t, router, "POST", "/api/auth/register",
		gin.H{"username": "carol", "password": "secret1"}, "")

	good := doJSON(t, router, "POST", "/api/auth/login",
		gin.H{"username": "carol", "password": "secret1"}, "")
	if good.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", good.Code, good.Body.String())
	}

	badPassword := doJSON(t, router, "POST", "/api/auth/login",
		gin.H{"username": "carol", "password": "wrong12"}, "")
	if badPassword.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", badPassword.Code)
	}

	unknown := doJSON(t, router, "POST", "/api/auth/login",
		gin.H{"username": "nobody", "password": "secret1"}, "")
	if unknown.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown account, got %d", unknown.Code)
	}
}

func TestUpdateNickname_RequiresAuth(t *testing.T) {
	router := setupAuthTest(t)

	resp := doJSON(t, router, "PUT", "/api/auth/nickname", gin.H{"nickname": "Al"}, "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}

	register := doJSON(t, router, "POST", "/api/auth/register",
		gin.H{"username": "dave", "password": "secret1"}, "")
	var body models.AuthResponse
	json.Unmarshal(register.Body.Bytes(), &body)

	ok := doJSON(t, router, "PUT", "/api/auth/nickname", gin.H{"nickname": "Big D"}, body.Token)
	if ok.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", ok.Code, ok.Body.String())
	}
}
