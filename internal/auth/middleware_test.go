package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func gameIDFromPath(_ *http.Request) string { return "game-1" }

func TestRequirePlayerValidToken(t *testing.T) {
	mgr := NewJWTManager("test-secret")
	tokens := NewTokenStore()
	token, _ := mgr.GenerateToken("game-1", 2)
	tokens.Register("game-1", 2, token)

	var capturedPlayerID int
	var ok bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPlayerID, ok = PlayerIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := RequirePlayer(mgr, tokens, gameIDFromPath)(inner)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !ok || capturedPlayerID != 2 {
		t.Errorf("expected player_id=2 injected into context, got %d (ok=%v)", capturedPlayerID, ok)
	}
}

func TestRequirePlayerMissingHeader(t *testing.T) {
	mgr := NewJWTManager("test-secret")
	tokens := NewTokenStore()
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})

	handler := RequirePlayer(mgr, tokens, gameIDFromPath)(inner)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestRequirePlayerBadFormat(t *testing.T) {
	mgr := NewJWTManager("test-secret")
	tokens := NewTokenStore()
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})
	handler := RequirePlayer(mgr, tokens, gameIDFromPath)(inner)

	tests := []struct {
		name   string
		header string
	}{
		{"no bearer prefix", "Token abc123"},
		{"bearer only", "Bearer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusForbidden {
				t.Errorf("expected 403, got %d", rec.Code)
			}
		})
	}
}

func TestRequirePlayerInvalidToken(t *testing.T) {
	mgr := NewJWTManager("test-secret")
	tokens := NewTokenStore()
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})

	handler := RequirePlayer(mgr, tokens, gameIDFromPath)(inner)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer invalid.jwt.token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestRequirePlayerCaseInsensitiveBearer(t *testing.T) {
	mgr := NewJWTManager("test-secret")
	tokens := NewTokenStore()
	token, _ := mgr.GenerateToken("game-1", 0)
	tokens.Register("game-1", 0, token)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := RequirePlayer(mgr, tokens, gameIDFromPath)(inner)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for lowercase bearer, got %d", rec.Code)
	}
}

func TestRequirePlayerRejectsTokenNotInTokenStore(t *testing.T) {
	mgr := NewJWTManager("test-secret")
	tokens := NewTokenStore()
	// Mint a structurally valid token but never register it — this
	// models a revoked or never-issued token.
	token, _ := mgr.GenerateToken("game-1", 0)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})
	handler := RequirePlayer(mgr, tokens, gameIDFromPath)(inner)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for an unregistered token, got %d", rec.Code)
	}
}

func TestRequirePlayerRejectsTokenForAnotherGame(t *testing.T) {
	mgr := NewJWTManager("test-secret")
	tokens := NewTokenStore()
	token, _ := mgr.GenerateToken("game-2", 0)
	tokens.Register("game-2", 0, token)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})
	// gameIDFromPath always reports "game-1"; the token is scoped to "game-2".
	handler := RequirePlayer(mgr, tokens, gameIDFromPath)(inner)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for a token scoped to a different game, got %d", rec.Code)
	}
}

func TestPlayerIDFromContextEmpty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	_, ok := PlayerIDFromContext(req.Context())
	if ok {
		t.Error("expected no player id in a fresh context")
	}
}
