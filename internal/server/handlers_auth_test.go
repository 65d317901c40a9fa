package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestRegisterCreatesUser(t *testing.T) {
	ta := newTestApp(t)

	rec := performRequest(t, ta.router, http.MethodPost, "/register", "", map[string]string{
		"username": "alice",
		"password": "hunter22",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeJSONMap(t, rec)
	if body["username"] != "alice" {
		t.Fatalf("username = %v", body["username"])
	}
	if id, _ := body["user_id"].(string); id == "" {
		t.Fatal("expected user_id in response")
	}
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	ta := newTestApp(t)
	registerAndLogin(t, ta, "alice", "hunter22")

	rec := performRequest(t, ta.router, http.MethodPost, "/register", "", map[string]string{
		"username": "alice",
		"password": "different",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register returned %d, want 409", rec.Code)
	}
}

func TestRegisterRequiresCredentials(t *testing.T) {
	ta := newTestApp(t)

	for _, payload := range []map[string]string{
		{"username": "", "password": "x"},
		{"username": "alice", "password": ""},
		{"username": "   ", "password": "x"},
	} {
		rec := performRequest(t, ta.router, http.MethodPost, "/register", "", payload)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("register %v returned %d, want 400", payload, rec.Code)
		}
	}
}

func TestLoginIssuesValidToken(t *testing.T) {
	ta := newTestApp(t)
	token := registerAndLogin(t, ta, "alice", "hunter22")

	parsed, err := jwt.Parse(token, func(tok *jwt.Token) (any, error) {
		return []byte(baseTestConfig.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("issued token does not verify: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["iss"] != "maximas" {
		t.Fatalf("token issuer = %v", claims["iss"])
	}
	if sub, _ := claims["sub"].(string); sub == "" {
		t.Fatal("token subject missing")
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	ta := newTestApp(t)
	registerAndLogin(t, ta, "alice", "hunter22")

	rec := performRequest(t, ta.router, http.MethodPost, "/login", "", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password returned %d, want 401", rec.Code)
	}
	if responseError(t, rec) != "Invalid username or password" {
		t.Fatalf("error = %q", responseError(t, rec))
	}
}

func TestLoginRejectsUnknownUser(t *testing.T) {
	ta := newTestApp(t)

	rec := performRequest(t, ta.router, http.MethodPost, "/login", "", map[string]string{
		"username": "nobody",
		"password": "whatever",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user returned %d, want 401", rec.Code)
	}
}

func TestAuthMiddlewareRejectsBadTokens(t *testing.T) {
	ta := newTestApp(t)

	cases := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "not-a-jwt"},
		{"wrong signing key", signTestToken(t, "some-user", "other-secret-1234567890", "maximas", time.Hour)},
		{"wrong issuer", signTestToken(t, "some-user", baseTestConfig.JWTSecret, "imposter", time.Hour)},
		{"expired", signTestToken(t, "some-user", baseTestConfig.JWTSecret, "maximas", -time.Hour)},
	}
	for _, tc := range cases {
		rec := performRequest(t, ta.router, http.MethodPost, "/chat", tc.token, map[string]string{
			"message": "hi", "session_id": "s1",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s token returned %d, want 401", tc.name, rec.Code)
		}
	}
}

func TestAuthMiddlewareRejectsDeletedUser(t *testing.T) {
	ta := newTestApp(t)
	// A well-formed token whose subject was never registered.
	token := signTestToken(t, "ghost-user-id", baseTestConfig.JWTSecret, "maximas", time.Hour)

	rec := performRequest(t, ta.router, http.MethodPost, "/chat", token, map[string]string{
		"message": "hi", "session_id": "s1",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("ghost subject returned %d, want 401", rec.Code)
	}
}

func TestLogout(t *testing.T) {
	ta := newTestApp(t)
	token := registerAndLogin(t, ta, "alice", "hunter22")

	rec := performRequest(t, ta.router, http.MethodPost, "/chat", token, map[string]string{
		"message": "hi", "session_id": "s1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("chat returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = performRequest(t, ta.router, http.MethodPost, "/logout", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout returned %d: %s", rec.Code, rec.Body.String())
	}

	// Stateless tokens stay usable until expiry; only live engines are
	// reclaimed.
	rec = performRequest(t, ta.router, http.MethodPost, "/chat", token, map[string]string{
		"message": "hi again", "session_id": "s1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("chat after logout returned %d: %s", rec.Code, rec.Body.String())
	}
}

func signTestToken(t *testing.T, sub, secret, issuer string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": sub,
		"iat": time.Now().UTC().Add(-time.Minute).Unix(),
		"exp": time.Now().UTC().Add(ttl).Unix(),
		"iss": issuer,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
