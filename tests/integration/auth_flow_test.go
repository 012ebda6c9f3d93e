package integration

import (
	"net/http"
	"testing"
)

func TestAuthFlow(t *testing.T) {
	app := setupApp(t)

	t.Run("register login and profile", func(t *testing.T) {
		token := app.registerUser(t, "maria@example.com", "password123")

		rec := app.request("GET", "/api/v1/profile", "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("profile failed: %d %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		user := result["user"].(map[string]interface{})
		if user["email"] != "maria@example.com" {
			t.Errorf("expected maria@example.com, got %v", user["email"])
		}

		rec = app.request("POST", "/api/v1/auth/login", `{"email":"maria@example.com","password":"password123"}`, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("duplicate registration rejected", func(t *testing.T) {
		app.registerUser(t, "dup@example.com", "password123")

		rec := app.request("POST", "/api/v1/auth/register", `{"email":"dup@example.com","password":"password123"}`, "")
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		app.registerUser(t, "pedro@example.com", "password123")

		rec := app.request("POST", "/api/v1/auth/login", `{"email":"pedro@example.com","password":"wrong-password"}`, "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("refresh rotates the pair", func(t *testing.T) {
		token := app.registerUser(t, "ana@example.com", "password123")

		rec := app.request("POST", "/api/v1/auth/login", `{"email":"ana@example.com","password":"password123"}`, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("login failed: %d", rec.Code)
		}
		refreshToken := parseJSON(t, rec)["refresh_token"].(string)

		rec = app.request("POST", "/api/v1/auth/refresh", `{"refresh_token":"`+refreshToken+`"}`, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("refresh failed: %d %s", rec.Code, rec.Body.String())
		}
		newToken := parseJSON(t, rec)["token"].(string)
		if newToken == "" {
			t.Error("expected a new access token")
		}

		// The original access token keeps working until it expires.
		rec = app.request("GET", "/api/v1/profile", "", token)
		if rec.Code != http.StatusOK {
			t.Errorf("expected original token still valid, got %d", rec.Code)
		}
	})

	t.Run("protected routes require a token", func(t *testing.T) {
		rec := app.request("GET", "/api/v1/transactions", "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}

		rec = app.request("GET", "/api/v1/transactions", "", "not-a-jwt")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for garbage token, got %d", rec.Code)
		}
	})
}
