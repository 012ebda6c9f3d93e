package integration

import (
	"net/http"
	"testing"
)

func TestBackupFlow(t *testing.T) {
	app := setupApp(t)

	t.Run("export import round trip", func(t *testing.T) {
		token := app.registerUser(t, "backup1@example.com", "password123")

		rec := app.request("POST", "/api/v1/transactions",
			`{"type":"expense","amount":"5000","currency":"ARS","category":"Comida"}`, token)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create failed: %d", rec.Code)
		}
		rec = app.request("POST", "/api/v1/shortcuts",
			`{"name":"Café","icon":"☕","category":"Comida","amount":"2500","currency":"ARS","sort_order":1}`, token)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create shortcut failed: %d %s", rec.Code, rec.Body.String())
		}

		rec = app.request("GET", "/api/v1/export", "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("export failed: %d %s", rec.Code, rec.Body.String())
		}
		backup := rec.Body.String()

		doc := parseJSON(t, rec)
		if doc["version"].(float64) != 1 {
			t.Errorf("expected version 1, got %v", doc["version"])
		}

		// Import wipes and rewrites the present sections.
		rec = app.request("POST", "/api/v1/import", backup, token)
		if rec.Code != http.StatusOK {
			t.Fatalf("import failed: %d %s", rec.Code, rec.Body.String())
		}

		rec = app.request("GET", "/api/v1/transactions", "", token)
		data := parseJSON(t, rec)["data"].([]interface{})
		if len(data) != 1 {
			t.Errorf("expected 1 transaction after round trip, got %d", len(data))
		}

		rec = app.request("GET", "/api/v1/shortcuts", "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("shortcut list failed: %d", rec.Code)
		}

		// The restore stamps the backup date on settings.
		rec = app.request("GET", "/api/v1/settings", "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("settings failed: %d", rec.Code)
		}
		settings := parseJSON(t, rec)["settings"].(map[string]interface{})
		if settings["last_backup_date"] == nil {
			t.Error("expected last_backup_date stamped after import")
		}
	})

	t.Run("unsupported version rejected", func(t *testing.T) {
		token := app.registerUser(t, "backup2@example.com", "password123")

		rec := app.request("POST", "/api/v1/import", `{"version":99,"data":{"transactions":[]}}`, token)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("blue rate endpoint", func(t *testing.T) {
		token := app.registerUser(t, "backup3@example.com", "password123")

		rec := app.request("GET", "/api/v1/rates/blue", "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("rate failed: %d %s", rec.Code, rec.Body.String())
		}
		rate := parseJSON(t, rec)["rate"].(map[string]interface{})
		if rate["venta"] != "1000" {
			t.Errorf("expected venta 1000, got %v", rate["venta"])
		}
	})
}
