package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestRecurringFlow(t *testing.T) {
	app := setupApp(t)

	t.Run("definition materializes once per month", func(t *testing.T) {
		token := app.registerUser(t, "recurring1@example.com", "password123")
		today := time.Now().Day()

		body := fmt.Sprintf(`{"name":"Sueldo","amount":"1000","currency":"USD","category":"Salary","day_of_month":%d}`, today)
		rec := app.request("POST", "/api/v1/recurring/incomes", body, token)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create definition failed: %d %s", rec.Code, rec.Body.String())
		}

		rec = app.request("POST", "/api/v1/recurring/process?kind=income", "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("process failed: %d %s", rec.Code, rec.Body.String())
		}
		if created := parseJSON(t, rec)["created"].(float64); created != 1 {
			t.Fatalf("expected 1 created, got %v", created)
		}

		// Same month, second run: nothing to do.
		rec = app.request("POST", "/api/v1/recurring/process?kind=income", "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("reprocess failed: %d", rec.Code)
		}
		if created := parseJSON(t, rec)["created"].(float64); created != 0 {
			t.Errorf("expected idempotent re-run, got %v created", created)
		}

		// The materialized entry converted 1000 USD at venta 1000.
		rec = app.request("GET", "/api/v1/transactions", "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("list failed: %d", rec.Code)
		}
		data := parseJSON(t, rec)["data"].([]interface{})
		if len(data) != 1 {
			t.Fatalf("expected 1 transaction, got %d", len(data))
		}
		tx := data[0].(map[string]interface{})
		if tx["amount_ars"] != "1000000" {
			t.Errorf("expected amount_ars 1000000, got %v", tx["amount_ars"])
		}
		if tx["is_recurring"] != true {
			t.Error("expected entry flagged as recurring")
		}
	})

	t.Run("invalid kind rejected", func(t *testing.T) {
		token := app.registerUser(t, "recurring2@example.com", "password123")

		rec := app.request("POST", "/api/v1/recurring/process?kind=weekly", "", token)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("definition crud", func(t *testing.T) {
		token := app.registerUser(t, "recurring3@example.com", "password123")

		rec := app.request("POST", "/api/v1/recurring/expenses",
			`{"name":"Alquiler","icon":"🏠","amount":"500000","currency":"ARS","category":"Housing","day_of_month":1}`, token)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create failed: %d %s", rec.Code, rec.Body.String())
		}
		expense := parseJSON(t, rec)["recurring_expense"].(map[string]interface{})
		id := int(expense["id"].(float64))

		rec = app.request("PUT", fmt.Sprintf("/api/v1/recurring/expenses/%d", id),
			`{"name":"Alquiler","icon":"🏠","amount":"550000","currency":"ARS","category":"Housing","day_of_month":1}`, token)
		if rec.Code != http.StatusOK {
			t.Fatalf("update failed: %d %s", rec.Code, rec.Body.String())
		}

		rec = app.request("DELETE", fmt.Sprintf("/api/v1/recurring/expenses/%d", id), "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("delete failed: %d", rec.Code)
		}

		rec = app.request("GET", "/api/v1/recurring/expenses", "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("list failed: %d", rec.Code)
		}
	})
}
