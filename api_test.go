package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baniakuntest4-alt/arhanud/database"
	"github.com/baniakuntest4-alt/arhanud/middlewares"
	"github.com/baniakuntest4-alt/arhanud/routes"
)

var (
	setupOnce sync.Once
	testApp   *fiber.App
)

// setup connects to the database named by the DB_* env vars, resets the
// schema, and builds the app. Tests are skipped entirely when DB_NAME is
// unset so the suite passes on machines without Postgres.
func setup(t *testing.T) *fiber.App {
	t.Helper()
	if os.Getenv("DB_NAME") == "" {
		t.Skip("DB_NAME not set; skipping end-to-end API tests")
	}
	if os.Getenv("JWT_SECRET_KEY") == "" && os.Getenv("JWT_SECRET") == "" {
		os.Setenv("JWT_SECRET_KEY", "e2e-test-secret")
	}

	setupOnce.Do(func() {
		database.Connect()
		for _, table := range []string{
			"audit_logs", "requests", "rank_histories", "position_histories",
			"educations", "family_members", "idempotency_keys", "personnel", "users",
		} {
			database.DB.Exec("DROP TABLE IF EXISTS " + table + " CASCADE")
		}
		database.AutoMigrate()
		if err := database.Migrate(); err != nil {
			panic(err)
		}

		testApp = fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler})
		routes.Register(testApp)
	})
	return testApp
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp.StatusCode, decoded
}

func login(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()
	status, body := doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status, "login %s: %v", username, body)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestCorrectionWorkflowOverHTTP(t *testing.T) {
	app := setup(t)

	// Seed the default accounts.
	status, _ := doJSON(t, app, http.MethodPost, "/api/init/setup", "", nil)
	require.Equal(t, http.StatusOK, status)

	admin := login(t, app, "admin", "admin123")
	personel := login(t, app, "personel1", "personel123")
	verifikator := login(t, app, "verifikator1", "verif123")

	// The correction subject.
	const nrp = "11120017460989"
	status, body := doJSON(t, app, http.MethodPost, "/api/personnel", admin, fiber.Map{
		"nrp":     nrp,
		"nama":    "Fredi Jaguar",
		"pangkat": "Serda",
		"jabatan": "Tabak Rudal",
		"satuan":  "Yonarhanud 1",
	})
	require.Equal(t, http.StatusCreated, status, "%v", body)

	// Personnel account submits a correction for its own record.
	status, body = doJSON(t, app, http.MethodPost, "/api/requests", personel, fiber.Map{
		"request_type": "correction",
		"nrp":          nrp,
		"payload": fiber.Map{
			"field_name": "nama",
			"nilai_lama": "Fredi Jaguar",
			"nilai_baru": "Fredy Jaguar",
		},
	})
	require.Equal(t, http.StatusCreated, status, "%v", body)
	requestID, _ := body["id"].(string)
	require.NotEmpty(t, requestID)
	assert.Equal(t, "pending", body["status"])

	// The verifier sees it pending.
	status, body = doJSON(t, app, http.MethodGet, "/api/requests?status=pending", verifikator, nil)
	require.Equal(t, http.StatusOK, status)
	requests, _ := body["requests"].([]any)
	require.NotEmpty(t, requests)

	// Approve it.
	status, body = doJSON(t, app, http.MethodPut, "/api/requests/"+requestID+"/verify", verifikator, fiber.Map{
		"decision": "approved",
		"note":     "ok",
	})
	require.Equal(t, http.StatusOK, status, "%v", body)
	assert.Equal(t, "approved", body["status"])
	assert.Equal(t, "ok", body["verifier_note"])

	// The approval propagated to the personnel record.
	status, body = doJSON(t, app, http.MethodGet, "/api/personnel?search="+nrp, admin, nil)
	require.Equal(t, http.StatusOK, status)
	list, _ := body["personnel"].([]any)
	require.Len(t, list, 1)
	record, _ := list[0].(map[string]any)
	assert.Equal(t, "Fredy Jaguar", record["nama"])

	// A second decision on the same request is a conflict.
	status, body = doJSON(t, app, http.MethodPut, "/api/requests/"+requestID+"/verify", verifikator, fiber.Map{
		"decision": "rejected",
		"note":     "changed my mind",
	})
	require.Equal(t, http.StatusConflict, status, "%v", body)
	assert.Equal(t, "approved", body["status"])
}

func TestRequestEndpointsEnforceRoles(t *testing.T) {
	app := setup(t)

	doJSON(t, app, http.MethodPost, "/api/init/setup", "", nil)
	pimpinan := login(t, app, "pimpinan", "pimpin123")
	staff := login(t, app, "staff1", "staff123")

	// Leaders cannot submit requests.
	status, _ := doJSON(t, app, http.MethodPost, "/api/requests", pimpinan, fiber.Map{
		"request_type": "correction",
		"nrp":          "11120017460989",
		"payload":      fiber.Map{"field_name": "nama", "nilai_lama": "A", "nilai_baru": "B"},
	})
	assert.Equal(t, http.StatusForbidden, status)

	// Staff cannot verify.
	status, _ = doJSON(t, app, http.MethodPut, "/api/requests/nonexistent/verify", staff, fiber.Map{
		"decision": "approved",
	})
	assert.Equal(t, http.StatusForbidden, status)

	// Unauthenticated access is rejected outright.
	status, _ = doJSON(t, app, http.MethodGet, "/api/requests", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestSubmitValidationOverHTTP(t *testing.T) {
	app := setup(t)

	doJSON(t, app, http.MethodPost, "/api/init/setup", "", nil)
	staff := login(t, app, "staff1", "staff123")

	// Unknown NRP.
	status, _ := doJSON(t, app, http.MethodPost, "/api/requests", staff, fiber.Map{
		"request_type": "correction",
		"nrp":          "00000000000000",
		"payload":      fiber.Map{"field_name": "nama", "nilai_lama": "A", "nilai_baru": "B"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	// Missing payload fields.
	status, _ = doJSON(t, app, http.MethodPost, "/api/requests", staff, fiber.Map{
		"request_type": "mutation",
		"nrp":          "11120017460989",
		"payload":      fiber.Map{"jabatan_asal": "Tabak Rudal"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}
