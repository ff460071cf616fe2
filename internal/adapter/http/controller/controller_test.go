package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/mamgad/DVBLab/internal/adapter/http/controller"
	"github.com/mamgad/DVBLab/internal/adapter/http/middleware"
	"github.com/mamgad/DVBLab/internal/adapter/http/router"
	"github.com/mamgad/DVBLab/internal/adapter/repository/implementations"
	"github.com/mamgad/DVBLab/internal/password"
	"github.com/mamgad/DVBLab/internal/token"
	"github.com/mamgad/DVBLab/internal/usecase"
	"github.com/mamgad/DVBLab/migrations"
)

// newTestServer wires the full stack over an in-memory database, the same way
// cmd/server does it.
func newTestServer(t *testing.T) *mux.Router {
	t.Helper()

	db, err := implementations.Open(context.Background(), "sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := implementations.RunMigrations(context.Background(), db, migrations.FS, "sqlite"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	userRepo := implementations.NewUserRepository(db)
	transferRepo := implementations.NewTransferRepository(db)
	auditRepo := implementations.NewAuditRepository(db)

	audit := usecase.NewAuditService(auditRepo)
	accounts := usecase.NewAccountService(userRepo, password.NewHasher(4, false), audit, false)
	transfers := usecase.NewTransferService(transferRepo, audit)

	issuer := token.NewIssuer("test-secret", 24*time.Hour)
	authenticator := middleware.NewAuthenticator(issuer, userRepo)

	return router.New(
		authenticator,
		[]string{"http://localhost:3000"},
		controller.NewAuthController(accounts, issuer),
		controller.NewProfileController(accounts),
		controller.NewTransferController(transfers),
	)
}

func doJSON(t *testing.T, handler http.Handler, method, path, bearer string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("encode request: %v", err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func registerAndLogin(t *testing.T, handler http.Handler, username string) (int64, string) {
	t.Helper()

	rec := doJSON(t, handler, http.MethodPost, "/api/register", "", map[string]string{
		"username": username,
		"password": "password123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status = %d, body = %s", username, rec.Code, rec.Body)
	}
	var registered struct {
		Message string `json:"message"`
		ID      int64  `json:"id"`
	}
	decodeBody(t, rec, &registered)
	if registered.Message != "User registered successfully" {
		t.Fatalf("register message = %q", registered.Message)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/login", "", map[string]string{
		"username": username,
		"password": "password123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status = %d, body = %s", username, rec.Code, rec.Body)
	}
	var login struct {
		Token string `json:"token"`
		User  struct {
			ID       int64   `json:"id"`
			Username string  `json:"username"`
			Balance  float64 `json:"balance"`
		} `json:"user"`
	}
	decodeBody(t, rec, &login)
	if login.Token == "" {
		t.Fatal("expected token in login response")
	}
	if login.User.ID != registered.ID {
		t.Fatalf("login user id = %d, want %d", login.User.ID, registered.ID)
	}

	return registered.ID, login.Token
}

func TestRegisterLoginMeFlow(t *testing.T) {
	handler := newTestServer(t)

	_, bearer := registerAndLogin(t, handler, "alice")

	rec := doJSON(t, handler, http.MethodGet, "/api/me", bearer, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: status = %d, body = %s", rec.Code, rec.Body)
	}
	var me struct {
		Username string         `json:"username"`
		Balance  float64        `json:"balance"`
		Profile  map[string]any `json:"profile"`
	}
	decodeBody(t, rec, &me)
	if me.Username != "alice" {
		t.Fatalf("username = %q", me.Username)
	}
	if me.Balance != 0 {
		t.Fatalf("balance = %v, want 0", me.Balance)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	handler := newTestServer(t)
	registerAndLogin(t, handler, "alice")

	rec := doJSON(t, handler, http.MethodPost, "/api/register", "", map[string]string{
		"username": "alice",
		"password": "different",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, rec, &body)
	if body.Error != "Username already exists" {
		t.Fatalf("error = %q", body.Error)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	handler := newTestServer(t)
	registerAndLogin(t, handler, "alice")

	rec := doJSON(t, handler, http.MethodPost, "/api/login", "", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	handler := newTestServer(t)

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/me"},
		{http.MethodGet, "/api/profile"},
		{http.MethodGet, "/api/transactions"},
		{http.MethodPost, "/api/transfer"},
	} {
		rec := doJSON(t, handler, route.method, route.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: status = %d, want 401", route.method, route.path, rec.Code)
		}
	}
}

func TestTransferFlow(t *testing.T) {
	handler := newTestServer(t)

	aliceID, aliceToken := registerAndLogin(t, handler, "alice")
	bobID, bobToken := registerAndLogin(t, handler, "bob")

	// New accounts hold no funds, so the first attempt bounces.
	rec := doJSON(t, handler, http.MethodPost, "/api/transfer", aliceToken, map[string]any{
		"to_user_id":  bobID,
		"amount":      "50.00",
		"description": "Lunch",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("overdraw: status = %d, body = %s", rec.Code, rec.Body)
	}
	var failure struct {
		Error string `json:"error"`
	}
	decodeBody(t, rec, &failure)
	if failure.Error != "Insufficient balance" {
		t.Fatalf("error = %q", failure.Error)
	}

	// A transfer to a receiver that does not exist is a 404.
	rec = doJSON(t, handler, http.MethodPost, "/api/transfer", aliceToken, map[string]any{
		"to_user_id": 9999,
		"amount":     "1.00",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing receiver: status = %d, body = %s", rec.Code, rec.Body)
	}

	// Histories are visible to their owner and empty so far.
	rec = doJSON(t, handler, http.MethodGet, "/api/transactions", aliceToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d, body = %s", rec.Code, rec.Body)
	}
	var history []map[string]any
	decodeBody(t, rec, &history)
	if len(history) != 0 {
		t.Fatalf("history length = %d, want 0", len(history))
	}

	// Reading another account's history is forbidden.
	rec = doJSON(t, handler, http.MethodGet, "/api/transactions?user_id="+itoa(aliceID), bobToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign history: status = %d, body = %s", rec.Code, rec.Body)
	}
}

func TestProfileUpdateAndImport(t *testing.T) {
	handler := newTestServer(t)
	_, bearer := registerAndLogin(t, handler, "alice")

	rec := doJSON(t, handler, http.MethodPut, "/api/profile", bearer, map[string]string{
		"fullName": "Alice Johnson",
		"email":    "alice@example.com",
		"phone":    "555-0100",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update profile: status = %d, body = %s", rec.Code, rec.Body)
	}
	var updated struct {
		Message string `json:"message"`
		Profile struct {
			FullName string `json:"fullName"`
			Email    string `json:"email"`
			Phone    string `json:"phone"`
		} `json:"profile"`
	}
	decodeBody(t, rec, &updated)
	if updated.Profile.FullName != "Alice Johnson" {
		t.Fatalf("fullName = %q", updated.Profile.FullName)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/profile/import", bearer, map[string]string{
		"profile_yaml": "fullName: Alice Imported\naddress: 12 High Street\n",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("import: status = %d, body = %s", rec.Code, rec.Body)
	}

	// Unsafe tags are rejected before anything is stored.
	rec = doJSON(t, handler, http.MethodPost, "/api/profile/import", bearer, map[string]string{
		"profile_yaml": "!!python/object/apply:os.system [id]",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unsafe import: status = %d, body = %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/profile", bearer, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get profile: status = %d, body = %s", rec.Code, rec.Body)
	}
	var fetched struct {
		FullName string `json:"fullName"`
		Address  string `json:"address"`
	}
	decodeBody(t, rec, &fetched)
	if fetched.FullName != "Alice Imported" {
		t.Fatalf("fullName = %q, want the imported value", fetched.FullName)
	}
	if fetched.Address != "12 High Street" {
		t.Fatalf("address = %q", fetched.Address)
	}
}

func TestUpdatePasswordForeignAccountDenied(t *testing.T) {
	handler := newTestServer(t)

	_, aliceToken := registerAndLogin(t, handler, "alice")
	bobID, _ := registerAndLogin(t, handler, "bob")

	rec := doJSON(t, handler, http.MethodPost, "/api/update-password", aliceToken, map[string]any{
		"user_id":      bobID,
		"new_password": "hijacked",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403, body = %s", rec.Code, rec.Body)
	}

	// Bob can still log in with the original password.
	rec = doJSON(t, handler, http.MethodPost, "/api/login", "", map[string]string{
		"username": "bob",
		"password": "password123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("bob login after denied change: status = %d", rec.Code)
	}
}

func TestLogout(t *testing.T) {
	handler := newTestServer(t)
	_, bearer := registerAndLogin(t, handler, "alice")

	rec := doJSON(t, handler, http.MethodPost, "/api/logout", bearer, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: status = %d", rec.Code)
	}

	// Tokens are stateless; the old token keeps working until expiry.
	rec = doJSON(t, handler, http.MethodGet, "/api/me", bearer, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me after logout: status = %d, want 200", rec.Code)
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
