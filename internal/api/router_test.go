package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/intlpay/payments-portal/internal/core/domain"
	"github.com/intlpay/payments-portal/internal/core/ports"
	"github.com/intlpay/payments-portal/internal/core/service"
	"github.com/intlpay/payments-portal/internal/core/token"
	"github.com/intlpay/payments-portal/internal/infrastructure/db/memory"
	redisstore "github.com/intlpay/payments-portal/internal/infrastructure/db/redis"
)

type testApp struct {
	e        *echo.Echo
	auth     *service.AuthService
	tokens   *token.Manager
	payments *memory.PaymentRepository
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	tokens, err := token.NewManager("router-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	users := memory.NewUserRepository()
	payments := memory.NewPaymentRepository()
	auth := service.NewAuthService(users, tokens, service.MinBcryptCost, zerolog.Nop())

	e := NewRouter(Deps{
		Logger:   zerolog.Nop(),
		Auth:     auth,
		Users:    service.NewUserService(users),
		Payments: service.NewPaymentService(payments, zerolog.Nop()),
		Tokens:   tokens,
	})
	return &testApp{e: e, auth: auth, tokens: tokens, payments: payments}
}

func (a *testApp) do(t *testing.T, method, path, body, bearer string) (int, map[string]any) {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec.Code, resp
}

const (
	janeRegister = `{"name":"Jane Doe","idNumber":"1234567890123","accountNumber":"2000000001","password":"Str0ng!Pass"}`
	janeLogin    = `{"accountNumber":"2000000001","password":"Str0ng!Pass"}`
	payment      = `{"recipientAccount":"3000000001","amount":120.75,"currency":"USD","description":"Supplier invoice 7"}`
)

func TestRouter_CustomerJourney(t *testing.T) {
	app := newTestApp(t)

	code, body := app.do(t, http.MethodPost, "/api/auth/register", janeRegister, "")
	if code != http.StatusCreated || body["message"] != "User registered successfully." {
		t.Fatalf("register: %d %+v", code, body)
	}

	code, body = app.do(t, http.MethodPost, "/api/auth/login", janeLogin, "")
	if code != http.StatusOK {
		t.Fatalf("login: %d %+v", code, body)
	}
	if body["role"] != "customer" || body["message"] != "Login successful." {
		t.Fatalf("unexpected login body: %+v", body)
	}
	tok, _ := body["token"].(string)
	if tok == "" {
		t.Fatalf("login returned no token")
	}

	code, body = app.do(t, http.MethodGet, "/api/user/me", "", tok)
	if code != http.StatusOK {
		t.Fatalf("me: %d %+v", code, body)
	}
	if body["name"] != "Jane Doe" || body["accountNumber"] != "2000000001" {
		t.Fatalf("unexpected profile: %+v", body)
	}
	for k := range body {
		if strings.Contains(strings.ToLower(k), "password") {
			t.Fatalf("profile exposes %q", k)
		}
	}

	code, body = app.do(t, http.MethodPost, "/api/employee/payments", payment, tok)
	if code != http.StatusForbidden || body["message"] != "Forbidden: insufficient role." {
		t.Fatalf("customer payment: %d %+v", code, body)
	}
	if app.payments.Len() != 0 {
		t.Fatalf("forbidden request must not record a payment")
	}
}

func TestRouter_EmployeeSubmitsPayment(t *testing.T) {
	app := newTestApp(t)

	_, err := app.auth.ProvisionEmployee(context.Background(), ports.RegisterInput{
		Name:          "Sam Teller",
		IDNumber:      "9876543210987",
		AccountNumber: "9000000001",
		Password:      "Empl0yee!Pass",
	})
	if err != nil {
		t.Fatalf("provision employee: %v", err)
	}

	code, body := app.do(t, http.MethodPost, "/api/auth/login", `{"accountNumber":"9000000001","password":"Empl0yee!Pass"}`, "")
	if code != http.StatusOK || body["role"] != "employee" {
		t.Fatalf("employee login: %d %+v", code, body)
	}
	tok := body["token"].(string)

	code, body = app.do(t, http.MethodPost, "/api/employee/payments", payment, tok)
	if code != http.StatusOK {
		t.Fatalf("payment: %d %+v", code, body)
	}
	ref, _ := body["reference"].(string)
	if !strings.HasPrefix(ref, "PAY-") || body["message"] == "" {
		t.Fatalf("unexpected payment body: %+v", body)
	}
	if app.payments.Len() != 1 {
		t.Fatalf("expected 1 stored payment, got %d", app.payments.Len())
	}

	code, _ = app.do(t, http.MethodGet, "/api/user/customers", "", tok)
	if code != http.StatusOK {
		t.Fatalf("customers: %d", code)
	}
}

func TestRouter_CustomersListsOnlyCustomers(t *testing.T) {
	app := newTestApp(t)
	app.do(t, http.MethodPost, "/api/auth/register", janeRegister, "")
	_, err := app.auth.ProvisionEmployee(context.Background(), ports.RegisterInput{
		Name: "Sam Teller", IDNumber: "9876543210987", AccountNumber: "9000000001", Password: "Empl0yee!Pass",
	})
	if err != nil {
		t.Fatalf("provision employee: %v", err)
	}

	_, body := app.do(t, http.MethodPost, "/api/auth/login", janeLogin, "")
	tok := body["token"].(string)

	req := httptest.NewRequest(http.MethodGet, "/api/user/customers", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	rec := httptest.NewRecorder()
	app.e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var list []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(list) != 1 || list[0]["role"] != "customer" {
		t.Fatalf("expected only Jane, got %+v", list)
	}
}

func TestRouter_RegisterRejections(t *testing.T) {
	app := newTestApp(t)
	if code, _ := app.do(t, http.MethodPost, "/api/auth/register", janeRegister, ""); code != http.StatusCreated {
		t.Fatalf("seed registration failed: %d", code)
	}

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{
			name:    "duplicate account",
			body:    `{"name":"Other Person","idNumber":"1111111111111","accountNumber":"2000000001","password":"Str0ng!Pass"}`,
			message: "Account number already exists.",
		},
		{
			name:    "duplicate id number",
			body:    `{"name":"Other Person","idNumber":"1234567890123","accountNumber":"2000000002","password":"Str0ng!Pass"}`,
			message: "ID number already exists.",
		},
		{
			name:    "weak password",
			body:    `{"name":"Other Person","idNumber":"1111111111111","accountNumber":"2000000002","password":"password"}`,
			message: "Password must be at least 8 characters, with at least 1 uppercase letter, 1 number, and 1 special character (!@#$%^&*).",
		},
		{
			name:    "password over 72 bytes",
			body:    `{"name":"Other Person","idNumber":"1111111111111","accountNumber":"2000000002","password":"Str0ng!Pass` + strings.Repeat("a", 62) + `"}`,
			message: "Password must be at most 72 characters.",
		},
		{
			name:    "unknown field",
			body:    `{"name":"Other Person","idNumber":"1111111111111","accountNumber":"2000000002","password":"Str0ng!Pass","role":"employee"}`,
			message: "Invalid request payload.",
		},
		{
			name:    "malformed json",
			body:    `{"name":`,
			message: "Invalid request payload.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := app.do(t, http.MethodPost, "/api/auth/register", tt.body, "")
			if code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d %+v", code, body)
			}
			if body["message"] != tt.message {
				t.Fatalf("expected %q, got %+v", tt.message, body)
			}
		})
	}
}

func TestRouter_ValidationEnvelopeListsFields(t *testing.T) {
	app := newTestApp(t)

	code, body := app.do(t, http.MethodPost, "/api/auth/register", `{"name":"J","idNumber":"12","accountNumber":"abc","password":"x"}`, "")
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if body["message"] != "Name must be at least 3 characters long." {
		t.Fatalf("first message should be the name rule: %+v", body)
	}
	errs, _ := body["errors"].([]any)
	if len(errs) != 4 {
		t.Fatalf("expected 4 field errors, got %+v", body["errors"])
	}
}

func TestRouter_LoginFailuresAreIndistinguishable(t *testing.T) {
	app := newTestApp(t)
	app.do(t, http.MethodPost, "/api/auth/register", janeRegister, "")

	codeWrong, wrong := app.do(t, http.MethodPost, "/api/auth/login", `{"accountNumber":"2000000001","password":"Wr0ng!Pass"}`, "")
	codeUnknown, unknown := app.do(t, http.MethodPost, "/api/auth/login", `{"accountNumber":"2999999999","password":"Str0ng!Pass"}`, "")

	if codeWrong != http.StatusBadRequest || codeUnknown != http.StatusBadRequest {
		t.Fatalf("expected 400/400, got %d/%d", codeWrong, codeUnknown)
	}
	if wrong["message"] != unknown["message"] || wrong["message"] != "Invalid account number or password." {
		t.Fatalf("messages differ: %+v vs %+v", wrong, unknown)
	}
}

func TestRouter_TokenFailures(t *testing.T) {
	app := newTestApp(t)

	code, body := app.do(t, http.MethodGet, "/api/user/me", "", "")
	if code != http.StatusForbidden || body["message"] != "Access denied. No token provided." {
		t.Fatalf("missing token: %d %+v", code, body)
	}

	code, body = app.do(t, http.MethodGet, "/api/user/me", "", "not-a-token")
	if code != http.StatusUnauthorized || body["message"] != "Invalid or expired token." {
		t.Fatalf("garbage token: %d %+v", code, body)
	}

	expired, err := token.NewManager("router-test-secret", time.Hour, token.WithClock(func() time.Time {
		return time.Now().Add(-2 * time.Hour)
	}))
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	stale, _, err := expired.Issue(&domain.User{ID: "u-1", Role: domain.RoleCustomer})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	code, _ = app.do(t, http.MethodGet, "/api/user/me", "", stale)
	if code != http.StatusUnauthorized {
		t.Fatalf("expired token: expected 401, got %d", code)
	}
}

func TestRouter_TokenForDeletedUser(t *testing.T) {
	app := newTestApp(t)

	orphan, _, err := app.tokens.Issue(&domain.User{ID: "no-such-user", Role: domain.RoleCustomer})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	code, body := app.do(t, http.MethodGet, "/api/user/me", "", orphan)
	if code != http.StatusNotFound || body["message"] != "User not found." {
		t.Fatalf("expected 404, got %d %+v", code, body)
	}
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	app := newTestApp(t)

	if code, _ := app.do(t, http.MethodGet, "/health", "", ""); code != http.StatusOK {
		t.Fatalf("health: %d", code)
	}

	rec := httptest.NewRecorder()
	app.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Fatalf("metrics: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	app.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Header().Get("X-Frame-Options") != "DENY" || rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing security headers: %v", rec.Header())
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	app := newTestApp(t)

	code, body := app.do(t, http.MethodGet, "/api/nope", "", "")
	if code != http.StatusNotFound || body["message"] == nil {
		t.Fatalf("expected 404 envelope, got %d %+v", code, body)
	}
}

func TestRouter_RateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tokens, err := token.NewManager("router-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	users := memory.NewUserRepository()
	e := NewRouter(Deps{
		Logger:         zerolog.Nop(),
		Auth:           service.NewAuthService(users, tokens, service.MinBcryptCost, zerolog.Nop()),
		Users:          service.NewUserService(users),
		Payments:       service.NewPaymentService(memory.NewPaymentRepository(), zerolog.Nop()),
		Tokens:         tokens,
		RateLimitStore: redisstore.NewRateLimiter(client, 2, time.Hour, zerolog.Nop()),
	})

	send := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "203.0.113.9:4000"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := send("/api/user/me"); rec.Code != http.StatusForbidden {
			t.Fatalf("request %d: expected 403, got %d", i+1, rec.Code)
		}
	}
	rec := send("/api/user/me")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Too many requests") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	if rec := send("/health"); rec.Code != http.StatusOK {
		t.Fatalf("health must not be rate limited, got %d", rec.Code)
	}
}
