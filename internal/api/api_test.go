package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"schoolsite-backend/internal/auth"
	"schoolsite-backend/internal/config"
	"schoolsite-backend/internal/database"
	"schoolsite-backend/internal/metrics"
	"schoolsite-backend/internal/models"
	"schoolsite-backend/internal/records"
	"schoolsite-backend/internal/storage"
)

const (
	testSecret    = "api-test-secret"
	adminEmail    = "principal@school.test"
	adminPassword = "correct horse battery"
	staffEmail    = "clerk@school.test"
	staffPassword = "clerk password"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// syncBuffer guards the log buffer; the request logger and handlers share it
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Lines() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Split(bytes.TrimSpace(b.buf.Bytes()), []byte("\n"))
}

type apiFixture struct {
	echo    *echo.Echo
	db      *database.DB
	clock   *fakeClock
	codec   *auth.TokenCodec
	metrics *metrics.Metrics
	images  *storage.MemoryStore
	records *records.MemoryStore
	logs    *syncBuffer
	adminID int64
	staffID int64
}

type fixtureOption func(*Deps)

// withoutOptionalStores leaves image storage and the student roll unset
func withoutOptionalStores() fixtureOption {
	return func(d *Deps) {
		d.Images = nil
		d.Records = nil
	}
}

func newAPIFixture(t *testing.T, opts ...fixtureOption) *apiFixture {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Config{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "api.db"),
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	f := &apiFixture{
		db:      db,
		clock:   &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)},
		metrics: metrics.New(),
		images:  storage.NewMemoryStore("http://cdn.test"),
		records: records.NewMemoryStore(),
		logs:    &syncBuffer{},
	}

	users := database.NewUserRepo(db)
	f.adminID = createUser(t, users, adminEmail, adminPassword, models.RoleSuperAdmin, true)
	f.staffID = createUser(t, users, staffEmail, staffPassword, models.RoleUser, true)
	createUser(t, users, "former@school.test", adminPassword, models.RoleSuperAdmin, false)

	f.codec = auth.NewTokenCodec(testSecret, auth.DefaultTokenTTL, auth.WithClock(f.clock.Now))
	extractor := auth.DefaultExtractor("token")
	limiter := auth.NewMemoryLimiter(5, time.Minute, time.Minute)
	t.Cleanup(limiter.Close)

	deps := Deps{
		DB:      db,
		Auth:    auth.NewService(users, database.NewOTPRepo(db), f.codec, extractor),
		Gate:    auth.NewGate(f.codec, extractor, f.metrics),
		Cookies: auth.NewCookiePolicy(config.CookieConfig{SameSite: "lax"}, auth.DefaultTokenTTL),
		Limiter: limiter,
		Metrics: f.metrics,
		Logger:  zerolog.New(f.logs).Level(zerolog.DebugLevel),
		Images:  f.images,
		Records: f.records,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	f.echo = NewServer(NewHandler(deps), []string{"http://localhost:3000"})
	return f
}

func createUser(t *testing.T, users *database.UserRepo, email, password string, role models.Role, active bool) int64 {
	t.Helper()
	hash, err := auth.HashPasswordWithCost(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{Email: email, PasswordHash: hash, Role: role, IsActive: active}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user.ID
}

func (f *apiFixture) token(t *testing.T, userID int64, role models.Role) string {
	t.Helper()
	token, _, err := f.codec.Issue(userID, role)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func (f *apiFixture) adminToken(t *testing.T) string {
	return f.token(t, f.adminID, models.RoleSuperAdmin)
}

func (f *apiFixture) staffToken(t *testing.T) string {
	return f.token(t, f.staffID, models.RoleUser)
}

type requestOption func(*http.Request)

func bearer(token string) requestOption {
	return func(r *http.Request) {
		r.Header.Set(echo.HeaderAuthorization, auth.BearerPrefix+token)
	}
}

func cookie(token string) requestOption {
	return func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "token", Value: token})
	}
}

func fromIP(ip string) requestOption {
	return func(r *http.Request) {
		r.Header.Set(echo.HeaderXRealIP, ip)
	}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, opt := range opts {
		opt(req)
	}

	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func expectMessage(t *testing.T, rec *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	expectStatus(t, rec, status)
	body := decode[map[string]any](t, rec)
	if body["message"] != msg {
		t.Fatalf("expected message %q, got %v", msg, body["message"])
	}
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "token" {
			return c
		}
	}
	return nil
}
