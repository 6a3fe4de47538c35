package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/http/handlers"
	"storefront/internal/http/routes"
	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/session"
)

const testPassword = "Passw0rd!"

type testApp struct {
	app  *fiber.App
	db   *sqlx.DB
	deps *handlers.Deps
}

// newTestApp builds the real route table over an in-memory database. Limits
// are raised so only tests that care about them hit them.
func newTestApp(t *testing.T, tweak ...func(*config.Config)) *testApp {
	t.Helper()
	cfg := config.Default()
	cfg.DBDSN = ":memory:"
	cfg.StaticDir = "../../web/static"
	cfg.TemplatesDir = "../../web/templates"
	cfg.BcryptCost = bcrypt.MinCost
	cfg.RateLimitPerMinute = 10000
	cfg.LoginLimitPer10Min = 10000
	for _, f := range tweak {
		f(&cfg)
	}

	db, err := repos.OpenDB(context.Background(), repos.DriverSQLite, cfg.DBDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	deps := handlers.NewDeps(db, cfg, session.NewSQLStore(db))
	app := routes.New(cfg, deps, routes.Views(cfg.TemplatesDir, false))
	return &testApp{app: app, db: db, deps: deps}
}

func (a *testApp) createUser(t *testing.T, name, email string) domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	u, err := repos.NewUserRepo(a.db).Create(context.Background(), domain.User{Name: name, Email: email, Hash: string(hash)})
	require.NoError(t, err)
	return u
}

func (a *testApp) createAdmin(t *testing.T, email string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, repos.SeedAdmin(context.Background(), a.db, "Admin", email, string(hash)))
}

func (a *testApp) orderCount(t *testing.T) int {
	t.Helper()
	var n int
	require.NoError(t, a.db.Get(&n, `SELECT COUNT(*) FROM orders`))
	return n
}

// browser replays cookies between requests the way a real client would.
type browser struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func (a *testApp) browser(t *testing.T) *browser {
	return &browser{t: t, app: a.app, cookies: map[string]string{}}
}

func (b *browser) do(req *http.Request) *http.Response {
	b.t.Helper()
	for name, v := range b.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: v})
	}
	resp, err := b.app.Test(req, -1)
	require.NoError(b.t, err)
	for _, c := range resp.Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c.Value
	}
	return resp
}

func (b *browser) get(path string) *http.Response {
	b.t.Helper()
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

// csrf returns the current token, fetching a page first when none is held.
func (b *browser) csrf() string {
	b.t.Helper()
	if tok := b.cookies["csrf_"]; tok != "" {
		return tok
	}
	b.get("/login")
	tok := b.cookies["csrf_"]
	require.NotEmpty(b.t, tok, "csrf cookie missing")
	return tok
}

// post submits form with a valid csrf token.
func (b *browser) post(path string, form url.Values) *http.Response {
	b.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf", b.csrf())
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) login(email string) *http.Response {
	b.t.Helper()
	return b.post("/login", url.Values{"email": {email}, "password": {testPassword}})
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func checkoutForm() url.Values {
	return url.Values{
		"full_name":      {"Ada Obi"},
		"email":          {"ada@example.com"},
		"phone":          {"08030000000"},
		"address":        {"12 Marina Road"},
		"city":           {"Lagos"},
		"state":          {"Lagos"},
		"postal_code":    {"100001"},
		"payment_method": {"card"},
	}
}

type logEntry struct {
	Level    string         `json:"level"`
	Category string         `json:"category"`
	Action   string         `json:"action"`
	UserID   int64          `json:"user_id"`
	Fields   map[string]any `json:"fields"`
}

type lockedBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

// captureLogs runs fn with the app logger pointed at a buffer and returns
// the JSON entries it wrote.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf lockedBuf
	restore := applog.SetOutput(&buf)
	defer restore()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.b.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
