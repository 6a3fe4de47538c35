package log

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"storefront/internal/domain"
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFieldName = "ts"
}

var (
	mu     sync.RWMutex
	logger = newLogger(os.Stdout, zerolog.InfoLevel)
)

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger().Level(level)
}

// Setup replaces the process logger. console switches to the human readable writer.
func Setup(w io.Writer, level zerolog.Level, console bool) {
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	mu.Lock()
	logger = newLogger(w, level)
	mu.Unlock()
}

// SetOutput points the logger at w and returns a func restoring the previous one.
func SetOutput(w io.Writer) (restore func()) {
	mu.Lock()
	prev := logger
	logger = newLogger(w, zerolog.DebugLevel)
	mu.Unlock()
	return func() {
		mu.Lock()
		logger = prev
		mu.Unlock()
	}
}

func ParseLevel(value string) zerolog.Level {
	s := strings.ToLower(strings.TrimSpace(value))
	if s == "" {
		return zerolog.InfoLevel
	}
	if lvl, err := zerolog.ParseLevel(s); err == nil {
		return lvl
	}
	return zerolog.InfoLevel
}

// L exposes the base logger for code without a request (startup, CLI).
func L() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := logger
	return &l
}

func write(ev *zerolog.Event, category string, c *fiber.Ctx, action string, err error, fields map[string]any) {
	if ev == nil {
		return
	}
	if category != "" {
		ev = ev.Str("category", category)
	}
	if c != nil {
		ev = ev.Str("ip", c.IP()).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode())
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			ev = ev.Str("req_id", rid)
		}
		if u, ok := c.Locals("user").(*domain.Identity); ok && u != nil {
			ev = ev.Int64("user_id", u.ID)
		}
	}
	if err != nil {
		ev = ev.Err(err)
	}
	if len(fields) > 0 {
		ev = ev.Interface("fields", fields)
	}
	ev.Str("action", action).Send()
}

func Debug(c *fiber.Ctx, action string, fields map[string]any) {
	write(L().Debug(), "", c, action, nil, fields)
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	write(L().Info(), "", c, action, nil, fields)
}

func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write(L().Info(), "audit", c, action, nil, fields)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(L().Warn(), "security", c, action, nil, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(L().Error(), "", c, action, err, fields)
}
