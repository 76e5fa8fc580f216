package logger

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	original := L()
	core, logs := observer.New(zapcore.DebugLevel)
	Replace(zap.New(core))
	t.Cleanup(func() { Replace(original) })
	return logs
}

func TestInit(t *testing.T) {
	original := L()
	defer Replace(original)

	t.Run("Production", func(t *testing.T) {
		Init("production", "warn")
		assert.NotNil(t, L())
		assert.Equal(t, zapcore.WarnLevel, Level())
	})

	t.Run("Development", func(t *testing.T) {
		Init("development", "debug")
		assert.NotNil(t, L())
		assert.Equal(t, zapcore.DebugLevel, Level())
	})
}

func TestSetLevel_IgnoresUnknown(t *testing.T) {
	SetLevel("error")
	SetLevel("loud")
	assert.Equal(t, zapcore.ErrorLevel, Level())
	SetLevel("info")
}

func TestFromCtx(t *testing.T) {
	logs := observe(t)

	ctx := WithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", RequestIDFrom(ctx))
	assert.Equal(t, "", RequestIDFrom(context.Background()))

	FromCtx(ctx).Info("hello")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "req-123", entry.ContextMap()["request_id"])
}

func TestRequestLogger(t *testing.T) {
	logs := observe(t)

	app := fiber.New()
	app.Use(RequestLogger())
	app.Get("/ping", func(c *fiber.Ctx) error {
		c.Locals("user_id", "u-1")
		return c.SendString("pong")
	})

	t.Run("assigns request id", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
	})

	t.Run("propagates request id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/ping", nil)
		req.Header.Set(RequestIDHeader, "given-id")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "given-id", resp.Header.Get(RequestIDHeader))
	})

	entries := logs.FilterMessage("incoming request").All()
	require.Len(t, entries, 2)
	fields := entries[1].ContextMap()
	assert.Equal(t, "given-id", fields["request_id"])
	assert.Equal(t, "/ping", fields["path"])
	assert.Equal(t, int64(200), fields["status"])
	assert.Equal(t, "u-1", fields["user_id"])
}
