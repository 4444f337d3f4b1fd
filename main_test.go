package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/notify"
	qstashx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/pkg/qstash"
)

func captureCtx() (context.Context, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	return logger.WithContext(context.Background()), &buf
}

func TestNewNotifierWithoutQStashLogsOrders(t *testing.T) {
	ctx, buf := captureCtx()

	n := newNotifier(ctx, qstashx.Config{URL: "https://qstash.upstash.io"})

	assert.IsType(t, notify.LogNotifier{}, n)
	assert.Empty(t, buf.String())
}

func TestNewNotifierWarnsOnPartialConfig(t *testing.T) {
	ctx, buf := captureCtx()

	n := newNotifier(ctx, qstashx.Config{URL: "https://qstash.upstash.io", Token: "secret"})

	assert.IsType(t, notify.LogNotifier{}, n)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "qstash needs both token and destination")
}

func TestNewNotifierWarnsOnInvalidClientConfig(t *testing.T) {
	ctx, buf := captureCtx()

	n := newNotifier(ctx, qstashx.Config{URL: "not a url", Token: "secret", Destination: "https://shop.test/orders"})

	assert.IsType(t, notify.LogNotifier{}, n)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "qstash notifier disabled")
}

func TestNewNotifierUsesQStash(t *testing.T) {
	ctx, buf := captureCtx()

	n := newNotifier(ctx, qstashx.Config{URL: "https://qstash.upstash.io", Token: "secret", Destination: " https://shop.test/orders "})

	_, ok := n.(*notify.QStashNotifier)
	require.True(t, ok, "got %T", n)
	assert.NotContains(t, buf.String(), `"level":"warn"`)
}
