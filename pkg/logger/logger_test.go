package logx

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestWithSessionTagsLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := zerolog.New(&buf)
	ctx := base.WithContext(context.Background())

	ctx = WithSession(ctx, "abc-123")
	zerolog.Ctx(ctx).Info().Msg("hello")

	if !strings.Contains(buf.String(), `"session_id":"abc-123"`) {
		t.Fatalf("log line missing session id: %s", buf.String())
	}
}
