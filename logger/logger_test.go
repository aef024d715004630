package logger_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/quitus/campaign-ledger/logger"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf)

	log.Info().Str("campaign_id", "camp-1").Msg("operation saved")

	out := buf.String()
	if !strings.Contains(out, "operation saved") {
		t.Errorf("output missing message: %s", out)
	}
	if !strings.Contains(out, "camp-1") {
		t.Errorf("output missing field: %s", out)
	}
}

func TestWithContext_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf).With().Str("request_id", "req-42").Logger()

	ctx := logger.WithContext(context.Background(), log)
	got := logger.FromContext(ctx)

	got.Info().Msg("hello")
	if !strings.Contains(buf.String(), "req-42") {
		t.Errorf("context logger lost its fields: %s", buf.String())
	}
}

func TestFromContext_MissingLogger_ReturnsDefault(t *testing.T) {
	// Must not panic; callers get a usable logger either way.
	log := logger.FromContext(context.Background())
	log.Debug().Msg("fallback")
}
