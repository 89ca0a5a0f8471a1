package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestNew_LevelAndComponent(t *testing.T) {
	var buf bytes.Buffer
	log := WithComponent(New(Config{Level: "warn", Output: &buf}), "engine")

	log.Info().Msg("hidden")
	log.Warn().Str("feed", "home").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"component":"engine"`) || !strings.Contains(out, `"feed":"home"`) {
		t.Errorf("missing structured fields: %s", out)
	}
}

func TestCtx_RequestID(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Output: &buf})
	ctx := ContextWithRequestID(context.Background(), "req-1")

	Ctx(ctx, base).Info().Msg("hello")
	if !strings.Contains(buf.String(), `"request_id":"req-1"`) {
		t.Errorf("request_id not attached: %s", buf.String())
	}
	if RequestIDFromContext(context.Background()) != "" {
		t.Error("empty context should have no request id")
	}
}

func TestNew_InvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "nope", Output: &buf})
	log.Debug().Msg("debug")
	log.Info().Msg("info")
	if strings.Contains(buf.String(), `"message":"debug"`) || !strings.Contains(buf.String(), `"message":"info"`) {
		t.Errorf("unexpected output: %s", buf.String())
	}
}
