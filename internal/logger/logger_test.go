package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeKVsRedactsCredentials(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := &Logger{SugaredLogger: zap.New(core).Sugar()}

	log.Info("login", "user_id", "usr_1", "session_token", "abc.def.ghi", "password", "hunter2")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["user_id"] != "usr_1" {
		t.Fatalf("user_id should pass through, got %v", fields["user_id"])
	}
	if fields["session_token"] != "[REDACTED]" || fields["password"] != "[REDACTED]" {
		t.Fatalf("credentials not redacted: %v", fields)
	}
}

func TestSanitizeKVsKeepsDanglingKey(t *testing.T) {
	out := sanitizeKVs([]interface{}{"a", 1, "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("unexpected output: %v", out)
	}
}

func TestNewDevelopmentAndProduction(t *testing.T) {
	for _, mode := range []string{"dev", "production"} {
		log, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q) error = %v", mode, err)
		}
		log.With("component", "test").Debug("ok")
	}
}
