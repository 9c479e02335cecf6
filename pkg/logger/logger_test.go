package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestNewJSONWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "debug", Encoding: "json", Output: &buf})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	ctx := ContextWithRequestID(context.Background(), "req-42")
	WithRequestID(ctx, log).Debug("todo created")
	_ = log.Sync()

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if entry["request_id"] != "req-42" {
		t.Fatalf("request_id = %v, want %q", entry["request_id"], "req-42")
	}
	if entry["msg"] != "todo created" {
		t.Fatalf("msg = %v", entry["msg"])
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Fatalf("expected timestamp key in %v", entry)
	}
}

func TestNewFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "loud", Output: &buf})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	log.Debug("hidden")
	log.Info("shown")
	_ = log.Sync()

	if bytes.Contains(buf.Bytes(), []byte("hidden")) {
		t.Fatal("debug entry written at info level")
	}
	if !bytes.Contains(buf.Bytes(), []byte("shown")) {
		t.Fatal("info entry missing")
	}
}

func TestRequestIDMissing(t *testing.T) {
	if got := RequestID(context.Background()); got != "" {
		t.Fatalf("request id = %q, want empty", got)
	}
	if WithRequestID(context.Background(), nil) != nil {
		t.Fatal("nil logger must stay nil")
	}
}
