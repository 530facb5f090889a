package obslog

import (
	"context"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewBuildsALogger(t *testing.T) {
	l, err := New("simulator-test", "development", zapcore.DebugLevel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l == nil || l.SugaredLogger == nil {
		t.Fatal("want a usable logger")
	}
}

func TestToContextAndFromContextRoundTrip(t *testing.T) {
	l := Default()
	ctx := ToContext(context.Background(), l)
	if got := FromContext(ctx); got != l {
		t.Fatal("want FromContext to return the exact logger attached by ToContext")
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	if got := FromContext(context.Background()); got == nil {
		t.Fatal("want a non-nil default logger when none is attached")
	}
}
