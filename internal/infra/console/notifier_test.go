package console_test

import (
	"bytes"
	"context"
	"testing"

	"the-voice/internal/infra/console"
)

func TestNotifier_WritesLines(t *testing.T) {
	var buf bytes.Buffer
	n := console.NewNotifier(&buf)

	if err := n.Notify(context.Background(), "Listening…"); err != nil {
		t.Fatalf("Notify error: %v", err)
	}
	if err := n.Notify(context.Background(), ""); err != nil {
		t.Fatalf("Notify error: %v", err)
	}

	if got, want := buf.String(), "Listening…\n"; got != want {
		t.Errorf("output: got %q, want %q", got, want)
	}
}
