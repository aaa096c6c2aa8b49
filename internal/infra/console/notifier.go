package console

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Notifier prints status lines to the terminal. It shares the screen with
// the console source's prompts, so lines stay short and one per event.
type Notifier struct {
	mu  sync.Mutex
	out io.Writer
}

func NewNotifier(out io.Writer) *Notifier {
	return &Notifier{out: out}
}

func (n *Notifier) Notify(_ context.Context, message string) error {
	if message == "" {
		return nil
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if _, err := fmt.Fprintln(n.out, message); err != nil {
		return fmt.Errorf("writing status: %w", err)
	}
	return nil
}
