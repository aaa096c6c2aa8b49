package application

import "context"

// Notifier is the user-facing status surface: state changes, transcripts
// and turn errors end up here.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

type NoopNotifier struct{}

func (n *NoopNotifier) Notify(_ context.Context, _ string) error {
	return nil
}
