package application

import "context"

// Reflector produces the spoken reflection for a transcript.
type Reflector interface {
	Reflect(ctx context.Context, transcript string) (string, error)
}
