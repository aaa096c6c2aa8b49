package application

import "context"

type Source interface {
	Start(ctx context.Context) error
	Stop() error
	NextUtterance(ctx context.Context) ([]byte, error)
	Name() string
}

type Player interface {
	Play(ctx context.Context, wav []byte) error
}
