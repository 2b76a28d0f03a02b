package ports

import "context"

// Transactor runs fn as one unit of work. Repository calls made with the ctx
// passed to fn take part in the unit.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	// Atomic reports whether a failed fn leaves no partial writes behind.
	Atomic() bool
}
