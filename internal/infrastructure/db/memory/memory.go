// Package memory provides process-local repositories used when
// STORE_DRIVER=memory and by tests. Records are kept in insertion order and
// identifiers use the same ObjectID hex format as the MongoDB store.
package memory

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/skyline-residence/building-api/internal/core/domain"
)

func newID() string {
	return primitive.NewObjectID().Hex()
}

func validID(id string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return domain.ErrInvalidID
	}
	return nil
}

func updated(matched, modified bool) *domain.UpdateResult {
	res := &domain.UpdateResult{Acknowledged: true}
	if matched {
		res.MatchedCount = 1
	}
	if modified {
		res.ModifiedCount = 1
	}
	return res
}

// Transactor runs the unit of work directly. It is not atomic.
type Transactor struct{}

func (Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (Transactor) Atomic() bool { return false }
