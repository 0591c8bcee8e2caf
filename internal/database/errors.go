package database

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrConflict marks a write rejected by a unique index. Callers treat it as
// a row-level conflict rather than an infrastructure failure.
var ErrConflict = errors.New("unique constraint violation")

// WrapWriteError maps duplicate key errors onto ErrConflict so callers can
// errors.Is against one sentinel regardless of collection.
func WrapWriteError(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}
