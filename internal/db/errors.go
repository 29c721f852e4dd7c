package db

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate indicates a unique-index conflict on insert.
	ErrDuplicate = errors.New("duplicate key")
)

// wrapFindErr maps the driver's no-documents result onto ErrNotFound so
// callers never depend on mongo error values directly.
func wrapFindErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

// wrapInsertErr maps unique-index violations onto ErrDuplicate.
func wrapInsertErr(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}
