package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSourceNotFound       = errors.New("source not found")
	ErrDomainNotAllowed     = errors.New("domain not whitelisted")
	ErrEmptyExtraction      = errors.New("empty extraction")
	ErrDuplicateContent     = errors.New("duplicate content")
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
	ErrInvalidInput         = errors.New("invalid input")
	ErrTemporary            = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
