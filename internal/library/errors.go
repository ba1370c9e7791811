package library

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors classifying store and workflow failures. Callers match
// them with errors.Is; the daemon maps them onto HTTP status codes.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation error")
	ErrBadRequest = errors.New("bad request")
	ErrStorage    = errors.New("storage error")
)

// Wrap builds an error message that includes entity context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, entity, operation, message string, err error) error {
	detail := buildDetail(entity, operation, message)
	if marker == nil {
		marker = ErrStorage
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(entity, operation, message string) string {
	parts := make([]string, 0, 3)
	if entity = strings.TrimSpace(entity); entity != "" {
		parts = append(parts, entity)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "library failure"
	}
	return strings.Join(parts, ": ")
}
