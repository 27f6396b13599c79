// Package storage persists the history of completed sortings.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/sorting-hat/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrNilParameter  = errors.New("parameter cannot be nil")
	ErrInvalidRecord = errors.New("invalid sorting record")
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRecord checks the fields SaveSorting cannot fill in itself.
func validateRecord(record *model.SortingRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	if strings.TrimSpace(record.SourceName) == "" {
		return fmt.Errorf("%w: missing source name", ErrInvalidRecord)
	}
	if strings.TrimSpace(record.Category) == "" {
		return fmt.Errorf("%w: missing house", ErrInvalidRecord)
	}
	if record.Crop.Empty() {
		return fmt.Errorf("%w: empty crop %s", ErrInvalidRecord, record.Crop)
	}
	return nil
}
