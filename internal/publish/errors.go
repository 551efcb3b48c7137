package publish

import (
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeMissingSections = "PUBLISH_MISSING_SECTIONS"
	textCodeStorageWrite    = "STORAGE_WRITE_FAILED"
	textCodeSectionRead     = "PUBLISH_SECTION_READ_FAILED"
)

var (
	ErrSectionStoreRequired = errors.New("publish: section store required")
	ErrStorageRequired      = errors.New("publish: blob storage required")
	ErrThemeRequired        = errors.New("publish: theme id required")
	// ErrMissingSections matches every *MissingSectionsError.
	ErrMissingSections = errors.New("publish: required sections missing")
)

// MissingSectionsError reports the required sections a publish was refused
// for. It unwraps to a validation-category go-errors error.
type MissingSectionsError struct {
	Missing []string
	cause   *goerrors.Error
}

func newMissingSectionsError(missing []string) *MissingSectionsError {
	fields := make([]goerrors.FieldError, 0, len(missing))
	for _, name := range missing {
		fields = append(fields, goerrors.FieldError{Field: name, Message: "section has not been generated"})
	}
	return &MissingSectionsError{
		Missing: append([]string(nil), missing...),
		cause: goerrors.NewValidation("publish: required sections missing", fields...).
			WithTextCode(textCodeMissingSections),
	}
}

func (e *MissingSectionsError) Error() string {
	return "publish: missing required sections: " + strings.Join(e.Missing, ", ")
}

func (e *MissingSectionsError) Unwrap() error { return e.cause }

func (e *MissingSectionsError) Is(target error) bool { return target == ErrMissingSections }
