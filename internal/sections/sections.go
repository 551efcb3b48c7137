// Package sections stores per-theme CSS sections in blob storage under
// themes/<themeID>/sections/<name>.css.
package sections

import (
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"
)

const (
	Variables      = "variables"
	Header         = "header"
	Footer         = "footer"
	TemplatePrefix = "template-"

	extension = ".css"
)

// RequiredSections must all exist before a theme can be published, in
// concatenation order.
var RequiredSections = []string{Variables, Header, Footer}

// Section is a named CSS fragment.
type Section struct {
	Name string `json:"name"`
	CSS  string `json:"css"`
}

var (
	ErrStorageRequired    = errors.New("sections: blob storage required")
	ErrThemeRequired      = errors.New("sections: theme id required")
	ErrInvalidSectionName = errors.New("sections: invalid section name")
	ErrTemplateLabel      = errors.New("sections: template label required")
	ErrSectionNotFound    = errors.New("sections: section not found")
)

var sectionNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// ValidateName checks that name is usable as a file name.
func ValidateName(name string) error {
	err := validation.Validate(name,
		validation.Required,
		validation.Length(1, 96),
		validation.Match(sectionNamePattern),
	)
	if err != nil {
		return errors.Join(ErrInvalidSectionName, err)
	}
	return nil
}

// TemplateName returns the section name of a page template label:
// "Landing Page" becomes "template-landing-page".
func TemplateName(label string) (string, error) {
	trimmed := strings.TrimSpace(label)
	trimmed = strings.TrimPrefix(trimmed, TemplatePrefix)
	normalized, err := slug.Normalize(trimmed)
	if err != nil {
		return "", err
	}
	if normalized == "" {
		return "", ErrTemplateLabel
	}
	return TemplatePrefix + normalized, nil
}

// IsTemplate reports whether name is a template section.
func IsTemplate(name string) bool {
	return strings.HasPrefix(name, TemplatePrefix) && len(name) > len(TemplatePrefix)
}

// Folder returns the blob prefix holding the sections of a theme.
func Folder(themeID uuid.UUID) string {
	return "themes/" + themeID.String() + "/sections/"
}

// Key returns the blob key of a section.
func Key(themeID uuid.UUID, name string) string {
	return Folder(themeID) + name + extension
}
