package logging

import (
	"maps"

	"github.com/google/uuid"

	"github.com/ridasaidd/byteforge-sub002/pkg/interfaces"
)

const (
	fieldThemeID = "theme_id"
	fieldSiteID  = "site_id"
	fieldSection = "section"
)

// WithFields attaches fields when the logger implements FieldsLogger and
// returns it unchanged otherwise.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		copied := make(map[string]any, len(fields))
		maps.Copy(copied, fields)
		return fieldsLogger.WithFields(copied)
	}

	return logger
}

// WithTheme scopes logger entries to a theme and, optionally, a CSS section.
func WithTheme(logger interfaces.Logger, themeID uuid.UUID, section string) interfaces.Logger {
	fields := map[string]any{}
	if themeID != uuid.Nil {
		fields[fieldThemeID] = themeID.String()
	}
	if section != "" {
		fields[fieldSection] = section
	}
	return WithFields(logger, fields)
}

// WithSite scopes logger entries to a tenant site.
func WithSite(logger interfaces.Logger, siteID uuid.UUID) interfaces.Logger {
	if siteID == uuid.Nil {
		return logger
	}
	return WithFields(logger, map[string]any{fieldSiteID: siteID.String()})
}
