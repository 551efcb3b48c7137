package themes

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
)

// Manifest mirrors a theme.json file: descriptive fields plus the token tree.
type Manifest struct {
	Name        string         `json:"name"`
	Description *string        `json:"description,omitempty"`
	Version     string         `json:"version"`
	Author      *string        `json:"author,omitempty"`
	Tokens      map[string]any `json:"tokens"`
}

func LoadManifest(path string) (*Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("themes: open manifest: %w", err)
	}
	defer file.Close()
	return ParseManifest(file)
}

func ParseManifest(r io.Reader) (*Manifest, error) {
	var manifest Manifest
	if err := json.NewDecoder(r).Decode(&manifest); err != nil {
		return nil, fmt.Errorf("themes: parse manifest: %w", err)
	}
	return &manifest, nil
}

// ManifestToThemeInput converts a manifest into a registration payload for
// the given scope.
func ManifestToThemeInput(siteID uuid.UUID, manifest *Manifest) (RegisterThemeInput, error) {
	if manifest == nil {
		return RegisterThemeInput{}, ErrManifestRequired
	}
	if manifest.Name == "" {
		return RegisterThemeInput{}, fmt.Errorf("themes: manifest missing name")
	}
	if manifest.Version == "" {
		return RegisterThemeInput{}, fmt.Errorf("themes: manifest missing version")
	}
	return RegisterThemeInput{
		SiteID:      siteID,
		Name:        manifest.Name,
		Description: manifest.Description,
		Version:     manifest.Version,
		Author:      manifest.Author,
		Tokens:      manifest.Tokens,
	}, nil
}
