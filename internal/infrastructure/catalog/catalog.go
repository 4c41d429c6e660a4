// Package catalog reads feature definitions from YAML.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bodrix-ai/bodrix/internal/domain/feature"
	"github.com/bodrix-ai/bodrix/internal/shared/utils"
	"github.com/bodrix-ai/bodrix/internal/shared/version"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

type file struct {
	Version  string               `yaml:"version,omitempty"`
	Features []feature.Definition `yaml:"features" validate:"dive"`
}

// Default returns the built-in catalog.
func Default() ([]feature.Definition, error) {
	return Parse(defaultCatalog)
}

// Load reads the catalog at path, or the built-in catalog when path is empty.
func Load(path string) ([]feature.Definition, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	defs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return defs, nil
}

// Source reads the catalog at Path, or the built-in one when Path is empty.
type Source struct {
	Path string
}

func (s Source) Definitions() ([]feature.Definition, error) {
	return Load(s.Path)
}

// Document is a parsed catalog together with the schema version it declares.
type Document struct {
	Version  string
	Features []feature.Definition
}

// Parse decodes and validates a catalog document. Unknown keys, an incompatible
// version, invalid entries and duplicate ids are rejected.
func Parse(data []byte) ([]feature.Definition, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}
	return doc.Features, nil
}

// ParseDocument is Parse keeping the declared version.
func ParseDocument(data []byte) (Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return Document{}, fmt.Errorf("failed to decode catalog: %w", err)
	}

	if err := version.CheckCatalogVersion(f.Version); err != nil {
		return Document{}, err
	}
	if err := utils.ValidateStruct(f); err != nil {
		return Document{}, err
	}

	seen := make(map[string]int, len(f.Features))
	for i, def := range f.Features {
		if prev, dup := seen[def.ID]; dup {
			return Document{}, fmt.Errorf("duplicate feature id %q at entries %d and %d", def.ID, prev, i)
		}
		seen[def.ID] = i
	}
	return Document{Version: f.Version, Features: f.Features}, nil
}

// Build turns definitions into features, failing on the first invalid entry.
func Build(defs []feature.Definition) ([]*feature.Feature, error) {
	features := make([]*feature.Feature, 0, len(defs))
	for _, def := range defs {
		f, err := feature.NewFeature(def)
		if err != nil {
			return nil, fmt.Errorf("feature %q: %w", def.ID, err)
		}
		features = append(features, f)
	}
	return features, nil
}

// Encode writes defs as a catalog document.
func Encode(w io.Writer, defs []feature.Definition) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(file{Version: version.CatalogSchema, Features: defs}); err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	return enc.Close()
}
