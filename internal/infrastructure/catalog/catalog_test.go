package catalog

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodrix-ai/bodrix/internal/domain/feature"
	"github.com/bodrix-ai/bodrix/internal/shared/errors"
	"github.com/bodrix-ai/bodrix/internal/shared/version"
)

func TestDefault(t *testing.T) {
	defs, err := Default()
	require.NoError(t, err)
	require.NotEmpty(t, defs)

	features, err := Build(defs)
	require.NoError(t, err)

	ids := make(map[string]bool, len(features))
	categories := make(map[feature.Category]bool)
	for _, f := range features {
		ids[f.ID()] = true
		categories[f.Category()] = true
	}
	for _, f := range features {
		for _, dep := range f.Dependencies() {
			assert.True(t, ids[dep], "%s depends on unknown %s", f.ID(), dep)
		}
	}
	assert.Len(t, categories, len(feature.AllCategories()), "every category is represented")

	chat := features[0]
	assert.Equal(t, "ai-chat", chat.ID())
	assert.Equal(t, "المحادثة الذكية", chat.NameAr())
	locator, ok := chat.ComponentLocator()
	assert.True(t, ok)
	assert.Equal(t, "communications/ai-chat", locator)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
		wantLen int
	}{
		{
			name:    "empty document",
			doc:     "",
			wantLen: 0,
		},
		{
			name: "valid entry",
			doc: `
features:
  - id: chat
    name: Chat
    category: communications
    enabled: true
    metadata:
      component: chat/panel
      limits:
        daily: 50
`,
			wantLen: 1,
		},
		{
			name: "missing name",
			doc: `
features:
  - id: chat
    category: communications
`,
			wantErr: "name is required",
		},
		{
			name: "unknown category",
			doc: `
features:
  - id: chat
    name: Chat
    category: games
`,
			wantErr: "category must be one of",
		},
		{
			name: "duplicate dependencies",
			doc: `
features:
  - id: chat
    name: Chat
    category: communications
    dependencies: [a, a]
`,
			wantErr: "dependencies must not contain duplicates",
		},
		{
			name: "unknown key",
			doc: `
features:
  - id: chat
    name: Chat
    category: communications
    colour: blue
`,
			wantErr: "field colour not found",
		},
		{
			name: "compatible version",
			doc: `
version: "1.3.0"
features:
  - {id: chat, name: Chat, category: communications}
`,
			wantLen: 1,
		},
		{
			name: "incompatible version",
			doc: `
version: "2.0.0"
features:
  - {id: chat, name: Chat, category: communications}
`,
			wantErr: "unsupported catalog version v2.0.0",
		},
		{
			name: "duplicate ids",
			doc: `
features:
  - {id: chat, name: Chat, category: communications}
  - {id: chat, name: Chat 2, category: design}
`,
			wantErr: `duplicate feature id "chat"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defs, err := Parse([]byte(tt.doc))
			if tt.wantErr != "" {
				require.Error(t, err)
				msg := err.Error()
				if appErr := errors.GetAppError(err); appErr != nil {
					msg = appErr.Details
				}
				assert.Contains(t, msg, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, defs, tt.wantLen)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("empty path uses default", func(t *testing.T) {
		defs, err := Load("")
		require.NoError(t, err)
		assert.NotEmpty(t, defs)
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		require.NoError(t, os.WriteFile(path, []byte("features:\n  - {id: x, name: X, category: design}\n"), 0o600))

		defs, err := Load(path)
		require.NoError(t, err)
		require.Len(t, defs, 1)
		assert.Equal(t, feature.CategoryDesign, defs[0].Category)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestSource_Definitions(t *testing.T) {
	defs, err := Source{}.Definitions()
	require.NoError(t, err)
	assert.NotEmpty(t, defs)

	_, err = Source{Path: filepath.Join(t.TempDir(), "nope.yaml")}.Definitions()
	assert.Error(t, err)
}

func TestBuild_RejectsInvalid(t *testing.T) {
	_, err := Build([]feature.Definition{{ID: "bad id", Category: feature.CategoryDesign}})
	assert.ErrorIs(t, err, feature.ErrInvalidFeatureID)
}

func TestEncode_RoundTrip(t *testing.T) {
	defs, err := Default()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, defs))

	again, err := Parse(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, defs, again)
}

func TestParseDocument_KeepsVersion(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, []feature.Definition{{ID: "x", Name: "X", Category: feature.CategoryDesign}}))

	doc, err := ParseDocument(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, version.CatalogSchema, doc.Version)
	assert.Len(t, doc.Features, 1)
}
