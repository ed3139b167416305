package vocab

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDeck is returned when a deck file or item fails validation.
var ErrInvalidDeck = errors.New("vocab: invalid deck")

// Deck is a named collection of items loaded from a deck file.
type Deck struct {
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Items       []Item `json:"items" yaml:"items"`
}

// Format is the encoding of a deck file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath guesses the deck format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: unsupported deck extension %q", ErrInvalidDeck, filepath.Ext(path))
	}
}

const deckSchemaURL = "schema://vietlearn/deck.json"

var deckSchemaDef = map[string]any{
	"type":     "object",
	"required": []any{"items"},
	"properties": map[string]any{
		"name":        map[string]any{"type": "string"},
		"description": map[string]any{"type": "string"},
		"items": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"id", "prompt", "answer"},
				"properties": map[string]any{
					"id":     map[string]any{"type": "string", "minLength": 1},
					"prompt": map[string]any{"type": "string", "minLength": 1},
					"answer": map[string]any{"type": "string", "minLength": 1},
					"tags": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
				},
			},
		},
	},
}

var (
	deckSchemaOnce sync.Once
	deckSchema     *jsonschema.Schema
	deckSchemaErr  error
)

func compiledDeckSchema() (*jsonschema.Schema, error) {
	deckSchemaOnce.Do(func() {
		// The compiler wants a value shaped like json.Unmarshal output.
		b, err := json.Marshal(deckSchemaDef)
		if err != nil {
			deckSchemaErr = fmt.Errorf("marshal deck schema: %w", err)
			return
		}
		var parsed any
		if err := json.Unmarshal(b, &parsed); err != nil {
			deckSchemaErr = fmt.Errorf("parse deck schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(deckSchemaURL, parsed); err != nil {
			deckSchemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		deckSchema, deckSchemaErr = c.Compile(deckSchemaURL)
	})
	return deckSchema, deckSchemaErr
}

// LoadDeck reads and validates the deck file at path.
func LoadDeck(path string) (*Deck, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deck: %w", err)
	}
	return ParseDeck(data, format)
}

// ParseDeck decodes a deck, validates it against the deck schema and checks
// that item IDs are unique.
func ParseDeck(data []byte, format Format) (*Deck, error) {
	raw, err := toJSON(data, format)
	if err != nil {
		return nil, err
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrInvalidDeck, err)
	}
	schema, err := compiledDeckSchema()
	if err != nil {
		return nil, fmt.Errorf("compile deck schema: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDeck, err)
	}

	var deck Deck
	if err := json.Unmarshal(raw, &deck); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDeck, err)
	}

	seen := make(map[string]bool, len(deck.Items))
	for i := range deck.Items {
		it := &deck.Items[i]
		it.ID = strings.TrimSpace(it.ID)
		if err := it.Validate(); err != nil {
			return nil, err
		}
		if seen[it.ID] {
			return nil, fmt.Errorf("%w: duplicate item id %q", ErrInvalidDeck, it.ID)
		}
		seen[it.ID] = true
	}
	return &deck, nil
}

// toJSON converts YAML input to JSON so both formats go through the same
// schema validation.
func toJSON(data []byte, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return data, nil
	case FormatYAML:
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("%w: invalid YAML: %v", ErrInvalidDeck, err)
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: convert YAML: %v", ErrInvalidDeck, err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidDeck, format)
	}
}
