// Package profile handles the schema-flexible profile document attached to
// every account. Documents are stored as JSON text; imports arrive as YAML
// and go through a data-only parser that accepts core scalar and collection
// tags and nothing else.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document is a bag of profile attributes. Keys are unvalidated on purpose;
// the lab stores whatever the client sends, including unexpected keys.
type Document map[string]any

var ErrNotMapping = errors.New("profile must be a mapping")

// allowedTags is the safe subset: plain YAML data. Anything outside it, in
// particular language-specific object tags, is rejected before decoding.
var allowedTags = map[string]struct{}{
	"!!map":       {},
	"!!seq":       {},
	"!!str":       {},
	"!!int":       {},
	"!!float":     {},
	"!!bool":      {},
	"!!null":      {},
	"!!timestamp": {},
	"!!merge":     {},
}

// ParseYAML decodes a profile document from YAML, enforcing the safe subset.
func ParseYAML(text string) (Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(text), &root); err != nil {
		return nil, fmt.Errorf("parse profile yaml: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, ErrNotMapping
	}

	node := root.Content[0]
	if err := checkTags(node); err != nil {
		return nil, err
	}
	if node.Kind != yaml.MappingNode {
		return nil, ErrNotMapping
	}

	var doc Document
	if err := node.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode profile yaml: %w", err)
	}

	return doc, nil
}

func checkTags(node *yaml.Node) error {
	if node.Kind != yaml.AliasNode {
		if _, ok := allowedTags[node.Tag]; !ok && node.Tag != "" {
			return fmt.Errorf("unsupported yaml tag %q", node.Tag)
		}
	}
	for _, child := range node.Content {
		if err := checkTags(child); err != nil {
			return err
		}
	}
	return nil
}

// FromJSON loads a stored document; an empty blob yields an empty document.
func FromJSON(text string) (Document, error) {
	if text == "" {
		return Document{}, nil
	}

	var doc Document
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("decode stored profile: %w", err)
	}

	return doc, nil
}

// JSON encodes the document for storage.
func (d Document) JSON() (string, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("encode profile: %w", err)
	}

	return string(raw), nil
}

// String returns the value under key when it is a string, or fallback.
func (d Document) String(key, fallback string) string {
	if value, ok := d[key].(string); ok {
		return value
	}
	return fallback
}
