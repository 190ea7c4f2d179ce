package apl

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// File is one rotation document before imports are resolved.
type File struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Imports     []string           `yaml:"imports"`
	Variables   map[string]any     `yaml:"variables"`
	Rotation    []ActionDefinition `yaml:"rotation"`
}

// ActionDefinition is one priority entry as written. When is interpreted
// by Compile.
type ActionDefinition struct {
	Action          string             `yaml:"action"`
	Spell           string             `yaml:"spell,omitempty"`
	Item            string             `yaml:"item,omitempty"`
	DurationSeconds float64            `yaml:"duration_seconds,omitempty"`
	Steps           []ActionDefinition `yaml:"steps,omitempty"`
	Tags            []string           `yaml:"tags,omitempty"`
	When            *ConditionNode     `yaml:"when,omitempty"`
}

// ConditionNode holds a condition tree exactly as written. Decoding into a
// yaml.Node field directly would treat the node as a struct, so the raw
// node is captured through UnmarshalYAML.
type ConditionNode struct {
	raw *yaml.Node
}

// UnmarshalYAML keeps value verbatim.
func (c *ConditionNode) UnmarshalYAML(value *yaml.Node) error {
	c.raw = value
	return nil
}

// Node returns the raw tree, or nil.
func (c *ConditionNode) Node() *yaml.Node {
	if c == nil {
		return nil
	}
	return c.raw
}

// Decode parses a rotation document. Unknown keys are rejected so a typo
// in a hand-written rotation fails loudly instead of silently dropping an
// entry's condition. An empty document is an empty rotation.
func Decode(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var file File
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &file, nil
}

// String renders the entry for error messages.
func (d ActionDefinition) String() string {
	switch {
	case d.Spell != "":
		return fmt.Sprintf("%s %s", d.Action, d.Spell)
	case d.Item != "":
		return fmt.Sprintf("%s %s", d.Action, d.Item)
	default:
		return d.Action
	}
}
