package db

import (
	"errors"
	"fmt"
)

// FieldType enumerates the FT index field types sommelier uses.
type FieldType int

// Field types.
const (
	FieldTag FieldType = iota
	FieldText
	FieldNumeric
	FieldVector
)

// Field describes one field of an FT index schema.
type Field struct {
	Name string
	Type FieldType

	// Vector options. HNSW with cosine distance; zero M/EF use server defaults.
	Dim         int
	M           int
	EFConstruct int
}

// IndexDefinition is the input of FT.CREATE over HASH keys.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []Field
}

// NewIndex starts an index definition over keys with the given prefix.
func NewIndex(name string, prefixes ...string) *IndexDefinition {
	return &IndexDefinition{Name: name, Prefixes: prefixes}
}

// Tag adds a TAG field.
func (d *IndexDefinition) Tag(name string) *IndexDefinition {
	d.Fields = append(d.Fields, Field{Name: name, Type: FieldTag})
	return d
}

// Text adds a TEXT field (BM25; not available on valkey-search).
func (d *IndexDefinition) Text(name string) *IndexDefinition {
	d.Fields = append(d.Fields, Field{Name: name, Type: FieldText})
	return d
}

// Numeric adds a NUMERIC field.
func (d *IndexDefinition) Numeric(name string) *IndexDefinition {
	d.Fields = append(d.Fields, Field{Name: name, Type: FieldNumeric})
	return d
}

// Vector adds an HNSW FLOAT32 cosine vector field.
func (d *IndexDefinition) Vector(name string, dim, m, efConstruct int) *IndexDefinition {
	d.Fields = append(d.Fields, Field{Name: name, Type: FieldVector, Dim: dim, M: m, EFConstruct: efConstruct})
	return d
}

// Without returns a copy of the definition without fields of type t.
func (d *IndexDefinition) Without(t FieldType) *IndexDefinition {
	out := &IndexDefinition{Name: d.Name, Prefixes: d.Prefixes}
	for _, f := range d.Fields {
		if f.Type != t {
			out.Fields = append(out.Fields, f)
		}
	}
	return out
}

// Validate checks that the definition is well-formed.
func (d *IndexDefinition) Validate() error {
	if !IsValidIdentifier(d.Name) {
		return fmt.Errorf("invalid index name %q", d.Name)
	}
	if len(d.Fields) == 0 {
		return errors.New("at least one field is required")
	}
	seen := make(map[string]bool, len(d.Fields))
	for _, f := range d.Fields {
		if f.Name == "" {
			return errors.New("field name is required")
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate field %q", f.Name)
		}
		seen[f.Name] = true
		if f.Type == FieldVector && f.Dim <= 0 {
			return fmt.Errorf("vector field %q requires a positive dimension", f.Name)
		}
	}
	return nil
}

// IsValidIdentifier reports whether s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == ':' || r == '-':
		default:
			return false
		}
	}
	return true
}
