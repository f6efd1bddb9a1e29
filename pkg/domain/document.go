package domain

import "strings"

// Document identifies a physical person by exactly one of a national document
// number or a foreign document number, discriminated by Foreign.
type Document struct {
	Value   string
	Foreign bool
}

// NewDocument trims the raw value and tags its origin.
func NewDocument(value string, foreign bool) Document {
	return Document{Value: strings.TrimSpace(value), Foreign: foreign}
}

// IsZero reports whether no document value is present.
func (d Document) IsZero() bool { return d.Value == "" }
