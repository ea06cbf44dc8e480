// Package projector fills markdown templates with values and fragments computed from a release
// manifest.
//
// Placeholders are applied in phases. Scalar values go first, then the sections that introduce
// link usages (SDK bullet lists, package tables, security text). The resulting text is then
// scanned for reference-style link usages, and only after that are the sections that emit link
// definitions expanded, keeping just the definitions whose names are used. Placeholders the
// template does not contain are ignored, and tokens in the template that no placeholder claims
// are left as they are.
package projector

import (
	"strings"
)

// Kind decides in which phase a placeholder is expanded.
type Kind int

const (
	// Scalar placeholders are plain values such as {RUNTIME-VERSION}.
	Scalar Kind = iota
	// Usage placeholders expand to fragments that may reference links.
	Usage
	// Definition placeholders expand to link-reference definitions filtered to used names.
	Definition
)

// Placeholder binds a template token to the function that computes its replacement. used is only
// populated for Definition placeholders.
type Placeholder struct {
	Token string
	Kind  Kind
	Value func(used LinkSet) string
}

// Text is a Placeholder with a fixed scalar value.
func Text(token, value string) Placeholder {
	return Placeholder{Token: token, Kind: Scalar, Value: func(LinkSet) string { return value }}
}

// Section is a Usage placeholder.
func Section(token string, fn func() string) Placeholder {
	return Placeholder{Token: token, Kind: Usage, Value: func(LinkSet) string { return fn() }}
}

// Definitions is a Definition placeholder.
func Definitions(token string, fn func(used LinkSet) string) Placeholder {
	return Placeholder{Token: token, Kind: Definition, Value: fn}
}

// Document is template text being filled in.
type Document struct {
	content string
}

// NewDocument wraps template text.
func NewDocument(content string) *Document {
	return &Document{content: content}
}

// Replace substitutes every occurrence of token with value. Returns whether the token was present.
func (d *Document) Replace(token, value string) bool {
	if !strings.Contains(d.content, token) {
		return false
	}
	d.content = strings.ReplaceAll(d.content, token, value)
	return true
}

// Contains reports whether token still occurs in the document.
func (d *Document) Contains(token string) bool {
	return strings.Contains(d.content, token)
}

func (d *Document) String() string {
	return d.content
}

// Project expands placeholders into template in phase order and returns the result.
func Project(template string, placeholders []Placeholder) string {
	doc := NewDocument(template)

	for _, kind := range []Kind{Scalar, Usage} {
		for _, p := range placeholders {
			if p.Kind == kind && doc.Contains(p.Token) {
				doc.Replace(p.Token, p.Value(nil))
			}
		}
	}

	used := ReferencedLinks(doc.String())

	for _, p := range placeholders {
		if p.Kind == Definition && doc.Contains(p.Token) {
			doc.Replace(p.Token, p.Value(used))
		}
	}
	return doc.String()
}
