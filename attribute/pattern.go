// Copyright 2025 The Kubernetes Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package attribute

import (
	"strings"

	"github.com/gobwas/glob"
)

// Pattern declares a family of attributes as unknown. Its qualifiers
// may be wildcards, and string qualifiers may carry glob syntax, e.g.
// `request.auth.claims["email_*"]`.
type Pattern struct {
	root       string
	qualifiers []Qualifier
	// matchers holds a compiled glob per string qualifier that uses
	// glob syntax; index-aligned with qualifiers, nil for exact ones.
	matchers []glob.Glob
}

// NewPattern builds a pattern rooted at the given identifier. String
// qualifiers containing glob metacharacters are compiled once here; a
// malformed glob fails construction.
func NewPattern(root string, qualifiers ...Qualifier) (Pattern, error) {
	p := Pattern{
		root:       root,
		qualifiers: qualifiers,
		matchers:   make([]glob.Glob, len(qualifiers)),
	}
	for i, q := range qualifiers {
		if q.Kind != StringQualifier || !strings.ContainsAny(q.StringValue, `*?[\`) {
			continue
		}
		g, err := glob.Compile(q.StringValue)
		if err != nil {
			return Pattern{}, formatParseError(q.StringValue, 0, "invalid glob qualifier: "+err.Error())
		}
		p.matchers[i] = g
	}
	return p, nil
}

// MustNewPattern is NewPattern for statically known patterns.
func MustNewPattern(root string, qualifiers ...Qualifier) Pattern {
	p, err := NewPattern(root, qualifiers...)
	if err != nil {
		panic(err)
	}
	return p
}

// Root returns the root identifier the pattern applies to.
func (p Pattern) Root() string {
	return p.root
}

// Qualifiers returns the pattern's qualifier sequence.
func (p Pattern) Qualifiers() []Qualifier {
	return p.qualifiers
}

// Matches reports whether the attribute is named by the pattern: the
// attribute is at least as long as the pattern and every pattern
// qualifier covers the corresponding attribute qualifier.
func (p Pattern) Matches(a Attribute) bool {
	if p.root != a.root || len(a.qualifiers) < len(p.qualifiers) {
		return false
	}
	return p.covers(a.qualifiers[:len(p.qualifiers)])
}

// PartialMatches reports whether the attribute is a prefix of a path
// the pattern could name: the pattern is at least as long as the
// attribute and covers all of it. A partial match means descending
// further into the attribute may still hit the unknown region.
func (p Pattern) PartialMatches(a Attribute) bool {
	if p.root != a.root || len(p.qualifiers) < len(a.qualifiers) {
		return false
	}
	return p.covers(a.qualifiers)
}

func (p Pattern) covers(quals []Qualifier) bool {
	for i, q := range quals {
		pq := p.qualifiers[i]
		if pq.Kind == WildcardQualifier {
			continue
		}
		if p.matchers[i] != nil {
			if q.Kind != StringQualifier || !p.matchers[i].Match(q.StringValue) {
				return false
			}
			continue
		}
		if !pq.Equal(q) {
			return false
		}
	}
	return true
}

// String renders the canonical textual form accepted by ParsePattern.
func (p Pattern) String() string {
	var b strings.Builder
	b.WriteString(p.root)
	for i, q := range p.qualifiers {
		if q.Kind == WildcardQualifier && i != len(p.qualifiers)-1 {
			// Only a trailing wildcard may use the `.*` form.
			b.WriteString("[*]")
			continue
		}
		b.WriteString(q.String())
	}
	return b.String()
}
