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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	tests := []string{
		"request",
		"request.auth.claims.email",
		`request.auth.claims["my.dotted.claim"]`,
		"matrix[0][1]",
		"flags[true]",
		"counters[42u]",
		"items[-3]",
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			a, err := Parse(input)
			require.NoError(t, err)
			assert.Equal(t, input, a.String())
		})
	}
}

func TestParseQualifierKinds(t *testing.T) {
	a, err := Parse(`req.items[3]['k'][true][7u]`)
	require.NoError(t, err)
	assert.Equal(t, "req", a.Root())
	quals := a.Qualifiers()
	require.Len(t, quals, 5)
	assert.Equal(t, OfString("items"), quals[0])
	assert.Equal(t, OfInt(3), quals[1])
	assert.Equal(t, OfString("k"), quals[2])
	assert.Equal(t, OfBool(true), quals[3])
	assert.Equal(t, OfUint(7), quals[4])
}

func TestParseRejectsMalformedPaths(t *testing.T) {
	for _, input := range []string{
		"",
		".a",
		"a.",
		"a..b",
		"a[",
		"a[]",
		"a[1",
		"a['x",
		"a[tru]",
		"a[1.5]",
		"9a",
		"a.*", // wildcard is pattern syntax
		"a[*]",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			assert.Error(t, err)
		})
	}
}

func TestAttributeEqualityAndPrefix(t *testing.T) {
	a := MustParse("request.auth.claims.email")
	same := New("request", OfString("auth"), OfString("claims"), OfString("email"))
	assert.True(t, a.Equal(same))

	prefix := MustParse("request.auth")
	assert.True(t, prefix.IsPrefixOf(a))
	assert.False(t, a.IsPrefixOf(prefix))
	assert.True(t, a.IsPrefixOf(a))
	assert.False(t, MustParse("other.auth").IsPrefixOf(a))

	// Qualify does not mutate the receiver.
	q := prefix.Qualify(OfString("claims"))
	assert.Len(t, prefix.Qualifiers(), 1)
	assert.Len(t, q.Qualifiers(), 2)
}

func TestPatternMatching(t *testing.T) {
	attr := MustParse("request.auth.claims.email")

	tests := []struct {
		pattern      string
		match        bool
		partialMatch bool
	}{
		{pattern: "request.auth.claims.email", match: true, partialMatch: true},
		{pattern: "request.auth", match: true, partialMatch: false},
		{pattern: "request.*", match: true, partialMatch: false},
		{pattern: "request.auth.claims.email.*", match: false, partialMatch: true},
		{pattern: "request.auth.other", match: false, partialMatch: false},
		{pattern: "other", match: false, partialMatch: false},
	}
	for _, tc := range tests {
		t.Run(tc.pattern, func(t *testing.T) {
			p := MustParsePattern(tc.pattern)
			assert.Equal(t, tc.match, p.Matches(attr), "match")
			assert.Equal(t, tc.partialMatch, p.PartialMatches(attr), "partial match")
		})
	}
}

func TestPatternWildcardQualifier(t *testing.T) {
	p := MustParsePattern("rows[*].value")
	assert.True(t, p.Matches(MustParse("rows[0].value")))
	assert.True(t, p.Matches(MustParse(`rows["k"].value`)))
	assert.True(t, p.Matches(MustParse("rows[true].value.extra")))
	assert.False(t, p.Matches(MustParse("rows[0].other")))
}

func TestPatternGlobQualifiers(t *testing.T) {
	p := MustParsePattern(`request.auth.claims["email_*"]`)
	assert.True(t, p.Matches(MustParse(`request.auth.claims["email_home"]`)))
	assert.True(t, p.Matches(MustParse("request.auth.claims.email_work")))
	assert.False(t, p.Matches(MustParse(`request.auth.claims["phone"]`)))
	// Glob patterns apply to string qualifiers only.
	assert.False(t, p.Matches(MustParse("request.auth.claims[3]")))

	_, err := ParsePattern(`req["["]`)
	assert.Error(t, err, "malformed glob fails pattern construction")
}

func TestPatternTrailingWildcardPlacement(t *testing.T) {
	_, err := ParsePattern("a.*.b")
	assert.Error(t, err, "wildcard must terminate the pattern")

	p, err := ParsePattern("a.b.*")
	require.NoError(t, err)
	assert.Equal(t, "a.b.*", p.String())
}

func TestCompareOrdersByCanonicalForm(t *testing.T) {
	a := MustParse("a.b")
	b := MustParse("a.c")
	assert.Negative(t, Compare(a, b))
	assert.Positive(t, Compare(b, a))
	assert.Zero(t, Compare(a, MustParse("a.b")))
}
