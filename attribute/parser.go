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
	"strconv"
	"strings"
)

// Parse reads the textual attribute form:
//
//	root ( '.' name | '[' literal ']' )*
//
// where literal is a bool, int, uint (trailing 'u'), or quoted string.
// Wildcards are rejected here; use ParsePattern for pattern text.
func Parse(input string) (Attribute, error) {
	root, quals, err := parsePath(input, false)
	if err != nil {
		return Attribute{}, err
	}
	return Attribute{root: root, qualifiers: quals}, nil
}

// MustParse is Parse for statically known paths.
func MustParse(input string) Attribute {
	a, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return a
}

// ParsePattern reads the textual pattern form, which additionally
// allows a trailing `.*` wildcard and `[*]` wildcard qualifiers, and
// glob syntax inside quoted string qualifiers.
func ParsePattern(input string) (Pattern, error) {
	root, quals, err := parsePath(input, true)
	if err != nil {
		return Pattern{}, err
	}
	return NewPattern(root, quals...)
}

// MustParsePattern is ParsePattern for statically known patterns.
func MustParsePattern(input string) Pattern {
	p, err := ParsePattern(input)
	if err != nil {
		panic(err)
	}
	return p
}

func parsePath(input string, pattern bool) (string, []Qualifier, error) {
	if input == "" {
		return "", nil, formatParseError(input, 0, "empty path")
	}
	pos := 0
	root, next, err := scanIdentifier(input, pos)
	if err != nil {
		return "", nil, err
	}
	pos = next

	var quals []Qualifier
	for pos < len(input) {
		switch input[pos] {
		case '.':
			pos++
			// Trailing `.*` wildcard, patterns only.
			if pattern && pos < len(input) && input[pos] == '*' {
				if pos+1 != len(input) {
					return "", nil, formatParseError(input, pos, "wildcard must terminate the pattern")
				}
				quals = append(quals, Wildcard())
				return root, quals, nil
			}
			name, next, err := scanIdentifier(input, pos)
			if err != nil {
				return "", nil, err
			}
			quals = append(quals, OfString(name))
			pos = next
		case '[':
			q, next, err := scanIndex(input, pos+1, pattern)
			if err != nil {
				return "", nil, err
			}
			quals = append(quals, q)
			pos = next
		default:
			return "", nil, formatParseError(input, pos, "expected '.' or '['")
		}
	}
	return root, quals, nil
}

func scanIdentifier(input string, pos int) (string, int, error) {
	start := pos
	for pos < len(input) {
		c := input[pos]
		if c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || (pos > start && c >= '0' && c <= '9') {
			pos++
			continue
		}
		break
	}
	if pos == start {
		return "", 0, formatParseError(input, pos, "expected identifier")
	}
	return input[start:pos], pos, nil
}

func scanIndex(input string, pos int, pattern bool) (Qualifier, int, error) {
	if pos >= len(input) {
		return Qualifier{}, 0, formatParseError(input, pos, "unterminated index")
	}
	switch c := input[pos]; {
	case pattern && c == '*':
		return closeIndex(input, pos+1, Wildcard())
	case c == '\'' || c == '"':
		s, next, err := scanQuoted(input, pos)
		if err != nil {
			return Qualifier{}, 0, err
		}
		return closeIndex(input, next, OfString(s))
	case c == 't' || c == 'f':
		end := strings.IndexByte(input[pos:], ']')
		if end < 0 {
			return Qualifier{}, 0, formatParseError(input, pos, "unterminated index")
		}
		word := input[pos : pos+end]
		b, err := strconv.ParseBool(word)
		if err != nil {
			return Qualifier{}, 0, formatParseError(input, pos, "invalid bool literal "+strconv.Quote(word))
		}
		return closeIndex(input, pos+end, OfBool(b))
	case c == '-' || c >= '0' && c <= '9':
		end := strings.IndexByte(input[pos:], ']')
		if end < 0 {
			return Qualifier{}, 0, formatParseError(input, pos, "unterminated index")
		}
		digits := input[pos : pos+end]
		if strings.HasSuffix(digits, "u") {
			u, err := strconv.ParseUint(strings.TrimSuffix(digits, "u"), 10, 64)
			if err != nil {
				return Qualifier{}, 0, formatParseError(input, pos, "invalid uint literal "+strconv.Quote(digits))
			}
			return closeIndex(input, pos+end, OfUint(u))
		}
		i, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return Qualifier{}, 0, formatParseError(input, pos, "invalid int literal "+strconv.Quote(digits))
		}
		return closeIndex(input, pos+end, OfInt(i))
	default:
		return Qualifier{}, 0, formatParseError(input, pos, "expected literal index")
	}
}

func closeIndex(input string, pos int, q Qualifier) (Qualifier, int, error) {
	if pos >= len(input) || input[pos] != ']' {
		return Qualifier{}, 0, formatParseError(input, pos, "expected ']'")
	}
	return q, pos + 1, nil
}

// scanQuoted reads a single- or double-quoted string with backslash
// escapes, returning the unquoted text and the offset past the closing
// quote.
func scanQuoted(input string, pos int) (string, int, error) {
	quote := input[pos]
	var b strings.Builder
	i := pos + 1
	for i < len(input) {
		c := input[i]
		switch c {
		case '\\':
			if i+1 >= len(input) {
				return "", 0, formatParseError(input, i, "dangling escape")
			}
			b.WriteByte(input[i+1])
			i += 2
		case quote:
			return b.String(), i + 1, nil
		default:
			b.WriteByte(c)
			i++
		}
	}
	return "", 0, formatParseError(input, pos, "unterminated string literal")
}
