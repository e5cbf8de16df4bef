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

package celcore

import (
	"github.com/google/cel-core/functions"
	"github.com/google/cel-core/interpreter"
)

// Features is the feature-flag surface of the runtime. The zero value
// is not useful; start from DefaultFeatures.
type Features struct {
	// EnableShortCircuiting controls lazy evaluation of `&&`, `||`, and
	// `?:`. Disabled, every branch is evaluated for observability while
	// results stay unchanged.
	EnableShortCircuiting bool

	// EnableUnsignedLongs keeps uint a kind distinct from int. When
	// disabled, unsigned inputs are represented as int.
	EnableUnsignedLongs bool

	// EnableHeterogeneousNumericComparisons enables cross-kind numeric
	// equality and ordering. Disabled, `2 == 2u` fails with
	// no-such-overload.
	EnableHeterogeneousNumericComparisons bool

	// EnableTimestampEpoch defines `timestamp(int)` as seconds from the
	// Unix epoch.
	EnableTimestampEpoch bool

	// EnableProtoDifferencerEquality selects canonical-form structured
	// equality where NaN-valued fields never compare equal. Disabled,
	// structured equality is field-wise with NaN fields equal to
	// themselves.
	EnableProtoDifferencerEquality bool

	// MaxParseRecursionDepth bounds tree depth during evaluation and
	// navigable-view construction.
	MaxParseRecursionDepth int

	// ComprehensionMaxIterations bounds the size of any comprehension
	// iteration range.
	ComprehensionMaxIterations int

	// MaxConcatLength bounds string and bytes concatenation results;
	// zero means unbounded.
	MaxConcatLength int
}

// DefaultFeatures returns the flag settings of a standard deployment.
func DefaultFeatures() Features {
	return Features{
		EnableShortCircuiting:                 true,
		EnableUnsignedLongs:                   true,
		EnableHeterogeneousNumericComparisons: true,
		EnableTimestampEpoch:                  false,
		EnableProtoDifferencerEquality:        true,
		MaxParseRecursionDepth:                500,
		ComprehensionMaxIterations:            interpreter.DefaultComprehensionMaxIterations,
	}
}

func (f Features) standardOptions() functions.StandardOptions {
	return functions.StandardOptions{
		HeterogeneousComparisons: f.EnableHeterogeneousNumericComparisons,
		TimestampEpoch:           f.EnableTimestampEpoch,
		MaxConcatLength:          f.MaxConcatLength,
	}
}
