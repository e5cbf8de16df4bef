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

package types

import (
	"math"
	"time"
)

// Checked 64-bit arithmetic. Every helper returns the result and an ok
// flag; callers turn !ok into a numeric-overflow error value.

func addInt64Checked(x, y int64) (int64, bool) {
	if (y > 0 && x > math.MaxInt64-y) || (y < 0 && x < math.MinInt64-y) {
		return 0, false
	}
	return x + y, true
}

func subtractInt64Checked(x, y int64) (int64, bool) {
	if (y < 0 && x > math.MaxInt64+y) || (y > 0 && x < math.MinInt64+y) {
		return 0, false
	}
	return x - y, true
}

func negateInt64Checked(x int64) (int64, bool) {
	if x == math.MinInt64 {
		return 0, false
	}
	return -x, true
}

func multiplyInt64Checked(x, y int64) (int64, bool) {
	if x == 0 || y == 0 {
		return 0, true
	}
	z := x * y
	if z/y != x || (x == math.MinInt64 && y == -1) {
		return 0, false
	}
	return z, true
}

func divideInt64Checked(x, y int64) (int64, bool) {
	if x == math.MinInt64 && y == -1 {
		return 0, false
	}
	return x / y, true
}

func addUint64Checked(x, y uint64) (uint64, bool) {
	if y > 0 && x > math.MaxUint64-y {
		return 0, false
	}
	return x + y, true
}

func subtractUint64Checked(x, y uint64) (uint64, bool) {
	if y > x {
		return 0, false
	}
	return x - y, true
}

func multiplyUint64Checked(x, y uint64) (uint64, bool) {
	if x == 0 || y == 0 {
		return 0, true
	}
	z := x * y
	if z/y != x {
		return 0, false
	}
	return z, true
}

func doubleToInt64Checked(d float64) (int64, bool) {
	if math.IsNaN(d) || math.IsInf(d, 0) || d >= math.MaxInt64 || d <= math.MinInt64 {
		return 0, false
	}
	return int64(d), true
}

func doubleToUint64Checked(d float64) (uint64, bool) {
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 || d >= math.MaxUint64 {
		return 0, false
	}
	return uint64(d), true
}

func int64ToUint64Checked(i int64) (uint64, bool) {
	if i < 0 {
		return 0, false
	}
	return uint64(i), true
}

func uint64ToInt64Checked(u uint64) (int64, bool) {
	if u > math.MaxInt64 {
		return 0, false
	}
	return int64(u), true
}

func addDurationChecked(x, y time.Duration) (time.Duration, bool) {
	n, ok := addInt64Checked(int64(x), int64(y))
	return time.Duration(n), ok
}

func subtractDurationChecked(x, y time.Duration) (time.Duration, bool) {
	n, ok := subtractInt64Checked(int64(x), int64(y))
	return time.Duration(n), ok
}

// Timestamps are bounded to the range representable by RFC 3339, the
// same window enforced by the protobuf well-known type.
const (
	minUnixTime int64 = -62135596800
	maxUnixTime int64 = 253402300799
)

func timestampInRange(t time.Time) bool {
	unix := t.Unix()
	return unix >= minUnixTime && unix <= maxUnixTime
}

func addTimeDurationChecked(t time.Time, d time.Duration) (time.Time, bool) {
	out := t.Add(d)
	return out, timestampInRange(out)
}
