// Copyright 2025 Poiesic Systems
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

package selection

import (
	"fmt"
	"math"

	"github.com/poiesic/spansearch/core"
)

// Policy decides how many of n ranked units to keep.
type Policy interface {
	// Count returns the number of units to select out of n.
	Count(n int) int
	// Validate reports whether the policy parameters are usable.
	Validate() error
	String() string
}

// Percentage keeps P*n units truncated toward zero, so 0.29 of 100 keeps 28
// because the float product is 28.999999999999996. P must be in [0,1].
type Percentage float64

// TopK keeps min(K, n) units. K must not be negative.
type TopK int

var (
	_ Policy = Percentage(0)
	_ Policy = TopK(0)
)

// Count implements Policy.
func (p Percentage) Count(n int) int {
	if n <= 0 || p <= 0 {
		return 0
	}
	return min(int(float64(p)*float64(n)), n)
}

// Validate implements Policy.
func (p Percentage) Validate() error {
	if math.IsNaN(float64(p)) || p < 0 || p > 1 {
		return fmt.Errorf("%w: percentage %v outside [0,1]", core.ErrUnsupportedConfiguration, float64(p))
	}
	return nil
}

func (p Percentage) String() string {
	return fmt.Sprintf("percentage=%g", float64(p))
}

// Count implements Policy.
func (k TopK) Count(n int) int {
	return max(min(int(k), n), 0)
}

// Validate implements Policy.
func (k TopK) Validate() error {
	if k < 0 {
		return fmt.Errorf("%w: top-k %d is negative", core.ErrUnsupportedConfiguration, int(k))
	}
	return nil
}

func (k TopK) String() string {
	return fmt.Sprintf("top_k=%d", int(k))
}

// ParsePolicy builds a policy from its kind name ("percentage" or "top_k")
// and a value.
func ParsePolicy(kind string, value float64) (Policy, error) {
	var p Policy
	switch kind {
	case "percentage":
		p = Percentage(value)
	case "top_k", "topk", "top-k":
		if value != math.Trunc(value) {
			return nil, fmt.Errorf("%w: top-k %v is not an integer", core.ErrUnsupportedConfiguration, value)
		}
		p = TopK(int(value))
	default:
		return nil, fmt.Errorf("%w: selection policy %q", core.ErrUnsupportedConfiguration, kind)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
