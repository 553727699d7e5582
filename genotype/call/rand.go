// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package call

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"
)

// Rand is the random capability threaded through the callers.  *rand.Rand
// satisfies it; tests substitute fixed-sequence fakes.
//
// A run consumes a single sequential Rand in a fixed order: panel order,
// then sample order within each site, then per-call draw order.  Two runs
// with the same seed, inputs and sample ordering therefore produce
// identical output.
type Rand interface {
	Intn(n int) int
}

// NewRand returns a Rand for one run.  seed is the decimal representation
// of an int64; the empty string requests nondeterministic seeding from the
// current time.
func NewRand(seed string) (Rand, error) {
	if seed == "" {
		return rand.New(rand.NewSource(time.Now().UnixNano())), nil
	}
	s, err := strconv.ParseInt(seed, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("call.NewRand: invalid seed %q", seed)
	}
	return rand.New(rand.NewSource(s)), nil
}
