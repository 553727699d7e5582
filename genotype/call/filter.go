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

	"github.com/grailbio/genocall/genotype"
)

// FilterMode selects the whole-run treatment of transition sites.
type FilterMode int

const (
	// AllSites passes every record through unchanged.
	AllSites FilterMode = iota
	// SkipTransitions drops transition records entirely.
	SkipTransitions
	// TransitionsMissing keeps transition records but blanks their dosage
	// vector to all-missing.
	TransitionsMissing
)

// ParseFilterMode parses a transition-policy string given on the command
// line.
func ParseFilterMode(s string) (FilterMode, error) {
	switch s {
	case "all":
		return AllSites, nil
	case "skip":
		return SkipTransitions, nil
	case "missing":
		return TransitionsMissing, nil
	}
	return 0, fmt.Errorf("call.ParseFilterMode: unrecognized transition policy %q", s)
}

// Filter applies a transition policy to a record stream.  It only ever
// rewrites the dosage vector; position and allele fields pass through
// untouched.
type Filter struct {
	src  RecordSource
	mode FilterMode
}

// NewFilter wraps src with the given policy.
func NewFilter(src RecordSource, mode FilterMode) *Filter {
	return &Filter{src: src, mode: mode}
}

// Scan produces the next surviving record.
func (f *Filter) Scan(rec *genotype.MatrixRecord) bool {
	for f.src.Scan(rec) {
		if (f.mode == AllSites) || !genotype.IsTransition(rec.Ref, rec.Alt) {
			return true
		}
		if f.mode == TransitionsMissing {
			for i := range rec.Dosages {
				rec.Dosages[i] = genotype.DosageMissing
			}
			return true
		}
		// SkipTransitions: pull the next record.
	}
	return false
}

// Err returns the underlying stream's error state.
func (f *Filter) Err() error {
	return f.src.Err()
}
