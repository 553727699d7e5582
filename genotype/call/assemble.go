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

// RecordSource yields genotype-matrix records; Assembler and Filter both
// implement it, so stages compose.
type RecordSource interface {
	Scan(rec *genotype.MatrixRecord) bool
	Err() error
}

// Assembler drives the merge and produces one MatrixRecord per panel site:
// a panel site with no pile becomes an all-missing dosage row, and a
// covered site gets one independent Caller.Call per sample, in sample
// order.
type Assembler struct {
	merger   *Merger
	caller   *Caller
	nSamples int

	row JoinedRow
	err error
}

// NewAssembler returns an Assembler producing dosage rows of length
// nSamples.
func NewAssembler(merger *Merger, caller *Caller, nSamples int) *Assembler {
	return &Assembler{merger: merger, caller: caller, nSamples: nSamples}
}

// Scan produces the next record.  rec's dosage slice is reused when its
// capacity allows.
func (a *Assembler) Scan(rec *genotype.MatrixRecord) bool {
	if a.err != nil {
		return false
	}
	if !a.merger.Scan(&a.row) {
		a.err = a.merger.Err()
		return false
	}
	site := &a.row.Site
	rec.ID = site.ID
	rec.Chrom = site.Chrom
	rec.Pos = site.Pos
	rec.Ref = site.Ref
	rec.Alt = site.Alt
	if cap(rec.Dosages) < a.nSamples {
		rec.Dosages = make([]genotype.Dosage, a.nSamples)
	} else {
		rec.Dosages = rec.Dosages[:a.nSamples]
	}
	if a.row.Pile == nil {
		for i := range rec.Dosages {
			rec.Dosages[i] = genotype.DosageMissing
		}
		return true
	}
	if len(a.row.Pile.Bases) != a.nSamples {
		a.err = fmt.Errorf("call.Assembler: pileup at %s:%d has %d sample columns, expected %d",
			site.Chrom, site.Pos, len(a.row.Pile.Bases), a.nSamples)
		return false
	}
	for i, bases := range a.row.Pile.Bases {
		rec.Dosages[i] = a.caller.Call(bases, site.Ref, site.Alt).Dosage()
	}
	return true
}

// Err returns the first error encountered, or nil on clean exhaustion.
func (a *Assembler) Err() error {
	return a.err
}
