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
package genotype

import (
	"strings"
)

// Common genotype-calling components.

// Genotype is a per-sample, per-site diploid (or pseudo-haploid) call.
type Genotype int

const (
	// Missing means no call could be made at this site for this sample.
	Missing Genotype = iota
	// HomRef means both called alleles match the panel's reference allele.
	HomRef
	// HomAlt means both called alleles match the panel's alternate allele.
	HomAlt
	// Het means one called allele matches each panel allele.  Only the
	// random-diploid caller produces this.
	Het
)

// Dosage is the number of alternate alleles in a call, or DosageMissing.
type Dosage = int8

// DosageMissing marks a sample with no call at a site.
const DosageMissing Dosage = -1

// genotypeToDosageTable is the Genotype -> Dosage mapping.
var genotypeToDosageTable = [...]Dosage{DosageMissing, 0, 2, 1}

// Dosage returns the alternate-allele dosage for g.
func (g Genotype) Dosage() Dosage {
	return genotypeToDosageTable[g]
}

// String implements fmt.Stringer; used in error and log messages only.
func (g Genotype) String() string {
	switch g {
	case HomRef:
		return "hom-ref"
	case HomAlt:
		return "hom-alt"
	case Het:
		return "het"
	}
	return "missing"
}

// PanelSite is one entry of a sorted SNP panel: a genomic position and the
// two candidate alleles genotypes are restricted to.
type PanelSite struct {
	ID    string // optional marker name, e.g. an rs number
	Chrom string
	Pos   int
	Ref   byte
	Alt   byte
}

// Pile summarizes the aligned read bases observed at one genomic position,
// one base slice per sample.  Bases are uppercase ASCII; read-structure
// markup (starts, ends, indels) has already been stripped by the decoder.
type Pile struct {
	Chrom string
	Pos   int
	Bases [][]byte
}

// MatrixRecord is one row of the output genotype matrix: a panel site plus
// one dosage per sample.
type MatrixRecord struct {
	ID      string // panel marker name, may be empty
	Chrom   string
	Pos     int
	Ref     byte
	Alt     byte
	Dosages []Dosage
}

// IsTransition reports whether (ref, alt) is a purine<->purine or
// pyrimidine<->pyrimidine substitution.  Only uppercase A/C/G/T pairs can be
// transitions; every other pair (including ambiguity codes) is treated as a
// transversion.
func IsTransition(ref, alt byte) bool {
	switch ref {
	case 'A':
		return alt == 'G'
	case 'G':
		return alt == 'A'
	case 'C':
		return alt == 'T'
	case 'T':
		return alt == 'C'
	}
	return false
}

// CompareKey orders genomic keys by chromosome name (opaque string compare),
// then position.  Both input streams to the merge are required to be sorted
// under this order.
func CompareKey(chrom1 string, pos1 int, chrom2 string, pos2 int) int {
	if c := strings.Compare(chrom1, chrom2); c != 0 {
		return c
	}
	switch {
	case pos1 < pos2:
		return -1
	case pos1 > pos2:
		return 1
	}
	return 0
}
