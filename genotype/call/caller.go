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

// Mode selects the per-sample calling algorithm.
type Mode int

const (
	// RandomHaploid calls a pseudo-haploid genotype from one read drawn
	// uniformly at random.
	RandomHaploid Mode = iota
	// RandomDiploid calls a diploid genotype from two reads drawn uniformly
	// without replacement.  This is the only mode that can produce Het.
	RandomDiploid
	// Majority calls the allele supported by a strict majority of reads,
	// breaking exact ties at random.
	Majority
)

// ParseMode parses a mode string given on the command line.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "random-haploid":
		return RandomHaploid, nil
	case "random-diploid":
		return RandomDiploid, nil
	case "majority":
		return Majority, nil
	}
	return 0, fmt.Errorf("call.ParseMode: unrecognized mode %q", s)
}

// Caller turns one sample's read bases at one site into a genotype.
//
// The minimum-depth gate is applied to the raw read count, before bases
// matching neither panel allele are excluded; depth thresholds measure raw
// coverage, not allele-informative coverage.  All random draws come from
// the single Rand passed to NewCaller.
type Caller struct {
	mode       Mode
	minDepth   int
	downsample bool
	rnd        Rand

	poolBuf []byte // allele-matching bases, reused across calls
	drawBuf []byte // downsampled bases, reused across calls
	idxBuf  []int  // Fisher-Yates scratch, reused across calls
}

// NewCaller returns a Caller.  downsample only affects Majority mode.
func NewCaller(mode Mode, minDepth int, downsample bool, rnd Rand) *Caller {
	return &Caller{
		mode:       mode,
		minDepth:   minDepth,
		downsample: downsample,
		rnd:        rnd,
	}
}

// Ploidy returns the number of allele copies the mode reports per call.
func (c *Caller) Ploidy() int {
	if c.mode == RandomDiploid {
		return 2
	}
	return 1
}

// matchingPool fills poolBuf with the bases equal to either panel allele.
func (c *Caller) matchingPool(bases []byte, ref, alt byte) []byte {
	c.poolBuf = c.poolBuf[:0]
	for _, b := range bases {
		if (b == ref) || (b == alt) {
			c.poolBuf = append(c.poolBuf, b)
		}
	}
	return c.poolBuf
}

// sampleInto draws k bases uniformly without replacement from pool into
// dst, using a partial Fisher-Yates shuffle over an index scratch slice.
func (c *Caller) sampleInto(dst []byte, pool []byte, k int) []byte {
	c.idxBuf = c.idxBuf[:0]
	for i := range pool {
		c.idxBuf = append(c.idxBuf, i)
	}
	dst = dst[:0]
	for i := 0; i < k; i++ {
		j := i + c.rnd.Intn(len(pool)-i)
		c.idxBuf[i], c.idxBuf[j] = c.idxBuf[j], c.idxBuf[i]
		dst = append(dst, pool[c.idxBuf[i]])
	}
	return dst
}

// Call computes the genotype of one sample at one site.  Depth
// insufficiency and pool exhaustion are normal outcomes reported as
// Missing, never as errors.
func (c *Caller) Call(bases []byte, ref, alt byte) genotype.Genotype {
	depth := len(bases)
	switch c.mode {
	case RandomHaploid:
		if depth < c.minDepth {
			return genotype.Missing
		}
		pool := c.matchingPool(bases, ref, alt)
		if len(pool) == 0 {
			return genotype.Missing
		}
		if pool[c.rnd.Intn(len(pool))] == alt {
			return genotype.HomAlt
		}
		return genotype.HomRef
	case RandomDiploid:
		// Two reads are structurally required, whatever minDepth says.
		if (depth < 2) || (depth < c.minDepth) {
			return genotype.Missing
		}
		pool := c.matchingPool(bases, ref, alt)
		if len(pool) < 2 {
			return genotype.Missing
		}
		c.drawBuf = c.sampleInto(c.drawBuf, pool, 2)
		nAlt := 0
		if c.drawBuf[0] == alt {
			nAlt++
		}
		if c.drawBuf[1] == alt {
			nAlt++
		}
		switch nAlt {
		case 0:
			return genotype.HomRef
		case 2:
			return genotype.HomAlt
		}
		return genotype.Het
	case Majority:
		if depth < c.minDepth {
			return genotype.Missing
		}
		if c.downsample && (depth > c.minDepth) {
			// Draw exactly minDepth reads from the full (unfiltered) pool to
			// curb coverage-driven bias, then count on the reduced pool.
			c.drawBuf = c.sampleInto(c.drawBuf, bases, c.minDepth)
			bases = c.drawBuf
		}
		nRef := 0
		nAlt := 0
		for _, b := range bases {
			if b == ref {
				nRef++
			} else if b == alt {
				nAlt++
			}
		}
		if (nRef == 0) && (nAlt == 0) {
			return genotype.Missing
		}
		if nRef == nAlt {
			if c.rnd.Intn(2) == 0 {
				return genotype.HomRef
			}
			return genotype.HomAlt
		}
		if nAlt > nRef {
			return genotype.HomAlt
		}
		return genotype.HomRef
	}
	return genotype.Missing
}
