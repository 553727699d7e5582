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

// SiteSource yields panel sites sorted by (chrom, pos).  The Scan/Err
// contract matches bufio.Scanner: once Scan returns false it never returns
// true again, and Err() reports whether the stream ended cleanly.
type SiteSource interface {
	Scan(site *genotype.PanelSite) bool
	Err() error
}

// PileSource yields piles sorted by (chrom, pos).
type PileSource interface {
	Scan(pile *genotype.Pile) bool
	Err() error
}

// JoinedRow pairs a panel site with the pile covering it, if any.
type JoinedRow struct {
	Site genotype.PanelSite
	// Pile is nil when no pile matches the site's position.  When non-nil it
	// is only valid until the next call to Merger.Scan.
	Pile *genotype.Pile
}

// Merger is the sorted merge-join of a panel stream and a pile stream.  It
// emits one JoinedRow per panel site, in panel order, and terminates when
// the panel is exhausted; any pile tail is discarded unread.
//
// Piles at positions absent from the panel are consumed and dropped; this
// includes piles whose key sorts below the panel cursor, so a pile stream
// that starts "early" is tolerated rather than rejected.  A pile whose key
// repeats the previous pile's key is dropped too (first record wins).  A
// key that sorts below its stream's previous key is an ordering violation
// and aborts the merge through Err().
//
// The merge buffers exactly one pending pile; memory is O(1) in stream
// length.
type Merger struct {
	sites SiteSource
	piles PileSource

	pile        genotype.Pile
	pilePending bool
	pilesDone   bool

	siteSeen  bool
	prevSite  genotype.PanelSite
	pileSeen  bool
	prevChrom string
	prevPos   int

	err error
}

// NewMerger returns a Merger joining sites and piles.
func NewMerger(sites SiteSource, piles PileSource) *Merger {
	return &Merger{sites: sites, piles: piles}
}

// nextPile advances the pile stream to the next usable record, dropping
// duplicate-key records and detecting ordering violations.
func (m *Merger) nextPile() bool {
	for !m.pilesDone && !m.pilePending {
		if !m.piles.Scan(&m.pile) {
			m.pilesDone = true
			if e := m.piles.Err(); e != nil {
				m.err = e
			}
			break
		}
		if m.pileSeen {
			cmp := genotype.CompareKey(m.pile.Chrom, m.pile.Pos, m.prevChrom, m.prevPos)
			if cmp < 0 {
				m.err = fmt.Errorf("call.Merger: pileup out of order: %s:%d after %s:%d",
					m.pile.Chrom, m.pile.Pos, m.prevChrom, m.prevPos)
				return false
			}
			if cmp == 0 {
				// Duplicate position; keep the first record only.
				continue
			}
		}
		m.pileSeen = true
		m.prevChrom = m.pile.Chrom
		m.prevPos = m.pile.Pos
		m.pilePending = true
	}
	return m.err == nil
}

// Scan produces the next joined row.  It returns false at panel exhaustion
// or on the first error; check Err() afterwards.
func (m *Merger) Scan(row *JoinedRow) bool {
	if m.err != nil {
		return false
	}
	var site genotype.PanelSite
	if !m.sites.Scan(&site) {
		m.err = m.sites.Err()
		return false
	}
	if m.siteSeen && genotype.CompareKey(site.Chrom, site.Pos, m.prevSite.Chrom, m.prevSite.Pos) < 0 {
		m.err = fmt.Errorf("call.Merger: panel out of order: %s:%d after %s:%d",
			site.Chrom, site.Pos, m.prevSite.Chrom, m.prevSite.Pos)
		return false
	}
	m.siteSeen = true
	m.prevSite = site

	// Discard piles sorting below the panel cursor.
	for {
		if !m.nextPile() {
			return false
		}
		if !m.pilePending || genotype.CompareKey(m.pile.Chrom, m.pile.Pos, site.Chrom, site.Pos) >= 0 {
			break
		}
		m.pilePending = false
	}

	row.Site = site
	row.Pile = nil
	if m.pilePending && genotype.CompareKey(m.pile.Chrom, m.pile.Pos, site.Chrom, site.Pos) == 0 {
		row.Pile = &m.pile
		m.pilePending = false
	}
	return true
}

// Err returns the first error encountered by the merge or either input
// stream, or nil on clean panel exhaustion.
func (m *Merger) Err() error {
	return m.err
}
