package call_test

import (
	"github.com/grailbio/genocall/genotype"
)

// sliceSites yields panel sites from a slice, with an optional error
// reported after exhaustion.
type sliceSites struct {
	sites []genotype.PanelSite
	i     int
	err   error
}

func (s *sliceSites) Scan(dst *genotype.PanelSite) bool {
	if s.i >= len(s.sites) {
		return false
	}
	*dst = s.sites[s.i]
	s.i++
	return true
}

func (s *sliceSites) Err() error { return s.err }

// slicePiles yields piles from a slice, with an optional error reported
// after exhaustion.
type slicePiles struct {
	piles []genotype.Pile
	i     int
	err   error
}

func (s *slicePiles) Scan(dst *genotype.Pile) bool {
	if s.i >= len(s.piles) {
		return false
	}
	*dst = s.piles[s.i]
	s.i++
	return true
}

func (s *slicePiles) Err() error { return s.err }

// seqRand replays a fixed draw sequence; out-of-range values are clamped
// and an exhausted sequence keeps returning 0.
type seqRand struct {
	seq   []int
	i     int
	calls int
}

func (r *seqRand) Intn(n int) int {
	r.calls++
	v := 0
	if r.i < len(r.seq) {
		v = r.seq[r.i]
		r.i++
	}
	if v >= n {
		v = n - 1
	}
	return v
}

func site(chrom string, pos int, ref, alt byte) genotype.PanelSite {
	return genotype.PanelSite{Chrom: chrom, Pos: pos, Ref: ref, Alt: alt}
}

func pile(chrom string, pos int, perSample ...string) genotype.Pile {
	p := genotype.Pile{Chrom: chrom, Pos: pos}
	for _, s := range perSample {
		p.Bases = append(p.Bases, []byte(s))
	}
	return p
}
