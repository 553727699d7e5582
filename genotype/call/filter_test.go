package call_test

import (
	"testing"

	"github.com/grailbio/genocall/genotype"
	"github.com/grailbio/genocall/genotype/call"
	"github.com/grailbio/testutil/assert"
)

// sliceRecords is a RecordSource over a fixed record slice.
type sliceRecords struct {
	recs []genotype.MatrixRecord
	i    int
}

func (s *sliceRecords) Scan(dst *genotype.MatrixRecord) bool {
	if s.i >= len(s.recs) {
		return false
	}
	rec := s.recs[s.i]
	s.i++
	dst.ID = rec.ID
	dst.Chrom = rec.Chrom
	dst.Pos = rec.Pos
	dst.Ref = rec.Ref
	dst.Alt = rec.Alt
	dst.Dosages = append(dst.Dosages[:0], rec.Dosages...)
	return true
}

func (s *sliceRecords) Err() error { return nil }

func testRecords() []genotype.MatrixRecord {
	return []genotype.MatrixRecord{
		{Chrom: "chr1", Pos: 100, Ref: 'A', Alt: 'G', Dosages: []genotype.Dosage{0, 2}},  // transition
		{Chrom: "chr1", Pos: 200, Ref: 'A', Alt: 'C', Dosages: []genotype.Dosage{2, 2}},  // transversion
		{Chrom: "chr1", Pos: 300, Ref: 'C', Alt: 'T', Dosages: []genotype.Dosage{1, -1}}, // transition
	}
}

func collect(f call.RecordSource) (recs []genotype.MatrixRecord) {
	var rec genotype.MatrixRecord
	for f.Scan(&rec) {
		cp := rec
		cp.Dosages = append([]genotype.Dosage(nil), rec.Dosages...)
		recs = append(recs, cp)
		rec.Dosages = nil
	}
	return
}

func TestFilterAllSites(t *testing.T) {
	f := call.NewFilter(&sliceRecords{recs: testRecords()}, call.AllSites)
	got := collect(f)
	assert.NoError(t, f.Err())
	assert.EQ(t, got, testRecords())
}

func TestFilterSkipTransitions(t *testing.T) {
	f := call.NewFilter(&sliceRecords{recs: testRecords()}, call.SkipTransitions)
	got := collect(f)
	assert.NoError(t, f.Err())
	assert.EQ(t, len(got), 1)
	assert.EQ(t, got[0].Pos, 200)
}

func TestFilterTransitionsMissing(t *testing.T) {
	f := call.NewFilter(&sliceRecords{recs: testRecords()}, call.TransitionsMissing)
	got := collect(f)
	assert.NoError(t, f.Err())
	assert.EQ(t, len(got), 3)
	assert.EQ(t, got[0].Dosages, []genotype.Dosage{-1, -1})
	assert.EQ(t, got[1].Dosages, []genotype.Dosage{2, 2})
	assert.EQ(t, got[2].Dosages, []genotype.Dosage{-1, -1})
	// Position and allele fields pass through untouched.
	assert.EQ(t, got[0].Pos, 100)
	assert.EQ(t, got[0].Ref, byte('A'))
	assert.EQ(t, got[0].Alt, byte('G'))
}

// SkipTransitions then AllSites must equal SkipTransitions alone.
func TestFilterIdempotence(t *testing.T) {
	inner := call.NewFilter(&sliceRecords{recs: testRecords()}, call.SkipTransitions)
	outer := call.NewFilter(inner, call.AllSites)
	got := collect(outer)
	assert.NoError(t, outer.Err())

	f := call.NewFilter(&sliceRecords{recs: testRecords()}, call.SkipTransitions)
	want := collect(f)
	assert.EQ(t, got, want)
}
