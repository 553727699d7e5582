package mpileup

import (
	"strings"
	"testing"

	"github.com/grailbio/genocall/genotype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBases(t *testing.T) {
	tests := []struct {
		name  string
		field string
		ref   byte
		want  string
	}{
		{name: "ref_matches", field: "..,,", ref: 'A', want: "AAAA"},
		{name: "explicit_bases", field: "ACGTacgt", ref: 'A', want: "ACGTACGT"},
		{name: "read_start", field: "^I.A", ref: 'C', want: "CA"},
		{name: "read_end", field: ".$,$", ref: 'G', want: "GG"},
		{name: "insertion", field: ".+2AGt", ref: 'C', want: "CT"},
		{name: "deletion_marker", field: ".-3acg,", ref: 'C', want: "CC"},
		{name: "deleted_base", field: "*.", ref: 'A', want: "NA"},
		{name: "ref_skip", field: "><", ref: 'A', want: "NN"},
		{name: "start_with_caret_qual_dot", field: "^].", ref: 'T', want: "T"},
		{name: "big_indel", field: ".+12AAAAAAAAAAAA.", ref: 'G', want: "GG"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeBases(nil, tt.field, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestDecodeBasesErrors(t *testing.T) {
	for _, field := range []string{"^", ".+", ".+2A", ".-abc"} {
		_, err := decodeBases(nil, field, 'A')
		assert.Error(t, err, "field %q", field)
	}
}

func TestScanner(t *testing.T) {
	const in = "chr1\t100\tA\t3\t..G\tIII\t0\t*\t*\n" +
		"chr1\t200\tc\t2\t,^I.\tII\t4\tT.t,\tIIII\n"
	s := NewScanner(strings.NewReader(in), 0)
	var pile genotype.Pile

	require.True(t, s.Scan(&pile))
	assert.Equal(t, "chr1", pile.Chrom)
	assert.Equal(t, 100, pile.Pos)
	require.Len(t, pile.Bases, 2)
	assert.Equal(t, "AAG", string(pile.Bases[0]))
	assert.Empty(t, pile.Bases[1])

	require.True(t, s.Scan(&pile))
	assert.Equal(t, 200, pile.Pos)
	assert.Equal(t, "CC", string(pile.Bases[0]))
	assert.Equal(t, "TCTC", string(pile.Bases[1]))

	assert.False(t, s.Scan(&pile))
	assert.NoError(t, s.Err())
}

func TestScannerNSamples(t *testing.T) {
	const in = "chr1\t100\tA\t1\t.\tI\t2\t..\tII\t0\t*\t*\n" +
		"chr1\t150\tG\t1\t.\tI\t1\t,\tI\t1\tC\tI\n"
	s := NewScanner(strings.NewReader(in), 0)
	n, err := s.NSamples()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// The peeked line is not lost.
	var pile genotype.Pile
	require.True(t, s.Scan(&pile))
	assert.Equal(t, 100, pile.Pos)
	require.True(t, s.Scan(&pile))
	assert.Equal(t, 150, pile.Pos)
	assert.False(t, s.Scan(&pile))
	assert.NoError(t, s.Err())
}

func TestScannerEmptyInput(t *testing.T) {
	s := NewScanner(strings.NewReader(""), 0)
	n, err := s.NSamples()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	var pile genotype.Pile
	assert.False(t, s.Scan(&pile))
	assert.NoError(t, s.Err())
}

func TestScannerErrors(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		nSamples int
	}{
		{name: "too_few_columns", in: "chr1\t100\tA\t3\t..G\n"},
		{name: "ragged_triples", in: "chr1\t100\tA\t3\t..G\tIII\t2\t..\n"},
		{name: "bad_pos", in: "chr1\tx\tA\t1\t.\tI\n"},
		{name: "bad_depth", in: "chr1\t100\tA\ty\t.\tI\n"},
		{name: "depth_mismatch", in: "chr1\t100\tA\t3\t..\tII\n"},
		{name: "imposed_count_mismatch", in: "chr1\t100\tA\t1\t.\tI\n", nSamples: 2},
		{
			name: "count_change_mid_stream",
			in:   "chr1\t100\tA\t1\t.\tI\n" + "chr1\t200\tA\t1\t.\tI\t1\t.\tI\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScanner(strings.NewReader(tt.in), tt.nSamples)
			var pile genotype.Pile
			for s.Scan(&pile) {
			}
			assert.Error(t, s.Err())
		})
	}
}
