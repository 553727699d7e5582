package freqsum

import (
	"bytes"
	"testing"

	"github.com/grailbio/genocall/genotype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, []string{"samp1", "samp2"}, 1)
	require.NoError(t, err)
	require.NoError(t, w.Write(&genotype.MatrixRecord{
		Chrom: "chr1", Pos: 100, Ref: 'A', Alt: 'G',
		Dosages: []genotype.Dosage{0, 2},
	}))
	require.NoError(t, w.Write(&genotype.MatrixRecord{
		Chrom: "chr1", Pos: 200, Ref: 'C', Alt: 'T',
		Dosages: []genotype.Dosage{-1, 1},
	}))
	require.NoError(t, w.Close())

	want := "#CHROM\tPOS\tREF\tALT\tsamp1(1)\tsamp2(1)\n" +
		"chr1\t100\tA\tG\t0\t2\n" +
		"chr1\t200\tC\tT\t-1\t1\n"
	assert.Equal(t, want, buf.String())
}

func TestWriterDiploidHeader(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, []string{"s"}, 2)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Equal(t, "#CHROM\tPOS\tREF\tALT\ts(2)\n", buf.String())
}
