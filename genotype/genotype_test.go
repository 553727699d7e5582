package genotype_test

import (
	"testing"

	"github.com/grailbio/genocall/genotype"
	"github.com/grailbio/testutil/expect"
)

func TestIsTransition(t *testing.T) {
	transitions := [][2]byte{{'A', 'G'}, {'G', 'A'}, {'C', 'T'}, {'T', 'C'}}
	for _, p := range transitions {
		expect.True(t, genotype.IsTransition(p[0], p[1]))
	}
	transversions := [][2]byte{
		{'A', 'C'}, {'A', 'T'}, {'C', 'A'}, {'C', 'G'},
		{'G', 'C'}, {'G', 'T'}, {'T', 'A'}, {'T', 'G'},
		{'A', 'A'}, {'N', 'G'}, {'A', 'N'}, {'a', 'g'}, {'X', '-'},
	}
	for _, p := range transversions {
		expect.False(t, genotype.IsTransition(p[0], p[1]))
	}
}

func TestDosage(t *testing.T) {
	expect.EQ(t, genotype.Missing.Dosage(), genotype.DosageMissing)
	expect.EQ(t, genotype.HomRef.Dosage(), genotype.Dosage(0))
	expect.EQ(t, genotype.Het.Dosage(), genotype.Dosage(1))
	expect.EQ(t, genotype.HomAlt.Dosage(), genotype.Dosage(2))
}

func TestCompareKey(t *testing.T) {
	expect.EQ(t, genotype.CompareKey("chr1", 100, "chr1", 100), 0)
	expect.EQ(t, genotype.CompareKey("chr1", 100, "chr1", 200), -1)
	expect.EQ(t, genotype.CompareKey("chr1", 200, "chr1", 100), 1)
	expect.EQ(t, genotype.CompareKey("chr1", 900, "chr2", 100), -1)
	// Opaque string order, not genome order.
	expect.EQ(t, genotype.CompareKey("chr10", 1, "chr2", 1), -1)
}
