// Package freqsum writes the row-oriented genotype-matrix text format:
// one header line naming samples and their ploidy, then one line per site
// with chromosome, position, alleles and a dosage token per sample (-1
// marks missing).
package freqsum

import (
	"io"
	"strconv"

	"github.com/grailbio/base/tsv"
	"github.com/grailbio/genocall/genotype"
)

// Writer renders genotype-matrix records as freqsum text.
type Writer struct {
	w *tsv.Writer
}

// NewWriter returns a Writer and emits the header line.  ploidy is the
// allele-copy count of the calling mode (2 for random-diploid, else 1) and
// is annotated on every sample name.
func NewWriter(out io.Writer, samples []string, ploidy int) (w *Writer, err error) {
	w = &Writer{w: tsv.NewWriter(out)}
	w.w.WriteString("#CHROM\tPOS\tREF\tALT")
	for _, name := range samples {
		w.w.WriteString(name + "(" + strconv.Itoa(ploidy) + ")")
	}
	if err = w.w.EndLine(); err != nil {
		return nil, err
	}
	return w, nil
}

// Write appends one site row.
func (w *Writer) Write(rec *genotype.MatrixRecord) error {
	w.w.WriteString(rec.Chrom)
	w.w.WriteUint32(uint32(rec.Pos))
	w.w.WriteByte(rec.Ref)
	w.w.WriteByte(rec.Alt)
	for _, d := range rec.Dosages {
		if d == genotype.DosageMissing {
			w.w.WriteString("-1")
		} else {
			w.w.WriteByte('0' + byte(d))
		}
	}
	return w.w.EndLine()
}

// Close flushes buffered rows.  The underlying io.Writer is owned by the
// caller and left open.
func (w *Writer) Close() error {
	return w.w.Flush()
}
