package eigenstrat

import (
	"bufio"
	"context"
	"io"
	"strconv"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/genocall/genotype"
	"github.com/klauspost/compress/gzip"
)

// genoDigits is the Dosage+1 -> .geno character mapping ('9' = missing).
var genoDigits = [...]byte{'9', '0', '1', '2'}

// WriterOpts configures an eigenstrat Writer.
type WriterOpts struct {
	// Population is the population label written to every .ind line.
	// Defaults to "Unknown".
	Population string
	// Gzip appends ".gz" to the three file names and compresses each file.
	Gzip bool
}

// Writer renders genotype-matrix records as the EIGENSTRAT trio
// prefix.geno, prefix.snp and prefix.ind.  The .ind file is written in
// full at construction time; .geno and .snp grow one line per record.
type Writer struct {
	ctx   context.Context
	files []file.File
	gzws  []*gzip.Writer

	genoW   *bufio.Writer
	snpW    *tsv.Writer
	genoBuf []byte
}

// NewWriter creates the three output files and writes the .ind body.
func NewWriter(ctx context.Context, prefix string, samples []string, opts WriterOpts) (w *Writer, err error) {
	if opts.Population == "" {
		opts.Population = "Unknown"
	}
	w = &Writer{ctx: ctx}
	defer func() {
		if err != nil {
			_ = w.Close()
			w = nil
		}
	}()

	var genoOut, snpOut, indOut io.Writer
	if genoOut, err = w.create(prefix+".geno", opts.Gzip); err != nil {
		return
	}
	if snpOut, err = w.create(prefix+".snp", opts.Gzip); err != nil {
		return
	}
	if indOut, err = w.create(prefix+".ind", opts.Gzip); err != nil {
		return
	}
	w.genoW = bufio.NewWriter(genoOut)
	w.snpW = tsv.NewWriter(snpOut)

	indTSV := tsv.NewWriter(indOut)
	for _, name := range samples {
		indTSV.WriteString(name)
		indTSV.WriteByte('U') // sex unknown
		indTSV.WriteString(opts.Population)
		if err = indTSV.EndLine(); err != nil {
			return
		}
	}
	err = indTSV.Flush()
	return
}

func (w *Writer) create(path string, gz bool) (out io.Writer, err error) {
	if gz {
		path = path + ".gz"
	}
	var f file.File
	if f, err = file.Create(w.ctx, path); err != nil {
		return
	}
	w.files = append(w.files, f)
	out = f.Writer(w.ctx)
	if gz {
		gzw := gzip.NewWriter(out)
		w.gzws = append(w.gzws, gzw)
		out = gzw
	}
	return
}

// Write appends one record to the .geno and .snp files.  A record with an
// empty site ID gets a synthesized "<chrom>_<pos>" marker name.
func (w *Writer) Write(rec *genotype.MatrixRecord) (err error) {
	w.genoBuf = w.genoBuf[:0]
	for _, d := range rec.Dosages {
		w.genoBuf = append(w.genoBuf, genoDigits[d+1])
	}
	w.genoBuf = append(w.genoBuf, '\n')
	if _, err = w.genoW.Write(w.genoBuf); err != nil {
		return
	}

	id := rec.ID
	if id == "" {
		id = rec.Chrom + "_" + strconv.Itoa(rec.Pos)
	}
	w.snpW.WriteString(id)
	w.snpW.WriteString(rec.Chrom)
	w.snpW.WriteString("0") // genetic position unknown
	w.snpW.WriteUint32(uint32(rec.Pos))
	w.snpW.WriteByte(rec.Ref)
	w.snpW.WriteByte(rec.Alt)
	return w.snpW.EndLine()
}

// Close flushes and closes all three files, reporting the first error.
func (w *Writer) Close() (err error) {
	if w.genoW != nil {
		if e := w.genoW.Flush(); e != nil && err == nil {
			err = e
		}
	}
	if w.snpW != nil {
		if e := w.snpW.Flush(); e != nil && err == nil {
			err = e
		}
	}
	for _, gzw := range w.gzws {
		if e := gzw.Close(); e != nil && err == nil {
			err = e
		}
	}
	for _, f := range w.files {
		if e := f.Close(w.ctx); e != nil && err == nil {
			err = e
		}
	}
	return
}
