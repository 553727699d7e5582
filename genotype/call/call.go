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
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/genocall/encoding/eigenstrat"
	"github.com/grailbio/genocall/encoding/freqsum"
	"github.com/grailbio/genocall/encoding/mpileup"
	"github.com/grailbio/genocall/genotype"
	"github.com/grailbio/hts/bgzf"
)

// Problem:
// Given a sorted SNP panel and a sorted samtools-mpileup stream covering a
// set of samples, we want one genotype call per sample per panel position.
//
// Implementation strategy:
// Both inputs are sorted by (chromosome, position), so a classic merge-join
// pairs each panel site with its pile (or with nothing) while holding at
// most one pending record from each stream.  Per-sample calling is a pure
// function of the pile's base multiset plus a shared sequential random
// source, so the whole run is a single pull-driven pass: merge, call and
// encode, filter, render.  Memory stays O(sample count).

type Opts struct {
	// Commandline options.
	SnpPath        string
	SampleNames    string
	SampleNameFile string
	Mode           string
	Downsample     bool
	MinDepth       int
	Seed           string
	Transitions    string
	Format         string
	OutPath        string
	Population     string
}

var DefaultOpts = Opts{
	Mode:        "random-haploid",
	MinDepth:    1,
	Transitions: "all",
	Format:      "freqsum",
	Population:  "Unknown",
}

// resolveSampleNames returns the per-sample names for the run.  Explicit
// names fix the expected pileup column count; without them the count is
// inferred from the pileup's first line and names are synthesized.
func resolveSampleNames(ctx context.Context, opts *Opts) (names []string, err error) {
	if (opts.SampleNames != "") && (opts.SampleNameFile != "") {
		return nil, fmt.Errorf("call.Call: -sample-names and -sample-name-file can't be used together")
	}
	if opts.SampleNames != "" {
		return strings.Split(opts.SampleNames, ","), nil
	}
	if opts.SampleNameFile == "" {
		return nil, nil
	}
	var f file.File
	if f, err = file.Open(ctx, opts.SampleNameFile); err != nil {
		return
	}
	defer file.CloseAndReport(ctx, f, &err)
	scanner := bufio.NewScanner(f.Reader(ctx))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 0 {
			names = append(names, fields[0])
		}
	}
	if err = scanner.Err(); err != nil {
		return
	}
	if len(names) == 0 {
		err = fmt.Errorf("call.Call: no sample names in %s", opts.SampleNameFile)
	}
	return
}

// recordWriter is the output side of the run; both renderers implement it.
type recordWriter interface {
	Write(rec *genotype.MatrixRecord) error
	Close() error
}

// Call runs the whole pipeline: panel + pileup in, one rendered
// genotype-matrix out.  pileupPath may be "-" (or empty) for stdin.
// Fatal errors abort immediately; partially-written output is left behind.
func Call(ctx context.Context, pileupPath string, opts *Opts) (err error) {
	mode, err := ParseMode(opts.Mode)
	if err != nil {
		return
	}
	filterMode, err := ParseFilterMode(opts.Transitions)
	if err != nil {
		return
	}
	if opts.MinDepth < 0 {
		return fmt.Errorf("call.Call: -min-depth must be >= 0")
	}
	if opts.SnpPath == "" {
		return fmt.Errorf("call.Call: -snp is required")
	}
	rnd, err := NewRand(opts.Seed)
	if err != nil {
		return
	}
	names, err := resolveSampleNames(ctx, opts)
	if err != nil {
		return
	}

	// Panel input, with transparent decompression.
	var snpFile file.File
	if snpFile, err = file.Open(ctx, opts.SnpPath); err != nil {
		return
	}
	defer file.CloseAndReport(ctx, snpFile, &err)
	snpReader, _ := compress.NewReader(snpFile.Reader(ctx))
	defer func() {
		if e := snpReader.Close(); e != nil && err == nil {
			err = e
		}
	}()
	sites := eigenstrat.NewSnpScanner(snpReader)

	// Pileup input.
	var pileReader io.Reader = os.Stdin
	if (pileupPath != "") && (pileupPath != "-") {
		var pileFile file.File
		if pileFile, err = file.Open(ctx, pileupPath); err != nil {
			return
		}
		defer file.CloseAndReport(ctx, pileFile, &err)
		var rc io.ReadCloser
		rc, _ = compress.NewReader(pileFile.Reader(ctx))
		defer func() {
			if e := rc.Close(); e != nil && err == nil {
				err = e
			}
		}()
		pileReader = rc
	}
	piles := mpileup.NewScanner(pileReader, len(names))
	if len(names) == 0 {
		var n int
		if n, err = piles.NSamples(); err != nil {
			return
		}
		if n == 0 {
			return fmt.Errorf("call.Call: empty pileup and no -sample-names; can't determine sample count")
		}
		for i := 1; i <= n; i++ {
			names = append(names, "sample"+strconv.Itoa(i))
		}
	}

	caller := NewCaller(mode, opts.MinDepth, opts.Downsample, rnd)
	src := RecordSource(NewFilter(
		NewAssembler(NewMerger(sites, piles), caller, len(names)),
		filterMode,
	))

	var w recordWriter
	var finish func() error
	switch opts.Format {
	case "freqsum", "freqsum-bgz":
		w, finish, err = newFreqsumWriter(ctx, opts, names, caller.Ploidy())
	case "eigenstrat", "eigenstrat-gz":
		if opts.OutPath == "" {
			err = fmt.Errorf("call.Call: eigenstrat output requires -out prefix")
		} else {
			w, err = eigenstrat.NewWriter(ctx, opts.OutPath, names, eigenstrat.WriterOpts{
				Population: opts.Population,
				Gzip:       opts.Format == "eigenstrat-gz",
			})
		}
	default:
		err = fmt.Errorf("call.Call: unrecognized format %q", opts.Format)
	}
	if err != nil {
		return
	}

	nSites := 0
	var rec genotype.MatrixRecord
	for src.Scan(&rec) {
		if err = w.Write(&rec); err != nil {
			return
		}
		nSites++
	}
	if err = src.Err(); err != nil {
		return
	}
	if err = w.Close(); err != nil {
		return
	}
	if finish != nil {
		if err = finish(); err != nil {
			return
		}
	}
	log.Printf("call.Call: %d sites written (%d samples, mode %s)", nSites, len(names), opts.Mode)
	return
}

// newFreqsumWriter opens the freqsum destination (a file, or stdout when no
// -out path is given) and wraps it in a bgzf writer for the bgz variant.
// finish closes the compression layer after the last row is flushed.
func newFreqsumWriter(ctx context.Context, opts *Opts, names []string, ploidy int) (w recordWriter, finish func() error, err error) {
	var out io.Writer = os.Stdout
	var closers []func() error
	if opts.OutPath != "" {
		path := opts.OutPath
		if (opts.Format == "freqsum-bgz") && !strings.HasSuffix(path, ".gz") {
			path = path + ".gz"
		}
		var f file.File
		if f, err = file.Create(ctx, path); err != nil {
			return
		}
		closers = append(closers, func() error { return f.Close(ctx) })
		out = f.Writer(ctx)
	}
	if opts.Format == "freqsum-bgz" {
		bgzfWriter := bgzf.NewWriter(out, 1)
		closers = append(closers, bgzfWriter.Close)
		out = bgzfWriter
	}
	if w, err = freqsum.NewWriter(out, names, ploidy); err != nil {
		return
	}
	finish = func() error {
		// Innermost layer first: bgzf before the file.
		for i := len(closers) - 1; i >= 0; i-- {
			if e := closers[i](); e != nil {
				return e
			}
		}
		return nil
	}
	return
}
