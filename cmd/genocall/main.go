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
package main

/*
genocall converts a samtools-mpileup stream into per-site genotype calls
for a panel of samples, restricted to the positions of a SNP panel, and
renders the result as freqsum or EIGENSTRAT output.
*/

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/genocall/genotype/call"
)

var (
	snpPath        = flag.String("snp", call.DefaultOpts.SnpPath, "Input EIGENSTRAT .snp panel path; required")
	sampleNames    = flag.String("sample-names", call.DefaultOpts.SampleNames, "Comma-separated sample names matching the pileup's sample columns; this xor -sample-name-file, or names are synthesized")
	sampleNameFile = flag.String("sample-name-file", call.DefaultOpts.SampleNameFile, "File with one sample name per line; alternative to -sample-names")
	mode           = flag.String("mode", call.DefaultOpts.Mode, "Calling mode; 'random-haploid', 'random-diploid', and 'majority' supported")
	downsample     = flag.Bool("downsample", call.DefaultOpts.Downsample, "In majority mode, downsample each site to -min-depth reads before counting")
	minDepth       = flag.Int("min-depth", call.DefaultOpts.MinDepth, "Sites with fewer raw reads for a sample are called missing for that sample")
	seed           = flag.String("seed", call.DefaultOpts.Seed, "Random seed (int64) for reproducible sampling; default seeds from the clock")
	transitions    = flag.String("transitions", call.DefaultOpts.Transitions, "Transition-site policy; 'all', 'skip', and 'missing' supported")
	format         = flag.String("format", call.DefaultOpts.Format, "Output format; 'freqsum', 'freqsum-bgz', 'eigenstrat', and 'eigenstrat-gz' supported")
	outPath        = flag.String("out", call.DefaultOpts.OutPath, "Output path (freqsum; default stdout) or output prefix (eigenstrat; required)")
	population     = flag.String("population", call.DefaultOpts.Population, "Population label written to the eigenstrat .ind file")
)

func genocallUsage() {
	fmt.Printf("Usage: %s [OPTIONS] pileuppath\n", os.Args[0])
	fmt.Printf("Use '-' as pileuppath to read samtools mpileup output from stdin.\n")
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = genocallUsage
	shutdown := grail.Init()
	defer shutdown()

	allArgs := flag.Args()
	nPositionalArgs := flag.NArg()
	positionalArgs := allArgs[len(allArgs)-nPositionalArgs:]
	if nPositionalArgs != 1 {
		if nPositionalArgs < 1 {
			log.Fatalf("Missing positional argument (pileuppath required); please check flag syntax")
		} else {
			log.Fatalf("Too many positional arguments (only pileuppath expected); please check flag syntax: '%s'", strings.Join(positionalArgs, " "))
		}
	}
	ctx := vcontext.Background()
	opts := call.Opts{
		SnpPath:        *snpPath,
		SampleNames:    *sampleNames,
		SampleNameFile: *sampleNameFile,
		Mode:           *mode,
		Downsample:     *downsample,
		MinDepth:       *minDepth,
		Seed:           *seed,
		Transitions:    *transitions,
		Format:         *format,
		OutPath:        *outPath,
		Population:     *population,
	}
	if err := call.Call(ctx, positionalArgs[0], &opts); err != nil {
		log.Fatalf("%v", err)
	}
	log.Debug.Printf("exiting")
}
