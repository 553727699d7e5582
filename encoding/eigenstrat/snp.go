// Package eigenstrat reads EIGENSTRAT SNP panels and writes the
// three-file (.geno/.snp/.ind) genotype format.
package eigenstrat

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/genocall/genotype"
	"github.com/pkg/errors"
)

// ErrSnpFormat is returned when a panel line does not have the six
// whitespace-separated EIGENSTRAT columns (ID, chrom, genetic position,
// physical position, ref, alt).
var ErrSnpFormat = errors.New("malformed .snp line")

// SnpScanner reads a .snp panel file, one PanelSite per line.  The panel
// is expected to be sorted by (chrom, pos); sortedness is enforced
// downstream by the merge, not here.
type SnpScanner struct {
	b      *bufio.Scanner
	lineNo int
	err    error
}

// NewSnpScanner returns a SnpScanner reading from r.
func NewSnpScanner(r io.Reader) *SnpScanner {
	return &SnpScanner{b: bufio.NewScanner(r)}
}

// Scan reads the next panel site.  Blank lines are skipped.
func (s *SnpScanner) Scan(site *genotype.PanelSite) bool {
	if s.err != nil {
		return false
	}
	for s.b.Scan() {
		s.lineNo++
		line := strings.TrimSpace(s.b.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 6 {
			s.err = errors.Wrapf(ErrSnpFormat, "line %d: %d columns", s.lineNo, len(fields))
			return false
		}
		pos, err := strconv.Atoi(fields[3])
		if err != nil {
			s.err = errors.Wrapf(err, "eigenstrat: line %d: bad position %q", s.lineNo, fields[3])
			return false
		}
		if len(fields[4]) != 1 || len(fields[5]) != 1 {
			s.err = errors.Wrapf(ErrSnpFormat, "line %d: alleles %q/%q are not single bases",
				s.lineNo, fields[4], fields[5])
			return false
		}
		site.ID = fields[0]
		site.Chrom = fields[1]
		site.Pos = pos
		site.Ref = fields[4][0]
		site.Alt = fields[5][0]
		return true
	}
	s.err = s.b.Err()
	return false
}

// Err returns the scanning error, if any.
func (s *SnpScanner) Err() error {
	return s.err
}
