// Package mpileup reads samtools-mpileup text into per-site, per-sample
// base observations.
package mpileup

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/genocall/genotype"
	"github.com/pkg/errors"
)

var (
	// ErrColumns is returned when a line does not have the CHROM/POS/REF
	// prefix plus one DEPTH/BASES/QUALS triple per sample.
	ErrColumns = errors.New("wrong mpileup column count")
	// ErrBases is returned when a base column cannot be decoded or disagrees
	// with its declared depth.
	ErrBases = errors.New("malformed mpileup base column")
)

// maxLineBytes bounds a single pileup line; very deep sites can exceed
// bufio's default 64KiB token limit.
const maxLineBytes = 16 * 1024 * 1024

// Scanner reads mpileup lines and yields one Pile per line.  The sample
// count is either imposed by the caller (nonzero nSamples) or inferred
// from the first line; every subsequent line must agree.  Scanners are not
// threadsafe.
type Scanner struct {
	b        *bufio.Scanner
	nSamples int
	lineNo   int

	pending genotype.Pile
	peeked  bool
	err     error
	done    bool
}

// NewScanner returns a Scanner reading from r.  nSamples fixes the
// expected number of per-sample column triples; pass 0 to infer it from
// the first line.
func NewScanner(r io.Reader, nSamples int) *Scanner {
	b := bufio.NewScanner(r)
	b.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Scanner{b: b, nSamples: nSamples}
}

// NSamples returns the number of samples per line, reading (and buffering)
// the first line if the count has not been fixed yet.  Returns 0 when the
// input is empty and no count was imposed.
func (s *Scanner) NSamples() (int, error) {
	if (s.nSamples == 0) && !s.peeked && !s.done {
		s.peeked = s.scanLine(&s.pending)
	}
	return s.nSamples, s.err
}

// Scan reads the next pile into pile, reusing its per-sample buffers.
// Once Scan returns false it never returns true again; check Err().
func (s *Scanner) Scan(pile *genotype.Pile) bool {
	if s.peeked {
		s.peeked = false
		*pile = s.pending
		return true
	}
	return s.scanLine(pile)
}

func (s *Scanner) scanLine(pile *genotype.Pile) bool {
	if s.err != nil || s.done {
		return false
	}
	if !s.b.Scan() {
		s.done = true
		s.err = s.b.Err()
		return false
	}
	s.lineNo++
	line := s.b.Text()
	fields := strings.Split(line, "\t")
	if len(fields) < 6 || (len(fields)-3)%3 != 0 {
		s.err = errors.Wrapf(ErrColumns, "line %d: %d columns", s.lineNo, len(fields))
		return false
	}
	n := (len(fields) - 3) / 3
	if s.nSamples == 0 {
		s.nSamples = n
	} else if n != s.nSamples {
		s.err = errors.Wrapf(ErrColumns, "line %d: %d sample columns, expected %d", s.lineNo, n, s.nSamples)
		return false
	}

	pile.Chrom = fields[0]
	pos, err := strconv.Atoi(fields[1])
	if err != nil {
		s.err = errors.Wrapf(err, "mpileup: line %d: bad position %q", s.lineNo, fields[1])
		return false
	}
	pile.Pos = pos
	if len(fields[2]) != 1 {
		s.err = errors.Wrapf(ErrBases, "line %d: bad reference base %q", s.lineNo, fields[2])
		return false
	}
	ref := upperBase(fields[2][0])

	if cap(pile.Bases) < n {
		pile.Bases = make([][]byte, n)
	} else {
		pile.Bases = pile.Bases[:n]
	}
	for i := 0; i < n; i++ {
		depthField := fields[3+3*i]
		baseField := fields[4+3*i]
		depth, err := strconv.Atoi(depthField)
		if err != nil {
			s.err = errors.Wrapf(err, "mpileup: line %d sample %d: bad depth %q", s.lineNo, i+1, depthField)
			return false
		}
		if depth == 0 {
			// samtools emits "0 * *" for uncovered samples.
			pile.Bases[i] = pile.Bases[i][:0]
			continue
		}
		bases, err := decodeBases(pile.Bases[i][:0], baseField, ref)
		if err != nil {
			s.err = errors.Wrapf(err, "mpileup: line %d sample %d", s.lineNo, i+1)
			return false
		}
		if len(bases) != depth {
			s.err = errors.Wrapf(ErrBases, "line %d sample %d: decoded %d bases, declared depth %d",
				s.lineNo, i+1, len(bases), depth)
			return false
		}
		pile.Bases[i] = bases
	}
	return true
}

// Err returns the scanning error, if any.
func (s *Scanner) Err() error {
	return s.err
}

// decodeBases strips mpileup read-structure markup from one base column and
// appends the observed bases to dst, uppercased.  '.'/',' become the
// reference base; deletion placeholders and reference skips become 'N' so
// the result still lines up with the declared depth.
func decodeBases(dst []byte, field string, ref byte) ([]byte, error) {
	for i := 0; i < len(field); {
		switch c := field[i]; c {
		case '^':
			// Read start; the next char is a mapping quality, not a base.
			if i+1 >= len(field) {
				return nil, errors.Wrap(ErrBases, "truncated read-start marker")
			}
			i += 2
		case '$':
			i++
		case '+', '-':
			i++
			n := 0
			start := i
			for i < len(field) && field[i] >= '0' && field[i] <= '9' {
				n = n*10 + int(field[i]-'0')
				i++
			}
			if i == start {
				return nil, errors.Wrap(ErrBases, "indel marker without length")
			}
			if i+n > len(field) {
				return nil, errors.Wrap(ErrBases, "truncated indel sequence")
			}
			i += n
		case '.', ',':
			dst = append(dst, ref)
			i++
		case '*', '<', '>':
			dst = append(dst, 'N')
			i++
		default:
			dst = append(dst, upperBase(c))
			i++
		}
	}
	return dst, nil
}

func upperBase(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
