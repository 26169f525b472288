// Package stockholm reads the Stockholm formatted multiple sequence
// alignments produced by iterative homology searches (e.g. jackhmmer) and
// applies the HSSP homology acceptance filter to the hits they contain.
//
// The reader is deliberately narrow: it requires the Stockholm header, a
// #=GF ID line naming the query, and then slurps up the sequence data. All
// other annotations are ignored, except #=GS lines which establish the
// order in which hits appear.
package stockholm

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/TuftsBCB/seq"
)

// Gap symbols as emitted by the various alignment tools. They are all
// equivalent.
func IsGap(r seq.Residue) bool {
	return r == '-' || r == '~' || r == '.' || r == '_'
}

// HomologyThreshold returns the minimal fraction of identical residues two
// sequences must share, over the given number of compared columns, to be
// considered homologous. Short overlaps agree by chance far more often than
// long ones, so the curve decreases with length. The table covers lengths
// 10 through 80; lengths outside that range are clamped.
func HomologyThreshold(comparedColumns int) float64 {
	ix := comparedColumns
	if ix < 10 {
		ix = 10
	} else if ix > 80 {
		ix = 80
	}
	return homologyThreshold[ix-10]
}

// Precalculated threshold curve for compared-column counts 10..80.
var homologyThreshold = [71]float64{
	0.845468, 0.80398, 0.767997, 0.736414, 0.708413, 0.683373, 0.660811,
	0.640351, 0.621688, 0.604579, 0.58882, 0.574246, 0.560718, 0.548117,
	0.536344, 0.525314, 0.514951, 0.505194, 0.495984, 0.487275, 0.479023,
	0.471189, 0.463741, 0.456647, 0.449882, 0.44342, 0.43724, 0.431323,
	0.425651, 0.420207, 0.414976, 0.409947, 0.405105, 0.40044, 0.395941,
	0.391599, 0.387406, 0.383352, 0.379431, 0.375636, 0.37196, 0.368396,
	0.364941, 0.361587, 0.358331, 0.355168, 0.352093, 0.349103, 0.346194,
	0.343362, 0.340604, 0.337917, 0.335298, 0.332744, 0.330252, 0.327821,
	0.325448, 0.323129, 0.320865, 0.318652, 0.316488, 0.314372, 0.312302,
	0.310277, 0.308294, 0.306353, 0.304452, 0.302589, 0.300764, 0.298975,
	0.297221,
}

// The query id may carry a jackhmmer iteration suffix like "-i2".
var iterSuffix = regexp.MustCompile(`^(.+?)-i\d+$`)

type counted struct {
	identical int // columns where the query residue is a non-gap and equal
	compared  int // columns where either residue is a non-gap
}

// Read parses a single Stockholm alignment from r. The first returned
// sequence is always the query named by the #=GF ID line. Hits failing the
// homology threshold are removed from the alignment; their ids are returned
// as the second value.
func Read(r io.Reader) (*Alignment, []string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !scanner.Scan() || scanner.Text() != "# STOCKHOLM 1.0" {
		return nil, nil, FormatError("Not a Stockholm file.")
	}
	if !scanner.Scan() || !strings.HasPrefix(scanner.Text(), "#=GF ID ") {
		return nil, nil, FormatError(
			"Not a valid Stockholm file, missing #=GF ID line.")
	}
	id := scanner.Text()[len("#=GF ID "):]
	if m := iterSuffix.FindStringSubmatch(id); m != nil {
		id = m[1]
	}

	entries := []seq.Sequence{{Name: id}}
	counts := []counted{{}}
	var qseg string
	ix := 0

MAIN:
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			continue
		case line == "//":
			break MAIN
		case strings.HasPrefix(line, "#=GS "):
			// #=GS lines pre-register the hits in order of appearance.
			gs := line[5:]
			if s := strings.Index(gs, "DE "); s >= 0 {
				gs = gs[:s]
			}
			gs = strings.TrimSpace(gs)
			if len(entries) > 1 || entries[0].Name != gs {
				entries = append(entries, seq.Sequence{Name: gs})
				counts = append(counts, counted{})
			}
		case line[0] == '#':
			continue
		default:
			s := strings.IndexByte(line, ' ')
			if s < 0 {
				return nil, nil, FormatError("Invalid Stockholm file.")
			}
			name := line[:s]
			residues := strings.TrimLeft(line[s:], " ")

			if name == entries[0].Name {
				ix = 0
				entries[0].Residues = appendResidues(
					entries[0].Residues, residues)
				qseg = residues
				continue
			}
			ix++
			if ix >= len(entries) {
				entries = append(entries, seq.Sequence{Name: name})
				counts = append(counts, counted{})
			}
			if entries[ix].Name != name {
				return nil, nil, FormatError(
					"Sequence '" + name + "' appears out of order.")
			}
			entries[ix].Residues = appendResidues(
				entries[ix].Residues, residues)

			// Accumulate the homology counters against the query segment
			// of this block.
			n := len(qseg)
			if len(residues) < n {
				n = len(residues)
			}
			for k := 0; k < n; k++ {
				q, h := seq.Residue(qseg[k]), seq.Residue(residues[k])
				if !IsGap(q) && q == h {
					counts[ix].identical++
				}
				if !IsGap(q) || !IsGap(h) {
					counts[ix].compared++
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	if len(entries) < 2 {
		return nil, nil, FormatError(
			"Insufficient sequences in Stockholm alignment.")
	}
	for i := 1; i < len(entries); i++ {
		if len(entries[i].Residues) != len(entries[0].Residues) {
			return nil, nil, FormatError(
				"Sequence '" + entries[i].Name + "' does not span the " +
					"full alignment.")
		}
	}

	// Apply the homology filter: hits whose identity over the compared
	// region falls below the length-dependent threshold are not homologs.
	kept := entries[:1]
	var dropped []string
	for i := 1; i < len(entries); i++ {
		score := float64(counts[i].identical) / float64(counts[i].compared)
		if score < HomologyThreshold(counts[i].compared) {
			dropped = append(dropped, entries[i].Name)
			continue
		}
		kept = append(kept, entries[i])
	}
	return &Alignment{Entries: kept}, dropped, nil
}

func appendResidues(rs []seq.Residue, s string) []seq.Residue {
	for i := 0; i < len(s); i++ {
		rs = append(rs, seq.Residue(s[i]))
	}
	return rs
}
