// Package hssp derives per-residue evolutionary profiles from multiple
// sequence alignments of a query protein against its homologs, and renders
// them as HSSP files: per-hit alignment statistics, per-residue amino acid
// distributions, conservation and entropy scores, and an insertion
// catalogue. The report layout is fixed-column and matches the legacy
// format byte for byte.
package hssp

import "github.com/TuftsBCB/seq"

// Alphabet is the canonical amino acid ordering of the profile columns.
const Alphabet = "VLIMFWYGAPSTCHRKQEND"

var aminoIndex [256]int8

func init() {
	for i := range aminoIndex {
		aminoIndex[i] = -1
	}
	for i := 0; i < len(Alphabet); i++ {
		aminoIndex[Alphabet[i]] = int8(i)
		aminoIndex[Alphabet[i]|0x20] = int8(i)
	}
}

// AminoIndex maps a residue to its position in Alphabet. Case is ignored.
// The second return value is false for anything that is not one of the 20
// canonical amino acids (gap symbols, ambiguity codes, annotations).
func AminoIndex(r seq.Residue) (int, bool) {
	ix := aminoIndex[byte(r)]
	if ix < 0 {
		return 0, false
	}
	return int(ix), true
}

// EmptySequenceError reports a zero-length query or hit sequence. It always
// indicates a contract violation by the caller and is never skipped over.
type EmptySequenceError string

func (e EmptySequenceError) Error() string { return string(e) }

// Marks is a side table of per-column annotations produced while building
// hits: the legacy format case-folds the residues flanking an insertion run
// to lower case. The alignment itself stays read-only; marked columns are
// folded on the way out instead.
type Marks map[int]map[int]bool

// NewMarks returns an empty side table.
func NewMarks() Marks { return make(Marks) }

// Set marks the residue of alignment row at column col.
func (m Marks) Set(row, col int) {
	cols, ok := m[row]
	if !ok {
		cols = make(map[int]bool)
		m[row] = cols
	}
	cols[col] = true
}

// Has reports whether the residue of alignment row at column col is marked.
func (m Marks) Has(row, col int) bool { return m[row][col] }
