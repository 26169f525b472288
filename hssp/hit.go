package hssp

import (
	"regexp"
	"strconv"

	"github.com/BurntSushi/cablastp/blosum"
	"github.com/TuftsBCB/seq"

	"github.com/nyue/xssp/stockholm"
)

// An Insertion is a run of residues present in a hit but absent from the
// query. Residues holds the aligned residue preceding the run, the run
// itself, and the aligned residue closing it; the two anchors are folded to
// lower case, following the legacy convention. QueryPos and HitPos are the
// legacy bookkeeping coordinates as reported in the insertion list.
type Insertion struct {
	QueryPos int
	HitPos   int
	Residues string
}

// A Hit describes one aligned sequence's relationship to the query. All
// counters follow the HSSP conventions: IFir/ILas are the first and last
// query residues covered, JFir/JLas the hit's own source range, LAli the
// number of aligned columns, NGap the number of gap runs and LGap the total
// gapped columns. Ide and WSim are Identical and Similar as fractions of
// LAli.
type Hit struct {
	ID          string
	Accession   string
	Description string
	StrID       string
	ChainID     byte
	Row         int // row in the source alignment
	Rank        int // assigned after sorting, 1-based

	IFir, ILas int
	JFir, JLas int
	LAli, NGap int
	LGap       int
	LSeq2      int

	Identical, Similar int
	Ide, WSim          float64

	Insertions []Insertion

	aln                *stockholm.Alignment
	marks              Marks
	coreStart, coreEnd int // columns outside this range are unaligned flank
}

// Hit ids carry the source range of the aligned region, e.g. "Q8NF91/10-80".
var hitID = regexp.MustCompile(`^([-a-zA-Z0-9_]+)/(\d+)-(\d+)$`)

var blosumIndex [256]int

func init() {
	for i := range blosumIndex {
		blosumIndex[i] = -1
	}
	for i := 0; i < len(blosum.Alphabet62); i++ {
		blosumIndex[blosum.Alphabet62[i]] = i
	}
}

// similar reports whether two residues score positively under BLOSUM62.
func similar(a, b seq.Residue) bool {
	i := blosumIndex[upper(byte(a))]
	j := blosumIndex[upper(byte(b))]
	if i < 0 || j < 0 {
		return false
	}
	return blosum.Matrix62[i][j] > 0
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c &^ 0x20
	}
	return c
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c | 0x20
	}
	return c
}

// NewHit derives the hit statistics for alignment row six against the query
// row qix. The search tools never gap the query's edges, so a gapped edge is
// rejected as malformed input. Insertion-marker case folds are written to
// marks rather than to the alignment.
func NewHit(aln *stockholm.Alignment, marks Marks, chainID byte, qix, six int) (*Hit, error) {
	q := aln.Entries[qix].Residues
	s := aln.Entries[six].Residues

	if len(q) == 0 || len(s) == 0 {
		return nil, EmptySequenceError("Invalid (empty) sequence.")
	}
	if stockholm.IsGap(q[0]) || stockholm.IsGap(q[len(q)-1]) {
		return nil, stockholm.FormatError(
			"Leading (or trailing) gaps found in query sequence.")
	}

	m := hitID.FindStringSubmatch(aln.Entries[six].Name)
	if m == nil {
		return nil, stockholm.FormatError(
			"Alignment ID should contain position.")
	}

	h := &Hit{
		ID:      m[1],
		ChainID: chainID,
		Row:     six,
		IFir:    1,
		aln:     aln,
		marks:   marks,
	}
	h.JFir, _ = strconv.Atoi(m[2])
	h.JLas, _ = strconv.Atoi(m[3])

	// Columns where the hit is gapped at the very start or end of the
	// alignment are unaligned flank, not real gaps.
	b, e := 0, len(s)
	for b < e && stockholm.IsGap(s[b]) {
		h.IFir++
		h.ILas++
		b++
	}
	for e > b && stockholm.IsGap(s[e-1]) {
		e--
	}
	h.coreStart, h.coreEnd = b, e
	h.LAli = len(s)

	sgap, qgap := false, false
	ipos, jpos := h.IFir, h.JFir
	var ins Insertion

	for k := b; k < e; k++ {
		qr, sr := q[k], s[k]
		switch {
		case stockholm.IsGap(sr) && stockholm.IsGap(qr):
			// a common gap
			h.LAli--
		case stockholm.IsGap(sr):
			if !sgap && !qgap {
				h.NGap++
			}
			sgap = true
			h.ILas++
			h.LGap++
			jpos++
		case stockholm.IsGap(qr):
			if !qgap {
				if k > b {
					// Anchor the run at the preceding aligned residue.
					g := k - 1
					for g > b && stockholm.IsGap(s[g]) {
						g--
					}
					marks.Set(six, g)
					ins = Insertion{QueryPos: ipos, HitPos: jpos - 1}
					ins.Residues = string(lower(byte(s[g]))) + string(byte(sr))
				} else {
					ins = Insertion{QueryPos: ipos, HitPos: jpos - 1}
					ins.Residues = string(byte(sr))
				}
			} else {
				ins.Residues += string(byte(sr))
			}
			if !sgap && !qgap {
				h.NGap++
			}
			qgap = true
			h.LGap++
			ipos++
		default:
			if qgap {
				marks.Set(six, k)
				ins.Residues += string(lower(byte(sr)))
				h.Insertions = append(h.Insertions, ins)
			}
			sgap, qgap = false, false

			if qr == sr {
				h.Identical++
				h.Similar++
			} else if similar(qr, sr) {
				h.Similar++
			}
			h.ILas++
			ipos++
			jpos++
		}
	}

	h.Ide = float64(h.Identical) / float64(h.LAli)
	h.WSim = float64(h.Similar) / float64(h.LAli)
	return h, nil
}

// alignedChar is the character this hit contributes to an alignment block
// row at the given column: a space outside the aligned core, otherwise the
// hit's residue, case-folded where an insertion mark was recorded.
func (h *Hit) alignedChar(col int) byte {
	if col < h.coreStart || col >= h.coreEnd {
		return ' '
	}
	c := byte(h.aln.Entries[h.Row].Residues[col])
	if h.marks.Has(h.Row, col) {
		c = lower(c)
	}
	return c
}

// less orders hits by descending identity, ties broken by descending
// alignment length.
func (h *Hit) less(other *Hit) bool {
	return h.Ide > other.Ide || (h.Ide == other.Ide && h.LAli > other.LAli)
}
