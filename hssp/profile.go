package hssp

import (
	"math"

	"github.com/TuftsBCB/seq"

	"github.com/nyue/xssp/stockholm"
)

// A ResidueProfile carries the evolutionary statistics of one query
// residue: the amino acid distribution over the query and all hits covering
// the column (as rounded percentages), its Shannon entropy, deletion and
// insertion counts, and the Dayhoff conservation weight. A profile with
// Letter 0 is a chain-break sentinel carrying only its sequence number.
type ResidueProfile struct {
	Letter     byte
	ChainID    byte
	Annotation string // opaque fixed-width structural annotation
	SeqNo      int
	PDBNo      int
	Pos        int // alignment column
	NOcc       int
	NDel       int
	NIns       int
	Entropy    float64
	ConsWeight float64
	Dist       [20]int
}

// ChainBreak returns the sentinel profile separating discontinuous chains.
func ChainBreak(seqNo int) *ResidueProfile {
	return &ResidueProfile{SeqNo: seqNo}
}

// RelEntropy is the entropy as a percentage of the maximum ln(20),
// truncated the way the legacy writer did.
func (r *ResidueProfile) RelEntropy() int {
	return int(100 * r.Entropy / math.Log(20))
}

// Variability is the inverse conservation percentage shown in the
// alignment blocks.
func (r *ResidueProfile) Variability() int {
	return int(100 * (1 - r.ConsWeight))
}

// NewResidueProfile computes the profile of the query residue at alignment
// column pos from every hit of its chain. Residues that are not canonical
// amino acids are excluded from the distribution and from NOcc entirely.
// Insertions are counted only when the next query column is itself a gap;
// the previous column is deliberately not consulted (legacy behavior).
func NewResidueProfile(a byte, hits []*Hit, pos int, chainID byte,
	seqNo, pdbNo int, annotation string, consWeight float64) *ResidueProfile {

	r := &ResidueProfile{
		Letter:     a,
		ChainID:    chainID,
		Annotation: annotation,
		SeqNo:      seqNo,
		PDBNo:      pdbNo,
		Pos:        pos,
		NOcc:       1,
		ConsWeight: consWeight,
	}

	if ix, ok := AminoIndex(seq.Residue(a)); ok {
		r.Dist[ix] = 1
	}
	for _, h := range hits {
		if ix, ok := AminoIndex(h.aln.Entries[h.Row].Residues[pos]); ok {
			r.NOcc++
			r.Dist[ix]++
		}
	}

	for i := 0; i < 20; i++ {
		freq := float64(r.Dist[i]) / float64(r.NOcc)
		r.Dist[i] = int(100*freq + 0.5)
		if freq > 0 {
			r.Entropy -= freq * math.Log(freq)
		}
	}

	if len(hits) == 0 {
		return r
	}
	aln := hits[0].aln
	q := aln.Entries[0].Residues
	gapNext := pos+1 < len(q) && stockholm.IsGap(q[pos+1])

	for _, h := range hits {
		if pos < h.coreStart || pos >= h.coreEnd {
			continue
		}
		t := h.aln.Entries[h.Row].Residues[pos]
		if stockholm.IsGap(t) {
			r.NDel++
		}
		c := byte(t)
		if h.marks.Has(h.Row, pos) {
			c = lower(c)
		}
		if gapNext && c >= 'a' && c <= 'y' {
			r.NIns++
		}
	}
	return r
}
