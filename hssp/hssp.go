package hssp

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/nyue/xssp/stockholm"
)

// At most this many hits are numbered and reported.
const maxHits = 9999

// A ChainResidue is one residue of a protein chain: its one-letter code and
// its (possibly discontinuous) residue number.
type ChainResidue struct {
	Letter byte
	Number int
}

// A Chain is a named sequence of residues.
type Chain struct {
	ID       byte
	Residues []ChainResidue
}

// Sequence returns the chain's residues as a plain string.
func (c *Chain) Sequence() string {
	var b strings.Builder
	for _, r := range c.Residues {
		b.WriteByte(r.Letter)
	}
	return b.String()
}

// NewChain builds a chain from a raw sequence, numbering residues from 1.
func NewChain(id byte, sequence string) *Chain {
	c := &Chain{ID: id}
	for i := 0; i < len(sequence); i++ {
		c.Residues = append(c.Residues,
			ChainResidue{Letter: sequence[i], Number: i + 1})
	}
	return c
}

// A Protein is a set of chains plus the free-text header fields carried
// into the report.
type Protein struct {
	ID       string
	Header   string
	Compound string
	Source   string
	Author   string
	Chains   []*Chain
}

// Chain returns the chain with the given identifier, or nil.
func (p *Protein) Chain(id byte) *Chain {
	for _, c := range p.Chains {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (p *Protein) description() string {
	var b strings.Builder
	fmt.Fprintf(&b, "HEADER     %s\n", p.Header)
	fmt.Fprintf(&b, "COMPND     %s\n", p.Compound)
	fmt.Fprintf(&b, "SOURCE     %s\n", p.Source)
	fmt.Fprintf(&b, "AUTHOR     %s\n", p.Author)
	return b.String()
}

// A Searcher runs an external homology search for one query sequence and
// returns the parsed, homology-filtered alignment. Implementations must not
// return partial results: a timed-out or failed search yields only an
// error.
type Searcher interface {
	Search(querySequence string) (*stockholm.Alignment, error)
}

// Metadata describes one databank sequence.
type Metadata struct {
	Title          string
	Accession      string // may be empty; rendered blank
	SequenceLength int
}

// A Databank resolves hit identifiers to their metadata and names the
// database version the report was generated against.
type Databank interface {
	Version() string
	Metadata(id string) (Metadata, error)
}

// EmptyDatabank is a Databank that knows nothing. Hits keep their bare ids
// and empty descriptions.
type EmptyDatabank struct {
	VersionString string
}

func (d EmptyDatabank) Version() string { return d.VersionString }

func (d EmptyDatabank) Metadata(id string) (Metadata, error) {
	return Metadata{}, nil
}

// A StructureAnnotator yields the fixed-width structural annotation spliced
// verbatim into alignment block rows. The pipeline treats the string as
// opaque; it must be exactly 34 characters wide.
type StructureAnnotator interface {
	StructureLine(chainID byte, res ChainResidue) string
}

// SequenceAnnotator annotates residues of sequence-only chains, for which
// no structure exists: number, chain and amino acid with zeroed structure
// fields.
type SequenceAnnotator struct{}

func (SequenceAnnotator) StructureLine(chainID byte, res ChainResidue) string {
	return fmt.Sprintf("%5d %c %c               0   0    0",
		res.Number, chainID, res.Letter)
}

// A Pipeline wires the collaborators needed to turn protein chains into an
// HSSP report. Chains are processed strictly in order; a chain's alignment
// is fully parsed before its hits and profiles are built.
type Pipeline struct {
	Search   Searcher
	Databank Databank

	// Annotate supplies the per-residue structural annotation;
	// SequenceAnnotator is used when nil.
	Annotate StructureAnnotator

	// Chains shorter than this are skipped entirely.
	MinChainLength int

	// RetryAfterTimeout reruns a timed-out search once before giving up.
	RetryAfterTimeout bool
}

func (p *Pipeline) annotator() StructureAnnotator {
	if p.Annotate == nil {
		return SequenceAnnotator{}
	}
	return p.Annotate
}

func (p *Pipeline) search(query string) (*stockholm.Alignment, error) {
	aln, err := p.Search.Search(query)
	if err != nil && p.RetryAfterTimeout && isTimeout(err) {
		aln, err = p.Search.Search(query)
	}
	return aln, err
}

func isTimeout(err error) bool {
	t, ok := err.(interface{ Timeout() bool })
	return ok && t.Timeout()
}

// FromSequence generates the report for a single raw sequence: a synthetic
// chain A numbered from 1, one external search, no structural annotation.
func (p *Pipeline) FromSequence(query string, w io.Writer) error {
	if len(query) == 0 {
		return EmptySequenceError("Empty query sequence.")
	}

	aln, err := p.search(query)
	if err != nil {
		return err
	}

	chain := NewChain('A', query)
	var hits []*Hit
	var res []*ResidueProfile
	if err := p.chainToHits(aln, chain, &hits, &res); err != nil {
		return err
	}
	hits = rankHits(hits)

	rep := &Report{
		ProteinID:       "UNKN",
		DatabankVersion: p.Databank.Version(),
		Date:            time.Now(),
		SeqLength:       len(query),
		NChain:          1,
		KChain:          1,
		UsedChains:      "A",
		Hits:            hits,
		Residues:        res,
	}
	return rep.Write(w)
}

// FromProtein generates the report for a multi-chain protein. Chains below
// MinChainLength are skipped; chains whose sequence is fully contained in
// another chain's sequence share that chain's alignment; one external
// search runs per remaining unique sequence.
func (p *Pipeline) FromProtein(prot *Protein, w io.Writer) error {
	var chains []*Chain
	var seqs []string
	for _, c := range prot.Chains {
		s := c.Sequence()
		if len(s) < p.MinChainLength {
			continue
		}
		chains = append(chains, c)
		seqs = append(seqs, s)
	}
	if len(chains) == 0 {
		return fmt.Errorf(
			"No chains of length %d or more in %s.",
			p.MinChainLength, prot.ID)
	}

	ix := Cluster(seqs)
	unique := uniqueIndices(ix)

	var hits []*Hit
	var res []*ResidueProfile
	var seqLength int
	var used []string

	for _, i := range unique {
		aln, err := p.search(seqs[i])
		if err != nil {
			return err
		}
		seqLength += len(seqs[i])
		if len(res) > 0 {
			res = append(res, ChainBreak(len(res)+1))
		}
		if err := p.chainToHits(aln, chains[i], &hits, &res); err != nil {
			return err
		}
		used = append(used, string(rune(chains[i].ID)))
	}
	hits = rankHits(hits)

	rep := &Report{
		ProteinID:       prot.ID,
		Description:     prot.description(),
		DatabankVersion: p.Databank.Version(),
		Date:            time.Now(),
		SeqLength:       seqLength,
		NChain:          len(chains),
		KChain:          len(unique),
		UsedChains:      strings.Join(used, ","),
		Hits:            hits,
		Residues:        res,
	}
	return rep.Write(w)
}

// A ChainAlignment pairs a chain identifier with a precomputed alignment
// for that chain's sequence.
type ChainAlignment struct {
	ChainID   byte
	Alignment *stockholm.Alignment
}

// FromAlignments generates the report from precomputed alignments, one per
// chain. Each alignment is first fitted to its chain: a query a few
// residues longer than the chain is trimmed down, anything else fails.
func (p *Pipeline) FromAlignments(prot *Protein, alns []ChainAlignment, w io.Writer) error {
	var hits []*Hit
	var res []*ResidueProfile
	var seqLength int
	var used []string

	for _, ca := range alns {
		chain := prot.Chain(ca.ChainID)
		if chain == nil {
			return fmt.Errorf("Protein %s has no chain '%c'.",
				prot.ID, ca.ChainID)
		}
		if err := ca.Alignment.FitChain(chain.Sequence()); err != nil {
			return err
		}
		seqLength += len(chain.Residues)
		if len(res) > 0 {
			res = append(res, ChainBreak(len(res)+1))
		}
		if err := p.chainToHits(ca.Alignment, chain, &hits, &res); err != nil {
			return err
		}
		used = append(used, string(rune(chain.ID)))
	}
	hits = rankHits(hits)

	rep := &Report{
		ProteinID:       prot.ID,
		Description:     prot.description(),
		DatabankVersion: p.Databank.Version(),
		Date:            time.Now(),
		SeqLength:       seqLength,
		NChain:          len(prot.Chains),
		KChain:          len(alns),
		UsedChains:      strings.Join(used, ","),
		Hits:            hits,
		Residues:        res,
	}
	return rep.Write(w)
}

// chainToHits converts one chain's alignment into hits and residue
// profiles, appending to the accumulated report slices.
func (p *Pipeline) chainToHits(aln *stockholm.Alignment, chain *Chain,
	hits *[]*Hit, res *[]*ResidueProfile) error {

	marks := NewMarks()
	var chainHits []*Hit
	for i := 1; i < len(aln.Entries); i++ {
		h, err := NewHit(aln, marks, chain.ID, 0, i)
		if err != nil {
			return err
		}

		if strings.HasPrefix(h.ID, "UniRef100_") {
			h.ID = h.ID[len("UniRef100_"):]
			h.Accession = h.ID
			meta, err := p.Databank.Metadata("UniRef100_" + h.ID)
			if err != nil {
				return err
			}
			h.Description = meta.Title
			h.LSeq2 = meta.SequenceLength
		} else {
			meta, err := p.Databank.Metadata(h.ID)
			if err != nil {
				return err
			}
			h.Description = meta.Title
			h.Accession = meta.Accession
			h.LSeq2 = meta.SequenceLength
		}
		chainHits = append(chainHits, h)
	}

	wm := NewWeightMatrix(aln)
	ann := p.annotator()

	q := aln.Entries[0].Residues
	ri := 0
	for i := 0; i < len(q); i++ {
		if stockholm.IsGap(q[i]) {
			continue
		}
		if ri >= len(chain.Residues) {
			return stockholm.MismatchError(
				"Alignment query is longer than the chain.")
		}
		cur := chain.Residues[ri]
		if ri > 0 && cur.Number > chain.Residues[ri-1].Number+1 {
			*res = append(*res, ChainBreak(len(*res)+1))
		}
		*res = append(*res, NewResidueProfile(byte(q[i]), chainHits, i,
			chain.ID, len(*res)+1, cur.Number,
			ann.StructureLine(chain.ID, cur),
			Conservation(aln, i, wm)))
		ri++
	}
	if ri != len(chain.Residues) {
		return stockholm.MismatchError(
			"Alignment query is shorter than the chain.")
	}

	*hits = append(*hits, chainHits...)
	return nil
}

// rankHits sorts by descending identity (ties by descending alignment
// length, stable beyond that), caps the list and assigns ranks.
func rankHits(hits []*Hit) []*Hit {
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].less(hits[j])
	})
	if len(hits) > maxHits {
		hits = hits[:maxHits]
	}
	for i, h := range hits {
		h.Rank = i + 1
	}
	return hits
}
