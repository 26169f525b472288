package hssp

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyue/xssp/stockholm"
)

type fakeSearcher struct {
	aln      *stockholm.Alignment
	timeouts int // fail this many calls with a timeout first
	calls    int
}

type fakeTimeout string

func (e fakeTimeout) Error() string { return string(e) }
func (e fakeTimeout) Timeout() bool { return true }

func (s *fakeSearcher) Search(query string) (*stockholm.Alignment, error) {
	s.calls++
	if s.timeouts > 0 {
		s.timeouts--
		return nil, fakeTimeout("search timed out")
	}
	return s.aln, nil
}

func testAlignment() *stockholm.Alignment {
	return makeAlignment(
		[]string{"query", "hit1/1-5"},
		"ACDEFG",
		"ACDE-G",
	)
}

func TestFromAlignmentsGolden(t *testing.T) {
	prot := &Protein{
		ID:       "TEST",
		Header:   "solved by nmr",
		Compound: "test protein",
		Source:   "synthetic",
		Author:   "J. Doe",
		Chains:   []*Chain{NewChain('A', "ACDEFG")},
	}
	p := &Pipeline{Databank: EmptyDatabank{VersionString: "unittest"}}

	var buf bytes.Buffer
	err := p.FromAlignments(prot,
		[]ChainAlignment{{ChainID: 'A', Alignment: testAlignment()}}, &buf)
	require.NoError(t, err)

	date := time.Now().Format("2006-01-02")
	want := strings.Join([]string{
		"HSSP       HOMOLOGY DERIVED SECONDARY STRUCTURE OF PROTEINS , VERSION 2.0d2 2011",
		"PDBID      TEST",
		"DATE       file generated on " + date,
		"SEQBASE    unittest",
		"THRESHOLD  according to: t(L)=(290.15 * L ** -0.562) + 5",
		"CONTACT    This version: Maarten L. Hekkelman <m.hekkelman@cmbi.ru.nl>",
		"HEADER     solved by nmr",
		"COMPND     test protein",
		"SOURCE     synthetic",
		"AUTHOR     J. Doe",
		"SEQLENGTH     6",
		"NCHAIN        1 chain(s) in TEST data set",
		"NALIGN        1",
		"",
		"## PROTEINS : identifier and alignment statistics",
		"  NR.    ID         STRID   %IDE %WSIM IFIR ILAS JFIR JLAS LALI NGAP LGAP LSEQ2 ACCNUM     PROTEIN",
		"    1 : hit1                0.83  0.83    1    6    1    5    6    1    1    0             ",
		"## ALIGNMENTS    1 -    1",
		" SeqNo  PDBNo AA STRUCTURE BP1 BP2  ACC NOCC  VAR  ....:....1....:....2....:....3....:....4....:....5....:....6....:....7",
		"     1    1 A A               0   0    0   2    0  A",
		"     2    2 A C               0   0    0   2    0  C",
		"     3    3 A D               0   0    0   2    0  D",
		"     4    4 A E               0   0    0   2    0  E",
		"     5    5 A F               0   0    0   1    0  -",
		"     6    6 A G               0   0    0   2    0  G",
		"## SEQUENCE PROFILE AND ENTROPY",
		" SeqNo PDBNo   V   L   I   M   F   W   Y   G   A   P   S   T   C   H   R   K   Q   E   N   D  NOCC NDEL NINS ENTROPY RELENT WEIGHT",
		"    1    1 A   0   0   0   0   0   0   0   0 100   0   0   0   0   0   0   0   0   0   0   0     2    0    0   0.000      0  1.00",
		"    2    2 A   0   0   0   0   0   0   0   0   0   0   0   0 100   0   0   0   0   0   0   0     2    0    0   0.000      0  1.00",
		"    3    3 A   0   0   0   0   0   0   0   0   0   0   0   0   0   0   0   0   0   0   0 100     2    0    0   0.000      0  1.00",
		"    4    4 A   0   0   0   0   0   0   0   0   0   0   0   0   0   0   0   0   0 100   0   0     2    0    0   0.000      0  1.00",
		"    5    5 A   0   0   0   0 100   0   0   0   0   0   0   0   0   0   0   0   0   0   0   0     1    1    0   0.000      0  1.00",
		"    6    6 A   0   0   0   0   0   0   0 100   0   0   0   0   0   0   0   0   0   0   0   0     2    0    0   0.000      0  1.00",
		"## INSERTION LIST",
		" AliNo  IPOS  JPOS   Len Sequence",
		"//",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestFromAlignmentsMultiChain(t *testing.T) {
	alnB := makeAlignment(
		[]string{"query", "hit2/1-4"},
		"VLIM",
		"VLIM",
	)
	prot := &Protein{
		ID: "TEST",
		Chains: []*Chain{
			NewChain('A', "ACDEFG"),
			NewChain('B', "VLIM"),
		},
	}
	p := &Pipeline{Databank: EmptyDatabank{VersionString: "unittest"}}

	var buf bytes.Buffer
	require.NoError(t, p.FromAlignments(prot, []ChainAlignment{
		{ChainID: 'A', Alignment: testAlignment()},
		{ChainID: 'B', Alignment: alnB},
	}, &buf))

	out := buf.String()
	assert.Contains(t, out, "SEQLENGTH    10\n")
	assert.Contains(t, out, "NCHAIN        2 chain(s) in TEST data set\n")

	// The chain boundary renders as a sentinel row in both residue tables.
	assert.Contains(t, out,
		"     7        !  !           0   0    0    0    0\n")
	assert.Contains(t, out,
		"    7          0   0   0   0   0   0   0   0   0   0   0   0   0   0   0   0   0   0   0   0     0    0    0   0.000      0\n")

	// Numbering continues past the break on the second chain.
	assert.Contains(t, out, "    8    1 B")
}

func TestFromAlignmentsDiscontinuousChain(t *testing.T) {
	// Residues 3-6 are numbered 5-8: the gap in the numbering renders as a
	// sentinel row in the middle of the chain.
	chain := &Chain{ID: 'A', Residues: []ChainResidue{
		{'A', 1}, {'C', 2}, {'D', 5}, {'E', 6}, {'F', 7}, {'G', 8},
	}}
	prot := &Protein{ID: "TEST", Chains: []*Chain{chain}}
	p := &Pipeline{Databank: EmptyDatabank{VersionString: "unittest"}}

	var buf bytes.Buffer
	require.NoError(t, p.FromAlignments(prot,
		[]ChainAlignment{{ChainID: 'A', Alignment: testAlignment()}}, &buf))

	out := buf.String()
	assert.Contains(t, out,
		"     3        !  !           0   0    0    0    0\n")
	assert.Contains(t, out,
		"    3          0   0   0   0   0   0   0   0   0   0   0   0   0   0   0   0   0   0   0   0     0    0    0   0.000      0\n")

	// The residue after the break keeps its own number.
	assert.Contains(t, out, "    4    5 A")
}

func TestFromSequence(t *testing.T) {
	p := &Pipeline{
		Search:   &fakeSearcher{aln: testAlignment()},
		Databank: EmptyDatabank{VersionString: "unittest"},
	}

	var buf bytes.Buffer
	require.NoError(t, p.FromSequence("ACDEFG", &buf))

	out := buf.String()
	assert.Contains(t, out, "PDBID      UNKN\n")
	assert.Contains(t, out, "NALIGN        1\n")
	assert.True(t, strings.HasSuffix(out, "//\n"))
}

func TestFromSequenceEmpty(t *testing.T) {
	p := &Pipeline{Databank: EmptyDatabank{}}
	err := p.FromSequence("", &bytes.Buffer{})
	require.Error(t, err)
	assert.IsType(t, EmptySequenceError(""), err)
}

func TestFromProtein(t *testing.T) {
	prot := &Protein{
		ID: "TEST",
		Chains: []*Chain{
			NewChain('A', "ACDEFG"),
			NewChain('B', "ACDEFG"), // duplicate of A, searched once
			NewChain('C', "AC"),     // below the length cutoff
		},
	}
	search := &fakeSearcher{aln: testAlignment()}
	p := &Pipeline{
		Search:         search,
		Databank:       EmptyDatabank{VersionString: "unittest"},
		MinChainLength: 5,
	}

	var buf bytes.Buffer
	require.NoError(t, p.FromProtein(prot, &buf))
	assert.Equal(t, 1, search.calls)

	out := buf.String()
	assert.Contains(t, out, "NCHAIN        2 chain(s) in TEST data set\n")
	assert.Contains(t, out, "KCHAIN        1 chain(s) used here ; chains(s) : A\n")
}

func TestFromProteinNoChains(t *testing.T) {
	prot := &Protein{ID: "TEST", Chains: []*Chain{NewChain('A', "AC")}}
	p := &Pipeline{MinChainLength: 25}
	err := p.FromProtein(prot, &bytes.Buffer{})
	require.Error(t, err)
}

func TestSearchRetry(t *testing.T) {
	search := &fakeSearcher{aln: testAlignment(), timeouts: 1}
	p := &Pipeline{
		Search:            search,
		Databank:          EmptyDatabank{},
		RetryAfterTimeout: true,
	}
	require.NoError(t, p.FromSequence("ACDEFG", &bytes.Buffer{}))
	assert.Equal(t, 2, search.calls)

	// Without the retry the timeout surfaces.
	search = &fakeSearcher{aln: testAlignment(), timeouts: 1}
	p.Search = search
	p.RetryAfterTimeout = false
	err := p.FromSequence("ACDEFG", &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, 1, search.calls)
}

func TestFromAlignmentsMissingChain(t *testing.T) {
	prot := &Protein{ID: "TEST", Chains: []*Chain{NewChain('A', "ACDEFG")}}
	p := &Pipeline{Databank: EmptyDatabank{}}
	err := p.FromAlignments(prot,
		[]ChainAlignment{{ChainID: 'B', Alignment: testAlignment()}},
		&bytes.Buffer{})
	require.Error(t, err)
}

func TestFromAlignmentsMismatch(t *testing.T) {
	prot := &Protein{ID: "TEST", Chains: []*Chain{NewChain('A', "ACDEYG")}}
	p := &Pipeline{Databank: EmptyDatabank{}}
	err := p.FromAlignments(prot,
		[]ChainAlignment{{ChainID: 'A', Alignment: testAlignment()}},
		&bytes.Buffer{})
	require.Error(t, err)
	assert.IsType(t, stockholm.MismatchError(""), err)
}

func TestSequenceAnnotator(t *testing.T) {
	line := SequenceAnnotator{}.StructureLine('A', ChainResidue{'M', 7})
	assert.Len(t, line, 34)
	assert.Equal(t, "    7 A M               0   0    0", line)
}

func TestUniRefPrefix(t *testing.T) {
	aln := makeAlignment(
		[]string{"query", "UniRef100_Q8NF91/1-6"},
		"ACDEFG",
		"ACDEFG",
	)
	prot := &Protein{ID: "TEST", Chains: []*Chain{NewChain('A', "ACDEFG")}}
	p := &Pipeline{Databank: EmptyDatabank{}}

	var buf bytes.Buffer
	require.NoError(t, p.FromAlignments(prot,
		[]ChainAlignment{{ChainID: 'A', Alignment: aln}}, &buf))

	assert.Contains(t, buf.String(), "    1 : Q8NF91      ")
}
