package hssp

import (
	"bufio"
	"fmt"
	"io"
	"time"
)

// A Report is everything the writer needs to render one protein's HSSP
// file: the sorted, ranked hits, the full residue profile list (chain-break
// sentinels included) and the header bookkeeping.
type Report struct {
	ProteinID       string
	Description     string // preformatted header lines, each ending in \n
	DatabankVersion string
	Date            time.Time
	SeqLength       int
	NChain          int
	KChain          int
	UsedChains      string
	Hits            []*Hit
	Residues        []*ResidueProfile
}

// Hits per alignment block.
const blockSize = 70

// Write renders the report. The layout is fixed-column and is consumed by
// tools that parse it by byte offset; do not touch the format strings
// without a reference file to diff against.
func (r *Report) Write(w io.Writer) error {
	buf := bufio.NewWriter(w)
	var err error
	pf := func(format string, v ...interface{}) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(buf, format, v...)
	}

	r.writeHeader(pf)
	r.writeHitList(pf)
	r.writeAlignments(pf)
	r.writeProfiles(pf)
	r.writeInsertions(pf)
	pf("//\n")

	if err != nil {
		return err
	}
	return buf.Flush()
}

func (r *Report) writeHeader(pf func(string, ...interface{})) {
	pf("HSSP       HOMOLOGY DERIVED SECONDARY STRUCTURE OF PROTEINS , VERSION 2.0d2 2011\n")
	pf("PDBID      %s\n", r.ProteinID)
	pf("DATE       file generated on %s\n", r.Date.Format("2006-01-02"))
	pf("SEQBASE    %s\n", r.DatabankVersion)
	pf("THRESHOLD  according to: t(L)=(290.15 * L ** -0.562) + 5\n")
	pf("CONTACT    This version: Maarten L. Hekkelman <m.hekkelman@cmbi.ru.nl>\n")
	pf("%s", r.Description)
	pf("SEQLENGTH  %4d\n", r.SeqLength)
	pf("NCHAIN     %4d chain(s) in %s data set\n", r.NChain, r.ProteinID)
	if r.KChain != r.NChain {
		pf("KCHAIN     %4d chain(s) used here ; chains(s) : %s\n",
			r.KChain, r.UsedChains)
	}
	pf("NALIGN     %4d\n", len(r.Hits))
	pf("\n")
}

func (r *Report) writeHitList(pf func(string, ...interface{})) {
	pf("## PROTEINS : identifier and alignment statistics\n")
	pf("  NR.    ID         STRID   %%IDE %%WSIM IFIR ILAS JFIR JLAS LALI NGAP LGAP LSEQ2 ACCNUM     PROTEIN\n")

	for _, h := range r.Hits {
		pf("%5d : %12.12s%4.4s    %4.2f  %4.2f %4d %4d %4d %4d %4d %4d %4d %4d  %10.10s %s\n",
			h.Rank, padTrunc(h.ID, 12), h.StrID,
			h.Ide, h.WSim, h.IFir, h.ILas, h.JFir, h.JLas, h.LAli,
			h.NGap, h.LGap, h.LSeq2,
			padTrunc(h.Accession, 10), h.Description)
	}
}

func (r *Report) writeAlignments(pf func(string, ...interface{})) {
	for i := 0; i < len(r.Hits); i += blockSize {
		n := i + blockSize
		if n > len(r.Hits) {
			n = len(r.Hits)
		}

		var k [7]int
		for d := range k {
			k[d] = ((i+d*10)/10)%10 + 1
		}

		pf("## ALIGNMENTS %4d - %4d\n", i+1, n)
		pf(" SeqNo  PDBNo AA STRUCTURE BP1 BP2  ACC NOCC  VAR  ....:....%1d....:....%1d....:....%1d....:....%1d....:....%1d....:....%1d....:....%1d\n",
			k[0], k[1], k[2], k[3], k[4], k[5], k[6])

		for _, res := range r.Residues {
			if res.Letter == 0 {
				pf(" %5d        !  !           0   0    0    0    0\n",
					res.SeqNo)
				continue
			}

			aln := make([]byte, 0, n-i)
			for j := i; j < n; j++ {
				if r.Hits[j].ChainID == res.ChainID {
					aln = append(aln, r.Hits[j].alignedChar(res.Pos))
				} else {
					aln = append(aln, ' ')
				}
			}
			pf(" %5d%s%4d %4d  %s\n",
				res.SeqNo, res.Annotation, res.NOcc, res.Variability(),
				aln)
		}
	}
}

func (r *Report) writeProfiles(pf func(string, ...interface{})) {
	pf("## SEQUENCE PROFILE AND ENTROPY\n")
	pf(" SeqNo PDBNo   V   L   I   M   F   W   Y   G   A   P   S   T   C   H   R   K   Q   E   N   D  NOCC NDEL NINS ENTROPY RELENT WEIGHT\n")

	for _, res := range r.Residues {
		if res.Letter == 0 {
			pf("%5d          0   0   0   0   0   0   0   0   0   0   0   0   0   0   0   0   0   0   0   0     0    0    0   0.000      0\n",
				res.SeqNo)
			continue
		}

		pf(" %4d %4d %c", res.SeqNo, res.PDBNo, res.ChainID)
		for i := 0; i < 20; i++ {
			pf("%4d", res.Dist[i])
		}
		pf("  %4d %4d %4d   %5.3f   %4d  %4.2f\n",
			res.NOcc, res.NDel, res.NIns, res.Entropy,
			res.RelEntropy(), res.ConsWeight)
	}
}

func (r *Report) writeInsertions(pf func(string, ...interface{})) {
	pf("## INSERTION LIST\n")
	pf(" AliNo  IPOS  JPOS   Len Sequence\n")

	for _, h := range r.Hits {
		for _, ins := range h.Insertions {
			s := ins.Residues
			pf("  %4d  %4d  %4d  %4d ",
				h.Rank, ins.QueryPos, ins.HitPos, len(ins.Residues)-2)
			if len(s) <= 100 {
				pf("%s\n", s)
				continue
			}
			pf("%s\n", s[:100])
			s = s[100:]
			for len(s) > 0 {
				n := len(s)
				if n > 100 {
					n = 100
				}
				pf("     +                   %s\n", s[:n])
				s = s[n:]
			}
		}
	}
}

// padTrunc forces s to exactly n characters, space-padded on the right.
func padTrunc(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	for len(s) < n {
		s += " "
	}
	return s
}
