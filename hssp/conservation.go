package hssp

import "github.com/nyue/xssp/stockholm"

// Dayhoff similarity matrix as used by maxhom, lower triangle over the
// canonical alphabet. The diagonal value 1.5 is the maximal self-similarity
// and doubles as the normalizing constant in conservation scoring.
var dayhoffData = []float64{
	1.5, // V
	0.8, 1.5, // L
	1.1, 0.8, 1.5, // I
	0.6, 1.3, 0.6, 1.5, // M
	0.2, 1.2, 0.7, 0.5, 1.5, // F
	-0.8, 0.5, -0.5, -0.3, 1.3, 1.5, // W
	-0.1, 0.3, 0.1, -0.1, 1.4, 1.1, 1.5, // Y
	0.2, -0.5, -0.3, -0.3, -0.6, -1.0, -0.7, 1.5, // G
	0.2, -0.1, 0.0, 0.0, -0.5, -0.8, -0.3, 0.7, 1.5, // A
	0.1, -0.3, -0.2, -0.2, -0.7, -0.8, -0.8, 0.3, 0.5, 1.5, // P
	-0.1, -0.4, -0.1, -0.3, -0.3, 0.3, -0.4, 0.6, 0.4, 0.4, 1.5, // S
	0.2, -0.1, 0.2, 0.0, -0.3, -0.6, -0.3, 0.4, 0.4, 0.3, 0.3, 1.5, // T
	0.2, -0.8, 0.2, -0.6, -0.1, -1.2, 1.0, 0.2, 0.3, 0.1, 0.7, 0.2,
	1.5, // C
	-0.3, -0.2, -0.3, -0.3, -0.1, -0.1, 0.3, -0.2, -0.1, 0.2, -0.2, -0.1,
	-0.1, 1.5, // H
	-0.3, -0.4, -0.3, 0.2, -0.5, 1.4, -0.6, -0.3, -0.3, 0.3, 0.1, -0.1,
	-0.3, 0.5, 1.5, // R
	-0.2, -0.3, -0.2, 0.2, -0.7, 0.1, -0.6, -0.1, 0.0, 0.1, 0.2, 0.2,
	-0.6, 0.1, 0.8, 1.5, // K
	-0.2, -0.1, -0.3, 0.0, -0.8, -0.5, -0.6, 0.2, 0.2, 0.3, -0.1, -0.1,
	-0.6, 0.7, 0.4, 0.4, 1.5, // Q
	-0.2, -0.3, -0.2, -0.2, -0.7, -1.1, -0.5, 0.5, 0.3, 0.1, 0.2, 0.2,
	-0.6, 0.4, 0.0, 0.3, 0.7, 1.5, // E
	-0.3, -0.4, -0.3, -0.3, -0.5, -0.3, -0.1, 0.4, 0.2, 0.0, 0.3, 0.2,
	-0.3, 0.5, 0.1, 0.4, 0.4, 0.5, 1.5, // N
	-0.2, -0.5, -0.2, -0.4, -1.0, -1.1, -0.5, 0.7, 0.3, 0.1, 0.2, 0.2,
	-0.5, 0.4, 0.0, 0.3, 0.7, 1.0, 0.7, 1.5, // D
}

func dayhoff(i, j int) float64 {
	if i < j {
		i, j = j, i
	}
	return dayhoffData[i*(i+1)/2+j]
}

// Conservation scores column col of the alignment: the weighted mean
// Dayhoff similarity over all sequence pairs carrying a canonical amino
// acid there, normalized by the maximal similarity 1.5. Columns with fewer
// than two informative sequences score the neutral 1.0.
func Conservation(aln *stockholm.Alignment, col int, w *WeightMatrix) float64 {
	var weight, conservation float64

	for i := 0; i+1 < len(aln.Entries); i++ {
		ri, ok := AminoIndex(aln.Entries[i].Residues[col])
		if !ok {
			continue
		}
		for j := i + 1; j < len(aln.Entries); j++ {
			rj, ok := AminoIndex(aln.Entries[j].Residues[col])
			if !ok {
				continue
			}
			conservation += w.At(i, j) * dayhoff(ri, rj)
			weight += w.At(i, j) * 1.5
		}
	}

	if weight == 0 {
		return 1.0
	}
	return conservation / weight
}
