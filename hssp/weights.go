package hssp

import "github.com/nyue/xssp/stockholm"

// A WeightMatrix holds pairwise distance weights for all sequences of one
// alignment. Near-duplicate sequences get a weight close to zero so they do
// not dominate conservation scoring. The matrix is symmetric and read-only
// after construction; the diagonal is unused.
type WeightMatrix struct {
	n int
	w []float64
}

// NewWeightMatrix computes the weight of every sequence pair in the
// alignment, query included.
func NewWeightMatrix(aln *stockholm.Alignment) *WeightMatrix {
	n := len(aln.Entries)
	m := &WeightMatrix{n: n, w: make([]float64, n*(n+1)/2)}
	for i := 0; i+1 < n; i++ {
		for j := i + 1; j < n; j++ {
			m.set(i, j, pairWeight(aln, i, j))
		}
	}
	return m
}

// At returns the weight of the pair (i, j).
func (m *WeightMatrix) At(i, j int) float64 {
	if i < j {
		i, j = j, i
	}
	return m.w[i*(i+1)/2+j]
}

func (m *WeightMatrix) set(i, j int, v float64) {
	if i < j {
		i, j = j, i
	}
	m.w[i*(i+1)/2+j] = v
}

// pairWeight is the fractional non-identity of rows i and j over the
// query's own non-gap columns: identical pairs weigh 0, unrelated pairs 1.
func pairWeight(aln *stockholm.Alignment, i, j int) float64 {
	sq := aln.Entries[0].Residues
	si := aln.Entries[i].Residues
	sj := aln.Entries[j].Residues

	var compared, identical int
	for k := range sq {
		if stockholm.IsGap(sq[k]) {
			continue
		}
		compared++
		if si[k] == sj[k] && !stockholm.IsGap(si[k]) {
			identical++
		}
	}
	return 1 - float64(identical)/float64(compared)
}
