package hssp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCluster(t *testing.T) {
	tests := []struct {
		seqs []string
		want []int
	}{
		{[]string{"ABCDEF", "CDEF", "XYZ"}, []int{0, 0, 2}},
		{[]string{"CDEF", "ABCDEF"}, []int{1, 1}},
		{[]string{"AB", "CD", "EF"}, []int{0, 1, 2}},
		{[]string{"AB", "AB"}, []int{0, 0}},
		// CD is found inside ABCD only after ABCD absorbed into XABCDY.
		{[]string{"ABCD", "XABCDY", "CD"}, []int{1, 1, 1}},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, Cluster(test.seqs),
			"Cluster(%v)", test.seqs)
	}
}

func TestUniqueIndices(t *testing.T) {
	assert.Equal(t, []int{0, 2}, uniqueIndices([]int{0, 0, 2}))
	assert.Equal(t, []int{1}, uniqueIndices([]int{1, 1}))
	assert.Equal(t, []int{0, 1, 2}, uniqueIndices([]int{0, 1, 2}))

	// Containment chains resolve to the outermost sequence.
	assert.Equal(t, []int{1}, uniqueIndices([]int{1, 1, 0}))
}
