package hssp

import "strings"

// Cluster collapses chain sequences that are full substrings of another
// chain's sequence. The returned slice maps each input index to the index
// of its containing sequence (or to itself when unique). Collapsing repeats
// until no containment remains, so containments exposed by an earlier merge
// are caught too.
//
// Only full containment is merged. Sequences that overlap partially, each
// with its own tail, stay separate: there is no defensible residue
// numbering or chain id for a merged result, so none is invented.
func Cluster(seqs []string) []int {
	s := make([]string, len(seqs))
	copy(s, seqs)
	ix := make([]int, len(s))
	for i := range ix {
		ix[i] = i
	}

	for {
		found := false
		for i := 0; !found && i+1 < len(s); i++ {
			for j := i + 1; !found && j < len(s); j++ {
				if s[i] == "" || s[j] == "" {
					continue
				}
				if strings.Contains(s[i], s[j]) {
					s[j] = ""
					ix[j] = i
					found = true
				} else if strings.Contains(s[j], s[i]) {
					s[i] = ""
					ix[i] = j
					found = true
				}
			}
		}
		if !found {
			break
		}
	}
	return ix
}

// uniqueIndices reduces a Cluster mapping to the distinct representative
// indices, in order of first appearance. Mappings are followed
// transitively: a container may itself have been merged into a larger one.
func uniqueIndices(ix []int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, i := range ix {
		for ix[i] != i {
			i = ix[i]
		}
		if !seen[i] {
			seen[i] = true
			out = append(out, i)
		}
	}
	return out
}
