package stockholm

import (
	"strings"

	"github.com/TuftsBCB/seq"
)

// FormatError reports malformed Stockholm input.
type FormatError string

func (e FormatError) Error() string { return string(e) }

// MismatchError reports that an alignment's query does not correspond to
// the chain sequence it is supposed to describe.
type MismatchError string

func (e MismatchError) Error() string { return string(e) }

// An Alignment is an ordered multiple sequence alignment. The first entry
// is always the query; every entry has the same number of residues. Once
// parsed, an Alignment is read-only: downstream consumers annotate columns
// in side tables of their own instead of rewriting residues.
type Alignment struct {
	Entries []seq.Sequence
}

// Width returns the number of columns in the alignment.
func (a *Alignment) Width() int {
	if len(a.Entries) == 0 {
		return 0
	}
	return len(a.Entries[0].Residues)
}

// Query returns the first sequence of the alignment.
func (a *Alignment) Query() seq.Sequence { return a.Entries[0] }

// Ungapped returns the residues of entry row with all gap symbols removed.
func (a *Alignment) Ungapped(row int) string {
	var b strings.Builder
	for _, r := range a.Entries[row].Residues {
		if !IsGap(r) {
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}

// FitChain trims the alignment so that the gap-stripped query exactly
// matches the given chain sequence. An alignment may have been computed
// from a query a few residues longer than the chain; in that case the
// excess leading and trailing columns are cut from every entry. If the
// chain sequence cannot be recovered from the query a MismatchError is
// returned.
func (a *Alignment) FitChain(chain string) error {
	sa := a.Ungapped(0)
	if sa == chain {
		return nil
	}
	if len(sa) < len(chain) {
		return MismatchError(
			"Alignment query is too short for the chain.")
	}
	offset := strings.Index(sa, chain)
	if offset < 0 {
		return MismatchError(
			"Alignment query does not contain the chain sequence.")
	}

	// Map the ungapped offsets back onto raw columns: the cut starts at the
	// column of the offset-th query residue and ends after the column of the
	// last chain residue.
	q := a.Entries[0].Residues
	start, end, seen := 0, len(q), 0
	for col, r := range q {
		if IsGap(r) {
			continue
		}
		if seen == offset {
			start = col
		}
		if seen == offset+len(chain)-1 {
			end = col + 1
			break
		}
		seen++
	}
	for i := range a.Entries {
		a.Entries[i].Residues = a.Entries[i].Residues[start:end]
	}
	return nil
}
