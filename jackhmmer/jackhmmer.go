// Package jackhmmer runs the jackhmmer iterative profile search from the
// HMMER suite against a FASTA databank and parses the resulting Stockholm
// alignment. Each search runs in its own scratch directory which is removed
// afterwards; the tool's output is captured to a log file so that failures
// can report what jackhmmer itself said.
package jackhmmer

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/nyue/xssp/hssp"
	"github.com/nyue/xssp/stockholm"
)

// TimeoutError is returned when a search exceeds the configured run time.
type TimeoutError string

func (e TimeoutError) Error() string { return string(e) }

// Timeout reports true so callers can distinguish a slow databank from a
// broken one and retry.
func (e TimeoutError) Timeout() bool { return true }

// ProcessError is returned when jackhmmer exits nonzero or produces no
// alignment. It carries the tail of the tool's log.
type ProcessError string

func (e ProcessError) Error() string { return string(e) }

// A Runner executes jackhmmer searches. The databank is expected at
// <FastaDir>/<Databank>.fa.
type Runner struct {
	// Path to the jackhmmer executable.
	Path string

	// FastaDir holds the databank FASTA files.
	FastaDir string

	// Databank is the base name of the FASTA file to search against.
	Databank string

	// Iterations is jackhmmer's -N value.
	Iterations int

	// Timeout bounds one search run. Zero means no limit.
	Timeout time.Duration
}

// Search runs jackhmmer for the given query sequence and returns the
// parsed, homology-filtered alignment.
func (r *Runner) Search(querySequence string) (*stockholm.Alignment, error) {
	if len(querySequence) == 0 {
		return nil, hssp.EmptySequenceError(
			"Empty sequence in jackhmmer search.")
	}

	rundir, err := os.MkdirTemp("", "jackhmmer")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(rundir)

	if err := writeQuery(
		filepath.Join(rundir, "input.fa"), querySequence); err != nil {

		return nil, err
	}

	ctx := context.Background()
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	logf, err := os.Create(filepath.Join(rundir, "jackhmmer.log"))
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, r.Path,
		"-N", fmt.Sprintf("%d", r.Iterations),
		"--noali", "--cpu", "2",
		"-A", "output.sto", "input.fa",
		filepath.Join(r.FastaDir, r.Databank+".fa"))
	cmd.Dir = rundir
	cmd.Stdout = logf
	cmd.Stderr = logf

	runErr := cmd.Run()
	logf.Close()

	if ctx.Err() == context.DeadlineExceeded {
		return nil, TimeoutError(fmt.Sprintf(
			"jackhmmer did not finish within %s.", r.Timeout))
	}
	if runErr != nil {
		return nil, ProcessError(fmt.Sprintf(
			"jackhmmer failed: %s%s", runErr, logTail(rundir)))
	}

	out, err := os.Open(filepath.Join(rundir, "output.sto"))
	if err != nil {
		return nil, ProcessError(fmt.Sprintf(
			"jackhmmer produced no alignment.%s", logTail(rundir)))
	}
	defer out.Close()

	aln, _, err := stockholm.Read(out)
	return aln, err
}

// writeQuery writes the query as a single FASTA entry, wrapped at 72
// columns the way jackhmmer's own examples are.
func writeQuery(path, sequence string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, ">input"); err != nil {
		return err
	}
	for len(sequence) > 0 {
		n := len(sequence)
		if n > 72 {
			n = 72
		}
		if _, err := fmt.Fprintln(f, sequence[:n]); err != nil {
			return err
		}
		sequence = sequence[n:]
	}
	return nil
}

// logTail returns the last few lines of the run's log, prefixed for
// inclusion in an error message. Best effort: an unreadable log yields "".
func logTail(rundir string) string {
	data, err := os.ReadFile(filepath.Join(rundir, "jackhmmer.log"))
	if err != nil || len(data) == 0 {
		return ""
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) > 10 {
		lines = lines[len(lines)-10:]
	}
	return "\n" + strings.Join(lines, "\n")
}
