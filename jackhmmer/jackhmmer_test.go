package jackhmmer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyue/xssp/hssp"
)

func TestSearchEmptyQuery(t *testing.T) {
	r := &Runner{Path: "jackhmmer"}
	_, err := r.Search("")
	require.Error(t, err)
	assert.IsType(t, hssp.EmptySequenceError(""), err)
}

func TestSearchMissingExecutable(t *testing.T) {
	r := &Runner{
		Path:       "/no/such/jackhmmer",
		FastaDir:   "/no/such/dir",
		Databank:   "sprot",
		Iterations: 5,
	}
	_, err := r.Search("ACDEFG")
	require.Error(t, err)
	assert.IsType(t, ProcessError(""), err)
}

func TestTimeoutErrorIsTimeout(t *testing.T) {
	var err error = TimeoutError("too slow")
	to, ok := err.(interface{ Timeout() bool })
	require.True(t, ok)
	assert.True(t, to.Timeout())
}

func TestWriteQuery(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.fa")

	long := strings.Repeat("ACDEFGHIKLMNPQRSTVWY", 5) // 100 residues
	require.NoError(t, writeQuery(path, long))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, ">input", lines[0])
	assert.Len(t, lines[1], 72)
	assert.Len(t, lines[2], 28)
	assert.Equal(t, long, lines[1]+lines[2])
}
