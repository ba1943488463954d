package main

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dsarch/medaldec/bytecode"
)

func littleHeader() []byte {
	return []byte{
		0x1b, 'L', 'u', 'a',
		0x51,
		0,
		1,
		4,
		4,
		4,
		8,
		0,
	}
}

func appendUint32(buf []byte, v uint32) []byte {
	var w [4]byte
	binary.LittleEndian.PutUint32(w[:], v)
	return append(buf, w[:]...)
}

func appendString(buf []byte, s string) []byte {
	if s == "" {
		return appendUint32(buf, 0)
	}
	buf = appendUint32(buf, uint32(len(s)+1))
	buf = append(buf, s...)
	return append(buf, 0)
}

// emptyReturnChunk builds a minimal valid chunk containing a single
// prototype whose body is just `return`.
func emptyReturnChunk() []byte {
	buf := littleHeader()
	buf = appendString(buf, "")   // source
	buf = appendUint32(buf, 0)    // line defined
	buf = appendUint32(buf, 0)    // last line defined
	buf = append(buf, 0, 0, 0, 2) // nups, numparams, is_vararg, maxstack
	buf = appendUint32(buf, 1)    // sizecode
	buf = appendUint32(buf, uint32(bytecode.OpReturn)|(0<<6)|(1<<23))
	buf = appendUint32(buf, 0) // sizeconstants
	buf = appendUint32(buf, 0) // sizeprotos
	buf = appendUint32(buf, 0) // sizelineinfo
	buf = appendUint32(buf, 0) // sizelocvars
	buf = appendUint32(buf, 0) // sizeupvalues
	return buf
}

func writeFixture(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name+chunkExt)
	require.NoError(t, os.WriteFile(path, emptyReturnChunk(), 0644))
	return path
}

func TestRun_UpdateThenCompareMatches(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFixture(t, dir, "empty")

	_, err := Run(dir, true)
	require.NoError(t, err)

	mismatches, err := Run(dir, false)
	require.NoError(t, err)
	require.Empty(t, mismatches)
}

func TestRun_ReportsMismatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFixture(t, dir, "empty")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty"+goldenExt), []byte("function empty()\n  return 1\nend\n"), 0644))

	mismatches, err := Run(dir, false)
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	require.Equal(t, filepath.Join(dir, "empty"+chunkExt), mismatches[0].Fixture)
}

func TestRun_MissingGoldenFileIsAMismatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFixture(t, dir, "empty")

	mismatches, err := Run(dir, false)
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	require.Empty(t, mismatches[0].Want)
}

func TestWriteDiff(t *testing.T) {
	t.Parallel()

	f, err := os.CreateTemp(t.TempDir(), "diff")
	require.NoError(t, err)
	defer f.Close()

	WriteDiff(f, nil)
	content, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	require.Contains(t, string(content), "all fixtures match")
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
