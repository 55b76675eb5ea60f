package fixlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenRawSinkWithEmptyDirIsNilAndSafe(t *testing.T) {
	sink, err := OpenRawSink("", "TW-ISLD")
	require.NoError(t, err)
	require.Nil(t, sink)
	require.NoError(t, sink.Record("out", []byte("8=FIX.4.2\x019=5\x0135=0\x0110=000\x01")))
	require.NoError(t, sink.Close())
}

func TestRawSinkRecordsSOHAsPipe(t *testing.T) {
	dir := t.TempDir()
	sink, err := OpenRawSink(dir, "TW-ISLD")
	require.NoError(t, err)
	require.NotNil(t, sink)
	t.Cleanup(func() { sink.Close() })

	require.NoError(t, sink.Record("out", []byte("8=FIX.4.2\x019=5\x0135=0\x01")))

	data, err := os.ReadFile(filepath.Join(dir, "TW-ISLD.raw.log"))
	require.NoError(t, err)
	require.Contains(t, string(data), "out 8=FIX.4.2|9=5|35=0|")
}

func TestRawSinkAppendsAcrossRecords(t *testing.T) {
	dir := t.TempDir()
	sink, err := OpenRawSink(dir, "TW-ISLD")
	require.NoError(t, err)
	require.NoError(t, sink.Record("out", []byte("A")))
	require.NoError(t, sink.Record("in", []byte("B")))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(filepath.Join(dir, "TW-ISLD.raw.log"))
	require.NoError(t, err)
	require.Equal(t, 2, countLines(string(data)))
}

func countLines(s string) int {
	n := 0
	for _, c := range s {
		if c == '\n' {
			n++
		}
	}
	return n
}
