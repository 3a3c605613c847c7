package sink_test

import (
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"

	"github.com/herohde/ccmatch/pkg/match"
	"github.com/herohde/ccmatch/pkg/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWriterAppendsAndChecksums(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pgn")

	w, err := sink.OpenFileWriter(path)
	require.NoError(t, err)

	require.NoError(t, w.WriteString("hello "))
	require.NoError(t, w.WriteString("world"))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	w2, err := sink.OpenFileWriter(path)
	require.NoError(t, err)
	require.NoError(t, w2.WriteString("hello "))
	require.NoError(t, w2.WriteString("world"))
	assert.Equal(t, crc32.ChecksumIEEE([]byte("hello world")), w2.Checksum())
	require.NoError(t, w2.Close())
}

func TestPGNSinkSkipsInterruptedMatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.pgn")
	w, err := sink.OpenFileWriter(path)
	require.NoError(t, err)
	defer w.Close()

	s := sink.NewPGNSink(w, sink.PGNConfig{})
	require.NoError(t, s.Write(foolsMateMatch(t), 1))

	interrupted := foolsMateMatch(t)
	interrupted.White.Name = "engineC"
	interrupted.Termination = match.Interrupt
	require.NoError(t, s.Write(interrupted, 2))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "engineA")
	assert.NotContains(t, string(data), "engineC")
}
