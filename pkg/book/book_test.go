package book_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/herohde/ccmatch/pkg/book"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewEmptyHasNoOpenings(t *testing.T) {
	b := book.NewEmpty()
	_, ok := b.FetchID()
	assert.False(t, ok)
	assert.Equal(t, 0, b.Size())
}

func TestNewFromEPDSequential(t *testing.T) {
	path := writeTemp(t, "book.epd", "fen1\nfen2\nfen3\n")

	b, err := book.NewFromEPD(path, book.Config{})
	require.NoError(t, err)
	require.Equal(t, 3, b.Size())

	id, ok := b.FetchID()
	require.True(t, ok)
	assert.Equal(t, "fen1", b.At(id).FEN)
}

func TestFetchIDWrapsAround(t *testing.T) {
	path := writeTemp(t, "book.epd", "fen1\nfen2\n")
	b, err := book.NewFromEPD(path, book.Config{})
	require.NoError(t, err)

	var ids []int
	for i := 0; i < 4; i++ {
		id, ok := b.FetchID()
		require.True(t, ok)
		ids = append(ids, id)
	}
	assert.Equal(t, []int{0, 1, 0, 1}, ids)
}

func TestRotateByResumeOffset(t *testing.T) {
	path := writeTemp(t, "book.epd", "fen1\nfen2\nfen3\nfen4\n")

	b, err := book.NewFromEPD(path, book.Config{GamesPerPair: 2, InitialMatchCount: 4})
	require.NoError(t, err)

	id, ok := b.FetchID()
	require.True(t, ok)
	assert.Equal(t, "fen3", b.At(id).FEN)
}

func TestRoundsTruncatesBook(t *testing.T) {
	path := writeTemp(t, "book.epd", "fen1\nfen2\nfen3\nfen4\n")

	b, err := book.NewFromEPD(path, book.Config{Rounds: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, b.Size())
}

func TestNewFromPGNStripsMoveNumbersAndResults(t *testing.T) {
	path := writeTemp(t, "book.pgn", "[Event \"x\"]\n1. e4 e5 2. Nf3 Nc6 1-0\n")

	b, err := book.NewFromPGN(path, 3, book.Config{})
	require.NoError(t, err)
	require.Equal(t, 1, b.Size())

	id, _ := b.FetchID()
	assert.Equal(t, []string{"e4", "e5", "Nf3"}, b.At(id).Moves)
}
