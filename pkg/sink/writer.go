package sink

import (
	"fmt"
	"hash/crc32"
	"os"
	"sync"

	"github.com/herohde/ccmatch/pkg/match"
)

// FileWriter is a mutex-protected, append-only file writer that maintains a
// running CRC32 (IEEE-802.3) of everything written, so a caller can verify a
// PGN/EPD output file was not truncated or corrupted mid-write -- the same
// integrity check the reference implementation applies to its own outputs.
type FileWriter struct {
	mu   sync.Mutex
	f    *os.File
	hash uint32
}

// OpenFileWriter opens (creating if necessary) path for appending.
func OpenFileWriter(path string) (*FileWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("sink: open %v: %w", path, err)
	}
	return &FileWriter{f: f, hash: crc32.ChecksumIEEE(nil)}, nil
}

// WriteString appends s to the file, folding it into the running checksum.
func (w *FileWriter) WriteString(s string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.f.WriteString(s); err != nil {
		return fmt.Errorf("sink: write: %w", err)
	}
	w.hash = crc32.Update(w.hash, crc32.IEEETable, []byte(s))
	return nil
}

// Checksum returns the running CRC32 of every byte written so far.
func (w *FileWriter) Checksum() uint32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.hash
}

// Close flushes and closes the underlying file.
func (w *FileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.f.Close()
}

// PGNSink serializes completed matches to a PGN file, skipping matches whose
// Termination is Interrupt (unterminated games are not archived).
type PGNSink struct {
	w   *FileWriter
	cfg PGNConfig
}

func NewPGNSink(w *FileWriter, cfg PGNConfig) *PGNSink {
	return &PGNSink{w: w, cfg: cfg}
}

// Write appends m's PGN rendering, or does nothing if m was interrupted.
func (s *PGNSink) Write(m match.Match, round int) error {
	if m.Termination == match.Interrupt {
		return nil
	}
	return s.w.WriteString(RenderPGN(m, round, s.cfg))
}

// EPDSink serializes the final position of every completed match to an EPD file.
type EPDSink struct {
	w *FileWriter
}

func NewEPDSink(w *FileWriter) *EPDSink {
	return &EPDSink{w: w}
}

// Write appends m's final-position EPD line.
func (s *EPDSink) Write(m match.Match) error {
	return s.w.WriteString(RenderEPD(m) + "\n")
}
