package body

import (
	"bytes"
	"io"
	"os"

	"http-message/http/transfer"

	"github.com/pkg/errors"
)

// Kind tells where a body keeps its raw bytes.
type Kind uint8

const (
	KindMemory Kind = iota
	KindDisk
	KindChunks
)

func (k Kind) String() string {
	switch k {
	case KindMemory:
		return "memory"
	case KindDisk:
		return "disk"
	case KindChunks:
		return "chunks"
	}
	return "unknown"
}

type storage interface {
	kind() Kind
	size() int64
	open() (io.ReadCloser, error)
	release() error
}

type memoryStorage struct{ b []byte }

func (s *memoryStorage) kind() Kind     { return KindMemory }
func (s *memoryStorage) size() int64    { return int64(len(s.b)) }
func (s *memoryStorage) release() error { return nil }

func (s *memoryStorage) open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.b)), nil
}

// diskStorage is a staged temporary file owned by the body.
type diskStorage struct {
	path string
	n    int64
}

func (s *diskStorage) kind() Kind  { return KindDisk }
func (s *diskStorage) size() int64 { return s.n }

func (s *diskStorage) open() (io.ReadCloser, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, errors.Wrap(err, "opening staged body")
	}
	return f, nil
}

func (s *diskStorage) release() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing staged body")
	}
	return nil
}

type chunkStorage struct {
	chunks []transfer.Chunk
	n      int64
}

func newChunkStorage(chunks []transfer.Chunk) (*chunkStorage, error) {
	s := &chunkStorage{chunks: make([]transfer.Chunk, 0, len(chunks))}
	for idx, c := range chunks {
		if uint64(len(c.Content)) != c.Length.Amount {
			return nil, errors.Wrapf(transfer.ErrChunkMismatch,
				"chunk %d declares %d bytes, got %d", idx, c.Length.Amount, len(c.Content))
		}
		if c.IsLast() && idx != len(chunks)-1 {
			return nil, errors.Wrapf(transfer.ErrChunkMismatch, "terminal chunk at %d of %d", idx, len(chunks))
		}

		s.chunks = append(s.chunks, transfer.Chunk{Length: c.Length, Content: bytes.Clone(c.Content)})
		s.n += int64(len(c.Content))
	}
	return s, nil
}

func (s *chunkStorage) kind() Kind     { return KindChunks }
func (s *chunkStorage) size() int64    { return s.n }
func (s *chunkStorage) release() error { return nil }

func (s *chunkStorage) open() (io.ReadCloser, error) {
	readers := make([]io.Reader, 0, len(s.chunks))
	for _, c := range s.chunks {
		readers = append(readers, bytes.NewReader(c.Content))
	}
	return io.NopCloser(io.MultiReader(readers...)), nil
}

// stage picks memory or disk storage for r, reading it to the end.
// Content of threshold bytes or more goes to a temporary file in dir.
func stage(r io.Reader, threshold int64, dir string) (storage, error) {
	buf := make([]byte, threshold)
	n, err := io.ReadFull(r, buf)
	switch {
	case err == io.EOF || err == io.ErrUnexpectedEOF:
		return &memoryStorage{b: buf[:n]}, nil
	case err != nil:
		return nil, errors.Wrap(err, "reading body")
	}

	f, err := os.CreateTemp(dir, "http-body-*")
	if err != nil {
		return nil, errors.Wrap(err, "creating staging file")
	}

	written, err := io.Copy(f, io.MultiReader(bytes.NewReader(buf), r))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return nil, errors.Wrap(err, "staging body to disk")
	}

	return &diskStorage{path: f.Name(), n: written}, nil
}
