// Package blob holds captured binary content behind opaque handles.
//
// A handle is issued when content enters the store and stays dereferenceable
// until it is explicitly released. Entries own their handles; releasing an
// entry's handles is part of destroying the entry, not garbage collection.
package blob

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handle identifies content held by a Store. The zero value is invalid.
type Handle string

// ErrUnknownHandle is returned for handles that were never issued or have
// already been released.
var ErrUnknownHandle = errors.New("blob: unknown handle")

// DefaultMemLimit is the size above which content spills to disk.
const DefaultMemLimit = 1 << 20

type blobData struct {
	name string
	size int64
	data []byte // nil when spilled
	path string // spill file, empty when held in memory
}

// Store is a handle-addressed arena for captured content.
type Store struct {
	mu       sync.Mutex
	blobs    map[Handle]*blobData
	spillDir string
	memLimit int
	logger   *zap.Logger
}

// Options configures a Store.
type Options struct {
	// SpillDir receives content larger than MemLimit. Empty disables
	// spilling and keeps everything in memory.
	SpillDir string
	// MemLimit is the in-memory size cap per blob, DefaultMemLimit when 0.
	MemLimit int
	Logger   *zap.Logger
}

// New creates an empty store.
func New(opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := opts.MemLimit
	if limit <= 0 {
		limit = DefaultMemLimit
	}
	return &Store{
		blobs:    make(map[Handle]*blobData),
		spillDir: opts.SpillDir,
		memLimit: limit,
		logger:   logger,
	}
}

// Put registers content and returns its handle. Content above the memory
// limit spills to a file under the spill directory; when spilling fails the
// content is kept in memory instead.
func (s *Store) Put(name string, data []byte) Handle {
	b := &blobData{name: name, size: int64(len(data))}
	if len(data) > s.memLimit && s.spillDir != "" {
		if path, err := s.spill(data); err != nil {
			s.logger.Warn("blob spill failed, keeping in memory",
				zap.String("name", name), zap.Error(err))
			b.data = data
		} else {
			b.path = path
		}
	} else {
		b.data = data
	}

	h := Handle(uuid.New().String())
	s.mu.Lock()
	s.blobs[h] = b
	s.mu.Unlock()

	s.logger.Debug("blob stored",
		zap.String("name", name),
		zap.Int64("size", b.size),
		zap.Bool("spilled", b.path != ""))
	return h
}

// PutReader drains r into the store and reports the number of bytes read.
func (s *Store) PutReader(name string, r io.Reader) (Handle, int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, fmt.Errorf("read content: %w", err)
	}
	return s.Put(name, data), int64(len(data)), nil
}

func (s *Store) spill(data []byte) (string, error) {
	f, err := os.CreateTemp(s.spillDir, "clipsift-blob-*")
	if err != nil {
		return "", fmt.Errorf("create spill file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write spill file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close spill file: %w", err)
	}
	return f.Name(), nil
}

func (s *Store) lookup(h Handle) (*blobData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[h]
	if !ok {
		return nil, ErrUnknownHandle
	}
	return b, nil
}

// Open returns a reader over the content behind h.
func (s *Store) Open(h Handle) (io.ReadCloser, error) {
	b, err := s.lookup(h)
	if err != nil {
		return nil, err
	}
	if b.path != "" {
		f, err := os.Open(b.path)
		if err != nil {
			return nil, fmt.Errorf("open spill file: %w", err)
		}
		return f, nil
	}
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

// Bytes returns a copy of the content behind h.
func (s *Store) Bytes(h Handle) ([]byte, error) {
	b, err := s.lookup(h)
	if err != nil {
		return nil, err
	}
	if b.path != "" {
		data, err := os.ReadFile(b.path)
		if err != nil {
			return nil, fmt.Errorf("read spill file: %w", err)
		}
		return data, nil
	}
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out, nil
}

// Size reports the content length behind h.
func (s *Store) Size(h Handle) (int64, bool) {
	b, err := s.lookup(h)
	if err != nil {
		return 0, false
	}
	return b.size, true
}

// Name reports the name the content was stored under.
func (s *Store) Name(h Handle) (string, bool) {
	b, err := s.lookup(h)
	if err != nil {
		return "", false
	}
	return b.name, true
}

// Release frees the content behind h. Releasing an unknown or already
// released handle is a no-op.
func (s *Store) Release(h Handle) {
	s.mu.Lock()
	b, ok := s.blobs[h]
	if ok {
		delete(s.blobs, h)
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	if b.path != "" {
		if err := os.Remove(b.path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove spill file",
				zap.String("path", b.path), zap.Error(err))
		}
	}
	s.logger.Debug("blob released", zap.String("name", b.name))
}

// ReleaseAll frees every handle in hs.
func (s *Store) ReleaseAll(hs []Handle) {
	for _, h := range hs {
		s.Release(h)
	}
}

// Len reports the number of live handles.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}

// Close releases every live handle.
func (s *Store) Close() error {
	s.mu.Lock()
	blobs := s.blobs
	s.blobs = make(map[Handle]*blobData)
	s.mu.Unlock()

	var lastErr error
	for _, b := range blobs {
		if b.path == "" {
			continue
		}
		if err := os.Remove(b.path); err != nil && !os.IsNotExist(err) {
			lastErr = err
		}
	}
	return lastErr
}
