package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"MLChartist/internal/domain/models"
	domrepo "MLChartist/internal/domain/repository"
)

// FileResultStore serves precomputed backtest documents named N<n>.txt.
type FileResultStore struct {
	dir string
}

var _ domrepo.ResultStore = (*FileResultStore)(nil)

func NewFileResultStore(dir string) *FileResultStore {
	return &FileResultStore{dir: dir}
}

// Path returns the document path for n.
func (s *FileResultStore) Path(n int) string {
	return filepath.Join(s.dir, fmt.Sprintf("N%d.txt", n))
}

// Get returns the stored document verbatim.
func (s *FileResultStore) Get(ctx context.Context, n int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.Path(n))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("companies=%d: %w", n, models.ErrResultNotFound)
		}
		return nil, fmt.Errorf("read result %d: %w", n, err)
	}
	return b, nil
}

// Put writes a document through a temp file so readers never see partial data.
func (s *FileResultStore) Put(ctx context.Context, n int, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", s.dir, err)
	}
	tmp, err := os.CreateTemp(s.dir, fmt.Sprintf(".N%d-*.tmp", n))
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(doc); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write result %d: %w", n, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close result %d: %w", n, err)
	}
	if err := os.Rename(tmp.Name(), s.Path(n)); err != nil {
		return fmt.Errorf("rename result %d: %w", n, err)
	}
	return nil
}
