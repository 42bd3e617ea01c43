// Package lockfile guards index directories with advisory file locks.
package lockfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/custodia-labs/animerec/internal/core/domain"
	"github.com/custodia-labs/animerec/internal/core/ports/driven"
)

// Ensure Locker implements the interface.
var _ driven.IndexLocker = (*Locker)(nil)

// FileName is the lock file created inside the index directory.
const FileName = ".build.lock"

// Locker takes an flock on <dir>/.build.lock. The lock is released when the
// returned unlock func runs or the process exits.
type Locker struct{}

// New creates a Locker.
func New() *Locker {
	return &Locker{}
}

// TryLock creates dir if needed and takes the lock without waiting.
func (l *Locker) TryLock(ctx context.Context, dir string) (func() error, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	path := filepath.Join(dir, FileName)
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", domain.ErrIndexLocked, path)
	}
	return fl.Unlock, nil
}
