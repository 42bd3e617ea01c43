package driven

import "context"

// IndexLocker serialises writers of one index directory.
type IndexLocker interface {
	// TryLock takes the write lock for dir without blocking. It returns an
	// error matching domain.ErrIndexLocked when another writer holds it.
	TryLock(ctx context.Context, dir string) (unlock func() error, err error)
}
