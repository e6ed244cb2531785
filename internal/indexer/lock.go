package indexer

import "sync/atomic"

// buildLock gives non-blocking try-acquire semantics for the single-build
// guard. A CAS keeps a losing caller from ever blocking behind a running
// build.
type buildLock struct {
	state atomic.Int32 // 0 = free, 1 = held
}

// TryAcquire attempts to take the lock without blocking and reports whether
// it succeeded.
func (l *buildLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release frees the lock. Only the caller that acquired it may release.
func (l *buildLock) Release() {
	l.state.Store(0)
}
