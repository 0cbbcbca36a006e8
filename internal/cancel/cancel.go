// Package cancel provides cancellation signals cheap enough to check on
// every iteration of a busy-polling loop.
//
// Producers and consumers never block after the start barrier, so they
// cannot select on ctx.Done(). Instead they poll a Canceler:
//   - ContextCanceler: non-blocking select on a derived context's Done channel
//   - AtomicCanceler: a single atomic load, bound to a context with Bind
//
// New builds either kind from a context; the harness takes the kind from
// its configuration.
package cancel

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind names a Canceler implementation.
type Kind string

const (
	KindAtomic  Kind = "atomic"
	KindContext Kind = "context"
)

// ErrUnknownKind is returned for a canceler name that has no implementation.
var ErrUnknownKind = errors.New("cancel: unknown kind")

// ParseKind resolves a case-insensitive canceler name. Empty means KindAtomic.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindAtomic, nil
	case KindAtomic, KindContext:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Kinds lists every canceler New accepts.
func Kinds() []Kind {
	return []Kind{KindAtomic, KindContext}
}

// New returns a Canceler of the given kind that fires once ctx is done.
// release must be called after the polling loops have returned.
func New(ctx context.Context, kind Kind) (c Canceler, release func(), err error) {
	k, err := ParseKind(string(kind))
	if err != nil {
		return nil, nil, err
	}
	switch k {
	case KindContext:
		cc := NewContext(ctx)
		return cc, cc.Cancel, nil
	default:
		ac := NewAtomic()
		return ac, Bind(ctx, ac), nil
	}
}

// Canceler provides cancellation signaling to workers.
//
// Implementations must be safe for concurrent use:
//   - Multiple goroutines may call Done() concurrently
//   - Cancel() may be called concurrently with Done()
type Canceler interface {
	// Done returns true if cancellation has been triggered.
	Done() bool

	// Cancel triggers cancellation. Safe to call multiple times.
	Cancel()
}

// Bind cancels c once ctx is done.
//
// The returned release func stops watching ctx; it must be called when the
// hot loops have finished so the watcher goroutine exits.
func Bind(ctx context.Context, c Canceler) (release func()) {
	stop := context.AfterFunc(ctx, c.Cancel)
	return func() { stop() }
}
