package cancel

import (
	"context"
	"errors"
)

// ErrCanceled is the cause recorded when a ContextCanceler is cancelled
// through Cancel rather than by its parent.
var ErrCanceled = errors.New("cancel: canceled")

// ContextCanceler polls a context derived from its parent, so it fires on
// Cancel and also when the parent ends.
type ContextCanceler struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
}

// NewContext creates a ContextCanceler derived from parent.
func NewContext(parent context.Context) *ContextCanceler {
	ctx, cancel := context.WithCancelCause(parent)
	return &ContextCanceler{ctx: ctx, cancel: cancel}
}

// Done reports whether the context has ended, without blocking.
func (c *ContextCanceler) Done() bool {
	select {
	case <-c.ctx.Done():
		return true
	default:
		return false
	}
}

// Cancel ends the context with ErrCanceled unless it has already ended.
func (c *ContextCanceler) Cancel() {
	c.cancel(ErrCanceled)
}

// Cause returns why the canceler fired: ErrCanceled, the parent's cause,
// or nil while it is still live.
func (c *ContextCanceler) Cause() error {
	return context.Cause(c.ctx)
}

// Context returns the derived context.
func (c *ContextCanceler) Context() context.Context {
	return c.ctx
}
