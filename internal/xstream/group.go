package xstream

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Group starts a fixed set of execution streams and joins them,
// mirroring ABT_xstream_join/ABT_xstream_free for a cohort of ESs
// started together. It is a thin wrapper over errgroup.Group: the
// first ES loop to return an error cancels ctx for the rest, and Wait
// reports that first error, same semantics ABT_xstream_join callers
// layer on top of join-then-check-rc.
type Group struct {
	g   *errgroup.Group
	ctx context.Context
}

// NewGroup derives a cancellable context from parent and returns a
// Group ready to accept ES loops.
func NewGroup(parent context.Context) (*Group, context.Context) {
	g, ctx := errgroup.WithContext(parent)
	return &Group{g: g, ctx: ctx}, ctx
}

// Go starts one ES loop in its own goroutine.
func (g *Group) Go(loop func() error) {
	g.g.Go(loop)
}

// Wait blocks until every started ES loop has returned, then reports
// the first non-nil error (ABT_xstream_join semantics: join all,
// surface the failure).
func (g *Group) Wait() error {
	return g.g.Wait()
}
