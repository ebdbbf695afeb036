package pool

import (
	"fmt"

	"github.com/xstreamrt/xstreamrt/internal/xstream"
)

// setReader binds the pool's reader to es ahead of a pop/remove (spec
// §4.2). The PRW case intentionally falls through into the PR_PW/PR_SW
// case: per spec §9's open-question resolution, PRW performs *both*
// the writer-identity check and the reader-identity check, exactly
// like ABTI_pool_set_reader's switch fall-through in the original.
//
// The check-then-set here is deliberately unsynchronised (spec §4.2):
// this is a best-effort sanity guard against a misbehaving caller, not
// a lock. Do not add a mutex here.
func (p *Pool) setReader(es xstream.ID) error {
	switch p.access {
	case PRW:
		if !p.writer.IsNil() && es != p.writer {
			return fmt.Errorf("%w: PRW pool writer is %s, got %s", ErrInvalidPoolAccess, p.writer, es)
		}
		fallthrough
	case PR_PW, PR_SW:
		if !p.reader.IsNil() && es != p.reader {
			return fmt.Errorf("%w: reader already bound to %s, got %s", ErrInvalidPoolAccess, p.reader, es)
		}
		p.reader = es
	case SR_PW, SR_SW:
		// Observational: the pool allows concurrent readers, so the
		// memo is simply overwritten.
		p.reader = es
	default:
		return fmt.Errorf("%w: %v", ErrInvalidPoolAccess, p.access)
	}
	return nil
}

// setWriter is the symmetric counterpart of setReader, called ahead
// of a push.
func (p *Pool) setWriter(es xstream.ID) error {
	switch p.access {
	case PRW:
		if !p.reader.IsNil() && es != p.reader {
			return fmt.Errorf("%w: PRW pool reader is %s, got %s", ErrInvalidPoolAccess, p.reader, es)
		}
		fallthrough
	case PR_PW, SR_PW:
		if !p.writer.IsNil() && es != p.writer {
			return fmt.Errorf("%w: writer already bound to %s, got %s", ErrInvalidPoolAccess, p.writer, es)
		}
		p.writer = es
	case PR_SW, SR_SW:
		p.writer = es
	default:
		return fmt.Errorf("%w: %v", ErrInvalidPoolAccess, p.access)
	}
	return nil
}

// AcceptMigration decides whether a unit currently writable by src may
// be re-homed into dst (spec §4.4). It only establishes willingness;
// the caller executes the move and maintains num_migrations around it.
func AcceptMigration(dst, src *Pool) bool {
	if dst == nil || src == nil {
		return false
	}
	switch dst.access {
	case PRW, PR_PW, SR_PW:
		// The destination's unique consumer must be the ES that is
		// pushing.
		return !dst.reader.IsNil() && dst.reader == src.writer
	case PR_SW, SR_SW:
		return true
	default:
		return false
	}
}
