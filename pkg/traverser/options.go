package traverser

import (
	"time"

	"go.uber.org/zap"
)

// Option configures an Engine or an EditSession.
type Option func(*options)

type options struct {
	log     *zap.Logger
	now     func() time.Time
	onDirty func(*EditSession)
}

func newOptions(opts []Option) *options {
	o := &options{
		log: zap.NewNop(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger cursor moves and edits are reported to.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithClock replaces time.Now, which drives undo coalescing.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithDirtyCallback registers fn to run after every applied edit.
func WithDirtyCallback(fn func(*EditSession)) Option {
	return func(o *options) {
		o.onDirty = fn
	}
}
