package textdex

import (
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/textdex/internal/engine"
)

// Option configures the client.
type Option func(*options)

type options struct {
	dataDir        string
	commitInterval time.Duration
	autoCommit     bool
	logger         *zap.Logger
}

func defaultOptions() options {
	return options{
		dataDir:        "./data",
		commitInterval: engine.DefaultCommitInterval,
		autoCommit:     true,
		logger:         zap.NewNop(),
	}
}

// WithDataDir sets the root directory holding collection indexes.
func WithDataDir(dir string) Option {
	return func(o *options) { o.dataDir = dir }
}

// WithCommitInterval sets the auto-commit period.
func WithCommitInterval(d time.Duration) Option {
	return func(o *options) { o.commitInterval = d }
}

// WithAutoCommit enables or disables the background commit scheduler.
// With it disabled, writes become visible only on explicit Commit.
func WithAutoCommit(enabled bool) Option {
	return func(o *options) { o.autoCommit = enabled }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}
