// Package state defines the shared, per-invocation program state the
// CLI collaborator threads through context.Context. It has no CSS
// grammar knowledge of its own — it only carries what main needs to
// wire the grammar engine to a logger and a configuration.
package state

import (
	"context"
	"io"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/vibraphone/pegtl-css/config"
)

type envKey struct{}

// LocalEnv keeps everything the program needs in a single place,
// grounded on the teacher's state.LocalEnv.
type LocalEnv struct {
	Cfg *config.Config
	Log *zap.Logger

	start         time.Time
	restoreStdLog func()
	logCloser     io.Closer
}

func newLocalEnv() *LocalEnv {
	return &LocalEnv{start: time.Now()}
}

// ContextWithEnv returns a context carrying a freshly initialized
// LocalEnv.
func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, newLocalEnv())
}

// EnvFromContext retrieves the LocalEnv stored by ContextWithEnv. It
// panics if ctx was not created that way — this should never happen
// within this program's own command tree.
func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	panic("localenv not found in context")
}

// Uptime returns how long this invocation has been running.
func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// SetLogCloser records the closer for the logger's file sink, if any,
// so Shutdown can release it.
func (e *LocalEnv) SetLogCloser(c io.Closer) {
	e.logCloser = c
}

// RedirectStdLog routes the standard library's log package through
// the zap logger for the duration of the program.
func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

// Shutdown flushes the logger, restores the standard logger, and
// releases the file sink's handle, aggregating every error that
// occurs along the way instead of stopping at the first one.
func (e *LocalEnv) Shutdown() error {
	var err error
	if e.Log != nil {
		err = multierr.Append(err, e.Log.Sync())
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
	if e.logCloser != nil {
		err = multierr.Append(err, e.logCloser.Close())
	}
	return err
}
