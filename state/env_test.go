package state_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/vibraphone/pegtl-css/state"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	if env == nil {
		t.Fatal("expected a non-nil LocalEnv")
	}
	if env.Uptime() < 0 {
		t.Fatal("expected non-negative uptime")
	}
}

func TestEnvFromContextPanicsWithoutEnv(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic when no LocalEnv was installed")
		}
	}()
	state.EnvFromContext(context.Background())
}

type failingCloser struct{}

func (failingCloser) Close() error { return errors.New("close failed") }

func TestShutdownAggregatesErrors(t *testing.T) {
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = zap.NewNop()
	env.SetLogCloser(failingCloser{})

	if err := env.Shutdown(); err == nil {
		t.Fatal("expected Shutdown to surface the closer's error")
	}
}
