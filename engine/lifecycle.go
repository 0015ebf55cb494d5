package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/looplab/fsm"
)

// Lifecycle states of a Device.
const (
	StateNotStarted = "not-started"
	StateStartup    = "startup"
	StateReady      = "ready"
)

const (
	eventInitialize  = "initialize"
	eventStartupDone = "startup-done"
)

func newLifecycle(logger *slog.Logger) *fsm.FSM {
	return fsm.NewFSM(
		StateNotStarted,
		fsm.Events{
			{Name: eventInitialize, Src: []string{StateNotStarted}, Dst: StateStartup},
			{Name: eventStartupDone, Src: []string{StateStartup}, Dst: StateReady},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				logger.Info("Device state changed", "from", e.Src, "to", e.Dst)
			},
		},
	)
}

// advance fires event and treats a transition that is no longer possible as
// already done.
func advance(f *fsm.FSM, event string) error {
	err := f.Event(context.Background(), event)
	var invalid fsm.InvalidEventError
	if errors.As(err, &invalid) {
		return nil
	}
	return err
}
