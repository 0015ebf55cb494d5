package engine_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"i4.energy/across/qube/engine"
	"i4.energy/across/qube/nmea"
)

func readyProbe(t *testing.T) *engine.Device[probe] {
	t.Helper()
	d := newProbe(t)
	if err := d.Initialize(); err != nil {
		t.Fatal(err)
	}
	return d
}

func expectNoFrame(t *testing.T, d *engine.Device[probe]) {
	t.Helper()
	select {
	case f := <-d.Outbound():
		t.Errorf("unexpected frame %q", f)
	default:
	}
}

func TestParseArgs(t *testing.T) {
	args := engine.ParseArgs("  tile  sleep 2024-01-01 10:00:00 extra ")
	if len(args) != engine.MaxArgs {
		t.Fatalf("expected %d args, got %q", engine.MaxArgs, args)
	}
	if args.Command() != "sleep" || args.Arg(3) != "10:00:00" || args.Arg(4) != "" {
		t.Errorf("unexpected args %q", args)
	}
}

func TestExecute(t *testing.T) {
	t.Run("ErrNotInitialized before Initialize", func(t *testing.T) {
		d := newProbe(t)
		err := d.Execute(context.Background(), engine.Args{"probe", "ab"}, &bytes.Buffer{})
		if !errors.Is(err, engine.ErrNotInitialized) {
			t.Errorf("expected ErrNotInitialized, got %v", err)
		}
	})

	t.Run("ErrCommandNotFound transmits nothing", func(t *testing.T) {
		d := readyProbe(t)
		err := d.Execute(context.Background(), engine.Args{"probe", "bogus"}, &bytes.Buffer{})
		if !errors.Is(err, engine.ErrCommandNotFound) {
			t.Errorf("expected ErrCommandNotFound, got %v", err)
		}
		expectNoFrame(t, d)
	})

	t.Run("Separator entries are not commands", func(t *testing.T) {
		d := readyProbe(t)
		err := d.Execute(context.Background(), engine.Args{"probe", "-----"}, &bytes.Buffer{})
		if !errors.Is(err, engine.ErrCommandNotFound) {
			t.Errorf("expected ErrCommandNotFound, got %v", err)
		}
	})

	t.Run("Usage text for help parameter", func(t *testing.T) {
		d := readyProbe(t)
		var out bytes.Buffer
		if err := d.Execute(context.Background(), engine.Args{"probe", "ab", "help"}, &out); err != nil {
			t.Fatal(err)
		}
		if out.String() != "usage: probe ab [@|rate]\n" {
			t.Errorf("unexpected output %q", out.String())
		}
		expectNoFrame(t, d)
	})

	t.Run("Default parameter and formatted reply", func(t *testing.T) {
		d := readyProbe(t)
		out := newWriteRecorder()
		done := make(chan error, 1)
		go func() {
			done <- d.Execute(context.Background(), engine.Args{"probe", "ab"}, out)
		}()

		if got := string(<-d.Outbound()); got != string(nmea.Frame("AB", "@")) {
			t.Errorf("unexpected frame %q", got)
		}
		if title := out.next(t); title != "AB values:\n" {
			t.Errorf("unexpected title %q", title)
		}
		d.Feed(frame("AB", "7"))
		if reply := out.next(t); reply != "A=7 B=7\n" {
			t.Errorf("unexpected reply %q", reply)
		}
		if err := <-done; err != nil {
			t.Errorf("unexpected error %v", err)
		}
	})

	t.Run("Operator parameter replaces the default", func(t *testing.T) {
		d := readyProbe(t)
		go d.Execute(context.Background(), engine.Args{"probe", "ab", "60"}, &bytes.Buffer{})

		if got := string(<-d.Outbound()); got != string(nmea.Frame("AB", "60")) {
			t.Errorf("unexpected frame %q", got)
		}
	})

	t.Run("Reply-only command waits without transmitting", func(t *testing.T) {
		d := readyProbe(t)
		d.Feed(frame("NOTE", "cached"))

		var out bytes.Buffer
		if err := d.Execute(context.Background(), engine.Args{"probe", "note"}, &out); err != nil {
			t.Fatal(err)
		}
		if out.String() != "Note: cached\n" {
			t.Errorf("unexpected output %q", out.String())
		}
		expectNoFrame(t, d)
	})

	t.Run("No response text on timeout", func(t *testing.T) {
		d := readyProbe(t)
		var out bytes.Buffer
		if err := d.Execute(context.Background(), engine.Args{"probe", "note"}, &out); err != nil {
			t.Fatal(err)
		}
		if out.String() != engine.NoResponseText {
			t.Errorf("unexpected output %q", out.String())
		}
	})

	t.Run("Error occurred text when the wait is aborted", func(t *testing.T) {
		d := readyProbe(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var out bytes.Buffer
		if err := d.Execute(ctx, engine.Args{"probe", "note"}, &out); err != nil {
			t.Fatal(err)
		}
		if out.String() != engine.ErrorOccurredText {
			t.Errorf("unexpected output %q", out.String())
		}
	})

	t.Run("Help lists the table under a banner", func(t *testing.T) {
		d := readyProbe(t)
		var out bytes.Buffer
		if err := d.Execute(context.Background(), engine.Args{"probe", "help"}, &out); err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{"Probe Commands:\n", "probe ab\n", "probe list\n", "-----\n", "probe help\n"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("help output missing %q:\n%s", want, out.String())
			}
		}
	})
}

func TestExecuteMultiplicity(t *testing.T) {
	d := readyProbe(t)
	out := newWriteRecorder()
	done := make(chan error, 1)
	go func() {
		done <- d.Execute(context.Background(), engine.Args{"probe", "list"}, out)
	}()

	if got := string(<-d.Outbound()); got != string(nmea.Frame("LS")) {
		t.Fatalf("unexpected frame %q", got)
	}

	d.Feed(frame("NOTE", "first"))
	if got := out.next(t); got != "Note: first\n" {
		t.Errorf("iteration 1 output %q", got)
	}
	d.Feed(frame("NOTE", "second"))
	if got := out.next(t); got != "Note: second\n" {
		t.Errorf("iteration 2 output %q", got)
	}
	if got := out.next(t); got != engine.NoResponseText {
		t.Errorf("iteration 3 output %q", got)
	}

	if err := <-done; err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	expectNoFrame(t, d)
	if len(out.all) != 3 {
		t.Errorf("expected 3 outputs, got %d", len(out.all))
	}
}

type scriptedKeys struct {
	calls  atomic.Int32
	change int32
}

func (k *scriptedKeys) Presses() uint64 {
	if k.calls.Add(1) > k.change {
		return 1
	}
	return 0
}

func TestExecuteRepeat(t *testing.T) {
	t.Run("Repeats until a key press is seen", func(t *testing.T) {
		d := readyProbe(t)
		keys := &scriptedKeys{change: 2}
		var out bytes.Buffer

		err := d.Execute(context.Background(), engine.Args{"probe", "help"}, &out, engine.Repeat(keys))
		if err != nil {
			t.Fatal(err)
		}
		if n := strings.Count(out.String(), "Probe Commands:"); n != 2 {
			t.Errorf("expected 2 cycles, got %d", n)
		}
	})

	t.Run("Stops when the context ends", func(t *testing.T) {
		d := readyProbe(t)
		keys := &scriptedKeys{change: 1 << 30}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		err := d.Execute(ctx, engine.Args{"probe", "help"}, &bytes.Buffer{}, engine.Repeat(keys))
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected context.DeadlineExceeded, got %v", err)
		}
	})
}
