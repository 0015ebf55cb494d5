package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// Diagnostics written in place of a formatted reply.
const (
	NoResponseText    = "no response\n"
	ErrorOccurredText = "error occurred\n"
)

// MaxArgs is the longest argument list the console hands to a device.
const MaxArgs = 4

// Args is an operator argument list: device, command, then up to two
// parameters.
type Args []string

// ParseArgs splits line on whitespace and keeps at most MaxArgs words.
func ParseArgs(line string) Args {
	fields := strings.Fields(line)
	if len(fields) > MaxArgs {
		fields = fields[:MaxArgs]
	}
	return Args(fields)
}

// Arg returns the i-th argument or "".
func (a Args) Arg(i int) string {
	if i < 0 || i >= len(a) {
		return ""
	}
	return a[i]
}

// Command returns the command word.
func (a Args) Command() string {
	return a.Arg(1)
}

// Request is what a Planner sees of an operator command.
type Request[M any] struct {
	Device       string
	Args         Args
	Command      *Command[M]
	Commands     []Command[M]
	LastReceived string
}

// Exchange is the plan for one command cycle.
type Exchange[M any] struct {
	// Text is written before anything is transmitted.
	Text string
	// Frame is queued for the transport when non-empty.
	Frame []byte
	// Wait is the bit to wait for. Zero ends the cycle after Text.
	Wait Flag
	// Multiplicity is the number of replies one request yields.
	Multiplicity int
	Timeout      time.Duration
	Format       Formatter[M]
}

// Planner turns a request into an Exchange. It runs with the device lock
// held and may update the model.
type Planner[M any] func(req *Request[M], m *M) (Exchange[M], error)

// KeyCounter reports operator activity. Any change ends a repeated command.
type KeyCounter interface {
	Presses() uint64
}

type execOptions struct {
	keys KeyCounter
}

// ExecOption modifies a single Execute call.
type ExecOption func(*execOptions)

// Repeat reruns the whole command cycle every RepeatInterval until keys
// changes.
func Repeat(keys KeyCounter) ExecOption {
	return func(o *execOptions) {
		o.keys = keys
	}
}

// Execute runs an operator command against the device and writes the
// operator text to w. Every reply iteration is written with a single Write.
//
// Timeouts and aborted waits are reported as text in w, not as errors.
func (d *Device[M]) Execute(ctx context.Context, args Args, w io.Writer, opts ...ExecOption) error {
	if d.lifecycle.Is(StateNotStarted) {
		return ErrNotInitialized
	}
	cmd := d.lookup(args.Command())
	if cmd == nil {
		return fmt.Errorf("%w: %q", ErrCommandNotFound, args.Command())
	}

	var o execOptions
	for _, opt := range opts {
		opt(&o)
	}

	var seen uint64
	if o.keys != nil {
		seen = o.keys.Presses()
	}

	for {
		if err := d.cycle(ctx, cmd, args, w); err != nil {
			return err
		}
		if o.keys == nil {
			return nil
		}

		timer := time.NewTimer(d.repeatInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		if o.keys.Presses() != seen {
			return nil
		}
	}
}

func (d *Device[M]) lookup(name string) *Command[M] {
	if name == "" {
		return nil
	}
	for i := range d.commands {
		c := &d.commands[i]
		if c.Separator {
			continue
		}
		if strings.HasPrefix(name, c.Name) {
			return c
		}
	}
	return nil
}

func (d *Device[M]) cycle(ctx context.Context, cmd *Command[M], args Args, w io.Writer) error {
	plan := cmd.Plan
	if plan == nil {
		plan = Template[M]
	}

	d.mu.Lock()
	req := &Request[M]{
		Device:       d.name,
		Args:         args,
		Command:      cmd,
		Commands:     d.commands,
		LastReceived: d.lastReceived,
	}
	ex, err := plan(req, &d.model)
	d.mu.Unlock()
	if err != nil {
		return err
	}

	if ex.Text != "" {
		if _, err := io.WriteString(w, ex.Text); err != nil {
			return err
		}
	}
	if len(ex.Frame) > 0 {
		if err := d.Enqueue(ctx, ex.Frame); err != nil {
			return err
		}
		d.logger.Debug("Command queued", "command", cmd.Name, "frame", string(ex.Frame))
	}
	if ex.Wait == 0 || ex.Format == nil {
		return nil
	}

	timeout := ex.Timeout
	if timeout <= 0 {
		timeout = d.timeout
	}

	var buf bytes.Buffer
	for i := 0; i < max(1, ex.Multiplicity); i++ {
		buf.Reset()
		got, err := d.signals.Wait(ctx, ex.Wait, timeout)
		switch {
		case err != nil:
			d.metrics.waited(d.name, outcomeAborted)
			buf.WriteString(ErrorOccurredText)
		case got == 0:
			d.metrics.waited(d.name, outcomeTimeout)
			buf.WriteString(NoResponseText)
		default:
			d.metrics.waited(d.name, outcomeAnswered)
			d.mu.Lock()
			ex.Format(&buf, &d.model)
			d.mu.Unlock()
		}
		if _, werr := w.Write(buf.Bytes()); werr != nil {
			return werr
		}
		if err != nil {
			// the context is gone, later waits would fail the same way
			return nil
		}
	}
	return nil
}

// Template is the default Planner. Parameterized commands answer
// "<command> help" with their usage text. Reply-only commands transmit
// nothing and wait for the device's next report.
func Template[M any](req *Request[M], _ *M) (Exchange[M], error) {
	c := req.Command
	if c.Wire == nil {
		return Exchange[M]{Text: c.Title}, nil
	}
	if len(req.Args) == 3 && req.Args.Arg(2) == "help" && c.Wire.HasParam {
		return Exchange[M]{Text: c.Usage}, nil
	}

	ex := Exchange[M]{
		Text:         c.Title,
		Wait:         c.Wire.Flag,
		Multiplicity: 1,
		Timeout:      c.Wire.Timeout,
		Format:       c.Format,
	}
	switch c.Wire.Direction {
	case RequestReply:
		ex.Frame = c.Wire.Frame(req.Args.Arg(2))
	case RequestOnly:
		ex.Frame = c.Wire.Frame(req.Args.Arg(2))
		ex.Wait = 0
	}
	return ex, nil
}

// Help returns a Planner that lists the command table under a banner.
func Help[M any](title string) Planner[M] {
	return func(req *Request[M], _ *M) (Exchange[M], error) {
		var b strings.Builder
		b.WriteString("************************\n")
		fmt.Fprintf(&b, "%s Commands:\n", title)
		b.WriteString("************************\n")
		for _, c := range req.Commands {
			if c.Separator {
				b.WriteString(c.Name + "\n")
				continue
			}
			fmt.Fprintf(&b, "%s %s\n", req.Device, c.Name)
		}
		return Exchange[M]{Text: b.String()}, nil
	}
}
