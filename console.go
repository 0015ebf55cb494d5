package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"

	"github.com/peterh/liner"
	"go.uber.org/atomic"

	"i4.energy/across/qube/engine"
)

// Executor runs operator commands. Every engine device implements it.
type Executor interface {
	Execute(ctx context.Context, args engine.Args, w io.Writer, opts ...engine.ExecOption) error
}

// Console is the interactive operator shell. A line is either
// "<device> <command> [args]" or "watch <device> <command> [args]", which
// repeats the command until Ctrl-C.
type Console struct {
	devices map[string]Executor
	out     io.Writer
	logger  *slog.Logger

	// keys counts operator interrupts; a change ends a watched command
	keys *atomic.Uint64
}

// NewConsole creates a console over devices, keyed by their console name.
func NewConsole(devices map[string]Executor, out io.Writer, logger *slog.Logger) *Console {
	return &Console{
		devices: devices,
		out:     out,
		logger:  logger,
		keys:    atomic.NewUint64(0),
	}
}

// Presses implements engine.KeyCounter.
func (c *Console) Presses() uint64 {
	return c.keys.Load()
}

// Press records an operator interrupt.
func (c *Console) Press() {
	c.keys.Inc()
}

// Run prompts for commands until "quit", end of input, or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	shell := liner.NewLiner()
	defer shell.Close()

	shell.SetCtrlCAborts(true)
	shell.SetCompleter(c.complete)

	fmt.Fprintln(c.out, `Type "<device> help" for commands, "quit" or Ctrl-D to leave.`)
	for ctx.Err() == nil {
		line, err := shell.Prompt("> ")
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(c.out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("console: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		shell.AppendHistory(line)

		if quit := c.interruptible(ctx, line); quit {
			return nil
		}
	}
	return nil
}

// interruptible runs one console line with Ctrl-C mapped to a key press.
// A plain command is also cancelled by the interrupt.
func (c *Console) interruptible(ctx context.Context, line string) bool {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)

	watch := strings.HasPrefix(line, "watch ")
	go func() {
		select {
		case <-sig:
			c.Press()
			if !watch {
				cancel()
			}
		case <-ctx.Done():
		}
	}()
	return c.Handle(ctx, line)
}

// Handle runs one console line and reports whether the operator asked to
// quit.
func (c *Console) Handle(ctx context.Context, line string) bool {
	words := strings.Fields(line)
	if len(words) == 0 {
		return false
	}

	var opts []engine.ExecOption
	switch words[0] {
	case "quit", "exit":
		return true
	case "help", "?":
		c.listDevices()
		return false
	case "watch":
		words = words[1:]
		opts = append(opts, engine.Repeat(c))
	}
	if len(words) < 2 {
		fmt.Fprintln(c.out, "usage: [watch] <device> <command> [args]")
		return false
	}

	d, ok := c.devices[words[0]]
	if !ok {
		fmt.Fprintf(c.out, "unknown device %q\n", words[0])
		return false
	}

	args := engine.ParseArgs(strings.Join(words, " "))
	err := d.Execute(ctx, args, c.out, opts...)
	switch {
	case err == nil:
	case errors.Is(err, engine.ErrCommandNotFound):
		fmt.Fprintf(c.out, "unknown command %q, try \"%s help\"\n", args.Command(), words[0])
	case errors.Is(err, engine.ErrInvalidArgument):
		fmt.Fprintf(c.out, "invalid argument, try \"%s %s help\"\n", words[0], args.Command())
	default:
		c.logger.Error("Command failed", "line", line, "error", err)
		fmt.Fprintf(c.out, "error: %v\n", err)
	}
	return false
}

func (c *Console) names() []string {
	names := make([]string, 0, len(c.devices))
	for name := range c.devices {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (c *Console) listDevices() {
	fmt.Fprintln(c.out, "Devices:")
	for _, name := range c.names() {
		fmt.Fprintf(c.out, "  %s\n", name)
	}
}

func (c *Console) complete(line string) (out []string) {
	for _, name := range c.names() {
		if strings.HasPrefix(name, line) {
			out = append(out, name)
		}
	}
	return out
}
