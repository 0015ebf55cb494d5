package engine

import "errors"

var (
	// ErrNoDialer is returned when a Link is constructed without a Dialer.
	//
	// This indicates a configuration error. A Dialer is required in order to
	// open the serial line to the device.
	ErrNoDialer = errors.New("no dialer configured")

	// ErrNoEndpoint is returned when a Link is constructed without a device
	// to feed.
	ErrNoEndpoint = errors.New("no endpoint configured")

	// ErrNotInitialized is returned when a command is executed on a Device
	// that has not been initialized.
	ErrNotInitialized = errors.New("device not initialized")

	// ErrAlreadyClosed is returned when Close is called on a Link that has
	// already been closed.
	ErrAlreadyClosed = errors.New("link already closed")

	// ErrLoopRunning is returned when Loop is called while another Loop is
	// still running on the same Link.
	ErrLoopRunning = errors.New("loop already running")

	// ErrCommandNotFound is returned when an operator command matches no
	// entry of the device's command table. Nothing is transmitted.
	ErrCommandNotFound = errors.New("command not found")

	// ErrInvalidArgument is returned when an operator command is recognized
	// but its arguments select no known request.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrFlagCollision is returned by NewDevice when two commands with
	// different wire tags share a response-ready bit.
	//
	// A shared bit would let one reply satisfy a waiter for another.
	ErrFlagCollision = errors.New("response flag used by more than one command")
)
