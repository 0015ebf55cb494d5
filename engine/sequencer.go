package engine

// NextStartupFrame returns the next startup frame in table order. Once every
// startup command has been handed out the device becomes ready and every
// later call returns (nil, true). A device that was never initialized is
// initialized by the first call.
//
// The caller writes each frame to the transport before asking for the next.
func (d *Device[M]) NextStartupFrame() ([]byte, bool) {
	if d.lifecycle.Is(StateReady) {
		return nil, true
	}
	if err := d.Initialize(); err != nil {
		d.logger.Error("Failed to initialize device", "error", err)
		return nil, false
	}

	d.mu.Lock()
	for d.cursor < len(d.commands) {
		c := &d.commands[d.cursor]
		d.cursor++
		if c.Startup && c.Wire != nil {
			frame := c.Wire.Frame("")
			d.mu.Unlock()
			d.logger.Debug("Startup frame", "command", c.Name, "frame", string(frame))
			return frame, false
		}
	}
	d.mu.Unlock()

	if err := advance(d.lifecycle, eventStartupDone); err != nil {
		d.logger.Error("Failed to complete startup", "error", err)
		return nil, false
	}
	return nil, true
}
