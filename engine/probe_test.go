package engine_test

import (
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"i4.energy/across/qube/engine"
	"i4.energy/across/qube/nmea"
)

// probe is a minimal data model used to exercise the engine.
type probe struct {
	A, B  int64
	Note  string
	Notes int
}

const (
	flagAB engine.Flag = 1 << iota
	flagNote
	flagVersion
)

func formatAB(w io.Writer, m *probe) {
	fmt.Fprintf(w, "A=%d B=%d\n", m.A, m.B)
}

func formatNote(w io.Writer, m *probe) {
	fmt.Fprintf(w, "Note: %s\n", m.Note)
}

func probeSpec() engine.Spec[probe] {
	return engine.Spec[probe]{
		Routes: []engine.Route[probe]{
			{Tag: "AB", Handle: func(s nmea.Sentence, m *probe) engine.Flag {
				m.A = nmea.Int(s.Payload)
				time.Sleep(time.Microsecond)
				m.B = m.A
				return flagAB
			}},
			{Tag: "NOTE", Handle: func(s nmea.Sentence, m *probe) engine.Flag {
				m.Note = s.Payload
				m.Notes++
				return flagNote
			}},
			{Tag: "VR", Handle: func(s nmea.Sentence, m *probe) engine.Flag {
				return flagVersion
			}},
		},
		Commands: []engine.Command[probe]{
			{
				Name:    "ab",
				Startup: true,
				Wire:    &engine.Wire{Flag: flagAB, Tag: "AB", HasParam: true, Default: "@"},
				Usage:   "usage: probe ab [@|rate]\n",
				Title:   "AB values:\n",
				Format:  formatAB,
			},
			{
				Name:   "note",
				Wire:   &engine.Wire{Flag: flagNote, Direction: engine.ReplyOnly, Tag: "NOTE"},
				Format: formatNote,
			},
			{
				Name:    "version",
				Startup: true,
				Wire:    &engine.Wire{Flag: flagVersion, Tag: "VR"},
			},
			{
				Name: "list",
				Plan: func(req *engine.Request[probe], m *probe) (engine.Exchange[probe], error) {
					return engine.Exchange[probe]{
						Frame:        nmea.Frame("LS"),
						Wait:         flagNote,
						Multiplicity: 3,
						Format:       formatNote,
					}, nil
				},
			},
			{Name: "-----", Separator: true},
			{Name: "help", Plan: engine.Help[probe]("Probe")},
		},
	}
}

func newProbe(t *testing.T) *engine.Device[probe] {
	t.Helper()
	d, err := engine.NewDevice(probeSpec(), engine.DeviceConfig{
		Name:            "probe",
		ResponseTimeout: 50 * time.Millisecond,
		RepeatInterval:  5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewDevice: %v", err)
	}
	return d
}

func frame(tag, payload string) []byte {
	return nmea.Frame(tag, payload)
}

// writeRecorder publishes every Write call on a channel.
type writeRecorder struct {
	mu     sync.Mutex
	writes chan string
	all    []string
}

func newWriteRecorder() *writeRecorder {
	return &writeRecorder{writes: make(chan string, 16)}
}

func (r *writeRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	r.all = append(r.all, string(p))
	r.mu.Unlock()
	r.writes <- string(p)
	return len(p), nil
}

func (r *writeRecorder) next(t *testing.T) string {
	t.Helper()
	select {
	case s := <-r.writes:
		return s
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for output")
		return ""
	}
}
