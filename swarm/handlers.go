package swarm

import (
	"strings"
	"time"

	"i4.energy/across/qube/engine"
	"i4.energy/across/qube/nmea"
)

// Response-ready bits, one per reply type. The bit order matches the
// firmware command numbering.
const (
	FlagGetConfig engine.Flag = 1 << iota
	FlagDateTime
	FlagVersion
	FlagGPSJam
	FlagGeo
	FlagGPIO
	FlagGPSFix
	FlagPowerOff
	FlagPowerStatus
	FlagRxData
	FlagRestart
	FlagRxTest
	FlagStatus
	FlagTxData
	FlagRxMessages
	FlagTxMessages
	FlagSleep
)

// RSSIThreshold is the background RSSI (dBm) at or below which the channel
// is quiet enough to transmit.
const RSSIThreshold = -93

const epochLayout = "Mon 2006-01-02 15:04:05 MST"

func routes() []engine.Route[Model] {
	return []engine.Route[Model]{
		{Tag: "RT", Handle: handleRT},
		{Tag: "GN", Handle: handleGN},
		{Tag: "GJ", Handle: handleGJ},
		{Tag: "DT", Handle: handleDT},
		{Tag: "FV", Handle: handleFV},
		{Tag: "CS", Handle: handleCS},
		{Tag: "GP", Handle: handleGP},
		{Tag: "GS", Handle: handleGS},
		{Tag: "PO", Handle: handlePO},
		{Tag: "PW", Handle: handlePW},
		{Tag: "RS", Handle: handleRS},
		{Tag: "SL", Handle: handleSL},
		{Tag: "MM", Handle: handleMM},
		{Tag: "MT", Handle: handleMT},
		{Tag: "RD", Handle: handleRD},
		{Tag: "TILE", Handle: handleStatus},
		{Tag: "M138", Handle: handleStatus},
		{Tag: "TD", Handle: handleTD},
	}
}

func field(payload string, i int) (string, bool) {
	return nmea.Field(payload, i, nmea.MaxFieldLen)
}

func atoi(s string) int {
	return int(nmea.Int(s))
}

// digits reads s[from:to] as a number, treating missing characters as absent.
func digits(s string, from, to int) int {
	if from >= len(s) {
		return 0
	}
	return atoi(s[from:min(to, len(s))])
}

func epochText(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(epochLayout)
}

// counted applies the OK and error cases shared by most replies and reports
// whether the payload still needs decoding.
func counted(c *Counters, payload string) (nmea.Kind, bool) {
	kind := nmea.Classify(payload)
	switch kind {
	case nmea.KindOK:
		c.OK++
		return kind, false
	case nmea.KindError:
		c.Err++
		return kind, false
	}
	return kind, true
}

func handleRT(s nmea.Sentence, m *Model) engine.Flag {
	r := &m.RT
	r.Rx++
	kind, more := counted(&r.Counters, s.Payload)
	if !more {
		return FlagRxTest
	}
	if kind == nmea.KindValue {
		if strings.HasPrefix(s.Payload, "R") {
			r.BackgroundRSSI = atoi(nmea.Value(s.Payload, "RSSI"))
		} else {
			r.Rate = atoi(s.Payload)
		}
		return FlagRxTest
	}

	if f, ok := field(s.Payload, 0); ok {
		r.RSSI = atoi(nmea.Value(f, "RSSI"))
	}
	if f, ok := field(s.Payload, 1); ok {
		r.SNR = atoi(nmea.Value(f, "SNR"))
	}
	if f, ok := field(s.Payload, 2); ok {
		r.FDev = atoi(nmea.Value(f, "FDEV"))
	}
	if f, ok := field(s.Payload, 3); ok {
		ts := nmea.Value(f, "TS")
		// a new timestamp means a new satellite packet
		if r.UTC != "" && r.UTC != ts {
			r.SatRx++
		}
		r.UTC = ts
	}
	if f, ok := field(s.Payload, 4); ok {
		r.SatID = nmea.Value(f, "DI")
	}
	return FlagRxTest
}

func handleGN(s nmea.Sentence, m *Model) engine.Flag {
	g := &m.GN
	g.Rx++
	kind, more := counted(&g.Counters, s.Payload)
	switch {
	case !more:
	case kind == nmea.KindValue:
		g.Rate = atoi(s.Payload)
	default:
		if f, ok := field(s.Payload, 0); ok {
			g.Latitude = nmea.Float(f)
		}
		if f, ok := field(s.Payload, 1); ok {
			g.Longitude = nmea.Float(f)
		}
		if f, ok := field(s.Payload, 2); ok {
			g.Altitude = nmea.Float(f)
		}
		if f, ok := field(s.Payload, 3); ok {
			g.Course = nmea.Float(f)
		}
		if f, ok := field(s.Payload, 4); ok {
			g.Speed = nmea.Float(f)
		}
	}
	return FlagGeo
}

func handleGJ(s nmea.Sentence, m *Model) engine.Flag {
	j := &m.GJ
	j.Rx++
	kind, more := counted(&j.Counters, s.Payload)
	switch {
	case !more:
	case kind == nmea.KindValue:
		j.Rate = atoi(s.Payload)
	default:
		if f, ok := field(s.Payload, 0); ok {
			j.Spoof = SpoofState(atoi(f))
		}
		if f, ok := field(s.Payload, 1); ok {
			j.Jamming = atoi(f)
		}
	}
	return FlagGPSJam
}

func handleDT(s nmea.Sentence, m *Model) engine.Flag {
	d := &m.DT
	d.Rx++
	kind, more := counted(&d.Counters, s.Payload)
	switch {
	case kind == nmea.KindError:
		d.Cause = nmea.Cause(s.Payload)
	case !more:
	case kind == nmea.KindValue:
		d.Rate = atoi(s.Payload)
	default:
		// YYYYMMDDhhmmss
		if f, ok := field(s.Payload, 0); ok {
			d.Year = digits(f, 0, 4)
			d.Month = digits(f, 4, 6)
			d.Day = digits(f, 6, 8)
			d.Hour = digits(f, 8, 10)
			d.Minute = digits(f, 10, 12)
			d.Second = digits(f, 12, 14)
		}
		if f, ok := field(s.Payload, 1); ok {
			d.Flag = f[0]
		}
	}
	return FlagDateTime
}

func handleFV(s nmea.Sentence, m *Model) engine.Flag {
	v := &m.FV
	v.Rx++
	if nmea.Classify(s.Payload) == nmea.KindError {
		v.Err++
	} else {
		v.Version = s.Payload
	}
	return FlagVersion
}

func handleCS(s nmea.Sentence, m *Model) engine.Flag {
	c := &m.CS
	c.Rx++
	if nmea.Classify(s.Payload) == nmea.KindError {
		c.Err++
		return FlagGetConfig
	}
	if f, ok := field(s.Payload, 0); ok {
		c.DeviceID = nmea.Value(f, "DI")
	}
	if f, ok := field(s.Payload, 1); ok {
		c.DeviceName = nmea.Value(f, "DN")
	}
	return FlagGetConfig
}

func handleGP(s nmea.Sentence, m *Model) engine.Flag {
	g := &m.GP
	g.Rx++
	if _, more := counted(&g.Counters, s.Payload); more {
		g.Mode = GPIOMode(atoi(s.Payload))
	}
	return FlagGPIO
}

func handleGS(s nmea.Sentence, m *Model) engine.Flag {
	g := &m.GS
	g.Rx++
	kind, more := counted(&g.Counters, s.Payload)
	switch {
	case !more:
	case kind == nmea.KindValue:
		g.Rate = atoi(s.Payload)
	default:
		if f, ok := field(s.Payload, 0); ok {
			g.HDOP = atoi(f)
		}
		if f, ok := field(s.Payload, 1); ok {
			g.VDOP = atoi(f)
		}
		if f, ok := field(s.Payload, 2); ok {
			g.Satellites = atoi(f)
		}
		if f, ok := field(s.Payload, 3); ok {
			g.Unused = atoi(f)
		}
		if f, ok := field(s.Payload, 4); ok {
			if t := ParseFixType(f[:min(2, len(f))]); t != FixUnknown {
				g.Type = t
			}
		}
	}
	return FlagGPSFix
}

func handlePO(s nmea.Sentence, m *Model) engine.Flag {
	m.PO.Rx++
	counted(&m.PO, s.Payload)
	return FlagPowerOff
}

func handlePW(s nmea.Sentence, m *Model) engine.Flag {
	p := &m.PW
	p.Rx++
	kind, more := counted(&p.Counters, s.Payload)
	switch {
	case !more:
	case kind == nmea.KindValue:
		p.Rate = atoi(s.Payload)
	default:
		for i := range p.Unused {
			if f, ok := field(s.Payload, i); ok {
				p.Unused[i] = nmea.Float(f)
			}
		}
		if f, ok := field(s.Payload, 4); ok {
			p.Temperature = nmea.Float(f)
		}
	}
	return FlagPowerStatus
}

func handleRS(s nmea.Sentence, m *Model) engine.Flag {
	m.RS.Rx++
	counted(&m.RS, s.Payload)
	return FlagRestart
}

func handleSL(s nmea.Sentence, m *Model) engine.Flag {
	l := &m.SL
	l.Rx++
	if cause, ok := strings.CutPrefix(s.Payload, "WAKE,"); ok {
		l.Wake++
		l.WakeCause = cause
		return FlagSleep
	}
	if kind, _ := counted(&l.Counters, s.Payload); kind == nmea.KindError {
		l.Cause = nmea.Cause(s.Payload)
	}
	return FlagSleep
}

func handleMM(s nmea.Sentence, m *Model) engine.Flag {
	mm := &m.MM
	mm.Rx++
	if id, ok := strings.CutPrefix(s.Payload, "MARKED,"); ok {
		mm.MarkedID = nmea.Uint(id)
		return FlagRxMessages
	}
	if id, ok := strings.CutPrefix(s.Payload, "DELETED,"); ok {
		mm.DeletedID = nmea.Uint(id)
		return FlagRxMessages
	}

	kind, more := counted(&mm.Counters, s.Payload)
	switch {
	case kind == nmea.KindError:
		mm.Cause = nmea.Cause(s.Payload)
	case !more:
	case kind == nmea.KindValue:
		mm.Count = atoi(s.Payload)
	default:
		if f, ok := field(s.Payload, 0); ok {
			mm.AppID = atoi(nmea.Value(f, "AI"))
		}
		if f, ok := field(s.Payload, 1); ok {
			mm.Raw = f
			mm.Text = nmea.DecodeHexText(f)
		}
		if f, ok := field(s.Payload, 2); ok {
			mm.MsgID = nmea.Uint(f)
		}
		if f, ok := field(s.Payload, 3); ok {
			mm.Epoch = nmea.Int(f)
			mm.Time = epochText(mm.Epoch)
		}
	}
	return FlagRxMessages
}

// handleMT reads the unsent message database replies. A bare number is a
// count or a deleted count depending on the last request issued by the
// txmessages command.
func handleMT(s nmea.Sentence, m *Model) engine.Flag {
	t := &m.MT
	t.Rx++
	switch p := s.Payload; {
	case strings.HasPrefix(p, nmea.OK):
		t.OK++
	case strings.HasPrefix(p, nmea.ERR):
		t.Err++
		t.Cause = strings.TrimPrefix(strings.TrimPrefix(p, nmea.ERR), ",")
	case strings.HasPrefix(p, "DELETED"):
		t.Deleted++
		if t.Count > 0 {
			t.Count--
		}
	case nmea.Classify(p) == nmea.KindValue:
		switch t.pending {
		case requestCount:
			t.Count = atoi(p)
		case requestDelete:
			t.Count = 0
			t.Deleted = atoi(p)
		}
	default:
		t.Raw, t.Text = "", ""
		if f, ok := field(p, 0); ok {
			t.Raw = f
			t.Text = nmea.DecodeHexText(f)
		}
		if f, ok := field(p, 1); ok {
			t.MsgID = nmea.Uint(f)
		}
		if f, ok := field(p, 2); ok {
			t.Epoch = nmea.Int(f)
			t.Time = epochText(t.Epoch)
		}
	}
	return FlagTxMessages
}

func handleRD(s nmea.Sentence, m *Model) engine.Flag {
	r := &m.RD
	r.Rx++
	if f, ok := field(s.Payload, 0); ok {
		r.AppID = atoi(nmea.Value(f, "AI"))
	}
	if f, ok := field(s.Payload, 1); ok {
		r.RSSI = atoi(nmea.Value(f, "RSSI"))
	}
	if f, ok := field(s.Payload, 2); ok {
		r.SNR = atoi(nmea.Value(f, "SNR"))
	}
	if f, ok := field(s.Payload, 3); ok {
		r.FDev = atoi(nmea.Value(f, "FDEV"))
	}
	if f, ok := field(s.Payload, 4); ok {
		r.Raw = f
		r.Text = nmea.DecodeHexText(f)
	}
	return FlagRxData
}

func handleStatus(s nmea.Sentence, m *Model) engine.Flag {
	st := &m.Tile
	st.Rx++
	p := s.Payload
	switch {
	case strings.HasPrefix(p, "BOOT,"):
		st.Boot++
		if cause, ok := field(p, 1); ok {
			st.BootCause = cause
			if cause == "POWERON" || cause == "VERSION" {
				if text, ok := field(p, 2); ok {
					st.BootText = text
				}
			}
		}
	case p == "DATETIME":
		st.DateTimeReports++
	case p == "POSITION":
		st.PositionReports++
	case strings.HasPrefix(p, "DEBUG,"):
		st.DebugText = truncate(strings.TrimPrefix(p, "DEBUG,"))
	case strings.HasPrefix(p, "ERROR,"):
		st.ErrorText = truncate(strings.TrimPrefix(p, "ERROR,"))
	}
	return FlagStatus
}

func truncate(s string) string {
	if len(s) >= nmea.MaxFieldLen {
		return s[:nmea.MaxFieldLen-1]
	}
	return s
}

func handleTD(s nmea.Sentence, m *Model) engine.Flag {
	t := &m.TD
	t.Rx++
	p := s.Payload
	switch {
	case strings.HasPrefix(p, nmea.OK):
		t.OK++
		if f, ok := field(p, 1); ok {
			t.MsgID = nmea.Uint(f)
		}
	case strings.HasPrefix(p, "SENT"):
		t.Sent++
		if f, ok := field(p, 1); ok {
			t.RSSI = atoi(nmea.Value(f, "RSSI"))
		}
		if f, ok := field(p, 2); ok {
			t.SNR = atoi(nmea.Value(f, "SNR"))
		}
		if f, ok := field(p, 3); ok {
			t.FDev = atoi(nmea.Value(f, "FDEV"))
		}
		if f, ok := field(p, 4); ok {
			t.MsgID = nmea.Uint(f)
			m.Sent.Add(SentEntry{MsgID: t.MsgID, DateTime: m.DT.Stamp()})
		}
	case strings.HasPrefix(p, nmea.ErrAt):
		t.Err++
		if cause, ok := field(p, 1); ok {
			t.Cause = cause
			if strings.HasPrefix(cause, "HOLDTIMEEXPIRED") {
				if f, ok := field(p, 2); ok {
					t.MsgID = nmea.Uint(f)
				}
			}
		}
	}
	return FlagTxData
}
