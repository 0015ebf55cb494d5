package gnss

import (
	"i4.energy/across/qube/engine"
	"i4.energy/across/qube/nmea"
)

// FlagUpdate is asserted by every handled report.
const FlagUpdate engine.Flag = 1

func routes() []engine.Route[Model] {
	return []engine.Route[Model]{
		{Tag: "GPGGA", Handle: handleGGA},
		{Tag: "GNGSA", Handle: handleGSA},
		{Tag: "GLGSV", Handle: handleGSV},
		{Tag: "GPGSV", Handle: handleGSV},
		{Tag: "GPVTG", Handle: handleVTG},
		{Tag: "GPRMC", Handle: handleRMC},
	}
}

// fields returns the first n fields of payload. Missing and empty fields
// are returned as "".
func fields(payload string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i], _ = nmea.Field(payload, i, nmea.MaxFieldLen)
	}
	return out
}

func atoi(s string) int {
	return int(nmea.Int(s))
}

func atof32(s string) float32 {
	return float32(nmea.Float(s))
}

func char(s string) byte {
	if s == "" {
		return 0
	}
	return s[0]
}

// hhmmss splits a packed decimal time or date into its three parts.
func hhmmss(raw int) (int, int, int) {
	hi := raw / 10000
	mid := (raw - hi*10000) / 100
	return hi, mid, raw - (hi*10000 + mid*100)
}

func handleGGA(s nmea.Sentence, m *Model) engine.Flag {
	f := fields(s.Payload, 12)
	g := &m.GGA
	g.UTC.Raw = atoi(f[0])
	g.UTC.Hour, g.UTC.Minute, g.UTC.Second = hhmmss(g.UTC.Raw)
	g.Latitude = nmea.Float(f[1])
	g.NS = char(f[2])
	g.Longitude = nmea.Float(f[3])
	g.EW = char(f[4])
	if q := atoi(f[5]); q >= 0 && q < len(qualities) {
		g.Quality = Quality(q)
	}
	g.Sats = atoi(f[6])
	g.HDOP = atof32(f[7])
	g.Altitude = atof32(f[8])
	g.AltUnit = char(f[9])
	g.Geoid = atoi(f[10])
	g.GeoidUnit = char(f[11])
	g.Checksum = s.Checksum
	return FlagUpdate
}

func handleGSA(s nmea.Sentence, m *Model) engine.Flag {
	f := fields(s.Payload, 17)
	g := &m.GSA
	g.Constellation = s.Tag
	g.Mode = char(f[0])
	g.Dimension = atoi(f[1])
	for i := range g.PRN {
		g.PRN[i] = atoi(f[2+i])
	}
	g.PDOP = atof32(f[14])
	g.HDOP = atof32(f[15])
	g.VDOP = atof32(f[16])
	g.Checksum = s.Checksum
	return FlagUpdate
}

// handleGSV appends the satellites of one GSV message. The first message of
// a group clears the list.
func handleGSV(s nmea.Sentence, m *Model) engine.Flag {
	f := fields(s.Payload, 3+satsPerGSV*4)
	v := &m.GSV
	if atoi(f[1]) == 1 {
		v.reset()
	}
	v.Constellation = s.Tag
	v.Messages = atoi(f[0])
	v.Number = atoi(f[1])
	v.Total = atoi(f[2])

	slot := v.current
	for i := range satsPerGSV {
		if slot >= MaxSatellites {
			break
		}
		base := 3 + i*4
		sat := Satellite{
			PRN:       atoi(f[base]),
			Elevation: atoi(f[base+1]),
			Azimuth:   atoi(f[base+2]),
			CN0:       atoi(f[base+3]),
		}
		v.Sats[slot] = sat
		if sat.PRN != 0 {
			v.current++
		}
		slot++
	}
	v.Checksum = s.Checksum
	return FlagUpdate
}

func handleVTG(s nmea.Sentence, m *Model) engine.Flag {
	f := fields(s.Payload, 9)
	t := &m.VTG
	t.Constellation = s.Tag
	t.True = atof32(f[0])
	t.Magnetic = atof32(f[2])
	t.Knots = atof32(f[4])
	t.KPH = atof32(f[6])
	t.Mode = char(f[8])
	t.Checksum = s.Checksum
	return FlagUpdate
}

func handleRMC(s nmea.Sentence, m *Model) engine.Flag {
	f := fields(s.Payload, 12)
	d := &m.RMC
	d.Raw = atoi(f[8])
	d.Day, d.Month, d.Year = hhmmss(d.Raw)
	return FlagUpdate
}
