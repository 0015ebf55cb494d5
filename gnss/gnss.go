// Package gnss decodes the standard NMEA reports of a GNSS receiver. The
// receiver is never commanded; the operator can only read the summary.
package gnss

import (
	"fmt"
	"strings"

	"i4.energy/across/qube/engine"
)

// DefaultName is the console name of the receiver.
const DefaultName = "gps"

// Device is a GNSS receiver bound to the engine.
type Device struct {
	*engine.Device[Model]
}

// New builds a receiver device. The device name defaults to DefaultName.
func New(config engine.DeviceConfig) (*Device, error) {
	if config.Name == "" {
		config.Name = DefaultName
	}
	summary := func(_ *engine.Request[Model], m *Model) (engine.Exchange[Model], error) {
		return engine.Exchange[Model]{Text: Summary(m)}, nil
	}
	help := engine.Help[Model]("GPS")
	d, err := engine.NewDevice(engine.Spec[Model]{
		Routes: routes(),
		Commands: []engine.Command[Model]{
			{Name: "summary", Plan: summary},
			{Name: "?", Plan: help},
			{Name: "help", Plan: help},
		},
	}, config)
	if err != nil {
		return nil, fmt.Errorf("gnss: %w", err)
	}
	return &Device{Device: d}, nil
}

// TimeUpdate advances the reported time by one second. It is driven by the
// receiver's pulse-per-second output between GGA reports.
func (d *Device) TimeUpdate() {
	d.WithModel((*Model).tick)
}

// Summary renders the receiver state held by d.
func (d *Device) Summary() string {
	var out string
	d.WithModel(func(m *Model) {
		out = Summary(m)
	})
	return out
}

// Snapshot returns a copy of the model.
func (d *Device) Snapshot() Model {
	var m Model
	d.WithModel(func(cur *Model) {
		m = *cur
	})
	return m
}

var dimensions = [...]string{"", "Fix not available", "2D", "3D"}

func printable(c byte) byte {
	if c == 0 {
		return ' '
	}
	return c
}

// degrees splits an NMEA ddmm.mmmm coordinate into whole degrees and
// minutes.
func degrees(v float64) (int, float32) {
	deg := int(v / 100)
	return deg, float32(v - float64(deg)*100)
}

// Summary renders m as operator text.
func Summary(m *Model) string {
	var b strings.Builder

	latDeg, latMin := degrees(m.GGA.Latitude)
	lonDeg, lonMin := degrees(m.GGA.Longitude)

	dimension := ""
	if d := m.GSA.Dimension; d >= 0 && d < len(dimensions) {
		dimension = dimensions[d]
	}

	active := "GPS Act Sats  "
	for i, prn := range m.GSA.PRN {
		if prn > 0 {
			active += fmt.Sprintf("%d: %d ", i+1, prn)
		}
	}

	b.WriteString("----------------------------------------------------\n" +
		"\t\t\tGPS Info\n" +
		"----------------------------------------------------\n")
	fmt.Fprintf(&b, "GPS FIXED DATA\n"+
		"Fix Quality: %s\n"+
		"Date/Time: %2d/%2d/%2d %02d:%02d:%02d\n"+
		"Lat/Lon: %dd %09.6f' %c %dd %09.6f' %c\n"+
		"Number Satellites: %2d\n"+
		"HDOP: %3.1f\n"+
		"Altitude: %3.1f %c\n"+
		"Height of geoid above WGS84 ellipsoid: %d %c\n"+
		"\n",
		m.GGA.Quality,
		m.RMC.Month, m.RMC.Day, m.RMC.Year, m.GGA.UTC.Hour, m.GGA.UTC.Minute, m.GGA.UTC.Second,
		latDeg, latMin, printable(m.GGA.NS), lonDeg, lonMin, printable(m.GGA.EW),
		m.GGA.Sats, m.GGA.HDOP,
		m.GGA.Altitude, printable(m.GGA.AltUnit),
		m.GGA.Geoid, printable(m.GGA.GeoidUnit))

	fmt.Fprintf(&b, "GNSS DOP AND ACTIVE SATELLITES\n"+
		"Mode (Man/Auto): %c, %s\n"+
		"%s\n"+
		"PDOP: %3.1f\n"+
		"HDOP: %3.1f\n"+
		"VDOP: %3.1f\n"+
		"\n",
		printable(m.GSA.Mode), dimension, active, m.GSA.PDOP, m.GSA.HDOP, m.GSA.VDOP)

	fmt.Fprintf(&b, "GNSS SATELLITES IN VIEW\nSats in View: %d\n", m.GSV.Total)
	for i := range min(m.GSV.Total, MaxSatellites) {
		s := m.GSV.Sats[i]
		fmt.Fprintf(&b, "%2d) ID: %2d El: %2d Az: %3d SNR: %2d\n", i+1, s.PRN, s.Elevation, s.Azimuth, s.CN0)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "COURSE OVER GROUND AND GROUND SPEED\n"+
		"%5.1f,T\tTrue track made good\n"+
		"%5.1f,M\tMag track made good\n"+
		"%5.1f,N\tGround speed, knots\n"+
		"%5.1f,N\tGround speed, km/hr \n"+
		"Mode (Auto, Diff, Est): %c\n"+
		"\n",
		m.VTG.True, m.VTG.Magnetic, m.VTG.Knots, m.VTG.KPH, printable(m.VTG.Mode))
	return b.String()
}
