package swarm

import (
	"fmt"
	"io"
)

func celsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

func formatConfig(w io.Writer, m *Model) {
	fmt.Fprintf(w, "Device ID: %s\n"+
		"Device Name: %s\n"+
		"-----------------\n"+
		"Rx Count: %d\n"+
		"Error Count: %d\n"+
		"\n",
		m.CS.DeviceID, m.CS.DeviceName, m.CS.Rx, m.CS.Err)
}

func formatDateTime(w io.Writer, m *Model) {
	d := &m.DT
	flag := d.Flag
	if flag == 0 {
		flag = ' '
	}
	fmt.Fprintf(w, "Date/Time: %s\n"+
		"Flag: %c\n"+
		"-----------------------------------\n"+
		"Rx Count: %d\n"+
		"OK Count: %d\n"+
		"Error Count: %d\n"+
		"Error Cause: %s\n"+
		"Rate: %d\n"+
		"\n",
		d.Stamp(), flag, d.Rx, d.OK, d.Err, d.Cause, d.Rate)
}

func formatVersion(w io.Writer, m *Model) {
	fmt.Fprintf(w, "Firmware Version: %s\n"+
		"---------------------\n"+
		"Rx Count: %d\n"+
		"Error Count: %d\n"+
		"\n",
		m.FV.Version, m.FV.Rx, m.FV.Err)
}

func formatGPSJam(w io.Writer, m *Model) {
	j := &m.GJ
	fmt.Fprintf(w, "Jamming Level: %d\n"+
		"Spoof State: %d, %s\n"+
		"---------------------\n"+
		"Rx Count: %d\n"+
		"OK Count: %d\n"+
		"Error Count: %d\n"+
		"Rate: %d\n"+
		"\n",
		j.Jamming, j.Spoof, j.Spoof, j.Rx, j.OK, j.Err, j.Rate)
}

func formatGeo(w io.Writer, m *Model) {
	g := &m.GN
	fmt.Fprintf(w, "Latitude: %f\n"+
		"Longitude: %f\n"+
		"Altitude: %f\n"+
		"Course: %f\n"+
		"Speed: %f\n"+
		"--------------\n"+
		"Rx Count: %d\n"+
		"OK Count: %d\n"+
		"Error Count: %d\n"+
		"Rate: %d\n"+
		"\n",
		g.Latitude, g.Longitude, g.Altitude, g.Course, g.Speed, g.Rx, g.OK, g.Err, g.Rate)
}

func formatGPIO(w io.Writer, m *Model) {
	g := &m.GP
	fmt.Fprintf(w, "Mode: %d, %s\n"+
		"------------\n"+
		"Rx Count: %d\n"+
		"OK Count: %d\n"+
		"Error Count: %d\n"+
		"\n",
		int(g.Mode), g.Mode, g.Rx, g.OK, g.Err)
}

func formatGPSFix(w io.Writer, m *Model) {
	g := &m.GS
	fmt.Fprintf(w, "HDOP: %d\n"+
		"VDOP: %d\n"+
		"GNSS Satellites: %d\n"+
		"Fix: %s, %s\n"+
		"-------------------\n"+
		"Rx Count: %d\n"+
		"OK Count: %d\n"+
		"Error Count: %d\n"+
		"Rate Count: %d\n"+
		"\n",
		g.HDOP, g.VDOP, g.Satellites, g.Type.Code(), g.Type, g.Rx, g.OK, g.Err, g.Rate)
}

func writeCounters(w io.Writer, c *Counters) {
	fmt.Fprintf(w, "Rx Count: %d\n"+
		"OK Count: %d\n"+
		"Error Count: %d\n"+
		"\n",
		c.Rx, c.OK, c.Err)
}

func formatPowerOff(w io.Writer, m *Model) {
	writeCounters(w, &m.PO)
}

func formatRestart(w io.Writer, m *Model) {
	writeCounters(w, &m.RS)
}

func formatPowerStatus(w io.Writer, m *Model) {
	p := &m.PW
	fmt.Fprintf(w, "Temperature: %3.1f*C, %3.1f*F\n"+
		"-----------------------------\n"+
		"Rx Count: %d\n"+
		"OK Count: %d\n"+
		"Error Count: %d\n"+
		"Rate: %d\n"+
		"\n",
		p.Temperature, celsiusToFahrenheit(p.Temperature), p.Rx, p.OK, p.Err, p.Rate)
}

func formatRxData(w io.Writer, m *Model) {
	r := &m.RD
	fmt.Fprintf(w, "App ID: %d\n"+
		"RSSI: %d\n"+
		"SNR: %d\n"+
		"FDEV: %d\n"+
		"Raw Data: %s\n"+
		"Decoded: %s\n"+
		"--------------\n"+
		"Rx Count: %d\n"+
		"\n",
		r.AppID, r.RSSI, r.SNR, r.FDev, r.Raw, r.Text, r.Rx)
}

func formatRxTest(w io.Writer, m *Model) {
	r := &m.RT
	fmt.Fprintf(w, "RSSI Sat: %d\n"+
		"SNR: %d\n"+
		"FDEV: %d\n"+
		"UTC Time: %s\n"+
		"Sat ID: %s\n"+
		"Background RSSI: %d\n"+
		"-------------------\n"+
		"Rx Count: %d\n"+
		"Sat Rx Count: %d\n"+
		"OK Count: %d\n"+
		"ERR Count: %d\n"+
		"Rate: %d\n"+
		"\n",
		r.RSSI, r.SNR, r.FDev, r.UTC, r.SatID, r.BackgroundRSSI, r.Rx, r.SatRx, r.OK, r.Err, r.Rate)
}

func formatStatus(w io.Writer, m *Model) {
	s := &m.Tile
	fmt.Fprintf(w, "Rx Count: %d\n"+
		"BOOT Count: %d\n"+
		"DATETIME Count: %d\n"+
		"POSITION Count: %d\n"+
		"BOOT Cause: %s\n"+
		"Boot Text: %s\n"+
		"Debug Text: %s\n"+
		"Error Text: %s\n"+
		"\n",
		s.Rx, s.Boot, s.DateTimeReports, s.PositionReports, s.BootCause, s.BootText, s.DebugText, s.ErrorText)
}

func formatSleep(w io.Writer, m *Model) {
	s := &m.SL
	fmt.Fprintf(w, "WAKE Count: %d\n"+
		"Wake Cause: %s\n"+
		"---------------\n"+
		"Rx Count: %d\n"+
		"OK Count: %d\n"+
		"ERR Count: %d\n"+
		"Error Cause: %s\n"+
		"\n",
		s.Wake, s.WakeCause, s.Rx, s.OK, s.Err, s.Cause)
}

func formatTxData(w io.Writer, m *Model) {
	t := &m.TD
	fmt.Fprintf(w, "MSG ID: %d\n"+
		"RSSI_SAT: %d\n"+
		"SNR: %d\n"+
		"FDEV: %d\n"+
		"Sent Counter: %d\n"+
		"---------------\n"+
		"Rx Count: %d\n"+
		"OK Count: %d\n"+
		"ERR Count: %d\n"+
		"Error Cause: %s\n"+
		"\n",
		t.MsgID, t.RSSI, t.SNR, t.FDev, t.Sent, t.Rx, t.OK, t.Err, t.Cause)
}

func formatTxMessages(w io.Writer, m *Model) {
	t := &m.MT
	fmt.Fprintf(w, "MSG ID: %d\n"+
		"Epoch Seconds: %d, %s\n"+
		"Unsent Messages: %d\n"+
		"Raw data: %s\n"+
		"Msg data: %s\n"+
		"DELETED count: %d\n"+
		"---------------\n"+
		"Rx Count: %d\n"+
		"OK Count: %d\n"+
		"ERR Count: %d\n"+
		"Error Cause: %s\n"+
		"\n",
		t.MsgID, t.Epoch, t.Time, t.Count, t.Raw, t.Text, t.Deleted, t.Rx, t.OK, t.Err, t.Cause)
}

func formatRxMessages(w io.Writer, m *Model) {
	r := &m.MM
	fmt.Fprintf(w, "Msg count: %d\n"+
		"App ID: %d\n"+
		"Msg ID: %d\n"+
		"Raw data: %s\n"+
		"Msg data: %s\n"+
		"Epoch Seconds: %d, %s\n"+
		"DELETED MSG ID: %d\n"+
		"MARKED MSG ID: %d\n"+
		"---------------\n"+
		"Rx Count: %d\n"+
		"OK Count: %d\n"+
		"ERR Count: %d\n"+
		"Error Cause: %s\n"+
		"\n",
		r.Count, r.AppID, r.MsgID, r.Raw, r.Text, r.Epoch, r.Time, r.DeletedID, r.MarkedID, r.Rx, r.OK, r.Err, r.Cause)
}
