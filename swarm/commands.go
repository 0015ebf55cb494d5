package swarm

import (
	"fmt"
	"strings"

	"i4.energy/across/qube/engine"
	"i4.energy/across/qube/nmea"
)

type (
	command  = engine.Command[Model]
	exchange = engine.Exchange[Model]
	request  = engine.Request[Model]
)

const separator = "-------------"

func usage(device, cmd, params string) string {
	return fmt.Sprintf("Usage: %s %s %s\n", device, cmd, params)
}

func rateUsage(device, cmd string) string {
	return usage(device, cmd, "[<seconds>|@|?]")
}

// commands builds the operator table for v. device is the name the operator
// types to reach the modem.
func commands(v Variant, device string, hostID int) []command {
	restart := &engine.Wire{Flag: FlagRestart, Tag: "RS"}
	restartUsage := ""
	if v.RestartParam {
		restart.HasParam = true
		restartUsage = usage(device, "restart", "[deletedb|init]")
	}

	return []command{
		{
			Name: "getconfig", Startup: true,
			Wire:   &engine.Wire{Flag: FlagGetConfig, Tag: "CS"},
			Title:  "Configuration settings:\n",
			Format: formatConfig,
		},
		{
			Name: "datetime", Startup: true,
			Wire:   &engine.Wire{Flag: FlagDateTime, Tag: "DT", HasParam: true, Default: "@"},
			Usage:  rateUsage(device, "datetime"),
			Title:  "Date and time:\n",
			Format: formatDateTime,
		},
		{
			Name: "version", Startup: true,
			Wire:   &engine.Wire{Flag: FlagVersion, Tag: "FV"},
			Title:  "Firmware version:\n",
			Format: formatVersion,
		},
		{
			Name:   "gpsjam",
			Wire:   &engine.Wire{Flag: FlagGPSJam, Tag: "GJ", HasParam: true, Default: "@"},
			Usage:  rateUsage(device, "gpsjam"),
			Title:  "GPS jamming and spoofing:\n",
			Format: formatGPSJam,
		},
		{
			Name: "geospatial", Startup: true,
			Wire:   &engine.Wire{Flag: FlagGeo, Tag: "GN", HasParam: true, Default: "@"},
			Usage:  rateUsage(device, "geospatial"),
			Title:  "Geospatial information:\n",
			Format: formatGeo,
		},
		{
			Name:   "gpio",
			Wire:   &engine.Wire{Flag: FlagGPIO, Tag: "GP", HasParam: true, Default: "?"},
			Usage:  usage(device, "gpio", "[<mode 0-10>|?]"),
			Title:  "GPIO1 control:\n",
			Format: formatGPIO,
		},
		{
			Name: "gpsfix", Startup: true,
			Wire:   &engine.Wire{Flag: FlagGPSFix, Tag: "GS", HasParam: true, Default: "@"},
			Usage:  rateUsage(device, "gpsfix"),
			Title:  "GPS fix quality:\n",
			Format: formatGPSFix,
		},
		{
			Name:   "poweroff",
			Wire:   &engine.Wire{Flag: FlagPowerOff, Tag: "PO"},
			Title:  "Power off:\n",
			Format: formatPowerOff,
		},
		{
			Name:   "powerstatus",
			Wire:   &engine.Wire{Flag: FlagPowerStatus, Tag: "PW", HasParam: true, Default: "@"},
			Usage:  rateUsage(device, "powerstatus"),
			Title:  "Power status:\n",
			Format: formatPowerStatus,
		},
		{
			Name:   "rxdata",
			Wire:   &engine.Wire{Flag: FlagRxData, Direction: engine.ReplyOnly, Tag: "RD"},
			Title:  "Waiting for received data:\n",
			Format: formatRxData,
		},
		{
			Name:   "restart",
			Wire:   restart,
			Usage:  restartUsage,
			Title:  "Restart:\n",
			Format: formatRestart,
		},
		{
			Name: "rxtest", Startup: true,
			Wire:   &engine.Wire{Flag: FlagRxTest, Tag: "RT", HasParam: true, Default: "@"},
			Usage:  rateUsage(device, "rxtest"),
			Title:  "Receive test:\n",
			Format: formatRxTest,
		},
		{
			Name:   "status",
			Wire:   &engine.Wire{Flag: FlagStatus, Direction: engine.ReplyOnly, Tag: v.StatusTag},
			Title:  "Waiting for modem status:\n",
			Format: formatStatus,
		},
		{
			Name:   "send",
			Wire:   &engine.Wire{Flag: FlagTxData, Tag: "TD", HasParam: true},
			Usage:  usage(device, "send", "<data>"),
			Title:  "Transmit data:\n",
			Format: formatTxData,
		},
		{
			Name:   "rxmessages",
			Usage:  usage(device, "rxmessages", "count | delete <id> | read oldest|newest|<id>"),
			Title:  "Received messages:\n",
			Format: formatRxMessages,
			Plan:   planRxMessages,
		},
		{
			Name:   "txmessages",
			Usage:  usage(device, "txmessages", "count | list | delete all|<id> | sent"),
			Title:  "Unsent messages:\n",
			Format: formatTxMessages,
			Plan:   planTxMessages,
		},
		{
			Name:   "sleep",
			Usage:  usage(device, "sleep", "<seconds> | <hh:mm:ss> | <yyyy-mm-dd> <hh:mm:ss>"),
			Title:  "Sleep:\n",
			Format: formatSleep,
			Plan:   planSleep,
		},
		{Name: separator, Separator: true},
		{Name: "?", Plan: engine.Help[Model](v.Title)},
		{Name: "help", Plan: engine.Help[Model](v.Title)},
		{Name: "summary", Plan: planSummary(v)},
		{Name: "position", Plan: planPosition(hostID)},
	}
}

func argError(req *request) error {
	return fmt.Errorf("%w: %s %s", engine.ErrInvalidArgument, req.Command.Name, strings.Join(req.Args[2:], " "))
}

func reply(req *request, frame []byte, wait engine.Flag, multiplicity int) exchange {
	return exchange{
		Text:         req.Command.Title,
		Frame:        frame,
		Wait:         wait,
		Multiplicity: multiplicity,
		Format:       req.Command.Format,
	}
}

func planRxMessages(req *request, _ *Model) (exchange, error) {
	if len(req.Args) < 3 {
		return exchange{Text: req.Command.Usage}, nil
	}

	var param string
	switch req.Args.Arg(2) {
	case "count":
		param = "C=*"
	case "delete":
		param = "D=" + req.Args.Arg(3)
	case "read":
		switch which := req.Args.Arg(3); which {
		case "oldest":
			param = "R=O"
		case "newest":
			param = "R=N"
		default:
			param = "R=" + which
		}
	default:
		return exchange{}, argError(req)
	}
	return reply(req, nmea.Frame("MM", param), FlagRxMessages, 1), nil
}

// planTxMessages also records how the next bare count reply is to be read.
func planTxMessages(req *request, m *Model) (exchange, error) {
	if len(req.Args) < 3 {
		return exchange{Text: req.Command.Usage}, nil
	}

	m.MT.pending = requestCount
	multiplicity := 1
	var param string
	switch req.Args.Arg(2) {
	case "count":
		param = "C=U"
	case "list":
		param = "L=U"
		multiplicity = max(1, m.MT.Count)
	case "delete":
		if id := req.Args.Arg(3); id != "all" {
			param = "D=" + id
		} else {
			param = "D=U"
			m.MT.pending = requestDelete
		}
	case "sent":
		return exchange{Text: sentListing(m)}, nil
	default:
		return exchange{}, argError(req)
	}
	return reply(req, nmea.Frame("MT", param), FlagTxMessages, multiplicity), nil
}

func sentListing(m *Model) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d msgs sent, %d pending\n", m.TD.Sent, m.MT.Count)
	if m.TD.Sent > 0 {
		for _, e := range m.Sent.Entries() {
			fmt.Fprintf(&b, "%d: %s\n", e.MsgID, e.DateTime)
		}
	}
	return b.String()
}

func planSleep(req *request, _ *Model) (exchange, error) {
	var param string
	switch len(req.Args) {
	case 3:
		arg := req.Args.Arg(2)
		if arg == "help" {
			return exchange{Text: req.Command.Usage}, nil
		}
		if strings.Contains(arg, ":") {
			param = "U=" + arg
		} else {
			param = "S=" + arg
		}
	case 4:
		param = "U=" + req.Args.Arg(2) + " " + req.Args.Arg(3)
	default:
		return exchange{Text: req.Command.Usage}, nil
	}
	return reply(req, nmea.Frame("SL", param), FlagSleep, 1), nil
}

func planSummary(v Variant) engine.Planner[Model] {
	return func(req *request, m *Model) (exchange, error) {
		return exchange{Text: summary(v, m, req.LastReceived)}, nil
	}
}

func summary(v Variant, m *Model, last string) string {
	const rule = "^^^^^^^^^^^^^^^^^^^^^^^^\n"
	var b strings.Builder
	b.WriteString(rule)
	fmt.Fprintf(&b, "   %s Summary\n", v.Title)
	b.WriteString(rule)
	fmt.Fprintf(&b, "Total Messages Received: %d\n"+
		"Total Satellite Messages: %d\n"+
		"Last Command Received: %s\n"+
		"Total Errors: %d\n"+
		"Device ID: %s\n"+
		"Device Name: %s\n"+
		"Firmware Version: %s\n"+
		"Background RSSI: %d\n"+
		"GPS Lat: %f, Lon: %f, Alt: %f, Crs: %f, Spd: %f\n"+
		"Date/Time: %02d/%02d/%04d %02d:%02d:%02d\n"+
		"\n",
		m.TotalRx(), m.RT.SatRx, last, m.TotalErr(),
		m.CS.DeviceID, m.CS.DeviceName, m.FV.Version, m.RT.BackgroundRSSI,
		m.GN.Latitude, m.GN.Longitude, m.GN.Altitude, m.GN.Course, m.GN.Speed,
		m.DT.Month, m.DT.Day, m.DT.Year, m.DT.Hour, m.DT.Minute, m.DT.Second)
	return b.String()
}

func planPosition(hostID int) engine.Planner[Model] {
	return func(_ *request, m *Model) (exchange, error) {
		return exchange{Text: positionJSON(m, hostID) + "\n"}, nil
	}
}

// positionJSON renders the last position and time in the compact form sent
// over the satellite link.
func positionJSON(m *Model, hostID int) string {
	return fmt.Sprintf(`{"la": %f,"ln": %f,"al": %f,"dt": "%s","h": %d}`,
		m.GN.Latitude, m.GN.Longitude, m.GN.Altitude, m.DT.Stamp(), hostID)
}
