package swarm

import "fmt"

// Counters are kept by every reply record.
type Counters struct {
	Rx  int
	OK  int
	Err int
}

// RxTest is the receive test report ($RT).
type RxTest struct {
	Counters
	SatRx          int
	Rate           int
	BackgroundRSSI int
	RSSI           int
	SNR            int
	FDev           int
	UTC            string
	SatID          string
}

// Geo is the geospatial report ($GN).
type Geo struct {
	Counters
	Rate      int
	Latitude  float64
	Longitude float64
	Altitude  float64
	Course    float64
	Speed     float64
}

// SpoofState is the GPS spoofing indicator reported by $GJ.
type SpoofState int

const (
	SpoofUnknown SpoofState = iota
	SpoofNone
	SpoofIndicated
	SpoofMultiple
)

func (s SpoofState) String() string {
	switch s {
	case SpoofNone:
		return "No spoofing indicated"
	case SpoofIndicated:
		return "Spoofing indicated"
	case SpoofMultiple:
		return "Multiple spoofing indications"
	default:
		return "Spoofing unknown or deactivated"
	}
}

// Jam is the GPS jamming and spoofing report ($GJ).
type Jam struct {
	Counters
	Rate    int
	Jamming int
	Spoof   SpoofState
}

// DateTime is the date and time report ($DT).
type DateTime struct {
	Counters
	Rate   int
	Cause  string
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
	// Flag is 'V' for a valid time and 'I' for an invalid one.
	Flag byte
}

// Stamp renders the date and time as "YYYY-MM-DD hh:mm:ss".
func (d *DateTime) Stamp() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", d.Year, d.Month, d.Day, d.Hour, d.Minute, d.Second)
}

// Firmware is the firmware version report ($FV).
type Firmware struct {
	Counters
	Version string
}

// Identity is the configuration settings report ($CS).
type Identity struct {
	Counters
	DeviceID   string
	DeviceName string
}

// GPIOMode is the configured function of the GPIO1 pin.
type GPIOMode int

var gpioModes = [...]string{
	"Analog, pin is internally disconnected and not used (default)",
	"Input, low-to-high transition exits sleep mode",
	"Input, high-to-low transition exits sleep mode",
	"Output, set low",
	"Output, set high",
	"Output, low indicates messages pending for client",
	"Output, high indicates messages pending for client",
	"Output, low while transmitting. Otherwise output is high",
	"Output, high while transmitting. Otherwise output is low",
	"Output, low indicates in sleep mode. Otherwise output is high",
	"Output, high indicates in sleep mode. Otherwise output is low",
}

func (g GPIOMode) String() string {
	if g < 0 || int(g) >= len(gpioModes) {
		return "Unknown mode"
	}
	return gpioModes[g]
}

// GPIO is the GPIO1 control report ($GP).
type GPIO struct {
	Counters
	Mode GPIOMode
}

// FixType is the GNSS solution type reported by $GS.
type FixType int

const (
	FixUnknown FixType = iota
	FixNone
	FixDeadReckoning
	FixStandalone2D
	FixStandalone3D
	FixDifferential2D
	FixDifferential3D
	FixCombined
	FixTimeOnly
)

var fixTypes = [...]struct{ code, text string }{
	FixUnknown:        {"??", "Unknown fix type"},
	FixNone:           {"NF", "No fix"},
	FixDeadReckoning:  {"DR", "Dead reckoning only solution"},
	FixStandalone2D:   {"G2", "Standalone 2D solution"},
	FixStandalone3D:   {"G3", "Standalone 3D solution"},
	FixDifferential2D: {"D2", "Differential 2D solution"},
	FixDifferential3D: {"D3", "Differential 3D solution"},
	FixCombined:       {"RK", "Combined GNSS + dead reckoning solution"},
	FixTimeOnly:       {"TT", "Time only solution"},
}

// ParseFixType maps a two letter fix code to a FixType.
func ParseFixType(code string) FixType {
	for i, f := range fixTypes {
		if i != int(FixUnknown) && f.code == code {
			return FixType(i)
		}
	}
	return FixUnknown
}

// Code returns the two letter fix code.
func (f FixType) Code() string {
	if f < 0 || int(f) >= len(fixTypes) {
		return fixTypes[FixUnknown].code
	}
	return fixTypes[f].code
}

func (f FixType) String() string {
	if f < 0 || int(f) >= len(fixTypes) {
		return fixTypes[FixUnknown].text
	}
	return fixTypes[f].text
}

// Fix is the GPS fix quality report ($GS).
type Fix struct {
	Counters
	Rate       int
	HDOP       int
	VDOP       int
	Satellites int
	Unused     int
	Type       FixType
}

// Power is the power status report ($PW).
type Power struct {
	Counters
	Rate        int
	Unused      [4]float64
	Temperature float64
}

// Sleep is the sleep mode report ($SL).
type Sleep struct {
	Counters
	Cause     string
	Wake      int
	WakeCause string
}

// Inbox is the received message database report ($MM).
type Inbox struct {
	Counters
	Cause     string
	AppID     int
	MsgID     uint64
	MarkedID  uint64
	DeletedID uint64
	Epoch     int64
	Count     int
	Raw       string
	Text      string
	Time      string
}

// countMode tells the $MT handler how to read a bare number.
type countMode int

const (
	requestCount countMode = iota
	requestDelete
)

// Outbox is the unsent message database report ($MT).
type Outbox struct {
	Counters
	Cause   string
	MsgID   uint64
	Epoch   int64
	Count   int
	Deleted int
	Raw     string
	Text    string
	Time    string

	pending countMode
}

// RxData is the last received data message ($RD).
type RxData struct {
	Counters
	AppID int
	RSSI  int
	SNR   int
	FDev  int
	Raw   string
	Text  string
}

// Status is the unsolicited modem status report ($TILE or $M138).
type Status struct {
	Counters
	Boot            int
	DateTimeReports int
	PositionReports int
	BootCause       string
	BootText        string
	DebugText       string
	ErrorText       string
}

// TxData is the transmit data report ($TD).
type TxData struct {
	Counters
	Cause string
	RSSI  int
	SNR   int
	FDev  int
	MsgID uint64
	Sent  int
}

// Model is everything a satellite modem has reported.
type Model struct {
	RT   RxTest
	GN   Geo
	GJ   Jam
	DT   DateTime
	FV   Firmware
	CS   Identity
	GP   GPIO
	GS   Fix
	PO   Counters
	PW   Power
	RS   Counters
	SL   Sleep
	MM   Inbox
	MT   Outbox
	RD   RxData
	Tile Status
	TD   TxData

	// Sent logs the most recent transmitted messages.
	Sent SentLog
}

// TotalRx sums the receive counters of every record.
func (m *Model) TotalRx() int {
	return m.RT.Rx + m.GN.Rx + m.GJ.Rx + m.DT.Rx + m.FV.Rx + m.CS.Rx + m.GP.Rx +
		m.GS.Rx + m.PO.Rx + m.PW.Rx + m.RS.Rx + m.SL.Rx + m.MM.Rx + m.MT.Rx +
		m.RD.Rx + m.Tile.Rx + m.TD.Rx
}

// TotalErr sums the error counters of every record that can report one.
func (m *Model) TotalErr() int {
	return m.RT.Err + m.GN.Err + m.GJ.Err + m.DT.Err + m.FV.Err + m.CS.Err + m.GP.Err +
		m.GS.Err + m.PO.Err + m.PW.Err + m.RS.Err + m.SL.Err + m.MM.Err + m.MT.Err +
		m.TD.Err
}
