package gnss

// MaxSatellites bounds the satellite lists kept from GSA and GSV reports.
const MaxSatellites = 12

// satsPerGSV is the number of satellites carried by one GSV sentence.
const satsPerGSV = 4

// Quality is the GGA fix quality indicator.
type Quality int

var qualities = [...]string{
	"Invalid Fix status",
	"Valid Fix status",
	"DGPS Fix status",
	"PPS Fix status",
	"Real Time Fix status",
	"Float Real Time Fix status",
	"Estimated Fix status",
	"Manual Mode Fix status",
	"Simulation Mode Fix status",
}

func (q Quality) String() string {
	if q < 0 || int(q) >= len(qualities) {
		return qualities[0]
	}
	return qualities[q]
}

// Clock is a UTC time of day.
type Clock struct {
	Raw    int
	Hour   int
	Minute int
	Second int
}

// Date is a UTC calendar date with a two digit year.
type Date struct {
	Raw   int
	Day   int
	Month int
	Year  int
}

// Fix is the GGA fixed position report.
type Fix struct {
	UTC       Clock
	Latitude  float64
	NS        byte
	Longitude float64
	EW        byte
	Quality   Quality
	Sats      int
	HDOP      float32
	Altitude  float32
	AltUnit   byte
	Geoid     int
	GeoidUnit byte
	Checksum  byte
}

// DOP is the GSA report of active satellites and dilution of precision.
type DOP struct {
	Constellation string
	// Mode is 'M' for manual and 'A' for automatic 2D/3D selection.
	Mode byte
	// Dimension is 1 without a fix, 2 for 2D and 3 for 3D.
	Dimension int
	PRN       [MaxSatellites]int
	PDOP      float32
	HDOP      float32
	VDOP      float32
	Checksum  byte
}

// Satellite is one GSV entry.
type Satellite struct {
	PRN       int
	Elevation int
	Azimuth   int
	CN0       int
}

// InView is the GSV report of satellites in view, accumulated over the
// messages of one group.
type InView struct {
	Constellation string
	Messages      int
	Number        int
	Total         int
	current       int
	Sats          [MaxSatellites]Satellite
	Checksum      byte
}

func (v *InView) reset() {
	*v = InView{}
}

// Track is the VTG course and speed report.
type Track struct {
	Constellation string
	True          float32
	Magnetic      float32
	Knots         float32
	KPH           float32
	// Mode is 'A' autonomous, 'D' differential or 'E' estimated.
	Mode     byte
	Checksum byte
}

// Model is everything the GNSS receiver has reported.
type Model struct {
	GGA Fix
	GSA DOP
	GSV InView
	VTG Track
	RMC Date
}

// tick advances the time of day by one second. Crossing midnight only
// increments the day.
func (m *Model) tick() {
	t := &m.GGA.UTC
	t.Second++
	if t.Second <= 59 {
		return
	}
	t.Second = 0
	t.Minute++
	if t.Minute <= 59 {
		return
	}
	t.Minute = 0
	t.Hour++
	if t.Hour <= 23 {
		return
	}
	t.Hour = 0
	m.RMC.Day++
}
