package nmea_test

import (
	"testing"

	gonmea "github.com/adrianmo/go-nmea"

	"i4.energy/across/qube/nmea"
)

func TestChecksum(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected byte
	}{
		{name: "Bare tag", input: "CS", expected: 0x10},
		{name: "Leading dollar is skipped", input: "$CS", expected: 0x10},
		{name: "Tag with parameter", input: "DT @", expected: 0x70},
		{name: "Empty input", input: "", expected: 0x00},
		{
			name:     "GPS fix sentence",
			input:    "GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,",
			expected: 0x47,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nmea.Checksum(tt.input); got != tt.expected {
				t.Errorf("Checksum(%q) = %02X, want %02X", tt.input, got, tt.expected)
			}
		})
	}
}

func TestChecksumAgreesWithReferenceParser(t *testing.T) {
	bodies := []string{
		"GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,",
		"GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W",
		"RT RSSI=-104",
		"TD OK,5354468575855",
	}
	for _, body := range bodies {
		want := gonmea.Checksum(body)
		got := string(nmea.AppendHex(nil, nmea.Checksum(body)))
		if got != want {
			t.Errorf("checksum of %q = %s, reference parser says %s", body, got, want)
		}
	}
}

func TestFrame(t *testing.T) {
	tests := []struct {
		name     string
		tag      string
		params   []string
		expected string
	}{
		{name: "Command without parameter", tag: "CS", expected: "$CS*10\n"},
		{name: "Command with parameter", tag: "DT", params: []string{"@"}, expected: "$DT @*70\n"},
		{name: "Empty parameter keeps the separator", tag: "RS", params: []string{""}, expected: "$RS *21\n"},
		{name: "Sleep until time of day", tag: "SL", params: []string{"U=12:30"}, expected: "$SL U=12:30*6D\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(nmea.Frame(tt.tag, tt.params...))
			if got != tt.expected {
				t.Errorf("Frame(%q, %q) = %q, want %q", tt.tag, tt.params, got, tt.expected)
			}
		})
	}
}

func TestParseHexByte(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    byte
		wantErr bool
	}{
		{name: "Uppercase", input: "4F", want: 0x4F},
		{name: "Lowercase", input: "4f", want: 0x4F},
		{name: "Invalid digit", input: "4G", wantErr: true},
		{name: "Too short", input: "4", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := nmea.ParseHexByte(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHexByte(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseHexByte(%q) = %02X, want %02X", tt.input, got, tt.want)
			}
		})
	}
}

func TestLenientNumbers(t *testing.T) {
	t.Run("Int stops at the first non digit", func(t *testing.T) {
		cases := map[string]int64{"12": 12, "-93": -93, "12\r": 12, "+7x": 7, "": 0, "abc": 0, "-": 0}
		for in, want := range cases {
			if got := nmea.Int(in); got != want {
				t.Errorf("Int(%q) = %d, want %d", in, got, want)
			}
		}
	})

	t.Run("Uint parses large message ids", func(t *testing.T) {
		if got := nmea.Uint("5354468575855"); got != 5354468575855 {
			t.Errorf("Uint = %d", got)
		}
		if got := nmea.Uint("-1"); got != 0 {
			t.Errorf("Uint of a negative number = %d, want 0", got)
		}
	})

	t.Run("Float accepts a fractional part", func(t *testing.T) {
		cases := map[string]float64{"545.4": 545.4, "-8.25,": -8.25, "1.": 1, "": 0, "N": 0}
		for in, want := range cases {
			if got := nmea.Float(in); got != want {
				t.Errorf("Float(%q) = %v, want %v", in, got, want)
			}
		}
	})
}

func TestDecodeHexText(t *testing.T) {
	tests := []struct {
		name, input, expected string
	}{
		{name: "Plain text", input: "48656C6C6F", expected: "Hello"},
		{name: "Odd trailing digit", input: "4869A", expected: "Hi"},
		{name: "Invalid pair stops decoding", input: "4869ZZ41", expected: "Hi"},
		{name: "Empty", input: "", expected: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nmea.DecodeHexText(tt.input); got != tt.expected {
				t.Errorf("DecodeHexText(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
