package nmea

const (
	// Framing
	StartDelimiter    = '$'
	ChecksumDelimiter = '*'
	FieldDelimiter    = ','
	TagDelimiter      = ' '
	Terminator        = '\n'

	// MaxTagLen is the longest command tag accepted by the parser.
	MaxTagLen = 5
	// MaxPayloadLen is the longest payload accepted by the parser.
	MaxPayloadLen = 377
	// MaxFieldLen is the buffer size handlers use when extracting fields.
	MaxFieldLen = 150

	// Response codes
	OK    = "OK"
	ERR   = "ERR"
	ErrAt = "ERR,"
)

// Kind classifies a sentence payload the way device handlers consume it.
type Kind int

const (
	KindFields Kind = iota // comma separated values
	KindOK                 // command accepted
	KindError              // ERR or ERR,<cause>
	KindValue              // single value without commas (rate, count)
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindError:
		return "error"
	case KindValue:
		return "value"
	default:
		return "fields"
	}
}

// Sentence is one complete frame delivered by the Parser.
type Sentence struct {
	// Tag is the command tag between '$' and the first delimiter.
	Tag string
	// Payload is everything after the tag delimiter up to '*' or '\n'.
	Payload string
	// Checksum is the value transmitted after '*'. Zero when Verified is false.
	Checksum byte
	// Verified reports whether the frame carried a checksum that matched.
	// Frames terminated by '\n' before any '*' are delivered unverified.
	Verified bool
}

// Drop describes why the parser discarded a partial frame.
type Drop int

const (
	DropTagOverflow Drop = iota + 1
	DropPayloadOverflow
	DropChecksum
)

func (d Drop) String() string {
	switch d {
	case DropTagOverflow:
		return "tag_overflow"
	case DropPayloadOverflow:
		return "payload_overflow"
	case DropChecksum:
		return "checksum_mismatch"
	default:
		return "unknown"
	}
}
