package nmea

type state int

const (
	seekStart state = iota
	readTag
	readData
	readChecksumHigh
	readChecksumLow
)

// Parser is a byte oriented state machine that extracts sentences from a
// stream. It resynchronizes on the next '$' after any framing error, so a
// noisy link only costs the frames it corrupted.
//
// A Parser is not safe for concurrent use; each device feeds its own
// parser from a single goroutine.
type Parser struct {
	state state

	tag     [MaxTagLen]byte
	tagLen  int
	payload [MaxPayloadLen]byte
	dataLen int

	sum      byte
	received byte

	dispatch func(Sentence)
	drop     func(Drop)
}

// NewParser returns a Parser that calls dispatch for every complete
// sentence. dispatch runs synchronously inside Feed.
func NewParser(dispatch func(Sentence)) *Parser {
	return &Parser{dispatch: dispatch}
}

// OnDrop registers an observer for discarded frames.
func (p *Parser) OnDrop(fn func(Drop)) {
	p.drop = fn
}

// Write feeds every byte of b to the parser. It never fails.
func (p *Parser) Write(b []byte) (int, error) {
	for _, c := range b {
		p.Feed(c)
	}
	return len(b), nil
}

// Feed advances the state machine by one byte.
func (p *Parser) Feed(c byte) {
	switch p.state {
	case seekStart:
		if c == StartDelimiter {
			p.begin()
		}

	case readTag:
		switch c {
		case TagDelimiter, FieldDelimiter, ChecksumDelimiter:
			p.sum ^= c
			p.state = readData
		default:
			if p.tagLen == MaxTagLen {
				p.abort(DropTagOverflow)
				return
			}
			p.sum ^= c
			p.tag[p.tagLen] = c
			p.tagLen++
		}

	case readData:
		switch c {
		case ChecksumDelimiter:
			p.state = readChecksumHigh
		case Terminator:
			// Frames without a checksum are delivered unverified.
			p.emit(false)
			p.state = seekStart
		default:
			if p.dataLen == MaxPayloadLen {
				p.abort(DropPayloadOverflow)
				return
			}
			p.sum ^= c
			p.payload[p.dataLen] = c
			p.dataLen++
		}

	case readChecksumHigh:
		n, ok := DecodeNibble(c)
		if !ok {
			p.abort(DropChecksum)
			return
		}
		p.received = n << 4
		p.state = readChecksumLow

	case readChecksumLow:
		n, ok := DecodeNibble(c)
		p.received |= n
		if ok && p.received == p.sum {
			p.emit(true)
		} else if p.drop != nil {
			p.drop(DropChecksum)
		}
		p.state = seekStart
	}
}

func (p *Parser) begin() {
	p.state = readTag
	p.tagLen = 0
	p.dataLen = 0
	p.sum = 0
	p.received = 0
}

func (p *Parser) abort(reason Drop) {
	p.state = seekStart
	if p.drop != nil {
		p.drop(reason)
	}
}

func (p *Parser) emit(verified bool) {
	if p.dispatch == nil {
		return
	}
	s := Sentence{
		Tag:      string(p.tag[:p.tagLen]),
		Payload:  string(p.payload[:p.dataLen]),
		Verified: verified,
	}
	if verified {
		s.Checksum = p.received
	}
	p.dispatch(s)
}
