package nmea

// Presence reports the outcome of a field lookup.
type Presence int

const (
	// FieldOutOfRange means the payload ended before the requested index.
	FieldOutOfRange Presence = iota
	// FieldEmpty means the field exists but holds no characters.
	FieldEmpty
	// FieldPresent means the field was copied whole.
	FieldPresent
	// FieldTruncated means the field was cut to fit max-1 bytes.
	FieldTruncated
)

// Found reports whether the lookup produced a value.
func (p Presence) Found() bool {
	return p == FieldPresent || p == FieldTruncated
}

// Lookup returns the index-th comma separated field of payload. A '*' or
// the end of payload terminates the last field. The result holds at most
// max-1 bytes; longer fields are truncated and still reported as found.
func Lookup(payload string, index, max int) (string, Presence) {
	if index < 0 || max <= 0 {
		return "", FieldOutOfRange
	}

	i := 0
	for n := 0; n != index; {
		if i >= len(payload) {
			return "", FieldOutOfRange
		}
		if payload[i] == FieldDelimiter {
			n++
		}
		i++
		if i >= len(payload) {
			return "", FieldOutOfRange
		}
	}

	if i >= len(payload) || payload[i] == FieldDelimiter || payload[i] == ChecksumDelimiter {
		return "", FieldEmpty
	}

	end := i
	for end < len(payload) && payload[end] != FieldDelimiter && payload[end] != ChecksumDelimiter {
		end++
	}
	if end-i >= max {
		return payload[i : i+max-1], FieldTruncated
	}
	return payload[i:end], FieldPresent
}

// Field is Lookup reduced to a found flag.
func Field(payload string, index, max int) (string, bool) {
	v, p := Lookup(payload, index, max)
	return v, p.Found()
}
