package nmea

import "strings"

// Classify identifies how a device handler should read payload.
func Classify(payload string) Kind {
	switch {
	case payload == OK:
		return KindOK
	case payload == ERR, strings.HasPrefix(payload, ErrAt):
		return KindError
	case strings.IndexByte(payload, FieldDelimiter) < 0:
		return KindValue
	default:
		return KindFields
	}
}

// Cause returns the text following "ERR," or an empty string.
func Cause(payload string) string {
	if cause, ok := strings.CutPrefix(payload, ErrAt); ok {
		return cause
	}
	return ""
}

// Value returns field with the "key=" prefix removed.
func Value(field, key string) string {
	return strings.TrimPrefix(field, key+"=")
}
