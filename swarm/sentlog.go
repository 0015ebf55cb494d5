package swarm

// SentLogSize is the number of transmitted messages remembered.
const SentLogSize = 20

// SentEntry records when a message left the modem.
type SentEntry struct {
	MsgID    uint64
	DateTime string
}

// SentLog is a ring of the last SentLogSize transmitted messages.
type SentLog struct {
	entries [SentLogSize]SentEntry
	next    int
	len     int
}

// Add stores e, overwriting the oldest entry once the ring is full.
func (l *SentLog) Add(e SentEntry) {
	l.entries[l.next] = e
	l.next = (l.next + 1) % SentLogSize
	if l.len < SentLogSize {
		l.len++
	}
}

// Len returns the number of stored entries.
func (l *SentLog) Len() int {
	return l.len
}

// Entries returns the stored entries, oldest first.
func (l *SentLog) Entries() []SentEntry {
	out := make([]SentEntry, 0, l.len)
	start := (l.next - l.len + SentLogSize) % SentLogSize
	for i := range l.len {
		out = append(out, l.entries[(start+i)%SentLogSize])
	}
	return out
}
