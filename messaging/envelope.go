package messaging

import (
	"strings"

	"go.karabo.dev/control/hash"
)

// Reserved header keys (spec §6's header vocabulary table).
const (
	HeaderSignalInstanceID = "signalInstanceId"
	HeaderSignalFunction   = "signalFunction"
	HeaderSlotFunctions    = "slotFunctions"
	HeaderSlotInstanceIDs  = "slotInstanceIds"
	HeaderTarget           = "target"
	HeaderReplyTo          = "replyTo"
	HeaderTimestampSec     = "ts"
	HeaderTimestampFrac    = "tsFrac"
)

// TargetLog is the HeaderTarget value a log-mirroring message carries.
const TargetLog = "log"

// Envelope is the (header, body) pair every message on the bus carries
// (spec §3.5, §6). Header carries routing and bookkeeping; Body carries
// the application payload.
type Envelope struct {
	Header *hash.Hash
	Body   *hash.Hash
}

// NewEnvelope returns an Envelope with fresh, empty header and body maps.
func NewEnvelope() Envelope {
	return Envelope{Header: hash.New(), Body: hash.New()}
}

// slotPair renders one "instanceId:function" routing entry.
func slotPair(instanceID, function string) string {
	return instanceID + ":" + function
}

// encodeSlotList renders a list of bare tokens (instance ids, or
// "instanceId:function" pairs) in the spec's "|a||b||c|" bracketed form.
func encodeSlotList(entries []string) string {
	var b strings.Builder

	for _, e := range entries {
		b.WriteByte('|')
		b.WriteString(e)
		b.WriteByte('|')
	}

	return b.String()
}

// decodeSlotList parses the "|a||b||c|" bracketed form back into its
// entries. An empty or malformed string yields no entries.
func decodeSlotList(s string) []string {
	s = strings.TrimPrefix(s, "|")
	s = strings.TrimSuffix(s, "|")

	if s == "" {
		return nil
	}

	return strings.Split(s, "||")
}

// SetSlotFunctions sets the slotFunctions header to the bracketed encoding
// of the given (instanceId, slotName) pairs.
func (e Envelope) SetSlotFunctions(pairs [][2]string) {
	entries := make([]string, len(pairs))
	for i, p := range pairs {
		entries[i] = slotPair(p[0], p[1])
	}

	_ = e.Header.Set(HeaderSlotFunctions, encodeSlotList(entries))
}

// SlotFunctions decodes the slotFunctions header into (instanceId, slotName)
// pairs. Malformed entries (missing the ':' separator) are skipped.
func (e Envelope) SlotFunctions() [][2]string {
	raw, err := e.Header.GetString(HeaderSlotFunctions)
	if err != nil {
		return nil
	}

	var out [][2]string

	for _, entry := range decodeSlotList(raw) {
		instanceID, function, ok := strings.Cut(entry, ":")
		if !ok {
			continue
		}

		out = append(out, [2]string{instanceID, function})
	}

	return out
}

// SetSlotInstanceIDs sets the slotInstanceIds header (used for async
// reply routing) to the bracketed encoding of ids.
func (e Envelope) SetSlotInstanceIDs(ids []string) {
	_ = e.Header.Set(HeaderSlotInstanceIDs, encodeSlotList(ids))
}

// SlotInstanceIDs decodes the slotInstanceIds header.
func (e Envelope) SlotInstanceIDs() []string {
	raw, err := e.Header.GetString(HeaderSlotInstanceIDs)
	if err != nil {
		return nil
	}

	return decodeSlotList(raw)
}

// HasRouting reports whether the envelope carries any receiver-routing
// header at all (spec §8's "messages whose header lacks both
// slotFunctions and slotInstanceIds").
func (e Envelope) HasRouting() bool {
	return e.Header.Has(HeaderSlotFunctions) || e.Header.Has(HeaderSlotInstanceIDs)
}

// stampTimestamp sets ts/tsFrac from sec/fracAttoseconds.
func stampTimestamp(h *hash.Hash, sec int64, fracAttoseconds int64) {
	_ = h.Set(HeaderTimestampSec, sec)
	_ = h.Set(HeaderTimestampFrac, fracAttoseconds)
}
