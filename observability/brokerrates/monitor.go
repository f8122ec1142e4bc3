package brokerrates

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"go.karabo.dev/control/hash"
	"go.karabo.dev/control/messaging"
)

// synthSender is the accounting bucket spec §4.6.3 assigns to a
// `target=log` message, which carries no signalInstanceId receiver of
// its own kind.
const synthSender = "?"

// noReceiver is the bucket a message with neither slotFunctions nor
// slotInstanceIds is credited to, preserved from the original tool even
// though some brokers may legitimately omit receiver routing headers.
const noReceiver = "__none__"

type counters struct {
	messages int64
	bytes    int64
}

// Monitor subscribes to all three exchanges and tallies per-sender and
// per-receiver message/byte counts, printing a report every interval and
// resetting (spec §4.6.3).
type Monitor struct {
	broker messaging.Broker
	cfg    *Config
	out    io.Writer

	mu        sync.Mutex
	senders   map[string]*counters
	receivers map[string]*counters
}

// NewMonitor returns a Monitor that reports to out.
func NewMonitor(broker messaging.Broker, cfg *Config, out io.Writer) *Monitor {
	return &Monitor{
		broker:    broker,
		cfg:       cfg,
		out:       out,
		senders:   map[string]*counters{},
		receivers: map[string]*counters{},
	}
}

func allowed(filter []string, id string) bool {
	if len(filter) == 0 {
		return true
	}

	for _, f := range filter {
		if f == id {
			return true
		}
	}

	return false
}

// Run subscribes to the three exchanges and blocks, printing a report
// every cfg.IntervalSeconds until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	subs := []struct {
		exchange messaging.Exchange
		binding  string
	}{
		{messaging.ExchangeSignals, messaging.WildcardKey},
		{messaging.ExchangeSlots, messaging.WildcardKey},
		{messaging.ExchangeGlobalSlots, messaging.WildcardKey},
	}

	for _, s := range subs {
		ch, unsub, err := m.broker.Subscribe(ctx, s.exchange, s.binding)
		if err != nil {
			return fmt.Errorf("observability/brokerrates: subscribe %s: %w", s.exchange, err)
		}
		defer unsub()

		go func(ch <-chan messaging.Delivery) {
			for d := range ch {
				m.record(d)
			}
		}(ch)
	}

	interval := time.Duration(m.cfg.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 10 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.report(interval)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// record classifies one delivery per spec §4.6.3: credited to the sender
// named in signalInstanceId, and to each receiver named in
// slotFunctions/slotInstanceIds, or to the synthetic sender "?" for a
// target=log message.
func (m *Monitor) record(d messaging.Delivery) {
	size := int64(envelopeSize(d.Envelope))

	sender, err := d.Envelope.Header.GetString(messaging.HeaderSignalInstanceID)
	if err != nil || sender == "" {
		if target, terr := d.Envelope.Header.GetString(messaging.HeaderTarget); terr == nil && target == messaging.TargetLog {
			sender = synthSender
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if sender != "" && allowed(m.cfg.Senders, sender) {
		m.bump(m.senders, sender, size)
	}

	fns := d.Envelope.SlotFunctions()
	ids := d.Envelope.SlotInstanceIDs()

	for _, fn := range fns {
		if allowed(m.cfg.Receivers, fn[0]) {
			m.bump(m.receivers, fn[0], size)
		}
	}

	for _, id := range ids {
		if allowed(m.cfg.Receivers, id) {
			m.bump(m.receivers, id, size)
		}
	}

	if len(fns) == 0 && len(ids) == 0 && allowed(m.cfg.Receivers, noReceiver) {
		m.bump(m.receivers, noReceiver, size)
	}
}

func (m *Monitor) bump(table map[string]*counters, key string, size int64) {
	c, ok := table[key]
	if !ok {
		c = &counters{}
		table[key] = c
	}

	c.messages++
	c.bytes += size
}

// envelopeSize estimates the on-wire size of env for rate accounting: the
// sum of every key's length plus a coarse per-value size, close enough
// for a reporting tool without a full binary re-encode on every message.
func envelopeSize(env messaging.Envelope) int {
	return sizeOfHash(env.Header) + sizeOfHash(env.Body)
}

func sizeOfHash(h *hash.Hash) int {
	if h == nil {
		return 0
	}

	size := 0

	h.Each(func(key string, value hash.Value, _ hash.Attributes) {
		size += len(key)

		switch value.Tag() {
		case hash.TagHash:
			if child, ok := value.AsHash(); ok {
				size += sizeOfHash(child)
			}
		case hash.TagVectorHash:
			if seq, ok := value.AsVectorHash(); ok {
				for _, child := range seq {
					size += sizeOfHash(child)
				}
			}
		default:
			size += sizeOfScalar(value)
		}
	})

	return size
}

func sizeOfScalar(v hash.Value) int {
	if s, ok := v.AsString(); ok {
		return len(s)
	}
	if v.Tag() == hash.TagVectorString {
		if strs, ok := v.Seq().([]string); ok {
			n := 0
			for _, s := range strs {
				n += len(s)
			}

			return n
		}
	}

	return 8
}

func (m *Monitor) report(interval time.Duration) {
	m.mu.Lock()
	senders := m.senders
	receivers := m.receivers
	m.senders = map[string]*counters{}
	m.receivers = map[string]*counters{}
	m.mu.Unlock()

	seconds := interval.Seconds()

	fmt.Fprintf(m.out, "--- rates over %.0fs ---\n", seconds)

	printRows(m.out, "senders", senders, seconds)
	printRows(m.out, "receivers", receivers, seconds)
}

func printRows(out io.Writer, label string, table map[string]*counters, seconds float64) {
	type row struct {
		id   string
		rate float64
		c    *counters
	}

	rows := make([]row, 0, len(table))

	var totalMsgs, totalBytes int64

	for id, c := range table {
		rows = append(rows, row{id: id, rate: float64(c.messages) / seconds, c: c})
		totalMsgs += c.messages
		totalBytes += c.bytes
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].rate > rows[j].rate })

	fmt.Fprintf(out, "%s:\n", label)

	for _, r := range rows {
		bytesPerMsgK := 0.0
		if r.c.messages > 0 {
			bytesPerMsgK = float64(r.c.bytes) / float64(r.c.messages) / 1000
		}

		fmt.Fprintf(out, "  %-20s %.2f msg/s  %.3f KB/msg\n", r.id, r.rate, bytesPerMsgK)
	}

	if len(rows) > 0 {
		fmt.Fprintf(out, "  highest: %s (%.2f msg/s)\n", rows[0].id, rows[0].rate)
	}

	fmt.Fprintf(out, "  total: %d messages, %d bytes\n", totalMsgs, totalBytes)
}
