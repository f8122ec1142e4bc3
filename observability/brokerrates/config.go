// Package brokerrates implements the reference rate-monitoring consumer
// of spec §4.6.3: a passive subscriber across the three exchanges that
// periodically prints per-sender and per-receiver throughput. Its CLI
// surface follows internal/xlog/config.go's Flags/Config/RegisterFlags/
// RegisterCompletions idiom, generalized from a single flag set to the
// receiver/sender filter flags spec §6 names.
package brokerrates

import (
	"time"

	"github.com/spf13/pflag"
)

// Flags holds CLI flag names, allowing callers to customize them while
// keeping sensible defaults via [NewConfig].
type Flags struct {
	Receivers       string
	Senders         string
	ReceiversServer string
	SendersServer   string
	DiscoveryWait   string
	Debug           string
}

// NewConfig creates a new [Config] embedding these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{Flags: f, IntervalSeconds: 10}
}

// Config holds CLI flag values for the rate monitor (spec §6's "CLI
// surface of the rate monitor").
type Config struct {
	Receivers       []string
	Senders         []string
	ReceiversServer string
	SendersServer   string
	DiscoveryWait   time.Duration
	Debug           bool
	IntervalSeconds int

	Flags Flags
}

// NewConfig returns a Config with default flag names and a 10 second
// reporting interval.
func NewConfig() *Config {
	return Flags{
		Receivers:       "receivers",
		Senders:         "senders",
		ReceiversServer: "receiversServer",
		SendersServer:   "sendersServer",
		DiscoveryWait:   "discoveryWait",
		Debug:           "debug",
	}.NewConfig()
}

// RegisterFlags adds the rate monitor's flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringSliceVar(&c.Receivers, c.Flags.Receivers, nil,
		"restrict receiver-side accounting to these instance ids/functions")
	flags.StringSliceVar(&c.Senders, c.Flags.Senders, nil,
		"restrict sender-side accounting to these instance ids")
	flags.StringVar(&c.ReceiversServer, c.Flags.ReceiversServer, "",
		"instance id to query for its registered receivers")
	flags.StringVar(&c.SendersServer, c.Flags.SendersServer, "",
		"instance id to query for its registered senders")
	flags.DurationVar(&c.DiscoveryWait, c.Flags.DiscoveryWait, 5*time.Second,
		"time to wait for topology discovery before reporting starts")
	flags.BoolVar(&c.Debug, c.Flags.Debug, false,
		"enable verbose per-message debug output")
}
