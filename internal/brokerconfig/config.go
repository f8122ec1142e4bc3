// Package brokerconfig resolves the broker connection every cmd/ entry
// point needs, reading the KARABO_BROKER/KARABO_BROKER_TOPIC environment
// variables spec §6 names through the same Flags/Config/RegisterFlags
// shape internal/xlog/config.go uses for logging, rather than scattering
// os.Getenv calls through main().
package brokerconfig

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"go.karabo.dev/control/messaging"
	"go.karabo.dev/control/messaging/amqp"
	"go.karabo.dev/control/messaging/inproc"
)

const (
	// defaultTopic is used when KARABO_BROKER_TOPIC is unset.
	defaultTopic = "karabo"
	envBroker    = "KARABO_BROKER"
	envTopic     = "KARABO_BROKER_TOPIC"
)

// Flags holds CLI flag names for broker configuration.
type Flags struct {
	Broker string
	Topic  string
}

// NewConfig creates a new [Config] embedding these flag names, with
// defaults sourced from KARABO_BROKER/KARABO_BROKER_TOPIC.
func (f Flags) NewConfig() *Config {
	topic := os.Getenv(envTopic)
	if topic == "" {
		topic = defaultTopic
	}

	return &Config{Broker: os.Getenv(envBroker), Topic: topic, Flags: f}
}

// Config holds broker connection settings. An empty Broker means no
// external broker is configured; [Config.Dial] falls back to an
// in-process broker in that case, the documented default for a
// standalone or test run.
type Config struct {
	Broker string
	Topic  string
	Flags  Flags
}

// NewConfig returns a Config with default flag names, seeded from the
// environment.
func NewConfig() *Config {
	return Flags{Broker: "broker", Topic: "broker-topic"}.NewConfig()
}

// RegisterFlags adds broker flags to the given [*pflag.FlagSet], letting
// a CLI argument override the environment-derived default.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Broker, c.Flags.Broker, c.Broker,
		fmt.Sprintf("comma-separated broker URLs (default from %s)", envBroker))
	flags.StringVar(&c.Topic, c.Flags.Topic, c.Topic,
		fmt.Sprintf("broker domain/topic (default from %s)", envTopic))
}

// URLs splits Broker on commas, per spec §6's "comma-separated URLs."
func (c *Config) URLs() []string {
	if c.Broker == "" {
		return nil
	}

	return strings.Split(c.Broker, ",")
}

// Dial connects a [messaging.Broker] per this configuration: an AMQP
// broker using the first configured URL if Broker is set, or an
// in-process broker otherwise.
func (c *Config) Dial(ctx context.Context) (messaging.Broker, error) {
	urls := c.URLs()
	if len(urls) == 0 {
		return inproc.New(), nil
	}

	b, err := amqp.Dial(ctx, urls[0], c.Topic)
	if err != nil {
		return nil, fmt.Errorf("brokerconfig: dial %q: %w", urls[0], err)
	}

	return b, nil
}
