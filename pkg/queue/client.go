package queue

import (
	"flag"
	"fmt"
	"path/filepath"

	"github.com/ValerySidorin/styx/pkg/outcome"
	"github.com/ValerySidorin/styx/pkg/queue/message"
	"github.com/ValerySidorin/styx/pkg/queue/nats"
	"github.com/go-kit/log"
	"github.com/pkg/errors"
)

const (
	TypeNats = "nats"

	DefaultChannel = "styx"
)

type Config struct {
	Type    string      `yaml:"type"`
	Channel string      `yaml:"channel"`
	Nats    nats.Config `yaml:"nats"`
}

func (c *Config) RegisterFlags(flagPrefix string, f *flag.FlagSet) {
	f.StringVar(&c.Type, flagPrefix+"type", "", `Queue downloaded images are announced on. Supported values are: nats. Empty disables notifications.`)
	f.StringVar(&c.Channel, flagPrefix+"channel", DefaultChannel, `Channel notifications are published on.`)
	c.Nats.RegisterFlags(flagPrefix, f)
}

func (c *Config) Validate() error {
	switch c.Type {
	case "":
		return nil
	case TypeNats:
		if c.Channel == "" {
			return errors.New("queue channel is empty")
		}
		return nil
	}

	return errors.New(fmt.Sprintf("invalid queue type: %q", c.Type))
}

type Publisher interface {
	Pub(channel string, msg *message.Message) error
	Close() error
}

func NewPublisher(cfg Config, log log.Logger) (Publisher, error) {
	switch cfg.Type {
	case TypeNats:
		return nats.NewNatsClient(cfg.Nats, log)
	default:
		return nil, errors.New("invalid queue type")
	}
}

// Notify publishes one message per Downloaded outcome and reports how many
// were sent. It stops at the first failed publish.
func Notify(pub Publisher, channel, class string, outs []outcome.Outcome) (int, error) {
	sent := 0
	for _, o := range outs {
		if o.Kind() != outcome.Downloaded {
			continue
		}

		msg := &message.Message{Class: class, ID: o.ID(), File: filepath.Base(o.Path())}
		if err := pub.Pub(channel, msg); err != nil {
			return sent, errors.Wrap(err, "notify downloaded image")
		}
		sent++
	}

	return sent, nil
}
