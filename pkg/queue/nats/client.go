package nats

import (
	"flag"

	"github.com/ValerySidorin/styx/pkg/queue/message"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
)

type Config struct {
	Url string `yaml:"url"`
}

func (c *Config) RegisterFlags(flagPrefix string, f *flag.FlagSet) {
	f.StringVar(&c.Url, flagPrefix+"nats.url", nats.DefaultURL, `NATS server URL.`)
}

type NatsClient struct {
	conn *nats.Conn
	log  log.Logger
}

func NewNatsClient(cfg Config, log log.Logger) (*NatsClient, error) {
	conn, err := nats.Connect(cfg.Url,
		nats.Name("styx"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				_ = level.Warn(log).Log("msg", "nats disconnected", "err", err)
			}
		}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "initialize nats connection")
	}

	return &NatsClient{
		conn: conn,
		log:  log,
	}, nil
}

func (n *NatsClient) Pub(channel string, msg *message.Message) error {
	if err := n.conn.Publish(channel, []byte(msg.String())); err != nil {
		return errors.Wrap(err, "nats publish")
	}

	return nil
}

// Close flushes pending messages before closing the connection.
func (n *NatsClient) Close() error {
	if err := n.conn.Flush(); err != nil {
		n.conn.Close()
		return errors.Wrap(err, "nats flush")
	}
	n.conn.Close()

	return nil
}
