// Package broadcast publishes compressed state snapshots to downstream
// consumers (map frontends, recorders) over a mangos pub/sub socket.
package broadcast

import (
	"fmt"
	"time"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pub"
	"go.nanomsg.org/mangos/v3/protocol/sub"

	// Register all socket transports (tcp, ipc, inproc)
	_ "go.nanomsg.org/mangos/v3/transport/all"

	"github.com/solflu/outbreak/pkg/logging"
)

// Publisher fans state payloads out to any number of subscribers. Topics are
// carried as a message prefix, which is the subscription unit mangos filters
// on.
type Publisher struct {
	sock   mangos.Socket
	logger logging.Logger
}

// NewPublisher opens a pub socket listening on addr
// (e.g. "tcp://0.0.0.0:5555" or "inproc://state" in tests).
func NewPublisher(addr string, logger logging.Logger) (*Publisher, error) {
	if logger == nil {
		logger = logging.DefaultLogger()
	}

	sock, err := pub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("create pub socket: %w", err)
	}
	if err := sock.Listen(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	logger.Info("broadcast publisher listening", logging.String("addr", addr))
	return &Publisher{
		sock:   sock,
		logger: logger.With(logging.Component("broadcast")),
	}, nil
}

// Publish sends a payload under the given topic.
func (p *Publisher) Publish(topic string, payload []byte) error {
	msg := make([]byte, 0, len(topic)+1+len(payload))
	msg = append(msg, topic...)
	msg = append(msg, '|')
	msg = append(msg, payload...)

	if err := p.sock.Send(msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Close shuts the socket down.
func (p *Publisher) Close() error {
	return p.sock.Close()
}

// Subscriber receives payloads for one topic. It exists for downstream
// consumers and for exercising the publisher in tests.
type Subscriber struct {
	sock  mangos.Socket
	topic string
}

// NewSubscriber dials the publisher at addr and subscribes to topic.
func NewSubscriber(addr, topic string) (*Subscriber, error) {
	sock, err := sub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("create sub socket: %w", err)
	}
	if err := sock.Dial(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	if err := sock.SetOption(mangos.OptionSubscribe, []byte(topic+"|")); err != nil {
		sock.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", topic, err)
	}
	return &Subscriber{sock: sock, topic: topic}, nil
}

// Next blocks for the next payload on the subscribed topic, up to the given
// deadline. The topic prefix is stripped.
func (s *Subscriber) Next(deadline time.Duration) ([]byte, error) {
	if err := s.sock.SetOption(mangos.OptionRecvDeadline, deadline); err != nil {
		return nil, err
	}
	msg, err := s.sock.Recv()
	if err != nil {
		return nil, fmt.Errorf("receive on %s: %w", s.topic, err)
	}
	prefix := len(s.topic) + 1
	if len(msg) < prefix {
		return nil, fmt.Errorf("short message on %s", s.topic)
	}
	return msg[prefix:], nil
}

// Close shuts the socket down.
func (s *Subscriber) Close() error {
	return s.sock.Close()
}
