package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	zlog "github.com/rs/zerolog/log"
)

const (
	DefaultExchange = "listing.events"

	confirmTimeout = 5 * time.Second
)

var (
	ErrNoRoute  = errors.New("rabbitmq: message unroutable")
	ErrNacked   = errors.New("rabbitmq: publish nacked")
	ErrNotReady = errors.New("rabbitmq: channel not ready")
)

// Publisher sends outbox envelopes to a durable topic exchange with publisher
// confirms and the mandatory flag. One publish is in flight at a time.
type Publisher struct {
	url      string
	exchange string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel

	returnCh <-chan amqp.Return
	closeCh  <-chan *amqp.Error
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	if strings.TrimSpace(exchange) == "" {
		exchange = DefaultExchange
	}
	p := &Publisher{url: url, exchange: exchange}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.connectLocked(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) connectLocked() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(p.exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare exchange %s: %w", p.exchange, err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("enable confirms: %w", err)
	}

	p.conn, p.ch = conn, ch
	p.returnCh = ch.NotifyReturn(make(chan amqp.Return, 1))
	p.closeCh = ch.NotifyClose(make(chan *amqp.Error, 1))
	return nil
}

// ensureLocked reconnects when the broker closed the channel since the last publish.
func (p *Publisher) ensureLocked() error {
	if p.ch != nil {
		select {
		case amqpErr, ok := <-p.closeCh:
			if ok || amqpErr != nil {
				zlog.Warn().Interface("reason", amqpErr).Msg("rabbitmq channel closed, reconnecting")
			}
			p.dropLocked()
		default:
			return nil
		}
	}
	if p.url == "" {
		return ErrNotReady
	}
	return p.connectLocked()
}

func (p *Publisher) dropLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dropLocked()
	return nil
}

// PublishEvent implements messaging.Publisher. messageID must be the outbox message_id
// so consumers can drop redeliveries.
func (p *Publisher) PublishEvent(ctx context.Context, routingKey, messageID string, body []byte) error {
	if strings.TrimSpace(routingKey) == "" {
		return errors.New("missing routingKey")
	}
	if strings.TrimSpace(messageID) == "" {
		return errors.New("missing messageID")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureLocked(); err != nil {
		return err
	}

	dc, err := p.ch.PublishWithDeferredConfirmWithContext(
		ctx,
		p.exchange,
		routingKey,
		true,  // mandatory
		false, // immediate
		amqp.Publishing{
			MessageId:    messageID,
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		p.dropLocked()
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, confirmTimeout)
	defer cancel()
	acked, err := dc.WaitContext(waitCtx)
	if err != nil {
		return fmt.Errorf("await confirm %s: %w", routingKey, err)
	}
	if !acked {
		return ErrNacked
	}

	// an unroutable mandatory message is returned before it is acked
	select {
	case ret := <-p.returnCh:
		return fmt.Errorf("%w: %s", ErrNoRoute, ret.RoutingKey)
	default:
		return nil
	}
}
