package notifier

import (
	"context"

	"github.com/sirupsen/logrus"

	config "github.com/Keoroanthony/go-ecommerce-api/configs"
	"github.com/Keoroanthony/go-ecommerce-api/internal/metrics"
)

// OrderConfirmation is what a customer is told once their order is committed.
type OrderConfirmation struct {
	OrderID          uint
	CustomerName     string
	Email            string
	Phone            string
	OrderDate        string
	ExpectedDelivery string // empty when unknown
	Items            []LineItem
	Total            float64
}

type LineItem struct {
	Name  string
	Price float64
}

type Notifier interface {
	NotifyOrderPlaced(ctx context.Context, conf OrderConfirmation)
}

// Sender delivers a confirmation over one channel.
type Sender interface {
	Channel() string
	Send(ctx context.Context, conf OrderConfirmation) error
}

// Dispatcher fans a confirmation out to every configured sender. Failures are
// logged and counted, never returned.
type Dispatcher struct {
	senders []Sender
	log     *logrus.Logger
}

func NewDispatcher(log *logrus.Logger, senders ...Sender) *Dispatcher {
	return &Dispatcher{senders: senders, log: log}
}

// FromConfig enables each channel whose credentials are present.
func FromConfig(ctx context.Context, cfg config.Config, log *logrus.Logger) (*Dispatcher, error) {
	var senders []Sender
	if cfg.AfricaTalking.Enabled() {
		senders = append(senders, NewSMSSender(cfg.AfricaTalking, nil))
	}
	if cfg.Email.Enabled() {
		email, err := NewEmailSender(ctx, cfg.Email)
		if err != nil {
			return nil, err
		}
		senders = append(senders, email)
	}
	return NewDispatcher(log, senders...), nil
}

func (d *Dispatcher) NotifyOrderPlaced(ctx context.Context, conf OrderConfirmation) {
	for _, s := range d.senders {
		err := s.Send(ctx, conf)
		metrics.RecordNotification(s.Channel(), err)

		entry := d.log.WithFields(logrus.Fields{"channel": s.Channel(), "order_id": conf.OrderID})
		if err != nil {
			entry.WithError(err).Error("Failed to send order confirmation")
			continue
		}
		entry.Info("Order confirmation sent")
	}
}

func (d *Dispatcher) Channels() []string {
	channels := make([]string, 0, len(d.senders))
	for _, s := range d.senders {
		channels = append(channels, s.Channel())
	}
	return channels
}
