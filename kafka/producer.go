package kafka

import (
	"context"
	"encoding/json"
	"time"

	"shop-service/models"

	"github.com/segmentio/kafka-go"
)

// OrderCreatedEvent is the payload published after a checkout commits.
type OrderCreatedEvent struct {
	OrderNumber string           `json:"order_number"`
	UserID      uint             `json:"user_id"`
	TotalAmount float64          `json:"total_amount"`
	Items       []OrderEventItem `json:"items"`
	CreatedAt   time.Time        `json:"created_at"`
}

type OrderEventItem struct {
	ProductID uint    `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{writer: w}
}

// PublishOrderCreated emits an order.created event keyed by order number.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	event := OrderCreatedEvent{
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		Items:       make([]OrderEventItem, 0, len(order.Items)),
		CreatedAt:   order.CreatedAt,
	}
	for _, item := range order.Items {
		event.Items = append(event.Items, OrderEventItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(order.OrderNumber),
		Value: data,
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
