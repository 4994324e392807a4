package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Query keys invalidated by trading events
const (
	keyStocks  = "stocks"
	keyTrades  = "trades"
	keySummary = "summary"
)

// Invalidator marks dashboard queries stale
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string)
}

// MessageReader is the subset of *kafka.Reader the listener needs
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
	Config() kafka.ReaderConfig
}

// TradingEvent is the envelope published on the trading topics
type TradingEvent struct {
	EventType string          `json:"event_type"`
	Source    string          `json:"source"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// TradesListener invalidates cached dashboard queries when trading events arrive.
// It never forwards event data; the next page load refetches from the API.
type TradesListener struct {
	reader      MessageReader
	invalidator Invalidator
	log         zerolog.Logger
}

// NewTradesListener creates a listener reading only new messages from topic
func NewTradesListener(brokers []string, topic, groupID string, invalidator Invalidator, log zerolog.Logger) *TradesListener {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID + "-invalidation",
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.LastOffset, // history is irrelevant to a cache
		CommitInterval: time.Second,
	})

	return newTradesListener(reader, invalidator, log)
}

func newTradesListener(reader MessageReader, invalidator Invalidator, log zerolog.Logger) *TradesListener {
	return &TradesListener{
		reader:      reader,
		invalidator: invalidator,
		log:         log.With().Str("component", "kafka").Logger(),
	}
}

// Topic returns the topic being consumed
func (l *TradesListener) Topic() string {
	return l.reader.Config().Topic
}

// Start consumes messages until ctx is cancelled
func (l *TradesListener) Start(ctx context.Context) error {
	l.log.Info().Str("topic", l.Topic()).Msg("Starting trades listener")

	for {
		select {
		case <-ctx.Done():
			l.log.Info().Msg("Trades listener shutting down")
			return nil
		default:
			msg, err := l.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil // Context cancelled, normal shutdown
				}
				l.log.Error().Err(err).Msg("Error reading trading message")
				continue
			}

			if err := l.processMessage(ctx, msg); err != nil {
				l.log.Error().Err(err).
					Int("partition", msg.Partition).
					Int64("offset", msg.Offset).
					Msg("Error processing trading message")
			}
		}
	}
}

// processMessage handles a single Kafka message
func (l *TradesListener) processMessage(ctx context.Context, msg kafka.Message) error {
	var event TradingEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal trading event: %w", err)
	}

	keys := KeysForEvent(event.EventType)
	if len(keys) == 0 {
		l.log.Debug().Str("event_type", event.EventType).Msg("Ignoring trading event")
		return nil
	}

	l.invalidator.Invalidate(ctx, keys...)
	l.log.Debug().
		Str("event_type", event.EventType).
		Strs("keys", keys).
		Msg("Invalidated dashboard queries")
	return nil
}

// KeysForEvent maps an event type to the query keys it makes stale
func KeysForEvent(eventType string) []string {
	switch eventType {
	case "TRADE_EXECUTED", "TRADE_UPDATED", "ORDER_FILLED":
		return []string{keyTrades, keySummary}
	case "STOCK_UPDATED", "STOCK_PRICE_UPDATED":
		return []string{keyStocks}
	case "WATCHLIST_UPDATED", "WATCHLIST_SYMBOL_ADDED", "WATCHLIST_SYMBOL_REMOVED":
		return []string{keyStocks, keySummary}
	default:
		return nil
	}
}

// Close closes the Kafka reader
func (l *TradesListener) Close() error {
	return l.reader.Close()
}
