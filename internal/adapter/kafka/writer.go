package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/bike-rental-report/internal/config"
	"github.com/couchcryptid/bike-rental-report/internal/report"
	kafkago "github.com/segmentio/kafka-go"
)

// Summary table names, used as message keys.
const (
	TableSeason    = "season"
	TableWeather   = "weather"
	TableTimeOfDay = "time_of_day"
	TableYearMonth = "year_month"
)

// messageWriter is the subset of *kafkago.Writer used by Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer produces summary tables to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured summary topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaSummaryTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		WriteTimeout:           cfg.KafkaWriteTimeout,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish writes one message per summary table in a single WriteMessages
// call. Tables are keyed by name so every table lands on a stable partition.
func (w *Writer) Publish(ctx context.Context, summary report.Summary) error {
	msgs, err := serializeSummary(summary)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write summary messages: %w", err)
	}
	w.logger.Debug("summary tables written",
		"tables", len(msgs),
		"records", summary.Records,
		"filter", summary.Filter.Key(),
	)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// TableMessage is the JSON payload of a single summary table message.
type TableMessage struct {
	Table       string            `json:"table"`
	GeneratedAt time.Time         `json:"generated_at"`
	Filter      report.FilterSpec `json:"filter"`
	Records     int               `json:"records"`
	Rows        json.RawMessage   `json:"rows"`
}

// serializeSummary marshals each summary table into its own Kafka message.
func serializeSummary(summary report.Summary) ([]kafkago.Message, error) {
	tables := []struct {
		name string
		rows any
	}{
		{TableSeason, summary.BySeason},
		{TableWeather, summary.ByWeather},
		{TableTimeOfDay, summary.ByTimeOfDay},
		{TableYearMonth, summary.ByYearMonth},
	}

	generatedAt := summary.GeneratedAt.UTC().Format(time.RFC3339)
	filterKey := summary.Filter.Key()

	msgs := make([]kafkago.Message, 0, len(tables))
	for _, t := range tables {
		rows, err := json.Marshal(t.rows)
		if err != nil {
			return nil, fmt.Errorf("serialize %s table: %w", t.name, err)
		}
		data, err := json.Marshal(TableMessage{
			Table:       t.name,
			GeneratedAt: summary.GeneratedAt,
			Filter:      summary.Filter,
			Records:     summary.Records,
			Rows:        rows,
		})
		if err != nil {
			return nil, fmt.Errorf("serialize %s table: %w", t.name, err)
		}
		msgs = append(msgs, kafkago.Message{
			Key:   []byte(t.name),
			Value: data,
			Headers: []kafkago.Header{
				{Key: "table", Value: []byte(t.name)},
				{Key: "generated_at", Value: []byte(generatedAt)},
				{Key: "filter", Value: []byte(filterKey)},
			},
		})
	}
	return msgs, nil
}
