package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"leadchat/internal/ai"
	"leadchat/internal/app"
	"leadchat/internal/model"
	"leadchat/internal/repository"
)

// IntentClassifier is satisfied by the completion client.
type IntentClassifier interface {
	ClassifyIntent(ctx context.Context, message string) ai.IntentResult
}

// IntentWorker consumes intent-classification events emitted by the send
// flow and writes each verdict into the message's metadata.
type IntentWorker struct {
	conn       *amqp.Connection
	repo       *repository.MessageRepository
	classifier IntentClassifier
	queueName  string
	log        zerolog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewIntentWorker(
	conn *amqp.Connection,
	repo *repository.MessageRepository,
	classifier IntentClassifier,
	queueName string,
	log zerolog.Logger,
) *IntentWorker {
	return &IntentWorker{
		conn:       conn,
		repo:       repo,
		classifier: classifier,
		queueName:  queueName,
		log:        log.With().Str("component", "intent-worker").Logger(),
	}
}

func (w *IntentWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				w.handle(workerCtx, d)
			}
		}
	}()

	return nil
}

func (w *IntentWorker) handle(ctx context.Context, d amqp.Delivery) {
	var event app.IntentEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		w.log.Error().Err(err).Msg("decode intent event failed")
		_ = d.Nack(false, false)
		return
	}

	result := w.classifier.ClassifyIntent(ctx, event.Content)

	message, err := w.repo.GetByID(event.MessageID)
	if err != nil || message == nil {
		w.log.Error().Err(err).Uint("message_id", event.MessageID).Msg("load message for intent failed")
		_ = d.Nack(false, false)
		return
	}

	metadata := message.Metadata
	if metadata == nil {
		metadata = model.JSONMap{}
	}
	metadata["intent"] = map[string]any{
		"intent":     result.Intent,
		"confidence": result.Confidence,
		"category":   result.Category,
	}

	if err := w.repo.UpdateMetadata(event.MessageID, metadata); err != nil {
		w.log.Error().Err(err).Uint("message_id", event.MessageID).Msg("persist intent verdict failed")
		_ = d.Nack(false, false)
		return
	}

	_ = d.Ack(false)
}

func (w *IntentWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
