package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DeleteImageMessage is published on the cleanup queue for every discarded image
type DeleteImageMessage struct {
	ImageURL  string `json:"image_url"`
	Key       string `json:"key"`
	Timestamp int64  `json:"timestamp"`
}

// Publisher is the subset of *amqp.Channel used to publish cleanup jobs
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// DialQueue connects to RabbitMQ and declares the durable cleanup queue
func DialQueue(url, queue string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	return conn, ch, nil
}

// QueueJanitor hands image deletions to the cleanup worker through RabbitMQ.
// If publishing fails the fallback janitor runs instead.
type QueueJanitor struct {
	publisher Publisher
	queue     string
	fallback  Janitor
	logger    *slog.Logger
}

func NewQueueJanitor(publisher Publisher, queue string, fallback Janitor, logger *slog.Logger) *QueueJanitor {
	return &QueueJanitor{publisher: publisher, queue: queue, fallback: fallback, logger: logger}
}

func (j *QueueJanitor) Discard(ctx context.Context, imageURL string) {
	id, ok := ExtractIdentifier(imageURL)
	if !ok {
		j.logger.WarnContext(ctx, "image url has no media identifier, skipping delete", "url", imageURL)
		return
	}

	body, err := json.Marshal(DeleteImageMessage{
		ImageURL:  imageURL,
		Key:       id.Key(),
		Timestamp: time.Now().Unix(),
	})
	if err == nil {
		err = j.publisher.PublishWithContext(ctx, "", j.queue, false, false, amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	}
	if err != nil {
		j.logger.ErrorContext(ctx, "failed to publish image cleanup, deleting inline", "key", id.Key(), "error", err)
		if j.fallback != nil {
			j.fallback.Discard(ctx, imageURL)
		}
		return
	}
	j.logger.DebugContext(ctx, "queued image cleanup", "key", id.Key(), "queue", j.queue)
}

// CleanupWorker consumes the cleanup queue and deletes images from the store
type CleanupWorker struct {
	channel    *amqp.Channel
	queue      string
	store      Store
	logger     *slog.Logger
	MaxRetries int
	Backoff    time.Duration
}

func NewCleanupWorker(channel *amqp.Channel, queue string, store Store, logger *slog.Logger) *CleanupWorker {
	return &CleanupWorker{
		channel:    channel,
		queue:      queue,
		store:      store,
		logger:     logger,
		MaxRetries: 3,
		Backoff:    2 * time.Second,
	}
}

// Start registers a consumer and processes deliveries until ctx is done or
// the channel closes. It returns once the consumer is registered.
func (w *CleanupWorker) Start(ctx context.Context) error {
	msgs, err := w.channel.Consume(
		w.queue,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register cleanup consumer: %w", err)
	}

	w.logger.InfoContext(ctx, "listening for image cleanup jobs", "queue", w.queue)

	go func() {
		for {
			select {
			case <-ctx.Done():
				w.logger.InfoContext(ctx, "cleanup worker shutting down")
				return
			case msg, ok := <-msgs:
				if !ok {
					w.logger.WarnContext(ctx, "cleanup channel closed")
					return
				}
				w.Handle(ctx, msg)
			}
		}
	}()

	return nil
}

var errMalformedJob = errors.New("malformed cleanup job")

// Handle processes one delivery. Malformed jobs and jobs that still fail after
// MaxRetries are dropped without requeueing.
func (w *CleanupWorker) Handle(ctx context.Context, msg amqp.Delivery) {
	id, err := decodeCleanupJob(msg.Body)
	if err != nil {
		w.logger.ErrorContext(ctx, "dropping cleanup job", "error", err)
		_ = msg.Nack(false, false)
		return
	}

	attempts := max(w.MaxRetries, 1)
	for attempt := 1; attempt <= attempts; attempt++ {
		err = w.store.Delete(ctx, id)
		if err == nil {
			w.logger.InfoContext(ctx, "deleted image", "key", id.Key())
			_ = msg.Ack(false)
			return
		}

		w.logger.ErrorContext(ctx, "image delete failed", "key", id.Key(), "attempt", attempt, "error", err)
		if attempt < attempts && w.Backoff > 0 {
			select {
			case <-ctx.Done():
				_ = msg.Nack(false, true)
				return
			case <-time.After(time.Duration(attempt) * w.Backoff):
			}
		}
	}

	_ = msg.Nack(false, false)
}

func decodeCleanupJob(body []byte) (Identifier, error) {
	var job DeleteImageMessage
	if err := json.Unmarshal(body, &job); err != nil {
		return Identifier{}, fmt.Errorf("%w: %v", errMalformedJob, err)
	}

	id, ok := ExtractIdentifier(job.ImageURL)
	if !ok {
		return Identifier{}, fmt.Errorf("%w: no media identifier in %q", errMalformedJob, job.ImageURL)
	}
	return id, nil
}
