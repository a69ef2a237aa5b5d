package worker

import (
	"GoVault/config"
	"GoVault/internal/mq"
	"GoVault/internal/storage"
	"GoVault/internal/task"
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type dlqMessage struct {
	TaskID   string    `json:"task_id"`
	Locator  string    `json:"locator"`
	Attempt  int       `json:"attempt"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
}

// RunCleanupWorker consumes blob-cleanup tasks from RabbitMQ and removes the
// objects from the store. Failed removals are retried with growing delays
// before landing in the DLQ.
func RunCleanupWorker(ctx context.Context) error {
	client, err := mq.Dial()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.DeclareTopology(); err != nil {
		return err
	}

	prefetch := config.AppConfig.RabbitMQPrefetch
	if prefetch <= 0 {
		prefetch = 1
	}
	if err := client.Channel.Qos(prefetch, 0, false); err != nil {
		return err
	}

	deliveries, err := client.Channel.Consume(
		mq.QueueCleanup,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	concurrency := config.AppConfig.CleanupWorkerConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)

	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("cleanup worker: delivery channel closed")
			}
			sem <- struct{}{}
			go func(d amqp.Delivery) {
				defer func() { <-sem }()
				handleCleanupMessage(ctx, client, d)
			}(delivery)
		}
	}
}

func handleCleanupMessage(ctx context.Context, client *mq.Client, delivery amqp.Delivery) {
	var msg task.CleanupMessage
	if err := json.Unmarshal(delivery.Body, &msg); err != nil {
		log.Printf("cleanup worker: invalid message: %v", err)
		_ = delivery.Ack(false)
		return
	}
	if msg.Locator == "" {
		_ = delivery.Ack(false)
		return
	}

	if storage.Default == nil {
		log.Println("cleanup worker: storage not initialized")
		_ = delivery.Nack(false, true)
		return
	}

	bucket := msg.Bucket
	if bucket == "" {
		bucket = config.AppConfig.BucketName
	}
	err := storage.Default.RemoveObject(ctx, bucket, msg.Locator)
	if err == nil {
		log.Printf("cleanup worker: removed %s", msg.Locator)
		_ = delivery.Ack(false)
		return
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		_ = delivery.Nack(false, true)
		return
	}

	if msg.Attempt < config.AppConfig.CleanupRetryMax {
		if retryErr := scheduleRetry(ctx, client, msg, err); retryErr != nil {
			log.Printf("cleanup worker: retry schedule failed: %v", retryErr)
			_ = delivery.Nack(false, true)
			return
		}
		_ = delivery.Ack(false)
		return
	}

	if dlqErr := publishDLQ(ctx, client, msg, err); dlqErr != nil {
		log.Printf("cleanup worker: dlq publish failed: %v", dlqErr)
		_ = delivery.Nack(false, true)
		return
	}
	log.Printf("cleanup worker: giving up on %s after %d attempts: %v", msg.Locator, msg.Attempt+1, err)
	_ = delivery.Ack(false)
}

func retryDelay(attempt int) time.Duration {
	delays := config.AppConfig.CleanupRetryDelays
	if len(delays) == 0 {
		return 30 * time.Second
	}
	if attempt >= len(delays) {
		return delays[len(delays)-1]
	}
	return delays[attempt]
}

func scheduleRetry(ctx context.Context, client *mq.Client, msg task.CleanupMessage, cause error) error {
	delay := retryDelay(msg.Attempt)
	msg.Attempt++
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	log.Printf("cleanup worker: retrying %s in %s: %v", msg.Locator, delay, cause)
	return client.PublishRetry(ctx, body, delay)
}

func publishDLQ(ctx context.Context, client *mq.Client, msg task.CleanupMessage, cause error) error {
	body, err := json.Marshal(dlqMessage{
		TaskID:   msg.TaskID,
		Locator:  msg.Locator,
		Attempt:  msg.Attempt,
		Error:    cause.Error(),
		FailedAt: time.Now(),
	})
	if err != nil {
		return err
	}
	return client.PublishDLQ(ctx, body)
}
