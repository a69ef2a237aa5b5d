package task

import (
	"GoVault/config"
	"GoVault/internal/mq"
	"GoVault/utils"
	"context"
	"encoding/json"
	"log"
)

// CleanupMessage asks the worker to remove one blob from the object store.
// Purge operations return locators; the API layer enqueues a message per
// locator so blob removal happens out of band and survives restarts.
type CleanupMessage struct {
	TaskID  string `json:"task_id"`
	Bucket  string `json:"bucket"`
	Locator string `json:"locator"`
	Attempt int    `json:"attempt"`
}

// EnqueueBlobCleanup publishes a cleanup task for one locator.
func EnqueueBlobCleanup(ctx context.Context, locator string) error {
	msg := CleanupMessage{
		TaskID:  utils.GetToken(),
		Bucket:  config.AppConfig.BucketName,
		Locator: locator,
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	publisher, err := mq.GetPublisher()
	if err != nil {
		return err
	}
	return publisher.PublishCleanup(ctx, body)
}

// EnqueueBlobCleanupAll publishes cleanup tasks for a batch of locators,
// logging and continuing on individual failures. A lost message only strands
// a blob, never the registry.
func EnqueueBlobCleanupAll(ctx context.Context, locators []string) {
	for _, locator := range locators {
		if locator == "" {
			continue
		}
		if err := EnqueueBlobCleanup(ctx, locator); err != nil {
			log.Printf("enqueue blob cleanup failed for %s: %v", locator, err)
		}
	}
}
