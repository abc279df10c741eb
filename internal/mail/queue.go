package mail

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// Job is one queued delivery.
type Job struct {
	Message  Message `json:"message"`
	Attempts int     `json:"attempts"`
}

// Queue pushes messages onto a Redis list consumed by the mail worker.
type Queue struct {
	rdb *redis.Client
	key string
}

func NewQueue(rdb *redis.Client, key string) *Queue {
	return &Queue{rdb: rdb, key: key}
}

// Enqueue schedules msg for delivery. Messages without recipients are dropped.
func (q *Queue) Enqueue(ctx context.Context, msg Message) error {
	if !msg.HasRecipients() {
		return nil
	}
	return q.push(ctx, Job{Message: msg})
}

// Retry puts a failed job back at the tail of the queue.
func (q *Queue) Retry(ctx context.Context, job Job) error {
	return q.push(ctx, job)
}

func (q *Queue) push(ctx context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.rdb.RPush(ctx, q.key, data).Err()
}

// Key returns the Redis list name.
func (q *Queue) Key() string { return q.key }
