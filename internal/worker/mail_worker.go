package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/careacademy/academy-backend/internal/mail"
	"github.com/careacademy/academy-backend/internal/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// MaxMailAttempts is how many times a message is tried before it is dropped.
const MaxMailAttempts = 3

type retrier interface {
	Retry(ctx context.Context, job mail.Job) error
}

// MailWorker consumes the mail queue, renders each message and sends it.
type MailWorker struct {
	rdb        *redis.Client
	queueKey   string
	queue      retrier
	renderer   *mail.Renderer
	sender     mail.Sender
	retryDelay time.Duration
	log        zerolog.Logger
}

// NewMailWorker creates a new MailWorker reading from queue.
func NewMailWorker(rdb *redis.Client, queue *mail.Queue, renderer *mail.Renderer, sender mail.Sender, log zerolog.Logger) *MailWorker {
	return &MailWorker{
		rdb:        rdb,
		queueKey:   queue.Key(),
		queue:      queue,
		renderer:   renderer,
		sender:     sender,
		retryDelay: 5 * time.Second,
		log:        log.With().Str("component", "mail_worker").Logger(),
	}
}

// Start begins the worker loop. Call in a goroutine; it returns after the
// queue has been drained once ctx is cancelled.
func (w *MailWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *MailWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or timeout (1 second).
	result, err := w.rdb.BLPop(ctx, time.Second, w.queueKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}
	if len(result) < 2 {
		return
	}

	if !w.handle(ctx, result[1]) && w.retryDelay > 0 {
		select {
		case <-time.After(w.retryDelay):
		case <-ctx.Done():
		}
	}
}

// handle delivers one queued payload. It reports false when delivery failed
// and the job was put back for another attempt.
func (w *MailWorker) handle(ctx context.Context, payload string) bool {
	var job mail.Job
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error, dropping job")
		return true
	}

	err := w.deliver(ctx, &job.Message)
	metrics.RecordMail(job.Message.Template, err)
	if err == nil {
		return true
	}

	job.Attempts++
	logEv := w.log.Error().Err(err).
		Str("template", job.Message.Template).
		Int("attempt", job.Attempts)
	if job.Attempts >= MaxMailAttempts {
		logEv.Msg("Send failed, giving up")
		return true
	}
	logEv.Msg("Send failed, retrying")
	if err := w.queue.Retry(ctx, job); err != nil {
		w.log.Error().Err(err).Msg("Requeue error")
	}
	return false
}

func (w *MailWorker) deliver(ctx context.Context, msg *mail.Message) error {
	if err := w.renderer.Render(msg); err != nil {
		return err
	}
	sendCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return w.sender.Send(sendCtx, msg)
}

// drain sends everything still queued before shutdown. Failed jobs are put
// back and draining stops.
func (w *MailWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, w.queueKey).Result()
		if err != nil {
			break
		}
		if !w.handle(ctx, result) {
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
