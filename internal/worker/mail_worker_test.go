package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/careacademy/academy-backend/internal/mail"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	fail int
	sent []*mail.Message
}

func (s *recordingSender) Send(_ context.Context, msg *mail.Message) error {
	if s.fail > 0 {
		s.fail--
		return errors.New("smtp unavailable")
	}
	s.sent = append(s.sent, msg)
	return nil
}

type recordingQueue struct {
	jobs []mail.Job
}

func (q *recordingQueue) Retry(_ context.Context, job mail.Job) error {
	q.jobs = append(q.jobs, job)
	return nil
}

func newTestWorker(t *testing.T, sender mail.Sender) (*MailWorker, *recordingQueue) {
	t.Helper()
	renderer, err := mail.NewRenderer("Care Academy", "https://academy.example")
	require.NoError(t, err)
	q := &recordingQueue{}
	return &MailWorker{
		queue:    q,
		renderer: renderer,
		sender:   sender,
		log:      zerolog.Nop(),
	}, q
}

func replyJob(t *testing.T, attempts int) string {
	t.Helper()
	job := mail.Job{
		Message: mail.Message{
			To:       []mail.Address{{Email: "grace@example.com"}},
			Subject:  "Re: Weekend classes",
			Template: mail.TmplContactReply,
			Data: map[string]string{
				"message_id": "7d0c2f8e-8f7b-4a40-9a55-3f1e0d6b1c11",
				"name":       "Grace",
				"email":      "grace@example.com",
				"phone":      "",
				"subject":    "Weekend classes",
				"message":    "Do you run weekend classes?",
				"reply":      "Yes, every Saturday.",
			},
		},
		Attempts: attempts,
	}
	data, err := json.Marshal(job)
	require.NoError(t, err)
	return string(data)
}

func TestHandleSendsRenderedMessage(t *testing.T) {
	sender := &recordingSender{}
	w, q := newTestWorker(t, sender)

	assert.True(t, w.handle(context.Background(), replyJob(t, 0)))
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].TextContent, "Yes, every Saturday.")
	assert.NotEmpty(t, sender.sent[0].HTMLContent)
	assert.Empty(t, q.jobs)
}

func TestHandleRetriesThenGivesUp(t *testing.T) {
	sender := &recordingSender{fail: 10}
	w, q := newTestWorker(t, sender)
	ctx := context.Background()

	assert.False(t, w.handle(ctx, replyJob(t, 0)))
	require.Len(t, q.jobs, 1)
	assert.Equal(t, 1, q.jobs[0].Attempts)

	assert.True(t, w.handle(ctx, replyJob(t, MaxMailAttempts-1)), "last attempt is dropped")
	assert.Len(t, q.jobs, 1)
}

func TestHandleDropsBadPayload(t *testing.T) {
	w, q := newTestWorker(t, &recordingSender{})

	assert.True(t, w.handle(context.Background(), "{not json"))
	assert.Empty(t, q.jobs)
}

func TestHandleUnknownTemplateIsRetried(t *testing.T) {
	sender := &recordingSender{}
	w, q := newTestWorker(t, sender)

	data, err := json.Marshal(mail.Job{Message: mail.Message{
		To:       []mail.Address{{Email: "a@example.com"}},
		Template: "missing",
	}})
	require.NoError(t, err)

	assert.False(t, w.handle(context.Background(), string(data)))
	assert.Empty(t, sender.sent)
	assert.Len(t, q.jobs, 1)
}
