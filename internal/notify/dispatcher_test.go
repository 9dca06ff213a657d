package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	mu     sync.Mutex
	sent   []Message
	ctxErr []error
	err    error
	block  chan struct{}
}

func (m *recordingMailer) Send(ctx context.Context, msg Message) error {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	m.ctxErr = append(m.ctxErr, ctx.Err())
	return m.err
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type countingRecorder struct {
	sent, failed atomic.Int32
}

func (r *countingRecorder) MailJob(result string) {
	if result == "sent" {
		r.sent.Add(1)
		return
	}
	r.failed.Add(1)
}

func testMessage() Message {
	return Message{To: "user@example.com", Subject: "hello", Body: "hi"}
}

func TestDispatcher_DeliversAfterRequestCanceled(t *testing.T) {
	t.Parallel()

	log, buf := logger.NewTestLogger()
	mailer := &recordingMailer{}
	rec := &countingRecorder{}
	d := NewDispatcher(mailer, DispatcherConfig{WorkerCount: 2, QueueSize: 4}, log)
	d.SetRecorder(rec)
	d.Start()

	reqLog := log.With("request_id", "req-123")
	ctx, cancel := context.WithCancel(logger.NewContext(context.Background(), reqLog))
	require.NoError(t, d.Enqueue(ctx, testMessage()))
	cancel()

	require.NoError(t, d.Stop(context.Background()))
	assert.Equal(t, 1, mailer.count())
	assert.NoError(t, mailer.ctxErr[0], "job context must not inherit request cancellation")
	assert.EqualValues(t, 1, rec.sent.Load())

	entries, err := buf.Entries()
	require.NoError(t, err)
	var sawRequestID bool
	for _, e := range entries {
		if e["msg"] == "mail job enqueued" && e["request_id"] == "req-123" {
			sawRequestID = true
		}
	}
	assert.True(t, sawRequestID)
}

func TestDispatcher_QueueFull(t *testing.T) {
	t.Parallel()

	log, _ := logger.NewTestLogger()
	mailer := &recordingMailer{block: make(chan struct{})}
	d := NewDispatcher(mailer, DispatcherConfig{WorkerCount: 1, QueueSize: 1}, log)
	d.Start()

	ctx := context.Background()
	require.NoError(t, d.Enqueue(ctx, testMessage()))

	// one job is held by the blocked worker, one fills the buffer
	require.Eventually(t, func() bool {
		return d.Enqueue(ctx, testMessage()) == nil
	}, time.Second, 5*time.Millisecond)

	err := d.Enqueue(ctx, testMessage())
	assert.ErrorIs(t, err, ErrQueueFull)

	close(mailer.block)
	require.NoError(t, d.Stop(context.Background()))
	assert.Equal(t, 2, mailer.count())
}

func TestDispatcher_FailuresAreRecorded(t *testing.T) {
	t.Parallel()

	log, buf := logger.NewTestLogger()
	rec := &countingRecorder{}
	d := NewDispatcher(&recordingMailer{err: errors.New("smtp down")}, DefaultDispatcherConfig(), log)
	d.SetRecorder(rec)
	d.Start()

	require.NoError(t, d.Enqueue(context.Background(), testMessage()))
	require.NoError(t, d.Stop(context.Background()))

	assert.EqualValues(t, 1, rec.failed.Load())
	failures, err := buf.EntriesWithMessage("mail delivery failed")
	require.NoError(t, err)
	assert.Len(t, failures, 1)
}

func TestDispatcher_EnqueueAfterStop(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(&recordingMailer{}, DefaultDispatcherConfig(), nil)
	d.Start()
	require.NoError(t, d.Stop(context.Background()))
	require.NoError(t, d.Stop(context.Background()), "stop is idempotent")

	assert.ErrorIs(t, d.Enqueue(context.Background(), testMessage()), ErrDispatcherClosed)
}

func TestDispatcher_StopTimesOut(t *testing.T) {
	t.Parallel()

	mailer := &recordingMailer{block: make(chan struct{})}
	d := NewDispatcher(mailer, DispatcherConfig{WorkerCount: 1, QueueSize: 1}, nil)
	d.Start()
	require.NoError(t, d.Enqueue(context.Background(), testMessage()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Stop(ctx), context.DeadlineExceeded)

	close(mailer.block)
}

func TestDispatcher_RejectsInvalidMessage(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(&recordingMailer{}, DefaultDispatcherConfig(), nil)
	assert.ErrorIs(t, d.Enqueue(context.Background(), Message{Subject: "no recipient"}), ErrInvalidMessage)
}

func TestNewDispatcher_TagsComponentOnce(t *testing.T) {
	t.Parallel()

	log, buf := logger.NewTestLogger()
	d := NewDispatcher(&recordingMailer{}, DispatcherConfig{WorkerCount: 1, QueueSize: 1}, log)
	d.Start()
	require.NoError(t, d.Stop(context.Background()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.Equal(t, 1, strings.Count(line, `"component":`), line)
		assert.Contains(t, line, `"component":"mail_dispatcher"`)
	}
}

func TestNewDispatcher_DefaultsWorkerCount(t *testing.T) {
	t.Parallel()

	log, buf := logger.NewTestLogger()
	d := NewDispatcher(&recordingMailer{}, DispatcherConfig{}, log)
	assert.Equal(t, 1, d.workerCount)
	assert.Equal(t, 1, cap(d.jobs))
	assert.Contains(t, buf.String(), "invalid worker count specified")
}
