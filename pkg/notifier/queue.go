package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// Notifier is the fire-and-forget side seen by request handlers.
type Notifier interface {
	SendVerificationCode(email, code string)
}

type QueueConfig struct {
	Workers     int
	Size        int
	MaxRetries  int
	BaseDelay   time.Duration
	SendTimeout time.Duration
}

// Queue is a bounded in-process task queue drained by a worker pool.
// Enqueue never blocks; delivery failures are logged and dropped.
type Queue struct {
	mailer Mailer
	cfg    QueueConfig
	log    *zap.Logger

	mu     sync.RWMutex
	closed bool
	jobs   chan Message
	wg     sync.WaitGroup
}

func NewQueue(mailer Mailer, cfg QueueConfig, log *zap.Logger) *Queue {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Size < 1 {
		cfg.Size = 100
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}

	return &Queue{
		mailer: mailer,
		cfg:    cfg,
		log:    log.With(zap.String("component", "notifier")),
		jobs:   make(chan Message, cfg.Size),
	}
}

func (q *Queue) Start() {
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	q.log.Info("Notifier started", zap.Int("workers", q.cfg.Workers), zap.Int("queue_size", q.cfg.Size))
}

func (q *Queue) SendVerificationCode(email, code string) {
	q.Enqueue(VerificationEmail(email, code))
}

// Enqueue reports whether the message was accepted.
func (q *Queue) Enqueue(msg Message) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.log.Warn("Notifier closed, dropping email", zap.String("to", msg.To))
		return false
	}

	select {
	case q.jobs <- msg:
		return true
	default:
		q.log.Error("Notifier queue full, dropping email", zap.String("to", msg.To))
		return false
	}
}

// Close stops accepting work and waits for queued messages, bounded by ctx.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()

	for msg := range q.jobs {
		q.deliver(id, msg)
	}
}

func (q *Queue) deliver(worker int, msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), q.cfg.SendTimeout)
	defer cancel()

	attempts := 0
	backoff := retry.WithMaxRetries(uint64(q.cfg.MaxRetries), retry.NewExponential(q.cfg.BaseDelay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		if err := q.mailer.Send(ctx, msg); err != nil {
			q.log.Warn("Email attempt failed",
				zap.Int("worker", worker),
				zap.Int("attempt", attempts),
				zap.String("to", msg.To),
				zap.Error(err),
			)
			return retry.RetryableError(err)
		}
		return nil
	})

	if err != nil {
		q.log.Error("Email delivery failed",
			zap.String("to", msg.To),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
		return
	}

	q.log.Info("Email sent", zap.String("to", msg.To), zap.Int("attempts", attempts))
}
