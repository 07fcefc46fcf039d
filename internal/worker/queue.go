package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	// TaskSheetsSync pushes the latest comparison to Google Sheets.
	TaskSheetsSync = "sheets_sync"
	// TaskNotify sends a scrape summary to the chat.
	TaskNotify = "notify"
)

// Task is one outbound job. Payload is handler specific JSON.
type Task struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type Handler func(ctx context.Context, task Task) error

// Queue runs outbound publish tasks after scrapes. Tasks go through a redis list
// when a client is configured and through an in-memory channel otherwise (or when
// redis rejects the push). Failing tasks are retried in place with RetryPolicy;
// exhausted ones land on the dead letter list.
type Queue struct {
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan Task
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	logger        zerolog.Logger

	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewQueue(redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *Queue {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "worker").Logger()
	}

	return &Queue{
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan Task, 128),
		redisQueueKey: "grocerytracker:outbox",
		deadLetterKey: "grocerytracker:outbox:deadletter",
		pollInterval:  time.Second,
		logger:        l,
		handlers:      make(map[string]Handler),
	}
}

// Handle registers the handler for a task type.
func (q *Queue) Handle(taskType string, h Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[taskType] = h
}

// Enqueue schedules a task; payload is marshalled to JSON when not nil.
func (q *Queue) Enqueue(ctx context.Context, taskType string, payload any) error {
	if taskType == "" {
		return errors.New("task type is required")
	}

	task := Task{ID: uuid.NewString(), Type: taskType, CreatedAt: time.Now()}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		task.Payload = raw
	}

	if q.redis != nil {
		if err := q.pushRedis(ctx, q.redisQueueKey, task); err != nil {
			q.logger.Warn().Err(err).Str("task", task.ID).Msg("redis push failed, falling back to memory queue")
		} else {
			return nil
		}
	}

	select {
	case q.queue <- task:
		return nil
	default:
		return fmt.Errorf("queue full, task %s dropped", task.ID)
	}
}

// Start consumes tasks until ctx is done.
func (q *Queue) Start(ctx context.Context) {
	q.logger.Info().Msg("worker started")
	defer q.logger.Info().Msg("worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-q.queue:
			q.process(ctx, t)
			continue
		default:
		}

		if t, ok := q.tryRedis(ctx); ok {
			q.process(ctx, t)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case t := <-q.queue:
			q.process(ctx, t)
		case <-time.After(q.pollInterval):
		}
	}
}

func (q *Queue) tryRedis(ctx context.Context) (Task, bool) {
	if q.redis == nil {
		return Task{}, false
	}
	res, err := q.redis.BRPop(ctx, q.pollInterval, q.redisQueueKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			q.logger.Warn().Err(err).Msg("redis BRPOP failed")
		}
		return Task{}, false
	}
	if len(res) != 2 {
		return Task{}, false
	}
	var task Task
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		q.logger.Error().Err(err).Msg("decode redis task")
		return Task{}, false
	}
	return task, true
}

func (q *Queue) process(ctx context.Context, task Task) {
	q.mu.RLock()
	h, ok := q.handlers[task.Type]
	q.mu.RUnlock()

	log := q.logger.With().Str("task", task.ID).Str("type", task.Type).Logger()
	if !ok {
		log.Error().Msg("no handler for task type")
		q.deadLetter(ctx, task)
		return
	}

	attempt := 0
	err := q.retryPolicy.Do(ctx, func(ctx context.Context) error {
		attempt++
		return h(ctx, task)
	})
	if err != nil {
		log.Error().Err(err).Int("attempts", attempt).Msg("task failed")
		q.deadLetter(ctx, task)
		return
	}
	log.Debug().Int("attempts", attempt).Msg("task completed")
}

func (q *Queue) pushRedis(ctx context.Context, key string, task Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return q.redis.LPush(ctx, key, data).Err()
}

func (q *Queue) deadLetter(ctx context.Context, task Task) {
	if q.redis == nil {
		return
	}
	if err := q.pushRedis(context.WithoutCancel(ctx), q.deadLetterKey, task); err != nil {
		q.logger.Error().Err(err).Str("task", task.ID).Msg("dead letter push failed")
	}
}
