package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hibiken/asynq"

	"github.com/codexx/academy/backend/internal/config"
	"github.com/codexx/academy/backend/pkg/logger"
)

// Worker processes queued notification tasks when Redis is enabled.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	processor func(context.Context, *ContactNotifyTask) error
	running   bool
	mu        sync.Mutex
}

// NewWorker creates a new worker instance
func NewWorker(cfg *config.RedisConfig) *Worker {
	if !cfg.Enabled {
		return nil
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Infof("[Worker] Error processing task %s: %v", task.Type(), err)
			}),
		},
	)

	return &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
	}
}

// SetProcessor sets the function to process notification tasks
func (w *Worker) SetProcessor(processor func(context.Context, *ContactNotifyTask) error) {
	w.processor = processor
}

// Start begins processing tasks
func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	w.mux.HandleFunc(TaskTypeContactNotify, func(ctx context.Context, t *asynq.Task) error {
		var task ContactNotifyTask
		if err := json.Unmarshal(t.Payload(), &task); err != nil {
			return err
		}
		if w.processor == nil {
			logger.Infof("[Worker] No processor set, dropping task %s", task.Reference)
			return nil
		}
		return w.processor(ctx, &task)
	})

	if err := w.server.Start(w.mux); err != nil {
		return err
	}

	w.running = true
	logger.Infof("[Worker] Notification worker started")
	return nil
}

// Stop gracefully shuts the worker down.
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	w.server.Shutdown()
	w.running = false
	logger.Infof("[Worker] Notification worker stopped")
}

// InitWorker builds a worker for the given Redis config, or nil when
// Redis is disabled.
func InitWorker(cfg *config.RedisConfig) *Worker {
	return NewWorker(cfg)
}
