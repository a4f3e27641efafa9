package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fairwayhq/fairway/internal/domain"
	"github.com/fairwayhq/fairway/pkg/logger"
	"github.com/fairwayhq/fairway/pkg/mailer"
)

// WorkerConfig holds configuration for the delivery worker
type WorkerConfig struct {
	PollInterval time.Duration // How often to poll for due entries (default: 30s)
	BatchSize    int           // How many emails to claim per poll (default: 25)
}

// DefaultWorkerConfig returns sensible default configuration
func DefaultWorkerConfig() *WorkerConfig {
	return &WorkerConfig{
		PollInterval: 30 * time.Second,
		BatchSize:    25,
	}
}

// Worker delivers queued emails. A single worker polls on a fixed interval;
// the SKIP LOCKED claim in the repository keeps additional instances safe.
type Worker struct {
	queueRepo domain.EmailQueueRepository
	mailer    mailer.Mailer
	config    *WorkerConfig
	logger    logger.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.RWMutex
}

// NewWorker creates a new email delivery worker
func NewWorker(
	queueRepo domain.EmailQueueRepository,
	m mailer.Mailer,
	config *WorkerConfig,
	log logger.Logger,
) *Worker {
	if config == nil {
		config = DefaultWorkerConfig()
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 30 * time.Second
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 25
	}

	return &Worker{
		queueRepo: queueRepo,
		mailer:    m,
		config:    config,
		logger:    log,
	}
}

// Start begins the polling loop
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.running = true
	w.mu.Unlock()

	w.logger.WithFields(map[string]interface{}{
		"poll_interval": w.config.PollInterval.String(),
		"batch_size":    w.config.BatchSize,
	}).Info("Starting email delivery worker")

	w.wg.Add(1)
	go w.processLoop()

	return nil
}

// Stop gracefully stops the worker, waiting for the in-flight batch
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.cancel()
	w.mu.Unlock()

	w.logger.Info("Stopping email delivery worker...")
	w.wg.Wait()
	w.logger.Info("Email delivery worker stopped")
}

// IsRunning returns whether the worker is currently running
func (w *Worker) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

func (w *Worker) processLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.ProcessBatch(w.ctx)
		}
	}
}

// ProcessBatch claims one batch of due entries and delivers them. Delivery
// failures mark the entry failed with the error text; there is no automatic
// retry.
func (w *Worker) ProcessBatch(ctx context.Context) {
	entries, err := w.queueRepo.FetchDue(ctx, w.config.BatchSize)
	if err != nil {
		w.logger.WithField("error", err.Error()).Error("Failed to fetch due emails")
		return
	}
	if len(entries) == 0 {
		return
	}

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return
		default:
		}

		textBody := ""
		if entry.TextBody != nil && !entry.TextBody.IsNull {
			textBody = entry.TextBody.String
		}

		if err := w.mailer.Send(entry.Recipient, entry.Subject, entry.HTMLBody, textBody); err != nil {
			w.logger.WithFields(map[string]interface{}{
				"entry_id":  entry.ID,
				"recipient": entry.Recipient,
			}).Error(fmt.Sprintf("Email delivery failed: %v", err))

			if markErr := w.queueRepo.MarkFailed(ctx, entry.ID, err.Error()); markErr != nil {
				w.logger.WithField("entry_id", entry.ID).Error(fmt.Sprintf("Failed to mark entry failed: %v", markErr))
			}
			continue
		}

		if err := w.queueRepo.MarkSent(ctx, entry.ID); err != nil {
			w.logger.WithField("entry_id", entry.ID).Error(fmt.Sprintf("Failed to mark entry sent: %v", err))
		}
	}
}
