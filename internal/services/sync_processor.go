package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/infrastructure/localstore"
	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/session"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// AccountSyncer applies account changes on the directory.
type AccountSyncer interface {
	UpdateRole(ctx context.Context, credential string, role domain.Role) (*domain.Account, error)
	UpdateSubscription(ctx context.Context, credential string, tier domain.SubscriptionTier) (*domain.Account, error)
	UnlinkPlayer(ctx context.Context, credential string) (*domain.Account, error)
}

// CredentialSource returns a fresher credential for an account than the one
// captured when the change was queued.
type CredentialSource interface {
	CredentialFor(accountID string) (string, bool)
}

// SyncMetrics receives queue counters.
type SyncMetrics interface {
	SyncItem(kind, result string)
	SyncQueueLength(n int)
}

// ProcessorConfig controls how frequently the pending queue is drained.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	// MaxAge drops changes queued longer ago than this. Zero keeps them.
	MaxAge time.Duration
}

// SyncProcessor replays locally applied account changes against the directory.
type SyncProcessor struct {
	store       *localstore.Store
	monitor     ConnectionHealth
	directory   AccountSyncer
	credentials CredentialSource
	metrics     SyncMetrics
	logger      *zap.Logger
	cron        *cron.Cron
	cfg         ProcessorConfig
}

func NewSyncProcessor(
	store *localstore.Store,
	monitor ConnectionHealth,
	directory AccountSyncer,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *SyncProcessor {
	if cfg.Interval < time.Second {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sp := &SyncProcessor{
		store:     store,
		monitor:   monitor,
		directory: directory,
		logger:    logger,
		cfg:       cfg,
		cron:      cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = sp.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if _, err := sp.Drain(ctx); err != nil {
			sp.logger.Error("sync drain failed", zap.Error(err))
		}
	})

	return sp
}

// WithCredentials makes replays use the live session credential when it
// belongs to the queued account.
func (sp *SyncProcessor) WithCredentials(source CredentialSource) *SyncProcessor {
	sp.credentials = source
	return sp
}

func (sp *SyncProcessor) WithMetrics(m SyncMetrics) *SyncProcessor {
	sp.metrics = m
	return sp
}

// Start launches the cron scheduler.
func (sp *SyncProcessor) Start() {
	if sp == nil || sp.cron == nil {
		return
	}
	sp.cron.Start()
	sp.logger.Debug("sync processor started", zap.Duration("interval", sp.cfg.Interval))
}

// Stop gracefully stops the scheduler.
func (sp *SyncProcessor) Stop(ctx context.Context) {
	if sp == nil || sp.cron == nil {
		return
	}
	stopCtx := sp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	sp.logger.Debug("sync processor stopped")
}

// DrainResult summarises one pass over the queue.
type DrainResult struct {
	Synced    int
	Retried   int
	Dropped   int
	Remaining int
	Skipped   bool
}

// Drain replays pending changes synchronously. It stops early once the
// directory turns out to be unreachable.
func (sp *SyncProcessor) Drain(ctx context.Context) (DrainResult, error) {
	var result DrainResult
	if sp == nil || sp.store == nil {
		return result, nil
	}

	err := sp.drain(ctx, &result)
	result.Remaining = sp.Size()
	if sp.metrics != nil {
		sp.metrics.SyncQueueLength(result.Remaining)
	}
	return result, err
}

func (sp *SyncProcessor) drain(ctx context.Context, result *DrainResult) error {
	if sp.monitor != nil && !sp.monitor.IsOnline() {
		sp.logger.Debug("skipping sync drain (offline)")
		result.Skipped = true
		return nil
	}

	if sp.cfg.MaxAge > 0 {
		expired, err := sp.store.Cleanup(time.Now().Add(-sp.cfg.MaxAge))
		if err != nil {
			return err
		}
		if expired > 0 {
			sp.logger.Warn("dropped expired pending changes", zap.Int("count", expired))
			result.Dropped += expired
		}
	}

	items, err := sp.store.GetBatch(sp.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		err := sp.processItem(ctx, item)
		if err == nil {
			result.Synced++
			sp.count(item.Kind, "synced")
			if err := sp.store.Remove(item); err != nil {
				sp.logger.Warn("failed to purge synced item", zap.Error(err))
			}
			continue
		}

		sp.logger.Warn("failed to sync pending change",
			zap.String("item_id", item.ID),
			zap.String("kind", item.Kind),
			zap.Error(err))

		item.Retries++
		if !retryable(err) || item.Retries >= sp.cfg.MaxRetries {
			sp.logger.Warn("dropping pending change", zap.String("item_id", item.ID), zap.Int("retries", item.Retries))
			result.Dropped++
			sp.count(item.Kind, "dropped")
			_ = sp.store.Remove(item)
			continue
		}

		requeued, rqErr := sp.store.Requeue(item)
		switch {
		case rqErr != nil:
			sp.logger.Error("failed to requeue pending change", zap.Error(rqErr))
		case !requeued:
			sp.logger.Debug("pending change superseded by a newer one", zap.String("item_id", item.ID))
			result.Dropped++
			sp.count(item.Kind, "superseded")
		default:
			result.Retried++
			sp.count(item.Kind, "retried")
		}

		if domain.IsDomainError(err, domain.ErrCodeNetworkUnavailable) {
			break
		}
	}
	return nil
}

// Push tries to deliver a change immediately and falls back to the queue.
func (sp *SyncProcessor) Push(ctx context.Context, change session.Change) error {
	if sp == nil || sp.store == nil {
		return fmt.Errorf("sync processor not configured")
	}
	payload, err := json.Marshal(change)
	if err != nil {
		return err
	}
	item := localstore.Item{
		AccountID: change.AccountID,
		Kind:      string(change.Kind),
		Data:      payload,
		Priority:  priorityOf(change.Kind),
	}

	if sp.monitor == nil || sp.monitor.IsOnline() {
		err := sp.processItem(ctx, item)
		if err == nil {
			sp.count(item.Kind, "synced")
			return nil
		}
		if !retryable(err) {
			sp.count(item.Kind, "rejected")
			return err
		}
		sp.logger.Info("directory unavailable, queueing change", zap.String("kind", item.Kind), zap.Error(err))
	}

	if _, err := sp.store.EnqueueLatest(item); err != nil {
		return err
	}
	if sp.metrics != nil {
		sp.metrics.SyncQueueLength(sp.Size())
	}
	return nil
}

// Size returns the number of pending changes.
func (sp *SyncProcessor) Size() int {
	if sp == nil || sp.store == nil {
		return 0
	}
	size, err := sp.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (sp *SyncProcessor) processItem(ctx context.Context, item localstore.Item) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var change session.Change
	if err := json.Unmarshal(item.Data, &change); err != nil {
		return domain.WrapError(domain.ErrCodeInvalid, "corrupt pending change", err)
	}

	credential := change.Credential
	if sp.credentials != nil {
		if live, ok := sp.credentials.CredentialFor(change.AccountID); ok {
			credential = live
		}
	}

	var err error
	switch change.Kind {
	case session.ChangeRole:
		_, err = sp.directory.UpdateRole(ctx, credential, change.Role)
	case session.ChangeSubscription:
		_, err = sp.directory.UpdateSubscription(ctx, credential, change.Tier)
	case session.ChangeUnlinkPlayer:
		_, err = sp.directory.UnlinkPlayer(ctx, credential)
	default:
		return domain.NewError(domain.ErrCodeInvalid, "unsupported change kind "+string(change.Kind))
	}
	return err
}

func (sp *SyncProcessor) count(kind, result string) {
	if sp.metrics != nil {
		sp.metrics.SyncItem(kind, result)
	}
}

// retryable reports whether a later attempt could succeed.
func retryable(err error) bool {
	var dErr *domain.Error
	if !errors.As(err, &dErr) {
		return true
	}
	switch dErr.Code {
	case domain.ErrCodeNetworkUnavailable, domain.ErrCodeServerError:
		return true
	}
	return false
}

func priorityOf(kind session.ChangeKind) int {
	switch kind {
	case session.ChangeSubscription:
		return 2
	default:
		return 3
	}
}

var _ session.SyncBuffer = (*SyncProcessor)(nil)
