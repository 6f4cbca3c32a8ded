package usecase

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/Daniil-Sakharov/hockey-project-sub001/domain"
	"github.com/Daniil-Sakharov/hockey-project-sub001/pkg/httpcontext"
	"github.com/Daniil-Sakharov/hockey-project-sub001/pkg/logger"
	"github.com/Daniil-Sakharov/hockey-project-sub001/repository"
)

// Recorder appends account audit events. A failed append is logged and never
// fails the operation that produced it.
type Recorder struct {
	events repository.EventRepository
	logger *zap.Logger
}

func NewRecorder(events repository.EventRepository, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{events: events, logger: log}
}

func (r *Recorder) Record(ctx context.Context, accountID, name string, payload interface{}) {
	if r == nil || r.events == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = []byte("{}")
	}
	event := domain.AccountEvent{
		AccountID: accountID,
		Name:      name,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}
	if client, ok := httpcontext.ClientFrom(ctx); ok {
		event.Metadata = client.Metadata()
	}
	if err := r.events.Append(ctx, event); err != nil {
		logger.WithRequestID(ctx, r.logger).Warn("failed to record account event",
			zap.String("account_id", accountID),
			zap.String("event", name),
			zap.Error(err))
	}
}
