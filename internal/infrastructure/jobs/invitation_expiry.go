package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"visa-onboarding.backend/internal/domain/entities"
	"visa-onboarding.backend/internal/metrics"
	"visa-onboarding.backend/pkg/logger"
)

type invitationExpiryRepo interface {
	GetExpiredUnused(ctx context.Context, limit int) ([]*entities.RegistrationInvitation, error)
	ExpireInvitations(ctx context.Context, ids []uuid.UUID) error
}

// InvitationExpiryJob marks unused invitations past their expiry as EXPIRED
type InvitationExpiryJob struct {
	repo     invitationExpiryRepo
	metrics  *metrics.Metrics
	interval time.Duration
	batch    int
	stop     chan struct{}
	stopOnce sync.Once
}

const defaultExpiryInterval = time.Minute

// NewInvitationExpiryJob builds the job. Non-positive interval or batch fall
// back to the defaults.
func NewInvitationExpiryJob(repo invitationExpiryRepo, m *metrics.Metrics, interval time.Duration, batch int) *InvitationExpiryJob {
	if interval <= 0 {
		interval = defaultExpiryInterval
	}
	if batch <= 0 {
		batch = 100
	}
	return &InvitationExpiryJob{
		repo:     repo,
		metrics:  m,
		interval: interval,
		batch:    batch,
		stop:     make(chan struct{}),
	}
}

// Start runs until ctx is cancelled or Stop is called
func (j *InvitationExpiryJob) Start(ctx context.Context) {
	logger.Info(ctx, "invitation expiry job started", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "invitation expiry job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "invitation expiry job stopped")
			return
		case <-ticker.C:
			j.expireOverdue(ctx)
		}
	}
}

func (j *InvitationExpiryJob) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
}

func (j *InvitationExpiryJob) expireOverdue(ctx context.Context) {
	expired, err := j.repo.GetExpiredUnused(ctx, j.batch)
	if err != nil {
		logger.Error(ctx, "failed to fetch overdue invitations", zap.Error(err))
		return
	}
	if len(expired) == 0 {
		return
	}

	ids := make([]uuid.UUID, 0, len(expired))
	for _, inv := range expired {
		ids = append(ids, inv.ID)
	}

	if err := j.repo.ExpireInvitations(ctx, ids); err != nil {
		logger.Error(ctx, "failed to expire invitations", zap.Int("count", len(ids)), zap.Error(err))
		return
	}

	j.metrics.InvitationsExpiredBy(len(ids))
	logger.Info(ctx, "expired invitations", zap.Int("count", len(ids)))
}
