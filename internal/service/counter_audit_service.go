package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable/internal/models"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
)

type counterAuditRepository interface {
	SubjectDrift(ctx context.Context) ([]models.CounterDrift, error)
	AllocationDrift(ctx context.Context) ([]models.CounterDrift, error)
}

// CounterAuditService recomputes the derived hour counters and reports rows that drifted
// from base hours plus schedule count. It never writes.
type CounterAuditService struct {
	repo   counterAuditRepository
	logger *zap.Logger
}

// NewCounterAuditService constructs the audit service.
func NewCounterAuditService(repo counterAuditRepository, logger *zap.Logger) *CounterAuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CounterAuditService{repo: repo, logger: logger}
}

// Verify returns every drifted counter; an empty slice means the store is consistent.
func (s *CounterAuditService) Verify(ctx context.Context) ([]models.CounterDrift, error) {
	subjects, err := s.repo.SubjectDrift(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to audit subject hours")
	}
	allocations, err := s.repo.AllocationDrift(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to audit allocation hours")
	}

	drift := append(subjects, allocations...)
	if len(drift) > 0 {
		s.logger.Warn("hour counters drifted", zap.Int("subjects", len(subjects)), zap.Int("allocations", len(allocations)))
	}
	return drift, nil
}
