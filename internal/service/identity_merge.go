package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sxroads/hypertrophy/internal/domain/event"
	"github.com/sxroads/hypertrophy/internal/domain/user"
	apperrors "github.com/sxroads/hypertrophy/internal/errors"
	"github.com/sxroads/hypertrophy/internal/logging"
	"github.com/sxroads/hypertrophy/internal/repository"
)

// IdentityMerge re-attributes an anonymous user's history onto a registered
// account, once, atomically.
type IdentityMerge struct {
	sqlDB         *sql.DB
	users         *repository.UserRepository
	events        *repository.EventRepository
	workouts      *repository.WorkoutRepository
	weeklyMetrics *repository.WeeklyMetricsRepository
	weeklyReports *repository.WeeklyReportRepository
	aggregator    *WeeklyAggregator
	bus           *event.Bus
	logger        *logging.Logger
}

// NewIdentityMerge creates a new IdentityMerge.
func NewIdentityMerge(sqlDB *sql.DB, users *repository.UserRepository, events *repository.EventRepository, workouts *repository.WorkoutRepository, weeklyMetrics *repository.WeeklyMetricsRepository, weeklyReports *repository.WeeklyReportRepository, aggregator *WeeklyAggregator, bus *event.Bus, logger *logging.Logger) *IdentityMerge {
	return &IdentityMerge{
		sqlDB:         sqlDB,
		users:         users,
		events:        events,
		workouts:      workouts,
		weeklyMetrics: weeklyMetrics,
		weeklyReports: weeklyReports,
		aggregator:    aggregator,
		bus:           bus,
		logger:        logger,
	}
}

// Merge re-attributes anonymousUserID's events, workouts, weekly metrics, and
// weekly reports onto realUserID, then deletes the anonymous user row.
func (m *IdentityMerge) Merge(ctx context.Context, anonymousUserID, realUserID string) (*MergeResult, error) {
	anon, err := m.users.GetByID(ctx, anonymousUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up anonymous user: %w", err)
	}
	if anon == nil {
		return nil, apperrors.NewMergeInvalid("anonymous_user_id does not exist")
	}
	real, err := m.users.GetByID(ctx, realUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up target user: %w", err)
	}
	if real == nil {
		return nil, apperrors.NewMergeInvalid("real_user_id does not exist")
	}
	if err := user.ValidateMergePreconditions(anon, real); err != nil {
		return nil, apperrors.NewMergeInvalid(err.Error())
	}

	count, err := m.events.CountByUser(ctx, anonymousUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to count anonymous user's events: %w", err)
	}
	if count == 0 {
		return &MergeResult{Merged: false, AnonymousUserID: anonymousUserID, RealUserID: realUserID}, nil
	}

	result, err := m.mergeTx(ctx, anonymousUserID, realUserID)
	if err != nil {
		return nil, apperrors.NewMergeFailed(err.Error())
	}

	if err := m.aggregator.RebuildForUser(ctx, realUserID); err != nil {
		m.logger.Errorw("post-merge weekly metrics rebuild failed", "error", err, "real_user_id", realUserID)
	}

	if m.bus != nil {
		m.bus.PublishAsync(ctx, event.NewEventBuilder(event.EventMergeCompleted, realUserID, "").
			WithMergeResult(anonymousUserID, realUserID, int(result.EventsReattributed)).Build())
	}

	return result, nil
}

func (m *IdentityMerge) mergeTx(ctx context.Context, anonymousUserID, realUserID string) (*MergeResult, error) {
	tx, err := m.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin merge transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	eventsReattributed, err := m.events.WithTx(tx).Reattribute(ctx, anonymousUserID, realUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to reattribute events: %w", err)
	}
	workoutsReattributed, err := m.workouts.WithTx(tx).Reattribute(ctx, anonymousUserID, realUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to reattribute workouts: %w", err)
	}
	metricsReattributed, err := m.weeklyMetrics.WithTx(tx).Reattribute(ctx, anonymousUserID, realUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to reattribute weekly metrics: %w", err)
	}
	reportsReattributed, err := m.weeklyReports.WithTx(tx).Reattribute(ctx, anonymousUserID, realUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to reattribute weekly reports: %w", err)
	}
	if err := m.users.WithTx(tx).Delete(ctx, anonymousUserID); err != nil {
		return nil, fmt.Errorf("failed to delete anonymous user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit merge: %w", err)
	}
	committed = true

	return &MergeResult{
		Merged:               true,
		AnonymousUserID:      anonymousUserID,
		RealUserID:           realUserID,
		EventsReattributed:   eventsReattributed,
		WorkoutsReattributed: workoutsReattributed,
		MetricsReattributed:  metricsReattributed,
		ReportsReattributed:  reportsReattributed,
	}, nil
}
