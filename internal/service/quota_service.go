package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/smp-yps/assignment-api/internal/models"
	appErrors "github.com/smp-yps/assignment-api/pkg/errors"
)

// DefaultWeeklyAssignmentLimit applies whenever the configured limit is
// missing or unparseable.
const DefaultWeeklyAssignmentLimit = 2

type quotaSettingStore interface {
	Get(ctx context.Context, key string) (*models.Setting, error)
}

type quotaCounter interface {
	CountForClassAndTeacher(ctx context.Context, classID string, weekNumber, year int, teacherID string) (int, error)
}

// QuotaService enforces the per-class weekly assignment ceiling. The
// bucket is the ISO week of the creation instant in UTC.
type QuotaService struct {
	settings quotaSettingStore
	counter  quotaCounter
	logger   *zap.Logger
	now      func() time.Time
}

// NewQuotaService constructs the service.
func NewQuotaService(settings quotaSettingStore, counter quotaCounter, logger *zap.Logger) *QuotaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuotaService{
		settings: settings,
		counter:  counter,
		logger:   logger,
		now:      time.Now,
	}
}

// CurrentWeekBucket returns the ISO week and year of the current UTC
// instant. Both stamping and counting use this bucket.
func (s *QuotaService) CurrentWeekBucket() (week, year int) {
	year, week = s.now().UTC().ISOWeek()
	return week, year
}

// Limit resolves the weekly ceiling from settings. Lookup or parse
// failures fall back to the default so a broken setting can never block
// assignment creation outright.
func (s *QuotaService) Limit(ctx context.Context) int {
	setting, err := s.settings.Get(ctx, models.SettingMaxAssignmentsPerWeek)
	if err != nil {
		s.logger.Warn("quota limit lookup failed, using default",
			zap.Int("default", DefaultWeeklyAssignmentLimit),
			zap.Error(err))
		return DefaultWeeklyAssignmentLimit
	}
	limit, err := strconv.Atoi(setting.Value)
	if err != nil || limit <= 0 {
		s.logger.Warn("quota limit setting is not a positive integer, using default",
			zap.String("value", setting.Value),
			zap.Int("default", DefaultWeeklyAssignmentLimit))
		return DefaultWeeklyAssignmentLimit
	}
	return limit
}

// CheckQuota verifies every target class still has room in the current
// week for this teacher. It fails on the first class at or over the
// ceiling, naming the class and the limit.
func (s *QuotaService) CheckQuota(ctx context.Context, teacherID string, classes []models.Class) error {
	limit := s.Limit(ctx)
	week, year := s.CurrentWeekBucket()
	for _, class := range classes {
		count, err := s.counter.CountForClassAndTeacher(ctx, class.ID, week, year, teacherID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count weekly assignments")
		}
		if count >= limit {
			return appErrors.Clone(appErrors.ErrQuotaExceeded,
				fmt.Sprintf("Kuota tugas untuk kelas %s sudah mencapai batas maksimal %d per minggu", class.Name, limit))
		}
	}
	return nil
}
