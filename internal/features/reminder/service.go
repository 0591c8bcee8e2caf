package reminder

import (
	"context"
	"fmt"
	"time"

	common_models "clientdesk/internal/common/models"
	"clientdesk/internal/config"
	"clientdesk/internal/features/audit"
	"clientdesk/internal/features/notification"
	"clientdesk/internal/features/servicerequest"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReminderService runs the renewal-reminder scan: service requests whose
// renewal date falls inside the configured window get one notification per
// cycle.
type ReminderService interface {
	InitializeScheduler(ctx context.Context) error
	StopScheduler() error
	RunScan(ctx context.Context) (int, error)
	Upcoming(ctx context.Context) ([]common_models.ServiceRequest, error)
}

type ReminderServiceImpl struct {
	RequestRepo      servicerequest.ServiceRequestRepository
	NotificationRepo notification.NotificationRepository
	AuditService     audit.AuditService
	Config           *config.Config
	Logger           *zap.Logger

	scheduler *cron.Cron
}

func NewReminderService(
	requestRepo servicerequest.ServiceRequestRepository,
	notificationRepo notification.NotificationRepository,
	auditService audit.AuditService,
	cfg *config.Config,
	logger *zap.Logger,
) ReminderService {
	return &ReminderServiceImpl{
		RequestRepo:      requestRepo,
		NotificationRepo: notificationRepo,
		AuditService:     auditService,
		Config:           cfg,
		Logger:           logger,
	}
}

func (s *ReminderServiceImpl) InitializeScheduler(ctx context.Context) error {
	if _, err := cron.ParseStandard(s.Config.ReminderSchedule); err != nil {
		return fmt.Errorf("invalid reminder schedule: %w", err)
	}

	s.scheduler = cron.New()
	_, err := s.scheduler.AddFunc(s.Config.ReminderSchedule, func() {
		scanCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		sent, err := s.RunScan(scanCtx)
		if err != nil {
			s.Logger.Error("renewal reminder scan failed", zap.Error(err))
			return
		}
		s.Logger.Info("renewal reminder scan finished", zap.Int("sent", sent))
	})
	if err != nil {
		return err
	}

	s.scheduler.Start()
	s.Logger.Info("reminder scheduler started", zap.String("schedule", s.Config.ReminderSchedule))
	return nil
}

func (s *ReminderServiceImpl) StopScheduler() error {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	return nil
}

// RunScan sends reminders for every request due inside the window and
// returns how many went out. Marking the request keeps re-runs idempotent
// within one renewal cycle.
func (s *ReminderServiceImpl) RunScan(ctx context.Context) (int, error) {
	cutoff := time.Now().AddDate(0, 0, s.Config.ReminderWindowDays)

	due, err := s.RequestRepo.FindRenewalsDue(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, req := range due {
		n := &notification.Notification{
			ClientID: req.ClientID,
			Type:     notification.TypeRenewalReminder,
			Title:    "Service renewal due",
			Message:  fmt.Sprintf("Service %q for %s renews on %s", req.ServiceName, req.ClientEmail, req.RenewalAt.Format("2006-01-02")),
		}
		if err := s.NotificationRepo.Create(ctx, n); err != nil {
			s.Logger.Error("failed to create renewal notification",
				zap.String("request_id", req.ID.Hex()), zap.Error(err))
			continue
		}

		now := time.Now()
		if err := s.RequestRepo.MarkReminderSent(ctx, req.ID, now); err != nil {
			s.Logger.Error("failed to mark reminder sent",
				zap.String("request_id", req.ID.Hex()), zap.Error(err))
			continue
		}

		s.AuditService.LogChange(ctx, common_models.AuditActionReminder, "service_request", req.ID.Hex(), map[string]common_models.Change{
			"reminder_sent_at": {New: now},
		})
		sent++
	}

	return sent, nil
}

func (s *ReminderServiceImpl) Upcoming(ctx context.Context) ([]common_models.ServiceRequest, error) {
	cutoff := time.Now().AddDate(0, 0, s.Config.ReminderWindowDays)
	return s.RequestRepo.FindRenewalsDue(ctx, cutoff)
}
