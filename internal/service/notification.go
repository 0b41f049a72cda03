package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fieldservice/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationDestinationReached NotificationType = "DESTINATION_REACHED"
	NotificationNavigationFailed   NotificationType = "NAVIGATION_FAILED"
	NotificationJobCompleted       NotificationType = "JOB_COMPLETED"
	NotificationClockedIn          NotificationType = "CLOCKED_IN"
	NotificationClockedOut         NotificationType = "CLOCKED_OUT"
)

// Notification represents a notification to be sent.
type Notification struct {
	Type        NotificationType
	RecipientID string
	Title       string
	Message     string
	Data        map[string]any
	CreatedAt   time.Time
}

// NotificationService delivers worker notifications. Delivery transports
// are external; this implementation records them in the structured log.
type NotificationService struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{logger: logger.Named("notification"), now: time.Now}
}

// NotifyDestinationReached tells the worker navigation has ended at the site.
func (s *NotificationService) NotifyDestinationReached(ctx context.Context, workerID string, state domain.SimulationState, insideGeofence bool) error {
	message := "You have arrived at the job site."
	if !insideGeofence {
		message = "Route finished outside the job site radius."
	}

	return s.send(ctx, Notification{
		Type:        NotificationDestinationReached,
		RecipientID: workerID,
		Title:       "Destination Reached",
		Message:     message,
		Data: map[string]any{
			"session_id":      state.SessionID,
			"lat":             state.Position.Latitude,
			"lng":             state.Position.Longitude,
			"inside_geofence": insideGeofence,
		},
	})
}

// NotifyNavigationFailed names the failure that stopped navigation.
func (s *NotificationService) NotifyNavigationFailed(ctx context.Context, workerID string, cause error) error {
	return s.send(ctx, Notification{
		Type:        NotificationNavigationFailed,
		RecipientID: workerID,
		Title:       "Navigation Failed",
		Message:     fmt.Sprintf("Could not start navigation: %v", cause),
		Data:        map[string]any{"error": cause.Error()},
	})
}

// NotifyJobCompleted announces a completed job.
func (s *NotificationService) NotifyJobCompleted(ctx context.Context, jobNumber string, job domain.JobRecord) error {
	return s.send(ctx, Notification{
		Type:        NotificationJobCompleted,
		RecipientID: job.String("worker_id"),
		Title:       "Job Completed",
		Message:     fmt.Sprintf("Job %s has been marked as completed", jobNumber),
		Data: map[string]any{
			"job_number": jobNumber,
			"remarks":    job.String("remarks"),
		},
	})
}

// NotifyClockedIn confirms a clock-in.
func (s *NotificationService) NotifyClockedIn(ctx context.Context, record *domain.AttendanceRecord) error {
	return s.send(ctx, Notification{
		Type:        NotificationClockedIn,
		RecipientID: record.WorkerID,
		Title:       "Clocked In",
		Message:     fmt.Sprintf("Clocked in at %s", record.ClockInAt.Format("15:04")),
		Data:        map[string]any{"date": record.Date},
	})
}

// NotifyClockedOut confirms a clock-out with the time worked.
func (s *NotificationService) NotifyClockedOut(ctx context.Context, record *domain.AttendanceRecord) error {
	return s.send(ctx, Notification{
		Type:        NotificationClockedOut,
		RecipientID: record.WorkerID,
		Title:       "Clocked Out",
		Message:     fmt.Sprintf("Clocked out after %dh %02dm", record.WorkedMinutes/60, record.WorkedMinutes%60),
		Data: map[string]any{
			"date":           record.Date,
			"worked_minutes": record.WorkedMinutes,
		},
	})
}

func (s *NotificationService) send(_ context.Context, n Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}

	s.logger.Info(n.Title,
		zap.String("type", string(n.Type)),
		zap.String("recipient", n.RecipientID),
		zap.String("message", n.Message),
		zap.Any("data", n.Data),
		zap.Time("created_at", n.CreatedAt))

	return nil
}
