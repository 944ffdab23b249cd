package scheduler

import (
	"context"
	"fmt"
	"time"

	"meeting_assistant_backend/internal/meetingupdate/repository"
	"meeting_assistant_backend/internal/recurrence"
	"meeting_assistant_backend/platform/config"
	"meeting_assistant_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReminderEmailSender delivers one reminder message.
type ReminderEmailSender interface {
	SendMeetingReminder(ctx context.Context, toEmail, toName, title string, start time.Time, timezone string, minutes int) error
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	repo   *repository.Repository
	sched  ReminderScheduler
	sender ReminderEmailSender
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, sched ReminderScheduler, sender ReminderEmailSender, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		repo:   repository.New(pool),
		sched:  sched,
		sender: sender,
		log:    log,
	}

	mux.HandleFunc(TaskMeetingReminder, w.handleMeetingReminder)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleMeetingReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseMeetingReminderPayload(task)
	if err != nil {
		return err
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return err
	}

	event, err := w.repo.GetEvent(ctx, userID, payload.MeetingID)
	if err == repository.ErrNotFound {
		// Meeting was deleted after the reminder was queued.
		return nil
	}
	if err != nil {
		return err
	}

	prefs, err := w.repo.MeetingPreferences(ctx, userID)
	if err != nil {
		return err
	}
	if prefs.PrimaryEmail == "" {
		w.log.Warn("no primary email for reminder", "userId", payload.UserID, "meetingId", payload.MeetingID)
		return nil
	}

	if err := w.sender.SendMeetingReminder(ctx, prefs.PrimaryEmail, prefs.Name, event.Title, event.StartDate, event.Timezone, payload.Minutes); err != nil {
		return err
	}

	return w.scheduleNextOccurrence(ctx, event, payload)
}

// scheduleNextOccurrence requeues the reminder for recurring meetings.
func (w *Worker) scheduleNextOccurrence(ctx context.Context, event *repository.Event, payload MeetingReminderPayload) error {
	if len(event.Recurrence) == 0 {
		return nil
	}
	next, ok, err := recurrence.NextAfter(event.Recurrence, event.StartDate, event.StartDate)
	if err != nil {
		w.log.Warn("unparseable recurrence on reminder", "meetingId", event.ID, "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	runAt := next.Add(-time.Duration(payload.Minutes) * time.Minute)
	if runAt.Before(time.Now()) {
		return nil
	}
	return w.sched.ScheduleMeetingReminder(ctx, payload, runAt)
}
