package scheduler

import (
	"context"
	"time"

	ievents "meeting_assistant_backend/internal/events"
	"meeting_assistant_backend/platform/events"
	"meeting_assistant_backend/platform/logger"
)

// RegisterMeetingUpdatedSubscriber queues a reminder task per reminder
// offset whenever a meeting update commits. Offsets already in the past
// for the new start time are skipped.
func RegisterMeetingUpdatedSubscriber(bus events.Bus, sched ReminderScheduler, log *logger.Logger) {
	bus.Subscribe(ievents.MeetingUpdatedName, events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(ievents.MeetingUpdated)
		if !ok {
			return nil
		}
		for _, minutes := range e.ReminderMinutes {
			runAt := e.StartDate.Add(-time.Duration(minutes) * time.Minute)
			if runAt.Before(time.Now()) {
				continue
			}
			payload := MeetingReminderPayload{
				UserID:    e.UserID.String(),
				MeetingID: e.MeetingID,
				Minutes:   minutes,
			}
			if err := sched.ScheduleMeetingReminder(ctx, payload, runAt); err != nil {
				log.Error("schedule meeting reminder failed", "error", err, "meetingId", e.MeetingID)
				return err
			}
		}
		return nil
	}))
}
