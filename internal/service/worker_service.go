package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"clinic-booking-backend/internal/models"

	"github.com/robfig/cron/v3"
)

// WorkerService runs the daily agenda job on a cron schedule.
type WorkerService struct {
	notifications *NotificationService
	schedule      string
	now           func() time.Time
}

func NewWorkerService(notifications *NotificationService, schedule string) *WorkerService {
	return &WorkerService{
		notifications: notifications,
		schedule:      schedule,
		now:           time.Now,
	}
}

// Start registers the agenda job and blocks until ctx is cancelled. An empty
// schedule disables the worker.
func (w *WorkerService) Start(ctx context.Context) error {
	if w.schedule == "" {
		log.Println("Agenda worker disabled (AGENDA_CRON is empty)")
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(w.schedule, w.RunAgenda); err != nil {
		return fmt.Errorf("invalid agenda schedule %q: %w", w.schedule, err)
	}
	c.Start()
	log.Printf("Agenda worker started - schedule %q", w.schedule)

	<-ctx.Done()
	<-c.Stop().Done()
	log.Println("Agenda worker stopped")
	return nil
}

// RunAgenda sends today's agenda notifications once
func (w *WorkerService) RunAgenda() {
	today := models.DateOf(w.now())
	sent, err := w.notifications.SendDailyAgenda(today)
	if err != nil {
		log.Printf("Error sending daily agenda: %v", err)
		return
	}
	log.Printf("Daily agenda for %s sent to %d doctor(s)", today, sent)
}
