package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rl1809/reservation-service/internal/core/domain"
	"github.com/rl1809/reservation-service/internal/queue"
)

const JobTypePushNotification = "push_notification"

// notificationSteps is the number of discrete work units per notification.
const notificationSteps = 2

// Notifier processes push-notification jobs: a fixed number of work units
// per job, progress reported through the first half, and a hard failure
// for blacklisted numbers. No wall-clock pacing; pacing belongs to tests.
type Notifier struct {
	queue     *queue.Queue
	log       *zap.SugaredLogger
	blacklist map[string]struct{}
	steps     int
}

func NewNotifier(q *queue.Queue, log *zap.SugaredLogger, blacklist []string) *Notifier {
	bl := make(map[string]struct{}, len(blacklist))
	for _, number := range blacklist {
		bl[number] = struct{}{}
	}
	return &Notifier{queue: q, log: log, blacklist: bl, steps: notificationSteps}
}

// Start registers the notification handler with two concurrent workers.
// Notifications carry no shared counter, so concurrency above 1 is safe.
func (n *Notifier) Start() error {
	return n.queue.Process(JobTypePushNotification, 2, n.send)
}

// EnqueueBatch creates one notification job per element of a JSON array
// of payloads. Non-array input is rejected and nothing is enqueued.
func (n *Notifier) EnqueueBatch(ctx context.Context, raw []byte) ([]*domain.Job, error) {
	return n.queue.SaveBatchJSON(ctx, JobTypePushNotification, raw)
}

func (n *Notifier) send(_ context.Context, job *domain.Job) error {
	phone := job.PayloadString("phoneNumber")
	message := job.PayloadString("message")

	for done := 0; done < n.steps; done++ {
		if done <= n.steps/2 {
			job.Progress(done, n.steps)
		}
		if _, banned := n.blacklist[phone]; banned {
			return fmt.Errorf("phone number %s is blacklisted", phone)
		}
		if done == 0 {
			n.log.Infow("sending notification", "phone_number", phone, "message", message)
		}
	}
	return nil
}
