package notifier

import (
	"context"
	"log"

	"github.com/abihavaraj/animo-sub001/pkg/rabbitmq"
)

// Notifier is the fire-and-forget notification dispatcher. Delivery failures
// are logged and never propagated back into booking or cancellation flows.
type Notifier interface {
	ScheduleReminder(ctx context.Context, userID, classID uint, classStartISO, message string)
	NotifyPromoted(ctx context.Context, userID, classID uint, message string)
}

const (
	keyReminder = "notification.reminder"
	keyPromoted = "notification.promoted"
)

type reminderPayload struct {
	UserID     uint   `json:"user_id"`
	ClassID    uint   `json:"class_id"`
	ClassStart string `json:"class_start"`
	Message    string `json:"message"`
}

type promotedPayload struct {
	UserID  uint   `json:"user_id"`
	ClassID uint   `json:"class_id"`
	Message string `json:"message"`
}

type rabbitNotifier struct {
	publisher *rabbitmq.Publisher
}

func NewRabbitNotifier(publisher *rabbitmq.Publisher) Notifier {
	return &rabbitNotifier{publisher: publisher}
}

func (n *rabbitNotifier) ScheduleReminder(ctx context.Context, userID, classID uint, classStartISO, message string) {
	payload := reminderPayload{UserID: userID, ClassID: classID, ClassStart: classStartISO, Message: message}
	if err := n.publisher.Publish(keyReminder, payload); err != nil {
		log.Printf("[Notifier] failed to publish reminder for user %d class %d: %v", userID, classID, err)
	}
}

func (n *rabbitNotifier) NotifyPromoted(ctx context.Context, userID, classID uint, message string) {
	payload := promotedPayload{UserID: userID, ClassID: classID, Message: message}
	if err := n.publisher.Publish(keyPromoted, payload); err != nil {
		log.Printf("[Notifier] failed to publish promotion for user %d class %d: %v", userID, classID, err)
	}
}

// Nop discards all notifications; used when RabbitMQ is not configured and in
// tests.
type Nop struct{}

func (Nop) ScheduleReminder(ctx context.Context, userID, classID uint, classStartISO, message string) {
}
func (Nop) NotifyPromoted(ctx context.Context, userID, classID uint, message string) {}
