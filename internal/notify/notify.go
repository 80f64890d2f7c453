package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"servewise-backend/utilities"
)

type Recipient struct {
	EmployeeID uuid.UUID
	Name       string
	Email      string
}

type LessonSummary struct {
	LessonID uuid.UUID
	Title    string
	Category string
}

// LessonsAssigned is the payload of utilities.EventLessonsAssigned.
type LessonsAssigned struct {
	RestaurantID   uuid.UUID
	RestaurantName string
	Recipients     []Recipient
	Lessons        []LessonSummary
}

// Notifier tells employees that new lessons are waiting for them.
type Notifier interface {
	NotifyLessonsAssigned(ctx context.Context, event LessonsAssigned) error
}

// LogNotifier only logs; it is used when email delivery is disabled.
type LogNotifier struct {
	log *utilities.Logger
}

func NewLogNotifier(log *utilities.Logger) *LogNotifier {
	return &LogNotifier{log: log.With("notifier", "log")}
}

func (n *LogNotifier) NotifyLessonsAssigned(_ context.Context, event LessonsAssigned) error {
	n.log.Info("lessons assigned",
		"restaurant_id", event.RestaurantID,
		"recipients", len(event.Recipients),
		"lessons", len(event.Lessons),
	)
	return nil
}

// Subscribe delivers lessons-assigned events published on bus. Delivery is
// fire-and-forget: failures are logged, never reported to the publisher.
// perRecipient is the delivery budget of one recipient; an event gets that
// budget once per recipient, so a paced fan-out is never cut short.
func Subscribe(bus *utilities.EventBus, n Notifier, log *utilities.Logger, perRecipient time.Duration) {
	if perRecipient <= 0 {
		perRecipient = time.Minute
	}
	bus.Subscribe(utilities.EventLessonsAssigned, func(data interface{}) {
		event, ok := data.(LessonsAssigned)
		if !ok || len(event.Recipients) == 0 || len(event.Lessons) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), perRecipient*time.Duration(len(event.Recipients)))
		defer cancel()
		if err := n.NotifyLessonsAssigned(ctx, event); err != nil {
			log.Warn("lesson notification failed", "restaurant_id", event.RestaurantID, "error", err)
		}
	})
}
