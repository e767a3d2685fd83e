package actors

import (
	"context"
	"fmt"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/example/storefront/pkg/events"
	"github.com/example/storefront/pkg/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const deliveryTimeout = 5 * time.Second

// Messages
type Notification struct {
	Event events.Event
}

// Flush is answered once every notification queued before it has been handled.
type Flush struct{}

type Flushed struct {
	Delivered int
	Failed    int
}

// NotificationActor fans domain events out to the audit log and the event broker.
// Failures are logged and counted; they never reach the request that raised the event.
type NotificationActor struct {
	logger    *zap.Logger
	audit     repository.AuditLogger
	publisher events.Publisher
	delivered int
	failed    int
}

func (a *NotificationActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *Notification:
		a.handle(msg.Event)

	case *Flush:
		ctx.Respond(&Flushed{Delivered: a.delivered, Failed: a.failed})

	case *actor.Started:
		a.logger.Info("Notification actor started")

	case *actor.Stopping:
		a.logger.Info("Notification actor stopping")
	}
}

func (a *NotificationActor) handle(event events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	ok := true
	entry := &repository.AuditLog{
		Action:     string(event.Type),
		EntityType: event.EntityType(),
		EntityID:   event.EntityID,
		UserID:     event.UserID,
		Data:       bson.M(event.Data),
		CreatedAt:  event.OccurredAt,
	}
	if err := a.audit.CreateAuditLog(ctx, entry); err != nil {
		ok = false
		a.logger.Error("Failed to write audit log",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.Error(err))
	}

	if err := a.publisher.Publish(ctx, event); err != nil {
		ok = false
		a.logger.Error("Failed to publish event",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.Error(err))
	}

	if ok {
		a.delivered++
		a.logger.Debug("Event delivered",
			zap.String("type", string(event.Type)),
			zap.Int64("entity_id", event.EntityID))
	} else {
		a.failed++
	}
}

// Notifier owns the actor system hosting the notification actor.
type Notifier struct {
	system *actor.ActorSystem
	pid    *actor.PID
	logger *zap.Logger
}

func NewNotifier(logger *zap.Logger, audit repository.AuditLogger, publisher events.Publisher) (*Notifier, error) {
	system := actor.NewActorSystem()

	props := actor.PropsFromProducer(func() actor.Actor {
		return &NotificationActor{
			logger:    logger.Named("notification-actor"),
			audit:     audit,
			publisher: publisher,
		}
	})
	pid, err := system.Root.SpawnNamed(props, "notification-actor")
	if err != nil {
		return nil, fmt.Errorf("failed to spawn notification actor: %w", err)
	}

	return &Notifier{system: system, pid: pid, logger: logger}, nil
}

// Notify queues event for delivery and returns immediately.
func (n *Notifier) Notify(event events.Event) {
	n.system.Root.Send(n.pid, &Notification{Event: event})
}

// Flush waits until all previously queued events were handled.
func (n *Notifier) Flush(timeout time.Duration) (*Flushed, error) {
	result, err := n.system.Root.RequestFuture(n.pid, &Flush{}, timeout).Result()
	if err != nil {
		return nil, err
	}
	flushed, ok := result.(*Flushed)
	if !ok {
		return nil, fmt.Errorf("unexpected reply %T", result)
	}
	return flushed, nil
}

// Stop drains the mailbox and shuts the actor system down.
func (n *Notifier) Stop(timeout time.Duration) {
	if stats, err := n.Flush(timeout); err != nil {
		n.logger.Warn("Notification queue not drained", zap.Error(err))
	} else {
		n.logger.Info("Notification actor drained",
			zap.Int("delivered", stats.Delivered),
			zap.Int("failed", stats.Failed))
	}
	if err := n.system.Root.StopFuture(n.pid).Wait(); err != nil {
		n.logger.Warn("Failed to stop notification actor", zap.Error(err))
	}
	n.system.Shutdown()
}
