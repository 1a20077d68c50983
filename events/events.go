package events

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeUserCreated   EventType = "user_created"
	EventTypeBalanceChange EventType = "balance_change"
	EventTypeCardAdded     EventType = "card_added"
	EventTypeCardWon       EventType = "card_won"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// UserCreatedEvent fires when a user record is created on first contact.
type UserCreatedEvent struct {
	UserID int64
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// BalanceChangeEvent fires on every balance mutation. The front end uses it
// to notify users of admin credits.
type BalanceChangeEvent struct {
	UserID       int64
	ChangeAmount decimal.Decimal
	NewBalance   decimal.Decimal
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// CardAddedEvent fires when the administrator adds inventory.
type CardAddedEvent struct {
	CardID int64
	Name   string
}

func (e CardAddedEvent) Type() EventType {
	return EventTypeCardAdded
}

// CardWonEvent fires when a gamble awards a card. The front end uses it to
// notify the administrator of the sale.
type CardWonEvent struct {
	UserID int64
	CardID int64
	Cost   decimal.Decimal
	Price  decimal.Decimal
}

func (e CardWonEvent) Type() EventType {
	return EventTypeCardWon
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking the store operation
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus stashes events raised during a unit of work and only
// forwards them to the real bus after the database commit succeeds.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush is called after a successful commit. Events are emitted on a
// background context so they outlive the transaction's context.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithField("pendingEventCount", len(b.pending)).Debug("Flushing pending events to main event bus")

	eventCtx := context.Background()
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard drops pending events after a rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
