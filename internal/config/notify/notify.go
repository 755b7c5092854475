// Package notify delivers setting writes to per-key callbacks.
//
// Callbacks registered for a key run synchronously, in registration order,
// on the goroutine that performed the write. A callback that panics is
// recovered and logged; the remaining callbacks still run.
package notify

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ywtatools/ywta/internal/log"
)

// Callback is invoked with the key that was written and its new value.
type Callback func(key string, value any)

// Subscription identifies one callback registration. Registering the same
// function twice yields two subscriptions and two invocations per write.
type Subscription struct {
	id       uuid.UUID
	key      string
	callback Callback
	notifier *Notifier
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string {
	return s.id.String()
}

// Key returns the key the subscription listens to.
func (s *Subscription) Key() string {
	return s.key
}

// Unsubscribe removes this subscription. It is a no-op if already removed.
func (s *Subscription) Unsubscribe() {
	if s != nil && s.notifier != nil {
		s.notifier.Unsubscribe(s)
	}
}

// Notifier manages callback subscriptions keyed by dotted setting key.
// It is not safe for concurrent use.
type Notifier struct {
	subs   map[string][]*Subscription
	logger zerolog.Logger
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithLogger sets the logger used to report callback panics.
func WithLogger(logger zerolog.Logger) Option {
	return func(n *Notifier) {
		n.logger = logger
	}
}

// New creates a new Notifier.
func New(opts ...Option) *Notifier {
	n := &Notifier{
		subs:   make(map[string][]*Subscription),
		logger: log.WithComponent("notify"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Subscribe appends cb to the callbacks for key.
func (n *Notifier) Subscribe(key string, cb Callback) *Subscription {
	sub := &Subscription{
		id:       uuid.New(),
		key:      key,
		callback: cb,
		notifier: n,
	}
	n.subs[key] = append(n.subs[key], sub)
	return sub
}

// Unsubscribe removes a subscription. Returns false if it was not registered.
func (n *Notifier) Unsubscribe(sub *Subscription) bool {
	if sub == nil {
		return false
	}
	list := n.subs[sub.key]
	for i, s := range list {
		if s == sub {
			n.subs[sub.key] = append(list[:i:i], list[i+1:]...)
			if len(n.subs[sub.key]) == 0 {
				delete(n.subs, sub.key)
			}
			return true
		}
	}
	return false
}

// Notify invokes every callback registered for exactly key, in registration
// order. It returns the number of callbacks that panicked.
func (n *Notifier) Notify(key string, value any) int {
	list := n.subs[key]
	if len(list) == 0 {
		return 0
	}

	// Callbacks may unsubscribe while running; iterate a snapshot.
	snapshot := append([]*Subscription(nil), list...)
	failed := 0
	for _, sub := range snapshot {
		if err := n.safeCall(sub, key, value); err != nil {
			failed++
			n.logger.Error().Err(err).
				Str("key", key).
				Str("subscription", sub.ID()).
				Msg("Callback failed")
		}
	}
	return failed
}

func (n *Notifier) safeCall(sub *Subscription, key string, value any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("callback panic: %v", r)
		}
	}()
	sub.callback(key, value)
	return nil
}
