package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/asaskevich/EventBus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Collection names exposed by the hub. Chat messages live under a
// per-conversation collection, see ChatMessagesCollection.
const (
	CollectionProducts = "products"
	CollectionSales    = "sales"
	CollectionReviews  = "reviews"
	CollectionChats    = "chats"
	CollectionSettings = "settings"
)

// ChatMessagesCollection names the message collection of one chat.
func ChatMessagesCollection(chatID string) string {
	return "chats/" + chatID + "/messages"
}

// Notifier is what writers use to announce a committed change to a
// collection. The hub implements it.
type Notifier interface {
	Notify(collection string)
}

// Snapshot is the complete current result set of a collection,
// delivered whole on every change. Err marks a terminal unavailable
// state; no further snapshots follow it.
type Snapshot struct {
	Collection string      `json:"collection"`
	Records    interface{} `json:"records"`
	Err        error       `json:"-"`
}

// Loader fetches the full ordered result set of one collection.
type Loader func(ctx context.Context, db *gorm.DB) (interface{}, error)

// Hub hands out live collection subscriptions. Each committed write
// must be announced via Notify; the hub then reloads the collection
// and pushes a fresh snapshot to every watcher.
type Hub struct {
	db  *gorm.DB
	bus EventBus.Bus
}

func NewHub(db *gorm.DB) *Hub {
	return &Hub{db: db, bus: EventBus.New()}
}

// Notify announces a change to a collection. Delivery to watchers
// happens before Notify returns.
func (h *Hub) Notify(collection string) {
	h.bus.Publish(topic(collection))
}

func topic(collection string) string {
	return "store:changed:" + collection
}

// Subscription is one standing watch on a collection. Consumers read
// snapshots from C; only the latest snapshot is retained, stale ones
// are discarded if the consumer lags. Close stops delivery immediately
// and irrevocably.
type Subscription struct {
	collection string
	ch         chan Snapshot
	done       chan struct{}
	closeOnce  sync.Once
	reloadMu   sync.Mutex
	hub        *Hub
	handler    func()
}

// C delivers snapshots. The channel is never closed; select on Done
// to observe teardown.
func (s *Subscription) C() <-chan Snapshot { return s.ch }

// Done is closed when the subscription ends, either via Close or after
// a terminal load failure.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Close releases the subscription. Safe to call more than once, and
// safe to call from inside a delivery: closing done makes the handler
// inert immediately, while the bus unsubscribe runs on its own
// goroutine because the bus holds its lock for the whole synchronous
// Publish and a reentrant Unsubscribe would block on it.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		go func() {
			if err := s.hub.bus.Unsubscribe(topic(s.collection), s.handler); err != nil {
				zap.L().Debug("unsubscribe after close", zap.String("collection", s.collection), zap.Error(err))
			}
		}()
	})
}

// push retains only the newest snapshot: a full buffer is drained
// before the new value goes in, so a slow consumer always reads the
// latest state.
func (s *Subscription) push(snap Snapshot) {
	for {
		select {
		case <-s.done:
			return
		case s.ch <- snap:
			return
		default:
			select {
			case <-s.ch:
			default:
			}
		}
	}
}

// reload queries the collection and pushes the result. Reloads are
// serialized per subscription so overlapping Notify deliveries cannot
// leave an older result set as the retained snapshot.
func (s *Subscription) reload(ctx context.Context, load Loader) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	records, err := load(ctx, s.hub.db)
	if err != nil {
		// Transport failure is terminal for this subscription: log,
		// surface the unavailable state, stop delivering.
		zap.L().Error("collection snapshot load failed",
			zap.String("collection", s.collection), zap.Error(err))
		s.push(Snapshot{Collection: s.collection, Err: err})
		s.Close()
		return
	}
	s.push(Snapshot{Collection: s.collection, Records: records})
}

// Watch opens a subscription on a collection. The initial snapshot is
// delivered before Watch returns; afterwards every Notify on the
// collection produces a fresh one. The ctx bounds the queries issued
// on behalf of this subscription.
func (h *Hub) Watch(ctx context.Context, collection string) (*Subscription, error) {
	load := h.loaderFor(collection)
	if load == nil {
		return nil, fmt.Errorf("unknown collection %q", collection)
	}

	sub := &Subscription{
		collection: collection,
		ch:         make(chan Snapshot, 1),
		done:       make(chan struct{}),
		hub:        h,
	}
	sub.handler = func() {
		select {
		case <-sub.done:
			return
		default:
		}
		sub.reload(ctx, load)
	}

	sub.reload(ctx, load)
	select {
	case <-sub.done:
		// initial load already failed; hand the terminal snapshot over
		return sub, nil
	default:
	}

	if err := h.bus.Subscribe(topic(collection), sub.handler); err != nil {
		return nil, err
	}
	return sub, nil
}
