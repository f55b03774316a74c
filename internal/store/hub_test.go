package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gravitlabs/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	return db
}

func receive(t *testing.T, sub *Subscription) Snapshot {
	t.Helper()
	select {
	case snap := <-sub.C():
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered")
		return Snapshot{}
	}
}

func TestWatchDeliversInitialSnapshot(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&domain.Product{ID: 1, Name: "Basin"}).Error)

	hub := NewHub(db)
	sub, err := hub.Watch(context.Background(), CollectionProducts)
	require.NoError(t, err)
	defer sub.Close()

	snap := receive(t, sub)
	require.NoError(t, snap.Err)
	records, ok := snap.Records.([]domain.Product)
	require.True(t, ok)
	require.Len(t, records, 1)
	assert.Equal(t, "Basin", records[0].Name)
}

func TestWatchDeliversFullSetOnEveryChange(t *testing.T) {
	db := newTestDB(t)
	hub := NewHub(db)
	sub, err := hub.Watch(context.Background(), CollectionProducts)
	require.NoError(t, err)
	defer sub.Close()

	snap := receive(t, sub)
	assert.Empty(t, snap.Records.([]domain.Product))

	require.NoError(t, db.Create(&domain.Product{ID: 1, Name: "Basin", CreatedAt: time.Now()}).Error)
	hub.Notify(CollectionProducts)
	require.NoError(t, db.Create(&domain.Product{ID: 2, Name: "Tap", CreatedAt: time.Now().Add(time.Second)}).Error)
	hub.Notify(CollectionProducts)

	// two notifies but a lagging consumer: only the newest snapshot
	// is retained, and it carries the complete result set
	snap = receive(t, sub)
	records := snap.Records.([]domain.Product)
	require.Len(t, records, 2)
	assert.Equal(t, "Tap", records[0].Name, "newest first")
}

func TestWatchCloseStopsDelivery(t *testing.T) {
	db := newTestDB(t)
	hub := NewHub(db)
	sub, err := hub.Watch(context.Background(), CollectionProducts)
	require.NoError(t, err)

	receive(t, sub)
	sub.Close()
	sub.Close() // idempotent

	select {
	case <-sub.Done():
	default:
		t.Fatal("Done not closed after Close")
	}

	require.NoError(t, db.Create(&domain.Product{ID: 1, Name: "Basin"}).Error)
	hub.Notify(CollectionProducts)

	select {
	case snap := <-sub.C():
		t.Fatalf("snapshot delivered after close: %+v", snap)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatchLoadFailureIsTerminal(t *testing.T) {
	db := newTestDB(t)
	hub := NewHub(db)
	sub, err := hub.Watch(context.Background(), CollectionSales)
	require.NoError(t, err)

	receive(t, sub)

	// break the collection under the subscription
	require.NoError(t, db.Migrator().DropTable(&domain.Sale{}))
	hub.Notify(CollectionSales)

	snap := receive(t, sub)
	require.Error(t, snap.Err, "unavailable state surfaced")

	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("subscription not closed after terminal failure")
	}
}

func TestNotifyReturnsWhenLoadFails(t *testing.T) {
	db := newTestDB(t)
	hub := NewHub(db)
	sub, err := hub.Watch(context.Background(), CollectionReviews)
	require.NoError(t, err)

	receive(t, sub)
	require.NoError(t, db.Migrator().DropTable(&domain.Review{}))

	// the failing reload closes the subscription from inside the
	// delivery; the writer's Notify must still return
	returned := make(chan struct{})
	go func() {
		hub.Notify(CollectionReviews)
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked on a failing subscription")
	}

	snap := receive(t, sub)
	require.Error(t, snap.Err)
}

func TestConcurrentNotifiesRetainLatest(t *testing.T) {
	db := newTestDB(t)
	hub := NewHub(db)
	sub, err := hub.Watch(context.Background(), CollectionProducts)
	require.NoError(t, err)
	defer sub.Close()

	receive(t, sub)

	var wg sync.WaitGroup
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		id := int64(i)
		go func() {
			defer wg.Done()
			assert.NoError(t, db.Create(&domain.Product{ID: id, Name: "Basin", CreatedAt: time.Now()}).Error)
			hub.Notify(CollectionProducts)
		}()
	}
	wg.Wait()

	// reloads are serialized per subscription, so this final notify
	// runs after every write above and its snapshot is the one retained
	hub.Notify(CollectionProducts)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap := <-sub.C():
			require.NoError(t, snap.Err)
			if len(snap.Records.([]domain.Product)) == 8 {
				return
			}
		case <-deadline:
			t.Fatal("latest snapshot never delivered the full set")
		}
	}
}

func TestWatchChatMessages(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&domain.ChatMessage{ID: 1, ChatId: "c1", Sender: "user", Text: "hi"}).Error)
	require.NoError(t, db.Create(&domain.ChatMessage{ID: 2, ChatId: "c2", Sender: "user", Text: "other"}).Error)

	hub := NewHub(db)
	sub, err := hub.Watch(context.Background(), ChatMessagesCollection("c1"))
	require.NoError(t, err)
	defer sub.Close()

	snap := receive(t, sub)
	msgs := snap.Records.([]domain.ChatMessage)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hi", msgs[0].Text)
}

func TestWatchUnknownCollection(t *testing.T) {
	hub := NewHub(newTestDB(t))
	_, err := hub.Watch(context.Background(), "invoices")
	assert.Error(t, err)
}
