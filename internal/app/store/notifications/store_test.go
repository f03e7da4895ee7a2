package notificationstore_test

import (
	"errors"
	"testing"
	"time"

	notificationstore "github.com/dalemusser/vetmentor/internal/app/store/notifications"
	"github.com/dalemusser/vetmentor/internal/domain/models"
	"github.com/dalemusser/vetmentor/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Lifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner, stranger := primitive.NewObjectID(), primitive.NewObjectID()
	base := time.Now().UTC().Add(-time.Hour)

	var ids []primitive.ObjectID
	for i := 0; i < 3; i++ {
		n, err := store.Create(ctx, models.Notification{
			UserID:    owner,
			Type:      models.NotifyRequestReceived,
			Title:     "New request",
			Message:   "Someone asked for a session",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		ids = append(ids, n.ID)
	}

	rows, err := store.ListForUser(ctx, owner, false, 2)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(rows) != 2 || rows[0].ID != ids[2] {
		t.Errorf("limit/newest-first not honored: %v", rows)
	}

	if err := store.MarkRead(ctx, ids[0], stranger, time.Now()); !errors.Is(err, notificationstore.ErrNotFound) {
		t.Errorf("stranger MarkRead err = %v, want ErrNotFound", err)
	}
	if err := store.MarkRead(ctx, ids[0], owner, time.Now()); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	n, err := store.UnreadCount(ctx, owner)
	if err != nil || n != 2 {
		t.Errorf("UnreadCount = %d, %v; want 2", n, err)
	}
	unread, err := store.ListForUser(ctx, owner, true, 0)
	if err != nil || len(unread) != 2 {
		t.Errorf("unread list = %d, %v; want 2", len(unread), err)
	}

	changed, err := store.MarkAllRead(ctx, owner, time.Now())
	if err != nil || changed != 2 {
		t.Errorf("MarkAllRead = %d, %v; want 2", changed, err)
	}

	if err := store.Delete(ctx, ids[1], stranger); !errors.Is(err, notificationstore.ErrNotFound) {
		t.Errorf("stranger Delete err = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, ids[1], owner); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	rows, _ = store.ListForUser(ctx, owner, false, 0)
	if len(rows) != 2 {
		t.Errorf("got %d after delete, want 2", len(rows))
	}
}

func TestStore_UnreadSince(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	now := time.Now().UTC()
	since := now.Add(-24 * time.Hour)

	seed := []struct {
		typ string
		age time.Duration
	}{
		{models.NotifyRequestReceived, time.Hour},
		{models.NotifyRequestReceived, 2 * time.Hour},
		{models.NotifyDailyDigest, time.Hour},
		{models.NotifyRequestReceived, 48 * time.Hour},
	}
	for _, s := range seed {
		if _, err := store.Create(ctx, models.Notification{
			UserID: owner, Type: s.typ, Title: "t", Message: "m", CreatedAt: now.Add(-s.age),
		}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	n, err := store.UnreadSince(ctx, owner, since, models.NotifyDailyDigest)
	if err != nil || n != 2 {
		t.Errorf("UnreadSince = %d, %v; want 2", n, err)
	}
	n, err = store.UnreadSince(ctx, owner, since)
	if err != nil || n != 3 {
		t.Errorf("UnreadSince without skip = %d, %v; want 3", n, err)
	}
}
