package notify_test

import (
	"context"
	"testing"

	notificationstore "github.com/dalemusser/vetmentor/internal/app/store/notifications"
	"github.com/dalemusser/vetmentor/internal/app/system/notify"
	"github.com/dalemusser/vetmentor/internal/domain/models"
	"github.com/dalemusser/vetmentor/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestService_Notify(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	svc := notify.New(store, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := primitive.NewObjectID()
	svc.Notify(ctx, models.Notification{UserID: user, Type: models.NotifyWelcome, Title: "Welcome", Message: "Glad you are here"})

	n, err := store.UnreadCount(ctx, user)
	if err != nil || n != 1 {
		t.Errorf("UnreadCount = %d, %v; want 1", n, err)
	}
}

func TestService_Notify_FailureIsLogged(t *testing.T) {
	db := testutil.SetupTestDB(t)
	core, logs := observer.New(zap.WarnLevel)
	svc := notify.New(notificationstore.New(db), zap.New(core))

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // every write fails

	svc.Notify(ctx, models.Notification{UserID: primitive.NewObjectID(), Type: models.NotifyWelcome})

	if logs.FilterMessage("notification not delivered").Len() != 1 {
		t.Error("expected failure to be logged")
	}
}

func TestRecorder(t *testing.T) {
	var r notify.Recorder
	r.Notify(context.Background(), models.Notification{Type: models.NotifyRequestReceived})
	r.Notify(context.Background(), models.Notification{Type: models.NotifyRequestAccepted})

	got := r.Types()
	if len(got) != 2 || got[0] != models.NotifyRequestReceived || got[1] != models.NotifyRequestAccepted {
		t.Errorf("Types = %v", got)
	}
}
