package notifications_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/vetmentor/internal/app/booking"
	"github.com/dalemusser/vetmentor/internal/app/features/notifications"
	notificationstore "github.com/dalemusser/vetmentor/internal/app/store/notifications"
	"github.com/dalemusser/vetmentor/internal/domain/models"
	"github.com/dalemusser/vetmentor/internal/testutil"
	"go.uber.org/zap"
)

func serve(router http.Handler, method, target string, as models.User) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(method, target, nil, as))
	return rec
}

func TestNotificationFeed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := notifications.Routes(notifications.NewHandler(booking.New(db, booking.Options{}), zap.NewNop()))
	fx := testutil.NewFixtures(t, db)
	store := notificationstore.New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	me := fx.CreateMentee(ctx, "Max Mentee")
	other := fx.CreateMentee(ctx, "Olly Other")

	var mine []models.Notification
	for i, title := range []string{"First", "Second", "Third"} {
		n, err := store.Create(ctx, models.Notification{
			UserID: me.ID, Type: models.NotifyRequestAccepted, Title: title,
			CreatedAt: time.Now().UTC().Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		mine = append(mine, n)
	}

	rec := serve(router, http.MethodGet, "/unread-count", me)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"count":3`)

	rec = serve(router, http.MethodPost, "/"+mine[0].ID.Hex()+"/read", other)
	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertError(t, "Notification not found")

	rec = serve(router, http.MethodPost, "/"+mine[0].ID.Hex()+"/read", me)
	rec.AssertStatus(t, http.StatusNoContent)

	rec = serve(router, http.MethodGet, "/?unread=true", me)
	rec.AssertStatus(t, http.StatusOK)
	var feed struct {
		Notifications []models.Notification `json:"notifications"`
	}
	rec.DecodeJSON(t, &feed)
	if len(feed.Notifications) != 2 || feed.Notifications[0].Title != "Third" {
		t.Errorf("unread feed = %+v", feed.Notifications)
	}

	rec = serve(router, http.MethodPost, "/read-all", me)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"updated":2`)

	rec = serve(router, http.MethodDelete, "/"+mine[1].ID.Hex(), me)
	rec.AssertStatus(t, http.StatusNoContent)

	rec = serve(router, http.MethodGet, "/", me)
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeJSON(t, &feed)
	if len(feed.Notifications) != 2 {
		t.Errorf("feed after delete = %d", len(feed.Notifications))
	}

	rec = serve(router, http.MethodDelete, "/nope", me)
	rec.AssertStatus(t, http.StatusBadRequest)
}
