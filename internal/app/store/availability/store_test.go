package availabilitystore_test

import (
	"errors"
	"testing"

	availabilitystore "github.com/dalemusser/vetmentor/internal/app/store/availability"
	"github.com/dalemusser/vetmentor/internal/domain/models"
	"github.com/dalemusser/vetmentor/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CreateListOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := availabilitystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := primitive.NewObjectID()
	for _, a := range []models.Availability{
		{UserID: user, DayOfWeek: 3, StartTime: "13:00", EndTime: "15:00"},
		{UserID: user, DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00"},
		{UserID: user, DayOfWeek: 3, StartTime: "08:00", EndTime: "09:30"},
		{UserID: primitive.NewObjectID(), DayOfWeek: 1, StartTime: "07:00", EndTime: "08:00"},
	} {
		if _, err := store.Create(ctx, a); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	all, err := store.ListForUser(ctx, user)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d slots, want 3", len(all))
	}
	want := []string{"1 09:00", "3 08:00", "3 13:00"}
	for i, a := range all {
		got := string(rune('0'+a.DayOfWeek)) + " " + a.StartTime
		if got != want[i] {
			t.Errorf("slot[%d] = %s, want %s", i, got, want[i])
		}
	}

	wed, err := store.ListForUserDay(ctx, user, 3)
	if err != nil {
		t.Fatalf("ListForUserDay failed: %v", err)
	}
	if len(wed) != 2 {
		t.Errorf("got %d Wednesday slots, want 2", len(wed))
	}

	ids, err := store.UserIDsOnDay(ctx, 1)
	if err != nil {
		t.Fatalf("UserIDsOnDay failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("got %d owners on Monday, want 2", len(ids))
	}
}

func TestStore_UpdateDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := availabilitystore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := primitive.NewObjectID()
	slot := fixtures.CreateSlot(ctx, user, 2, "10:00", "11:00")
	fixtures.CreateSlot(ctx, user, 4, "10:00", "11:00")

	got, err := store.Update(ctx, slot.ID, 5, "12:00", "14:00")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.DayOfWeek != 5 || got.StartTime != "12:00" || got.EndTime != "14:00" {
		t.Errorf("updated slot = %+v", got)
	}

	if _, err := store.Update(ctx, primitive.NewObjectID(), 1, "10:00", "11:00"); !errors.Is(err, availabilitystore.ErrNotFound) {
		t.Errorf("Update missing err = %v, want ErrNotFound", err)
	}

	if err := store.Delete(ctx, slot.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, slot.ID); !errors.Is(err, availabilitystore.ErrNotFound) {
		t.Errorf("second Delete err = %v, want ErrNotFound", err)
	}

	n, err := store.DeleteForUser(ctx, user)
	if err != nil {
		t.Fatalf("DeleteForUser failed: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d, want 1", n)
	}
}
