package reviewstore_test

import (
	"errors"
	"testing"
	"time"

	reviewstore "github.com/dalemusser/vetmentor/internal/app/store/reviews"
	"github.com/dalemusser/vetmentor/internal/domain/models"
	"github.com/dalemusser/vetmentor/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func intp(i int) *int { return &i }

func TestStore_Create_Duplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.EnsureIndexes(t, db)
	store := reviewstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	r := models.Review{SessionID: primitive.NewObjectID(), ReviewerID: primitive.NewObjectID(), RevieweeID: primitive.NewObjectID(), Rating: 5}
	if _, err := store.Create(ctx, r); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, r); !errors.Is(err, reviewstore.ErrDuplicate) {
		t.Errorf("err = %v, want ErrDuplicate", err)
	}
	exists, err := store.ExistsFor(ctx, r.SessionID, r.ReviewerID)
	if err != nil || !exists {
		t.Errorf("ExistsFor = %v, %v", exists, err)
	}
}

func TestStore_ResponseOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reviewstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	r := fixtures.CreateReview(ctx, models.Review{SessionID: primitive.NewObjectID(), ReviewerID: primitive.NewObjectID(), RevieweeID: primitive.NewObjectID(), Rating: 4})

	got, err := store.SetResponse(ctx, r.ID, "Thanks!", time.Now())
	if err != nil {
		t.Fatalf("SetResponse failed: %v", err)
	}
	if got.Response == nil || got.Response.Text != "Thanks!" {
		t.Errorf("response = %+v", got.Response)
	}
	if _, err := store.SetResponse(ctx, r.ID, "Again", time.Now()); !errors.Is(err, reviewstore.ErrAlreadyResponded) {
		t.Errorf("err = %v, want ErrAlreadyResponded", err)
	}
	if _, err := store.SetResponse(ctx, primitive.NewObjectID(), "x", time.Now()); !errors.Is(err, reviewstore.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_Aggregate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reviewstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	reviewee := primitive.NewObjectID()
	for _, r := range []models.Review{
		{Rating: 5, SubRatings: &models.SubRatings{Communication: intp(5), Knowledge: intp(4)}},
		{Rating: 4, SubRatings: &models.SubRatings{Communication: intp(3)}},
		{Rating: 2},
	} {
		r.SessionID = primitive.NewObjectID()
		r.ReviewerID = primitive.NewObjectID()
		r.RevieweeID = reviewee
		fixtures.CreateReview(ctx, r)
	}
	// Someone else's review is ignored.
	fixtures.CreateReview(ctx, models.Review{SessionID: primitive.NewObjectID(), ReviewerID: primitive.NewObjectID(), RevieweeID: primitive.NewObjectID(), Rating: 1})

	sum, err := store.Aggregate(ctx, reviewee)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if sum.Count != 3 {
		t.Errorf("count = %d, want 3", sum.Count)
	}
	if sum.Average != 3.67 {
		t.Errorf("average = %v, want 3.67", sum.Average)
	}
	want := map[int]int64{1: 0, 2: 1, 3: 0, 4: 1, 5: 1}
	for k, v := range want {
		if sum.Distribution[k] != v {
			t.Errorf("distribution[%d] = %d, want %d", k, sum.Distribution[k], v)
		}
	}
	if sum.SubAverages.Communication == nil || *sum.SubAverages.Communication != 4 {
		t.Errorf("communication = %v, want 4", sum.SubAverages.Communication)
	}
	if sum.SubAverages.Helpfulness != nil {
		t.Errorf("helpfulness = %v, want nil", *sum.SubAverages.Helpfulness)
	}

	empty, err := store.Aggregate(ctx, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("Aggregate empty failed: %v", err)
	}
	if empty.Count != 0 || len(empty.Distribution) != 5 {
		t.Errorf("empty summary = %+v", empty)
	}
}

func TestStore_ListUpdateDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reviewstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	reviewee := primitive.NewObjectID()
	old := fixtures.CreateReview(ctx, models.Review{SessionID: primitive.NewObjectID(), ReviewerID: primitive.NewObjectID(), RevieweeID: reviewee, Rating: 3, CreatedAt: time.Now().Add(-time.Hour)})
	fresh := fixtures.CreateReview(ctx, models.Review{SessionID: primitive.NewObjectID(), ReviewerID: primitive.NewObjectID(), RevieweeID: reviewee, Rating: 4})

	rows, err := store.ListForUser(ctx, reviewee, 0)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(rows) != 2 || rows[0].ID != fresh.ID {
		t.Fatalf("rows not newest first: %v", rows)
	}

	comment := "Better than expected"
	got, err := store.Update(ctx, old.ID, reviewstore.Edit{Rating: intp(5), Comment: &comment}, time.Now())
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.Rating != 5 || got.Comment != comment {
		t.Errorf("updated = %+v", got)
	}

	rep, err := store.Report(ctx, fresh.ID, reviewee, "spam", time.Now())
	if err != nil || !rep.Reported || rep.ReportReason != "spam" {
		t.Errorf("Report = %+v, %v", rep, err)
	}

	if err := store.Delete(ctx, old.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, old.ID); !errors.Is(err, reviewstore.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
