package userstore_test

import (
	"errors"
	"testing"
	"time"

	userstore "github.com/dalemusser/vetmentor/internal/app/store/users"
	"github.com/dalemusser/vetmentor/internal/app/system/paging"
	"github.com/dalemusser/vetmentor/internal/domain/models"
	"github.com/dalemusser/vetmentor/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_UpsertFromIdentity_CreatesThenUpdates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	id := userstore.Identity{
		ExternalID: "user_abc",
		Email:      "  Jane.Doe@Example.com ",
		FirstName:  "Jane",
		LastName:   "Doe",
	}

	u, created, err := store.UpsertFromIdentity(ctx, id, now)
	if err != nil {
		t.Fatalf("UpsertFromIdentity failed: %v", err)
	}
	if !created {
		t.Error("expected first upsert to create")
	}
	if u.Email != "jane.doe@example.com" {
		t.Errorf("email = %q, want normalized", u.Email)
	}
	if u.FullName != "Jane Doe" || u.FullNameCI == "" {
		t.Errorf("name = %q / %q", u.FullName, u.FullNameCI)
	}
	if u.Status != models.UserStatusActive || u.TimeZone != "UTC" {
		t.Errorf("defaults not applied: status=%q tz=%q", u.Status, u.TimeZone)
	}

	// Replay is idempotent and refreshes the mirrored fields.
	id.LastName = "Smith"
	again, created, err := store.UpsertFromIdentity(ctx, id, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("second UpsertFromIdentity failed: %v", err)
	}
	if created {
		t.Error("second upsert should not create")
	}
	if again.ID != u.ID {
		t.Errorf("id changed: %s -> %s", u.ID.Hex(), again.ID.Hex())
	}
	if again.FullName != "Jane Smith" {
		t.Errorf("FullName = %q, want Jane Smith", again.FullName)
	}
	if !again.CreatedAt.Equal(u.CreatedAt) {
		t.Error("created_at should not change on update")
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := store.GetByExternalID(ctx, "missing"); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_MarkDeleted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateMentee(ctx, "Gone Soon")
	got, err := store.MarkDeleted(ctx, u.ExternalID, time.Now())
	if err != nil {
		t.Fatalf("MarkDeleted failed: %v", err)
	}
	if got.Status != models.UserStatusDeleted {
		t.Errorf("status = %q, want deleted", got.Status)
	}

	// Profile updates no longer apply to deleted accounts.
	bio := "hello"
	if _, err := store.UpdateProfile(ctx, u.ID, userstore.ProfileUpdate{Bio: &bio}, time.Now()); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("UpdateProfile on deleted user err = %v, want ErrNotFound", err)
	}

	if _, err := store.MarkDeleted(ctx, "nobody", time.Now()); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_UpdateProfile_PartialAndExpertise(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateMentor(ctx, "Pat Kim", "America/Chicago")
	title := "Program Manager"
	branch := "ARMY"
	exp := []string{"Leadership", " leadership ", "Cyber Security"}

	got, err := store.UpdateProfile(ctx, u.ID, userstore.ProfileUpdate{
		CurrentTitle: &title,
		Branch:       &branch,
		Expertise:    &exp,
	}, time.Now())
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if got.CurrentTitle != title {
		t.Errorf("CurrentTitle = %q", got.CurrentTitle)
	}
	if got.BranchCI != "army" {
		t.Errorf("BranchCI = %q, want army", got.BranchCI)
	}
	if len(got.Expertise) != 2 || len(got.ExpertiseCI) != 2 {
		t.Errorf("expertise not deduplicated: %v / %v", got.Expertise, got.ExpertiseCI)
	}
	// Untouched fields survive.
	if got.TimeZone != "America/Chicago" || !got.IsMentor {
		t.Errorf("unrelated fields changed: tz=%q mentor=%v", got.TimeZone, got.IsMentor)
	}
}

func TestStore_SearchMentors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateMentor(ctx, "Alice Adams", "UTC")
	bob := fixtures.CreateUser(ctx, models.User{
		FullName: "Bob Brown", IsMentor: true, ProfileComplete: true,
		Branch: "Navy", Industry: "Finance",
		Expertise: []string{"Interviewing"},
	})
	carol := fixtures.CreateMentor(ctx, "Carol Clark", "UTC")
	fixtures.CreateMentee(ctx, "Alfred Mentee")
	fixtures.CreateUser(ctx, models.User{FullName: "Alan Incomplete", IsMentor: true})
	fixtures.CreateUser(ctx, models.User{FullName: "Al Deleted", IsMentor: true, ProfileComplete: true, Status: models.UserStatusDeleted})

	names := func(rows []models.User) []string {
		out := make([]string, len(rows))
		for i, r := range rows {
			out[i] = r.FullName
		}
		return out
	}

	tests := []struct {
		name   string
		filter userstore.MentorFilter
		want   []string
	}{
		{"all mentors sorted", userstore.MentorFilter{}, []string{"Alice Adams", "Bob Brown", "Carol Clark"}},
		{"name prefix", userstore.MentorFilter{Query: "AL"}, []string{"Alice Adams"}},
		{"expertise equality", userstore.MentorFilter{Query: "interviewing"}, []string{"Bob Brown"}},
		{"branch", userstore.MentorFilter{Branch: "Navy"}, []string{"Bob Brown"}},
		{"branch any case", userstore.MentorFilter{Branch: "army"}, []string{"Alice Adams", "Carol Clark"}},
		{"industry any case", userstore.MentorFilter{Industry: "FINANCE"}, []string{"Bob Brown"}},
		{"industry", userstore.MentorFilter{Industry: "Technology"}, []string{"Alice Adams", "Carol Clark"}},
		{"expertise filter", userstore.MentorFilter{Expertise: "career transition"}, []string{"Alice Adams", "Carol Clark"}},
		{"exclude caller", userstore.MentorFilter{ExcludeID: alice.ID}, []string{"Bob Brown", "Carol Clark"}},
		{"restricted ids", userstore.MentorFilter{MentorIDs: []primitive.ObjectID{carol.ID, bob.ID}}, []string{"Bob Brown", "Carol Clark"}},
		{"empty id set", userstore.MentorFilter{MentorIDs: []primitive.ObjectID{}}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, _, err := store.SearchMentors(ctx, tt.filter)
			if err != nil {
				t.Fatalf("SearchMentors failed: %v", err)
			}
			got := names(rows)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestStore_SearchMentors_Paging(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, n := range []string{"Ann", "Ben", "Cal", "Dee", "Eve"} {
		fixtures.CreateMentor(ctx, n, "UTC")
	}

	first, res, err := store.SearchMentors(ctx, userstore.MentorFilter{Page: paging.Params{Size: 2}})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first) != 2 || !res.HasNext || res.HasPrev {
		t.Fatalf("first page = %d rows, %+v", len(first), res)
	}

	page := paging.NewPage(first, res, func(u models.User) string { return u.FullNameCI }, func(u models.User) primitive.ObjectID { return u.ID })
	second, res, err := store.SearchMentors(ctx, userstore.MentorFilter{Page: paging.Params{After: page.NextCursor, Size: 2}})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second) != 2 || second[0].FullName != "Cal" || !res.HasPrev || !res.HasNext {
		t.Fatalf("second page = %v, %+v", second, res)
	}

	page = paging.NewPage(second, res, func(u models.User) string { return u.FullNameCI }, func(u models.User) primitive.ObjectID { return u.ID })
	back, res, err := store.SearchMentors(ctx, userstore.MentorFilter{Page: paging.Params{Before: page.PrevCursor, Size: 2}})
	if err != nil {
		t.Fatalf("back page: %v", err)
	}
	if len(back) != 2 || back[0].FullName != "Ann" || back[1].FullName != "Ben" {
		t.Errorf("back page = %v", back)
	}
	if res.HasPrev {
		t.Error("back to first page should have no prev")
	}
}

func TestFetcher_FetchUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	fetcher := userstore.NewFetcher(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mentor := fixtures.CreateMentor(ctx, "Sam Lee", "UTC")
	gone := fixtures.CreateUser(ctx, models.User{FullName: "Gone", Status: models.UserStatusDeleted})

	su := fetcher.FetchUser(ctx, mentor.ExternalID)
	if su == nil {
		t.Fatal("expected user")
	}
	if su.ID != mentor.ID.Hex() || !su.IsMentor || su.Name != "Sam Lee" {
		t.Errorf("session user = %+v", su)
	}
	if fetcher.FetchUser(ctx, gone.ExternalID) != nil {
		t.Error("deleted user should not resolve")
	}
	if fetcher.FetchUser(ctx, "unknown") != nil {
		t.Error("unknown user should not resolve")
	}
}

func TestStore_GetMany(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fx.CreateMentor(ctx, "Alice Army", "UTC")
	b := fx.CreateMentee(ctx, "Bob Navy")
	missing := primitive.NewObjectID()

	got, err := store.GetMany(ctx, []primitive.ObjectID{a.ID, b.ID, missing})
	if err != nil {
		t.Fatalf("GetMany failed: %v", err)
	}
	if len(got) != 2 || got[a.ID].FullName != "Alice Army" || got[b.ID].FullName != "Bob Navy" {
		t.Errorf("GetMany = %+v", got)
	}
	if _, ok := got[missing]; ok {
		t.Error("missing id should be absent")
	}

	empty, err := store.GetMany(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("GetMany(nil) = %v, %v", empty, err)
	}
}
