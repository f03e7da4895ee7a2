package dashboard_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/vetmentor/internal/app/booking"
	"github.com/dalemusser/vetmentor/internal/app/features/dashboard"
	"github.com/dalemusser/vetmentor/internal/domain/models"
	"github.com/dalemusser/vetmentor/internal/testutil"
	"go.uber.org/zap"
)

func TestServeDashboard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := dashboard.Routes(dashboard.NewHandler(booking.New(db, booking.Options{}), zap.NewNop()))
	fx := testutil.NewFixtures(t, db)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	mentor := fx.CreateMentor(ctx, "Mia Mentor", "UTC")
	mentee := fx.CreateMentee(ctx, "Max Mentee")
	next := fx.CreateSession(ctx, models.Session{MentorID: mentor.ID, MenteeID: mentee.ID})
	fx.CreateSession(ctx, models.Session{
		MentorID: mentor.ID, MenteeID: mentee.ID, Status: models.SessionCompleted,
		StartsAt: time.Now().UTC().Add(-48 * time.Hour).Truncate(time.Minute),
	})
	fx.CreateRequest(ctx, models.MentorshipRequest{MentorID: mentor.ID, MenteeID: mentee.ID})

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/", nil, mentor))
	rec.AssertStatus(t, http.StatusOK)
	var sum booking.Summary
	rec.DecodeJSON(t, &sum)
	if sum.Mentor == nil || sum.Mentee != nil {
		t.Fatalf("sections = mentor:%v mentee:%v", sum.Mentor != nil, sum.Mentee != nil)
	}
	if sum.Mentor.PendingRequests != 1 || sum.Mentor.UpcomingSessions != 1 || sum.Mentor.Hours != 1 {
		t.Errorf("mentor summary = %+v", sum.Mentor)
	}
	if sum.NextSession == nil || sum.NextSession.ID != next.ID {
		t.Errorf("next session = %+v", sum.NextSession)
	}

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewJSONRequest(http.MethodGet, "/", nil))
	rec.AssertStatus(t, http.StatusUnauthorized)
}
