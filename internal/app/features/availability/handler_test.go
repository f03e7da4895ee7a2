package availability_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/vetmentor/internal/app/booking"
	"github.com/dalemusser/vetmentor/internal/app/features/availability"
	"github.com/dalemusser/vetmentor/internal/domain/models"
	"github.com/dalemusser/vetmentor/internal/testutil"
	"go.uber.org/zap"
)

func setup(t *testing.T) (http.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	h := availability.NewHandler(booking.New(db, booking.Options{}), zap.NewNop())
	return availability.Routes(h), testutil.NewFixtures(t, db)
}

func slot(day int, start, end string) map[string]any {
	return map[string]any{"day_of_week": day, "start_time": start, "end_time": end}
}

func TestAvailabilityCRUD(t *testing.T) {
	router, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	mentor := fx.CreateMentor(ctx, "Mia Mentor", "UTC")
	mentee := fx.CreateMentee(ctx, "Max Mentee")

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodPost, "/", slot(1, "10:00", "11:00"), mentee))
	rec.AssertStatus(t, http.StatusForbidden)
	rec.AssertError(t, "Only mentors can set availability")

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodPost, "/", slot(1, "10:00", "11:00"), mentor))
	rec.AssertStatus(t, http.StatusCreated)
	var created models.Availability
	rec.DecodeJSON(t, &created)

	tests := []struct {
		name   string
		body   map[string]any
		status int
		msg    string
	}{
		{"overlap", slot(1, "10:30", "11:30"), http.StatusConflict, "This time slot overlaps with an existing slot"},
		{"short", slot(2, "10:00", "10:30"), http.StatusBadRequest, "Time slot must be at least 1 hour"},
		{"reversed", slot(2, "12:00", "10:00"), http.StatusBadRequest, "Start time must be before end time"},
		{"bad time", slot(2, "noon", "13:00"), http.StatusBadRequest, "Times must be in HH:MM format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodPost, "/", tt.body, mentor))
			rec.AssertStatus(t, tt.status)
			rec.AssertError(t, tt.msg)
		})
	}

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodPut, "/"+created.ID.Hex(), slot(1, "10:00", "12:00"), mentor))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"end_time":"12:00"`)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodPut, "/"+created.ID.Hex(), slot(1, "13:00", "14:00"), mentee))
	rec.AssertStatus(t, http.StatusForbidden)
	rec.AssertError(t, "Only mentors can set availability")

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodDelete, "/"+created.ID.Hex(), nil, mentee))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodDelete, "/"+created.ID.Hex(), nil, mentor))
	rec.AssertStatus(t, http.StatusNoContent)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/", nil, mentor))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"slots":[]`)
}
