package formutil_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/vetmentor/internal/app/system/formutil"
	"github.com/dalemusser/vetmentor/internal/app/system/respond"
	"github.com/dalemusser/vetmentor/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestObjectID(t *testing.T) {
	want := primitive.NewObjectID()
	r := testutil.WithChiURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", want.Hex())
	got, err := formutil.ObjectID(r, "id")
	if err != nil || got != want {
		t.Fatalf("ObjectID = %v, %v", got, err)
	}

	bad := testutil.WithChiURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "nope")
	_, err = formutil.ObjectID(bad, "id")
	if err == nil || err.Error() != "Invalid id" {
		t.Fatalf("err = %v", err)
	}
	if respond.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("status = %d", respond.StatusOf(err))
	}
}

func TestQueryValues(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?day=3&upcoming=TRUE&bad=x&q=+army+", nil)

	if n, err := formutil.Int(r, "day", -1); err != nil || n != 3 {
		t.Errorf("Int(day) = %d, %v", n, err)
	}
	if n, err := formutil.Int(r, "missing", -1); err != nil || n != -1 {
		t.Errorf("Int(missing) = %d, %v", n, err)
	}
	if _, err := formutil.Int(r, "bad", 0); err == nil {
		t.Error("Int(bad) should fail")
	}
	if !formutil.Bool(r, "upcoming") || formutil.Bool(r, "missing") {
		t.Error("Bool mismatch")
	}
	if got := formutil.String(r, "q"); got != "army" {
		t.Errorf("String(q) = %q", got)
	}
}
