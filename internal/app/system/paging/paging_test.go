package paging

import (
	"net/http/httptest"
	"reflect"
	"testing"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseLimit(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", DefaultPageSize},
		{"abc", DefaultPageSize},
		{"0", DefaultPageSize},
		{"-3", DefaultPageSize},
		{"7", 7},
		{"100", 100},
		{"1000", MaxPageSize},
	}
	for _, tt := range tests {
		if got := ParseLimit(tt.in, DefaultPageSize); got != tt.want {
			t.Errorf("ParseLimit(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/mentors?after=abc&limit=5", nil)
	p := FromRequest(r)
	if p.After != "abc" || p.Before != "" || p.Size != 5 {
		t.Errorf("FromRequest = %+v", p)
	}
}

func TestTrimPage(t *testing.T) {
	const size = 3
	tests := []struct {
		name       string
		rows       []int
		p          Params
		wantRows   []int
		wantResult Result
	}{
		{"first page no extra", []int{1, 2}, Params{Size: size}, []int{1, 2}, Result{}},
		{"first page with extra", []int{1, 2, 3, 4}, Params{Size: size}, []int{1, 2, 3}, Result{HasNext: true}},
		{"forward with extra", []int{1, 2, 3, 4}, Params{After: "c", Size: size}, []int{1, 2, 3}, Result{HasPrev: true, HasNext: true}},
		{"forward no extra", []int{1, 2}, Params{After: "c", Size: size}, []int{1, 2}, Result{HasPrev: true}},
		{"backward with extra", []int{1, 2, 3, 4}, Params{Before: "c", Size: size}, []int{2, 3, 4}, Result{HasPrev: true, HasNext: true}},
		{"backward no extra", []int{1, 2}, Params{Before: "c", Size: size}, []int{1, 2}, Result{HasNext: true}},
		{"empty", []int{}, Params{Size: size}, []int{}, Result{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := append([]int(nil), tt.rows...)
			if rows == nil {
				rows = []int{}
			}
			got := TrimPage(&rows, tt.p)
			if got != tt.wantResult {
				t.Errorf("result = %+v, want %+v", got, tt.wantResult)
			}
			if !reflect.DeepEqual(rows, tt.wantRows) {
				t.Errorf("rows = %v, want %v", rows, tt.wantRows)
			}
		})
	}
}

func TestKeyset(t *testing.T) {
	id := primitive.NewObjectID()
	cursor := wafflemongo.EncodeCursor("smith", id)

	fwd := Params{After: cursor}.Keyset()
	if fwd.Direction != Forward || fwd.SortOrder != 1 || fwd.Cursor == nil {
		t.Fatalf("forward config = %+v", fwd)
	}
	if fwd.Cursor.CI != "smith" || fwd.Cursor.ID != id {
		t.Errorf("decoded cursor = %+v", fwd.Cursor)
	}
	if fwd.KeysetWindow("full_name_ci") == nil {
		t.Error("expected keyset window for cursor")
	}

	back := Params{Before: cursor}.Keyset()
	if back.Direction != Backward || back.SortOrder != -1 {
		t.Errorf("backward config = %+v", back)
	}

	none := Params{}.Keyset()
	if none.Cursor != nil || none.KeysetWindow("full_name_ci") != nil {
		t.Error("first page should have no window")
	}
	if none.Size != DefaultPageSize {
		t.Errorf("size = %d, want default", none.Size)
	}

	bad := Params{After: "%%%"}.Keyset()
	if bad.Cursor != nil {
		t.Error("undecodable cursor should be ignored")
	}
}

func TestReverse(t *testing.T) {
	rows := []int{1, 2, 3, 4}
	Reverse(rows)
	if !reflect.DeepEqual(rows, []int{4, 3, 2, 1}) {
		t.Errorf("Reverse = %v", rows)
	}
}

type row struct {
	key string
	id  primitive.ObjectID
}

func TestNewPage(t *testing.T) {
	rows := []row{{"a", primitive.NewObjectID()}, {"b", primitive.NewObjectID()}}
	key := func(r row) string { return r.key }
	id := func(r row) primitive.ObjectID { return r.id }

	p := NewPage(rows, Result{HasNext: true}, key, id)
	if p.PrevCursor != "" {
		t.Error("no prev cursor expected on first page")
	}
	c, ok := wafflemongo.DecodeCursor(p.NextCursor)
	if !ok || c.CI != "b" || c.ID != rows[1].id {
		t.Errorf("next cursor = %+v ok=%v", c, ok)
	}

	empty := NewPage[row](nil, Result{}, key, id)
	if empty.Items == nil || len(empty.Items) != 0 {
		t.Error("empty page should encode as []")
	}
}
