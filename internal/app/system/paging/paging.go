// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultPageSize is used when the client does not ask for a size.
const DefaultPageSize = 20

// MaxPageSize caps client-requested page sizes.
const MaxPageSize = 100

// Params are the keyset paging inputs of one list request.
type Params struct {
	Before string
	After  string
	Size   int
}

// FromRequest reads ?before=, ?after= and ?limit= from r.
func FromRequest(r *http.Request) Params {
	return Params{
		Before: query.Get(r, "before"),
		After:  query.Get(r, "after"),
		Size:   ParseLimit(query.Get(r, "limit"), DefaultPageSize),
	}
}

// ParseLimit parses a page size, clamping it to 1..MaxPageSize and falling
// back to def when s is empty or invalid.
func ParseLimit(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

func (p Params) size() int {
	if p.Size < 1 {
		return DefaultPageSize
	}
	return p.Size
}

// Result holds the output of TrimPage.
type Result struct {
	HasPrev bool
	HasNext bool
}

// TrimPage trims a slice fetched with Size+1 rows and reports whether
// neighbouring pages exist.
//
// When going backwards (Before != ""):
//   - If len > Size, trim the first element (older page exists)
//   - HasNext is always true (we came from somewhere)
//
// When going forwards or on first page:
//   - If len > Size, trim to Size (next page exists)
//   - HasPrev is true only if After != ""
func TrimPage[T any](rows *[]T, p Params) Result {
	size := p.size()
	orig := len(*rows)
	var res Result

	if p.Before != "" {
		if orig > size {
			*rows = (*rows)[1:]
			res.HasPrev = true
		}
		res.HasNext = true
	} else {
		if orig > size {
			*rows = (*rows)[:size]
			res.HasNext = true
		}
		res.HasPrev = p.After != ""
	}
	return res
}

// Direction indicates the pagination direction.
type Direction int

const (
	Forward  Direction = iota // Default: sort ascending, use "gt" for cursor
	Backward                  // Sort descending, use "lt" for cursor
)

// KeysetConfig holds the result of configuring keyset pagination.
type KeysetConfig struct {
	Direction Direction
	SortOrder int // 1 for ascending, -1 for descending
	Cursor    *wafflemongo.Cursor
	Size      int
}

// Keyset determines pagination direction and decodes the cursor.
// Undecodable cursors are ignored and the first page is served.
func (p Params) Keyset() KeysetConfig {
	cfg := KeysetConfig{Direction: Forward, SortOrder: 1, Size: p.size()}

	if p.Before != "" {
		cfg.Direction = Backward
		cfg.SortOrder = -1
		if c, ok := wafflemongo.DecodeCursor(p.Before); ok {
			cfg.Cursor = &c
		}
	} else if p.After != "" {
		if c, ok := wafflemongo.DecodeCursor(p.After); ok {
			cfg.Cursor = &c
		}
	}
	return cfg
}

// ApplyToFind sets sort (sortField, _id) and the look-ahead limit.
func (cfg KeysetConfig) ApplyToFind(find *options.FindOptions, sortField string) {
	find.SetSort(bson.D{
		{Key: sortField, Value: cfg.SortOrder},
		{Key: "_id", Value: cfg.SortOrder},
	}).SetLimit(int64(cfg.Size + 1))
}

// KeysetWindow returns the cursor condition for the query filter, or nil.
func (cfg KeysetConfig) KeysetWindow(sortField string) bson.M {
	if cfg.Cursor == nil {
		return nil
	}
	dir := "gt"
	if cfg.Direction == Backward {
		dir = "lt"
	}
	return wafflemongo.KeysetWindow(sortField, dir, cfg.Cursor.CI, cfg.Cursor.ID)
}

// Reverse reverses a slice in place. Use this after fetching results
// when paging backwards to restore the correct display order.
func Reverse[T any](rows []T) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}

// BuildCursors creates prev/next cursor strings from the first and last elements.
func BuildCursors[T any](rows []T, keyFn func(T) string, idFn func(T) primitive.ObjectID) (prev, next string) {
	if len(rows) == 0 {
		return "", ""
	}
	first := rows[0]
	last := rows[len(rows)-1]
	prev = wafflemongo.EncodeCursor(keyFn(first), idFn(first))
	next = wafflemongo.EncodeCursor(keyFn(last), idFn(last))
	return prev, next
}

// Page is a JSON-ready page of rows with opaque cursors.
type Page[T any] struct {
	Items      []T    `json:"items"`
	PrevCursor string `json:"prev_cursor,omitempty"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// NewPage builds a Page, emitting cursors only where a neighbour exists.
func NewPage[T any](rows []T, res Result, keyFn func(T) string, idFn func(T) primitive.ObjectID) Page[T] {
	if rows == nil {
		rows = []T{}
	}
	prev, next := BuildCursors(rows, keyFn, idFn)
	p := Page[T]{Items: rows}
	if res.HasPrev {
		p.PrevCursor = prev
	}
	if res.HasNext {
		p.NextCursor = next
	}
	return p
}
