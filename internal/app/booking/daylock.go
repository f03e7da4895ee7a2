package booking

import (
	"context"
	"hash/fnv"
	"sync"

	lockstore "github.com/dalemusser/vetmentor/internal/app/store/locks"
	"github.com/dalemusser/vetmentor/internal/app/system/txn"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// dayLocks serializes booking writes per mentor and date inside one process.
// Keys hash onto a fixed set of mutexes, so unrelated days may share one.
type dayLocks struct {
	stripes [64]sync.Mutex
}

func (l *dayLocks) lock(key string) func() {
	h := fnv.New32a()
	h.Write([]byte(key))
	m := &l.stripes[h.Sum32()%uint32(len(l.stripes))]
	m.Lock()
	return m.Unlock
}

// holdDay runs fn while the mentor's day is held. Within the process a mutex
// orders callers; across processes fn runs in a transaction that first
// writes the day's lock document, so a concurrent booking for the same day
// conflicts and is retried after the other commits. fn may run more than
// once and must re-read whatever it checks.
func (s *Service) holdDay(ctx context.Context, mentorID primitive.ObjectID, date string, fn func(ctx context.Context) error) error {
	key := lockstore.MentorDay(mentorID, date)
	unlock := s.dayLocks.lock(key)
	defer unlock()

	return txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		if err := s.locks.Touch(ctx, key, s.now()); err != nil {
			return err
		}
		return fn(ctx)
	})
}
