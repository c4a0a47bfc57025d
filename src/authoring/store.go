package authoring

import (
	"context"
	"sync"

	"git.nurpath.academy/nurpath/portal/src/logging"
	"git.nurpath.academy/nurpath/portal/src/oops"
)

// A Persister saves and restores the whole authoring document.
type Persister interface {
	Load(ctx context.Context) (state State, found bool, err error)
	Save(ctx context.Context, state State) error
}

/*
A Store owns the current authoring State and applies actions to it one at a
time. After every action the new snapshot is sent to subscribers and then
saved, if the store has a Persister.

Saving happens outside the state lock, so a slow persister never holds up
readers. Saves are serialized on their own lock and always write the newest
version, so an older snapshot can't land on top of a newer one.

Snapshots handed out by the store are copies; callers may read them freely
but changes only happen through Dispatch.
*/
type Store struct {
	ids       IDGenerator
	persister Persister

	m           sync.Mutex
	state       State
	version     uint64
	subscribers map[*Subscription]struct{}

	saveM        sync.Mutex
	savedVersion uint64
}

func NewStore(initial State, ids IDGenerator, persister Persister) *Store {
	if ids == nil {
		ids = UUIDGenerator{}
	}
	return &Store{
		ids:         ids,
		persister:   persister,
		state:       initial.Clone(),
		subscribers: make(map[*Subscription]struct{}),
	}
}

// Replaces the in-memory state with the persisted document, if there is one.
// Returns whether a document was found.
func (s *Store) Load(ctx context.Context) (bool, error) {
	if s.persister == nil {
		return false, nil
	}

	state, found, err := s.persister.Load(ctx)
	if err != nil {
		return false, oops.New(err, "failed to load authoring state")
	}
	if !found {
		return false, nil
	}

	s.m.Lock()
	s.state = state.Clone()
	s.version++
	s.m.Unlock()

	return true, nil
}

func (s *Store) Snapshot() State {
	snapshot, _ := s.versionedSnapshot()
	return snapshot
}

func (s *Store) versionedSnapshot() (State, uint64) {
	s.m.Lock()
	defer s.m.Unlock()
	return s.state.Clone(), s.version
}

/*
Applies an action and returns the resulting snapshot.

A save failure is returned as an error, but the in-memory state has still
advanced and subscribers are still notified; the next successful save will
catch the document up.
*/
func (s *Store) Dispatch(ctx context.Context, action Action) (State, error) {
	s.m.Lock()
	s.state = action.Apply(s.state, s.ids)
	s.version++
	version := s.version
	snapshot := s.state.Clone()
	s.publish(snapshot)
	s.m.Unlock()

	if err := s.saveAtLeast(ctx, version); err != nil {
		return snapshot, oops.New(err, "failed to save authoring state after %s", action.Type())
	}
	return snapshot, nil
}

// Makes sure the persisted document includes version. A concurrent save that
// already wrote a newer state counts.
func (s *Store) saveAtLeast(ctx context.Context, version uint64) error {
	if s.persister == nil {
		return nil
	}

	s.saveM.Lock()
	defer s.saveM.Unlock()

	if s.savedVersion >= version {
		return nil
	}
	return s.saveLatest(ctx)
}

// Must be called with s.saveM held.
func (s *Store) saveLatest(ctx context.Context) error {
	snapshot, version := s.versionedSnapshot()
	if err := s.persister.Save(ctx, snapshot); err != nil {
		return err
	}
	s.savedVersion = version
	return nil
}

// Creates a course and reports the id it was given.
func (s *Store) CreateCourse(ctx context.Context, in NewCourse) (string, State, error) {
	id := s.ids.NewID()
	state, err := s.Dispatch(ctx, CreateCourseAction{NewCourse: in, ID: id})
	return id, state, err
}

// Writes the current state through the persister even if nothing changed.
func (s *Store) Flush(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}

	s.saveM.Lock()
	defer s.saveM.Unlock()
	return s.saveLatest(ctx)
}

// A Subscription receives the latest snapshot after each action. Only the
// most recent snapshot is kept; a subscriber that falls behind skips the
// intermediate ones.
type Subscription struct {
	C <-chan State
	c chan State
}

func (s *Store) Subscribe() *Subscription {
	c := make(chan State, 1)
	sub := &Subscription{C: c, c: c}

	s.m.Lock()
	s.subscribers[sub] = struct{}{}
	s.m.Unlock()

	return sub
}

func (s *Store) Unsubscribe(sub *Subscription) {
	s.m.Lock()
	defer s.m.Unlock()

	if _, ok := s.subscribers[sub]; ok {
		delete(s.subscribers, sub)
		close(sub.c)
	}
}

func (s *Store) NumSubscribers() int {
	s.m.Lock()
	defer s.m.Unlock()
	return len(s.subscribers)
}

// Must be called with s.m held.
func (s *Store) publish(snapshot State) {
	for sub := range s.subscribers {
		select {
		case sub.c <- snapshot:
			continue
		default:
		}

		// Full: replace the stale snapshot with the new one.
		select {
		case <-sub.c:
		default:
		}
		select {
		case sub.c <- snapshot:
		default:
			logging.Warn().Msg("dropped authoring snapshot for a subscriber")
		}
	}
}
