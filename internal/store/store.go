// Package store holds the single resume being edited in a session.
//
// A Store is constructed once per editing session and passed explicitly to
// whatever renders it. All mutations are synchronous; subscribers are invoked
// after each mutation that changed the document, outside the store lock.
// The store never talks to the network.
package store

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jonathan/cvmaker/internal/types"
)

// DefaultSkillLevel is the level given to newly added skills and languages.
const DefaultSkillLevel = 50

// Snapshot is an immutable view of the store at one point in time.
type Snapshot struct {
	Data     *types.ResumeData
	Template types.TemplateVariant
	Version  uint64
}

// Listener is notified after every effective mutation.
type Listener func(Snapshot)

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the entry id source. Generated ids that collide
// with an id already seen in this session are discarded and regenerated.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		s.newID = gen
	}
}

// WithInitial seeds the store with a document instead of an empty one.
func WithInitial(data *types.ResumeData, template types.TemplateVariant) Option {
	return func(s *Store) {
		if data != nil {
			s.data = data.Clone()
		}
		s.template = template.Resolve()
	}
}

// Store is the process-local container of the current resume and template.
type Store struct {
	mu        sync.Mutex
	data      *types.ResumeData
	template  types.TemplateVariant
	version   uint64
	seen      map[string]struct{}
	newID     func() string
	listeners map[int]Listener
	nextSubID int
}

// New creates a store holding an empty resume rendered with the default template.
func New(opts ...Option) *Store {
	s := &Store{
		data:      types.NewResumeData(),
		template:  types.DefaultTemplate,
		seen:      make(map[string]struct{}),
		newID:     uuid.NewString,
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rememberIDs(s.data)
	return s
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Data returns a deep copy of the current resume.
func (s *Store) Data() *types.ResumeData {
	return s.Snapshot().Data
}

// Template returns the active template variant.
func (s *Store) Template() types.TemplateVariant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.template
}

// Subscribe registers a listener and returns a function that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Load replaces the current resume wholesale. A nil document loads an empty one.
func (s *Store) Load(data *types.ResumeData) {
	next := types.NewResumeData()
	if data != nil {
		next = data.Clone()
	}
	s.mutate(func(_ *types.ResumeData) (*types.ResumeData, bool) {
		s.rememberIDs(next)
		return next, true
	})
}

// SetTemplate sets the active template; unknown variants become the default.
func (s *Store) SetTemplate(v types.TemplateVariant) {
	resolved := v.Resolve()
	s.mutateState(func() bool {
		if s.template == resolved {
			return false
		}
		s.template = resolved
		return true
	})
}

// SetProfilePicture stores an image reference, typically a data URL.
func (s *Store) SetProfilePicture(ref string) {
	s.mutate(func(d *types.ResumeData) (*types.ResumeData, bool) {
		d.ProfilePicture = &ref
		return d, true
	})
}

// RemoveProfilePicture clears the image reference.
func (s *Store) RemoveProfilePicture() {
	s.mutate(func(d *types.ResumeData) (*types.ResumeData, bool) {
		if d.ProfilePicture == nil {
			return d, false
		}
		d.ProfilePicture = nil
		return d, true
	})
}

// mutate applies fn to the live document under the lock. fn returns the
// document to keep and whether anything changed.
func (s *Store) mutate(fn func(d *types.ResumeData) (*types.ResumeData, bool)) {
	s.mutateState(func() bool {
		next, changed := fn(s.data)
		s.data = next
		return changed
	})
}

func (s *Store) mutateState(fn func() bool) {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return
	}
	s.version++
	snap := s.snapshotLocked()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Data:     s.data.Clone(),
		Template: s.template,
		Version:  s.version,
	}
}

// issueIDLocked returns an id never seen before in this store.
func (s *Store) issueIDLocked() string {
	for {
		id := s.newID()
		if _, taken := s.seen[id]; id != "" && !taken {
			s.seen[id] = struct{}{}
			return id
		}
	}
}

func (s *Store) rememberIDs(d *types.ResumeData) {
	for _, w := range d.WorkExperience {
		s.seen[w.ID] = struct{}{}
	}
	for _, e := range d.Education {
		s.seen[e.ID] = struct{}{}
	}
	for _, sk := range d.Skills {
		s.seen[sk.ID] = struct{}{}
	}
	for _, l := range d.Languages {
		s.seen[l.ID] = struct{}{}
	}
}
