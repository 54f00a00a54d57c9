package mediapager

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// PreferenceStore persists the sort preference of every catalog source and notifies
// pagers when one changes.
type PreferenceStore interface {
	// GetPreference returns the stored preference of sourceID, nil when there is none.
	GetPreference(ctx context.Context, sourceID string) (*SortSpec, error)
	// ObservePreferenceChanges streams every later change of the preference of sourceID,
	// including removals as nil. The returned function ends the subscription and closes
	// the channel.
	ObservePreferenceChanges(sourceID string) (<-chan *SortSpec, func())
}

// subscriberBuffer is the number of undelivered changes a subscriber may lag behind
// before the oldest is dropped.
const subscriberBuffer = 16

// preferenceBroadcaster fans preference changes out to subscribers of a source.
type preferenceBroadcaster struct {
	mu   sync.Mutex
	subs map[string]map[uuid.UUID]chan *SortSpec
}

func (b *preferenceBroadcaster) subscribe(sourceID string) (<-chan *SortSpec, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs == nil {
		b.subs = make(map[string]map[uuid.UUID]chan *SortSpec)
	}
	if b.subs[sourceID] == nil {
		b.subs[sourceID] = make(map[uuid.UUID]chan *SortSpec)
	}

	id := uuid.New()
	ch := make(chan *SortSpec, subscriberBuffer)
	b.subs[sourceID][id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		if sub, ok := b.subs[sourceID][id]; ok {
			delete(b.subs[sourceID], id)
			close(sub)
		}
	}
}

// publish never blocks: a subscriber with a full buffer loses its oldest pending change.
func (b *preferenceBroadcaster) publish(sourceID string, spec *SortSpec) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs[sourceID] {
		for {
			select {
			case ch <- copySortSpec(spec):
			default:
				select {
				case <-ch:
				default:
				}
				continue
			}
			break
		}
	}
}

func copySortSpec(spec *SortSpec) *SortSpec {
	if spec == nil {
		return nil
	}

	ret := *spec
	return &ret
}

// MemoryPreferenceStore keeps preferences in process memory.
type MemoryPreferenceStore struct {
	broadcaster preferenceBroadcaster

	mu    sync.RWMutex
	prefs map[string]SortSpec
}

func NewMemoryPreferenceStore() *MemoryPreferenceStore {
	return &MemoryPreferenceStore{
		prefs: make(map[string]SortSpec),
	}
}

// GetPreference - implements PreferenceStore.
func (s *MemoryPreferenceStore) GetPreference(_ context.Context, sourceID string) (*SortSpec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	spec, ok := s.prefs[sourceID]
	if !ok {
		return nil, nil
	}

	return &spec, nil
}

// SetPreference stores spec for sourceID and notifies observers. A nil spec removes the
// preference.
func (s *MemoryPreferenceStore) SetPreference(_ context.Context, sourceID string, spec *SortSpec) error {
	if err := spec.validate(); err != nil {
		return fmt.Errorf("cannot set preference: %w", err)
	}

	s.mu.Lock()
	if spec == nil {
		delete(s.prefs, sourceID)
	} else {
		s.prefs[sourceID] = *spec
	}
	s.mu.Unlock()

	s.broadcaster.publish(sourceID, spec)

	return nil
}

// ObservePreferenceChanges - implements PreferenceStore.
func (s *MemoryPreferenceStore) ObservePreferenceChanges(sourceID string) (<-chan *SortSpec, func()) {
	return s.broadcaster.subscribe(sourceID)
}

var _ PreferenceStore = (*MemoryPreferenceStore)(nil)
