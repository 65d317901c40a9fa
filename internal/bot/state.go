package bot

import "time"

const (
	interestsCapacity = 10
	topicsCapacity    = 20

	defaultMood = "neutral"
)

// CappedSet is an ordered, deduplicated string set with a fixed capacity.
// A value already present stays at its original position; when the set is
// full the oldest entry is evicted to make room.
type CappedSet struct {
	capacity int
	values   []string
}

func NewCappedSet(capacity int) *CappedSet {
	return &CappedSet{capacity: capacity}
}

func (s *CappedSet) Add(value string) {
	for _, existing := range s.values {
		if existing == value {
			return
		}
	}
	s.values = append(s.values, value)
	if len(s.values) > s.capacity {
		s.values = s.values[len(s.values)-s.capacity:]
	}
}

func (s *CappedSet) Contains(value string) bool {
	for _, existing := range s.values {
		if existing == value {
			return true
		}
	}
	return false
}

func (s *CappedSet) Len() int {
	return len(s.values)
}

// Values returns a copy in insertion order.
func (s *CappedSet) Values() []string {
	out := make([]string, len(s.values))
	copy(out, s.values)
	return out
}

// State is the mutable per-session inferred-context record. It lives in
// process memory only; durability belongs to the history store.
type State struct {
	Name              string
	Mood              string
	Interests         *CappedSet
	Topics            *CappedSet
	ConversationStart time.Time
	MessageCount      int
	LastMessageAt     time.Time
}

func NewState(now time.Time) *State {
	return &State{
		Mood:              defaultMood,
		Interests:         NewCappedSet(interestsCapacity),
		Topics:            NewCappedSet(topicsCapacity),
		ConversationStart: now,
	}
}

// StateSnapshot is an immutable view of State handed to callers.
type StateSnapshot struct {
	Name              string
	Mood              string
	Interests         []string
	Topics            []string
	ConversationStart time.Time
	MessageCount      int
}

func (st *State) Snapshot() StateSnapshot {
	return StateSnapshot{
		Name:              st.Name,
		Mood:              st.Mood,
		Interests:         st.Interests.Values(),
		Topics:            st.Topics.Values(),
		ConversationStart: st.ConversationStart,
		MessageCount:      st.MessageCount,
	}
}
