package emote

import "sync"

type ticket uint64

type writeResult int

const (
	writeSkipped writeResult = iota
	writeStored
	writeCleared
)

// sequencer serializes writes per set key. A write is dropped once a write that started
// later has already been committed for the same key, so the newest request always wins.
// Every ticket taken with begin must be released with end.
type sequencer struct {
	m         sync.Mutex
	next      ticket
	inflight  map[ticket]struct{}
	committed map[string]ticket
	cleared   map[string]struct{}
}

func newSequencer() *sequencer {
	return &sequencer{
		inflight:  map[ticket]struct{}{},
		committed: map[string]ticket{},
		cleared:   map[string]struct{}{},
	}
}

func (s *sequencer) begin() ticket {
	s.m.Lock()
	defer s.m.Unlock()

	s.next++
	s.inflight[s.next] = struct{}{}

	return s.next
}

// end releases t. Keys whose set was removed by their last commit are forgotten as soon as
// no request older than that commit is still running.
func (s *sequencer) end(t ticket) {
	s.m.Lock()
	defer s.m.Unlock()

	delete(s.inflight, t)

	oldest := s.next + 1
	for running := range s.inflight {
		oldest = min(oldest, running)
	}

	for key := range s.cleared {
		if s.committed[key] <= oldest {
			delete(s.committed, key)
			delete(s.cleared, key)
		}
	}
}

// commit runs write for key unless t is stale. Only a write that changed something
// makes t the last committed ticket of key.
func (s *sequencer) commit(key string, t ticket, write func() writeResult) bool {
	s.m.Lock()
	defer s.m.Unlock()

	if t < s.committed[key] {
		return false
	}

	switch write() {
	case writeSkipped:
		return false
	case writeCleared:
		s.cleared[key] = struct{}{}
	default:
		delete(s.cleared, key)
	}

	s.committed[key] = t
	return true
}

// tracked returns the number of keys the sequencer still remembers.
func (s *sequencer) tracked() int {
	s.m.Lock()
	defer s.m.Unlock()

	return len(s.committed)
}
