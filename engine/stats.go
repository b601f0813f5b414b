package engine

import (
	"sync"

	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/link"
)

// Stats accumulates lightweight per-command counters for the status
// endpoint, the binary-frame analogue of the teacher's session analytics
// counters.
type Stats struct {
	mu        sync.Mutex
	txByCmd   map[link.Cmd]uint64
	rxByCmd   map[link.Cmd]uint64
	faults    uint64
	lastFault string
}

func newStats() *Stats {
	return &Stats{
		txByCmd: make(map[link.Cmd]uint64),
		rxByCmd: make(map[link.Cmd]uint64),
	}
}

func (s *Stats) recordTx(cmd link.Cmd) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txByCmd[cmd]++
}

func (s *Stats) recordRx(cmd link.Cmd) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rxByCmd[cmd]++
}

func (s *Stats) recordFault(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults++
	s.lastFault = reason
}

// Snapshot is a point-in-time, safe-to-share copy of Stats.
type Snapshot struct {
	TxByCmd   map[link.Cmd]uint64
	RxByCmd   map[link.Cmd]uint64
	Faults    uint64
	LastFault string
}

func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		TxByCmd:   make(map[link.Cmd]uint64, len(s.txByCmd)),
		RxByCmd:   make(map[link.Cmd]uint64, len(s.rxByCmd)),
		Faults:    s.faults,
		LastFault: s.lastFault,
	}
	for k, v := range s.txByCmd {
		snap.TxByCmd[k] = v
	}
	for k, v := range s.rxByCmd {
		snap.RxByCmd[k] = v
	}
	return snap
}
