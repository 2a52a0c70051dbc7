package timer

import (
	"sync"
	"time"
)

// fakeEntry fakeSystem 中的定时器.
type fakeEntry struct {
	delay    time.Duration
	periodic bool
	args     any
	f        TimerFunc
	stopped  bool
}

// fakeSystem 手动触发的定时器系统.
type fakeSystem struct {
	mtx     sync.Mutex
	idGen   TimerId
	entries map[TimerId]*fakeEntry
}

func newFakeSystem() *fakeSystem {
	return &fakeSystem{entries: make(map[TimerId]*fakeEntry)}
}

func (s *fakeSystem) StartTimer(delay time.Duration, periodic bool, args any, f TimerFunc) TimerId {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.idGen++
	s.entries[s.idGen] = &fakeEntry{delay: delay, periodic: periodic, args: args, f: f}
	return s.idGen
}

func (s *fakeSystem) StopTimer(tid TimerId) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if e, ok := s.entries[tid]; ok {
		e.stopped = true
	}
}

// active 返回未停止的定时器ID.
func (s *fakeSystem) active() []TimerId {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	var tids []TimerId
	for tid, e := range s.entries {
		if !e.stopped {
			tids = append(tids, tid)
		}
	}
	return tids
}

// fire 触发 tid, 即使已停止. 用于模拟停止前已到期的回调.
func (s *fakeSystem) fire(tid TimerId) {
	s.mtx.Lock()
	e := s.entries[tid]
	s.mtx.Unlock()
	if e != nil {
		e.f(&TimerArgs{TID: tid, Args: e.args})
	}
}

// fireActive 触发所有未停止的定时器.
func (s *fakeSystem) fireActive() {
	for _, tid := range s.active() {
		s.fire(tid)
	}
}
