package input

import "sync"

// Sampler 把终端在一帧内上报的按键事件折叠成一帧的按下快照。
// 终端只上报按键事件而不上报松开，因此一个键只在它被上报的那一帧内视为按下。
type Sampler struct {
	mu      sync.Mutex
	pending Snapshot
}

// Observe 记录本帧内出现的按键。
func (s *Sampler) Observe(k Key) {
	if k == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		s.pending = Snapshot{}
	}
	s.pending[k] = struct{}{}
}

// Take 返回本帧快照并开始新的一帧。
func (s *Sampler) Take() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.pending
	if snap == nil {
		snap = Snapshot{}
	}
	s.pending = nil
	return snap
}
