package input

import "sort"

// Key 是抽象按键标识，取值与 bubbletea KeyMsg.String() 一致（如 "enter"、"a"、"ctrl+c"）。
type Key string

// KeyEnter 是提交键。
const KeyEnter Key = "enter"

// Snapshot 是某一采样时刻处于按下状态的按键集合。
type Snapshot map[Key]struct{}

// NewSnapshot 由按键列表构造快照。
func NewSnapshot(keys ...Key) Snapshot {
	s := make(Snapshot, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has 判断按键是否在集合中。
func (s Snapshot) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// Keys 返回排序后的按键列表，便于日志与测试比较。
func (s Snapshot) Keys() []Key {
	out := make([]Key, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Delta 是相邻两次快照之间的三路划分，仅在当前帧内有效。
type Delta struct {
	Pressed  Snapshot
	Released Snapshot
	Down     Snapshot
}

// Tracker 通过对比上一帧快照计算按键的按下/释放边沿。
// 只能观察到采样粒度的变化：两次采样之间按下又松开的键不可见。
type Tracker struct {
	previous Snapshot
}

// Update 每帧调用一次。previous 被整体替换而不是合并；返回的集合每次都是新分配的。
func (t *Tracker) Update(current Snapshot) Delta {
	down := make(Snapshot, len(current))
	for k := range current {
		down[k] = struct{}{}
	}
	pressed := Snapshot{}
	for k := range down {
		if !t.previous.Has(k) {
			pressed[k] = struct{}{}
		}
	}
	released := Snapshot{}
	for k := range t.previous {
		if !down.Has(k) {
			released[k] = struct{}{}
		}
	}
	t.previous = down
	return Delta{Pressed: pressed, Released: released, Down: down}
}

// Reset 清空上一帧状态，例如窗口失焦后。
func (t *Tracker) Reset() {
	t.previous = nil
}
