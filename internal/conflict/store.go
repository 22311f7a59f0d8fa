package conflict

import (
	"sync"
	"time"
)

// State 对外发布的冲突状态
// LastUpdated 为空表示尚未完成过任何一次计算
type State struct {
	Conflicts   []Conflict `json:"conflicts"`
	IsLoading   bool       `json:"is_loading"`
	LastUpdated *time.Time `json:"last_updated"`
}

// Store 一个规划会话的冲突状态容器
//
// 冲突列表只会整体替换，不会逐条修改。每次计算开始时领取递增的代号，
// 只有最新代号的结果允许发布，较慢的旧计算结果被丢弃。
type Store struct {
	mu         sync.RWMutex
	state      State
	generation uint64

	subMu  sync.Mutex
	subs   map[int]func(State)
	nextID int
}

// NewStore 创建空状态
func NewStore() *Store {
	return &Store{
		state: State{Conflicts: make([]Conflict, 0)},
		subs:  make(map[int]func(State)),
	}
}

// Begin 开始一次计算，返回该次计算的代号并置 IsLoading
func (s *Store) Begin() uint64 {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.state.IsLoading = true
	snap := s.copyLocked()
	s.mu.Unlock()

	s.notify(snap)
	return gen
}

// Publish 用新结果整体替换；gen 不是最新代号时丢弃并返回 false
func (s *Store) Publish(gen uint64, conflicts []Conflict, at time.Time) bool {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return false
	}
	if conflicts == nil {
		conflicts = make([]Conflict, 0)
	}
	s.state = State{
		Conflicts:   conflicts,
		IsLoading:   false,
		LastUpdated: &at,
	}
	snap := s.copyLocked()
	s.mu.Unlock()

	s.notify(snap)
	return true
}

// Fail 计算失败：保留原有冲突，仅复位 IsLoading
// 已有更新的计算在进行时不做任何改动
func (s *Store) Fail(gen uint64) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.state.IsLoading = false
	snap := s.copyLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// State 返回当前状态的副本
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

// Generation 最近一次领取的代号
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// ConflictsFor 按学期过滤
func (s *Store) ConflictsFor(term string, year int) []Conflict {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Conflict, 0)
	for _, c := range s.state.Conflicts {
		if c.Term == term && c.Year == year {
			out = append(out, c)
		}
	}
	return out
}

// Count 按学期计数
func (s *Store) Count(term string, year int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, c := range s.state.Conflicts {
		if c.Term == term && c.Year == year {
			n++
		}
	}
	return n
}

// Subscribe 注册状态变更回调，返回取消函数
// 回调在发布方的 goroutine 中同步执行，不要在回调里阻塞
func (s *Store) Subscribe(fn func(State)) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(state State) {
	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}

// copyLocked 调用方需持有 mu；冲突切片整体替换从不原地修改，浅拷贝即可
func (s *Store) copyLocked() State {
	out := s.state
	out.Conflicts = append(make([]Conflict, 0, len(s.state.Conflicts)), s.state.Conflicts...)
	if s.state.LastUpdated != nil {
		t := *s.state.LastUpdated
		out.LastUpdated = &t
	}
	return out
}
