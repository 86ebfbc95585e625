package campaign

import (
	"sync"
	"time"
)

// Registry 维护活跃 campaign 的 id 与创建时间。
// 客户端忘记 DELETE 的 campaign 通过创建时的清理扫描回收：
// 数量超过 minKeep 时删除比 minAge 更老的条目。
type Registry struct {
	mu      sync.Mutex
	nextID  int
	started map[int]time.Time
	minAge  time.Duration
	minKeep int
}

func NewRegistry(minAge time.Duration, minKeep int) *Registry {
	if minAge <= 0 {
		minAge = 24 * time.Hour
	}
	if minKeep <= 0 {
		minKeep = 1 << 16
	}
	return &Registry{
		started: make(map[int]time.Time),
		minAge:  minAge,
		minKeep: minKeep,
	}
}

// Create 注册一个新的 campaign 并返回其 id。
func (r *Registry) Create() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.sweep(now)

	id := r.nextID
	r.nextID++
	r.started[id] = now
	return id
}

// Start 返回指定 campaign 的创建时间。
func (r *Registry) Start(id int) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.started[id]
	return t, ok
}

// Delete 注销指定 campaign，返回其是否存在。
func (r *Registry) Delete(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.started[id]
	delete(r.started, id)
	return ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.started)
}

// sweep 持锁调用。
func (r *Registry) sweep(now time.Time) {
	if len(r.started) <= r.minKeep {
		return
	}
	for id, t := range r.started {
		if now.Sub(t) > r.minAge {
			delete(r.started, id)
		}
	}
}
