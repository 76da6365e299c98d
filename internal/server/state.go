package server

import (
	"context"
	"sort"
	"sync"
	"time"

	"nonlinear_eq/internal/solver"
	"nonlinear_eq/internal/sse"
)

// параметры запуска решателя
type RunParams struct {
	Param  string `json:"param"`
	Func   string `json:"func,omitempty"`
	MapPos string `json:"map_pos,omitempty"`
	MapNeg string `json:"map_neg,omitempty"`
}

// custom — заданы ли собственные выражения
func (p RunParams) custom() bool {
	return p.Func != "" || p.MapPos != "" || p.MapNeg != ""
}

// состояние одного запуска
type RunState struct {
	ID        string
	Params    RunParams
	CreatedAt time.Time
	Cancel    context.CancelFunc

	mu     sync.Mutex
	steps  []solver.Step
	events []string
	result *solver.Result
	err    string
	done   bool
	ended  time.Time
}

// addStep сохраняет шаг для экспорта
func (rs *RunState) addStep(st solver.Step) {
	rs.mu.Lock()
	rs.steps = append(rs.steps, st)
	rs.mu.Unlock()
}

// emit сохраняет событие в истории и рассылает подписчикам.
// Под одной блокировкой с Stream, чтобы подписчик не пропустил событие.
func (rs *RunState) emit(hub *sse.Hub, msg string, final bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.events = append(rs.events, msg)
	if final {
		rs.done = true
		rs.ended = time.Now()
	}
	hub.Publish(rs.ID, msg)
}

// finish фиксирует итог запуска
func (rs *RunState) finish(res *solver.Result, errMsg string) {
	rs.mu.Lock()
	rs.result = res
	rs.err = errMsg
	rs.mu.Unlock()
}

// subscribe возвращает уже отправленные события и подписку на новые
func (rs *RunState) subscribe(hub *sse.Hub) (history []string, done bool, ch <-chan string, cancel func()) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	history = append([]string(nil), rs.events...)
	ch, cancel = hub.Subscribe(rs.ID)
	return history, rs.done, ch, cancel
}

// since возвращает события, начиная с индекса i, и признак завершения запуска
func (rs *RunState) since(i int) ([]string, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if i > len(rs.events) {
		i = len(rs.events)
	}
	return append([]string(nil), rs.events[i:]...), rs.done
}

// Steps возвращает копию сохранённых шагов
func (rs *RunState) Steps() []solver.Step {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return append([]solver.Step(nil), rs.steps...)
}

func (rs *RunState) endedAt() (time.Time, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.ended, rs.done
}

// Хранение завершённых запусков по умолчанию.
const (
	DefaultRunTTL  = 30 * time.Minute
	DefaultMaxRuns = 100
)

// registry — запуски по id. Завершённые запуски удаляются через ttl,
// а при превышении max — начиная с самых старых. Идущие запуски не удаляются.
type registry struct {
	mu   sync.Mutex
	runs map[string]*RunState
	ttl  time.Duration
	max  int
	now  func() time.Time
}

func newRegistry(ttl time.Duration, limit int) *registry {
	return &registry{runs: map[string]*RunState{}, ttl: ttl, max: limit, now: time.Now}
}

func (r *registry) save(rs *RunState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[rs.ID] = rs
	r.prune()
}

// prune вызывается под r.mu
func (r *registry) prune() {
	type finished struct {
		id    string
		ended time.Time
	}
	var done []finished
	for id, rs := range r.runs {
		ended, ok := rs.endedAt()
		if !ok {
			continue
		}
		if r.ttl > 0 && r.now().Sub(ended) > r.ttl {
			delete(r.runs, id)
			continue
		}
		done = append(done, finished{id, ended})
	}

	if r.max <= 0 || len(r.runs) <= r.max {
		return
	}
	sort.Slice(done, func(i, j int) bool { return done[i].ended.Before(done[j].ended) })
	for _, f := range done {
		if len(r.runs) <= r.max {
			break
		}
		delete(r.runs, f.id)
	}
}

func (r *registry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.runs)
}

func (r *registry) get(id string) *RunState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs[id]
}
