package server

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"nonlinear_eq/internal/config"
	"nonlinear_eq/internal/equation"
	"nonlinear_eq/internal/plot"
	"nonlinear_eq/internal/solver"
	"nonlinear_eq/internal/sse"
)

// Server — HTTP-интерфейс решателя
type Server struct {
	cfg    config.Config
	solver *solver.Solver
	hub    *sse.Hub
	runs   *registry
	log    *log.Logger
	debug  bool
}

// New создаёт сервер с решателем по настройкам cfg.
func New(cfg config.Config, logger *log.Logger) (*Server, error) {
	s, err := solver.New(cfg.Solver.Options()...)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		cfg:    cfg,
		solver: s,
		hub:    sse.NewHub(256),
		runs:   newRegistry(DefaultRunTTL, DefaultMaxRuns),
		log:    logger,
		debug:  cfg.LogLevel == "debug",
	}, nil
}

// ответ на /solve
type solveResponse struct {
	Result *solver.Result `json:"result,omitempty"`
	Chart  *plot.Chart    `json:"chart,omitempty"`
	Error  string         `json:"error,omitempty"`
	Kind   string         `json:"kind,omitempty"`
}

// solverFor возвращает решатель по умолчанию или решатель с выражениями из запроса
func (s *Server) solverFor(p RunParams) (*solver.Solver, error) {
	if !p.custom() {
		return s.solver, nil
	}
	ev, err := equation.NewExprEvaluator(p.Func, p.MapPos, p.MapNeg)
	if err != nil {
		return nil, err
	}
	return solver.New(append(s.cfg.Solver.Options(), solver.WithEvaluator(ev))...)
}

func decodeParams(w http.ResponseWriter, r *http.Request) (RunParams, bool) {
	var p RunParams
	if r.Method != http.MethodPost {
		http.Error(w, "только POST", http.StatusMethodNotAllowed)
		return p, false
	}
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "ошибка JSON: "+err.Error(), http.StatusBadRequest)
		return p, false
	}
	return p, true
}

// Solve — синхронное решение с данными для графиков
func (s *Server) Solve(w http.ResponseWriter, r *http.Request) {
	p, ok := decodeParams(w, r)
	if !ok {
		return
	}

	slv, err := s.solverFor(p)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, solveResponse{Error: err.Error(), Kind: "expression"})
		return
	}

	res, err := slv.Solve(p.Param)
	if err != nil {
		writeJSON(w, statusOf(err), solveResponse{Error: message(err), Kind: string(solver.KindOf(err))})
		return
	}

	chart := plot.Build(res, slv.Evaluator(), s.cfg.Plot.Points)
	writeJSON(w, http.StatusOK, solveResponse{Result: &res, Chart: &chart})
}

// StartRun запускает решение в фоне; шаги отправляются в /stream
func (s *Server) StartRun(w http.ResponseWriter, r *http.Request) {
	p, ok := decodeParams(w, r)
	if !ok {
		return
	}

	slv, err := s.solverFor(p)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	a, err := solver.ParseParameter(p.Param)
	if err != nil {
		http.Error(w, message(err), http.StatusBadRequest)
		return
	}

	// предварительно считаем значения функции для графика
	xs, ys := plot.Samples(-10, 10, s.cfg.Plot.Points, a, slv.Evaluator())

	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	rs := &RunState{
		ID:        id,
		Params:    p,
		CreatedAt: time.Now(),
		Cancel:    cancel,
	}
	s.runs.save(rs)

	// асинхронный запуск решения
	go s.run(ctx, slv, rs)

	writeJSON(w, http.StatusOK, map[string]any{
		"id": id,
		"xs": xs,
		"ys": ys,
	})
}

func (s *Server) run(ctx context.Context, slv *solver.Solver, rs *RunState) {
	defer rs.Cancel()
	rs.emit(s.hub, event(map[string]any{"type": "start", "id": rs.ID}), false)

	onStep := func(st solver.Step) error {
		rs.addStep(st)
		if s.debug {
			s.log.Printf("run %s: %s k=%d x=%g next=%g", rs.ID, st.Stage, st.K, st.X, st.Next)
		}
		rs.emit(s.hub, event(map[string]any{"type": "step", "step": st}), false)
		return nil
	}

	res, err := slv.SolveTrace(ctx, rs.Params.Param, onStep)
	if err != nil {
		if errors.Is(err, solver.ErrStopped) {
			rs.finish(nil, "остановлено")
			rs.emit(s.hub, event(map[string]any{"type": "stopped"}), true)
			s.log.Printf("run %s остановлен", rs.ID)
			return
		}

		rs.finish(nil, message(err))
		rs.emit(s.hub, event(map[string]any{
			"type": "error",
			"err":  message(err),
			"kind": solver.KindOf(err),
		}), true)
		s.log.Printf("run %s: %v", rs.ID, err)
		return
	}

	rs.finish(&res, "")
	chart := plot.Build(res, slv.Evaluator(), s.cfg.Plot.Points)
	rs.emit(s.hub, event(map[string]any{
		"type":   "done",
		"result": res,
		"chart":  chart,
	}), true)
	s.log.Printf("run %s: корень %.5f за %d шагов", rs.ID, res.Root, res.Steps)
}

// StopRun — прерывание решения
func (s *Server) StopRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "только POST", http.StatusMethodNotAllowed)
		return
	}
	rs, ok := s.lookup(w, r)
	if !ok {
		return
	}

	if rs.Cancel != nil {
		rs.Cancel()
	}

	w.WriteHeader(http.StatusNoContent)
}

// RunStatus — состояние запуска
func (s *Server) RunStatus(w http.ResponseWriter, r *http.Request) {
	rs, ok := s.lookup(w, r)
	if !ok {
		return
	}

	rs.mu.Lock()
	resp := map[string]any{
		"id":      rs.ID,
		"params":  rs.Params,
		"created": rs.CreatedAt,
		"done":    rs.done,
		"steps":   len(rs.steps),
		"result":  rs.result,
		"error":   rs.err,
	}
	rs.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

// ExportCSV — экспорт шагов в CSV
func (s *Server) ExportCSV(w http.ResponseWriter, r *http.Request) {
	rs, ok := s.lookup(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=steps_"+rs.ID+".csv")

	cw := csv.NewWriter(w)
	defer cw.Flush()

	_ = cw.Write([]string{"stage", "k", "x", "next", "|next-x|"})

	for _, st := range rs.Steps() {
		_ = cw.Write([]string{
			string(st.Stage),
			strconv.Itoa(st.K),
			fmtFloat(st.X),
			fmtFloat(st.Next),
			fmtFloat(st.Diff),
		})
	}
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 16, 64)
}

// Stream — SSE-стрим шагов решения
func (s *Server) Stream(w http.ResponseWriter, r *http.Request) {
	rs, ok := s.lookup(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	history, done, wake, cancel := rs.subscribe(s.hub)
	defer cancel()

	// события читаются из истории запуска по индексу; канал hub только будит цикл,
	// поэтому пропущенная при переполнении публикация не теряет событие
	next := 0
	write := func(msgs []string) bool {
		for _, msg := range msgs {
			if err := sse.WriteEvent(w, "msg", msg); err != nil {
				return false
			}
		}
		next += len(msgs)
		flusher.Flush()
		return true
	}

	if !write(history) || done {
		return
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-wake:
			msgs, done := rs.since(next)
			if !write(msgs) || done {
				return
			}
		}
	}
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*RunState, bool) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "требуется id", http.StatusBadRequest)
		return nil, false
	}
	rs := s.runs.get(id)
	if rs == nil {
		http.Error(w, "неизвестный id", http.StatusNotFound)
		return nil, false
	}
	return rs, true
}

// statusOf сопоставляет категорию отказа с HTTP-статусом
func statusOf(err error) int {
	switch solver.KindOf(err) {
	case solver.KindParse:
		return http.StatusBadRequest
	case solver.KindNoBracket, solver.KindNoConvergence:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// message — текст отказа для пользователя
func message(err error) string {
	var f *solver.Failure
	if errors.As(err, &f) {
		if f.Err != nil {
			return f.Message + ": " + f.Err.Error()
		}
		return f.Message
	}
	return err.Error()
}

func event(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
