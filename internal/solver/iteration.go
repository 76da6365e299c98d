package solver

import (
	"errors"
	"fmt"
	"math"
)

// Stage — этап решения, к которому относится Step
type Stage string

const (
	StageScan    Stage = "scan"    // сдвиг окна поиска интервала
	StageIterate Stage = "iterate" // одна итерация x(k+1) = g(x(k))
)

// Step — один шаг решения.
// Для StageScan X и Next — концы текущего окна, Diff не заполняется.
type Step struct {
	Stage Stage   `json:"stage"`
	K     int     `json:"k"`
	X     float64 `json:"x"`
	Next  float64 `json:"next"`
	Diff  float64 `json:"diff"`
}

// StepFunc вызывается после каждого шага. Любая ошибка прерывает решение;
// решатель возвращает ErrStopped, обёрнутый вокруг ошибки обратного вызова.
type StepFunc func(Step) error

func emit(onStep StepFunc, st Step) error {
	if onStep == nil {
		return nil
	}
	if err := onStep(st); err != nil {
		if errors.Is(err, ErrStopped) {
			return ErrStopped
		}
		return fmt.Errorf("%w: %w", ErrStopped, err)
	}
	return nil
}

// Refine уточняет корень методом простых итераций, начиная с x0.
// Останавливается, когда |g(x) − x| < Precision; возвращает корень
// и число итераций, не достигших точности.
func (s *Solver) Refine(x0, a float64) (float64, int, error) {
	return s.refine(x0, a, nil)
}

func (s *Solver) refine(x0, a float64, onStep StepFunc) (float64, int, error) {
	current := x0
	msg := fmt.Sprintf("не удалось найти решение для начального значения %.4f", x0)

	for count := 0; count < s.cfg.MaxSteps; count++ {
		next, ok := s.eval.IterationMap(current, a)
		if !ok {
			return current, count, fail(KindNoConvergence, msg,
				fmt.Errorf("g не определено в x = %.4f на итерации %d", current, count))
		}

		diff := math.Abs(next - current)
		if err := emit(onStep, Step{Stage: StageIterate, K: count + 1, X: current, Next: next, Diff: diff}); err != nil {
			return current, count, err
		}

		// проверка достижения точности
		if diff < s.cfg.Precision {
			return next, count, nil
		}
		current = next
	}

	return current, s.cfg.MaxSteps, fail(KindNoConvergence, msg,
		fmt.Errorf("точность не достигнута за %d итераций, последнее приближение %.4f", s.cfg.MaxSteps, current))
}
