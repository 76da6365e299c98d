package solver

import (
	"fmt"
	"math"
)

// Bracket — интервал [X1, X2], на концах которого f определена и меняет знак
type Bracket struct {
	X1 float64 `json:"x1"`
	X2 float64 `json:"x2"`
}

// Mid — середина интервала, начальное приближение для итераций
func (b Bracket) Mid() float64 { return (b.X1 + b.X2) / 2 }

// LowerBound возвращает нижнюю границу поиска max(0, −a) + ε.
func (s *Solver) LowerBound(a float64) float64 {
	return math.Max(0, -a) + s.cfg.Epsilon
}

// FindBracket сдвигает окно ширины Step вправо от нижней границы,
// пока значения f на его концах не разойдутся по знаку.
// Возвращает интервал и его середину.
func (s *Solver) FindBracket(lower, a float64) (Bracket, float64, error) {
	return s.findBracket(lower, a, nil)
}

func (s *Solver) findBracket(lower, a float64, onStep StepFunc) (Bracket, float64, error) {
	x1 := lower
	if a < 0 {
		x1 = math.Abs(a) + s.cfg.Epsilon
	}
	x2 := x1 + s.cfg.Step
	f1, ok1 := s.eval.Function(x1, a)
	f2, ok2 := s.eval.Function(x2, a)

	k := 1
	if err := emit(onStep, Step{Stage: StageScan, K: k, X: x1, Next: x2}); err != nil {
		return Bracket{}, 0, err
	}

	// постепенное расширение интервала
	for ok1 && ok2 && sign(f1) == sign(f2) && x2 < s.cfg.Horizon {
		x1 = x2
		x2 += s.cfg.Step
		f1 = f2
		f2, ok2 = s.eval.Function(x2, a)

		k++
		if err := emit(onStep, Step{Stage: StageScan, K: k, X: x1, Next: x2}); err != nil {
			return Bracket{}, 0, err
		}
	}

	if !ok1 || !ok2 || sign(f1) == sign(f2) {
		msg := fmt.Sprintf("решение не найдено в интервале [%.2f, %.0f]", lower, s.cfg.Horizon)
		return Bracket{}, 0, fail(KindNoBracket, msg, nil)
	}

	b := Bracket{X1: x1, X2: x2}
	return b, b.Mid(), nil
}

// sign — знак числа: −1, 0 или 1. Точный ноль не совпадает ни с одним знаком.
func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
