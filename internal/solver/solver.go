// Package solver находит вещественный корень уравнения √(x + a) = 1/x:
// сначала ищет интервал смены знака f, затем уточняет его середину
// методом простых итераций.
//
// Решатель не хранит состояния между вызовами; один Solver можно
// использовать из нескольких горутин одновременно.
package solver

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"nonlinear_eq/internal/equation"
)

// Result — результат решения уравнения
type Result struct {
	A             float64 `json:"a"`       // параметр уравнения
	Lower         float64 `json:"lower"`   // нижняя граница поиска
	Bracket       Bracket `json:"bracket"` // интервал смены знака
	Initial       float64 `json:"initial"` // начальное приближение
	Root          float64 `json:"root"`    // найденный корень
	Steps         int     `json:"steps"`   // количество итераций
	FunctionValue float64 `json:"fx"`      // значение функции в корне
}

// Solver — решатель уравнения
type Solver struct {
	eval equation.Evaluator
	cfg  Config
}

// New создаёт решатель с параметрами по умолчанию и стандартным вычислителем.
func New(opts ...Option) (*Solver, error) {
	s := &Solver{eval: equation.Standard{}, cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(s)
	}
	if s.eval == nil {
		return nil, fmt.Errorf("solver: вычислитель не задан")
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Config возвращает действующие параметры
func (s *Solver) Config() Config { return s.cfg }

// Evaluator возвращает используемый вычислитель
func (s *Solver) Evaluator() equation.Evaluator { return s.eval }

// ParseParameter разбирает параметр a; десятичная запятая заменяется точкой.
// NaN и бесконечности не принимаются.
func ParseParameter(text string) (float64, error) {
	a, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(text), ",", "."), 64)
	if err != nil {
		return 0, fail(KindParse, fmt.Sprintf("ошибка разбора параметра %q", text), err)
	}
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0, fail(KindParse, fmt.Sprintf("параметр должен быть конечным числом, получено %q", text), nil)
	}
	return a, nil
}

// Solve решает уравнение для параметра, заданного текстом.
// Ошибка всегда имеет тип *Failure.
func (s *Solver) Solve(text string) (Result, error) {
	return s.SolveTrace(context.Background(), text, nil)
}

// SolveTrace — Solve с обратным вызовом на каждом шаге поиска интервала и итераций.
// Ошибка — *Failure либо ErrStopped: при отмене ctx или любой ошибке из onStep
// (исходная ошибка доступна через errors.Is/errors.As).
func (s *Solver) SolveTrace(ctx context.Context, text string, onStep StepFunc) (Result, error) {
	a, err := ParseParameter(text)
	if err != nil {
		return Result{}, err
	}
	return s.solve(a, hook(ctx, onStep))
}

func (s *Solver) solve(a float64, onStep StepFunc) (Result, error) {
	lower := s.LowerBound(a)

	// поиск интервала с корнем
	b, initial, err := s.findBracket(lower, a, onStep)
	if err != nil {
		return Result{}, err
	}

	// уточнение корня методом итераций
	root, steps, err := s.refine(initial, a, onStep)
	if err != nil {
		return Result{}, err
	}

	fx, ok := s.eval.Function(root, a)
	if !ok {
		fx = 0
	}

	return Result{
		A:             a,
		Lower:         lower,
		Bracket:       b,
		Initial:       initial,
		Root:          root,
		Steps:         steps,
		FunctionValue: fx,
	}, nil
}

func hook(ctx context.Context, onStep StepFunc) StepFunc {
	if ctx.Done() == nil {
		return onStep
	}
	return func(st Step) error {
		select {
		case <-ctx.Done():
			return ErrStopped
		default:
		}
		if onStep == nil {
			return nil
		}
		return onStep(st)
	}
}
