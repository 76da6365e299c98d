package solver

import (
	"fmt"
	"math"

	"nonlinear_eq/internal/equation"
)

// Значения по умолчанию
const (
	DefaultPrecision = 0.001 // точность метода итераций
	DefaultMaxSteps  = 5000  // максимальное количество итераций
	DefaultHorizon   = 100.0 // правая граница поиска интервала
	DefaultEpsilon   = 1e-5  // отступ от границы области определения
	DefaultStep      = 1.0   // шаг расширения интервала
)

// Config — параметры решателя
type Config struct {
	Precision float64 `json:"precision"`
	MaxSteps  int     `json:"max_steps"`
	Horizon   float64 `json:"horizon"`
	Epsilon   float64 `json:"epsilon"`
	Step      float64 `json:"step"`
}

// DefaultConfig возвращает параметры по умолчанию
func DefaultConfig() Config {
	return Config{
		Precision: DefaultPrecision,
		MaxSteps:  DefaultMaxSteps,
		Horizon:   DefaultHorizon,
		Epsilon:   DefaultEpsilon,
		Step:      DefaultStep,
	}
}

// Validate проверяет, что все параметры положительны и конечны.
func (c Config) Validate() error {
	if !positive(c.Precision) {
		return fmt.Errorf("solver: точность должна быть > 0, получено %v", c.Precision)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("solver: число итераций должно быть > 0, получено %d", c.MaxSteps)
	}
	if !positive(c.Horizon) {
		return fmt.Errorf("solver: граница поиска должна быть > 0, получено %v", c.Horizon)
	}
	if !positive(c.Epsilon) {
		return fmt.Errorf("solver: отступ должен быть > 0, получено %v", c.Epsilon)
	}
	if !positive(c.Step) {
		return fmt.Errorf("solver: шаг должен быть > 0, получено %v", c.Step)
	}
	return nil
}

// Options возвращает опции, воспроизводящие эту конфигурацию
func (c Config) Options() []Option {
	return []Option{
		WithPrecision(c.Precision),
		WithMaxSteps(c.MaxSteps),
		WithHorizon(c.Horizon),
		WithEpsilon(c.Epsilon),
		WithStep(c.Step),
	}
}

func positive(v float64) bool { return v > 0 && !math.IsInf(v, 0) }

// Option настраивает Solver
type Option func(*Solver)

// WithPrecision задаёт порог |x(k+1) − x(k)| для остановки итераций
func WithPrecision(p float64) Option { return func(s *Solver) { s.cfg.Precision = p } }

// WithMaxSteps ограничивает число итераций
func WithMaxSteps(n int) Option { return func(s *Solver) { s.cfg.MaxSteps = n } }

// WithHorizon задаёт правую границу поиска интервала
func WithHorizon(h float64) Option { return func(s *Solver) { s.cfg.Horizon = h } }

// WithEpsilon задаёт отступ от границы области определения
func WithEpsilon(e float64) Option { return func(s *Solver) { s.cfg.Epsilon = e } }

// WithStep задаёт шаг сдвига окна при поиске интервала
func WithStep(h float64) Option { return func(s *Solver) { s.cfg.Step = h } }

// WithEvaluator подменяет вычислитель f и g
func WithEvaluator(ev equation.Evaluator) Option { return func(s *Solver) { s.eval = ev } }
