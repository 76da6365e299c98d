// Package equation вычисляет левую часть уравнения √(x + a) = 1/x
// и отображение g, по которому строится метод простых итераций.
//
// Вне области определения функции возвращают ok == false, а не ошибку:
// отрицательный аргумент корня, деление на ноль и переполнение
// (NaN, ±Inf) одинаково считаются «значение не определено».
package equation

import "math"

// Evaluator — интерфейс вычислителя f(x, a) и итерационного отображения g(x, a)
type Evaluator interface {
	Function(x, a float64) (float64, bool)
	IterationMap(x, a float64) (float64, bool)
}

// Standard — вычислитель по замкнутым формулам
type Standard struct{}

var _ Evaluator = Standard{}

// Function вычисляет f(x) = √(x + a) − 1/x.
func (Standard) Function(x, a float64) (float64, bool) {
	if x+a < 0 || x == 0 {
		return 0, false
	}
	return finite(math.Sqrt(x+a) - 1.0/x)
}

// IterationMap вычисляет g(x, a), выбирая формулу по знаку a:
// при a ≥ 0 g = 1/√(x + a), при a < 0 g = 1/x² − a.
// Обе ветви определены только при x > 0 и x + a ≥ 0.
func (Standard) IterationMap(x, a float64) (float64, bool) {
	if !(x > 0) || x+a < 0 {
		return 0, false
	}
	if a >= 0 {
		return finite(1.0 / math.Sqrt(x+a))
	}
	return finite(1.0/(x*x) - a)
}

// Function — f(x, a) стандартного вычислителя
func Function(x, a float64) (float64, bool) { return Standard{}.Function(x, a) }

// IterationMap — g(x, a) стандартного вычислителя
func IterationMap(x, a float64) (float64, bool) { return Standard{}.IterationMap(x, a) }

// finite отсеивает NaN и бесконечности
func finite(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
