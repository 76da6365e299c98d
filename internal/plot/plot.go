// Package plot готовит данные для графиков f(x): общий вид и детальный
// вид вокруг найденного корня. Отрисовка остаётся на стороне клиента.
package plot

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"nonlinear_eq/internal/equation"
	"nonlinear_eq/internal/solver"
)

// DefaultPoints — число отрезков разбиения по X
const DefaultPoints = 800

const (
	detailMargin = 0.5    // полуширина детального вида
	outlierLimit = 1000.0 // отсечение выбросов по Y в детальном виде
	minHeight    = 0.1    // минимальная высота графика
)

// Point — точка на графике
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// View — данные одного графика
type View struct {
	Title    string          `json:"title"`
	XMin     float64         `json:"xmin"`
	XMax     float64         `json:"xmax"`
	YMin     float64         `json:"ymin"`
	YMax     float64         `json:"ymax"`
	Xs       []float64       `json:"xs"`
	Ys       []float64       `json:"ys"`
	Interval *solver.Bracket `json:"interval,omitempty"`
	Initial  *Point          `json:"initial,omitempty"`
	Root     *Point          `json:"root,omitempty"`
}

// Chart — общий и детальный графики одного решения
type Chart struct {
	Main   View `json:"main"`
	Detail View `json:"detail"`
}

// Title — заголовок графика для параметра a
func Title(a float64) string {
	return "√(x+" + strconv.FormatFloat(a, 'g', -1, 64) + ") = 1/x"
}

// Build строит оба графика по результату решения.
func Build(res solver.Result, ev equation.Evaluator, points int) Chart {
	if points <= 0 {
		points = DefaultPoints
	}

	r := math.Max(math.Max(math.Abs(res.Root)*1.5, math.Abs(res.Initial)*1.5), 10)
	main := view(res, ev, points, -r, r, false)
	main.Title = Title(res.A)

	start := math.Max(res.Lower, res.Root-detailMargin)
	detail := view(res, ev, points, start, res.Root+detailMargin, true)
	detail.Title = Title(res.A) + " (детальный вид)"

	return Chart{Main: main, Detail: detail}
}

// Samples вычисляет f на равномерной сетке из n отрезков [xMin, xMax].
// Точки вне области определения пропускаются.
func Samples(xMin, xMax float64, n int, a float64, ev equation.Evaluator) (xs, ys []float64) {
	if n <= 0 {
		n = DefaultPoints
	}
	xs = make([]float64, 0, n+1)
	ys = make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		x := xMin + float64(i)*(xMax-xMin)/float64(n)
		if y, ok := ev.Function(x, a); ok {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	return xs, ys
}

func view(res solver.Result, ev equation.Evaluator, points int, xMin, xMax float64, zoomed bool) View {
	xs, ys := Samples(xMin, xMax, points, res.A, ev)
	b := res.Bracket
	v := View{
		XMin:     xMin,
		XMax:     xMax,
		Xs:       xs,
		Ys:       ys,
		Interval: &b,
		Initial:  point(ev, res.Initial, res.A),
		Root:     point(ev, res.Root, res.A),
	}

	var special []float64
	for _, p := range []*Point{v.Initial, v.Root} {
		if p != nil {
			special = append(special, p.Y)
		}
	}
	v.YMin, v.YMax = yRange(ys, special, zoomed)

	if !zoomed {
		r := math.Max(math.Max(math.Abs(v.YMin), math.Abs(v.YMax)), minHeight)
		v.YMin, v.YMax = -r, r
	}
	return v
}

func point(ev equation.Evaluator, x, a float64) *Point {
	y, ok := ev.Function(x, a)
	if !ok {
		return nil
	}
	return &Point{X: x, Y: y}
}

// yRange — границы по Y. В детальном виде выбросы отбрасываются,
// особые точки включаются и добавляется отступ 15 %.
func yRange(ys, special []float64, zoomed bool) (float64, float64) {
	if len(ys) == 0 {
		return -1, 1
	}
	yMin, yMax := bounds(ys)

	if zoomed {
		filtered := make([]float64, 0, len(ys))
		for _, y := range ys {
			if math.Abs(y) < outlierLimit {
				filtered = append(filtered, y)
			}
		}
		if len(filtered) > 0 {
			yMin, yMax = bounds(filtered)
		}
		if len(special) > 0 {
			sMin, sMax := bounds(special)
			yMin = math.Min(yMin, sMin)
			yMax = math.Max(yMax, sMax)
		}
		pad := math.Max(0.1, (yMax-yMin)*0.15)
		yMin -= pad
		yMax += pad
	}

	if math.Abs(yMax-yMin) < minHeight {
		c := (yMin + yMax) / 2
		yMin, yMax = c-minHeight/2, c+minHeight/2
	}
	return yMin, yMax
}

func bounds(vs []float64) (float64, float64) {
	lo, hi := vs[0], vs[0]
	for _, v := range vs[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// WriteCSV пишет точки графика в CSV: x, f(x).
func WriteCSV(w io.Writer, v View) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"x", "f(x)"}); err != nil {
		return err
	}
	for i := range v.Xs {
		if err := cw.Write([]string{fmtFloat(v.Xs[i]), fmtFloat(v.Ys[i])}); err != nil {
			return fmt.Errorf("plot: запись csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 16, 64)
}
