package equation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
)

// Выражения по умолчанию совпадают с замкнутыми формулами Standard.
const (
	DefaultFunc   = "sqrt(x + a) - 1 / x"
	DefaultMapPos = "1 / sqrt(x + a)"
	DefaultMapNeg = "1 / (x * x) - a"
)

var decimalComma = regexp.MustCompile(`(\d),(\d)`)

// ExprEvaluator — реализация Evaluator на основе govaluate.
// Переменные выражений: x и a.
type ExprEvaluator struct {
	fn     *govaluate.EvaluableExpression
	mapPos *govaluate.EvaluableExpression
	mapNeg *govaluate.EvaluableExpression
}

var _ Evaluator = (*ExprEvaluator)(nil)

// NewExprEvaluator компилирует f(x, a) и две ветви g(x, a): для a ≥ 0 и для a < 0.
// Пустая строка заменяется выражением по умолчанию.
func NewExprEvaluator(fExpr, mapPosExpr, mapNegExpr string) (*ExprEvaluator, error) {
	fn, err := compile(fExpr, DefaultFunc)
	if err != nil {
		return nil, fmt.Errorf("ошибка в выражении функции: %w", err)
	}
	pos, err := compile(mapPosExpr, DefaultMapPos)
	if err != nil {
		return nil, fmt.Errorf("ошибка в выражении g для a >= 0: %w", err)
	}
	neg, err := compile(mapNegExpr, DefaultMapNeg)
	if err != nil {
		return nil, fmt.Errorf("ошибка в выражении g для a < 0: %w", err)
	}
	return &ExprEvaluator{fn: fn, mapPos: pos, mapNeg: neg}, nil
}

// Function вычисляет f(x, a) с теми же ограничениями области, что и Standard.
func (e *ExprEvaluator) Function(x, a float64) (float64, bool) {
	if x+a < 0 || x == 0 {
		return 0, false
	}
	return eval(e.fn, x, a)
}

// IterationMap вычисляет g(x, a); ветвь выбирается по знаку a.
func (e *ExprEvaluator) IterationMap(x, a float64) (float64, bool) {
	if !(x > 0) || x+a < 0 {
		return 0, false
	}
	if a >= 0 {
		return eval(e.mapPos, x, a)
	}
	return eval(e.mapNeg, x, a)
}

// String возвращает исходный текст f(x, a)
func (e *ExprEvaluator) String() string { return e.fn.String() }

func compile(expr, fallback string) (*govaluate.EvaluableExpression, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		expr = fallback
	}
	// нормализуем десятичную запятую; запятая с пробелом остаётся разделителем аргументов
	expr = decimalComma.ReplaceAllString(expr, "$1.$2")
	return govaluate.NewEvaluableExpressionWithFunctions(expr, functions)
}

func eval(expr *govaluate.EvaluableExpression, x, a float64) (v float64, ok bool) {
	// govaluate может паниковать на вырожденных аргументах функций
	defer func() {
		if recover() != nil {
			v, ok = 0, false
		}
	}()

	res, err := expr.Evaluate(map[string]interface{}{"x": x, "a": a})
	if err != nil {
		return 0, false
	}
	switch t := res.(type) {
	case float64:
		return finite(t)
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		parsed, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		return finite(parsed)
	default:
		return 0, false
	}
}

var functions = map[string]govaluate.ExpressionFunction{
	"sin":  unary(math.Sin),
	"cos":  unary(math.Cos),
	"tan":  unary(math.Tan),
	"exp":  unary(math.Exp),
	"log":  unary(math.Log),
	"sqrt": unary(math.Sqrt),
	"abs":  unary(math.Abs),
	"pow": func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("pow: ожидается 2 аргумента, получено %d", len(args))
		}
		return math.Pow(toFloat(args[0]), toFloat(args[1])), nil
	},
}

func unary(fn func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("ожидается 1 аргумент, получено %d", len(args))
		}
		return fn(toFloat(args[0])), nil
	}
}

func toFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	default:
		return math.NaN()
	}
}
