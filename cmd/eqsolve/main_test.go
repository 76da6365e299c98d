package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nonlinear_eq/internal/solver"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		resetFlags(t)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags возвращает флаги к значениям по умолчанию между запусками
func resetFlags(t *testing.T) {
	t.Helper()
	require.NoError(t, solveCmd.Flags().Set("param", ""))
	require.NoError(t, plotCmd.Flags().Set("param", ""))
	solveTrace, solveJSON = false, false
	plotDetail, plotPoints = false, 0
	exprs = exprFlags{}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "eqsolve "+Version+"\n", out)
}

func TestSolveJSON(t *testing.T) {
	out, err := run(t, "solve", "--json", "--trace", "1,5")
	require.NoError(t, err)

	var body struct {
		Result solver.Result `json:"result"`
		Steps  []solver.Step `json:"steps"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, 1.5, body.Result.A)
	assert.Len(t, body.Steps, body.Result.Steps+2)
}

func TestSolveNegativeParam(t *testing.T) {
	out, err := run(t, "solve", "--json", "--param=-1")
	require.NoError(t, err)
	assert.Contains(t, out, `"a": -1`)
}

func TestSolveFailure(t *testing.T) {
	_, err := run(t, "solve", "--json", "abc")
	require.Error(t, err)
	assert.True(t, errors.Is(err, solver.ErrParse))
	assert.Contains(t, presentError(err), `"abc"`)
}

func TestSolveTable(t *testing.T) {
	out, err := run(t, "solve", "0")
	require.NoError(t, err)

	s, err := solver.New()
	require.NoError(t, err)
	res, err := s.Solve("0")
	require.NoError(t, err)

	assert.Contains(t, out, "Найденный корень")
	assert.Contains(t, out, fmt.Sprintf("%.5f", res.Root))
	assert.Contains(t, out, fmt.Sprintf("%.7f", res.FunctionValue))
	assert.Contains(t, out, "[0.00001, 1.00001]")
	assert.Contains(t, out, "0.50001")
}

func TestSolveTraceTable(t *testing.T) {
	out, err := run(t, "solve", "--trace", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "scan")
	assert.Contains(t, out, "iterate")
	assert.Contains(t, out, "Шагов вычислений")
}

func TestSolveMissingParam(t *testing.T) {
	_, err := run(t, "solve")
	assert.Error(t, err)
}

func TestPlotCSV(t *testing.T) {
	out, err := run(t, "plot", "--detail", "--points", "20", "0")
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewBufferString(out)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 22)
	assert.Equal(t, []string{"x", "f(x)"}, rows[0])
}

func TestCustomExpression(t *testing.T) {
	out, err := run(t, "solve", "--json", "--map-neg", "1 / sqrt(x + a)", "--param=-0,5")
	require.NoError(t, err)
	assert.Contains(t, out, `"root": 1.19`)
}
