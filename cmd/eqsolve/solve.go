package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"nonlinear_eq/internal/solver"
)

var (
	solveTrace bool
	solveJSON  bool
)

var solveCmd = &cobra.Command{
	Use:   "solve [a]",
	Short: "Найти корень для параметра a",
	Long:  "Найти корень для параметра a. Десятичный разделитель — точка или запятая. Отрицательное a: eqsolve solve -- -1 или --param=-1.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		param, err := paramArg(cmd, args)
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := newSolver(cfg)
		if err != nil {
			return err
		}

		var steps []solver.Step
		var onStep solver.StepFunc
		if solveTrace {
			onStep = func(st solver.Step) error {
				steps = append(steps, st)
				return nil
			}
		}

		res, err := s.SolveTrace(context.Background(), param, onStep)
		if err != nil {
			return err
		}

		if solveJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{"result": res, "steps": steps})
		}

		out := cmd.OutOrStdout()
		if solveTrace {
			if err := renderSteps(out, steps); err != nil {
				return err
			}
			pterm.Fprintln(out)
		}
		return renderResult(out, res, s.Config())
	},
}

func init() {
	solveCmd.Flags().String("param", "", "параметр a")
	solveCmd.Flags().BoolVar(&solveTrace, "trace", false, "показать шаги поиска интервала и итераций")
	solveCmd.Flags().BoolVar(&solveJSON, "json", false, "вывести результат в JSON")
}

func renderResult(out io.Writer, res solver.Result, cfg solver.Config) error {
	pterm.Fprint(out, pterm.DefaultSection.Sprintln(fmt.Sprintf("Решение уравнения √(x + %g) = 1/x", res.A)))
	pterm.Fprintln(out, pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Точность: ")+
		pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(cfg.Precision))
	pterm.Fprintln(out)

	return renderTable(out, pterm.TableData{
		{"Результаты вычислений", ""},
		{"Интервал", fmt.Sprintf("[%.5f, %.5f]", res.Bracket.X1, res.Bracket.X2)},
		{"Найденный корень", fmt.Sprintf("%.5f", res.Root)},
		{"Значение функции", fmt.Sprintf("%.7f", res.FunctionValue)},
		{"Шагов вычислений", fmt.Sprint(res.Steps)},
		{"Начальное приближение", fmt.Sprintf("%.5f", res.Initial)},
	})
}

func renderSteps(out io.Writer, steps []solver.Step) error {
	data := pterm.TableData{{"Этап", "k", "x", "следующее", "|Δ|"}}
	for _, st := range steps {
		diff := ""
		if st.Stage == solver.StageIterate {
			diff = fmt.Sprintf("%.6f", st.Diff)
		}
		data = append(data, []string{
			string(st.Stage),
			fmt.Sprint(st.K),
			fmt.Sprintf("%.6f", st.X),
			fmt.Sprintf("%.6f", st.Next),
			diff,
		})
	}
	return renderTable(out, data)
}

func renderTable(out io.Writer, data pterm.TableData) error {
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	pterm.Fprintln(out, table)
	return nil
}
