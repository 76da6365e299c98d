package main

import (
	"errors"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"nonlinear_eq/internal/config"
	"nonlinear_eq/internal/equation"
	"nonlinear_eq/internal/solver"
)

// Version задаётся при сборке через -ldflags
var Version = "0.0.0-dev"

var (
	cfgPath string
	exprs   exprFlags
)

// exprFlags — собственные выражения f и g
type exprFlags struct {
	fn, mapPos, mapNeg string
}

func (e exprFlags) set() bool { return e.fn != "" || e.mapPos != "" || e.mapNeg != "" }

var rootCmd = &cobra.Command{
	Use:           "eqsolve",
	Short:         "Решение уравнения √(x + a) = 1/x методом простых итераций",
	Long:          "eqsolve ищет интервал смены знака f(x) = √(x + a) − 1/x и уточняет корень методом простых итераций с точностью 0.001.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute запускает CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(presentError(err))
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "путь к JSON-файлу настроек (по умолчанию $"+config.EnvPath+")")
	pf.StringVar(&exprs.fn, "func", "", "выражение f(x, a) для govaluate")
	pf.StringVar(&exprs.mapPos, "map-pos", "", "выражение g(x, a) при a >= 0")
	pf.StringVar(&exprs.mapNeg, "map-neg", "", "выражение g(x, a) при a < 0")

	rootCmd.AddCommand(solveCmd, plotCmd, serveCmd, versionCmd)
}

func loadConfig() (config.Config, error) {
	return config.Load(config.Path(cfgPath))
}

// newSolver собирает решатель по настройкам и флагам выражений
func newSolver(cfg config.Config) (*solver.Solver, error) {
	opts := cfg.Solver.Options()
	if exprs.set() {
		ev, err := equation.NewExprEvaluator(exprs.fn, exprs.mapPos, exprs.mapNeg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, solver.WithEvaluator(ev))
	}
	return solver.New(opts...)
}

// paramArg — параметр a из флага --param или первого аргумента
func paramArg(cmd *cobra.Command, args []string) (string, error) {
	if p, _ := cmd.Flags().GetString("param"); p != "" {
		return p, nil
	}
	if len(args) == 0 {
		return "", errors.New("не задан параметр a: eqsolve " + cmd.Name() + " <a> или --param <a>")
	}
	return args[0], nil
}

// presentError — текст ошибки для пользователя
func presentError(err error) string {
	var f *solver.Failure
	if errors.As(err, &f) {
		if f.Err != nil {
			return f.Message + " (" + f.Err.Error() + ")"
		}
		return f.Message
	}
	return err.Error()
}
