package main

import (
	"github.com/spf13/cobra"

	"nonlinear_eq/internal/plot"
)

var (
	plotDetail bool
	plotPoints int
)

var plotCmd = &cobra.Command{
	Use:   "plot [a]",
	Short: "Вывести точки графика f(x) в CSV",
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
		res, err := s.Solve(param)
		if err != nil {
			return err
		}

		points := cfg.Plot.Points
		if plotPoints > 0 {
			points = plotPoints
		}
		chart := plot.Build(res, s.Evaluator(), points)
		if plotDetail {
			return plot.WriteCSV(cmd.OutOrStdout(), chart.Detail)
		}
		return plot.WriteCSV(cmd.OutOrStdout(), chart.Main)
	},
}

func init() {
	plotCmd.Flags().String("param", "", "параметр a")
	plotCmd.Flags().BoolVar(&plotDetail, "detail", false, "детальный вид вокруг корня")
	plotCmd.Flags().IntVar(&plotPoints, "points", 0, "число отрезков разбиения (по умолчанию из настроек)")
}
