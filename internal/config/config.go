// Package config загружает настройки сервера и решателя из JSON-файла.
// Отсутствующий файл не ошибка: используются значения по умолчанию.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"nonlinear_eq/internal/plot"
	"nonlinear_eq/internal/solver"
)

// EnvPath — переменная окружения с путём к файлу настроек
const EnvPath = "NONLINEAR_EQ_CONFIG"

// Config хранит настройки приложения
type Config struct {
	Addr      string        `json:"addr"`
	StaticDir string        `json:"static_dir"`
	LogLevel  string        `json:"log_level"`
	Solver    solver.Config `json:"solver"`
	Plot      PlotConfig    `json:"plot"`
}

// PlotConfig — настройки графиков
type PlotConfig struct {
	Points int `json:"points"`
}

// Default возвращает настройки по умолчанию
func Default() Config {
	return Config{
		Addr:      ":8080",
		StaticDir: "static",
		LogLevel:  "info",
		Solver:    solver.DefaultConfig(),
		Plot:      PlotConfig{Points: plot.DefaultPoints},
	}
}

// Path возвращает путь из аргумента или из EnvPath.
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(EnvPath)
}

// Load читает настройки; пустой путь или отсутствующий файл дают значения по умолчанию.
// Поля, не указанные в файле, сохраняют значения по умолчанию.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("config: разбор %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

// Validate проверяет настройки
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("адрес сервера не задан")
	}
	if c.Plot.Points <= 0 {
		return fmt.Errorf("число точек графика должно быть > 0, получено %d", c.Plot.Points)
	}
	return c.Solver.Validate()
}

// Save записывает настройки с правами 0600.
func Save(path string, c Config) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}
