package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"nonlinear_eq/internal/config"
	"nonlinear_eq/internal/server"
)

func main() {
	cfgPath := flag.String("config", "", "путь к JSON-файлу настроек (по умолчанию $"+config.EnvPath+")")
	addr := flag.String("addr", "", "адрес сервера, например :8080")
	flag.Parse()

	cfg, err := config.Load(config.Path(*cfgPath))
	if err != nil {
		log.Fatal(err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	srv, err := server.New(cfg, log.Default())
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx); err != nil {
		log.Fatal(err)
	}
}
