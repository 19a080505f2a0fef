package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/talkincode/orderstock/config"
	"github.com/talkincode/orderstock/internal/adminapi"
	"github.com/talkincode/orderstock/internal/app"
	"github.com/talkincode/orderstock/internal/webserver"
	"go.uber.org/zap"
)

var (
	cfile  = flag.String("c", "orderstock.yml", "config file path")
	initdb = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
)

func main() {
	flag.Parse()

	cfg := config.LoadConfig(*cfile)
	_ = os.MkdirAll(cfg.System.Workdir, 0o755)

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		fmt.Println("database initialized")
		return
	}

	ws := webserver.Init(cfg, application.DB())
	adminapi.InitRouter(application.Stock(), cfg)

	errChan := make(chan error, 1)
	go func() {
		errChan <- ws.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		zap.L().Error("web server stopped", zap.Error(err))
	case sig := <-sigChan:
		zap.L().Info("shutting down", zap.String("signal", sig.String()))
	}
}
