package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gravitlabs/storefront/config"
	"github.com/gravitlabs/storefront/internal/adminapi"
	"github.com/gravitlabs/storefront/internal/app"
	"github.com/gravitlabs/storefront/internal/webserver"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	configFile = flag.String("c", "/etc/storefront.yml", "config file")
	initDB     = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
	version    = flag.Bool("v", false, "print version and exit")
)

var buildVersion = "dev"

func main() {
	flag.Parse()

	if *version {
		fmt.Println(buildVersion)
		os.Exit(0)
	}

	cfg := config.LoadConfig(*configFile)
	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initDB {
		application.InitDb()
		zap.L().Info("database initialized")
		return
	}

	ws := webserver.Init(cfg, application.DB(), application.Hub())
	adminapi.SetWebConfig(&cfg.Web)
	adminapi.RegisterRoutes()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(ws.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return ws.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zap.L().Fatal("server exited", zap.Error(err))
	}
}
