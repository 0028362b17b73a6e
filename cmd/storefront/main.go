package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/azaliaz/bookly-storefront/internal/api"
	"github.com/azaliaz/bookly-storefront/internal/app"
	"github.com/azaliaz/bookly-storefront/internal/config"
	"github.com/azaliaz/bookly-storefront/internal/logger"
	"github.com/azaliaz/bookly-storefront/internal/token"
)

func main() {
	cfg, err := config.ReadConfig()
	if err != nil {
		log.Fatal(err)
	}
	logg := logger.Get(cfg.Debug)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
		<-c
		logg.Debug().Msg("ctx cancel; catch os signal")
		cancel()
	}()

	logg.Debug().Any("cfg", cfg).Send()

	tokens := token.NewStore(cfg.TokenDir)
	client := api.New(api.Config{
		BaseURL: cfg.APIURL,
		Timeout: cfg.Timeout,
		Tokens:  tokens,
	})
	store := app.New(client, tokens)

	group, gCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer cancel()
		return store.RunUI(gCtx, os.Stdin, os.Stdout)
	})
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logg.Info().Str("stopping reason", err.Error()).Msg("storefront stopped")
		return
	}
	logg.Info().Msg("storefront stopped")
}
