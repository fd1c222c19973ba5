package main

import (
	"MenuHub/ai/gpt"
	"MenuHub/bot"
	"MenuHub/impl/core"
	"MenuHub/internal/config"
	"MenuHub/internal/database"
	"MenuHub/internal/http-server/api"
	"MenuHub/internal/lib/logger"
	"MenuHub/internal/lib/sl"
	"MenuHub/internal/service/focusnfe"
	"MenuHub/internal/service/mailer"
	"MenuHub/internal/service/megaapi"
	"MenuHub/internal/ws"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var adminBot *bot.AdminBot
	if conf.Telegram.Enabled {
		var err error
		adminBot, err = bot.NewAdminBot(conf.Telegram.BotName, conf.Telegram.ApiKey, conf.Telegram.AdminId, lg)
		if err != nil {
			lg.Error("failed to initialize telegram bot", sl.Err(err))
		} else {
			lg = logger.SetupTelegramHandler(lg, adminBot, slog.LevelError)
			lg.With(
				slog.String("bot_name", conf.Telegram.BotName),
			).Info("telegram alerts enabled")
		}
	}

	lg.Info("starting menuhub",
		slog.String("config", *configPath),
		slog.String("env", conf.Env),
		slog.String("auto_reply", conf.AutoReply.Mode),
	)
	lg.Debug("debug messages enabled")

	handler := core.New(conf, lg)

	db, err := repository.NewSupabaseClient(conf, lg)
	if err != nil {
		lg.Error("supabase client", sl.Err(err))
		return
	}
	handler.SetRepository(db)
	lg.With(slog.String("url", conf.Supabase.Url)).Info("supabase client initialized")

	mongo, err := repository.NewMongoClient(conf, lg)
	if err != nil {
		lg.Error("mongo client", sl.Err(err))
	}
	if mongo != nil {
		if err = mongo.EnsureIndexes(); err != nil {
			lg.Warn("mongo indexes", sl.Err(err))
		}
		handler.SetKeyStore(mongo)
		lg.With(
			slog.String("host", conf.Mongo.Host),
			slog.String("port", conf.Mongo.Port),
			slog.String("user", conf.Mongo.User),
			slog.String("database", conf.Mongo.Database),
		).Info("mongo client initialized")
	}

	if composer := gpt.NewComposer(conf, lg); composer != nil {
		handler.SetAssistant(composer)
		lg.With(
			sl.Secret("openai_key", conf.OpenAI.ApiKey),
			slog.String("model", conf.OpenAI.Model),
		).Info("reply composer initialized")
	}

	if sender := megaapi.NewMegaApiService(conf, lg); sender != nil {
		handler.SetMessenger(sender)
		lg.With(slog.String("url", conf.MegaApi.BaseUrl)).Info("whatsapp gateway initialized")
	}

	handler.SetFiscalService(focusnfe.NewClient(conf, lg))

	if m := mailer.New(conf, lg); m != nil {
		handler.SetMailer(m)
		lg.With(slog.String("from", conf.Resend.From)).Info("mailer initialized")
	}

	hub := ws.NewHub(lg)
	hub.SetHandler(handler)
	handler.SetBroadcaster(hub)
	go hub.Run(ctx)
	if adminBot != nil {
		adminBot.SetStatusSource(hub)
		go func() {
			if err := adminBot.Start(ctx); err != nil {
				lg.Error("telegram bot error", sl.Err(err))
			}
		}()
	}

	server := api.New(conf, lg, handler, hub)
	errs := make(chan error, 1)
	go func() {
		errs <- server.Run()
	}()

	select {
	case err = <-errs:
		if err != nil {
			lg.Error("server start", sl.Err(err))
		}
	case <-ctx.Done():
		lg.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err = server.Shutdown(shutdownCtx); err != nil {
			lg.Error("server shutdown", sl.Err(err))
		}
	}
	lg.Error("service stopped")
}
