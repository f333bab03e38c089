package main

import (
	"context"
	"errors"
	"fmt"
	"imgtool/internal/adapters/file"
	"imgtool/internal/adapters/handler"
	"imgtool/internal/adapters/preview"
	"imgtool/internal/adapters/remote"
	"imgtool/internal/adapters/sender"
	"imgtool/internal/adapters/terminal"
	"imgtool/internal/core/command"
	"imgtool/internal/core/domain"
	"imgtool/internal/core/port"
	"imgtool/internal/core/service"
	"imgtool/internal/core/workflow"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const usage = `usage:
  imgtool resize --size <kb> <file>
  imgtool convert --format <format> <file>
  imgtool bot`

func main() {
	pflag.Int("size", 0, "target size in KB, between 10 and 1000")
	pflag.String("format", "", "target format: "+formatList())
	pflag.String("out", "", "directory results are written to")
	configPath := pflag.String("config", "", "config file, defaults to ./config.toml")
	pflag.Usage = func() {
		fmt.Fprintln(os.Stderr, usage)
		pflag.PrintDefaults()
	}
	pflag.Parse()

	mode := pflag.Arg(0)
	if mode != "bot" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	loadConfig(*configPath)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	switch mode {
	case "resize", "convert":
		if err := runOnce(ctx, mode, pflag.Arg(1)); err != nil {
			cancel()
			os.Exit(1)
		}
	case "bot":
		runBot(ctx)
	default:
		pflag.Usage()
		os.Exit(2)
	}
}

func loadConfig(path string) {
	viper.SetDefault("service.base_url", "http://localhost:10000")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("output.dir", ".")
	viper.SetDefault("preview.max_dimension", preview.DefaultMaxDimension)
	viper.SetDefault("telegram.session_ttl", "1h")

	viper.SetEnvPrefix("imgtool")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
	}
	viper.SetConfigType("toml")

	for key, flag := range map[string]string{"output.dir": "out", "size": "size", "format": "format"} {
		if f := pflag.Lookup(flag); f != nil && f.Changed {
			if err := viper.BindPFlag(key, f); err != nil {
				log.Fatal().Err(err).Str("flag", flag).Msg("could not bind flag")
			}
		}
	}

	log.Debug().Msg("reading config file...")
	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case errors.As(err, &notFound):
		log.Debug().Msg("no config file, using defaults")
	case err != nil && path == "":
		log.Warn().Err(err).Msg("could not read config file, using defaults")
	case err != nil:
		log.Fatal().Err(err).Str("path", path).Msg("could not read config file")
	}

	var logLevel zerolog.Level

	switch viper.GetString("log.level") {
	case "info":
		logLevel = zerolog.InfoLevel
	case "debug":
		logLevel = zerolog.DebugLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)
}

// runOnce drives a single submission from the terminal. The returned error only signals failure, it has
// already been reported on the surface.
func runOnce(ctx context.Context, mode string, path string) error {
	var f *domain.File
	if path != "" {
		var err error
		f, err = file.Load(path)
		if err != nil {
			log.Error().Err(err).Str("path", path).Msg("could not load image")
			return err
		}
	}

	store, err := file.NewTempStore()
	if err != nil {
		log.Error().Err(err).Msg("failed initializing temp store")
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("failed removing temp store")
		}
	}()

	transport := remote.NewImageService(viper.GetString("service.base_url"))
	previewer := preview.NewThumbnailer(viper.GetInt("preview.max_dimension"))
	surface := terminal.NewSurface(store, viper.GetString("output.dir"), mode)

	switch mode {
	case "resize":
		w := workflow.NewResize(transport, surface, store, previewer)
		defer w.Close()

		if err := w.Select(f); err != nil {
			log.Warn().Err(err).Msg("source preview failed")
		}
		return w.Submit(ctx, f, viper.GetString("size"))
	default:
		format, err := domain.ParseFormat(viper.GetString("format"))
		if err != nil {
			log.Error().Err(err).Msg("choose one of " + formatList())
			return err
		}

		w := workflow.NewConvert(transport, surface, store, previewer)
		defer w.Close()

		if err := w.Select(f); err != nil {
			log.Warn().Err(err).Msg("source preview failed")
		}
		return w.Submit(ctx, f, format)
	}
}

func runBot(ctx context.Context) {
	log.Info().Msg("starting imgtool bot...")

	token := viper.GetString("telegram.bot_token")
	opts := []bot.Option{
		bot.WithDefaultHandler(noOpHandler),
	}

	b, err := bot.New(token, opts...)
	if err != nil {
		log.Panic().Err(err).Msg("failed initializing telegram bot")
	}

	sessionTTL, err := time.ParseDuration(viper.GetString("telegram.session_ttl"))
	if err != nil || sessionTTL <= 0 {
		log.Panic().Err(err).Str("ttl", viper.GetString("telegram.session_ttl")).Msg("invalid session ttl in config")
	}

	store, err := file.NewTempStore()
	if err != nil {
		log.Panic().Err(err).Msg("failed initializing temp store")
	}

	s := sender.NewTelegram(b)

	sessions := service.NewSessions(service.Dependencies{
		Transport: remote.NewImageService(viper.GetString("service.base_url")),
		Handles:   store,
		Previewer: preview.NewThumbnailer(viper.GetInt("preview.max_dimension")),
		Surface: func(chatID int64) port.ChatSurface {
			return s.NewSurface(chatID, store)
		},
	}, sessionTTL)

	swept := make(chan struct{})
	go func() {
		defer close(swept)
		sessions.Sweep(ctx, sessionTTL/4)
	}()

	fetcher := file.NewFetcher()

	commandRegistry := &command.Registry{}
	commandRegistry.Register(command.NewResize(sessions, fetcher, s, "/resize"))
	commandRegistry.Register(command.NewConvert(sessions, fetcher, s, "/convert"))
	commandRegistry.Register(command.NewStatus(sessions, s, "/status"))

	commandHandler := handler.NewCommand(commandRegistry, b)

	b.RegisterHandler(bot.HandlerTypeMessageText, "/", bot.MatchTypePrefix, commandHandler.Handle)
	b.RegisterHandler(bot.HandlerTypePhotoCaption, "/", bot.MatchTypePrefix, commandHandler.Handle)

	log.Info().Strs("commands", commandRegistry.ListCommands()).Msg("bot listening")
	b.Start(ctx)

	commandHandler.Wait()
	<-swept
	sessions.Close()

	if err := store.Close(); err != nil {
		log.Warn().Err(err).Msg("failed removing temp store")
	}
	log.Info().Msg("bot stopped")
}

func formatList() string {
	names := make([]string, len(domain.Formats))
	for i, f := range domain.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, "|")
}

func noOpHandler(_ context.Context, _ *bot.Bot, _ *models.Update) {}
