package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"alpools-bot/internal/bot"
	"alpools-bot/internal/bot/handlers/start"
	"alpools-bot/internal/bot/state_manager"
	"alpools-bot/internal/config"
	"alpools-bot/internal/draft"
	"alpools-bot/internal/notify"
	"alpools-bot/internal/storage"
	"alpools-bot/internal/storage/redis"
	"alpools-bot/pkg/api"
	"alpools-bot/pkg/logger"
	pkgredis "alpools-bot/pkg/redis"
)

func main() {
	migrate := flag.String("migrate", "", "run migrations and exit: up, down or status")
	flag.Parse()

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Инициализация логгера
	zapLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	// Обработка сигналов завершения
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	// Инициализация PostgreSQL
	db, err := storage.Connect(ctx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer db.Close()

	if *migrate != "" {
		if err := runMigrateCommand(ctx, *migrate, db.DB, zapLogger); err != nil {
			zapLogger.Fatal("Migration command failed", zap.String("command", *migrate), zap.Error(err))
		}
		return
	}

	if err := storage.RunMigrations(ctx, db.DB, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Инициализация Redis клиента
	redisClient, err := pkgredis.New(ctx, pkgredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	drafts := draft.NewService(
		storage.NewDraftRepository(db),
		redis.NewLocker(redisClient, cfg.Redis.LockTTL, cfg.Redis.LockWait),
		zapLogger,
	)

	// Инициализация Telegram API
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		zapLogger.Fatal("Failed to create Telegram bot API", zap.Error(err))
	}
	botAPI.Debug = cfg.BotDebug
	zapLogger.Info("Authorized on account", zap.String("username", botAPI.Self.UserName))

	stateManager := state_manager.New(redis.New(redisClient, cfg.Redis.TTL))

	// Уведомления менеджеров
	admins := notify.NewTelegram(botAPI, cfg.Admin.IDs, cfg.Admin.ChannelID, zapLogger)
	journal, err := notify.NewJournal(cfg.ReportsDir, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to init lead journal", zap.Error(err))
	}
	notifiers := []notify.Notifier{admins, journal}
	if cfg.CRM.WebhookURL != "" {
		crm := api.NewClient(cfg.CRM.WebhookURL, cfg.CRM.APIKey, cfg.CRM.Timeout, zapLogger)
		notifiers = append(notifiers, notify.NewWebhook(crm))
	}

	tgBot := bot.New(bot.HandlerDependencies{
		BotAPI:   botAPI,
		Logger:   zapLogger,
		State:    stateManager,
		Drafts:   drafts,
		Notifier: notify.NewMulti(zapLogger, notifiers...),
		Admins:   admins,
		Journal:  journal,
		Start:    start.New(zapLogger, botAPI, stateManager),
		Cfg:      cfg,
	})

	// Запуск бота
	if err := tgBot.Start(ctx); err != nil {
		zapLogger.Fatal("Bot stopped with error", zap.Error(err))
	}

	zapLogger.Info("Bot shutdown gracefully")
}
