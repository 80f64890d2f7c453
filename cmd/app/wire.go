package main

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"servewise-backend/internal/config"
	"servewise-backend/internal/controller"
	"servewise-backend/internal/lessongen"
	"servewise-backend/internal/notify"
	"servewise-backend/internal/repository"
	"servewise-backend/internal/service"
	"servewise-backend/utilities"
)

// app holds the wired services shared by serve and seed.
type app struct {
	bus         *utilities.EventBus
	restaurants repository.RestaurantRepository
	services    controller.Services
}

func newApp(conn *gorm.DB, cfg *config.APIConfig, log *utilities.Logger) (*app, error) {
	bus := utilities.NewEventBus()

	notifier, err := newNotifier(cfg.Notify, log)
	if err != nil {
		return nil, err
	}
	notify.Subscribe(bus, notifier, log, time.Minute)

	restaurants := repository.NewRestaurantRepository(conn, log)
	catalog := repository.NewCatalogRepository(conn, log)
	templates := repository.NewTemplateRepository(conn, log)
	lessons := repository.NewLessonRepository(conn, log)

	gen := lessongen.DefaultConfig()
	gen.OptionCount = cfg.Lessons.OptionCount
	gen.DefaultPriceVariation = cfg.Lessons.DefaultPriceVariation

	synth := service.NewLessonSynthesizer(conn, restaurants, catalog, templates, lessons, bus, service.SynthesizerOptions{
		Generator: gen,
		Seed:      cfg.Lessons.Seed,
		Workers:   cfg.Lessons.FanOutWorkers,
	}, log)
	synth.Listen(bus)

	return &app{
		bus:         bus,
		restaurants: restaurants,
		services: controller.Services{
			Catalog:   service.NewCatalogService(restaurants, catalog, synth, log),
			Lifecycle: service.NewLifecycleManager(conn, catalog, lessons, synth, cfg.Lessons.HardDeletePolicy, log),
			Templates: service.NewTemplateService(conn, templates, bus, log),
			Lessons:   service.NewLessonService(restaurants, lessons, log),
			Progress:  service.NewProgressService(conn, lessons, repository.NewProgressRepository(conn, log), log),
			Auth:      service.NewAuthService(restaurants, log),
		},
	}, nil
}

func newNotifier(cfg config.NotifyConfig, log *utilities.Logger) (notify.Notifier, error) {
	if !cfg.Enabled {
		return notify.NewLogNotifier(log), nil
	}
	n, err := notify.NewSendGridNotifier(notify.SendGridConfig{
		APIKey:        cfg.APIKey,
		BaseURL:       cfg.BaseURL,
		FromEmail:     cfg.FromEmail,
		FromName:      cfg.FromName,
		RatePerSecond: cfg.RatePerSecond,
		Burst:         cfg.Burst,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("init notifier: %w", err)
	}
	return n, nil
}
