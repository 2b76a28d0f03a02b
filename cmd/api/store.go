package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/skyline-residence/building-api/internal/core/domain"
	"github.com/skyline-residence/building-api/internal/core/ports"
	"github.com/skyline-residence/building-api/internal/infrastructure/config"
	"github.com/skyline-residence/building-api/internal/infrastructure/db/memory"
	mongostore "github.com/skyline-residence/building-api/internal/infrastructure/db/mongo"
	"github.com/skyline-residence/building-api/internal/infrastructure/http/handlers"
)

// store bundles the repositories of one backing driver.
type store struct {
	users         ports.UserRepository
	agreements    ports.AgreementRepository
	apartments    ports.ApartmentRepository
	announcements ports.AnnouncementRepository
	payments      ports.PaymentRepository
	audit         ports.AuditRepository
	tx            ports.Transactor
	checks        []handlers.Check
	close         func(ctx context.Context) error
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		return openMemoryStore(cfg, log), nil
	default:
		return openMongoStore(ctx, cfg, log)
	}
}

func openMongoStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store, error) {
	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.ConnectionURI(),
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		log.Warn().Err(err).Msg("index bootstrap failed, continuing")
	}

	var tx ports.Transactor = memory.Transactor{}
	if cfg.Mongo.Transactions {
		tx = mongostore.NewSessionTransactor(client)
	}

	return &store{
		users:         mongostore.NewUserRepository(db),
		agreements:    mongostore.NewAgreementRepository(db),
		apartments:    mongostore.NewApartmentRepository(db),
		announcements: mongostore.NewAnnouncementRepository(db),
		payments:      mongostore.NewPaymentRepository(db),
		audit:         mongostore.NewAuditRepository(db),
		tx:            tx,
		checks: []handlers.Check{{
			Name: "mongodb",
			Ping: func(ctx context.Context) error { return mongostore.Ping(ctx, db) },
		}},
		close: client.Disconnect,
	}, nil
}

func openMemoryStore(cfg *config.Config, log zerolog.Logger) *store {
	var seed []domain.User
	if cfg.BootstrapAdmin != "" {
		seed = append(seed, domain.User{Email: cfg.BootstrapAdmin, Role: domain.RoleAdmin, CreatedAt: time.Now().UTC()})
	}
	log.Warn().Int("seeded_users", len(seed)).Msg("using in-memory store, data is lost on restart")

	apartments := make([]domain.Apartment, 0, 6)
	for _, block := range []string{"A", "B"} {
		for floor := 1; floor <= 3; floor++ {
			apartments = append(apartments, domain.Apartment{
				FloorNo:     floor,
				BlockName:   block,
				ApartmentNo: fmt.Sprintf("%s%d0%d", block, floor, 1),
				Rent:        float64(1000 + floor*150),
			})
		}
	}

	return &store{
		users:         memory.NewUserRepository(seed...),
		agreements:    memory.NewAgreementRepository(),
		apartments:    memory.NewApartmentRepository(apartments...),
		announcements: memory.NewAnnouncementRepository(),
		payments:      memory.NewPaymentRepository(),
		audit:         memory.NewAuditRepository(),
		tx:            memory.Transactor{},
		close:         func(context.Context) error { return nil },
	}
}
