// cmd/worker-manager/wiring.go
package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	awsclient "renovation-matching/internal/common/aws"
	"renovation-matching/internal/common/broker"
	"renovation-matching/internal/common/config"
	"renovation-matching/internal/common/database"
	commonhttp "renovation-matching/internal/common/http"
	"renovation-matching/internal/common/logger"
	"renovation-matching/internal/common/observability"
	"renovation-matching/internal/dispatch"
	"renovation-matching/internal/matching"
	"renovation-matching/internal/notifier"
	"renovation-matching/internal/repository"
	"renovation-matching/pkg/registry"
)

// dependencies holds the matching components shared by the workers and the
// connections that must be closed on shutdown.
type dependencies struct {
	engine     *matching.Engine
	dispatcher *dispatch.Dispatcher

	closers []func() error
}

func (d *dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		_ = d.closers[i]()
	}
}

func buildDependencies(ctx context.Context, cfg *config.Config, pg *database.PostgresClient, obs *observability.Observability, log logger.Logger, zapLog *zap.Logger) (*dependencies, error) {
	deps := &dependencies{}

	companies, err := companyRepository(ctx, cfg, pg, log, zapLog, deps)
	if err != nil {
		deps.Close()
		return nil, err
	}

	opts := []matching.Option{matching.WithObservability(obs)}
	if cfg.Matching.DemoFallback && cfg.Matching.CompanySource != config.CompanySourceDemo {
		opts = append(opts, matching.WithFallback(repository.NewStaticCompanyRepository(repository.DemoCompanies())))
	}
	deps.engine = matching.NewEngine(
		matching.Config{MaxConcurrentProjects: cfg.Matching.MaxConcurrentProjects},
		companies,
		repository.NewPostgresWorkloadRepository(pg.DB),
		log,
		opts...,
	)

	var catalog *registry.Catalog
	if cfg.Matching.CatalogPath != "" {
		catalog, err = registry.LoadCatalog(cfg.Matching.CatalogPath)
		if err != nil {
			zapLog.Warn("activity catalog not loaded, using raw codes in messages",
				zap.String("path", cfg.Matching.CatalogPath), zap.Error(err))
		} else {
			zapLog.Info("activity catalog loaded",
				zap.String("version", catalog.Version), zap.Int("activities", len(catalog.Activities)))
		}
	}

	n, err := outboundNotifier(ctx, cfg, log, zapLog, deps)
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.dispatcher = dispatch.NewDispatcher(
		dispatch.Config{OutboundCap: cfg.Matching.OutboundNotifyCap},
		repository.NewPostgresNotificationStore(pg.DB),
		n,
		catalog,
		log,
	)
	return deps, nil
}

func companyRepository(ctx context.Context, cfg *config.Config, pg *database.PostgresClient, log logger.Logger, zapLog *zap.Logger, deps *dependencies) (matching.CompanyRepository, error) {
	var repo matching.CompanyRepository

	switch cfg.Matching.CompanySource {
	case config.CompanySourceDemo:
		zapLog.Warn("ranking against the demonstration roster")
		return repository.NewStaticCompanyRepository(repository.DemoCompanies()), nil

	case config.CompanySourceElasticsearch:
		var es *database.ElasticsearchClient
		err := retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			return nil, err
		}
		zapLog.Info("Elasticsearch connected successfully")
		repo = repository.NewElasticsearchCompanyRepository(es.Client, cfg.Matching.CompanyIndex, log)

	default:
		repo = repository.NewPostgresCompanyRepository(pg.DB, log)
	}

	if cfg.Matching.CacheTTL <= 0 {
		return repo, nil
	}

	var rc *database.RedisClient
	err := retryWithBackoff(func() error {
		var err error
		rc, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rc.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		return nil, err
	}
	deps.closers = append(deps.closers, rc.Close)
	zapLog.Info("Redis connected successfully", zap.Int("cacheTTLSeconds", cfg.Matching.CacheTTL))

	return repository.NewCachedCompanyRepository(repo, rc.Client, time.Duration(cfg.Matching.CacheTTL)*time.Second, log), nil
}

func outboundNotifier(ctx context.Context, cfg *config.Config, log logger.Logger, zapLog *zap.Logger, deps *dependencies) (dispatch.Notifier, error) {
	nc := cfg.Notifications

	switch nc.Provider {
	case config.ProviderWebhook:
		client := commonhttp.NewClient(config.GetDuration(nc.Webhook.Timeout))
		return notifier.NewWebhookNotifier(nc.Webhook.URL, nc.Webhook.APIKey, client), nil

	case config.ProviderAMQP:
		var pub *broker.Publisher
		err := retryWithBackoff(func() error {
			var err error
			pub, err = broker.NewPublisher(nc.AMQP.URL, nc.AMQP.Queue)
			return err
		}, 10, 2*time.Second, zapLog, "RabbitMQ connection")
		if err != nil {
			return nil, err
		}
		deps.closers = append(deps.closers, pub.Close)
		zapLog.Info("RabbitMQ connected successfully", zap.String("queue", nc.AMQP.Queue))
		return notifier.NewQueueNotifier(pub), nil

	case config.ProviderSES:
		awsCfg, err := awsclient.LoadConfig(ctx, nc.AWS.Region)
		if err != nil {
			return nil, err
		}
		return notifier.NewEmailNotifier(notifier.EmailConfig{
			FromEmail:         nc.Email.FromEmail,
			EmailEnabled:      nc.Email.Enabled,
			SMSEnabled:        nc.SMS.Enabled,
			SMSScoreThreshold: nc.SMS.ScoreThreshold,
		}, awsclient.NewSESClient(awsCfg), awsclient.NewSNSClient(awsCfg), log), nil
	}
	return nil, fmt.Errorf("unknown notification provider %q", nc.Provider)
}
