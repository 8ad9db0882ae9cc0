// Command server runs the meeting registration service: member-facing
// registration endpoints, the operator assignment console, and the
// background workers for ticket dispatch and the audit trail.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"bmmhub/internal/assignment"
	assignmenthandler "bmmhub/internal/assignment/handler"
	assignmentmetrics "bmmhub/internal/assignment/metrics"
	"bmmhub/internal/audit"
	auditpg "bmmhub/internal/audit/store/postgres"
	router "bmmhub/internal/http"
	"bmmhub/internal/member"
	memberhandler "bmmhub/internal/member/handler"
	membermetrics "bmmhub/internal/member/metrics"
	"bmmhub/internal/member/service"
	memberpg "bmmhub/internal/member/store/postgres"
	"bmmhub/internal/notify"
	"bmmhub/internal/platform/config"
	"bmmhub/internal/platform/httpserver"
	"bmmhub/internal/platform/logger"
	"bmmhub/internal/platform/postgres"
	"bmmhub/internal/platform/redis"
	"bmmhub/internal/report"
	reporthandler "bmmhub/internal/report/handler"
	"bmmhub/internal/ticket"
	ticketmetrics "bmmhub/internal/ticket/metrics"
	"bmmhub/internal/venue"
)

const (
	auditBuffer          = 256
	dispatchBuffer       = 256
	auditForwardInterval = 5 * time.Second
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := buildCatalog(cfg)
	if err != nil {
		return err
	}

	var (
		members    member.Store
		auditStore audit.Store
		health     func() error
	)
	if cfg.PostgresDSN != "" {
		db, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := memberpg.EnsureSchema(ctx, db); err != nil {
			return err
		}
		if err := auditpg.EnsureSchema(ctx, db); err != nil {
			return err
		}
		members = memberpg.New(db)
		auditStore = auditpg.New(db)
		health = db.Ping
		log.Info("using postgres record store")
	} else {
		members = member.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
		health = func() error { return nil }
		log.Warn("no postgres DSN configured, records are in-memory only")
	}

	var counters assignment.CounterStore
	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		counters = assignment.NewRedisCounterStore(redisClient.Client, cfg.EventID)
		log.Info("using redis venue counters")
	} else {
		counters = assignment.NewInMemoryCounterStore()
		log.Warn("no redis configured, venue counters are process-local")
	}

	var publisher notify.Publisher = notify.NewLogPublisher(log)
	var rabbit *notify.RabbitClient
	if cfg.RabbitURL != "" {
		rabbit, err = notify.NewRabbitClient(cfg.RabbitURL, cfg.NotifyQueue, cfg.DeliveryStatusQueue, log)
		if err != nil {
			return err
		}
		defer rabbit.Close()
		publisher = rabbit
		log.Info("using rabbitmq notification queue", "queue", cfg.NotifyQueue)
	}

	auditPublisher := audit.NewPublisher(auditBuffer, log)
	queue := ticket.NewQueue(dispatchBuffer)

	svc := service.New(members, queue, auditPublisher, log, membermetrics.New(prometheus.DefaultRegisterer))
	engine := assignment.New(members, catalog, counters, auditPublisher, log, assignmentmetrics.New(prometheus.DefaultRegisterer))
	reports := report.New(members, catalog, counters)

	tm := ticketmetrics.New(prometheus.DefaultRegisterer)
	dispatcher := ticket.NewDispatcher(members, publisher, queue.Inbox(), log, tm)
	reconciler := ticket.NewReconciler(members, log, tm)

	handler := router.New(router.Deps{
		Members:     memberhandler.New(svc, log),
		Assignments: assignmenthandler.New(engine, cfg.EventID, log),
		Reports:     reporthandler.New(reports, cfg.EventID, log),
		AdminToken:  cfg.AdminToken,
		Health:      health,
		Logger:      log,
	})
	srv := httpserver.New(cfg.Addr, handler)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return ignoreCancel(audit.NewWorker(auditStore, auditPublisher.Inbox(), log).Run(gctx))
	})
	g.Go(func() error {
		return ignoreCancel(dispatcher.Run(gctx))
	})
	if rabbit != nil {
		g.Go(func() error {
			return ignoreCancel(rabbit.ConsumeStatuses(gctx, reconciler.HandleStatus))
		})
	}
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := audit.NewKafkaClient(cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			return err
		}
		defer kafka.Close()
		forwarder := audit.NewForwarder(auditStore, kafka, auditForwardInterval, log)
		g.Go(func() error {
			return ignoreCancel(forwarder.Run(gctx))
		})
		log.Info("forwarding audit events to kafka", "topic", cfg.AuditTopic)
	}

	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr, "event_id", cfg.EventID)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	log.Info("server stopped")
	return err
}

func buildCatalog(cfg config.Config) (*venue.Catalog, error) {
	venues := venue.DefaultVenues(time.Now().Year())
	if cfg.VenueFeedPath != "" {
		loaded, err := venue.LoadFeed(cfg.VenueFeedPath)
		if err != nil {
			return nil, err
		}
		venues = loaded
	}
	return venue.NewCatalog(venues)
}

// ignoreCancel treats context cancellation as a clean worker exit so
// shutdown does not report it as a failure.
func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
