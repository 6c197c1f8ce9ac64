package server

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/contentpilot/cps/config"
	"github.com/contentpilot/cps/internal/alerts"
	"github.com/contentpilot/cps/internal/content"
	"github.com/contentpilot/cps/internal/controllers"
	"github.com/contentpilot/cps/internal/db"
	"github.com/contentpilot/cps/internal/ledger"
	"github.com/contentpilot/cps/internal/limits"
	"github.com/contentpilot/cps/internal/research"
	"github.com/contentpilot/cps/internal/safety"
	"github.com/contentpilot/cps/internal/sources"
	"github.com/contentpilot/cps/logging"
)

var log = logging.GetLogger().WithFields(logrus.Fields{"package": "server"})

// Service identity reported by the root endpoints.
const (
	serviceName    = "cps"
	serviceTitle   = "Content Pilot Service"
	serviceVersion = "1.0.0"
)

func natsSubject(base string, fields ...string) string {
	trimmed := strings.TrimSuffix(
		strings.TrimSuffix(base, ".*"),
		".>",
	)
	addFields := strings.Join(fields, ".")
	return fmt.Sprintf("%s.%s", trimmed, addFields)
}

func natsQueue(qBase string, fields ...string) string {
	return fmt.Sprintf("%s.%s", qBase, strings.Join(fields, "."))
}

func queueSub(conn *nats.EncodedConn, spec *config.Specification, name string, handler nats.Handler) {
	var err error

	subject := natsSubject(spec.BaseSubject, name)
	queue := natsQueue(spec.BaseQueueName, name)

	if _, err = conn.QueueSubscribe(subject, queue, handler); err != nil {
		log.Fatal(err)
	}

	log.Infof("subscribed to %s on queue %s", subject, queue)
}

func InitNATS(spec *config.Specification) *nats.EncodedConn {
	options := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(spec.MaxReconnects),
		nats.ReconnectWait(time.Duration(spec.ReconnectWait) * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Errorf("disconnected from nats: %s", err.Error())
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Infof("reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Errorf("connection closed: %s", nc.LastError().Error())
		}),
	}

	// Credentials and TLS are optional so that a local NATS server works out of
	// the box.
	if spec.CredsPath != "" {
		options = append(options, nats.UserCredentials(spec.CredsPath))
	}
	if spec.CACertPath != "" {
		options = append(options, nats.RootCAs(spec.CACertPath))
	}
	if spec.TLSCertPath != "" && spec.TLSKeyPath != "" {
		options = append(options, nats.ClientCert(spec.TLSCertPath, spec.TLSKeyPath))
	}

	nc, err := nats.Connect(spec.NatsCluster, options...)
	if err != nil {
		log.Fatal(err)
	}

	log.Infof("configured servers: %s", strings.Join(nc.Servers(), " "))
	log.Infof("connected to NATS host: %s", nc.ConnectedServerName())

	conn, err := nats.NewEncodedConn(nc, nats.JSON_ENCODER)
	if err != nil {
		log.Fatal(err)
	}

	log.Infof("set up encoded connection to NATS")

	return conn
}

// initLedgerStore picks the usage ledger backend named by the configuration.
func initLedgerStore(spec *config.Specification, gormdb *gorm.DB) ledger.Store {
	switch spec.LedgerBackend {
	case "file":
		store, err := ledger.NewFileStore(spec.LedgerFilePath)
		if err != nil {
			log.Fatalf("unable to open the usage ledger file: %s", err.Error())
		}
		return store
	case "postgres":
		return ledger.NewPostgresStore(gormdb)
	case "redis":
		return ledger.NewRedisStore(goredis.NewClient(&goredis.Options{
			Addr:     spec.RedisAddr,
			Password: spec.RedisPassword,
			DB:       spec.RedisDB,
		}))
	default:
		return ledger.NewMemoryStore()
	}
}

// initClients builds the external source adapters. The news aggregate is
// returned separately because the trending endpoint talks to it directly.
func initClients(spec *config.Specification) (map[string]sources.Client, *research.News) {
	timeout := spec.RequestTimeout

	feeds := sources.NewNewsFeeds(spec.FeedURLs, timeout)
	forum := sources.NewHackerNews(spec.HNBaseURL, timeout)
	social := sources.NewReddit(spec.RedditBaseURL, spec.RedditUserAgent, spec.Subreddits, timeout)
	news := research.NewNews(feeds, forum, social)

	clients := map[string]sources.Client{
		"anthropic":   sources.NewAnthropic(spec.Anthropic, timeout),
		"gemini":      sources.NewGemini(spec.Gemini, timeout),
		"huggingface": sources.NewHuggingFace(spec.HuggingFace, timeout),
		"news":        news,
	}
	return clients, news
}

func Init(spec *config.Specification) {
	log := log.WithFields(logrus.Fields{"context": "server init"})

	e := InitRouter()

	// Establish the database connection when one is configured. The service runs
	// without one; the endpoints that need it degrade as documented.
	var (
		dbConn *sql.DB
		gormdb *gorm.DB
		err    error
	)
	if spec.DatabaseURI != "" {
		log.Info("establishing the database connection")
		dbConn, gormdb, err = db.Init(spec.DatabaseURI)
		if err != nil {
			log.Fatalf("service initialization failed: %s", err.Error())
		}
	} else {
		log.Info("no database configured, running without telemetry storage")
	}

	var conn *nats.EncodedConn
	if spec.NatsCluster != "" {
		conn = InitNATS(spec)
	} else {
		log.Info("no NATS cluster configured, skipping the NATS surface")
	}

	// The usage ledger. Every recorded attempt is republished as a usage event
	// when NATS is connected.
	var ledgerOptions []ledger.Option
	if conn != nil {
		usageSubject := natsSubject(spec.BaseSubject, "usage.events")
		ledgerOptions = append(ledgerOptions, ledger.WithPublisher(func(event ledger.Event) {
			if err := conn.Publish(usageSubject, event); err != nil {
				log.Errorf("unable to publish a usage event: %s", err.Error())
			}
		}))
	}
	quotas := ledger.New(initLedgerStore(spec, gormdb), spec.Ceilings(), ledgerOptions...)

	checker := safety.New(spec.SafetyMaxLength, spec.SafetyBlockedKeywords)

	bundle, err := research.LoadBundle()
	if err != nil {
		log.Fatalf("service initialization failed: %s", err.Error())
	}

	clients, news := initClients(spec)
	researcher := research.New(spec.ServicePriority, clients, quotas, checker, bundle)

	// Content generation only walks the generative services; the news aggregate
	// produces citations, not post text.
	generative := make([]string, 0, len(spec.ServicePriority))
	for _, name := range spec.ServicePriority {
		if name != "news" {
			generative = append(generative, name)
		}
	}
	generator := content.New(generative, clients, quotas, checker, content.NewScorer(spec.Scoring))

	s := controllers.Server{
		Router:   e,
		DB:       dbConn,
		GORMDB:   gormdb,
		NATSConn: conn,
		Service:  serviceName,
		Title:    serviceTitle,
		Version:  serviceVersion,
		Spec:     spec,
		Quotas:   quotas,
		Research: researcher,
		Content:  generator,
		News:     news,
		Safety:   checker,
		Limits:   limits.New(spec.HourlyRequestLimit, spec.DailyRequestLimit),
		Sessions: controllers.NewSessionStore(gormdb, time.Duration(spec.AdminSessionMinutes)*time.Minute),
		Alerts:   alerts.New(spec, quotas, gormdb),
	}

	// Register the handlers.
	RegisterHandlers(s)

	if conn != nil {
		queueSub(conn, spec, "quotas.get", s.GetQuotasNATS)
		queueSub(conn, spec, "research.get", s.ResearchNATS)
	}

	log.Info("starting the service")
	log.Fatal(e.Start(fmt.Sprintf(":%d", spec.ListenPort)))
}
