package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/pkg/errors"
)

var ServiceName = "CPS"

const (
	// DefaultConfigPath is where the service looks for its config file unless told otherwise.
	DefaultConfigPath = "/etc/cps/config.yml"

	// DefaultDotEnvPath is where the service looks for a dotenv file unless told otherwise.
	DefaultDotEnvPath = ".env"
)

// ServiceSpec describes one external generation service: its credential, the model
// to request, the endpoint base URL, and the daily call ceiling.
type ServiceSpec struct {
	Key     string
	Model   string
	BaseURL string
	Ceiling int
}

// StyleRange is the target word-count range for one content style.
type StyleRange struct {
	Min int
	Max int
}

// ScoringSpec holds the content quality scoring weights and word-count targets.
// These are tuning knobs, so they live in the configuration rather than in code.
type ScoringSpec struct {
	WordCountWeight  float64
	HashtagWeight    float64
	QuestionWeight   float64
	EngagementWeight float64
	SentenceWeight   float64
	RestraintWeight  float64
	StyleRanges      map[string]StyleRange
	DefaultRange     StyleRange
	EngagementCues   []string
	HyperboleWords   []string
}

// Specification defines the configuration settings for the CPS service.
type Specification struct {
	ListenPort          int
	DatabaseURI         string
	RunSchemaMigrations bool
	ReinitDB            bool

	LedgerBackend  string
	LedgerFilePath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	NatsCluster   string
	MaxReconnects int
	ReconnectWait int
	CACertPath    string
	TLSKeyPath    string
	TLSCertPath   string
	CredsPath     string
	BaseSubject   string
	BaseQueueName string

	ServicePriority []string
	Anthropic       ServiceSpec
	Gemini          ServiceSpec
	HuggingFace     ServiceSpec
	NewsCeiling     int

	FeedURLs        []string
	HNBaseURL       string
	RedditBaseURL   string
	RedditUserAgent string
	Subreddits      []string

	RequestTimeout time.Duration

	Scoring ScoringSpec

	SafetyMaxLength       int
	SafetyBlockedKeywords []string

	HourlyRequestLimit int
	DailyRequestLimit  int

	AdminPassword       string
	AdminSessionMinutes int

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	AlertsFrom   string
	AlertsTo     []string

	RetentionDays int
}

// defaults are the baseline settings, overridden by the config file and then the
// environment. The scoring numbers and daily ceilings are tuning knobs carried
// here so that deployments can adjust them without a rebuild.
var defaults = map[string]interface{}{
	"listen.port":             8080,
	"ledger.backend":          "memory",
	"ledger.file.path":        "cps-usage.jsonl",
	"redis.db":                0,
	"nats.max.reconnects":     10,
	"nats.reconnect.wait":     1,
	"nats.base.subject":       "cps",
	"nats.base.queue":         "cps",
	"services.priority":       []string{"anthropic", "gemini", "huggingface", "news"},
	"services.anthropic.model":      "claude-3-haiku-20240307",
	"services.anthropic.base.url":   "https://api.anthropic.com",
	"services.anthropic.ceiling":    10,
	"services.gemini.model":         "gemini-1.5-flash",
	"services.gemini.base.url":      "https://generativelanguage.googleapis.com",
	"services.gemini.ceiling":       100,
	"services.huggingface.model":    "mistralai/Mistral-7B-Instruct-v0.2",
	"services.huggingface.base.url": "https://api-inference.huggingface.co",
	"services.huggingface.ceiling":  30,
	"services.news.ceiling":         1000,
	"feeds.urls": []string{
		"https://techcrunch.com/feed/",
		"https://www.wired.com/feed/rss",
		"https://feeds.feedburner.com/oreilly/radar",
	},
	"hn.base.url":     "https://hn.algolia.com/api/v1",
	"reddit.base.url": "https://www.reddit.com",
	"reddit.subreddits": []string{
		"technology", "programming", "artificial", "MachineLearning", "entrepreneur",
	},
	"request.timeout.seconds":              12,
	"scoring.word.count.weight":            3.0,
	"scoring.hashtag.weight":               2.0,
	"scoring.question.weight":              1.0,
	"scoring.engagement.weight":            1.0,
	"scoring.sentence.weight":              2.0,
	"scoring.restraint.weight":             1.0,
	"scoring.ranges.professional.min":      150,
	"scoring.ranges.professional.max":      200,
	"scoring.ranges.thought-leadership.min": 200,
	"scoring.ranges.thought-leadership.max": 250,
	"scoring.ranges.conversational.min":    100,
	"scoring.ranges.conversational.max":    150,
	"scoring.default.range.min":            100,
	"scoring.default.range.max":            200,
	"scoring.engagement.cues":              []string{"what", "how", "why", "thoughts", "agree"},
	"scoring.hyperbole.words":              []string{"amazing", "incredible", "revolutionary"},
	"safety.max.length":                    2000,
	"limits.hourly":                        10,
	"limits.daily":                         50,
	"admin.session.minutes":                60,
	"retention.days":                       90,
}

// knownStyles are the style tags with configured word-count ranges.
var knownStyles = []string{"professional", "thought-leadership", "conversational"}

func serviceSpec(k *koanf.Koanf, name string) ServiceSpec {
	prefix := "services." + name + "."
	return ServiceSpec{
		Key:     k.String(prefix + "key"),
		Model:   k.String(prefix + "model"),
		BaseURL: strings.TrimSuffix(k.String(prefix+"base.url"), "/"),
		Ceiling: k.Int(prefix + "ceiling"),
	}
}

func scoringSpec(k *koanf.Koanf) ScoringSpec {
	ranges := make(map[string]StyleRange, len(knownStyles))
	for _, style := range knownStyles {
		ranges[style] = StyleRange{
			Min: k.Int("scoring.ranges." + style + ".min"),
			Max: k.Int("scoring.ranges." + style + ".max"),
		}
	}
	return ScoringSpec{
		WordCountWeight:  k.Float64("scoring.word.count.weight"),
		HashtagWeight:    k.Float64("scoring.hashtag.weight"),
		QuestionWeight:   k.Float64("scoring.question.weight"),
		EngagementWeight: k.Float64("scoring.engagement.weight"),
		SentenceWeight:   k.Float64("scoring.sentence.weight"),
		RestraintWeight:  k.Float64("scoring.restraint.weight"),
		StyleRanges:      ranges,
		DefaultRange: StyleRange{
			Min: k.Int("scoring.default.range.min"),
			Max: k.Int("scoring.default.range.max"),
		},
		EngagementCues: k.Strings("scoring.engagement.cues"),
		HyperboleWords: k.Strings("scoring.hyperbole.words"),
	}
}

// LoadConfig loads the configuration for the CPS service. Settings come from the
// defaults above, then the YAML config file if it exists, then the environment.
func LoadConfig(envPrefix, configPath, dotEnvPath string) (*Specification, error) {
	wrapMsg := "unable to load the configuration"

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, errors.Wrap(err, wrapMsg)
		}
	}

	// The dotenv file only seeds process environment variables, which the env
	// provider below picks up along with everything else in the environment.
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrap(err, wrapMsg)
		}
	}

	err := k.Load(
		env.Provider(envPrefix, ".",
			func(s string) string {
				return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".", -1)
			},
		),
		nil,
	)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	var s Specification

	s.ListenPort = k.Int("listen.port")
	s.DatabaseURI = k.String("database.uri")
	s.RunSchemaMigrations = k.Bool("run.schema.migrations")
	s.ReinitDB = k.Bool("reinit.db")

	s.LedgerBackend = k.String("ledger.backend")
	s.LedgerFilePath = k.String("ledger.file.path")
	switch s.LedgerBackend {
	case "memory", "file", "postgres", "redis":
	default:
		return nil, errors.Errorf("unrecognized ledger.backend: %s", s.LedgerBackend)
	}
	if s.LedgerBackend == "postgres" && s.DatabaseURI == "" {
		return nil, errors.New("database.uri must be set when ledger.backend is postgres")
	}

	s.RedisAddr = k.String("redis.addr")
	s.RedisPassword = k.String("redis.password")
	s.RedisDB = k.Int("redis.db")
	if s.LedgerBackend == "redis" && s.RedisAddr == "" {
		return nil, errors.New("redis.addr must be set when ledger.backend is redis")
	}

	s.NatsCluster = k.String("nats.cluster")
	s.MaxReconnects = k.Int("nats.max.reconnects")
	s.ReconnectWait = k.Int("nats.reconnect.wait")
	s.CACertPath = k.String("nats.ca.cert.path")
	s.TLSCertPath = k.String("nats.tls.cert.path")
	s.TLSKeyPath = k.String("nats.tls.key.path")
	s.CredsPath = k.String("nats.creds.path")
	s.BaseSubject = k.String("nats.base.subject")
	s.BaseQueueName = k.String("nats.base.queue")

	s.ServicePriority = k.Strings("services.priority")
	s.Anthropic = serviceSpec(k, "anthropic")
	s.Gemini = serviceSpec(k, "gemini")
	s.HuggingFace = serviceSpec(k, "huggingface")
	s.NewsCeiling = k.Int("services.news.ceiling")

	s.FeedURLs = k.Strings("feeds.urls")
	s.HNBaseURL = strings.TrimSuffix(k.String("hn.base.url"), "/")
	s.RedditBaseURL = strings.TrimSuffix(k.String("reddit.base.url"), "/")
	s.RedditUserAgent = k.String("reddit.user.agent")
	s.Subreddits = k.Strings("reddit.subreddits")

	s.RequestTimeout = time.Duration(k.Int("request.timeout.seconds")) * time.Second

	s.Scoring = scoringSpec(k)

	s.SafetyMaxLength = k.Int("safety.max.length")
	s.SafetyBlockedKeywords = k.Strings("safety.blocked.keywords")

	s.HourlyRequestLimit = k.Int("limits.hourly")
	s.DailyRequestLimit = k.Int("limits.daily")

	s.AdminPassword = k.String("admin.password")
	s.AdminSessionMinutes = k.Int("admin.session.minutes")

	s.SMTPHost = k.String("alerts.smtp.host")
	s.SMTPPort = k.Int("alerts.smtp.port")
	s.SMTPUsername = k.String("alerts.smtp.username")
	s.SMTPPassword = k.String("alerts.smtp.password")
	s.AlertsFrom = k.String("alerts.from")
	s.AlertsTo = k.Strings("alerts.to")

	s.RetentionDays = k.Int("retention.days")

	return &s, nil
}

// DefaultScoring returns the scoring weights and ranges built from the default
// settings alone, without consulting the config file or the environment.
func DefaultScoring() ScoringSpec {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		// The defaults map is compiled in, so this cannot happen.
		panic(err)
	}
	return scoringSpec(k)
}

// Ceilings returns the configured daily call ceiling for every quota-limited
// service, keyed by service name.
func (s *Specification) Ceilings() map[string]int {
	return map[string]int{
		"anthropic":   s.Anthropic.Ceiling,
		"gemini":      s.Gemini.Ceiling,
		"huggingface": s.HuggingFace.Ceiling,
		"news":        s.NewsCeiling,
	}
}
