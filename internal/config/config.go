package config

import (
	"os"
	"strings"
	"time"

	"lunofeed/internal/chaos"
	"lunofeed/internal/feed"
	"lunofeed/internal/ingest/luno"
	"lunofeed/internal/trade"
	"lunofeed/pkg/exception"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/yanun0323/errors"
)

const _envPrefix = "LUNOFEED_"

// FileConfig mirrors the TOML config layout.
type FileConfig struct {
	Feed      FeedConfig      `toml:"feed"`
	Luno      LunoConfig      `toml:"luno"`
	Redis     RedisConfig     `toml:"redis"`
	Kafka     KafkaConfig     `toml:"kafka"`
	HTTP      HTTPConfig      `toml:"http"`
	Profiling ProfilingConfig `toml:"profiling"`
	Chaos     ChaosConfig     `toml:"chaos"`
}

// FeedConfig selects the markets and sizes the per-symbol state.
type FeedConfig struct {
	URL         string         `toml:"url"`
	Markets     []MarketConfig `toml:"markets"`
	TradesLimit int            `toml:"trades_limit"`
	QueueSize   int            `toml:"queue_size"`
	Depth       int            `toml:"depth"`
}

// MarketConfig maps a venue pair id to the symbol it is published under.
type MarketConfig struct {
	Symbol string `toml:"symbol"`
	ID     string `toml:"id"`
}

type LunoConfig struct {
	KeyID     string `toml:"key_id"`
	KeySecret string `toml:"key_secret"`
}

type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
	Prefix     string `toml:"prefix"`
}

type KafkaConfig struct {
	Brokers     []string `toml:"brokers"`
	BookTopic   string   `toml:"book_topic"`
	TradesTopic string   `toml:"trades_topic"`
}

type HTTPConfig struct {
	Addr        string `toml:"addr"`
	ReadTimeout string `toml:"read_timeout"`
}

type ProfilingConfig struct {
	Enabled       bool   `toml:"enabled"`
	ServerAddress string `toml:"server_address"`
	AppName       string `toml:"app_name"`
}

// ChaosConfig injects stream faults for soak tests. Never enable it against
// a book that is traded on.
type ChaosConfig struct {
	Enabled       bool    `toml:"enabled"`
	Seed          int64   `toml:"seed"`
	DropRate      float64 `toml:"drop_rate"`
	DuplicateRate float64 `toml:"duplicate_rate"`
	ReorderWindow int     `toml:"reorder_window"`
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	URL         string
	Markets     []feed.Subscription
	Credential  luno.Credential
	TradesLimit int
	QueueSize   int
	Depth       int

	Redis     *RedisConfig
	Kafka     *KafkaConfig
	HTTP      HTTP
	Profiling *ProfilingConfig
	Chaos     *chaos.Config
}

// HTTP is the resolved read surface. An empty Addr disables it.
type HTTP struct {
	Addr        string
	ReadTimeout time.Duration
}

// Load reads a TOML config file, applies .env and LUNOFEED_* overrides and
// resolves it.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, errors.Wrapf(err, "read config %s", path)
	}

	// .env is optional
	_ = godotenv.Load()

	return Parse(data, os.LookupEnv)
}

// Parse decodes TOML data, applies the environment overrides found by lookup
// and resolves the result.
func Parse(data []byte, lookup func(string) (string, bool)) (Loaded, error) {
	var cfg FileConfig
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Loaded{}, errors.Wrap(err, "decode config")
	}

	if lookup != nil {
		applyEnvOverrides(&cfg, lookup)
	}

	return resolve(cfg)
}

func applyEnvOverrides(cfg *FileConfig, lookup func(string) (string, bool)) {
	setStr := func(dst *string, key string) {
		if v, ok := lookup(_envPrefix + key); ok && len(v) != 0 {
			*dst = v
		}
	}

	setStr(&cfg.Feed.URL, "FEED_URL")
	setStr(&cfg.Luno.KeyID, "LUNO_KEY_ID")
	setStr(&cfg.Luno.KeySecret, "LUNO_KEY_SECRET")
	setStr(&cfg.Redis.Addr, "REDIS_ADDR")
	setStr(&cfg.Redis.Password, "REDIS_PASSWORD")
	setStr(&cfg.HTTP.Addr, "HTTP_ADDR")
	setStr(&cfg.Profiling.ServerAddress, "PROFILING_SERVER_ADDRESS")

	var brokers string
	setStr(&brokers, "KAFKA_BROKERS")
	if len(brokers) != 0 {
		cfg.Kafka.Brokers = cfg.Kafka.Brokers[:0]
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); len(b) != 0 {
				cfg.Kafka.Brokers = append(cfg.Kafka.Brokers, b)
			}
		}
	}
}

func resolve(cfg FileConfig) (Loaded, error) {
	markets, err := resolveMarkets(cfg.Feed.Markets)
	if err != nil {
		return Loaded{}, err
	}

	if cfg.Feed.TradesLimit < 0 || cfg.Feed.QueueSize < 0 || cfg.Feed.Depth < 0 {
		return Loaded{}, errors.Wrap(exception.ErrConfigInvalidValue, "feed sizes must be >= 0")
	}

	loaded := Loaded{
		URL:         cfg.Feed.URL,
		Markets:     markets,
		Credential:  luno.Credential{KeyID: cfg.Luno.KeyID, KeySecret: cfg.Luno.KeySecret},
		TradesLimit: cfg.Feed.TradesLimit,
		QueueSize:   cfg.Feed.QueueSize,
		Depth:       cfg.Feed.Depth,
		HTTP:        HTTP{Addr: cfg.HTTP.Addr, ReadTimeout: 5 * time.Second},
	}

	if len(loaded.URL) == 0 {
		loaded.URL = luno.DefaultURL
	}
	if loaded.TradesLimit == 0 {
		loaded.TradesLimit = trade.DefaultCapacity
	}
	if loaded.QueueSize == 0 {
		loaded.QueueSize = 1024
	}

	if len(cfg.HTTP.ReadTimeout) != 0 {
		d, err := time.ParseDuration(cfg.HTTP.ReadTimeout)
		if err != nil || d <= 0 {
			return Loaded{}, errors.Wrapf(exception.ErrConfigInvalidValue, "http read_timeout %q", cfg.HTTP.ReadTimeout)
		}
		loaded.HTTP.ReadTimeout = d
	}

	if len(cfg.Redis.Addr) != 0 {
		redis := cfg.Redis
		loaded.Redis = &redis
	}

	if len(cfg.Kafka.Brokers) != 0 {
		if len(cfg.Kafka.BookTopic) == 0 && len(cfg.Kafka.TradesTopic) == 0 {
			return Loaded{}, errors.Wrap(exception.ErrConfigInvalidValue, "kafka brokers set without topics")
		}
		kafka := cfg.Kafka
		loaded.Kafka = &kafka
	}

	if cfg.Profiling.Enabled {
		if len(cfg.Profiling.ServerAddress) == 0 {
			return Loaded{}, errors.Wrap(exception.ErrConfigInvalidValue, "profiling server_address is empty")
		}
		profiling := cfg.Profiling
		if len(profiling.AppName) == 0 {
			profiling.AppName = "lunofeed"
		}
		loaded.Profiling = &profiling
	}

	if c := cfg.Chaos; c.Enabled {
		chaosCfg := chaos.Config{
			Seed:          c.Seed,
			DropRate:      c.DropRate,
			DuplicateRate: c.DuplicateRate,
			ReorderWindow: c.ReorderWindow,
		}
		if err := chaosCfg.Validate(); err != nil {
			return Loaded{}, err
		}
		loaded.Chaos = &chaosCfg
	}

	return loaded, nil
}

func resolveMarkets(markets []MarketConfig) ([]feed.Subscription, error) {
	if len(markets) == 0 {
		return nil, exception.ErrConfigNoMarkets
	}

	seen := make(map[string]struct{}, len(markets))
	subs := make([]feed.Subscription, 0, len(markets))
	for _, m := range markets {
		if len(m.ID) == 0 {
			return nil, errors.Wrapf(exception.ErrConfigInvalidMarket, "symbol %q has no id", m.Symbol)
		}

		symbol := m.Symbol
		if len(symbol) == 0 {
			symbol = m.ID
		}

		if _, ok := seen[symbol]; ok {
			return nil, errors.Wrapf(exception.ErrConfigDuplicateMarket, "symbol %s", symbol)
		}
		seen[symbol] = struct{}{}

		subs = append(subs, feed.Subscription{Symbol: symbol, MarketID: m.ID})
	}
	return subs, nil
}
