package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "STOREFRONT_CONFIG_FILE"

type httpServer struct {
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RateLimitRPM   int           `mapstructure:"rate_limit_rpm"`
}

type sqlDB struct {
	URL             string        `mapstructure:"url"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Pass            string        `mapstructure:"pass"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	PingAttempts    int           `mapstructure:"ping_attempts"`
}

type brokerTLS struct {
	CA   string `mapstructure:"ca"`
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

type topics struct {
	CartEvents string `mapstructure:"cart_events"`
}

type broker struct {
	SeedBrokers        []string  `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string  `mapstructure:"schema_registry_urls"`
	Topics             topics    `mapstructure:"topics"`
	TLS                brokerTLS `mapstructure:"tls"`
	Partitions         int32     `mapstructure:"partitions"`
	ReplicationFactor  int16     `mapstructure:"replication_factor"`
}

type Config struct {
	LogLevel   slog.Level `mapstructure:"log_level"`
	HTTPServer httpServer `mapstructure:"http_server"`
	SQLDB      sqlDB      `mapstructure:"sql_db"`
	Broker     broker     `mapstructure:"broker"`
}

// HTTPServerAddr is the listen address of the API server.
func (c Config) HTTPServerAddr() string {
	return net.JoinHostPort(c.HTTPServer.Host, c.HTTPServer.Port)
}

// DSN returns sql_db.url, or a postgres URL built from the separate
// connection settings when it is empty.
func (c Config) DSN() string {
	if c.SQLDB.URL != "" {
		return c.SQLDB.URL
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.SQLDB.User, c.SQLDB.Pass),
		Host:   net.JoinHostPort(c.SQLDB.Host, c.SQLDB.Port),
		Path:   "/" + c.SQLDB.Name,
	}
	if c.SQLDB.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.SQLDB.SSLMode}}.Encode()
	}
	return u.String()
}

// EventsEnabled reports whether cart item events are published.
func (c Config) EventsEnabled() bool {
	return len(c.Broker.SeedBrokers) != 0
}

func (c Config) BrokerTLSEnabled() bool {
	t := c.Broker.TLS
	return t.CA != "" && t.Cert != "" && t.Key != ""
}

// Load reads the configuration from the optional config file, the .env
// file and the environment. It exits the process on failure.
func Load() Config {
	cfg, err := Parse(os.Args[1:])
	if err != nil {
		die(err)
	}
	return cfg
}

// Parse is [Load] for the given command line arguments.
func Parse(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return Config{}, err
	}

	path, err := getConfigFilepath(args)
	if err != nil {
		return Config{}, err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	err = v.UnmarshalExact(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("http_server.host", "")
	v.SetDefault("http_server.port", "8080")
	v.SetDefault("http_server.request_timeout", 5*time.Second)
	v.SetDefault("http_server.rate_limit_rpm", 0)

	v.SetDefault("sql_db.url", "")
	v.SetDefault("sql_db.host", "localhost")
	v.SetDefault("sql_db.port", "5432")
	v.SetDefault("sql_db.name", "storefront")
	v.SetDefault("sql_db.user", "postgres")
	v.SetDefault("sql_db.pass", "")
	v.SetDefault("sql_db.sslmode", "disable")
	v.SetDefault("sql_db.max_open_conns", 20)
	v.SetDefault("sql_db.max_idle_conns", 5)
	v.SetDefault("sql_db.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("sql_db.ping_attempts", 5)

	v.SetDefault("broker.seed_brokers", []string{})
	v.SetDefault("broker.schema_registry_urls", []string{})
	v.SetDefault("broker.topics.cart_events", "cart-item-events")
	v.SetDefault("broker.tls.ca", "")
	v.SetDefault("broker.tls.cert", "")
	v.SetDefault("broker.tls.key", "")
	v.SetDefault("broker.partitions", 3)
	v.SetDefault("broker.replication_factor", 1)
}

var envBindings = map[string]string{
	"log_level":                   "LOG_LEVEL",
	"http_server.port":            "PORT",
	"http_server.rate_limit_rpm":  "RATE_LIMIT_RPM",
	"sql_db.url":                  "DATABASE_URL",
	"sql_db.host":                 "DB_HOST",
	"sql_db.port":                 "DB_PORT",
	"sql_db.name":                 "DB_NAME",
	"sql_db.user":                 "DB_USER",
	"sql_db.pass":                 "DB_PASS",
	"sql_db.sslmode":              "DB_SSLMODE",
	"broker.seed_brokers":         "KAFKA_SEED_BROKERS",
	"broker.schema_registry_urls": "SCHEMA_REGISTRY_URLS",
	"broker.topics.cart_events":   "CART_EVENTS_TOPIC",
}

func bindEnv(v *viper.Viper) error {
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}
	return nil
}

func getConfigFilepath(args []string) (string, error) {
	cmdLine := pflag.NewFlagSet("storefront", pflag.ContinueOnError)
	cmdLine.ParseErrorsWhitelist.UnknownFlags = true
	arg := cmdLine.String("config", "", "config file")
	if err := cmdLine.Parse(args); err != nil {
		return "", err
	}
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env, nil
	}
	return *arg, nil
}

func die(err error) {
	fmt.Printf("failed to load config: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q

	HTTPServer:
	Addr=%q
	RequestTimeout=%q
	RateLimitRPM=%d

	SQLDB:
	DSN=%q
	MaxOpenConns=%d
	MaxIdleConns=%d
	ConnMaxLifetime=%q
	PingAttempts=%d

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	TLS=%t
	Topics:
		CartEvents=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.HTTPServerAddr(),
		c.HTTPServer.RequestTimeout,
		c.HTTPServer.RateLimitRPM,
		RedactDSN(c.DSN()),
		c.SQLDB.MaxOpenConns,
		c.SQLDB.MaxIdleConns,
		c.SQLDB.ConnMaxLifetime,
		c.SQLDB.PingAttempts,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.BrokerTLSEnabled(),
		c.Broker.Topics.CartEvents,
	)
}

// RedactDSN masks the password of a URL DSN. Keyword/value DSNs are
// masked entirely.
func RedactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return "<redacted>"
	}
	return u.Redacted()
}
