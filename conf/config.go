package conf

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

var (
	Path    string
	Port    int
	NatsURL string

	global *Config
)

func G() *Config {
	if global == nil {
		panic("configuration not loaded")
	}

	return global
}

func ReplaceGlobals(cfg *Config) {
	global = cfg
}

func LoadEnv(cli *cli.Context) error {
	path := cli.String("path")
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		path = homeDir + "/.flarex/devguide"
	}

	// godotenv keeps variables already set, so <path>/.env wins over ./.env
	_ = godotenv.Load(filepath.Join(path, ".env"))
	_ = godotenv.Load()

	Path = path
	Port = cli.Int("port")
	NatsURL = cli.String("nats")
	return nil
}

func LoadConfig() (*Config, error) {
	f, err := os.Open(Path + "/config.yaml")
	if err != nil {
		f, err = os.Open(Path + "/config.example.yaml")
		if err != nil {
			return nil, err
		}
	}
	defer f.Close()

	r := NewEnvExpandedReader(f)

	var cfg *Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg == nil {
		cfg = new(Config)
	}

	cfg.setDefaults()
	return cfg, nil
}

// setDefaults fills the sections missing from the file.
func (cfg *Config) setDefaults() {
	if cfg.Name == "" {
		cfg.Name = "devguide"
	}

	if cfg.Persistence.Name == "" {
		cfg.Persistence = Persistence{Driver: InMem, Name: "devguide", Host: Path}
	}

	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}

	if cfg.Cache.FixSize == 0 {
		cfg.Cache.FixSize = DefaultFixCacheSize
	}

	if cfg.EventBus.Subject == "" {
		cfg.EventBus.Subject = "devguide"
	}

	if cfg.Fix.Timeout == 0 {
		cfg.Fix.Timeout = DefaultFixTimeout
	}

	if cfg.JWT.Timeout == 0 {
		cfg.JWT.Timeout = 1 * time.Hour
	}

	if len(cfg.JWT.Audiences) == 0 {
		cfg.JWT.Audiences = []string{cfg.Name}
	}
}

type Config struct {
	Name        string      `yaml:"name"`
	BaseURL     string      `yaml:"baseUrl"`
	CORS        CORS        `yaml:"cors"`
	JWT         JWT         `yaml:"jwt"`
	Persistence Persistence `yaml:"persistence"`
	Cache       Cache       `yaml:"cache"`
	EventBus    EventBus    `yaml:"eventBus"`
	Fix         Fix         `yaml:"fix"`
	Providers   Providers   `yaml:"providers"`
}

var DefaultAllowOrigins = []string{
	"http://localhost:8080",
	"http://127.0.0.1:8080",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

type CORS struct {
	AllowOrigins []string `yaml:"allowOrigins"`
}

func (c CORS) Origins() []string {
	if len(c.AllowOrigins) == 0 {
		return DefaultAllowOrigins
	}
	return c.AllowOrigins
}

// JWT protects the fix endpoint. An empty private key disables it.
type JWT struct {
	Privkey   ed25519.PrivateKey
	Timeout   time.Duration
	Audiences []string
}

func (cfg *JWT) Enabled() bool {
	return len(cfg.Privkey) > 0
}

func (cfg *JWT) Audience() string {
	if len(cfg.Audiences) == 0 {
		return ""
	}
	return cfg.Audiences[0]
}

func (cfg *JWT) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Privkey   string
		Timeout   string
		Audiences []string
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.Privkey != "" {
		priv, err := base64.StdEncoding.DecodeString(raw.Privkey)
		if err != nil {
			return err
		}

		if len(priv) != ed25519.PrivateKeySize {
			return errors.New("invalid ed25519 private key length")
		}

		cfg.Privkey = ed25519.PrivateKey(priv)
	}

	timeout, err := parseDuration(raw.Timeout, 1*time.Hour)
	if err != nil {
		return err
	}

	cfg.Timeout = timeout
	cfg.Audiences = raw.Audiences

	return nil
}

type PersistenceDriver int

const (
	SQLite PersistenceDriver = iota
	BadgerDB
	InMem
)

func ParsePersistenceDriver(driver string) (PersistenceDriver, error) {
	switch driver {
	case "sqlite":
		return SQLite, nil
	case "badger":
		return BadgerDB, nil
	case "inmem", "":
		return InMem, nil
	default:
		return -1, errors.New("driver not supported")
	}
}

func (driver PersistenceDriver) String() string {
	switch driver {
	case SQLite:
		return "sqlite"
	case BadgerDB:
		return "badger"
	case InMem:
		return "inmem"
	default:
		return "unknwon"
	}
}

type Persistence struct {
	Driver PersistenceDriver
	Name   string
	Host   string
	InMem  bool
}

func (p *Persistence) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Driver string `yaml:"driver"`
		Name   string `yaml:"name"`
		Host   string `yaml:"host"`
		InMem  bool   `yaml:"inmem"`
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	driver, err := ParsePersistenceDriver(raw.Driver)
	if err != nil {
		return err
	}

	p.Driver = driver

	p.Name = raw.Name
	if raw.Name == "" {
		p.Name = "devguide"
	}

	p.Host = raw.Host
	if raw.Host == "" {
		p.Host = Path
	}

	p.InMem = raw.InMem

	return nil
}

// Cache sizes the analysis TTL cache and the AI fix LRU cache.
type Cache struct {
	TTL     time.Duration
	FixSize int
}

const (
	DefaultCacheTTL     = 10 * time.Minute
	DefaultFixCacheSize = 128
)

func (c *Cache) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		TTL     string `yaml:"ttl"`
		FixSize int    `yaml:"fixSize"`
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	ttl, err := parseDuration(raw.TTL, DefaultCacheTTL)
	if err != nil {
		return err
	}

	c.TTL = ttl

	c.FixSize = raw.FixSize
	if raw.FixSize <= 0 {
		c.FixSize = DefaultFixCacheSize
	}

	return nil
}

type TransportProvider int

const (
	None TransportProvider = iota
	NATS
)

func ParseTransportProvider(provider string) (TransportProvider, error) {
	switch provider {
	case "", "none":
		return None, nil
	case "nats":
		return NATS, nil
	default:
		return -1, errors.New("provider not supported")
	}
}

func (p TransportProvider) String() string {
	switch p {
	case None:
		return "none"
	case NATS:
		return "nats"
	default:
		return ""
	}
}

type EventBus struct {
	Provider TransportProvider
	Subject  string
}

func (e *EventBus) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Provider string `yaml:"provider"`
		Subject  string `yaml:"subject"`
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	provider, err := ParseTransportProvider(raw.Provider)
	if err != nil {
		return err
	}

	e.Provider = provider

	e.Subject = raw.Subject
	if raw.Subject == "" {
		e.Subject = "devguide"
	}

	return nil
}

// Fix bounds the time spent waiting on external models.
type Fix struct {
	Timeout time.Duration
}

const DefaultFixTimeout = 20 * time.Second

func (f *Fix) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Timeout string `yaml:"timeout"`
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	timeout, err := parseDuration(raw.Timeout, DefaultFixTimeout)
	if err != nil {
		return err
	}

	f.Timeout = timeout
	return nil
}

type Providers struct {
	OpenRouter OpenRouterProvider `yaml:"openrouter"`
	Google     GoogleProvider     `yaml:"google"`
}

type RateLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type OpenRouterProvider struct {
	APIKey    string
	Model     string
	BaseURL   string
	Referer   string
	Title     string
	Timeout   time.Duration
	RateLimit RateLimit
}

func (p *OpenRouterProvider) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		APIKey    string    `yaml:"apiKey"`
		Model     string    `yaml:"model"`
		BaseURL   string    `yaml:"baseUrl"`
		Referer   string    `yaml:"referer"`
		Title     string    `yaml:"title"`
		Timeout   string    `yaml:"timeout"`
		RateLimit RateLimit `yaml:"rateLimit"`
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	timeout, err := parseDuration(raw.Timeout, 15*time.Second)
	if err != nil {
		return err
	}

	p.APIKey = raw.APIKey
	p.Model = raw.Model
	p.BaseURL = raw.BaseURL
	p.Referer = raw.Referer
	p.Title = raw.Title
	p.Timeout = timeout
	p.RateLimit = raw.RateLimit

	return nil
}

type GoogleProvider struct {
	APIKey    string    `yaml:"apiKey"`
	Model     string    `yaml:"model"`
	BaseURL   string    `yaml:"baseUrl"`
	RateLimit RateLimit `yaml:"rateLimit"`
}

func parseDuration(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}

	return time.ParseDuration(s)
}
