package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "./config/config.yaml"

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer `yaml:"http_server"`
	Postgres   `yaml:"postgres"`
	Redis      `yaml:"redis"`
	RabbitMQ   `yaml:"rabbitmq"`
	SMTP       `yaml:"smtp"`
	Sessions   `yaml:"sessions"`
	Passwords  `yaml:"passwords"`
	Reset      `yaml:"reset"`
	Catalog    `yaml:"catalog"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:3000"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type Postgres struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST" env-default:"postgres"`
	Port     int    `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"POSTGRES_USER" env-required:"true"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD" env-required:"true"`
	DBName   string `yaml:"dbname" env:"POSTGRES_DB" env-required:"true"`
	SSLMode  string `yaml:"sslmode" env-default:"disable"`
}

type Redis struct {
	Address  string `yaml:"address" env:"REDIS_ADDRESS" env-default:"redis:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env-default:"0"`
}

type RabbitMQ struct {
	URL       string `yaml:"url" env:"RABBITMQ_URL" env-required:"true"`
	QueueName string `yaml:"queue_name" env-default:"emails"`
}

type SMTP struct {
	Host     string `yaml:"host" env:"SMTP_HOST" env-default:"smtp.gmail.com"`
	Port     int    `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	Username string `yaml:"username" env:"EMAIL_USER"`
	Password string `yaml:"password" env:"EMAIL_APP_PASSWORD"`
	From     string `yaml:"from" env-default:"Campus Delivery <no-reply@campus.delivery>"`
}

// Sessions.Store is one of postgres, redis or memory.
// Sessions.Transport is one of bearer or cookie.
type Sessions struct {
	TTL         time.Duration `yaml:"ttl" env-default:"720h"`
	RenewBefore time.Duration `yaml:"renew_before" env-default:"360h"`
	Store       string        `yaml:"store" env:"SESSION_STORE" env-default:"postgres"`
	Transport   string        `yaml:"transport" env:"SESSION_TRANSPORT" env-default:"bearer"`
	CookieName  string        `yaml:"cookie_name" env-default:"token"`
}

type Passwords struct {
	MinLength   int `yaml:"min_length" env-default:"8"`
	MaxLength   int `yaml:"max_length" env-default:"128"`
	EmailMaxLen int `yaml:"email_max_length" env-default:"254"`
	NameMaxLen  int `yaml:"name_max_length" env-default:"64"`
}

type Reset struct {
	TokenTTL    time.Duration `yaml:"token_ttl" env-default:"1h"`
	FrontendURL string        `yaml:"frontend_url" env:"FRONTEND_URL" env-default:"http://localhost:8081"`
}

// Catalog.Driver is postgres (shares the Postgres section) or sqlite.
type Catalog struct {
	Driver      string  `yaml:"driver" env:"CATALOG_DRIVER" env-default:"postgres"`
	SQLitePath  string  `yaml:"sqlite_path" env-default:"campus.db"`
	DeliveryFee float64 `yaml:"delivery_fee" env-default:"5.5"`
}

// MustLoad reads the config from CONFIG_PATH, falling back to ./config/config.yaml.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	return MustLoadPath(configPath)
}

func MustLoadPath(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err.Error())
	}

	return cfg
}

func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, &MissingFileError{Path: configPath}
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, &ReadError{Err: err}
	}

	return &cfg, nil
}

type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return "Config file does not exist: " + e.Path
}

type ReadError struct {
	Err error
}

func (e *ReadError) Error() string {
	return "Failed to read config: " + e.Err.Error()
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
