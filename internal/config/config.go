package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the billing system
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	RabbitMQ   RabbitMQConfig   `yaml:"rabbitmq"`
	Server     ServerConfig     `yaml:"server"`
	Restaurant RestaurantConfig `yaml:"restaurant"`
	Billing    BillingConfig    `yaml:"billing"`
	Log        LogConfig        `yaml:"log"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns"`
}

// RabbitMQConfig holds RabbitMQ connection configuration
type RabbitMQConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	VHost    string `yaml:"vhost"`
}

// ServerConfig holds the HTTP listener configuration
type ServerConfig struct {
	Port int `yaml:"port"`
}

// RestaurantConfig holds the receipt header
type RestaurantConfig struct {
	Name     string `yaml:"name"`
	Tagline  string `yaml:"tagline"`
	Currency string `yaml:"currency"`
}

// BillingConfig holds billing behaviour switches
type BillingConfig struct {
	// Storage is "postgres" or "memory".
	Storage             string `yaml:"storage"`
	HardenedBillNumbers bool   `yaml:"hardened_bill_numbers"`
	MenuFile            string `yaml:"menu_file"`
	ReceiptsDir         string `yaml:"receipts_dir"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when a key is absent from the file
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "billing",
			Database: "restaurant_billing",
			SSLMode:  "disable",
			MaxConns: 10,
		},
		RabbitMQ: RabbitMQConfig{
			Host:  "localhost",
			Port:  5672,
			User:  "guest",
			VHost: "/",
		},
		Server: ServerConfig{Port: 3000},
		Restaurant: RestaurantConfig{
			Name:     "PAKISTANI & CHINESE RESTAURANT",
			Tagline:  "Authentic Pakistani Cuisine & Chinese Delicacies",
			Currency: "Rs.",
		},
		Billing: BillingConfig{
			Storage:     "postgres",
			ReceiptsDir: ".",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads configuration from a YAML file, then applies environment overrides
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open config file")
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file values with environment variables when set
func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"DB_HOST":           &c.Database.Host,
		"DB_USER":           &c.Database.User,
		"DB_PASSWORD":       &c.Database.Password,
		"DB_NAME":           &c.Database.Database,
		"RABBITMQ_HOST":     &c.RabbitMQ.Host,
		"RABBITMQ_USER":     &c.RabbitMQ.User,
		"RABBITMQ_PASSWORD": &c.RabbitMQ.Password,
		"BILLING_STORAGE":   &c.Billing.Storage,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"DB_PORT":       &c.Database.Port,
		"RABBITMQ_PORT": &c.RabbitMQ.Port,
		"SERVER_PORT":   &c.Server.Port,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "invalid %s value", key)
		}
		*dst = n
	}
	return nil
}

// Validate checks the values the services cannot start without
func (c *Config) Validate() error {
	switch c.Billing.Storage {
	case "postgres":
		if c.Database.Host == "" || c.Database.User == "" || c.Database.Database == "" {
			return errors.New("database config incomplete: host, user and database are required")
		}
		if c.Database.Port <= 0 {
			return errors.Newf("invalid database port %d", c.Database.Port)
		}
	case "memory":
	default:
		return errors.Newf("unknown billing.storage %q, want postgres or memory", c.Billing.Storage)
	}
	if c.RabbitMQ.Enabled && c.RabbitMQ.Host == "" {
		return errors.New("rabbitmq config incomplete: host is required")
	}
	if c.Server.Port <= 0 {
		return errors.Newf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// DatabaseURL returns a PostgreSQL connection URL
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Database, c.Database.SSLMode)
}

// RabbitMQURL returns an AMQP connection URL
func (c *Config) RabbitMQURL() string {
	vhost := c.RabbitMQ.VHost
	if vhost == "/" {
		vhost = ""
	}
	return fmt.Sprintf("amqp://%s:%s@%s:%d/%s",
		c.RabbitMQ.User, c.RabbitMQ.Password, c.RabbitMQ.Host, c.RabbitMQ.Port, vhost)
}
