package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// App holds application configuration.
type App struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

// Logger holds logger configuration.
type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

// Store selects the persistence backend.
type Store struct {
	Driver string `mapstructure:"driver"`
}

// Database holds database configuration.
type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

// DSN returns the postgres connection URL used by migrations.
func (d Database) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.DBName,
		d.SSLMode)
}

// Mongo holds MongoDB configuration, used when store.driver is "mongo".
type Mongo struct {
	URI            string `mapstructure:"uri"`
	Database       string `mapstructure:"database"`
	ConnectTimeout string `mapstructure:"connect_timeout"`
}

// Redis holds Redis configuration.
type Redis struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// API holds API server configuration.
type API struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// StoreDefaults are the defaults shared by every service that talks to the store.
var StoreDefaults = map[string]interface{}{
	"app.env":                    "development",
	"logger.level":               "info",
	"logger.encoding":            "json",
	"store.driver":               "postgres",
	"database.host":              "",
	"database.port":              5432,
	"database.user":              "",
	"database.password":          "",
	"database.name":              "market_intel",
	"database.ssl_mode":          "disable",
	"database.time_zone":         "UTC",
	"database.max_idle_conns":    5,
	"database.max_open_conns":    10,
	"database.conn_max_lifetime": "30m",
	"database.log_level":         "warn",
	"mongo.uri":                  "",
	"mongo.database":             "market_intel",
	"mongo.connect_timeout":      "10s",
}

// Load loads configuration from a file into the given config struct. Every key in
// defaults can also be supplied through the environment, e.g. DATABASE_PASSWORD.
func Load(path string, config interface{}, defaults ...map[string]interface{}) error {
	v := viper.New()
	for _, set := range defaults {
		for key, value := range set {
			v.SetDefault(key, value)
		}
	}

	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			log.Println("Failed to read config file, falling back to environment variables")
		}
	}

	return v.Unmarshal(config)
}
