package database

import (
	"fmt"

	"faithledger/internal/config"
)

// Supported DB_DRIVER values.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds database configuration
type Config struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

// NewConfig derives the database configuration from the application config.
func NewConfig(app *config.Config) *Config {
	driver := app.DBDriver
	if driver == "" {
		driver = DriverPostgres
	}
	return &Config{
		Driver:     driver,
		Host:       app.DBHost,
		Port:       app.DBPort,
		User:       app.DBUser,
		Password:   app.DBPassword,
		DBName:     app.DBName,
		SSLMode:    app.DBSSLMode,
		SQLitePath: app.SQLitePath,
	}
}

// DSN returns the gorm connection string for the configured driver.
func (c *Config) DSN() string {
	if c.Driver == DriverSQLite {
		return fmt.Sprintf("file:%s?_foreign_keys=on", c.SQLitePath)
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// MigrateURL returns the golang-migrate database URL. Only postgres is
// migrated with SQL files.
func (c *Config) MigrateURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}
