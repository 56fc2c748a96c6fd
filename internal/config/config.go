package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`

	Database Database `envPrefix:"DB_"`
	Storage  Storage  `envPrefix:"STORAGE_"`
	Trash    Trash    `envPrefix:"TRASH_"`
	Auth     Auth     `envPrefix:"AUTH_"`
}

type Database struct {
	// sqlite or mysql
	Driver string `env:"DRIVER" envDefault:"sqlite"`
	URL    string `env:"URL" envDefault:"campaign-review.db"`
}

type Storage struct {
	Dir string `env:"DIR" envDefault:"./uploads"`
}

type Trash struct {
	RetentionDays int           `env:"RETENTION_DAYS" envDefault:"30"`
	PurgeInterval time.Duration `env:"PURGE_INTERVAL" envDefault:"24h"`
}

type Auth struct {
	JWTSecret string `env:"JWT_SECRET"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
