package config

import (
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/Windi-Fikriyansyah/workit/internal/storage"
)

type Config struct {
	AppPort       string   `env:"APP_PORT" envDefault:"8080"`
	JWTSecret     string   `env:"JWT_SECRET" envDefault:"workit-secret"`
	JWTExpiresMin int      `env:"JWT_EXPIRES_MIN" envDefault:"10080"`
	UploadDir     string   `env:"UPLOAD_DIR" envDefault:"./uploads"`
	CORSOrigins   []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://127.0.0.1:3000,http://localhost:3000"`

	Database DatabaseConfig
	Redis    RedisConfig
}

type DatabaseConfig struct {
	URL        string `env:"DATABASE_URL"`
	UseMongoDB bool   `env:"USE_MONGODB" envDefault:"false"`
	MongoURI   string `env:"MONGODB_URI"`
	MongoDB    string `env:"MONGODB_DB" envDefault:"workit"`
}

// Redis is optional; an empty address disables publishing.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Storage converts the database settings for storage.Open.
func (c Config) Storage() storage.Config {
	return storage.Config{
		DatabaseURL: c.Database.URL,
		UseMongoDB:  c.Database.UseMongoDB,
		Mongo: storage.MongoConfig{
			URI:    c.Database.MongoURI,
			DBName: c.Database.MongoDB,
		},
	}
}

// AllowOrigins joins the origins the way the cors middleware expects.
func (c Config) AllowOrigins() string {
	return strings.Join(c.CORSOrigins, ", ")
}
