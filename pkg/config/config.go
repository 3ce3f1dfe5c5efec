package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite        = "sqlite"
	DriverPostgres      = "postgres"
	DriverElasticsearch = "elasticsearch"
	DriverMemory        = "memory"

	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	ServiceName string
	Env         string

	ServerPort  int
	APIBasePath string

	StoreDriver string
	DatabaseURL string

	ESURL         string
	ESUser        string
	ESPassword    string
	ESIndexPrefix string

	JWTSecret []byte

	KafkaBrokers []string

	SeedOnStart bool
	SeedFile    string
	LogLevel    string
}

// Load reads .env from the working directory when present and then the process
// environment. It does not validate; call Validate and ResolveSecret afterwards.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v. Using system environment variables", err)
	}
	return FromEnv()
}

func FromEnv() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "catalog"),
		Env:         strings.ToLower(EnvDefault("APP_ENV", EnvProduction)),

		ServerPort:  EnvIntDefault("SERVER_PORT", 3001),
		APIBasePath: strings.TrimRight(os.Getenv("API_BASE_PATH"), "/"),

		StoreDriver: strings.ToLower(EnvDefault("STORE_DRIVER", DriverSQLite)),
		DatabaseURL: EnvDefault("DATABASE_URL", "catalog.db"),

		ESURL:         EnvDefault("ES_URL", "http://localhost:9200"),
		ESUser:        os.Getenv("ES_USER"),
		ESPassword:    os.Getenv("ES_PASSWORD"),
		ESIndexPrefix: EnvDefault("ES_INDEX_PREFIX", "catalog"),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		SeedOnStart: EnvBoolDefault("SEED_ON_START", true),
		SeedFile:    os.Getenv("SEED_FILE"),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),
	}
}

func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.ServerPort)
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
