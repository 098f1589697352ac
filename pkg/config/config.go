// Package config loads runtime settings from flags, with defaults taken from
// the environment. .env files are read first:
//
//  1. $ENV_FILE, if set, and nothing else
//  2. .env.local
//  3. .env
//
// Variables already present in the environment are never overwritten.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/tb0hdan/kmu-curator/pkg/relevance"
)

type Config struct {
	BindAddr     string `validate:"required,hostname_port"`
	DatabasePath string `validate:"required"`
	Debug        bool
	PrintVersion bool
	Seed         bool

	// Answer cache backend; empty RedisAddr keeps answers in SQLite.
	RedisAddr     string `validate:"omitempty,hostname_port"`
	RedisPassword string
	RedisDB       int `validate:"min=0,max=15"`

	KeywordWeight        float64 `validate:"gte=0,lte=1"`
	NameSimilarityWeight float64 `validate:"gte=0,lte=1"`
	NameBonus            float64 `validate:"gte=0,lte=1"`
	ScoreFloor           float64 `validate:"gte=0,lte=1"`
}

// Weights returns the scoring policy configured for the relevance scorer.
func (c *Config) Weights() relevance.Weights {
	return relevance.Weights{
		Keyword:        c.KeywordWeight,
		NameSimilarity: c.NameSimilarityWeight,
		NameBonus:      c.NameBonus,
		Floor:          c.ScoreFloor,
	}
}

func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

// Load parses args (without the program name) into a validated Config.
func Load(args []string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}

	env := &envReader{}
	defaults := relevance.DefaultWeights()
	cfg := &Config{}

	fs := flag.NewFlagSet("kmu-curator", flag.ContinueOnError)
	fs.BoolVar(&cfg.Debug, "debug", env.bool("KMU_DEBUG", false), "debug mode")
	fs.StringVar(&cfg.BindAddr, "bind", env.string("KMU_BIND", "localhost:8989"), "bind address (host:port)")
	fs.StringVar(&cfg.DatabasePath, "db", env.string("KMU_DB_PATH", "build/kmu-curator.db"), "SQLite database file path")
	fs.BoolVar(&cfg.PrintVersion, "version", false, "print version and exit")
	fs.BoolVar(&cfg.Seed, "seed", env.bool("KMU_SEED", false), "ingest the curated starter catalog as pending candidates")
	fs.StringVar(&cfg.RedisAddr, "redis", env.string("REDIS_ADDRESS", ""), "Redis address for the answer cache (host:port)")
	fs.StringVar(&cfg.RedisPassword, "redis-password", env.string("REDIS_PASSWORD", ""), "Redis password")
	fs.IntVar(&cfg.RedisDB, "redis-db", env.int("REDIS_DB", 0), "Redis database number")
	fs.Float64Var(&cfg.KeywordWeight, "keyword-weight", env.float("KMU_KEYWORD_WEIGHT", defaults.Keyword), "weight of keyword overlap")
	fs.Float64Var(&cfg.NameSimilarityWeight, "name-similarity-weight", env.float("KMU_NAME_SIMILARITY_WEIGHT", defaults.NameSimilarity), "weight of tool name similarity")
	fs.Float64Var(&cfg.NameBonus, "name-bonus", env.float("KMU_NAME_BONUS", defaults.NameBonus), "bonus when the tool name appears in the question")
	fs.Float64Var(&cfg.ScoreFloor, "score-floor", env.float("KMU_SCORE_FLOOR", defaults.Floor), "baseline score of every approved tool")

	if err := env.err(); err != nil {
		return nil, err
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// envReader collects parse failures so Load can report them together.
type envReader struct {
	errs []error
}

func (e *envReader) string(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func (e *envReader) bool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return b
}

func (e *envReader) int(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func (e *envReader) float(key string, fallback float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return f
}

func (e *envReader) err() error {
	return errors.Join(e.errs...)
}
