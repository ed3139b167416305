package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env     string  `mapstructure:"env"`      // current application environment (local, production)
	Learner string  `mapstructure:"learner"`  // learner whose schedules are used
	DB      DB      `mapstructure:"database"` // database configuration section
	Review  Review  `mapstructure:"review"`
	SRS     SRS     `mapstructure:"srs"`
	Quiz    Quiz    `mapstructure:"quiz"`
	Rewards Rewards `mapstructure:"rewards"`
}

// DB contains database-related configuration parameters.
type DB struct {
	Driver          string        `mapstructure:"driver"`            // sqlite or postgres
	Path            string        `mapstructure:"path"`              // sqlite file; empty means the default location
	URL             string        `mapstructure:"-"`                 // postgres connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// DSN returns the postgres connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", fmt.Errorf("%w: database url is not set (DATABASE_URL)", ErrInvalidConfig)
	}
	return db.URL, nil
}

type Review struct {
	Limit         int    `mapstructure:"limit"`           // max items per review session, 0 = no cap
	Mode          string `mapstructure:"mode"`            // due, new, mixed or all
	NewPerSession int    `mapstructure:"new_per_session"` // new items added in mixed mode, 0 = no cap
}

type SRS struct {
	Intervals []int `mapstructure:"intervals"` // days per level; the level after the last retires
}

type Quiz struct {
	Options      int    `mapstructure:"options"` // choices per multiple-choice question
	MinQuestions int    `mapstructure:"min_questions"`
	MaxQuestions int    `mapstructure:"max_questions"`
	Mode         string `mapstructure:"mode"` // multiple_choice or free_text
}

type Rewards struct {
	PerCorrect   int `mapstructure:"per_correct"`
	PerfectBonus int `mapstructure:"perfect_bonus"`
	PerReview    int `mapstructure:"per_review"`   // each graded flashcard
	PerMastered  int `mapstructure:"per_mastered"` // each word reaching the top level
}

// Load reads configuration from .env, config files and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if dir := configHome(); dir != "" {
		v.AddConfigPath(filepath.Join(dir, "vietlearn"))
	}

	setDefaults(v)

	v.SetEnvPrefix("vietlearn")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // database.path -> VIETLEARN_DATABASE_PATH
	v.AutomaticEnv()

	_ = v.BindEnv("database_url", "DATABASE_URL")

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFile reads configuration from the given file only, on top of the
// defaults.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error loading config file: %w", err)
	}
	return decode(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("learner", "default")
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_conn_lifetime", "30s")
	v.SetDefault("review.limit", 20)
	v.SetDefault("review.mode", "mixed")
	v.SetDefault("review.new_per_session", 5)
	v.SetDefault("srs.intervals", []int{0, 1, 2, 4, 7, 14, 30, 60, 120})
	v.SetDefault("quiz.options", 4)
	v.SetDefault("quiz.min_questions", 5)
	v.SetDefault("quiz.max_questions", 50)
	v.SetDefault("quiz.mode", "multiple_choice")
	v.SetDefault("rewards.per_correct", 5)
	v.SetDefault("rewards.perfect_bonus", 50)
	v.SetDefault("rewards.per_review", 2)
	v.SetDefault("rewards.per_mastered", 20)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	cfg.DB.URL = v.GetString("database_url")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges that viper cannot express.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if _, err := c.DB.DSN(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfig, c.DB.Driver)
	}
	if c.Learner == "" {
		return fmt.Errorf("%w: empty learner", ErrInvalidConfig)
	}
	if c.Review.Limit < 0 || c.Review.NewPerSession < 0 {
		return fmt.Errorf("%w: review limits must not be negative", ErrInvalidConfig)
	}
	if c.Quiz.Options < 2 {
		return fmt.Errorf("%w: quiz.options must be at least 2, got %d", ErrInvalidConfig, c.Quiz.Options)
	}
	if c.Quiz.MinQuestions < 1 || c.Quiz.MaxQuestions < c.Quiz.MinQuestions {
		return fmt.Errorf("%w: need 1 <= quiz.min_questions <= quiz.max_questions", ErrInvalidConfig)
	}
	if c.Rewards.PerCorrect < 0 || c.Rewards.PerfectBonus < 0 || c.Rewards.PerReview < 0 || c.Rewards.PerMastered < 0 {
		return fmt.Errorf("%w: rewards must not be negative", ErrInvalidConfig)
	}
	if len(c.SRS.Intervals) == 0 {
		return fmt.Errorf("%w: srs.intervals is empty", ErrInvalidConfig)
	}
	return nil
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config")
}
