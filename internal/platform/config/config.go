package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/SscSPs/voucher_engine/internal/core/domain"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Notification drivers.
const (
	NotifyNone    = "none"
	NotifyLog     = "log"
	NotifyPosthog = "posthog"
	NotifyRedis   = "redis"
)

// insecureDevSecret is only used outside production when JWT_SECRET is unset.
const insecureDevSecret = "dev-only-secret-change-me-please"

// Config holds application configuration.
type Config struct {
	DatabaseURL    string `validate:"required_if=StorageDriver postgres"`
	Port           string `validate:"required"`
	IsProduction   bool
	EnableDBCheck  bool
	StorageDriver  string `validate:"oneof=postgres memory"`
	MigrationsPath string

	JWTSecret string `validate:"required,min=16"`
	JWTIssuer string

	OperationTimeout     time.Duration `validate:"gt=0"`
	FiscalYearStartMonth int           `validate:"min=1,max=12"`
	MinorUnitScale       int32         `validate:"min=0,max=8"`

	// DefaultNumberFormat applies to document types without an entry in NumberFormats.
	DefaultNumberFormat domain.NumberFormat
	NumberFormats       map[string]domain.NumberFormat
	Workflows           []domain.ApprovalWorkflow `validate:"dive"`
	WorkflowsFile       string
	NumberingFile       string

	NotifyDriver    string        `validate:"oneof=none log posthog redis"`
	NotifyTimeout   time.Duration `validate:"gt=0"`
	PosthogAPIKey   string        `validate:"required_if=NotifyDriver posthog"`
	PosthogEndpoint string
	RedisAddr       string `validate:"required_if=NotifyDriver redis"`
	RedisChannel    string

	RateLimit   string   // ulule/limiter format, e.g. "100-M"; empty disables
	CORSOrigins []string // "*" allows any origin

	// SeedAccounts are upserted into the chart of accounts at startup.
	SeedAccounts []AccountSeed `validate:"dive"`
}

// AccountSeed is one SEED_ACCOUNTS entry. "1000:group" is a group account, "1100" a leaf.
type AccountSeed struct {
	AccountID string `validate:"required"`
	IsGroup   bool
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("STORAGE_DRIVER", StoragePostgres)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("JWT_ISSUER", "")
	viper.SetDefault("OPERATION_TIMEOUT", "10s")
	viper.SetDefault("FISCAL_YEAR_START_MONTH", 1)
	viper.SetDefault("MINOR_UNIT_SCALE", 2)
	viper.SetDefault("NUMBER_PADDING", 6)
	viper.SetDefault("NUMBER_SEPARATOR", "-")
	viper.SetDefault("WORKFLOWS_FILE", "")
	viper.SetDefault("NUMBERING_FILE", "")
	viper.SetDefault("NOTIFY_DRIVER", NotifyLog)
	viper.SetDefault("NOTIFY_TIMEOUT", "5s")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("POSTHOG_ENDPOINT", "")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_CHANNEL", "voucher-events")
	viper.SetDefault("RATE_LIMIT", "")
	viper.SetDefault("CORS_ORIGINS", "*")
	viper.SetDefault("SEED_ACCOUNTS", "")

	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:          viper.GetString("PGSQL_URL"),
		Port:                 viper.GetString("PORT"),
		IsProduction:         viper.GetBool("IS_PRODUCTION"),
		EnableDBCheck:        viper.GetBool("ENABLE_DB_CHECK"),
		StorageDriver:        strings.ToLower(viper.GetString("STORAGE_DRIVER")),
		MigrationsPath:       viper.GetString("MIGRATIONS_PATH"),
		JWTSecret:            viper.GetString("JWT_SECRET"),
		JWTIssuer:            viper.GetString("JWT_ISSUER"),
		FiscalYearStartMonth: viper.GetInt("FISCAL_YEAR_START_MONTH"),
		MinorUnitScale:       viper.GetInt32("MINOR_UNIT_SCALE"),
		WorkflowsFile:        viper.GetString("WORKFLOWS_FILE"),
		NumberingFile:        viper.GetString("NUMBERING_FILE"),
		NotifyDriver:         strings.ToLower(viper.GetString("NOTIFY_DRIVER")),
		PosthogAPIKey:        viper.GetString("POSTHOG_API_KEY"),
		PosthogEndpoint:      viper.GetString("POSTHOG_ENDPOINT"),
		RedisAddr:            viper.GetString("REDIS_ADDR"),
		RedisChannel:         viper.GetString("REDIS_CHANNEL"),
		RateLimit:            viper.GetString("RATE_LIMIT"),
		CORSOrigins:          splitList(viper.GetString("CORS_ORIGINS")),
		DefaultNumberFormat: domain.NumberFormat{
			Separator:         viper.GetString("NUMBER_SEPARATOR"),
			Padding:           viper.GetInt("NUMBER_PADDING"),
			IncludeFiscalYear: true,
		},
	}

	var err error
	if cfg.OperationTimeout, err = parseDuration("OPERATION_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.NotifyTimeout, err = parseDuration("NOTIFY_TIMEOUT"); err != nil {
		return nil, err
	}

	if cfg.SeedAccounts, err = parseAccountSeeds(viper.GetString("SEED_ACCOUNTS")); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" && !cfg.IsProduction {
		cfg.JWTSecret = insecureDevSecret
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	if cfg.DatabaseURL == "" && cfg.StorageDriver == StoragePostgres {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	if cfg.NumberingFile != "" {
		if err := loadNumberingFile(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.WorkflowsFile != "" {
		if cfg.Workflows, err = loadWorkflowsFile(cfg.WorkflowsFile); err != nil {
			return nil, err
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// FiscalCalendar returns the configured fiscal calendar.
func (c *Config) FiscalCalendar() domain.FiscalCalendar {
	return domain.FiscalCalendar{StartMonth: time.Month(c.FiscalYearStartMonth)}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseAccountSeeds(raw string) ([]AccountSeed, error) {
	var seeds []AccountSeed
	for _, entry := range splitList(raw) {
		id, kind, _ := strings.Cut(entry, ":")
		switch kind {
		case "", "leaf":
			seeds = append(seeds, AccountSeed{AccountID: id})
		case "group":
			seeds = append(seeds, AccountSeed{AccountID: id, IsGroup: true})
		default:
			return nil, fmt.Errorf("invalid SEED_ACCOUNTS entry %q", entry)
		}
	}
	return seeds, nil
}

func parseDuration(key string) (time.Duration, error) {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s (%q): %w", key, raw, err)
	}
	return d, nil
}

// numberingFile is the layout of NUMBERING_FILE:
//
//	default:
//	  separator: "-"
//	  padding: 6
//	  include_fiscal_year: true
//	formats:
//	  INV: { prefix: "INV" }
//	  JV:  { prefix: "JV", include_entity: true }
type numberingFile struct {
	Default *domain.NumberFormat           `mapstructure:"default"`
	Formats map[string]domain.NumberFormat `mapstructure:"formats"`
}

func loadNumberingFile(cfg *Config) error {
	v := viper.New()
	v.SetConfigFile(cfg.NumberingFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read numbering file %s: %w", cfg.NumberingFile, err)
	}
	var nf numberingFile
	if err := v.Unmarshal(&nf); err != nil {
		return fmt.Errorf("failed to parse numbering file %s: %w", cfg.NumberingFile, err)
	}
	if nf.Default != nil {
		cfg.DefaultNumberFormat = *nf.Default
	}
	cfg.NumberFormats = make(map[string]domain.NumberFormat, len(nf.Formats))
	for docType, f := range nf.Formats {
		// viper lower-cases map keys; document types are upper case
		cfg.NumberFormats[strings.ToUpper(docType)] = f
	}
	return nil
}

// workflowsFile is the layout of WORKFLOWS_FILE. Amounts are decimal strings.
//
//	workflows:
//	  - id: wf-inv
//	    document_type: INV
//	    boundary: LOWER
//	    levels:
//	      - { level: 1, min: "0", max: "1000", user: alice }
//	      - { level: 2, min: "1000.01", max: "10000", role: finance_manager }
type workflowsFile struct {
	Workflows []workflowEntry `mapstructure:"workflows"`
}

type workflowEntry struct {
	ID           string       `mapstructure:"id"`
	Name         string       `mapstructure:"name"`
	DocumentType string       `mapstructure:"document_type"`
	Boundary     string       `mapstructure:"boundary"`
	Priority     int          `mapstructure:"priority"`
	Active       *bool        `mapstructure:"active"`
	Levels       []levelEntry `mapstructure:"levels"`
}

type levelEntry struct {
	Level int    `mapstructure:"level"`
	Min   string `mapstructure:"min"`
	Max   string `mapstructure:"max"`
	Role  string `mapstructure:"role"`
	User  string `mapstructure:"user"`
}

func loadWorkflowsFile(path string) ([]domain.ApprovalWorkflow, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read workflows file %s: %w", path, err)
	}
	var wf workflowsFile
	if err := v.Unmarshal(&wf); err != nil {
		return nil, fmt.Errorf("failed to parse workflows file %s: %w", path, err)
	}

	workflows := make([]domain.ApprovalWorkflow, 0, len(wf.Workflows))
	for i, e := range wf.Workflows {
		w, err := e.toDomain()
		if err != nil {
			return nil, fmt.Errorf("workflow %d (%s) in %s: %w", i, e.ID, path, err)
		}
		workflows = append(workflows, w)
	}
	return workflows, nil
}

func (e workflowEntry) toDomain() (domain.ApprovalWorkflow, error) {
	if e.ID == "" || e.DocumentType == "" {
		return domain.ApprovalWorkflow{}, fmt.Errorf("id and document_type are required")
	}
	if len(e.Levels) == 0 {
		return domain.ApprovalWorkflow{}, fmt.Errorf("at least one level is required")
	}
	boundary := domain.BoundaryInclusion(strings.ToUpper(e.Boundary))
	switch boundary {
	case "":
		boundary = domain.BoundaryLower
	case domain.BoundaryLower, domain.BoundaryUpper:
	default:
		return domain.ApprovalWorkflow{}, fmt.Errorf("boundary must be LOWER or UPPER, got %q", e.Boundary)
	}

	w := domain.ApprovalWorkflow{
		WorkflowID:        e.ID,
		Name:              e.Name,
		DocumentType:      strings.ToUpper(e.DocumentType),
		BoundaryInclusion: boundary,
		Priority:          e.Priority,
		IsActive:          e.Active == nil || *e.Active,
	}
	for i, l := range e.Levels {
		if l.Role == "" && l.User == "" {
			return domain.ApprovalWorkflow{}, fmt.Errorf("level %d needs a role or a user", i+1)
		}
		lvl := domain.ApprovalLevel{
			Level:          l.Level,
			ApproverRole:   l.Role,
			ApproverUserID: l.User,
		}
		if lvl.Level == 0 {
			lvl.Level = i + 1
		}
		if l.Min != "" {
			minAmount, err := decimal.NewFromString(l.Min)
			if err != nil {
				return domain.ApprovalWorkflow{}, fmt.Errorf("level %d min: %w", i+1, err)
			}
			lvl.MinAmount = minAmount
		}
		if l.Max != "" {
			maxAmount, err := decimal.NewFromString(l.Max)
			if err != nil {
				return domain.ApprovalWorkflow{}, fmt.Errorf("level %d max: %w", i+1, err)
			}
			lvl.MaxAmount = &maxAmount
		}
		w.Levels = append(w.Levels, lvl)
	}
	return w, nil
}
