package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Notion   Notion   `mapstructure:"notion"`
	GitHub   GitHub   `mapstructure:"github"`
	Logger   Logger   `mapstructure:"logger"`
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	Schedule Schedule `mapstructure:"schedule"`
}

// Notion holds access to the document store and the property names of the
// two databases the service reads.
type Notion struct {
	Token          string  `mapstructure:"token"`
	HoldingsDBID   string  `mapstructure:"holdings_db_id"`
	DailyDataDBID  string  `mapstructure:"daily_data_db_id"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`

	// Holdings database properties.
	HoldingTitleProp    string `mapstructure:"holding_title_prop"`
	HoldingCodeProp     string `mapstructure:"holding_code_prop"`
	HoldingQuantityProp string `mapstructure:"holding_quantity_prop"`
	HoldingCostProp     string `mapstructure:"holding_cost_prop"`
	DailyProfitProp     string `mapstructure:"daily_profit_prop"`
	HoldingProfitProp   string `mapstructure:"holding_profit_prop"`

	// Daily data database properties.
	DailyTitleProp       string `mapstructure:"daily_title_prop"`
	DailyDailyProfitProp string `mapstructure:"daily_daily_profit_prop"`
	DailyTotalCostProp   string `mapstructure:"daily_total_cost_prop"`
	DailyTotalProfitProp string `mapstructure:"daily_total_profit_prop"`
}

// GitHub holds the configuration for the workflow dispatcher.
type GitHub struct {
	Token        string `mapstructure:"token"`
	Repo         string `mapstructure:"repo"`
	WorkflowFile string `mapstructure:"workflow_file"`
	Ref          string `mapstructure:"ref"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Database holds the configuration for the optional local history store.
// An empty DSN disables it.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Schedule holds the optional cron expression for the automatic
// profit-recompute dispatch. Empty disables it.
type Schedule struct {
	RefreshCron string `mapstructure:"refresh_cron"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MissingError reports required configuration values that were not
// provided. The read path degrades to zero figures without them, so
// callers usually log this instead of aborting.
type MissingError struct {
	Keys []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing configuration: %s", strings.Join(e.Keys, ", "))
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (config Config, err error) {
	v := viper.New()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Credentials and identifiers keep the environment names the
	// deployment already uses.
	bindings := map[string]string{
		"notion.token":            "NOTION_TOKEN",
		"notion.holdings_db_id":   "HOLDINGS_DB_ID",
		"notion.daily_data_db_id": "DAILY_DATA_DB_ID",
		"github.token":            "GITHUB_TOKEN",
		"github.repo":             "GITHUB_REPO",
		"github.workflow_file":    "WORKFLOW_FILE",
		"github.ref":              "WORKFLOW_REF",
		"database.dsn":            "DATABASE_DSN",
		"schedule.refresh_cron":   "SCHEDULE_REFRESH_CRON",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return config, err
		}
	}

	// Set default values
	v.SetDefault("notion.rate_limit", 3) // requests per second
	v.SetDefault("notion.rate_limit_burst", 1)
	v.SetDefault("notion.holding_title_prop", "基金名称")
	v.SetDefault("notion.holding_code_prop", "Code")
	v.SetDefault("notion.holding_quantity_prop", "持仓份额")
	v.SetDefault("notion.holding_cost_prop", "持仓成本")
	v.SetDefault("notion.daily_profit_prop", "当日收益")
	v.SetDefault("notion.holding_profit_prop", "持有收益")
	v.SetDefault("notion.daily_title_prop", "日期")
	v.SetDefault("notion.daily_daily_profit_prop", "当日收益")
	v.SetDefault("notion.daily_total_cost_prop", "持仓成本")
	v.SetDefault("notion.daily_total_profit_prop", "总收益")
	v.SetDefault("github.workflow_file", "fund-daily.yml")
	v.SetDefault("github.ref", "main")
	v.SetDefault("server.port", 8080)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")

	err = v.Unmarshal(&config)
	return
}

// Validate reports which upstream credentials are absent. A non-nil
// result is always a *MissingError.
func (c *Config) Validate() error {
	var missing []string
	if c.Notion.Token == "" {
		missing = append(missing, "NOTION_TOKEN")
	}
	if c.Notion.HoldingsDBID == "" {
		missing = append(missing, "HOLDINGS_DB_ID")
	}
	if c.Notion.DailyDataDBID == "" {
		missing = append(missing, "DAILY_DATA_DB_ID")
	}
	if c.GitHub.Token == "" {
		missing = append(missing, "GITHUB_TOKEN")
	}
	if c.GitHub.Repo == "" {
		missing = append(missing, "GITHUB_REPO")
	}
	if len(missing) > 0 {
		return &MissingError{Keys: missing}
	}
	return nil
}
