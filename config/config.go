package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Frisco   FriscoConfig
	Todoist  TodoistConfig
	Notion   NotionConfig
	OpenAI   OpenAIConfig
	Notifier NotifierConfig
	Shopping ShoppingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// FriscoConfig holds online store API configuration
type FriscoConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	FeedURL   string        `mapstructure:"feed_url"`
	Username  string        `mapstructure:"username"`
	Password  string        `mapstructure:"password"`
	StoreName string        `mapstructure:"store_name"`
	FeedTTL   time.Duration `mapstructure:"feed_ttl"`
}

// TodoistConfig holds grocery task list configuration
type TodoistConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	Secret    string `mapstructure:"secret"`
	ProjectID string `mapstructure:"project_id"`
}

// NotionConfig holds meal plan and audit log configuration
type NotionConfig struct {
	BaseURL            string `mapstructure:"base_url"`
	Secret             string `mapstructure:"secret"`
	MealPlanDatabaseID string `mapstructure:"meal_plan_database_id"`
	RunDatabaseID      string `mapstructure:"run_database_id"`
	ChoiceDatabaseID   string `mapstructure:"choice_database_id"`
}

// OpenAIConfig holds assistant API configuration
type OpenAIConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	APIKey          string        `mapstructure:"api_key"`
	AssistantID     string        `mapstructure:"assistant_id"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	PollTimeout     time.Duration `mapstructure:"poll_timeout"`
	RetryBackoff    time.Duration `mapstructure:"retry_backoff"`
	RequestInterval time.Duration `mapstructure:"request_interval"`
}

// NotifierConfig holds status webhook configuration
type NotifierConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
}

// ShoppingConfig holds shopping run configuration
type ShoppingConfig struct {
	ItemInterval        time.Duration `mapstructure:"item_interval"`
	PreferredStartTimes []string      `mapstructure:"preferred_start_times"`
	Debug               bool          `mapstructure:"debug"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/grocery-shopping/")

	// Environment variable settings
	v.SetEnvPrefix("GROCERY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Store defaults
	v.SetDefault("frisco.base_url", "https://www.frisco.pl/app/commerce")
	v.SetDefault("frisco.feed_url", "https://commerce.frisco.pl/api/v1/integration/feeds/public")
	v.SetDefault("frisco.store_name", "Frisco")
	v.SetDefault("frisco.feed_ttl", "1h")
	v.SetDefault("frisco.username", "")
	v.SetDefault("frisco.password", "")

	// Task list defaults
	v.SetDefault("todoist.base_url", "https://api.todoist.com/rest/v2")
	v.SetDefault("todoist.secret", "")
	v.SetDefault("todoist.project_id", "")

	// Notion defaults
	v.SetDefault("notion.base_url", "https://api.notion.com")
	v.SetDefault("notion.secret", "")
	v.SetDefault("notion.meal_plan_database_id", "")
	v.SetDefault("notion.run_database_id", "")
	v.SetDefault("notion.choice_database_id", "")

	// Assistant defaults
	v.SetDefault("openai.base_url", "https://api.openai.com")
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.assistant_id", "")
	v.SetDefault("openai.poll_interval", "2s")
	v.SetDefault("openai.poll_timeout", "2m")
	v.SetDefault("openai.retry_backoff", "10s")
	v.SetDefault("openai.request_interval", "1s")

	// Notifier defaults
	v.SetDefault("notifier.webhook_url", "")

	// Shopping defaults
	v.SetDefault("shopping.item_interval", "5s")
	v.SetDefault("shopping.preferred_start_times", []string{"20:30", "21:30", "19:30"})
	v.SetDefault("shopping.debug", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Frisco.Username == "" || config.Frisco.Password == "" {
		return fmt.Errorf("store credentials are required (set GROCERY_FRISCO_USERNAME and GROCERY_FRISCO_PASSWORD)")
	}

	if config.Todoist.Secret == "" || config.Todoist.ProjectID == "" {
		return fmt.Errorf("task list secret and project id are required (set GROCERY_TODOIST_SECRET and GROCERY_TODOIST_PROJECT_ID)")
	}

	if config.Notion.Secret == "" {
		return fmt.Errorf("Notion secret is required (set GROCERY_NOTION_SECRET)")
	}

	if config.OpenAI.APIKey == "" || config.OpenAI.AssistantID == "" {
		return fmt.Errorf("assistant API key and assistant id are required (set GROCERY_OPENAI_API_KEY and GROCERY_OPENAI_ASSISTANT_ID)")
	}

	if config.OpenAI.PollInterval <= 0 || config.OpenAI.PollTimeout <= 0 {
		return fmt.Errorf("assistant poll interval and timeout must be positive")
	}

	if config.Notifier.WebhookURL == "" {
		return fmt.Errorf("status webhook URL is required (set GROCERY_NOTIFIER_WEBHOOK_URL)")
	}

	return nil
}
