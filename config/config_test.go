package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		os.Unsetenv("GROCERY_SERVER_PORT")
		os.Unsetenv("GROCERY_SERVER_ENVIRONMENT")
		os.Unsetenv("GROCERY_FRISCO_USERNAME")
		os.Unsetenv("GROCERY_FRISCO_PASSWORD")
		os.Unsetenv("GROCERY_FRISCO_BASE_URL")
		os.Unsetenv("GROCERY_TODOIST_SECRET")
		os.Unsetenv("GROCERY_TODOIST_PROJECT_ID")
		os.Unsetenv("GROCERY_NOTION_SECRET")
		os.Unsetenv("GROCERY_OPENAI_API_KEY")
		os.Unsetenv("GROCERY_OPENAI_ASSISTANT_ID")
		os.Unsetenv("GROCERY_OPENAI_POLL_TIMEOUT")
		os.Unsetenv("GROCERY_NOTIFIER_WEBHOOK_URL")
		os.Unsetenv("GROCERY_SHOPPING_ITEM_INTERVAL")
	}

	setRequiredEnv := func() {
		os.Setenv("GROCERY_FRISCO_USERNAME", "user@example.com")
		os.Setenv("GROCERY_FRISCO_PASSWORD", "secret")
		os.Setenv("GROCERY_TODOIST_SECRET", "todoist-secret")
		os.Setenv("GROCERY_TODOIST_PROJECT_ID", "project-1")
		os.Setenv("GROCERY_NOTION_SECRET", "notion-secret")
		os.Setenv("GROCERY_OPENAI_API_KEY", "openai-key")
		os.Setenv("GROCERY_OPENAI_ASSISTANT_ID", "asst_1")
		os.Setenv("GROCERY_NOTIFIER_WEBHOOK_URL", "https://hook.example.com/run")
	}

	t.Run("loads with defaults when only credentials are set", func(t *testing.T) {
		cleanupEnv()
		setRequiredEnv()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		// Check defaults
		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Frisco.BaseURL != "https://www.frisco.pl/app/commerce" {
			t.Errorf("Frisco.BaseURL = %s, want https://www.frisco.pl/app/commerce", cfg.Frisco.BaseURL)
		}
		if cfg.Frisco.StoreName != "Frisco" {
			t.Errorf("Frisco.StoreName = %s, want Frisco", cfg.Frisco.StoreName)
		}
		if cfg.OpenAI.PollInterval != 2*time.Second {
			t.Errorf("OpenAI.PollInterval = %v, want 2s", cfg.OpenAI.PollInterval)
		}
		if cfg.OpenAI.PollTimeout != 2*time.Minute {
			t.Errorf("OpenAI.PollTimeout = %v, want 2m", cfg.OpenAI.PollTimeout)
		}
		if cfg.OpenAI.RetryBackoff != 10*time.Second {
			t.Errorf("OpenAI.RetryBackoff = %v, want 10s", cfg.OpenAI.RetryBackoff)
		}
		if cfg.OpenAI.RequestInterval != time.Second {
			t.Errorf("OpenAI.RequestInterval = %v, want 1s", cfg.OpenAI.RequestInterval)
		}
		if cfg.Frisco.FeedTTL != time.Hour {
			t.Errorf("Frisco.FeedTTL = %v, want 1h", cfg.Frisco.FeedTTL)
		}
		if cfg.Shopping.ItemInterval != 5*time.Second {
			t.Errorf("Shopping.ItemInterval = %v, want 5s", cfg.Shopping.ItemInterval)
		}
		if len(cfg.Shopping.PreferredStartTimes) != 3 || cfg.Shopping.PreferredStartTimes[0] != "20:30" {
			t.Errorf("Shopping.PreferredStartTimes = %v, want [20:30 21:30 19:30]", cfg.Shopping.PreferredStartTimes)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		setRequiredEnv()
		os.Setenv("GROCERY_SERVER_PORT", "9090")
		os.Setenv("GROCERY_SERVER_ENVIRONMENT", "production")
		os.Setenv("GROCERY_FRISCO_BASE_URL", "https://store.test")
		os.Setenv("GROCERY_OPENAI_POLL_TIMEOUT", "30s")
		os.Setenv("GROCERY_SHOPPING_ITEM_INTERVAL", "1s")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Frisco.BaseURL != "https://store.test" {
			t.Errorf("Frisco.BaseURL = %s, want https://store.test", cfg.Frisco.BaseURL)
		}
		if cfg.OpenAI.PollTimeout != 30*time.Second {
			t.Errorf("OpenAI.PollTimeout = %v, want 30s", cfg.OpenAI.PollTimeout)
		}
		if cfg.Shopping.ItemInterval != time.Second {
			t.Errorf("Shopping.ItemInterval = %v, want 1s", cfg.Shopping.ItemInterval)
		}
	})

	t.Run("fails without store credentials", func(t *testing.T) {
		cleanupEnv()
		setRequiredEnv()
		os.Unsetenv("GROCERY_FRISCO_PASSWORD")
		defer cleanupEnv()

		if _, err := Load(); err == nil {
			t.Fatal("Load() error = nil, want error about store credentials")
		}
	})

	t.Run("fails without assistant configuration", func(t *testing.T) {
		cleanupEnv()
		setRequiredEnv()
		os.Unsetenv("GROCERY_OPENAI_ASSISTANT_ID")
		defer cleanupEnv()

		if _, err := Load(); err == nil {
			t.Fatal("Load() error = nil, want error about assistant configuration")
		}
	})
}
