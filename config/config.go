package config

import (
	"fmt"
	"strings"
	"time"

	"snapgram_api/types"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	ProjectID     string `env:"FIREBASE_PROJECT_ID,required,notEmpty"`
	APIKey        string `env:"FIREBASE_API_KEY,required,notEmpty"`
	StorageBucket string `env:"FIREBASE_STORAGE_BUCKET,required,notEmpty"`

	// PublicURL is the externally reachable base of this service; preview and
	// avatar URLs stored in documents point at it.
	PublicURL string `env:"PUBLIC_URL" envDefault:"http://localhost:8080"`
	Port      string `env:"PORT" envDefault:"8080"`

	// Firebase caps session cookies at two weeks.
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"336h"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"true"`
	CookieDomain string        `env:"COOKIE_DOMAIN"`

	TasksLocation     string `env:"CLOUD_TASKS_LOCATION" envDefault:"europe-west1"`
	TasksCleanupQueue string `env:"CLOUD_TASKS_CLEANUP_QUEUE" envDefault:"file-cleanup"`
	// TasksServiceAccount signs the OIDC token on cleanup requests; the
	// cleanup route accepts no other caller.
	TasksServiceAccount string `env:"CLOUD_TASKS_SERVICE_ACCOUNT,required,notEmpty"`

	LogName   string `env:"LOG_NAME" envDefault:"snapgram-api"`
	LogStdout bool   `env:"LOG_STDOUT"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("error parsing config: %w", err)
	}

	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")

	if cfg.SessionTTL < 5*time.Minute || cfg.SessionTTL > 14*24*time.Hour {
		return Config{}, fmt.Errorf("SESSION_TTL must be between 5m and 336h, got %s", cfg.SessionTTL)
	}

	return cfg, nil
}

// CleanupHandlerURL is where cleanup tasks are delivered. It is also the
// audience of their OIDC tokens.
func (c Config) CleanupHandlerURL() string {
	return c.PublicURL + types.CLOUD_TASKS_CLEANUP_PATH
}

// CleanupQueuePath is the fully qualified Cloud Tasks queue name.
func (c Config) CleanupQueuePath() string {
	return fmt.Sprintf("projects/%s/locations/%s/queues/%s", c.ProjectID, c.TasksLocation, c.TasksCleanupQueue)
}
