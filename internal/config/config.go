// Load envs from .env
// Load YAML config over the defaults
// Override with env vars
// Validate config

package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

type Config struct {
	SearchURL string `yaml:"search_url"`
	// Source is stored on every record, e.g. "glassdoor".
	Source     string        `yaml:"source"`
	MaxJobs    int           `yaml:"max_jobs"`
	Delay      time.Duration `yaml:"delay"`
	RunTimeout time.Duration `yaml:"run_timeout"`

	Selectors Selectors     `yaml:"selectors"`
	Browser   BrowserConfig `yaml:"browser"`
	OpenAI    OpenAIConfig  `yaml:"openai"`
	Output    OutputConfig  `yaml:"output"`

	DatabaseURL    string `yaml:"database_url"`
	TelegramToken  string `yaml:"telegram_token"`
	TelegramChatID int64  `yaml:"telegram_chat_id"`

	Server   ServerConfig `yaml:"server"`
	LogLevel string       `yaml:"log_level"`
}

type Selectors struct {
	JobCard        string `yaml:"job_card"`
	JobDescription string `yaml:"job_description"`
	SalaryInCard   string `yaml:"salary_in_card"`
	CookieAccept   string `yaml:"cookie_accept"`
	JobAlertClose  string `yaml:"job_alert_close"`
}

type BrowserConfig struct {
	Headless          bool          `yaml:"headless"`
	UserAgent         string        `yaml:"user_agent"`
	ViewportWidth     int           `yaml:"viewport_width"`
	ViewportHeight    int           `yaml:"viewport_height"`
	CookiesPath       string        `yaml:"cookies_path"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
	PopupTimeout      time.Duration `yaml:"popup_timeout"`
	DetailTimeout     time.Duration `yaml:"detail_timeout"`
	DetailSettle      time.Duration `yaml:"detail_settle"`
	Humanize          bool          `yaml:"humanize"`
	DebugScreenshots  bool          `yaml:"debug_screenshots"`
	ScreenshotDir     string        `yaml:"screenshot_dir"`
}

type OpenAIConfig struct {
	APIKey          string        `yaml:"api_key"`
	BaseURL         string        `yaml:"base_url"`
	ExtractionModel string        `yaml:"extraction_model"`
	VisionModel     string        `yaml:"vision_model"`
	MaxTokens       int           `yaml:"max_tokens"`
	MaxHTMLChars    int           `yaml:"max_html_chars"`
	CallTimeout     time.Duration `yaml:"call_timeout"`
}

type OutputConfig struct {
	Dir         string `yaml:"dir"`
	JobPrefix   string `yaml:"job_prefix"`
	SessionsDir string `yaml:"sessions_dir"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

// Default returns the built-in configuration every file is layered over.
func Default() *Config {
	return &Config{
		SearchURL:  "https://www.glassdoor.co.uk/Job/london-graduate-software-engineer-jobs-SRCH_IL.0,6_IC2671300_KO7,32.htm",
		Source:     "glassdoor",
		MaxJobs:    10,
		Delay:      1500 * time.Millisecond,
		RunTimeout: 10 * time.Minute,
		Selectors: Selectors{
			JobCard:        `[data-test="job-card-wrapper"]`,
			JobDescription: `div[class^="JobDetails_jobDescription__"]`,
			SalaryInCard:   `span[data-test="detailSalary"]`,
			CookieAccept:   `#onetrust-accept-btn-handler`,
			JobAlertClose:  `div[data-test="JobAlertModal"] button[aria-label="Close"]`,
		},
		Browser: BrowserConfig{
			Headless:          true,
			UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			ViewportWidth:     1280,
			ViewportHeight:    800,
			NavigationTimeout: 10 * time.Second,
			PopupTimeout:      2 * time.Second,
			DetailTimeout:     10 * time.Second,
			DetailSettle:      time.Second,
			DebugScreenshots:  true,
			ScreenshotDir:     "logs/screenshots",
		},
		OpenAI: OpenAIConfig{
			BaseURL:         "https://api.openai.com/v1",
			ExtractionModel: "gpt-4",
			VisionModel:     "gpt-4o",
			MaxTokens:       50,
			MaxHTMLChars:    60000,
			CallTimeout:     60 * time.Second,
		},
		Output: OutputConfig{
			Dir:       "jobs_raw",
			JobPrefix: "job_",
		},
		Server:   ServerConfig{Port: "8080"},
		LogLevel: "info",
	}
}

// Load reads .env (if any), the YAML file at path (if any) over the
// defaults, then applies env overrides. It does not validate.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errors.Wrapf(err, "parse %s", path)
			}
		case os.IsNotExist(err):
			// defaults + env only
		default:
			return nil, errors.Wrapf(err, "read %s", path)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if cfg.Output.SessionsDir == "" {
		cfg.Output.SessionsDir = filepath.Join(cfg.Output.Dir, "sessions")
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setString("SEARCH_URL", &c.SearchURL)
	setString("OPENAI_API_KEY", &c.OpenAI.APIKey)
	setString("OPENAI_BASE_URL", &c.OpenAI.BaseURL)
	setString("DATABASE_URL", &c.DatabaseURL)
	setString("TELEGRAM_BOT_TOKEN", &c.TelegramToken)
	setString("PORT", &c.Server.Port)
	setString("OUTPUT_DIR", &c.Output.Dir)
	setString("LOG_LEVEL", &c.LogLevel)

	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.Wrap(err, "invalid TELEGRAM_CHAT_ID")
		}
		c.TelegramChatID = id
	}
	if v := os.Getenv("MAX_JOBS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, "invalid MAX_JOBS")
		}
		c.MaxJobs = n
	}
	if v := os.Getenv("HEADLESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(err, "invalid HEADLESS")
		}
		c.Browser.Headless = b
	}
	return nil
}

// Validate checks what a scrape run needs.
func (c *Config) Validate() error {
	if c.SearchURL == "" {
		return errors.New("search_url is required")
	}
	if c.MaxJobs <= 0 {
		return errors.Newf("max_jobs must be positive, got %d", c.MaxJobs)
	}
	if c.Delay < 0 {
		return errors.Newf("delay must not be negative, got %s", c.Delay)
	}
	if c.Selectors.JobCard == "" || c.Selectors.JobDescription == "" {
		return errors.New("selectors.job_card and selectors.job_description are required")
	}
	if c.OpenAI.APIKey == "" {
		return errors.New("OPENAI_API_KEY is required")
	}
	if c.OpenAI.ExtractionModel == "" || c.OpenAI.VisionModel == "" {
		return errors.New("openai.extraction_model and openai.vision_model are required")
	}
	if c.Output.Dir == "" {
		return errors.New("output.dir is required")
	}
	for name, d := range map[string]time.Duration{
		"navigation_timeout": c.Browser.NavigationTimeout,
		"popup_timeout":      c.Browser.PopupTimeout,
		"detail_timeout":     c.Browser.DetailTimeout,
		"run_timeout":        c.RunTimeout,
	} {
		if d <= 0 {
			return errors.Newf("%s must be positive", name)
		}
	}
	if (c.TelegramToken == "") != (c.TelegramChatID == 0) {
		return errors.New("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}
	return nil
}

// NotifierEnabled reports whether Telegram credentials are configured.
func (c *Config) NotifierEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}
