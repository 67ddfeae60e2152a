package config

import (
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ContentAgent/internal/domain"
)

const (
	defaultTimezone = "UTC"

	configPathEnv = "CONTENT_AGENT_CONFIG"

	databaseDSNEnv       = "DATABASE_DSN"
	telegramTokenEnv     = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv    = "TELEGRAM_CHAT_ID"
	uploadEndpointEnv    = "UPLOAD_ENDPOINT"
	uploadTokenEnv       = "UPLOAD_TOKEN"
	uploadFolderIDEnv    = "UPLOAD_FOLDER_ID"
	generatorEndpointEnv = "GENERATOR_ENDPOINT"
	generatorModelEnv    = "GENERATOR_MODEL"
	generatorAPIKeyEnv   = "GENERATOR_API_KEY"

	maxArticlesEnv    = "MAX_ARTICLES_PER_SOURCE"
	recencyWindowEnv  = "RECENCY_WINDOW_DAYS"
	targetSelectedEnv = "TARGET_SELECTED"
	minThresholdEnv   = "MIN_SCORE_THRESHOLD"
	recencyWeightEnv  = "RECENCY_WEIGHT"
	relevanceWtEnv    = "RELEVANCE_WEIGHT"
	requestDelayEnv   = "REQUEST_DELAY_SECONDS"
	maxRetriesEnv     = "MAX_RETRIES"
)

// Config holds all settings required across the application.
type Config struct {
	LogLevel             string             `yaml:"logLevel"`
	OutputDir            string             `yaml:"outputDir"`
	MaxArticlesPerSource int                `yaml:"maxArticlesPerSource"`
	RecencyWindowDays    int                `yaml:"recencyWindowDays"`
	TargetSelected       int                `yaml:"targetSelected"`
	MinScoreThreshold    float64            `yaml:"minScoreThreshold"`
	RecencyWeight        float64            `yaml:"recencyWeight"`
	RelevanceWeight      float64            `yaml:"relevanceWeight"`
	RequestDelaySeconds  float64            `yaml:"requestDelaySeconds"`
	MaxRetries           int                `yaml:"maxRetries"`
	TechnicalKeywords    []string           `yaml:"technicalKeywords"`
	Sources              []SourceConfig     `yaml:"sources"`
	Keywords             []ThemeConfig      `yaml:"keywords"`
	History              HistoryConfig      `yaml:"history"`
	Upload               UploadConfig       `yaml:"upload"`
	Generator            GeneratorConfig    `yaml:"generator"`
	Notifications        NotificationConfig `yaml:"notifications"`
	Schedule             ScheduleConfig     `yaml:"schedule"`
}

// SourceConfig describes a single article source with its fetch strategy.
type SourceConfig struct {
	Name    string            `yaml:"name"`
	Fetcher string            `yaml:"fetcher"`
	FeedURL string            `yaml:"feedUrl"`
	PageURL string            `yaml:"pageUrl"`
	Options map[string]string `yaml:"options"`
}

// ThemeConfig maps one relevance theme to its keyword list. Theme order in
// the file is significant: matched topics are reported in this order.
type ThemeConfig struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// HistoryConfig describes the Postgres selection history.
type HistoryConfig struct {
	DSN          string `yaml:"dsn"`
	LookbackDays int    `yaml:"lookbackDays"`
}

// UploadConfig wires the report upload endpoint. Leaving the endpoint empty
// disables uploads.
type UploadConfig struct {
	Endpoint string `yaml:"endpoint"`
	Token    string `yaml:"token"`
	FolderID string `yaml:"folderId"`
}

// GeneratorConfig defines how to contact an OpenAI-compatible API for
// drafting LinkedIn posts.
type GeneratorConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	SystemPrompt string `yaml:"systemPrompt"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// ScheduleConfig defines when scheduled runs trigger.
type ScheduleConfig struct {
	At       string         `yaml:"at"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the schedule timezone string to a time.Location.
func (s ScheduleConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// Load reads YAML configuration (if present) and applies environment
// overrides. An explicit path wins over the CONTENT_AGENT_CONFIG variable;
// unreadable or unparseable files fall back to defaults with a warning.
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			cfg = defaultConfig()
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultConfig().Sources
	}
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = defaultKeywords()
	}

	return cfg
}

// Validate collects every constraint violation into a single error so a
// broken file reports all problems at once.
func (c Config) Validate() error {
	var errs []string

	if c.MaxArticlesPerSource < 1 {
		errs = append(errs, "maxArticlesPerSource must be at least 1")
	}
	if c.RecencyWindowDays < 1 {
		errs = append(errs, "recencyWindowDays must be at least 1")
	}
	if c.TargetSelected < 1 {
		errs = append(errs, "targetSelected must be at least 1")
	}
	if c.MinScoreThreshold < 0 || c.MinScoreThreshold > 100 {
		errs = append(errs, "minScoreThreshold must be between 0.0 and 100.0")
	}
	if c.RecencyWeight < 0 || c.RecencyWeight > 1 {
		errs = append(errs, "recencyWeight must be between 0.0 and 1.0")
	}
	if c.RelevanceWeight < 0 || c.RelevanceWeight > 1 {
		errs = append(errs, "relevanceWeight must be between 0.0 and 1.0")
	}
	if sum := c.RecencyWeight + c.RelevanceWeight; math.Abs(sum-1.0) > 0.001 {
		errs = append(errs, fmt.Sprintf("recencyWeight + relevanceWeight must equal 1.0, got %g", sum))
	}
	if c.RequestDelaySeconds < 0 {
		errs = append(errs, "requestDelaySeconds must be non-negative")
	}
	if c.MaxRetries < 0 {
		errs = append(errs, "maxRetries must be non-negative")
	}
	if c.History.LookbackDays < 0 {
		errs = append(errs, "history.lookbackDays must be non-negative")
	}
	if c.Schedule.At != "" {
		if _, err := time.Parse("15:04", c.Schedule.At); err != nil {
			errs = append(errs, fmt.Sprintf("schedule.at must be HH:MM, got %q", c.Schedule.At))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// RequestDelay converts the configured delay seconds into a duration.
func (c Config) RequestDelay() time.Duration {
	if c.RequestDelaySeconds <= 0 {
		return 0
	}
	return time.Duration(c.RequestDelaySeconds * float64(time.Second))
}

// Taxonomy converts the configured keyword themes into the domain form,
// preserving theme order.
func (c Config) Taxonomy() domain.Taxonomy {
	taxonomy := make(domain.Taxonomy, 0, len(c.Keywords))
	for _, theme := range c.Keywords {
		taxonomy = append(taxonomy, domain.Theme{
			Name:     theme.Name,
			Keywords: theme.Keywords,
		})
	}
	return taxonomy
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.History.DSN = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
	if v := os.Getenv(uploadEndpointEnv); v != "" {
		c.Upload.Endpoint = v
	}
	if v := os.Getenv(uploadTokenEnv); v != "" {
		c.Upload.Token = v
	}
	if v := os.Getenv(uploadFolderIDEnv); v != "" {
		c.Upload.FolderID = v
	}
	if v := os.Getenv(generatorEndpointEnv); v != "" {
		c.Generator.Endpoint = v
	}
	if v := os.Getenv(generatorModelEnv); v != "" {
		c.Generator.Model = v
	}
	if v := os.Getenv(generatorAPIKeyEnv); v != "" {
		c.Generator.APIKey = v
	}

	c.MaxArticlesPerSource = envInt(maxArticlesEnv, c.MaxArticlesPerSource)
	c.RecencyWindowDays = envInt(recencyWindowEnv, c.RecencyWindowDays)
	c.TargetSelected = envInt(targetSelectedEnv, c.TargetSelected)
	c.MinScoreThreshold = envFloat(minThresholdEnv, c.MinScoreThreshold)
	c.RecencyWeight = envFloat(recencyWeightEnv, c.RecencyWeight)
	c.RelevanceWeight = envFloat(relevanceWtEnv, c.RelevanceWeight)
	c.RequestDelaySeconds = envFloat(requestDelayEnv, c.RequestDelaySeconds)
	c.MaxRetries = envInt(maxRetriesEnv, c.MaxRetries)
}

func (c *Config) bindTimezone() {
	tz := c.Schedule.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Schedule.location = loc
}

// envInt reads an integer override; unset or unparseable values keep the
// current setting.
func envInt(name string, current int) int {
	v := os.Getenv(name)
	if v == "" {
		return current
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return current
	}
	return parsed
}

func envFloat(name string, current float64) float64 {
	v := os.Getenv(name)
	if v == "" {
		return current
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return current
	}
	return parsed
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		LogLevel:             "info",
		OutputDir:            "output",
		MaxArticlesPerSource: 50,
		RecencyWindowDays:    30,
		TargetSelected:       10,
		MinScoreThreshold:    0.0,
		RecencyWeight:        0.4,
		RelevanceWeight:      0.6,
		RequestDelaySeconds:  1.0,
		MaxRetries:           3,
		Sources: []SourceConfig{
			{Name: "AWS News Blog", Fetcher: "aws-news"},
			{Name: "Microsoft Purview Blog", Fetcher: "purview"},
		},
		Keywords: defaultKeywords(),
		History:  HistoryConfig{DSN: "", LookbackDays: 90},
		Generator: GeneratorConfig{
			Endpoint:     "",
			Model:        "gpt-4o-mini",
			APIKey:       "",
			SystemPrompt: "You draft concise LinkedIn posts for security practitioners.",
		},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{BotToken: "", ChatID: ""},
		},
		Schedule: ScheduleConfig{At: "06:00", Timezone: defaultTimezone, location: tz},
	}
}

func defaultKeywords() []ThemeConfig {
	return []ThemeConfig{
		{Name: "cloud_security", Keywords: []string{
			"cloud security", "security posture", "threat detection", "vulnerability",
			"security monitoring", "zero trust", "encryption", "security best practices",
		}},
		{Name: "identity_and_access", Keywords: []string{
			"identity", "access management", "IAM", "authentication", "authorization",
			"SSO", "single sign-on", "MFA", "multi-factor", "privileged access",
			"role-based access", "RBAC",
		}},
		{Name: "governance_and_compliance", Keywords: []string{
			"governance", "compliance", "regulatory", "audit", "policy",
			"GDPR", "HIPAA", "SOC 2", "PCI DSS", "FedRAMP", "risk management",
		}},
		{Name: "data_protection", Keywords: []string{
			"data protection", "data security", "data governance", "DLP",
			"data loss prevention", "data classification", "sensitive data", "PII",
			"encryption at rest", "encryption in transit",
		}},
		{Name: "auditing_and_retention", Keywords: []string{
			"auditing", "audit log", "retention", "data retention", "logging",
			"monitoring", "trail", "forensics",
		}},
		{Name: "devsecops", Keywords: []string{
			"DevSecOps", "automation", "policy-as-code", "infrastructure as code", "IaC",
			"CI/CD security", "shift left", "security automation", "SAST", "DAST",
		}},
	}
}
