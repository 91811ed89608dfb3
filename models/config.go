package models

import "time"

// NewsConfig is the "news" section of config.yaml / config/news.json.
type NewsConfig struct {
	RetentionDays        int           `json:"retention_days" mapstructure:"retention_days"`
	SimilarityThreshold  float64       `json:"similarity_threshold" mapstructure:"similarity_threshold"`
	FetchIntervalSeconds int           `json:"fetch_interval_seconds" mapstructure:"fetch_interval_seconds"`
	Timezone             string        `json:"timezone" mapstructure:"timezone"`
	DataFolder           string        `json:"data_folder" mapstructure:"data_folder"`
	Sources              []string      `json:"sources" mapstructure:"sources"`
	MaxContentRunes      int           `json:"max_content_runes" mapstructure:"max_content_runes"`
	GoogleNewsFeeds      []string      `json:"google_news_feeds" mapstructure:"google_news_feeds"`
	LimitPerFeed         int           `json:"limit_per_feed" mapstructure:"limit_per_feed"`
	RequestTimeout       time.Duration `json:"request_timeout" mapstructure:"request_timeout"`
}

// FetchInterval returns the configured interval between scheduled runs.
func (c NewsConfig) FetchInterval() time.Duration {
	return time.Duration(c.FetchIntervalSeconds) * time.Second
}

// Retention returns the memory retention window.
func (c NewsConfig) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// OpenAIConfig is the "openai" section.
type OpenAIConfig struct {
	APIKey           string `mapstructure:"api_key"`
	BaseURL          string `mapstructure:"base_url"`
	ChatModel        string `mapstructure:"chat_model"`
	EmbeddingModel   string `mapstructure:"embedding_model"`
	PromptsFile      string `mapstructure:"prompts_file"`
	CommentatorIndex int    `mapstructure:"commentator_index"`
}

// ForumConfig describes how a newly registered forum channel is initialized.
type ForumConfig struct {
	Name   string   `mapstructure:"name"`
	Topic  string   `mapstructure:"topic"`
	Tags   []string `mapstructure:"tags"`
	Layout string   `mapstructure:"layout"` // list / gallery
}

// CommandsConfig holds command permission settings.
type CommandsConfig struct {
	Auth AuthConfig `mapstructure:"auth"`
}

// AuthConfig lists who may run privileged commands.
type AuthConfig struct {
	Developers  []string `mapstructure:"developers"`
	AdminsRoles []string `mapstructure:"admins_roles"`
	Guest       []string `mapstructure:"guest"`
}
