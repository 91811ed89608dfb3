package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"news-forum-bot/models"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoadConfig 从多个源加载配置：.env 文件、config.yaml、以及 ./config/news.json。
// 配置加载顺序:
// 1. .env 文件 (用于环境变量)
// 2. config.yaml (基础配置)
// 3. config/news.json (合并到主配置)
// 环境变量会覆盖配置文件中的同名设置。
func LoadConfig() {
	// 1. 从 .env 文件加载环境变量，如果文件不存在则忽略。
	if err := godotenv.Load(); err != nil {
		log.Printf("未找到 .env 文件，将跳过加载。")
	}

	setDefaults(viper.GetViper())

	// 2. 设置并读取基础配置文件 (config.yaml)。
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	bindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("未找到基础配置文件 (config.yaml)，将仅使用环境变量和默认值。")
		} else {
			panic(fmt.Errorf("解析基础配置文件时发生致命错误: %w", err))
		}
	}

	// 3. 合并新闻配置文件 (config/news.json)。
	viper.SetConfigName("news")
	viper.SetConfigType("json")
	viper.AddConfigPath("./config")

	if err := viper.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("未找到新闻配置文件 (config/news.json)，将跳过合并。")
		} else {
			panic(fmt.Errorf("合并新闻配置文件时发生致命错误: %w", err))
		}
	}
}

// bindEnv lets NEWS_RETENTION_DAYS override news.retention_days and so on.
func bindEnv(v *viper.Viper) {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("news.retention_days", 5)
	v.SetDefault("news.similarity_threshold", 0.8)
	v.SetDefault("news.fetch_interval_seconds", 3600)
	v.SetDefault("news.timezone", "Asia/Taipei")
	v.SetDefault("news.data_folder", "data")
	v.SetDefault("news.sources", []string{"yahoo"})
	v.SetDefault("news.max_content_runes", 1000)
	v.SetDefault("news.limit_per_feed", 5)
	v.SetDefault("news.request_timeout", "10s")

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.chat_model", "gpt-4o-mini")
	v.SetDefault("openai.embedding_model", "text-embedding-3-small")
	v.SetDefault("openai.prompts_file", "config/prompts.yaml")
	v.SetDefault("openai.commentator_index", 0)

	v.SetDefault("forum.name", "")
	v.SetDefault("forum.topic", "")
	v.SetDefault("forum.tags", []string{})
	v.SetDefault("forum.layout", "list")
	v.SetDefault("bot.statusRotateMinutes", 5)
	v.SetDefault("log.max_size_mb", 20)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
}

// decodeSection decodes one top-level section from AllSettings, which
// resolves environment overrides of nested keys.
func decodeSection(v *viper.Viper, key string, out any) error {
	section, _ := v.AllSettings()[key].(map[string]any)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(section)
}

// News returns the validated "news" section.
func News() (models.NewsConfig, error) {
	return newsFrom(viper.GetViper())
}

func newsFrom(v *viper.Viper) (models.NewsConfig, error) {
	var cfg models.NewsConfig
	if err := decodeSection(v, "news", &cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode news config: %w", err)
	}
	for i, s := range cfg.Sources {
		cfg.Sources[i] = strings.TrimSpace(s)
	}

	if cfg.RetentionDays < 0 {
		return cfg, fmt.Errorf("news.retention_days must not be negative, got %d", cfg.RetentionDays)
	}
	if cfg.SimilarityThreshold < 0 || cfg.SimilarityThreshold > 1 {
		return cfg, fmt.Errorf("news.similarity_threshold must be within [0,1], got %v", cfg.SimilarityThreshold)
	}
	if cfg.FetchIntervalSeconds <= 0 {
		return cfg, fmt.Errorf("news.fetch_interval_seconds must be positive, got %d", cfg.FetchIntervalSeconds)
	}
	if cfg.DataFolder == "" {
		cfg.DataFolder = "data"
	}
	return cfg, nil
}

// Location loads the configured time zone, falling back to UTC+8.
func Location(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("无法加载时区 %q，使用 UTC+8: %v", name, err)
		return time.FixedZone("UTC+8", 8*60*60)
	}
	return loc
}

// OpenAI returns the "openai" section. The API key comes from OPENAI_API_KEY
// unless openai.api_key is set.
func OpenAI() (models.OpenAIConfig, error) {
	return openAIFrom(viper.GetViper())
}

func openAIFrom(v *viper.Viper) (models.OpenAIConfig, error) {
	var cfg models.OpenAIConfig
	if err := decodeSection(v, "openai", &cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode openai config: %w", err)
	}
	if cfg.APIKey == "" {
		return cfg, fmt.Errorf("no OpenAI API key provided")
	}
	return cfg, nil
}

// Forum returns the "forum" section.
func Forum() (models.ForumConfig, error) {
	return forumFrom(viper.GetViper())
}

func forumFrom(v *viper.Viper) (models.ForumConfig, error) {
	var cfg models.ForumConfig
	if err := decodeSection(v, "forum", &cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode forum config: %w", err)
	}
	return cfg, nil
}
