package config

import (
	"fmt"
	"time"
)

type Config struct {
	Whisper     WhisperConfig     `yaml:"whisper"`
	FFmpeg      FFmpegConfig      `yaml:"ffmpeg"`
	Paths       PathsConfig       `yaml:"paths"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
	Curator     CuratorConfig     `yaml:"curator"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	OpenAI      OpenAIConfig      `yaml:"openai"`
	Director    DirectorConfig    `yaml:"director"`
	Captions    CaptionsConfig    `yaml:"captions"`
	Broll       BrollConfig       `yaml:"broll"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Render      RenderConfig      `yaml:"render"`
	Report      ReportConfig      `yaml:"report"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	Storage     StorageConfig     `yaml:"storage"`
	Watch       WatchConfig       `yaml:"watch"`
	Server      ServerConfig      `yaml:"server"`
}

type WhisperConfig struct {
	ModelPath       string  `yaml:"model_path"`
	BinaryPath      string  `yaml:"binary_path"`
	Language        string  `yaml:"language"`
	Prompt          string  `yaml:"prompt"`
	Threads         int     `yaml:"threads"`
	UseGPU          bool    `yaml:"use_gpu"`
	ChunkSeconds    float64 `yaml:"chunk_seconds"`
	MinAudioSeconds float64 `yaml:"min_audio_seconds"`
}

type FFmpegConfig struct {
	Binary       string `yaml:"binary"`
	VideoBitrate string `yaml:"video_bitrate"`
	AudioCodec   string `yaml:"audio_codec"`
	Encoder      string `yaml:"encoder"`
	Preset       string `yaml:"preset"`
	CRF          int    `yaml:"crf"`
}

type PathsConfig struct {
	Input string `yaml:"input"`
	Temp  string `yaml:"temp"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

// CuratorConfig controls the reasoning call and how its answer is cleaned.
type CuratorConfig struct {
	Provider          string  `yaml:"provider"`
	TargetSeconds     float64 `yaml:"target_seconds"`
	TimeoutSeconds    float64 `yaml:"timeout_seconds"`
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialBackoff    float64 `yaml:"initial_backoff_seconds"`
	MaxBackoff        float64 `yaml:"max_backoff_seconds"`
	MinSegmentSeconds float64 `yaml:"min_segment_seconds"`
	PadStartSeconds   float64 `yaml:"pad_start_seconds"`
	PadEndSeconds     float64 `yaml:"pad_end_seconds"`
	SentenceGap       float64 `yaml:"sentence_gap_seconds"`
	SentenceMaxWords  int     `yaml:"sentence_max_words"`
	Instructions      string  `yaml:"instructions"`
}

type GeminiConfig struct {
	Model   string   `yaml:"model"`
	APIKeys []string `yaml:"-"`
}

type OpenAIConfig struct {
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"-"`
}

// DirectorConfig points the curator at a director proxy server.
type DirectorConfig struct {
	URL      string `yaml:"url"`
	ClientID string `yaml:"client_id"`
	Token    string `yaml:"-"`
}

type CaptionsConfig struct {
	WordsPerCue    int     `yaml:"words_per_cue"`
	MaxGapSeconds  float64 `yaml:"max_gap_seconds"`
	MinWordSeconds float64 `yaml:"min_word_seconds"`
	HookSeconds    float64 `yaml:"hook_seconds"`
	PreserveCase   bool    `yaml:"preserve_case"`
	Font           string  `yaml:"font"`
	FontSize       int     `yaml:"font_size"`
}

// BrollConfig holds the relevance thresholds and overlay limits.
type BrollConfig struct {
	Library            string  `yaml:"library"`
	TagsFile           string  `yaml:"tags_file"`
	MinRelevance       float64 `yaml:"min_relevance"`
	MaxOverlayFraction float64 `yaml:"max_overlay_fraction"`
	MaxOverlaySeconds  float64 `yaml:"max_overlay_seconds"`
	MinOverlaySeconds  float64 `yaml:"min_overlay_seconds"`
	LeadInSeconds      float64 `yaml:"lead_in_seconds"`
	CooldownSegments   int     `yaml:"cooldown_segments"`
	HookSeconds        float64 `yaml:"hook_seconds"`
	TagWeight          float64 `yaml:"tag_weight"`
	SemanticWeight     float64 `yaml:"semantic_weight"`
}

type EmbeddingConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"-"`
}

type RenderConfig struct {
	ZoomFactor  float64 `yaml:"zoom_factor"`
	ZoomMinSecs float64 `yaml:"zoom_min_seconds"`
	FadeSeconds float64 `yaml:"fade_seconds"`
}

type ReportConfig struct {
	Docx bool `yaml:"docx"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type StorageConfig struct {
	Bucket       string `yaml:"bucket"`
	Region       string `yaml:"region"`
	Prefix       string `yaml:"prefix"`
	Endpoint     string `yaml:"endpoint"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

type WatchConfig struct {
	SweepCron    string `yaml:"sweep_cron"`
	SettleMillis int    `yaml:"settle_millis"`
}

type ServerConfig struct {
	Addr          string `yaml:"addr"`
	DailyLimit    int64  `yaml:"daily_limit"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"-"`
	RedisDB       int    `yaml:"redis_db"`
}

func (c *Config) Validate() error {
	if c.Whisper.ModelPath == "" {
		return fmt.Errorf("whisper.model_path is required")
	}
	if c.Whisper.BinaryPath == "" {
		return fmt.Errorf("whisper.binary_path is required")
	}
	if c.Whisper.Language == "" {
		return fmt.Errorf("whisper.language is required")
	}
	if c.FFmpeg.Encoder == "" {
		return fmt.Errorf("ffmpeg.encoder is required")
	}
	if c.Paths.Input == "" {
		return fmt.Errorf("paths.input is required")
	}

	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 2
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 8
	}
	if c.Whisper.ChunkSeconds == 0 {
		c.Whisper.ChunkSeconds = 300
	}
	if c.Whisper.MinAudioSeconds == 0 {
		c.Whisper.MinAudioSeconds = 1
	}
	if c.FFmpeg.Binary == "" {
		c.FFmpeg.Binary = "ffmpeg"
	}
	if c.FFmpeg.Preset == "" {
		c.FFmpeg.Preset = "medium"
	}
	if c.FFmpeg.CRF == 0 {
		c.FFmpeg.CRF = 23
	}
	if c.FFmpeg.VideoBitrate == "" {
		c.FFmpeg.VideoBitrate = "8M"
	}
	if c.FFmpeg.AudioCodec == "" {
		c.FFmpeg.AudioCodec = "aac"
	}

	if err := c.validateCurator(); err != nil {
		return err
	}
	c.applyCaptionDefaults()
	c.applyBrollDefaults()

	if c.Render.ZoomFactor == 0 {
		c.Render.ZoomFactor = 1.15
	}
	if c.Render.ZoomMinSecs == 0 {
		c.Render.ZoomMinSecs = 2
	}
	if c.Render.FadeSeconds == 0 {
		c.Render.FadeSeconds = 0.05
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		c.Kafka.Topic = "storycut.results"
	}
	if c.Storage.Bucket != "" && c.Storage.Region == "" {
		c.Storage.Region = "us-east-1"
	}
	if c.Watch.SweepCron == "" {
		c.Watch.SweepCron = "@every 5m"
	}
	if c.Watch.SettleMillis == 0 {
		c.Watch.SettleMillis = 500
	}

	return nil
}

func (c *Config) validateCurator() error {
	if c.Curator.Provider == "" {
		c.Curator.Provider = "gemini"
	}
	switch c.Curator.Provider {
	case "gemini":
		if c.Gemini.Model == "" {
			c.Gemini.Model = "gemini-2.5-flash"
		}
	case "openai":
		if c.OpenAI.Model == "" {
			c.OpenAI.Model = "gpt-4o-mini"
		}
	case "director":
		if c.Director.URL == "" {
			return fmt.Errorf("director.url is required when curator.provider is director")
		}
	default:
		return fmt.Errorf("curator.provider %q is not supported", c.Curator.Provider)
	}

	if c.Curator.TargetSeconds == 0 {
		c.Curator.TargetSeconds = 60
	}
	if c.Curator.TimeoutSeconds == 0 {
		c.Curator.TimeoutSeconds = 60
	}
	if c.Curator.MaxAttempts == 0 {
		c.Curator.MaxAttempts = 3
	}
	if c.Curator.InitialBackoff == 0 {
		c.Curator.InitialBackoff = 2
	}
	if c.Curator.MaxBackoff == 0 {
		c.Curator.MaxBackoff = 30
	}
	if c.Curator.MinSegmentSeconds == 0 {
		c.Curator.MinSegmentSeconds = 0.5
	}
	if c.Curator.SentenceGap == 0 {
		c.Curator.SentenceGap = 1
	}
	if c.Curator.SentenceMaxWords == 0 {
		c.Curator.SentenceMaxWords = 24
	}
	if c.Curator.MaxAttempts < 0 {
		return fmt.Errorf("curator.max_attempts must be positive")
	}
	return nil
}

func (c *Config) applyCaptionDefaults() {
	if c.Captions.WordsPerCue == 0 {
		c.Captions.WordsPerCue = 3
	}
	if c.Captions.MaxGapSeconds == 0 {
		c.Captions.MaxGapSeconds = 0.8
	}
	if c.Captions.MinWordSeconds == 0 {
		c.Captions.MinWordSeconds = 0.08
	}
	if c.Captions.HookSeconds == 0 {
		c.Captions.HookSeconds = 3
	}
	if c.Captions.Font == "" {
		c.Captions.Font = "Montserrat Black"
	}
	if c.Captions.FontSize == 0 {
		c.Captions.FontSize = 72
	}
}

func (c *Config) applyBrollDefaults() {
	if c.Broll.TagsFile == "" {
		c.Broll.TagsFile = "tags.json"
	}
	if c.Broll.MinRelevance == 0 {
		c.Broll.MinRelevance = 0.34
	}
	if c.Broll.MaxOverlayFraction == 0 {
		c.Broll.MaxOverlayFraction = 0.6
	}
	if c.Broll.MaxOverlaySeconds == 0 {
		c.Broll.MaxOverlaySeconds = 3
	}
	if c.Broll.MinOverlaySeconds == 0 {
		c.Broll.MinOverlaySeconds = 1
	}
	if c.Broll.LeadInSeconds == 0 {
		c.Broll.LeadInSeconds = 0.5
	}
	if c.Broll.CooldownSegments == 0 {
		c.Broll.CooldownSegments = 2
	}
	if c.Broll.HookSeconds == 0 {
		c.Broll.HookSeconds = 5
	}
	if c.Broll.TagWeight == 0 {
		c.Broll.TagWeight = 1
	}
	if c.Broll.SemanticWeight == 0 {
		c.Broll.SemanticWeight = 0.5
	}
}

// ValidateServer checks only what the director proxy needs.
func (c *Config) ValidateServer() error {
	if len(c.Gemini.APIKeys) == 0 {
		return fmt.Errorf("GEMINI_API_KEYS is required for the director server")
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.DailyLimit == 0 {
		c.Server.DailyLimit = 1000
	}
	if c.Server.RedisAddr == "" {
		c.Server.RedisAddr = "localhost:6379"
	}
	return nil
}

// Seconds converts a float seconds config value to a Duration.
func Seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}
