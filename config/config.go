package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the whole application configuration, bound from the environment.
type Config struct {
	Env      string `envconfig:"APP_ENV" default:"dev"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	AnalysisConfig

	HuggingFace HuggingFaceConfig `envconfig:"HF"`
	OpenAI      OpenAIConfig      `envconfig:"OPENAI"`
	Hugot       HugotConfig       `envconfig:"HUGOT"`
	SerpApi     SerpApiConfig     `envconfig:"SERPAPI"`
	Reddit      RedditConfig      `envconfig:"REDDIT"`
	Valkey      ValkeyConfig      `envconfig:"VALKEY"`
	Kafka       KafkaConfig       `envconfig:"KAFKA"`
	API         APIConfig         `envconfig:"API"`
}

// AnalysisConfig selects backends and tunes the evaluator worker pool.
type AnalysisConfig struct {
	Workers           int    `envconfig:"CLASSIFIER_WORKERS" default:"4"`
	FailurePolicy     string `envconfig:"CLASSIFIER_FAILURE_POLICY" default:"skip"`
	GeneralClassifier string `envconfig:"GENERAL_CLASSIFIER" default:"huggingface"`
	AspectClassifier  string `envconfig:"ASPECT_CLASSIFIER" default:"huggingface"`
	Summarizer        string `envconfig:"SUMMARIZER" default:"huggingface"`
	ReviewSource      string `envconfig:"REVIEW_SOURCE" default:"serpapi"`
}

type HuggingFaceConfig struct {
	APIToken       string        `envconfig:"API_TOKEN"`
	BaseURL        string        `envconfig:"BASE_URL" default:"https://api-inference.huggingface.co/models"`
	SentimentModel string        `envconfig:"SENTIMENT_MODEL" default:"distilbert/distilbert-base-uncased-finetuned-sst-2-english"`
	AspectModel    string        `envconfig:"ASPECT_MODEL" default:"yangheng/deberta-v3-base-absa-v1.1"`
	SummaryModel   string        `envconfig:"SUMMARY_MODEL" default:"facebook/bart-large-cnn"`
	Timeout        time.Duration `envconfig:"TIMEOUT" default:"60s"`
	RequestsPerSec float64       `envconfig:"REQUESTS_PER_SEC" default:"10"`
}

type OpenAIConfig struct {
	APIKey  string        `envconfig:"API_KEY"`
	BaseURL string        `envconfig:"BASE_URL"`
	Model   string        `envconfig:"MODEL" default:"gpt-4o-mini"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"60s"`
}

type HugotConfig struct {
	ModelDir  string `envconfig:"MODEL_DIR" default:"./models"`
	ModelName string `envconfig:"MODEL_NAME" default:"distilbert/distilbert-base-uncased-finetuned-sst-2-english"`
	OnnxFile  string `envconfig:"ONNX_FILE" default:"onnx/model.onnx"`
}

type SerpApiConfig struct {
	APIKey         string  `envconfig:"API_KEY"`
	BaseURL        string  `envconfig:"BASE_URL" default:"https://serpapi.com/search.json"`
	RequestsPerSec float64 `envconfig:"REQUESTS_PER_SEC" default:"2"`
}

type RedditConfig struct {
	ClientID     string `envconfig:"CLIENT_ID"`
	ClientSecret string `envconfig:"CLIENT_SECRET"`
	Subreddits   string `envconfig:"SUBREDDITS" default:"all"`
	AuthURL      string `envconfig:"AUTH_URL" default:"https://www.reddit.com/api/v1/access_token"`
	APIURL       string `envconfig:"API_URL" default:"https://oauth.reddit.com"`
}

type ValkeyConfig struct {
	Enabled     bool          `envconfig:"ENABLED" default:"false"`
	InitAddress string        `envconfig:"INIT_ADDRESS" default:"localhost:6379"`
	Password    string        `envconfig:"PASSWORD"`
	TLS         bool          `envconfig:"TLS" default:"false"`
	TTL         time.Duration `envconfig:"TTL" default:"24h"`
}

type KafkaConfig struct {
	Enabled bool   `envconfig:"ENABLED" default:"false"`
	Broker  string `envconfig:"BROKER" default:"localhost:29092"`
	Topic   string `envconfig:"RESULTS_TOPIC" default:"review-sentiment-results"`
}

type APIConfig struct {
	Addr          string `envconfig:"ADDR" default:":8000"`
	AllowedOrigin string `envconfig:"ALLOWED_ORIGIN" default:"http://localhost:5173"`
	WorkDir       string `envconfig:"WORK_DIR"`
}

// AppEnv returns APP_ENV, defaulting to dev.
func AppEnv() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	return env
}

// Load reads the env file for the current APP_ENV and binds the environment
// into a Config.
func Load() (*Config, error) {
	LoadEnv(AppEnv())

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	return &cfg, nil
}
