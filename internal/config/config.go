package config

import (
	_ "embed"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed prices.yaml
var pricesYAML []byte

type Config struct {
	Store      StoreConfig
	Video      VideoConfig
	Detector   DetectorConfig
	Gallery    GalleryConfig
	Attendance AttendanceConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	Prices     PricesConfig
}

type StoreConfig struct {
	URL      string        // Firebase Realtime Database base URL (e.g., https://myapp-default-rtdb.firebasedatabase.app)
	Auth     string        // database secret or ID token appended as ?auth=
	MySQLDSN string        // alternative MySQL backend DSN (e.g., attendance:attendance@tcp(localhost:3306)/attendance)
	Timeout  time.Duration // per-request timeout
}

type VideoConfig struct {
	Device int // V4L2 device index, defaults to 0
}

type DetectorConfig struct {
	URL string // face embedding server, defaults to http://localhost:8000
	Dim int    // embedding dimensionality, defaults to 512
}

type GalleryConfig struct {
	Path              string  // path to the gob-encoded gallery file
	DatabaseURL       string  // PostgreSQL connection URL for the pgvector-backed gallery
	MaxOpenConns      int     // maximum open connections (default 25)
	MaxIdleConns      int     // maximum idle connections (default 5)
	DistanceThreshold float64 // maximum cosine distance for a positive match
}

type AttendanceConfig struct {
	Cooldown          time.Duration // suppression window between stored events per identity
	StrictAlternation bool          // alternate ClockIn/ClockOut instead of always ClockOut after the first event
}

type OpenAIConfig struct {
	Token string
}

type GeminiConfig struct {
	APIKey string
}

type PricesConfig struct {
	Models map[string]ModelPricing `yaml:"models"`
}

type ModelPricing struct {
	Standard RequestPricing `yaml:"standard"`
}

type RequestPricing struct {
	Input  float64 `yaml:"input"`
	Output float64 `yaml:"output"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envBool reads an environment variable as a boolean. Unset or unparseable
// values yield the default.
func envBool(key string, defaultVal bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return defaultVal
}

// envFloat reads an environment variable as a positive float.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func Load() *Config {
	var prices PricesConfig
	if err := yaml.Unmarshal(pricesYAML, &prices); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded prices.yaml: " + err.Error())
	}

	return &Config{
		Store: StoreConfig{
			URL:      os.Getenv("STORE_URL"),
			Auth:     os.Getenv("STORE_AUTH"),
			MySQLDSN: os.Getenv("STORE_MYSQL_DSN"),
			Timeout:  time.Duration(envInt("STORE_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Video: VideoConfig{
			Device: envInt("VIDEO_DEVICE", 0),
		},
		Detector: DetectorConfig{
			URL: os.Getenv("DETECTOR_URL"),
			Dim: envInt("DETECTOR_DIM", 512),
		},
		Gallery: GalleryConfig{
			Path:              os.Getenv("GALLERY_PATH"),
			DatabaseURL:       os.Getenv("DATABASE_URL"),
			MaxOpenConns:      envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:      envInt("DATABASE_MAX_IDLE_CONNS", 5),
			DistanceThreshold: envFloat("MATCH_DISTANCE_THRESHOLD", 0.5),
		},
		Attendance: AttendanceConfig{
			Cooldown:          time.Duration(envInt("COOLDOWN_SECONDS", 60)) * time.Second,
			StrictAlternation: envBool("STRICT_ALTERNATION", false),
		},
		OpenAI: OpenAIConfig{
			Token: os.Getenv("OPENAI_TOKEN"),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
		},
		Prices: prices,
	}
}

// GetModelPricing returns pricing for a specific model, with fallback defaults
func (c *Config) GetModelPricing(modelName string) ModelPricing {
	if pricing, ok := c.Prices.Models[modelName]; ok {
		return pricing
	}
	// Return zero pricing if model not found
	return ModelPricing{}
}
