package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "FORCEDESK_CONFIG"
	newsAPIKeyEnv = "NEWSAPI_KEY"
	aiCommandEnv  = "FORCEDESK_AI_COMMAND"
	logLevelEnv   = "FORCEDESK_LOG_LEVEL"
)

// Duration wraps time.Duration so cadences can be written as "15m" in YAML.
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds all settings for the data core.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	HTTP      HTTPConfig      `yaml:"http"`
	AI        AIConfig        `yaml:"ai"`
	Intervals IntervalConfig  `yaml:"intervals"`
	Weather   WeatherConfig   `yaml:"weather"`
	Stocks    StocksConfig    `yaml:"stocks"`
	Horoscope HoroscopeConfig `yaml:"horoscope"`
	News      NewsConfig      `yaml:"news"`
	Todos     TodosConfig     `yaml:"todos"`
	Activity  ActivityConfig  `yaml:"activity"`
	Usage     UsageConfig     `yaml:"usage"`
	Pet       PetConfig       `yaml:"pet"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// HTTPConfig bounds outbound page/content fetches.
type HTTPConfig struct {
	PageTimeout  Duration `yaml:"pageTimeout"`
	JSONTimeout  Duration `yaml:"jsonTimeout"`
	MaxPageBytes int64    `yaml:"maxPageBytes"`
	UserAgent    string   `yaml:"userAgent"`
}

// AIConfig describes the external AI CLI tool.
type AIConfig struct {
	Command        string   `yaml:"command"`
	DefaultModel   string   `yaml:"defaultModel"`
	Timeout        Duration `yaml:"timeout"`
	PrintTimeout   Duration `yaml:"printTimeout"`
	MaxOutputBytes int64    `yaml:"maxOutputBytes"`
}

// IntervalConfig holds one polling cadence per data source.
type IntervalConfig struct {
	System    Duration `yaml:"system"`
	Clock     Duration `yaml:"clock"`
	Todos     Duration `yaml:"todos"`
	Weather   Duration `yaml:"weather"`
	Stocks    Duration `yaml:"stocks"`
	News      Duration `yaml:"news"`
	Horoscope Duration `yaml:"horoscope"`
	Vibe      Duration `yaml:"vibe"`
	VibeDelay Duration `yaml:"vibeDelay"`
	Activity  Duration `yaml:"activity"`
	Usage     Duration `yaml:"usage"`
}

// WeatherConfig lists the geolocation, forecast and air-quality endpoints.
type WeatherConfig struct {
	GeoURL        string `yaml:"geoUrl"`
	ForecastURL   string `yaml:"forecastUrl"`
	AirQualityURL string `yaml:"airQualityUrl"`
}

// SymbolConfig names one market index.
type SymbolConfig struct {
	Symbol string `yaml:"symbol"`
	Name   string `yaml:"name"`
}

// StocksConfig lists the chart endpoint plus the tracked indices.
type StocksConfig struct {
	ChartURL string         `yaml:"chartUrl"`
	Taiwan   SymbolConfig   `yaml:"taiwan"`
	US       []SymbolConfig `yaml:"us"`
}

// HoroscopeConfig points at the horoscope endpoint for one sign.
type HoroscopeConfig struct {
	URL         string `yaml:"url"`
	DefaultSign string `yaml:"defaultSign"`
}

// NewsConfig drives the three-stage news pipeline.
type NewsConfig struct {
	APIKey   string   `yaml:"apiKey"`
	APIURL   string   `yaml:"apiUrl"`
	RSSURL   string   `yaml:"rssUrl"`
	Keywords []string `yaml:"keywords"`
	CacheDir string   `yaml:"cacheDir"`
}

// TodosConfig locates the fallback todo file and bounds the reminders call.
type TodosConfig struct {
	FilePath         string   `yaml:"filePath"`
	RemindersTimeout Duration `yaml:"remindersTimeout"`
}

// ActivityConfig lists the watched AI-tool directories.
type ActivityConfig struct {
	HistoryFile string `yaml:"historyFile"`
	ProjectsDir string `yaml:"projectsDir"`
}

// UsageConfig describes the usage-reporting tool invocation.
type UsageConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Timeout Duration `yaml:"timeout"`
}

// PetConfig locates the persisted pet-state file.
type PetConfig struct {
	StatePath string `yaml:"statePath"`
}

// Load reads YAML configuration (if present) over the defaults and applies
// environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			cfg = defaultConfig()
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(newsAPIKeyEnv); v != "" {
		c.News.APIKey = v
	}
	if v := os.Getenv(aiCommandEnv); v != "" {
		c.AI.Command = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func defaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return Config{
		Logging: LoggingConfig{Level: "info"},
		HTTP: HTTPConfig{
			PageTimeout:  Duration(10 * time.Second),
			JSONTimeout:  Duration(15 * time.Second),
			MaxPageBytes: 500_000,
			UserAgent:    "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		AI: AIConfig{
			Command:        "claude",
			DefaultModel:   "haiku",
			Timeout:        Duration(30 * time.Second),
			PrintTimeout:   Duration(60 * time.Second),
			MaxOutputBytes: 1 << 20,
		},
		Intervals: IntervalConfig{
			System:    Duration(2 * time.Second),
			Clock:     Duration(1 * time.Second),
			Todos:     Duration(time.Minute),
			Weather:   Duration(15 * time.Minute),
			Stocks:    Duration(5 * time.Minute),
			News:      Duration(30 * time.Minute),
			Horoscope: Duration(6 * time.Hour),
			Vibe:      Duration(6 * time.Hour),
			VibeDelay: Duration(3 * time.Second),
			Activity:  Duration(2 * time.Second),
			Usage:     Duration(5 * time.Minute),
		},
		Weather: WeatherConfig{
			GeoURL:        "http://ip-api.com/json/?fields=city,lat,lon",
			ForecastURL:   "https://api.open-meteo.com/v1/forecast",
			AirQualityURL: "https://air-quality-api.open-meteo.com/v1/air-quality",
		},
		Stocks: StocksConfig{
			ChartURL: "https://query1.finance.yahoo.com/v8/finance/chart",
			Taiwan:   SymbolConfig{Symbol: "^TWII", Name: "加權指數"},
			US: []SymbolConfig{
				{Symbol: "^GSPC", Name: "S&P 500"},
				{Symbol: "^DJI", Name: "道瓊"},
				{Symbol: "^IXIC", Name: "NASDAQ"},
			},
		},
		Horoscope: HoroscopeConfig{
			URL:         "https://v2.xxapi.cn/api/horoscope?type=cancer&time=today",
			DefaultSign: "巨蟹座",
		},
		News: NewsConfig{
			APIURL: "https://newsapi.org/v2/everything",
			RSSURL: "https://news.google.com/rss/search?q=AI+%E4%BA%BA%E5%B7%A5%E6%99%BA%E6%85%A7&hl=zh-TW&gl=TW&ceid=TW:zh-Hant",
			Keywords: []string{
				"AI coding",
				"Claude AI",
				"ChatGPT",
				"Google Gemini",
				"Grok AI",
				"GitHub Copilot",
				"Anthropic",
				"OpenAI",
				"artificial intelligence development",
			},
			CacheDir: filepath.Join(os.TempDir(), "forcedesk-news-images"),
		},
		Todos: TodosConfig{
			FilePath:         filepath.Join(home, ".todos"),
			RemindersTimeout: Duration(5 * time.Second),
		},
		Activity: ActivityConfig{
			HistoryFile: filepath.Join(home, ".claude", "history.jsonl"),
			ProjectsDir: filepath.Join(home, ".claude", "projects"),
		},
		Usage: UsageConfig{
			Command: "npx",
			Args:    []string{"ccusage"},
			Timeout: Duration(30 * time.Second),
		},
		Pet: PetConfig{
			StatePath: filepath.Join(home, ".dino-state"),
		},
	}
}
