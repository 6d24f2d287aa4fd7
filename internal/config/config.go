package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"menuboard/internal"
)

type Config struct {
	DBPath    string `mapstructure:"db_path"`
	RawDir    string `mapstructure:"raw_dir"`
	OutputDir string `mapstructure:"output_dir"`

	SheetProvider      string        `mapstructure:"sheet_provider"`
	SheetFormat        string        `mapstructure:"sheet_format"`
	SheetID            string        `mapstructure:"sheet_id"`
	SheetName          string        `mapstructure:"sheet_name"`
	SheetGID           string        `mapstructure:"sheet_gid"`
	SheetExportURL     string        `mapstructure:"sheet_export_url"`
	SheetFile          string        `mapstructure:"sheet_file"`
	SheetsAPIKey       string        `mapstructure:"sheets_api_key"`
	SheetsClientID     string        `mapstructure:"sheets_client_id"`
	SheetsClientSecret string        `mapstructure:"sheets_client_secret"`
	SheetsRefreshToken string        `mapstructure:"sheets_refresh_token"`
	FetchTimeout       time.Duration `mapstructure:"fetch_timeout"`
	FetchRateLimitRPS  int           `mapstructure:"fetch_rate_limit_rps"`
	FetchRetries       int           `mapstructure:"fetch_retries"`

	PromoRule       internal.PromoRule `mapstructure:"promo_rule"`
	DefaultCategory string             `mapstructure:"default_category"`
	Locale          string             `mapstructure:"locale"`
	CurrencyPrefix  string             `mapstructure:"currency_prefix"`

	ImageBaseURL        string  `mapstructure:"image_base_url"`
	ImageDir            string  `mapstructure:"image_dir"`
	FallbackImage       string  `mapstructure:"fallback_image"`
	ImageAutoMatch      bool    `mapstructure:"image_automatch"`
	ImageMatchThreshold float64 `mapstructure:"image_match_threshold"`

	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	RotateInterval  time.Duration `mapstructure:"rotate_interval"`
	Shuffle         bool          `mapstructure:"shuffle"`
	SummaryEvery    int           `mapstructure:"summary_every"`
	SummarySize     int           `mapstructure:"summary_size"`
	SummaryDuration time.Duration `mapstructure:"summary_duration"`
	QREvery         int           `mapstructure:"qr_every"`
	QRDuration      time.Duration `mapstructure:"qr_duration"`

	MenuURL        string `mapstructure:"menu_url"`
	WhatsAppNumber string `mapstructure:"whatsapp_number"`
	InstagramURL   string `mapstructure:"instagram_url"`
	QREndpoint     string `mapstructure:"qr_endpoint"`
	QRSize         int    `mapstructure:"qr_size"`

	WeatherEnabled bool          `mapstructure:"weather_enabled"`
	WeatherLat     float64       `mapstructure:"weather_lat"`
	WeatherLon     float64       `mapstructure:"weather_lon"`
	WeatherBaseURL string        `mapstructure:"weather_base_url"`
	WeatherRefresh time.Duration `mapstructure:"weather_refresh"`

	HTTPAddr  string `mapstructure:"http_addr"`
	StaticDir string `mapstructure:"static_dir"`

	S3Bucket string `mapstructure:"s3_bucket"`
	S3Region string `mapstructure:"s3_region"`
	S3Prefix string `mapstructure:"s3_prefix"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

func Load() (Config, error) {
	return LoadFile("")
}

// LoadFile reads .env, then the optional config file, then the environment.
// Environment values win over the file.
func LoadFile(cfgFile string) (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	setDefaults(v, cwd)
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	if strings.TrimSpace(cfgFile) != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	var cfg Config
	hooks := viper.DecoderConfigOption(func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err := v.Unmarshal(&cfg, hooks); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cwd string) {
	v.SetDefault("db_path", filepath.Join(cwd, "data", "app.db"))
	v.SetDefault("raw_dir", filepath.Join(cwd, "data", "raw"))
	v.SetDefault("output_dir", filepath.Join(cwd, "out"))

	v.SetDefault("sheet_provider", "export")
	v.SetDefault("sheet_format", "csv")
	v.SetDefault("sheet_id", "")
	v.SetDefault("sheet_name", "Sheet1")
	v.SetDefault("sheet_gid", "0")
	v.SetDefault("sheet_export_url", "")
	v.SetDefault("sheet_file", "")
	v.SetDefault("sheets_api_key", "")
	v.SetDefault("sheets_client_id", "")
	v.SetDefault("sheets_client_secret", "")
	v.SetDefault("sheets_refresh_token", "")
	v.SetDefault("fetch_timeout", 15*time.Second)
	v.SetDefault("fetch_rate_limit_rps", 2)
	v.SetDefault("fetch_retries", 3)

	v.SetDefault("promo_rule", string(internal.PromoAffirmativeWord))
	v.SetDefault("default_category", "Otros")
	v.SetDefault("locale", "es-AR")
	v.SetDefault("currency_prefix", "$ ")

	v.SetDefault("image_base_url", "/img")
	v.SetDefault("image_dir", filepath.Join(cwd, "static", "img"))
	v.SetDefault("fallback_image", "/img/logo.png")
	v.SetDefault("image_automatch", false)
	v.SetDefault("image_match_threshold", 0.82)

	v.SetDefault("refresh_interval", 60*time.Second)
	v.SetDefault("rotate_interval", 9*time.Second)
	v.SetDefault("shuffle", true)
	v.SetDefault("summary_every", 0)
	v.SetDefault("summary_size", 4)
	v.SetDefault("summary_duration", 9*time.Second)
	v.SetDefault("qr_every", 0)
	v.SetDefault("qr_duration", 12*time.Second)

	v.SetDefault("menu_url", "")
	v.SetDefault("whatsapp_number", "")
	v.SetDefault("instagram_url", "")
	v.SetDefault("qr_endpoint", "https://chart.googleapis.com/chart")
	v.SetDefault("qr_size", 220)

	v.SetDefault("weather_enabled", true)
	v.SetDefault("weather_lat", -26.8083)
	v.SetDefault("weather_lon", -65.2176)
	v.SetDefault("weather_base_url", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("weather_refresh", 15*time.Minute)

	v.SetDefault("http_addr", ":8080")
	v.SetDefault("static_dir", filepath.Join(cwd, "static"))

	v.SetDefault("s3_bucket", "")
	v.SetDefault("s3_region", "us-east-1")
	v.SetDefault("s3_prefix", "")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
}

func (c Config) Validate() error {
	switch c.PromoRule {
	case internal.PromoAffirmativeWord, internal.PromoNonEmptyNonZero:
	default:
		return fmt.Errorf("unsupported PROMO_RULE: %q", c.PromoRule)
	}
	switch c.SheetFormat {
	case "csv", "gviz", "html", "xlsx", "values":
	default:
		return fmt.Errorf("unsupported SHEET_FORMAT: %q", c.SheetFormat)
	}
	switch c.SheetProvider {
	case "export", "sheets", "file":
	default:
		return fmt.Errorf("unsupported SHEET_PROVIDER: %q", c.SheetProvider)
	}
	return nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}
