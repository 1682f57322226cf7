package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/dubplan/backend/internal/analyzer"
)

type Config struct {
	Env             string        `mapstructure:"ENV"`
	Port            string        `mapstructure:"PORT"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	ConverterURL    string        `mapstructure:"CONVERTER_URL"`
	RedisURL        string        `mapstructure:"REDIS_URL"`
	CORSAllowed     string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	MaxUploadSizeMB int64         `mapstructure:"MAX_UPLOAD_MB"`

	RosterHeader   string `mapstructure:"ROSTER_HEADER"`
	RosterMaxLines int    `mapstructure:"ROSTER_MAX_LINES"`

	Nominal1     float64 `mapstructure:"NOMINAL_1"`
	Nominal2     float64 `mapstructure:"NOMINAL_2"`
	Nominal3     float64 `mapstructure:"NOMINAL_3"`
	Nominal4     float64 `mapstructure:"NOMINAL_4"`
	Nominal5Plus float64 `mapstructure:"NOMINAL_5_PLUS"`

	RecordingDays   int    `mapstructure:"RECORDING_DAYS"`
	RecordingWindow string `mapstructure:"RECORDING_WINDOW"`

	CalendarDays           int `mapstructure:"CALENDAR_DAYS"`
	CalendarStartHour      int `mapstructure:"CALENDAR_START_HOUR"`
	CalendarEndHour        int `mapstructure:"CALENDAR_END_HOUR"`
	CalendarGranularityMin int `mapstructure:"CALENDAR_GRANULARITY_MIN"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("CONVERTER_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MAX_UPLOAD_MB", 20)

	v.SetDefault("ROSTER_HEADER", "Postavy:")
	v.SetDefault("ROSTER_MAX_LINES", 500)

	v.SetDefault("NOMINAL_1", 60)
	v.SetDefault("NOMINAL_2", 90)
	v.SetDefault("NOMINAL_3", 120)
	v.SetDefault("NOMINAL_4", 150)
	v.SetDefault("NOMINAL_5_PLUS", 200)

	v.SetDefault("RECORDING_DAYS", 6)
	v.SetDefault("RECORDING_WINDOW", "09:00-17:00")

	v.SetDefault("CALENDAR_DAYS", 7)
	v.SetDefault("CALENDAR_START_HOUR", 8)
	v.SetDefault("CALENDAR_END_HOUR", 20)
	v.SetDefault("CALENDAR_GRANULARITY_MIN", 30)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) NominalDurations() analyzer.NominalDurations {
	return analyzer.NominalDurations{
		1: c.Nominal1,
		2: c.Nominal2,
		3: c.Nominal3,
		4: c.Nominal4,
		5: c.Nominal5Plus,
	}
}
