package utils

import (
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	TwoFA    TwoFAConfig
	WhatsApp WhatsAppConfig
	Cleanup  CleanupConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type TwoFAConfig struct {
	// TTLSeconds is the validity window of a login code from issuance.
	TTLSeconds int
	// DirectReturn makes the login response carry the generated code and
	// demotes delivery failures to warnings. Never enable in production.
	DirectReturn bool
}

type WhatsAppConfig struct {
	BaseURL        string
	InstanceID     string
	Token          string
	AdminPhone     string
	TimeoutSeconds int
}

type CleanupConfig struct {
	IntervalMinutes int
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("TWOFA_TTL_SECONDS", 300)
	viper.SetDefault("TWOFA_DIRECT_RETURN", false)
	viper.SetDefault("WHATSAPP_BASE_URL", "https://api.z-api.io")
	viper.SetDefault("WHATSAPP_TIMEOUT_SECONDS", 10)
	viper.SetDefault("CLEANUP_INTERVAL_MINUTES", 15)
	viper.SetDefault("LOG_PATH", "logs/")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		TwoFA: TwoFAConfig{
			TTLSeconds:   viper.GetInt("TWOFA_TTL_SECONDS"),
			DirectReturn: viper.GetBool("TWOFA_DIRECT_RETURN"),
		},
		WhatsApp: WhatsAppConfig{
			BaseURL:        viper.GetString("WHATSAPP_BASE_URL"),
			InstanceID:     viper.GetString("ZAPI_INSTANCE_ID"),
			Token:          viper.GetString("ZAPI_TOKEN"),
			AdminPhone:     viper.GetString("ADMIN_WHATSAPP"),
			TimeoutSeconds: viper.GetInt("WHATSAPP_TIMEOUT_SECONDS"),
		},
		Cleanup: CleanupConfig{
			IntervalMinutes: viper.GetInt("CLEANUP_INTERVAL_MINUTES"),
		},
	}

	return config, nil
}
