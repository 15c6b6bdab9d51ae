package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`
	Redis struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	JWT struct {
		Issuer            string `mapstructure:"issuer"`
		PrivateKeyFile    string `mapstructure:"private_key_file"`
		PublicKeyFile     string `mapstructure:"public_key_file"`
		AccessTokenTTLMs  int64  `mapstructure:"access_token_ttl_ms"`
		RefreshTokenTTLMs int64  `mapstructure:"refresh_token_ttl_ms"`
	} `mapstructure:"jwt"`
	RateLimit struct {
		LoginMaxRequests     int64 `mapstructure:"login_max_requests"`
		LoginWindowSeconds   int   `mapstructure:"login_window_seconds"`
		RefreshMaxRequests   int64 `mapstructure:"refresh_max_requests"`
		RefreshWindowSeconds int   `mapstructure:"refresh_window_seconds"`
	} `mapstructure:"rate_limit"`
}

var AppConfig Config

func LoadConfig(path string) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yml")

	viper.AutomaticEnv()

	// Defaults match the abuse limits and token lifetimes the service ships with.
	viper.SetDefault("jwt.issuer", "auth-service")
	viper.SetDefault("jwt.access_token_ttl_ms", 300000)
	viper.SetDefault("jwt.refresh_token_ttl_ms", 1209600000)
	viper.SetDefault("rate_limit.login_max_requests", 10)
	viper.SetDefault("rate_limit.login_window_seconds", 60)
	viper.SetDefault("rate_limit.refresh_max_requests", 50)
	viper.SetDefault("rate_limit.refresh_window_seconds", 86400)

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
}
