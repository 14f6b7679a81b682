package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort   string `mapstructure:"SERVER_PORT"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	JWTSecret    string `mapstructure:"JWT_SECRET"`
	ClientOrigin string `mapstructure:"CLIENT_ORIGIN"`

	// Mail (password recovery).
	AWSRegion  string `mapstructure:"AWS_REGION"`
	MailSender string `mapstructure:"MAIL_SENDER"`

	// Storefront identity used on payment links and customer messages.
	StoreName string `mapstructure:"STORE_NAME"`
	OrdersURL string `mapstructure:"ORDERS_URL"`
	ResetURL  string `mapstructure:"RESET_URL"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("STORE_NAME", "Vaddadi Pickles")
	viper.SetDefault("ORDERS_URL", "vaddadipickles.com/orders")
	viper.SetDefault("RESET_URL", "https://vaddadipickles.com/reset-password")

	err := viper.ReadInConfig()
	if err != nil {
		// A missing .env file is fine; real deployments use environment
		// variables.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No .env file found.")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
