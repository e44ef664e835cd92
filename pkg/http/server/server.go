package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port          int
	Timeout       time.Duration
	SearchTimeout time.Duration
	RateLimitRPS  float64
}

func NewConfigFromViper() Config {
	viper.SetDefault("API_PORT", 6060)
	viper.SetDefault("API_TIMEOUT", "30s")
	viper.SetDefault("SEARCH_TIMEOUT", "5s")
	viper.SetDefault("RATE_LIMIT_RPS", 20)
	viper.SetDefault("HTTP_SERVER_READ_HEADER_TIMEOUT", "5s")
	viper.SetDefault("HTTP_SERVER_IDLE_TIMEOUT", "120s")

	return Config{
		Port:          viper.GetInt("API_PORT"),
		Timeout:       viper.GetDuration("API_TIMEOUT"),
		SearchTimeout: viper.GetDuration("SEARCH_TIMEOUT"),
		RateLimitRPS:  viper.GetFloat64("RATE_LIMIT_RPS"),
	}
}

// New. base context of every request is ctx, so cancelling ctx cancels in-flight searches.
func New(ctx context.Context, handler http.Handler, config Config) *http.Server {
	return &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Port),
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
		ReadTimeout:       config.Timeout,
		WriteTimeout:      config.Timeout + config.SearchTimeout,
		IdleTimeout:       viper.GetDuration("HTTP_SERVER_IDLE_TIMEOUT"),
		ReadHeaderTimeout: viper.GetDuration("HTTP_SERVER_READ_HEADER_TIMEOUT"),
	}
}
