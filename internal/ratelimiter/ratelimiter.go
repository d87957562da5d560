package ratelimiter

import "time"

type Limiter interface {
	Allow(ip string) (bool, time.Duration)
}

type Config struct {
	RequestsPerTimeFrame int           `env:"RATELIMITER_REQUESTS_COUNT,default=200"`
	TimeFrame            time.Duration `env:"RATELIMITER_TIME_FRAME,default=5s"`
	Enabled              bool          `env:"RATE_LIMITER_ENABLED,default=false"`
}
