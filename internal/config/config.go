package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env"
)

type config struct {
	Production     bool          `env:"PRODUCTION" envDefault:"false"`
	Port           string        `env:"PORT" envDefault:"80"`
	PostgresUrl    string        `env:"POSTGRES_URL,required"`
	RedisUrl       string        `env:"REDIS_URL" envDefault:"redis:6379"`
	Secret         string        `env:"SECRET,required"`
	CreatedBy      string        `env:"CREATED_BY" envDefault:"practicehq-calendar"`
	DispatchPeriod time.Duration `env:"DISPATCH_PERIOD" envDefault:"60s"`
	DispatcherURL  string        `env:"DISPATCHER_URL" envDefault:""`
}

var conf config

func init() {
	if err := env.Parse(&conf); err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
}

func Production() bool {
	return conf.Production
}

func Port() string {
	return conf.Port
}

func PostgresURL() string {
	return conf.PostgresUrl
}

func RedisURL() string {
	return conf.RedisUrl
}

func Secret() string {
	return conf.Secret
}

// CreatedBy identifies this system in the X-CREATED-BY metadata stamp.
func CreatedBy() string {
	return conf.CreatedBy
}

func DispatchPeriod() time.Duration {
	return conf.DispatchPeriod
}

func DispatcherURL() string {
	return conf.DispatcherURL
}
