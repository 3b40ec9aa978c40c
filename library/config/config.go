package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Astemirdum/library-circulation/pkg/kafka"
	"github.com/Astemirdum/library-circulation/pkg/logger"
	"github.com/Astemirdum/library-circulation/pkg/postgres"
	"github.com/kelseyhightower/envconfig"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"LIBRARY_HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"LIBRARY_HTTP_PORT" default:"8060"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"10s"`
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"HTTP_WRITE" default:"10s"`
}

type PaymentHTTPServer struct {
	Host    string        `envconfig:"PAYMENT_HTTP_HOST" default:"localhost"`
	Port    string        `envconfig:"PAYMENT_HTTP_PORT" default:"8070"`
	Timeout time.Duration `envconfig:"PAYMENT_HTTP_TIMEOUT" default:"10s"`
}

type Circulation struct {
	FeePolicy             string `envconfig:"FEE_POLICY" default:"tiered"`
	RejectDuplicateBorrow bool   `envconfig:"CIRCULATION_REJECT_DUPLICATE_BORROW" default:"true"`
	StatusWorkers         int    `envconfig:"CIRCULATION_STATUS_WORKERS" default:"4"`
}

type Config struct {
	Server            HTTPServer  `yaml:"server"`
	Database          postgres.DB `yaml:"db"`
	Kafka             kafka.Config
	PaymentHTTPServer PaymentHTTPServer
	Circulation       Circulation
	Log               logger.Log `yaml:"log"`
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment. Options set fields that have no env value.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		var config Config
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		for _, op := range ops {
			op(&config)
		}
		cfg = &config
		printConfig(cfg)
	})

	return cfg
}

func printConfig(cfg *Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
