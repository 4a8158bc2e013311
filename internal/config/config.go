package config

import (
	"encoding/json"
	"fmt"
	"log"
	"reflect"
	"sync"

	"github.com/spf13/viper"
)

type Config struct {
	LogZapMode               string `mapstructure:"LOG_ZAP_MODE"`
	PrintConfigurationToLogs string `mapstructure:"PRINT_CONFIGURATION_TO_LOGS"`

	RPCPort uint64 `mapstructure:"RPC_PORT"`

	SqlitePath string `mapstructure:"SQLITE_PATH"`
	BadgerPath string `mapstructure:"BADGER_PATH"`

	EthereumNodeUrl    string `mapstructure:"ETHEREUM_NODE_URL"`
	CurveAmmAddress    string `mapstructure:"CURVE_AMM_ADDRESS"`
	BondFactoryAddress string `mapstructure:"BOND_FACTORY_ADDRESS"`
	CurveShape         string `mapstructure:"CURVE_SHAPE"`

	OneInchBaseUrl string `mapstructure:"ONEINCH_BASE_URL"`
	OneInchApiKey  string `mapstructure:"ONEINCH_API_KEY"`
	OpenSeaBaseUrl string `mapstructure:"OPENSEA_BASE_URL"`
	OpenSeaApiKey  string `mapstructure:"OPENSEA_API_KEY"`

	OpenSeaRatePerSecond float64 `mapstructure:"OPENSEA_RATE_PER_SECOND"`
	OpenSeaBurst         int     `mapstructure:"OPENSEA_BURST"`
	OpenSeaConcurrency   int     `mapstructure:"OPENSEA_CONCURRENCY"`
}

// Validate enforces the settings the node cannot run without. Provider
// keys have no embedded fallback: a missing key is a startup failure,
// never a silent default.
func (c Config) Validate() error {
	if c.OneInchApiKey == "" {
		return fmt.Errorf("ONEINCH_API_KEY is not set")
	}
	if c.OpenSeaApiKey == "" {
		return fmt.Errorf("OPENSEA_API_KEY is not set")
	}
	if c.EthereumNodeUrl == "" {
		return fmt.Errorf("ETHEREUM_NODE_URL is not set")
	}
	if c.CurveAmmAddress == "" {
		return fmt.Errorf("CURVE_AMM_ADDRESS is not set")
	}
	if c.BondFactoryAddress == "" {
		return fmt.Errorf("BOND_FACTORY_ADDRESS is not set")
	}
	return nil
}

var once sync.Once
var config Config

var Get = get

func get() Config {
	once.Do(func() {
		config = loadConfig()
	})
	return config
}

func loadConfig() Config {
	viperAddConfigFile()
	viperAddEnv()
	cfg := initializeCfg()
	applyDefaults(&cfg)
	debugConfig(cfg)
	return cfg
}

func viperAddConfigFile() {
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("env")
}

func viperAddEnv() {
	viper.AutomaticEnv()
	// This makes sure that all envs are binded even if they are not represented in config file (https://github.com/spf13/viper/issues/584)
	valueOfConfig := reflect.ValueOf(&Config{}).Elem()
	fieldsOfConfig := reflect.TypeOf(&Config{}).Elem()
	for i := 0; i < valueOfConfig.NumField(); i++ {
		field, _ := fieldsOfConfig.FieldByName(valueOfConfig.Type().Field(i).Name)
		mapStructureVal := field.Tag.Get("mapstructure")
		err := viper.BindEnv(mapStructureVal)
		if err != nil {
			panic(fmt.Sprintf("Error binding env val '%v': %v", mapStructureVal, err))
		}
	}
}

func initializeCfg() Config {
	var cfg Config
	err := viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		} else {
			panic(fmt.Sprintf("fatal error reading config file: %v", err))
		}
	}

	err = viper.Unmarshal(&cfg)
	if err != nil {
		panic(fmt.Sprintf("error unmarshaling config: %v", err))
	}
	return cfg
}

// applyDefaults fills non-secret settings only. Defaults for API keys
// would defeat Validate.
func applyDefaults(cfg *Config) {
	if cfg.RPCPort == 0 {
		cfg.RPCPort = 4445
	}
	if cfg.SqlitePath == "" {
		cfg.SqlitePath = "./db/sqlite/bundsx.db"
	}
	if cfg.BadgerPath == "" {
		cfg.BadgerPath = "./db/badger"
	}
	if cfg.OneInchBaseUrl == "" {
		cfg.OneInchBaseUrl = "https://api.1inch.dev"
	}
	if cfg.OpenSeaBaseUrl == "" {
		cfg.OpenSeaBaseUrl = "https://api.opensea.io"
	}
	if cfg.CurveShape == "" {
		cfg.CurveShape = "quadratic"
	}
	if cfg.OpenSeaRatePerSecond <= 0 {
		cfg.OpenSeaRatePerSecond = 5
	}
	if cfg.OpenSeaBurst <= 0 {
		cfg.OpenSeaBurst = 1
	}
	if cfg.OpenSeaConcurrency <= 0 {
		cfg.OpenSeaConcurrency = 2
	}
}

func debugConfig(cfg Config) {
	if cfg.PrintConfigurationToLogs == "true" {
		// Secrets must never reach the logs
		cfg.OneInchApiKey = "[REDACTED]"
		cfg.OpenSeaApiKey = "[REDACTED]"
		b, err := json.Marshal(cfg)
		var result string
		if err != nil {
			result = "[FAILED TO CONVERT CONF TO STRING]"
		} else {
			result = string(b)
		}
		log.Printf("[APP CONFIGURATION]: %v\n", result)
	}
}
