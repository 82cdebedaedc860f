package config

import (
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"rankguesser-server/internal/util"
)

// defaults used when neither the config file nor the environment sets a value
const (
	defaultStartGameDelay = 5
	defaultGuessTimeout   = 45
	defaultRoomCodeLength = 4
)

// Config provides configuration for the rank guesser server
type Config struct {
	loaded bool
	Log    struct {
		Level             string `yaml:"level" envconfig:"level"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	}
	JWT struct {
		PublicKey  string `yaml:"publicKey" envconfig:"public_key"`
		PrivateKey string `yaml:"privateKey" envconfig:"private_key"`
	}
	StartGameDelay int `yaml:"startGameDelay" envconfig:"start_game_delay"`
	GuessTimeout   int `yaml:"guessTimeout" envconfig:"guess_timeout"`
	RoomCodeLength int `yaml:"roomCodeLength" envconfig:"room_code_length"`
}

var config Config

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration.
// A missing config file is not an error; the environment and the defaults
// still apply.
func Load() error {
	config = Config{}

	configFile := util.Getenv("RG_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	if err == nil {
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(&config); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := envconfig.Process("rg", &config); err != nil {
		return err
	}

	if config.StartGameDelay <= 0 {
		config.StartGameDelay = defaultStartGameDelay
	}

	if config.GuessTimeout <= 0 {
		config.GuessTimeout = defaultGuessTimeout
	}

	if config.RoomCodeLength <= 0 {
		config.RoomCodeLength = defaultRoomCodeLength
	}

	config.loaded = true
	return nil
}
