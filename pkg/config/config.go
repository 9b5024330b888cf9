// Package config handles pine's persistent configuration file.
package config

import (
	"fmt"
	"os"
	"os/user"
	"path"

	"gopkg.in/yaml.v2"
)

const (
	configDir  string = ".pine"
	configFile string = "config.yml"
)

// Config defines all configuration options available to be set through the
// config file. Command line flags override it.
type Config struct {
	// Network is the endpoint transport, "unix" or "tcp". Empty selects the
	// platform default.
	Network string `yaml:"network,omitempty"`
	// Addr is the endpoint address: a socket path for unix, host:port for
	// tcp. Empty selects the platform default.
	Addr string `yaml:"addr,omitempty"`

	// MaxRequestSize is the request buffer capacity in bytes.
	MaxRequestSize *int `yaml:"max-request-size,omitempty"`
	// MaxReplySize is the reply buffer capacity in bytes.
	MaxReplySize *int `yaml:"max-reply-size,omitempty"`
	// ReadTimeoutSeconds bounds the per-connection request read.
	ReadTimeoutSeconds *int `yaml:"read-timeout-seconds,omitempty"`
}

// LoadConfig attempts to populate a Config object from the config.yml file.
func LoadConfig() *Config {
	err := createConfigPath()
	if err != nil {
		fmt.Printf("Could not create config directory: %v.\n", err)
		return &Config{}
	}
	fullConfigFile, err := GetConfigFilePath(configFile)
	if err != nil {
		fmt.Printf("Unable to get config file path: %v.\n", err)
		return &Config{}
	}

	f, err := os.Open(fullConfigFile)
	if err != nil {
		f, err = createDefaultConfig(fullConfigFile)
		if err != nil {
			fmt.Printf("Error creating default config file: %v\n", err)
			return &Config{}
		}
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Printf("Closing config file failed: %v.\n", err)
		}
	}()

	data, err := os.ReadFile(fullConfigFile)
	if err != nil {
		fmt.Printf("Unable to read config data: %v.\n", err)
		return &Config{}
	}

	var c Config
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		fmt.Printf("Unable to decode config file: %v.\n", err)
		return &Config{}
	}

	return &c
}

// SaveConfig will marshal and save the config struct to disk.
func SaveConfig(conf *Config) error {
	fullConfigFile, err := GetConfigFilePath(configFile)
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(*conf)
	if err != nil {
		return err
	}

	f, err := os.Create(fullConfigFile)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(out)
	return err
}

func createDefaultConfig(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("unable to create config file: %v", err)
	}
	err = writeDefaultConfig(f)
	if err != nil {
		return nil, fmt.Errorf("unable to write default configuration: %v", err)
	}
	return f, nil
}

func writeDefaultConfig(f *os.File) error {
	_, err := f.WriteString(
		`# Configuration file for pine.

# This is the default configuration file. Available options are provided, but disabled.
# Delete the leading hash mark to enable an item.

# Endpoint transport and address. The defaults are a unix domain socket in
# the user's runtime directory on unix-like systems and loopback TCP on
# Windows.
# network: unix
# addr: /tmp/pine.sock

# Capacity of the request buffer: the most bytes one request may carry.
# max-request-size: 650000

# Capacity of the reply buffer. A batch whose read results would not fit
# fails at the overflowing sub-command.
# max-reply-size: 450000

# How long the server waits for the request bytes of an accepted connection.
# read-timeout-seconds: 10
`)
	return err
}

// createConfigPath creates the directory structure at which all config files are saved.
func createConfigPath() error {
	path, err := GetConfigFilePath("")
	if err != nil {
		return err
	}
	return os.MkdirAll(path, 0700)
}

// GetConfigFilePath gets the full path to the given config file name.
func GetConfigFilePath(file string) (string, error) {
	userHomeDir := "."
	usr, err := user.Current()
	if err == nil {
		userHomeDir = usr.HomeDir
	}
	return path.Join(userHomeDir, configDir, file), nil
}
