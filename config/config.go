package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/shellsage/shellsage/errors"
	"gopkg.in/yaml.v3"
)

// Server describes one LLM server endpoint and the models it serves.
type Server struct {
	Name   string   `yaml:"name"`
	URL    string   `yaml:"url"`
	Models []string `yaml:"models"`
}

// Generation holds default sampling parameters, used when an expert profile
// does not override them.
type Generation struct {
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// API configures the REST server.
type API struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Executor configures command execution.
type Executor struct {
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Shell          string `yaml:"shell"`
}

// Files configures file ingestion. Hidden patterns are doublestar globs;
// matching paths are refused when referenced with @path.
type Files struct {
	Hidden []string `yaml:"hidden"`
}

type Config struct {
	Provider     string     `yaml:"provider"` // openai, ollama, anthropic or mock
	Servers      []Server   `yaml:"servers"`
	Generation   Generation `yaml:"generation"`
	API          API        `yaml:"api"`
	Executor     Executor   `yaml:"executor"`
	Files        Files      `yaml:"files"`
	AutoContinue bool       `yaml:"auto_continue"`
}

// Default returns the built-in configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Provider: "openai",
		Servers: []Server{
			{Name: "Ollama Local", URL: "http://localhost:11434", Models: []string{"mistral-7b", "llama3"}},
		},
		Generation: Generation{Temperature: 0.7, MaxTokens: 2000},
		API:        API{Host: "0.0.0.0", Port: 8000},
		Executor:   Executor{TimeoutSeconds: 30},
		Files:      Files{Hidden: []string{".shellsage", ".shellsage/**"}},
	}
}

// Load reads configuration from the user's home directory and the current
// working directory, with the latter taking precedence over the former and
// both over the built-in defaults.
func Load() (*Config, error) {
	cfg := Default()

	if home, err := os.UserHomeDir(); err == nil {
		userPath := filepath.Join(home, ".shellsage", "config.yaml")
		if _, err := os.Stat(userPath); err == nil {
			if err := loadFromFile(userPath, cfg); err != nil {
				return nil, errors.Wrapf(err, "error loading user config")
			}
		}
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrapf(err, "could not get working directory")
	}
	projectPath := filepath.Join(wd, ".shellsage", "config.yaml")
	if _, err := os.Stat(projectPath); err == nil {
		if err := loadFromFile(projectPath, cfg); err != nil {
			return nil, errors.Wrapf(err, "error loading project config")
		}
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	// Unmarshal overwrites only the fields present in the YAML, which gives a
	// simple merge where project-level config replaces user-level.
	return yaml.Unmarshal(data, cfg)
}

// DefaultServer returns the first configured server. An absent or URL-less
// server is the one configuration error the session cannot recover from.
func (c *Config) DefaultServer() (*Server, error) {
	if len(c.Servers) == 0 {
		return nil, errors.New("no LLM servers configured")
	}
	s := &c.Servers[0]
	if s.URL == "" {
		return nil, errors.New("server %q has no URL configured", s.Name)
	}
	return s, nil
}

// CommandTimeout returns the configured execution timeout, defaulting to 30s.
func (c *Config) CommandTimeout() time.Duration {
	if c.Executor.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Executor.TimeoutSeconds) * time.Second
}
