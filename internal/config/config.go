// Package config handles agenticai configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the config file search order.
// An explicit path (from -config flag) is checked first.
// Then: ./agenticai.yaml, ~/.config/agenticai/config.yaml,
// /etc/agenticai/config.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"agenticai.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "agenticai", "config.yaml"))
	}

	paths = append(paths, "/etc/agenticai/config.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches DefaultSearchPaths and returns the first that exists.
// Returns the path found, or an error if nothing was found.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", DefaultSearchPaths())
}

// Config holds all agenticai configuration.
type Config struct {
	Ollama     OllamaConfig      `yaml:"ollama"`
	DataDir    string            `yaml:"data_dir"`
	Finance    FinanceConfig     `yaml:"finance"`
	Company    CompanyConfig     `yaml:"company"`
	Web        WebConfig         `yaml:"web"`
	MCPServers []MCPServerConfig `yaml:"mcp_servers"`
	LogLevel   string            `yaml:"log_level"`
}

// OllamaConfig defines the local LLM connection.
type OllamaConfig struct {
	URL         string  `yaml:"url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

// FinanceConfig defines the personal finance store location.
type FinanceConfig struct {
	DBPath string `yaml:"db_path"`
}

// CompanyConfig defines the company data store and document directory.
type CompanyConfig struct {
	DBPath  string `yaml:"db_path"`
	DocsDir string `yaml:"docs_dir"`
}

// WebConfig defines the finance dashboard server settings.
type WebConfig struct {
	Address string `yaml:"address"` // Bind address (default: "" = all interfaces)
	Port    int    `yaml:"port"`
}

// MCPServerConfig defines one MCP server the client side can attach to.
// Exactly one of Command or URL should be set: Command starts a stdio
// subprocess, URL connects over streamable HTTP.
type MCPServerConfig struct {
	Name    string            `yaml:"name"`
	Command string            `yaml:"command"`
	Args    []string          `yaml:"args"`
	Env     []string          `yaml:"env"`
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers"`
	Include []string          `yaml:"include_tools"`
	Exclude []string          `yaml:"exclude_tools"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Default returns a configuration with all defaults applied, for use
// when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Ollama.URL == "" {
		c.Ollama.URL = "http://localhost:11434"
	}
	if c.Ollama.Model == "" {
		c.Ollama.Model = "llama3.2"
	}
	if c.Ollama.Temperature == 0 {
		c.Ollama.Temperature = 0.1
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.Finance.DBPath == "" {
		c.Finance.DBPath = filepath.Join(c.DataDir, "finance.db")
	}
	if c.Company.DBPath == "" {
		c.Company.DBPath = filepath.Join(c.DataDir, "company.db")
	}
	if c.Company.DocsDir == "" {
		c.Company.DocsDir = filepath.Join(c.DataDir, "documents")
	}
	if c.Web.Port == 0 {
		c.Web.Port = 8099
	}
}

// ListenAddr returns the web server bind address in host:port form.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Web.Address, c.Web.Port)
}
