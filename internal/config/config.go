package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Project struct {
		Root string `yaml:"root"`
	} `yaml:"project"`
	Tracker struct {
		BaseURL string `yaml:"base_url"`
		Owner   string `yaml:"owner"`
		Repo    string `yaml:"repo"`
		Token   string `yaml:"token"`
	} `yaml:"tracker"`
	AI struct {
		Provider string `yaml:"provider"` // "gemini", "openai" or empty to disable
		Model    string `yaml:"model"`
		APIKey   string `yaml:"api_key"`
		BaseURL  string `yaml:"base_url"` // openai-compatible endpoints only
	} `yaml:"ai"`
	Limits struct {
		ContextRadius  int `yaml:"context_radius"`
		MaxFrames      int `yaml:"max_frames"`
		MaxFiles       int `yaml:"max_files"`
		IssueListLimit int `yaml:"issue_list_limit"`
	} `yaml:"limits"`
}

// LoadConfig reads the YAML config, falling back to defaults when the file
// does not exist. A .env file and environment variables override on top.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	var cfg Config
	file, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// 2. Override with environment variables if present
	if root := os.Getenv("TRACESCOPE_ROOT"); root != "" {
		cfg.Project.Root = root
	}
	if token := os.Getenv("TRACESCOPE_TRACKER_TOKEN"); token != "" {
		cfg.Tracker.Token = token
	}
	if provider := os.Getenv("TRACESCOPE_AI_PROVIDER"); provider != "" {
		cfg.AI.Provider = provider
	}
	if apiKey := os.Getenv("TRACESCOPE_API_KEY"); apiKey != "" {
		cfg.AI.APIKey = apiKey
	}

	// 3. Fill defaults
	if cfg.Project.Root == "" {
		cfg.Project.Root = "."
	}
	if cfg.Limits.ContextRadius == 0 {
		cfg.Limits.ContextRadius = 3
	}
	if cfg.Limits.MaxFrames == 0 {
		cfg.Limits.MaxFrames = 5
	}
	if cfg.Limits.MaxFiles == 0 {
		cfg.Limits.MaxFiles = 50
	}
	if cfg.Limits.IssueListLimit == 0 {
		cfg.Limits.IssueListLimit = 10
	}

	return &cfg, nil
}
