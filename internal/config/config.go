package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/mitchellh/go-homedir"
)

// Config is the optional YAML config file. Every value can also come from
// the environment, and command flags override both.
type Config struct {
	Harvest  HarvestConfig  `yaml:"harvest"`
	Publish  PublishConfig  `yaml:"publish"`
	OwnWork  OwnWorkConfig  `yaml:"own_work"`
	Describe DescribeConfig `yaml:"describe"`
}

// HTTPConfig applies to every outbound client of a command
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"30s" validate:"gt=0"`
	Retries   int           `yaml:"retries" env:"HTTP_RETRIES" env-default:"3" validate:"gte=0,lte=10"`
	UserAgent string        `yaml:"user_agent" env:"HTTP_USER_AGENT"`
}

// HarvestConfig configures the harvest command
type HarvestConfig struct {
	APIKey      string     `yaml:"api_key" env:"BHL_API_KEY" validate:"required"`
	BaseURL     string     `yaml:"base_url" env:"BHL_API_URL" env-default:"https://www.biodiversitylibrary.org/api3" validate:"required,url"`
	OutputDir   string     `yaml:"output_dir" env:"HARVEST_OUTPUT_DIR" env-default:"bhl_images" validate:"required"`
	Format      string     `yaml:"format" env:"HARVEST_FORMAT" env-default:".csv" validate:"oneof=.csv .parquet .xlsx"`
	Concurrency int        `yaml:"concurrency" env:"HARVEST_CONCURRENCY" env-default:"1" validate:"gte=1,lte=16"`
	HTTP        HTTPConfig `yaml:"http"`
}

// PublishConfig configures the publish command. Credentials and the dataset
// directory arrive here already resolved.
type PublishConfig struct {
	Username   string `yaml:"username" env:"COMMONS_USERNAME" validate:"required"`
	Password   string `yaml:"password" env:"COMMONS_PASSWORD" validate:"required"`
	DatasetDir string `yaml:"dataset_dir" env:"COMMONS_DATASET_DIR" validate:"required"`
	APIURL     string `yaml:"api_url" env:"COMMONS_API_URL" env-default:"https://commons.wikimedia.org/w/api.php" validate:"required,url"`
	Template   string `yaml:"template" env:"COMMONS_TEMPLATE"`
	Summary    string `yaml:"summary" env:"COMMONS_EDIT_SUMMARY" env-default:"adding description"`
	// FailOnWarnings stops sending ignorewarnings with uploads
	FailOnWarnings bool       `yaml:"fail_on_warnings" env:"COMMONS_FAIL_ON_WARNINGS"`
	HTTP           HTTPConfig `yaml:"http"`
}

// IgnoreWarnings reports whether uploads ask the server to ignore warnings
func (c *PublishConfig) IgnoreWarnings() bool {
	return !c.FailOnWarnings
}

// OwnWorkConfig configures building a dataset from one's own photographs
type OwnWorkConfig struct {
	Directory   string `yaml:"directory" env:"OWN_WORK_DIR" validate:"required"`
	Title       string `yaml:"title" env:"OWN_WORK_TITLE" validate:"required"`
	Description string `yaml:"description" env:"OWN_WORK_DESCRIPTION"`
	UserName    string `yaml:"user_name" env:"OWN_WORK_USER" validate:"required"`
	Categories  string `yaml:"categories" env:"OWN_WORK_CATEGORIES"`
}

// DescribeConfig configures LLM description enrichment
type DescribeConfig struct {
	DatasetDir   string     `yaml:"dataset_dir" env:"DESCRIBE_DATASET_DIR" validate:"required"`
	Provider     string     `yaml:"provider" env:"DESCRIBE_PROVIDER" env-default:"ollama" validate:"oneof=ollama openai gemini"`
	Model        string     `yaml:"model" env:"DESCRIBE_MODEL" validate:"required"`
	Temperature  float64    `yaml:"temperature" env:"DESCRIBE_TEMPERATURE" env-default:"0.2" validate:"gte=0,lte=2"`
	OllamaURL    string     `yaml:"ollama_url" env:"OLLAMA_URL" env-default:"http://localhost:11434" validate:"omitempty,url"`
	OpenAIURL    string     `yaml:"openai_url" env:"OPENAI_URL" env-default:"https://api.openai.com/v1" validate:"omitempty,url"`
	OpenAIAPIKey string     `yaml:"openai_api_key" env:"OPENAI_API_KEY" validate:"required_if=Provider openai"`
	GeminiAPIKey string     `yaml:"gemini_api_key" env:"GEMINI_API_KEY" validate:"required_if=Provider gemini"`
	HTTP         HTTPConfig `yaml:"http"`
}

var validate = validator.New()

// Load reads path (if not empty) and then the environment. Nothing is
// validated here; each command validates the section it uses after applying
// its flags.
func Load(path string) (*Config, error) {
	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
		return &cfg, nil
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}
	if err := cleanenv.ReadConfig(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration from %s: %w", expanded, err)
	}
	return &cfg, nil
}

// Validate expands ~ in paths and checks the harvest settings
func (c *HarvestConfig) Validate() error {
	dir, err := homedir.Expand(c.OutputDir)
	if err != nil {
		return fmt.Errorf("invalid output dir: %w", err)
	}
	c.OutputDir = dir
	return check("harvest", c)
}

// Validate expands ~ in paths and checks the publish settings
func (c *PublishConfig) Validate() error {
	var err error
	if c.DatasetDir, err = homedir.Expand(c.DatasetDir); err != nil {
		return fmt.Errorf("invalid dataset dir: %w", err)
	}
	if c.Template, err = homedir.Expand(c.Template); err != nil {
		return fmt.Errorf("invalid template path: %w", err)
	}
	return check("publish", c)
}

// Validate expands ~ in paths and checks the own-work settings
func (c *OwnWorkConfig) Validate() error {
	dir, err := homedir.Expand(c.Directory)
	if err != nil {
		return fmt.Errorf("invalid directory: %w", err)
	}
	c.Directory = dir
	return check("own work", c)
}

// Validate expands ~ in paths and checks the describe settings
func (c *DescribeConfig) Validate() error {
	dir, err := homedir.Expand(c.DatasetDir)
	if err != nil {
		return fmt.Errorf("invalid dataset dir: %w", err)
	}
	c.DatasetDir = dir
	return check("describe", c)
}

func check(section string, v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("invalid %s configuration: %w", section, err)
	}
	return nil
}
