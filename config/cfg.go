package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"coursetheme/common"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	ThemeConfig struct {
		Name          string `yaml:"name" validate:"required,alphanum"`
		Component     string `yaml:"component" validate:"required"`
		Lang          string `yaml:"lang" validate:"required,oneof=en ru"`
		WWWRoot       string `yaml:"wwwroot" validate:"required,url"`
		DataRoot      string `yaml:"dataroot" sanitize:"path_clean" validate:"required"`
		SystemContext int64  `yaml:"system_context" validate:"gt=0"`
		SiteID        int64  `yaml:"site_id" validate:"gt=0"`
		PresetArea    string `yaml:"preset_area" validate:"required"`
	}

	ListingConfig struct {
		CoursesPerPage            int             `yaml:"courses_per_page" validate:"min=1"`
		CoursesWithSummariesLimit int             `yaml:"courses_with_summaries_limit" validate:"gte=0"`
		NameLimit                 int             `yaml:"name_limit" validate:"min=1"`
		AuthorsDefault            string          `yaml:"authors_default"`
		SubcategoryDepth          int             `yaml:"subcategory_depth" validate:"gte=0"`
		ShowMode                  common.ShowMode `yaml:"show_mode"`
		AllowShowAll              bool            `yaml:"allow_show_all"`
	}

	ImagesConfig struct {
		MaxWidth    int `yaml:"max_width" validate:"gte=0"`
		JPEGQuality int `yaml:"jpeg_quality" validate:"min=40,max=100"`
	}

	DatabaseConfig struct {
		Path     string `yaml:"path" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
		PoolSize int    `yaml:"pool_size" validate:"min=1,max=64"`
	}

	ServerConfig struct {
		Listen     string       `yaml:"listen" validate:"required,hostname_port"`
		AdminToken SecretString `yaml:"admin_token"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Theme     ThemeConfig    `yaml:"theme"`
		Listing   ListingConfig  `yaml:"listing"`
		Images    ImagesConfig   `yaml:"images"`
		Database  DatabaseConfig `yaml:"database"`
		Server    ServerConfig   `yaml:"server"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
