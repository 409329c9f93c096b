package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	SiteAddressConfig struct {
		Street     string `yaml:"street"`
		Number     string `yaml:"number"`
		PostalCode string `yaml:"postal_code"`
		City       string `yaml:"city"`
		State      string `yaml:"state"`
		Country    string `yaml:"country"`
	}

	SiteContactConfig struct {
		Email   string `yaml:"email" validate:"omitempty,email"`
		Phone   string `yaml:"phone"`
		Website string `yaml:"website" validate:"omitempty,url"`
	}

	SiteConfig struct {
		Name            string            `yaml:"name"`
		LogoAsset       string            `yaml:"logo_asset"`
		DefaultLanguage string            `yaml:"default_language" validate:"required,bcp47_language_tag"`
		Languages       []string          `yaml:"languages" validate:"dive,bcp47_language_tag"`
		Address         SiteAddressConfig `yaml:"address"`
		Contact         SiteContactConfig `yaml:"contact"`
		Social          map[string]string `yaml:"social" validate:"dive,keys,oneof=facebook instagram twitter tiktok youtube spotify soundcloud bandcamp linkedin mastodon,endkeys,omitempty,url"`
	}

	PreviewConfig struct {
		Endpoint       string `yaml:"endpoint" validate:"required,url"`
		TimeoutSec     int    `yaml:"timeout_seconds" validate:"min=1,max=300"`
		DebounceMS     int    `yaml:"debounce_milliseconds" validate:"min=0,max=10000"`
		RenderBodyOnly bool   `yaml:"render_body_only"`
	}

	AssetsConfig struct {
		Endpoint     string       `yaml:"endpoint" validate:"required,url"`
		Token        SecretString `yaml:"token,omitempty"`
		TimeoutSec   int          `yaml:"timeout_seconds" validate:"min=1,max=300"`
		CacheSize    int          `yaml:"cache_size" validate:"min=16,max=65536"`
		MaxUploadDim int          `yaml:"max_upload_dimension" validate:"min=0,max=16384"`
		JPEGQuality  int          `yaml:"jpeg_quality" validate:"min=40,max=100"`
	}

	FontsConfig struct {
		CacheSize int `yaml:"cache_size" validate:"min=4,max=4096"`
	}

	EditorConfig struct {
		SummaryMaxRunes int `yaml:"summary_max_runes" validate:"min=40,max=1000"`
	}

	ExportConfig struct {
		FixZip                bool   `yaml:"fix_zip"`
		OutputNameTemplate    string `yaml:"output_name_template"`
		FileNameTransliterate bool   `yaml:"file_name_transliterate"`
	}

	SnapshotConfig struct {
		Path string `yaml:"path" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
		Keep int    `yaml:"keep" validate:"min=1,max=1000"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Site      SiteConfig     `yaml:"site"`
		Preview   PreviewConfig  `yaml:"preview"`
		Assets    AssetsConfig   `yaml:"assets"`
		Fonts     FontsConfig    `yaml:"fonts"`
		Editor    EditorConfig   `yaml:"editor"`
		Export    ExportConfig   `yaml:"export"`
		Snapshot  SnapshotConfig `yaml:"snapshot"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above, alternative is to use struct
	// field name and reflection which I want to avoid for now
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
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
		// sanitize and validate what has been loaded
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

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
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
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
