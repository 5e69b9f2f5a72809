package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/n0roo/richness-kit/internal/profile"
	"github.com/n0roo/richness-kit/internal/richness"
	"gopkg.in/yaml.v3"
)

// ConfigVersion is written into new config files
const ConfigVersion = "1"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config represents richness.yaml
type Config struct {
	Version    string        `yaml:"version"`
	Domains    DomainSet     `yaml:"domains"`
	Overall    OverallConfig `yaml:"overall"`
	Duplicates string        `yaml:"duplicates" validate:"oneof=last first reject"`
	Workers    int           `yaml:"workers" validate:"gte=1,lte=6"`
	Output     OutputConfig  `yaml:"output"`
	Viewer     ViewerConfig  `yaml:"viewer"`
	Log        LogConfig     `yaml:"log"`

	// 로드된 파일 경로 (상대 경로 기준)
	path string
}

// DomainSet holds one configuration per behavioural domain
type DomainSet struct {
	Cafe       DomainConfig `yaml:"cafe"`
	Ping       DomainConfig `yaml:"ping"`
	Restaurant DomainConfig `yaml:"restaurant"`
}

// Get returns a domain's configuration
func (s *DomainSet) Get(d richness.Domain) *DomainConfig {
	switch d {
	case richness.DomainCafe:
		return &s.Cafe
	case richness.DomainPing:
		return &s.Ping
	default:
		return &s.Restaurant
	}
}

// DomainConfig groups a domain's inputs and scoring scheme
type DomainConfig struct {
	Profile     ProfileConfig    `yaml:"profile"`
	Assignments AssignmentConfig `yaml:"assignments"`
	Scoring     ScoringConfig    `yaml:"scoring"`
}

// ProfileConfig locates a cluster profile table
type ProfileConfig struct {
	Path          string `yaml:"path" validate:"required"`
	Delimiter     string `yaml:"delimiter" validate:"len=1"`
	Decimal       string `yaml:"decimal" validate:"oneof=. ,"`
	Layout        string `yaml:"layout" validate:"oneof=rows columns"`
	ClusterColumn string `yaml:"cluster_column,omitempty"`
}

// AssignmentConfig locates a device→cluster table
type AssignmentConfig struct {
	Path              string `yaml:"path" validate:"required"`
	Delimiter         string `yaml:"delimiter" validate:"len=1"`
	IDColumn          string `yaml:"id_column,omitempty"`
	ClusterColumn     string `yaml:"cluster_column,omitempty"`
	IDFromFirstColumn bool   `yaml:"id_from_first_column"`
}

// ScoringConfig is a domain's transform set and weights
type ScoringConfig struct {
	ScoreColumn  string                   `yaml:"score_column" validate:"required"`
	Transforms   []string                 `yaml:"transforms,omitempty"`
	KeepOriginal bool                     `yaml:"keep_original,omitempty"`
	Weights      []richness.FeatureWeight `yaml:"weights" validate:"required,min=1,dive"`
}

// OverallConfig holds the cross-domain weights and missing-score policy
type OverallConfig struct {
	Weights       OverallWeights `yaml:"weights"`
	MissingPolicy string         `yaml:"missing_policy" validate:"oneof=zero rescale"`
}

// OverallWeights are the per-domain weights of the final score
type OverallWeights struct {
	Cafe       float64 `yaml:"cafe" validate:"gte=0"`
	Ping       float64 `yaml:"ping" validate:"gte=0"`
	Restaurant float64 `yaml:"restaurant" validate:"gte=0"`
}

// OutputConfig holds output locations
type OutputConfig struct {
	Path        string `yaml:"path" validate:"required"`
	ScoreDir    string `yaml:"score_dir,omitempty"`
	MetricsFile string `yaml:"metrics_file,omitempty"`
}

// ViewerConfig holds viewer settings
type ViewerConfig struct {
	Personas string `yaml:"personas,omitempty"`
	MaxRows  int    `yaml:"max_rows" validate:"gte=1"`
	Addr     string `yaml:"addr,omitempty"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Mode string `yaml:"mode" validate:"oneof=dev prod"`
}

// Load reads a config file. An empty path falls back to RICHNESS_CONFIG,
// then to the nearest richness.yaml; when none exists the built-in
// defaults are used. An explicitly named file must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfig)
		explicit = path != ""
	}
	if !explicit {
		path = FindConfig()
	}

	cfg := Default()
	if path == "" {
		applyEnv(cfg)
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if explicit {
				return nil, &richness.MissingInputError{Path: path}
			}
			applyEnv(cfg)
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("설정 파일 읽기 실패: %w", err)
	}

	// 기본값 위에 덮어쓰기
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("설정 파일 파싱 실패: %w", err)
	}
	cfg.path = path
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as YAML
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("디렉토리 생성 실패: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("설정 직렬화 실패: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("설정 파일 저장 실패: %w", err)
	}
	return nil
}

// Path returns the file the config was loaded from, if any
func (c *Config) Path() string {
	return c.path
}

// Validate checks struct tags plus the cross-field rules
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s (%s=%s)", fe.Namespace(), fe.Tag(), fe.Param()))
			}
			return fmt.Errorf("잘못된 설정: %s", strings.Join(msgs, ", "))
		}
		return fmt.Errorf("잘못된 설정: %w", err)
	}

	w := c.Overall.Weights
	if w.Cafe+w.Ping+w.Restaurant <= 0 {
		return errors.New("잘못된 설정: overall.weights 합이 0보다 커야 합니다")
	}

	for _, d := range richness.Domains() {
		dc := c.Domains.Get(d)
		if dc.Profile.Delimiter == dc.Profile.Decimal {
			return fmt.Errorf("잘못된 설정: %s 프로파일 delimiter와 decimal이 같습니다 (%q)", d, dc.Profile.Delimiter)
		}
		if profile.IsBuiltin(dc.Profile.Path) && !profile.HasBuiltin(dc.Profile.Path) {
			return fmt.Errorf("잘못된 설정: %s 내장 프로파일 %q 없음 (사용 가능: %s)", d, dc.Profile.Path, strings.Join(profile.Builtins(), ", "))
		}

		seen := make(map[string]bool)
		for _, fw := range dc.Scoring.Weights {
			if seen[fw.Feature] {
				return fmt.Errorf("잘못된 설정: %s 가중치에 피처 %q 중복", d, fw.Feature)
			}
			seen[fw.Feature] = true
		}
	}
	return nil
}

// ResolvePath makes a relative input/output path absolute against the data
// directory: RICHNESS_DATA_DIR, else the config file's directory, else cwd.
// Shipped profile paths are returned as is.
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || profile.IsBuiltin(p) {
		return p
	}
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return filepath.Join(dir, p)
	}
	if c.path != "" {
		return filepath.Join(filepath.Dir(c.path), p)
	}
	return p
}

func applyEnv(cfg *Config) {
	if mode := os.Getenv(EnvLogMode); mode != "" {
		cfg.Log.Mode = mode
	}
	if out := os.Getenv(EnvOutput); out != "" {
		cfg.Output.Path = out
	}
}
