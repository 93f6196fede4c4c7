package platform

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/quill/pkg/adapters/fs"
	"github.com/aretw0/quill/pkg/outline"
)

// ConfigFile is the optional project file at the project root.
const ConfigFile = "quill.yaml"

// DefaultReadTimeTolerance is the drift, in minutes, tolerated by default.
const DefaultReadTimeTolerance = 1

// Config is the content of quill.yaml.
type Config struct {
	Posts             string `yaml:"posts"`
	Assets            string `yaml:"assets"`
	WordsPerMinute    int    `yaml:"words_per_minute"`
	ReadTimeTolerance int    `yaml:"readtime_tolerance"`
	// CheckRemote is accepted for forward compatibility. Remote URLs are never fetched.
	CheckRemote bool `yaml:"check_remote"`
}

// DefaultConfig returns the configuration used when quill.yaml is absent.
func DefaultConfig() Config {
	return Config{
		Posts:             ".",
		Assets:            ".",
		WordsPerMinute:    outline.DefaultWordsPerMinute,
		ReadTimeTolerance: DefaultReadTimeTolerance,
	}
}

// LoadConfig reads quill.yaml from root. A missing file yields DefaultConfig.
// Unknown keys are rejected so typos do not pass silently.
func LoadConfig(root string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filepath.Join(root, ConfigFile))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return DefaultConfig(), fmt.Errorf("failed to parse %s: %w", ConfigFile, err)
	}

	if cfg.Posts == "" {
		cfg.Posts = "."
	}
	if cfg.Assets == "" {
		cfg.Assets = "."
	}
	if cfg.WordsPerMinute <= 0 {
		return cfg, fmt.Errorf("%s: words_per_minute must be positive, got %d", ConfigFile, cfg.WordsPerMinute)
	}
	if cfg.ReadTimeTolerance < 0 {
		return cfg, fmt.Errorf("%s: readtime_tolerance must not be negative, got %d", ConfigFile, cfg.ReadTimeTolerance)
	}
	return cfg, nil
}

// WriteConfig writes cfg to root/quill.yaml, refusing to overwrite.
func WriteConfig(root string, cfg Config) error {
	path := filepath.Join(root, ConfigFile)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// Settings is the effective project configuration: quill.yaml merged with
// options, with directories made absolute.
type Settings struct {
	Root              string `json:"root"`
	PostsDir          string `json:"posts_dir"`
	AssetsDir         string `json:"assets_dir"`
	SystemDir         string `json:"system_dir"`
	WordsPerMinute    int    `json:"words_per_minute"`
	ReadTimeTolerance int    `json:"readtime_tolerance"`
	ReadOnly          bool   `json:"read_only"`
	MustExist         bool   `json:"must_exist"`
}

// Resolve loads quill.yaml from root and applies opts on top of it.
func Resolve(root string, opts ...Option) (Settings, error) {
	return resolve(root, apply(opts))
}

func resolve(root string, o *options) (Settings, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Settings{}, err
	}
	cfg, err := LoadConfig(abs)
	if err != nil {
		return Settings{}, err
	}

	s := Settings{
		Root:              abs,
		PostsDir:          cfg.Posts,
		AssetsDir:         cfg.Assets,
		SystemDir:         fs.DefaultSystemDir,
		WordsPerMinute:    cfg.WordsPerMinute,
		ReadTimeTolerance: cfg.ReadTimeTolerance,
		ReadOnly:          o.readOnly,
		MustExist:         o.mustExist,
	}
	if o.postsDir != "" {
		s.PostsDir = o.postsDir
	}
	if o.assetsDir != "" {
		s.AssetsDir = o.assetsDir
	}
	if o.systemDir != "" {
		s.SystemDir = o.systemDir
	}
	if o.wordsPerMinute > 0 {
		s.WordsPerMinute = o.wordsPerMinute
	}
	if o.readTimeTolerance != nil {
		s.ReadTimeTolerance = *o.readTimeTolerance
	}

	s.PostsDir = within(abs, s.PostsDir)
	s.AssetsDir = within(abs, s.AssetsDir)
	return s, nil
}

func within(root, dir string) string {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(root, dir)
}
