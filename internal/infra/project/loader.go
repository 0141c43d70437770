// Package project locates plasma projects and loads their configuration.
package project

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"plasma/internal/domain"
)

type Loader struct {
	logger *zap.Logger
	lookup envLookup
}

type rawConfig struct {
	Name          string                 `mapstructure:"name"`
	Version       string                 `mapstructure:"version"`
	EnableLog     bool                   `mapstructure:"enableLog"`
	RequiredEnv   []string               `mapstructure:"requiredEnv"`
	Env           map[string]string      `mapstructure:"env"`
	Storage       rawStorageConfig       `mapstructure:"storage"`
	Observability rawObservabilityConfig `mapstructure:"observability"`
	Watch         bool                   `mapstructure:"watch"`
}

type rawStorageConfig struct {
	Path       string `mapstructure:"path"`
	Persistent bool   `mapstructure:"persistent"`
}

type rawObservabilityConfig struct {
	ListenAddress string `mapstructure:"listenAddress"`
	Metrics       bool   `mapstructure:"metrics"`
	Healthz       bool   `mapstructure:"healthz"`
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger.Named("project"), lookup: os.LookupEnv}
}

func newProjectViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("version", domain.DefaultServerVersion)
	v.SetDefault("enableLog", domain.DefaultEnableLog)
	v.SetDefault("watch", domain.DefaultWatch)
	v.SetDefault("storage.persistent", false)
	v.SetDefault("observability.listenAddress", domain.DefaultObservabilityListenAddress)
	v.SetDefault("observability.metrics", false)
	v.SetDefault("observability.healthz", false)
	return v
}

// Load reads <root>/config/application.yaml. It does not touch the process
// environment; see ApplyEnv.
func (l *Loader) Load(ctx context.Context, root string) (domain.ProjectConfig, error) {
	if err := ctx.Err(); err != nil {
		return domain.ProjectConfig{}, err
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("resolve project root: %w", err)
	}

	path := filepath.Join(absRoot, domain.DefaultConfigFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.ProjectConfig{}, fmt.Errorf("%s: %w (missing %s)", absRoot, domain.ErrNotProject, domain.DefaultConfigFile)
	}
	if err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("read config: %w", err)
	}

	expanded, missing, err := expandConfigEnv(data, l.lookup)
	if err != nil {
		return domain.ProjectConfig{}, err
	}
	if len(missing) > 0 {
		l.logger.Warn("missing environment variables in config", zap.String("path", path), zap.Strings("missing", missing))
	}

	v := newProjectViper()
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("parse config: %w", err)
	}
	var raw rawConfig
	if err := v.Unmarshal(&raw); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("decode config: %w", err)
	}
	// viper folds map keys to lower case; environment names keep theirs.
	env, err := decodeEnvSection(expanded)
	if err != nil {
		return domain.ProjectConfig{}, err
	}
	raw.Env = env

	cfg, errs := l.normalize(absRoot, raw)
	if len(errs) > 0 {
		return domain.ProjectConfig{}, fmt.Errorf("%w: %s", domain.ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return cfg, nil
}

func (l *Loader) normalize(root string, raw rawConfig) (domain.ProjectConfig, []string) {
	var errs []string

	name := strings.TrimSpace(raw.Name)
	if name == "" {
		name = DefaultServerName(root)
	}

	version := strings.TrimSpace(raw.Version)
	if version == "" {
		version = domain.DefaultServerVersion
	}
	if !semver.IsValid("v" + strings.TrimPrefix(version, "v")) {
		l.logger.Warn("server version is not semantic", zap.String("version", version))
	}

	required := make([]string, 0, len(raw.RequiredEnv))
	for _, name := range raw.RequiredEnv {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			required = append(required, trimmed)
		}
	}

	env := make(map[string]string, len(raw.Env))
	for key, value := range raw.Env {
		if strings.TrimSpace(key) == "" {
			errs = append(errs, "env keys must not be empty")
			continue
		}
		env[key] = value
	}

	storagePath := strings.TrimSpace(raw.Storage.Path)
	if storagePath != "" && !filepath.IsAbs(storagePath) {
		storagePath = filepath.Join(root, storagePath)
	}

	listen := strings.TrimSpace(raw.Observability.ListenAddress)
	if listen == "" {
		listen = domain.DefaultObservabilityListenAddress
	}
	if _, _, err := net.SplitHostPort(listen); err != nil {
		errs = append(errs, fmt.Sprintf("observability.listenAddress %q: %v", listen, err))
	}

	return domain.ProjectConfig{
		Root:        root,
		Name:        name,
		Version:     version,
		EnableLog:   raw.EnableLog,
		RequiredEnv: required,
		Env:         env,
		Storage: domain.StorageConfig{
			Path:       storagePath,
			Persistent: raw.Storage.Persistent,
		},
		Observability: domain.ObservabilityConfig{
			ListenAddress: listen,
			Metrics:       raw.Observability.Metrics,
			Healthz:       raw.Observability.Healthz,
		},
		Watch: raw.Watch,
	}, errs
}

// ApplyEnv exports cfg.Env into the process and then checks cfg.RequiredEnv,
// so a variable set in the config satisfies a requirement.
func ApplyEnv(cfg domain.ProjectConfig) error {
	keys := make([]string, 0, len(cfg.Env))
	for key := range cfg.Env {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := os.Setenv(key, cfg.Env[key]); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}

	var missing []string
	for _, name := range cfg.RequiredEnv {
		if value, ok := os.LookupEnv(name); !ok || value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrMissingEnv, strings.Join(missing, ", "))
	}
	return nil
}

// CheckLayout verifies root has the config file and component directories.
func CheckLayout(root string) error {
	var missing []string
	if info, err := os.Stat(filepath.Join(root, domain.DefaultConfigFile)); err != nil || info.IsDir() {
		missing = append(missing, domain.DefaultConfigFile)
	}
	for _, kind := range domain.Kinds {
		dir := filepath.Join(domain.DefaultAppDir, kind.Dir())
		if info, err := os.Stat(filepath.Join(root, dir)); err != nil || !info.IsDir() {
			missing = append(missing, dir)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: %w (missing %s)", root, domain.ErrNotProject, strings.Join(missing, ", "))
	}
	return nil
}

func decodeEnvSection(expanded string) (map[string]string, error) {
	var section struct {
		Env map[string]string `yaml:"env"`
	}
	if err := yaml.Unmarshal([]byte(expanded), &section); err != nil {
		return nil, fmt.Errorf("decode env: %w", err)
	}
	return section.Env, nil
}

var camelSeparators = regexp.MustCompile(`[^A-Za-z0-9]+`)

// DefaultServerName derives "<Dir> MCP Server" from the project directory.
func DefaultServerName(root string) string {
	base := filepath.Base(filepath.Clean(root))
	name := Camelize(base)
	if name == "" {
		name = "Plasma"
	}
	return name + " " + domain.DefaultServerNameSuffix
}

// Camelize turns "my-app" and "my_app" into "MyApp".
func Camelize(value string) string {
	var b strings.Builder
	for _, part := range camelSeparators.Split(strings.TrimSpace(value), -1) {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}
