package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/dash-build/internal/domain/npm"
)

// Config describes the project layout and the tools the pipeline drives.
// Relative paths are resolved against ProjectRoot.
type Config struct {
	// ProjectRoot is the folder holding package.json.
	ProjectRoot string `yaml:"project_root"`
	// DepsFolder receives the copied dependency bundles.
	DepsFolder string `yaml:"deps_folder"`
	// BuildFolder is where the bundler writes its output.
	BuildFolder string `yaml:"build_folder"`
	// ModulesFolder is the installed package tree.
	ModulesFolder string `yaml:"modules_folder"`
	// Manifest is the package descriptor.
	Manifest string `yaml:"manifest"`
	// LockFile holds the resolved dependency versions.
	LockFile string `yaml:"lock_file"`
	// Template is rendered into InitOutput after bundling.
	Template string `yaml:"template"`
	// InitOutput is the rendered version-metadata file.
	InitOutput string `yaml:"init_output"`
	// DigestFile receives the bundle digest.
	DigestFile string `yaml:"digest_file"`
	// PackageManager is the executable used for install and scripts.
	PackageManager string `yaml:"package_manager"`
	// InstallArgs is the reproducible-install command line.
	InstallArgs []string `yaml:"install_args"`
	// DevScript is the package script for development builds.
	DevScript string `yaml:"dev_script"`
	// ProdScript is the package script for minified builds.
	ProdScript string `yaml:"prod_script"`
	// CDNBaseURL serves historical bundle versions.
	CDNBaseURL string `yaml:"cdn_base_url"`
	// Timeout bounds each CDN request; zero means no limit.
	Timeout time.Duration `yaml:"timeout"`
	// CopySpec lists the bundles copied out of ModulesFolder, in order.
	CopySpec npm.CopySpec `yaml:"copy_spec"`
}

const (
	// DefaultConfigFilename is looked up in the working directory when --config is not set.
	DefaultConfigFilename = "dash-build.yaml"

	// DefaultFilePermissions is used when saving the configuration.
	DefaultFilePermissions = 0o600

	// ModeLocal selects the development build script.
	ModeLocal = "local"

	defaultDepsFolder     = "../deps"
	defaultBuildFolder    = "build"
	defaultModulesFolder  = "node_modules"
	defaultManifest       = "package.json"
	defaultLockFile       = "package-lock.json"
	defaultTemplate       = "init.template"
	defaultInitOutput     = "../_dash_renderer.py"
	defaultDigestFile     = "digest.json"
	defaultPackageManager = "npm"
	defaultDevScript      = "build:dev"
	defaultProdScript     = "build:js"
	defaultCDNBaseURL     = "https://unpkg.com"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errProjectRootRequired is returned when no project root is configured.
	errProjectRootRequired = errors.New("project root must be provided")
	// errInvalidCopyEntry is returned for copy spec entries without a name or filename.
	errInvalidCopyEntry = errors.New("copy spec entry needs a name and a filename")
)

// Default returns the dash-renderer layout rooted at projectRoot.
func Default(projectRoot string) *Config {
	cfg := &Config{ProjectRoot: projectRoot}
	applyDefaults(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates it.
// A file without project_root describes the folder it lives in.
func Load(path string) (*Config, error) {
	return loadWithRoot(path, "")
}

// loadWithRoot reads path like Load, but a non-empty projectRoot replaces
// the configured one before validation.
func loadWithRoot(path, projectRoot string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	cfg, err := read(path)
	if err != nil {
		return nil, err
	}

	switch {
	case projectRoot != "":
		cfg.ProjectRoot = projectRoot
	case cfg.ProjectRoot == "":
		cfg.ProjectRoot = filepath.Dir(path)
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault loads path when it exists. A missing file at the default
// location yields Default(projectRoot); a missing explicit path is an error.
func LoadOrDefault(path, projectRoot string) (*Config, error) {
	explicit := path != "" && path != DefaultConfigFilename
	if path == "" {
		path = DefaultConfigFilename
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && !explicit {
		if projectRoot == "" {
			projectRoot = "."
		}

		cfg := Default(projectRoot)

		return cfg, Validate(cfg)
	}

	return loadWithRoot(path, projectRoot)
}

func read(path string) (*Config, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err = yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	// A relative project root is relative to the config file itself.
	if cfg.ProjectRoot != "" && !filepath.IsAbs(cfg.ProjectRoot) {
		cfg.ProjectRoot = filepath.Join(filepath.Dir(path), cfg.ProjectRoot)
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks the settings for required fields and formatting.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ProjectRoot == "" {
		return errProjectRootRequired
	}

	applyDefaults(cfg)

	if _, err := url.ParseRequestURI(cfg.CDNBaseURL); err != nil {
		return fmt.Errorf("invalid CDN base URL: %w", err)
	}

	for i, entry := range cfg.CopySpec {
		if entry.Name == "" || entry.Filename == "" {
			return fmt.Errorf("copy_spec[%d]: %w", i, errInvalidCopyEntry)
		}
	}

	return nil
}

func applyDefaults(cfg *Config) {
	setDefault(&cfg.DepsFolder, defaultDepsFolder)
	setDefault(&cfg.BuildFolder, defaultBuildFolder)
	setDefault(&cfg.ModulesFolder, defaultModulesFolder)
	setDefault(&cfg.Manifest, defaultManifest)
	setDefault(&cfg.LockFile, defaultLockFile)
	setDefault(&cfg.Template, defaultTemplate)
	setDefault(&cfg.InitOutput, defaultInitOutput)
	setDefault(&cfg.DigestFile, defaultDigestFile)
	setDefault(&cfg.PackageManager, defaultPackageManager)
	setDefault(&cfg.DevScript, defaultDevScript)
	setDefault(&cfg.ProdScript, defaultProdScript)
	setDefault(&cfg.CDNBaseURL, defaultCDNBaseURL)

	if len(cfg.InstallArgs) == 0 {
		cfg.InstallArgs = []string{"ci"}
	}

	if cfg.CopySpec == nil {
		cfg.CopySpec = npm.RendererCopySpec()
	}
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

// Path resolves p against the project root.
func (c *Config) Path(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}

	return filepath.Join(c.ProjectRoot, p)
}

// DepsDir is the resolved dependency-output folder.
func (c *Config) DepsDir() string { return c.Path(c.DepsFolder) }

// BuildDir is the resolved bundler-output folder.
func (c *Config) BuildDir() string { return c.Path(c.BuildFolder) }

// ModulesDir is the resolved installed-package tree.
func (c *Config) ModulesDir() string { return c.Path(c.ModulesFolder) }

// ManifestPath is the resolved package.json.
func (c *Config) ManifestPath() string { return c.Path(c.Manifest) }

// LockPath is the resolved lock file.
func (c *Config) LockPath() string { return c.Path(c.LockFile) }

// TemplatePath is the resolved init template.
func (c *Config) TemplatePath() string { return c.Path(c.Template) }

// InitOutputPath is the resolved rendered template target.
func (c *Config) InitOutputPath() string { return c.Path(c.InitOutput) }

// DigestPath is the resolved digest file.
func (c *Config) DigestPath() string { return c.Path(c.DigestFile) }

// BuildScript picks the package script for the build mode.
func (c *Config) BuildScript(mode string) string {
	if mode == ModeLocal {
		return c.DevScript
	}

	return c.ProdScript
}

// ExtraURL is the CDN location of a historical bundle version.
func (c *Config) ExtraURL(name, version, filename string) string {
	return strings.TrimRight(c.CDNBaseURL, "/") + "/" + name + "@" + version + "/umd/" + filename
}
