// Package config assembles ghost's settings from defaults, a .env file, the
// environment, the project file and command-line overrides, in that order.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"

	"github.com/sokinpui/ghost/internal/fs"
	"github.com/sokinpui/ghost/internal/llm"
	"github.com/sokinpui/ghost/internal/vcs"
	"github.com/sokinpui/ghost/model"
)

var (
	// ErrMissingCredential means the selected provider has no API key.
	ErrMissingCredential = errors.New("missing credential")
	// ErrMissingFile means the policy or the document does not exist.
	ErrMissingFile = errors.New("required file not found")
)

const (
	DefaultPolicy   = "OPERATIONAL_MANUAL.md"
	DefaultDocument = "README.md"
	ProjectFile     = ".ghost.yaml"
	DefaultEnvFile  = ".env"
)

// Credentials holds one API key per provider.
type Credentials struct {
	Gemini    string `env:"GEMINI_API_KEY"`
	Anthropic string `env:"ANTHROPIC_API_KEY"`
	OpenAI    string `env:"OPENAI_API_KEY"`
}

// For returns the key for provider p.
func (c Credentials) For(p llm.Provider) string {
	switch p {
	case llm.ProviderAnthropic:
		return c.Anthropic
	case llm.ProviderOpenAI:
		return c.OpenAI
	default:
		return c.Gemini
	}
}

// Config is everything a run needs. It is built once in main and passed down.
type Config struct {
	// Dir is the working directory holding the document and the repository.
	Dir string
	// Policy is the operational policy document given to the model.
	Policy string
	// Document is the file being maintained.
	Document string

	Mode           model.Mode
	Provider       llm.Provider
	Model          string
	Temperature    float64
	ConfirmReplace bool
	VCS            vcs.Backend
	Credentials    Credentials

	// Directive, when set, is used instead of asking the operator.
	Directive   string
	Clipboard   bool
	NoAnimation bool
	// History, when positive, prints that many journal entries instead of running.
	History int
	Verbose bool
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Dir:            ".",
		Policy:         DefaultPolicy,
		Document:       DefaultDocument,
		Mode:           model.ModeReplace,
		Provider:       llm.ProviderGemini,
		Temperature:    0.1,
		ConfirmReplace: true,
		VCS:            vcs.BackendGit,
	}
}

// environment is the set of variables read from .env and the process environment.
type environment struct {
	Credentials Credentials
	ServerDir   string `env:"SERVER_DIR"`
	Provider    string `env:"GHOST_PROVIDER"`
	Model       string `env:"GHOST_MODEL"`
}

// fileConfig mirrors .ghost.yaml. Absent keys leave the lower layers alone.
type fileConfig struct {
	Policy         *string  `yaml:"policy"`
	Document       *string  `yaml:"document"`
	Mode           *string  `yaml:"mode"`
	Provider       *string  `yaml:"provider"`
	Model          *string  `yaml:"model"`
	Temperature    *float64 `yaml:"temperature"`
	ConfirmReplace *bool    `yaml:"confirm_replace"`
	VCS            *string  `yaml:"vcs"`
}

// LoadOptions controls where Load looks.
type LoadOptions struct {
	// EnvFile is the dotenv file to read. A missing file is ignored.
	EnvFile string
	// Lookuper supplies environment variables; nil means the process environment.
	Lookuper envconfig.Lookuper
	// Dir overrides SERVER_DIR when non-empty.
	Dir string
	// PolicyDirs are searched for a relative policy path after Dir.
	PolicyDirs []string
	// Override applies the command-line layer.
	Override func(*Config)
}

// Load builds a Config from every layer and resolves its paths. It does not validate.
func Load(ctx context.Context, opts LoadOptions) (Config, error) {
	cfg := Default()

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	dotenv, err := godotenv.Read(envFile)
	if err != nil {
		if !errors.Is(err, iofs.ErrNotExist) {
			return Config{}, fmt.Errorf("reading %s: %w", envFile, err)
		}
		dotenv = map[string]string{}
	}

	lookuper := opts.Lookuper
	if lookuper == nil {
		lookuper = envconfig.OsLookuper()
	}
	var env environment
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &env,
		Lookuper: envconfig.MultiLookuper(lookuper, envconfig.MapLookuper(dotenv)),
	}); err != nil {
		return Config{}, fmt.Errorf("processing environment: %w", err)
	}
	cfg.applyEnv(env)

	if opts.Dir != "" {
		cfg.Dir = opts.Dir
	}
	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return Config{}, fmt.Errorf("resolving working directory: %w", err)
	}
	cfg.Dir = dir

	if err := cfg.applyFile(filepath.Join(cfg.Dir, ProjectFile)); err != nil {
		return Config{}, err
	}

	if opts.Override != nil {
		opts.Override(&cfg)
	}
	if cfg.Model == "" {
		cfg.Model = llm.DefaultModel(cfg.Provider)
	}

	if err := cfg.resolvePaths(opts.PolicyDirs); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(env environment) {
	c.Credentials = env.Credentials
	if env.ServerDir != "" {
		c.Dir = env.ServerDir
	}
	if env.Provider != "" {
		c.Provider = llm.Provider(env.Provider)
	}
	if env.Model != "" {
		c.Model = env.Model
	}
}

func (c *Config) applyFile(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, iofs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var fc fileConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	if fc.Policy != nil {
		c.Policy = *fc.Policy
	}
	if fc.Document != nil {
		c.Document = *fc.Document
	}
	if fc.Mode != nil {
		c.Mode = model.Mode(*fc.Mode)
	}
	if fc.Provider != nil {
		c.Provider = llm.Provider(*fc.Provider)
	}
	if fc.Model != nil {
		c.Model = *fc.Model
	}
	if fc.Temperature != nil {
		c.Temperature = *fc.Temperature
	}
	if fc.ConfirmReplace != nil {
		c.ConfirmReplace = *fc.ConfirmReplace
	}
	if fc.VCS != nil {
		c.VCS = vcs.Backend(*fc.VCS)
	}
	return nil
}

// resolvePaths makes Document absolute under Dir, and Policy absolute under
// Dir or the first of policyDirs where it exists.
func (c *Config) resolvePaths(policyDirs []string) error {
	docs, err := fs.NewPathResolver(c.Dir)
	if err != nil {
		return err
	}
	c.Document = docs.Resolve(c.Document)

	policies, err := fs.NewPathResolver(append([]string{c.Dir}, policyDirs...)...)
	if err != nil {
		return err
	}
	c.Policy = policies.Resolve(c.Policy)
	return nil
}

// Validate checks that the run can start: a known mode, provider and VCS backend,
// a credential for the provider, and both input files on disk.
func (c Config) Validate() error {
	switch c.Mode {
	case model.ModeReplace, model.ModePatch:
	default:
		return fmt.Errorf("invalid mode %q: must be %q or %q", c.Mode, model.ModeReplace, model.ModePatch)
	}

	switch c.Provider {
	case llm.ProviderGemini, llm.ProviderAnthropic, llm.ProviderOpenAI:
	default:
		return fmt.Errorf("invalid provider %q", c.Provider)
	}

	switch c.VCS {
	case vcs.BackendGit, vcs.BackendGoGit:
	default:
		return fmt.Errorf("invalid vcs backend %q: must be %q or %q", c.VCS, vcs.BackendGit, vcs.BackendGoGit)
	}

	if c.Credentials.For(c.Provider) == "" {
		return fmt.Errorf("%w: set %s in the environment or a .env file", ErrMissingCredential, credentialVar(c.Provider))
	}

	for _, p := range []string{c.Policy, c.Document} {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			return fmt.Errorf("%w: %s", ErrMissingFile, p)
		}
	}
	return nil
}

func credentialVar(p llm.Provider) string {
	switch p {
	case llm.ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case llm.ProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}

// LLMSettings returns the generator settings for c.
func (c Config) LLMSettings() llm.Settings {
	return llm.Settings{
		Provider:    c.Provider,
		Model:       c.Model,
		APIKey:      c.Credentials.For(c.Provider),
		Temperature: c.Temperature,
	}
}
