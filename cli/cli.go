package cli

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/sokinpui/ghost/internal/config"
	"github.com/sokinpui/ghost/internal/llm"
	"github.com/sokinpui/ghost/internal/vcs"
	"github.com/sokinpui/ghost/model"
)

// Config holds all the command-line flag values.
type Config struct {
	Mode           string
	Policy         string
	Document       string
	Dir            string
	Directive      string
	Clipboard      bool
	Provider       string
	Model          string
	Temperature    float64
	ConfirmReplace bool
	VCS            string
	NoAnimation    bool
	History        int
	Verbose        bool
	EnvFile        string

	flags *pflag.FlagSet
}

// ParseFlags defines and parses command-line flags using pflag.
func ParseFlags(args []string, out io.Writer) (*Config, error) {
	cfg := &Config{}
	fs := pflag.NewFlagSet("ghost", pflag.ContinueOnError)
	fs.SetOutput(out)

	fs.StringVarP(&cfg.Mode, "mode", "m", string(model.ModeReplace), "Edit mode: 'replace' rewrites the whole document, 'patch' applies find/replace edits.")
	fs.StringVarP(&cfg.Policy, "policy", "p", config.DefaultPolicy, "Operational policy document sent to the model.")
	fs.StringVarP(&cfg.Document, "doc", "f", config.DefaultDocument, "Documentation file to maintain, relative to the working directory.")
	fs.StringVarP(&cfg.Dir, "dir", "C", "", "Working directory (defaults to SERVER_DIR, then the current directory).")
	fs.StringVarP(&cfg.Directive, "directive", "d", "", "Directive text. When empty it is read from stdin, the clipboard, or a prompt.")
	fs.BoolVarP(&cfg.Clipboard, "clipboard", "c", false, "Read the directive from the clipboard.")
	fs.StringVar(&cfg.Provider, "provider", string(llm.ProviderGemini), "Model provider: gemini, anthropic or openai.")
	fs.StringVar(&cfg.Model, "model", "", "Model name (defaults per provider).")
	fs.Float64Var(&cfg.Temperature, "temperature", 0.1, "Sampling temperature.")
	fs.BoolVar(&cfg.ConfirmReplace, "confirm-replace", true, "Ask before keeping a replace-mode rewrite.")
	fs.StringVar(&cfg.VCS, "vcs", string(vcs.BackendGit), "Version control backend: 'git' (CLI) or 'go-git'.")
	fs.BoolVar(&cfg.NoAnimation, "no-animation", false, "Disable the loading spinner.")
	fs.IntVar(&cfg.History, "history", 0, "Print the last N runs from the journal and exit.")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable debug logging.")
	fs.StringVar(&cfg.EnvFile, "env-file", config.DefaultEnvFile, "dotenv file holding API keys and SERVER_DIR.")

	fs.Usage = func() {
		fmt.Fprintln(out, "Usage: ghost [flags]")
		fmt.Fprintln(out, "\nG.H.O.S.T. maintains a documentation file from free-text directives.")
		fmt.Fprintln(out, "\nExample: ghost --mode patch -d \"document the new backup schedule\"")
		fmt.Fprintln(out, "\nFlags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if cfg.History < 0 {
		return nil, fmt.Errorf("--history must not be negative")
	}

	cfg.flags = fs
	return cfg, nil
}

func (c *Config) changed(name string) bool {
	return c.flags != nil && c.flags.Changed(name)
}

// Apply copies the flags given on the command line onto cfg. Flags left at
// their defaults do not override lower configuration layers.
func (c *Config) Apply(cfg *config.Config) {
	if c.changed("mode") {
		cfg.Mode = model.Mode(c.Mode)
	}
	if c.changed("policy") {
		cfg.Policy = c.Policy
	}
	if c.changed("doc") {
		cfg.Document = c.Document
	}
	if c.changed("provider") {
		cfg.Provider = llm.Provider(c.Provider)
		if !c.changed("model") {
			cfg.Model = ""
		}
	}
	if c.changed("model") {
		cfg.Model = c.Model
	}
	if c.changed("temperature") {
		cfg.Temperature = c.Temperature
	}
	if c.changed("confirm-replace") {
		cfg.ConfirmReplace = c.ConfirmReplace
	}
	if c.changed("vcs") {
		cfg.VCS = vcs.Backend(c.VCS)
	}

	cfg.Directive = c.Directive
	cfg.Clipboard = c.Clipboard
	cfg.NoAnimation = c.NoAnimation
	cfg.History = c.History
	cfg.Verbose = c.Verbose
}
