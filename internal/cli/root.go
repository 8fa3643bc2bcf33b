// Package cli implements the agentd command tree.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"agentd/internal/common/fsutil"
	"agentd/internal/config"
	"agentd/internal/errs"
	"agentd/internal/logging"
	"agentd/pkg/agentd"
)

// options carries persistent flag values and the state built from them.
type options struct {
	home       string
	configPath string
	logLevel   string
	logFormat  string

	log zerolog.Logger
}

// Run executes the command line in args against stdout and stderr.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := buildRootCmd(&options{log: zerolog.Nop()})
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func buildRootCmd(o *options) *cobra.Command {
	root := &cobra.Command{
		Use:           "agentd",
		Short:         "Run local GGUF models through llama.cpp",
		Long:          "agentd opens local GGUF models by name and generates text by piping prompts to a llama.cpp executable.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&o.home, "home", "", "agentd home directory (defaults $AGENTD_HOME or ~/.agentd)")
	pf.StringVar(&o.configPath, "config", "", "extra config file overlaid on config.toml (.toml, .yaml, .json)")
	pf.StringVar(&o.logLevel, "log-level", "", "log level: off|debug|info|warn|error (defaults log.level or warn)")
	pf.StringVar(&o.logFormat, "log-format", "", "log format: console|json")

	root.AddCommand(
		newGenerateCmd(o),
		newListCmd(o),
		newDownloadCmd(),
		newInfoCmd(o),
		newServeCmd(o),
		newCompletionCmd(root),
	)
	return root
}

// paths resolves --home, falling back to $AGENTD_HOME or ~/.agentd.
func (o *options) paths() (config.Paths, error) {
	if strings.TrimSpace(o.home) == "" {
		p, err := config.DefaultPaths()
		if err != nil {
			return config.Paths{}, errs.IO(err, "locate agentd home")
		}
		return p, nil
	}
	home, err := fsutil.ExpandHome(o.home)
	if err != nil {
		return config.Paths{}, errs.IO(err, "expand %s", o.home)
	}
	return config.Paths{Home: home}, nil
}

// loadConfig reads the home configuration plus --config, if given.
func (o *options) loadConfig() (config.Paths, config.Config, error) {
	p, err := o.paths()
	if err != nil {
		return p, config.Config{}, err
	}
	cfg, err := config.Load(p)
	if err != nil {
		return p, cfg, err
	}
	if o.configPath != "" {
		path, err := fsutil.ExpandHome(o.configPath)
		if err != nil {
			return p, cfg, errs.IO(err, "expand %s", o.configPath)
		}
		if err := config.Overlay(&cfg, path); err != nil {
			return p, cfg, err
		}
	}
	return p, cfg, nil
}

// setup loads configuration, builds the logger and returns a client.
// mutate, if non-nil, adjusts the configuration before the client sees it.
func (o *options) setup(cmd *cobra.Command, mutate func(*config.Config)) (*agentd.Client, error) {
	p, cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		mutate(&cfg)
	}
	level, format := cfg.Log.Level, cfg.Log.Format
	if o.logLevel != "" {
		level = o.logLevel
	}
	if o.logFormat != "" {
		format = o.logFormat
	}
	o.log = logging.New(level, format, cmd.ErrOrStderr())
	o.log.Debug().Str("home", p.Home).Str("backend", cfg.Runtime.DefaultBackend).Str("exe", cfg.Runtime.LlamaExecutable).Msg("config loaded")
	return agentd.New(p, agentd.WithConfig(cfg), agentd.WithLogger(o.log))
}

func newCompletionCmd(root *cobra.Command) *cobra.Command {
	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error {
		return root.GenBashCompletionV2(cmd.OutOrStdout(), true)
	}})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error {
		return root.GenZshCompletion(cmd.OutOrStdout())
	}})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error {
		return root.GenFishCompletion(cmd.OutOrStdout(), true)
	}})
	completionCmd.AddCommand(&cobra.Command{Use: "powershell", Short: "PowerShell completion", RunE: func(cmd *cobra.Command, args []string) error {
		return root.GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
	}})
	return completionCmd
}
