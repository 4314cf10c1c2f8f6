// Package cli provides the command-line interface with injectable io.Writer for testing.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmcdonald/docdeploy/internal/adapters/execgit"
	"github.com/jmcdonald/docdeploy/internal/adapters/osfs"
	"github.com/jmcdonald/docdeploy/internal/adapters/tuisvc"
	"github.com/jmcdonald/docdeploy/internal/config"
	"github.com/jmcdonald/docdeploy/internal/deploy"
	"github.com/jmcdonald/docdeploy/internal/logging"
	"github.com/jmcdonald/docdeploy/internal/ports"
	"github.com/jmcdonald/docdeploy/internal/tui"
)

// errDeployFailed signals that the summary was printed and at least one
// repository failed.
var errDeployFailed = errors.New("one or more repositories failed")

// ConfigService provides configuration operations for the CLI.
type ConfigService interface {
	Load() (*config.Config, error)
	LoadFrom(path string) (*config.Config, error)
	Save(cfg *config.Config) error
	SaveTo(cfg *config.Config, path string) error
	ConfigPath() (string, error)
	DefaultConfig() *config.Config
}

// TUILauncher runs the interactive UI until the user quits.
type TUILauncher func(svc ports.TUIService, opts ports.TUIDeployOptions) error

// CLI represents the command-line interface with injectable dependencies.
type CLI struct {
	Out     io.Writer // Standard output
	Err     io.Writer // Standard error
	Version string    // Application version
	Args    []string  // Command arguments (like os.Args)

	// Injectable dependencies (nil means use defaults)
	ConfigSvc ConfigService
	FS        ports.FileSystem
	Git       ports.GitClient
	LaunchTUI TUILauncher

	// Color functions (can be disabled for testing)
	green  func(a ...interface{}) string
	yellow func(a ...interface{}) string
	blue   func(a ...interface{}) string
	gray   func(a ...interface{}) string
	red    func(a ...interface{}) string
}

// New creates a new CLI with default settings.
func New(version string) *CLI {
	return &CLI{
		Out:     os.Stdout,
		Err:     os.Stderr,
		Version: version,
		Args:    os.Args,
		green:   color.New(color.FgGreen).SprintFunc(),
		yellow:  color.New(color.FgYellow, color.Bold).SprintFunc(),
		blue:    color.New(color.FgBlue).SprintFunc(),
		gray:    color.New(color.FgHiBlack).SprintFunc(),
		red:     color.New(color.FgRed).SprintFunc(),
	}
}

// NewForTesting creates a CLI configured for testing (no colors, captured output).
func NewForTesting(out, errOut io.Writer, args []string) *CLI {
	c := &CLI{
		Out:     out,
		Err:     errOut,
		Version: "test",
		Args:    args,
	}
	c.disableColor()
	return c
}

func (c *CLI) disableColor() {
	noColor := func(a ...interface{}) string { return fmt.Sprint(a...) }
	c.green = noColor
	c.yellow = noColor
	c.blue = noColor
	c.gray = noColor
	c.red = noColor
}

// defaultConfigService wraps the config package functions.
type defaultConfigService struct{}

func (d *defaultConfigService) Load() (*config.Config, error)                { return config.Load() }
func (d *defaultConfigService) LoadFrom(path string) (*config.Config, error) { return config.LoadFrom(path) }
func (d *defaultConfigService) Save(cfg *config.Config) error                { return cfg.Save() }
func (d *defaultConfigService) SaveTo(cfg *config.Config, path string) error { return cfg.SaveTo(path) }
func (d *defaultConfigService) ConfigPath() (string, error)                  { return config.ConfigPath() }
func (d *defaultConfigService) DefaultConfig() *config.Config                { return config.DefaultConfig() }

// Helper methods to get the service or default
func (c *CLI) configSvc() ConfigService {
	if c.ConfigSvc != nil {
		return c.ConfigSvc
	}
	return &defaultConfigService{}
}

func (c *CLI) fileSystem() ports.FileSystem {
	if c.FS != nil {
		return c.FS
	}
	return osfs.New()
}

func (c *CLI) gitClient(logger *slog.Logger) ports.GitClient {
	if c.Git != nil {
		return c.Git
	}
	return execgit.New(execgit.WithLogger(logger))
}

func (c *CLI) launcher() TUILauncher {
	if c.LaunchTUI != nil {
		return c.LaunchTUI
	}
	return tui.Run
}

// options holds the flag values shared by the deploy and ui commands.
type options struct {
	configPath string
	verbose    bool
	logFile    string
	noColor    bool

	source     string
	targetDir  string
	targetName string
	message    string
	workDir    string

	commit bool
	push   bool
	dryRun bool
}

// Run executes the CLI with the configured arguments and returns the exit code.
func (c *CLI) Run() int {
	root := c.rootCommand()
	if len(c.Args) > 1 {
		root.SetArgs(c.Args[1:])
	} else {
		root.SetArgs([]string{})
	}
	root.SetOut(c.Out)
	root.SetErr(c.Err)

	if err := root.Execute(); err != nil {
		if !errors.Is(err, errDeployFailed) {
			fmt.Fprintln(c.Err, c.red(fmt.Sprintf("Error: %v", err)))
		}
		return 1
	}
	return 0
}

func (c *CLI) rootCommand() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:   "docdeploy <repo-list>",
		Short: "Deploy the review-docs command file to git repositories",
		Long: `docdeploy copies a documentation file (by default .claude/commands/review-docs.md)
into every repository named in a list file, optionally committing and pushing it.

The list holds one local path or remote URL per line. Blank lines and lines
starting with # are ignored. Remote repositories are cloned into a temporary
directory first.`,
		Example: `  docdeploy repos.txt
  docdeploy repos.txt --commit --push
  docdeploy repos.txt --dry-run`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if o.noColor {
				c.disableColor()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDeploy(cmd.Flags(), args[0], o)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "config file (default ~/.docdeploy/config.yaml)")
	pf.BoolVarP(&o.verbose, "verbose", "v", false, "log git commands and decisions to stderr")
	pf.StringVar(&o.logFile, "log-file", "", "append JSON logs to this file")
	pf.BoolVar(&o.noColor, "no-color", false, "disable colored output")
	pf.StringVar(&o.source, "source", "", "documentation file to deploy")
	pf.StringVar(&o.targetDir, "target-dir", "", "directory inside each repository")
	pf.StringVar(&o.targetName, "target-name", "", "file name inside the target directory")
	pf.StringVarP(&o.message, "message", "m", "", "commit message")
	pf.StringVar(&o.workDir, "work-dir", "", "keep clones of remote repositories here instead of a temporary directory")
	pf.BoolVar(&o.commit, "commit", false, "commit the changes to git")
	pf.BoolVar(&o.push, "push", false, "push the changes to the remote (implies --commit)")
	pf.BoolVar(&o.dryRun, "dry-run", false, "show what would be done without making changes")

	root.AddCommand(
		c.initCommand(o),
		c.uiCommand(o),
		c.versionCommand(),
	)
	return root
}

func (c *CLI) initCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.InitConfig(o.configPath)
		},
	}
}

func (c *CLI) uiCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ui <repo-list>",
		Short: "Launch interactive TUI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runUI(cmd.Flags(), args[0], o)
		},
	}
}

func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(c.Out, "docdeploy v%s\n", c.Version)
		},
	}
}

// InitConfig creates the default config file at path, or the default location.
func (c *CLI) InitConfig(path string) error {
	svc := c.configSvc()
	cfg := svc.DefaultConfig()
	var err error
	if path == "" {
		if path, err = svc.ConfigPath(); err != nil {
			return err
		}
		err = svc.Save(cfg)
	} else {
		err = svc.SaveTo(cfg, path)
	}
	if err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Fprintf(c.Out, "%s Created config at %s\n", c.green("✓"), path)
	return nil
}

// settings loads the config file and applies flags that were set explicitly.
func (c *CLI) settings(flags *pflag.FlagSet, o *options) (*config.Config, error) {
	svc := c.configSvc()
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = svc.LoadFrom(o.configPath)
	} else {
		cfg, err = svc.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	overrides := []struct {
		flag  string
		value string
		dst   *string
	}{
		{"source", o.source, &cfg.Source},
		{"target-dir", o.targetDir, &cfg.TargetDir},
		{"target-name", o.targetName, &cfg.TargetName},
		{"message", o.message, &cfg.CommitMessage},
		{"work-dir", o.workDir, &cfg.WorkDir},
	}
	for _, ov := range overrides {
		if flags.Changed(ov.flag) {
			*ov.dst = ov.value
		}
	}
	cfg.Source = config.ExpandPath(cfg.Source)
	return cfg, nil
}

func (o *options) deployOptions(cfg *config.Config) deploy.Options {
	return deploy.Options{
		Source:        cfg.Source,
		TargetDir:     cfg.TargetDir,
		TargetName:    cfg.TargetName,
		CommitMessage: cfg.CommitMessage,
		WorkDir:       cfg.WorkDir,
		Commit:        o.commit || o.push,
		Push:          o.push,
		DryRun:        o.dryRun,
	}
}

// logger builds the diagnostic logger. The returned func closes the log file.
func (c *CLI) logger(o *options) (*slog.Logger, func(), error) {
	opts := logging.Options{Console: c.Err, Verbose: o.verbose}
	closeFn := func() {}
	if o.logFile != "" {
		f, err := os.OpenFile(config.ExpandPath(o.logFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		opts.File = f
		closeFn = func() { _ = f.Close() }
	}
	return logging.New(opts), closeFn, nil
}

func (c *CLI) runUI(flags *pflag.FlagSet, listPath string, o *options) error {
	cfg, err := c.settings(flags, o)
	if err != nil {
		return err
	}
	logger, closeLog, err := c.logger(o)
	if err != nil {
		return err
	}
	defer closeLog()

	base := o.deployOptions(cfg)
	svc := tuisvc.New(listPath, base,
		tuisvc.WithFileSystem(c.fileSystem()),
		tuisvc.WithGitClient(c.gitClient(logger)),
		tuisvc.WithLogger(logger),
	)
	return c.launcher()(svc, ports.TUIDeployOptions{
		Commit: base.Commit,
		Push:   base.Push,
		DryRun: base.DryRun,
	})
}
