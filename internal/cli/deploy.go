package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/pflag"

	"github.com/jmcdonald/docdeploy/internal/deploy"
	"github.com/jmcdonald/docdeploy/internal/repolist"
)

const ruleWidth = 50

func (c *CLI) runDeploy(flags *pflag.FlagSet, listPath string, o *options) error {
	cfg, err := c.settings(flags, o)
	if err != nil {
		return err
	}

	entries, err := repolist.Load(listPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("repository list file not found: %s", listPath)
		}
		return err
	}

	logger, closeLog, err := c.logger(o)
	if err != nil {
		return err
	}
	defer closeLog()

	opts := o.deployOptions(cfg)
	d := deploy.New(c.fileSystem(), c.gitClient(logger), opts,
		deploy.WithObserver(&consoleObserver{c: c}),
		deploy.WithLogger(logger),
	)
	if err := d.Prepare(); err != nil {
		return err
	}
	defer func() {
		if err := d.Close(); err != nil {
			logger.Warn("cleanup failed", "error", err)
		}
	}()

	opts = d.Options()
	c.banner("API Docs Review Command Deployment")
	fmt.Fprintln(c.Out)
	fmt.Fprintln(c.Out, c.yellow("Configuration:"))
	fmt.Fprintf(c.Out, "  Repository list: %s\n", listPath)
	fmt.Fprintf(c.Out, "  Source file: %s\n", opts.Source)
	fmt.Fprintf(c.Out, "  Target path: %s\n", filepath.Join(opts.TargetDir, opts.TargetName))
	fmt.Fprintf(c.Out, "  Commit changes: %t\n", opts.Commit)
	fmt.Fprintf(c.Out, "  Push changes: %t\n", opts.Push)
	fmt.Fprintf(c.Out, "  Dry run: %t\n", opts.DryRun)
	fmt.Fprintln(c.Out)

	if len(entries) == 0 {
		return errors.New("no repositories found in list file")
	}

	summary := d.Run(entries)
	c.printSummary(summary, opts.DryRun)

	if !summary.OK() {
		return errDeployFailed
	}

	fmt.Fprintln(c.Out, c.green("Deployment completed successfully!"))
	fmt.Fprintln(c.Out)
	fmt.Fprintln(c.Out, "Next steps:")
	fmt.Fprintf(c.Out, "  1. Test the command in one repository: /%s\n", strings.TrimSuffix(opts.TargetName, filepath.Ext(opts.TargetName)))
	fmt.Fprintln(c.Out, "  2. If issues are found, update the source file and run docdeploy again")
	fmt.Fprintln(c.Out, "  3. Create pull requests for the changes if needed")
	return nil
}

func (c *CLI) banner(title string) {
	fmt.Fprintln(c.Out, c.blue(strings.Repeat("=", ruleWidth)))
	fmt.Fprintln(c.Out, c.blue(title))
	fmt.Fprintln(c.Out, c.blue(strings.Repeat("=", ruleWidth)))
}

func (c *CLI) printSummary(s deploy.Summary, dryRun bool) {
	fmt.Fprintln(c.Out)
	c.banner("Deployment Summary")

	t := table.NewWriter()
	t.SetOutputMirror(c.Out)
	t.AppendHeader(table.Row{"#", "REPOSITORY", "STATUS", "DETAIL"})
	for i, r := range s.Results {
		detail := r.Target
		if !r.OK() {
			detail = r.Message
		}
		t.AppendRow(table.Row{i + 1, r.Entry.Source, c.status(r), detail})
	}
	t.Render()

	fmt.Fprintf(c.Out, "  Total repositories: %d\n", s.Total)
	fmt.Fprintln(c.Out, c.green(fmt.Sprintf("  Successful: %d", s.Succeeded)))
	if s.Failed > 0 {
		fmt.Fprintln(c.Out, c.red(fmt.Sprintf("  Failed: %d", s.Failed)))
	}
	fmt.Fprintln(c.Out)

	if dryRun {
		fmt.Fprintln(c.Out, c.yellow("This was a dry run. No changes were made."))
		fmt.Fprintln(c.Out, "Run without --dry-run to apply changes.")
		fmt.Fprintln(c.Out)
	}
}

func (c *CLI) status(r deploy.Result) string {
	label := r.Status()
	switch label {
	case "failed":
		return c.red(label)
	case "unchanged", "dry run":
		return c.yellow(label)
	default:
		return c.green(label)
	}
}

// consoleObserver prints per-repository progress.
type consoleObserver struct {
	c *CLI
}

func (o *consoleObserver) Begin(index, total int, entry repolist.Entry) {
	fmt.Fprintln(o.c.Out, o.c.blue(strings.Repeat("-", ruleWidth)))
	fmt.Fprintln(o.c.Out, o.c.blue(fmt.Sprintf("[%d/%d] Processing: %s", index, total, entry.Source)))
}

func (o *consoleObserver) Step(msg string) {
	fmt.Fprintf(o.c.Out, "  %s\n", msg)
}

func (o *consoleObserver) Done(msg string) {
	fmt.Fprintln(o.c.Out, o.c.green("  ✓ "+msg))
}

func (o *consoleObserver) Warn(msg string) {
	fmt.Fprintln(o.c.Out, o.c.yellow("  ⚠  "+msg))
}

func (o *consoleObserver) DryRun(msg string) {
	fmt.Fprintf(o.c.Out, "  %s %s\n", o.c.gray("[DRY RUN]"), msg)
}

func (o *consoleObserver) End(r deploy.Result) {
	if r.OK() {
		fmt.Fprintln(o.c.Out, o.c.green("  ✓ "+r.Message))
		return
	}
	fmt.Fprintln(o.c.Out, o.c.red("  ✗ "+r.Message))
}

var _ deploy.Observer = (*consoleObserver)(nil)
