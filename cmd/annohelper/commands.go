package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/annohelper/internal/annotation/session"
	"github.com/dshills/annohelper/internal/annotation/span"
	"github.com/dshills/annohelper/internal/app"
	"github.com/dshills/annohelper/internal/script"
	"github.com/dshills/annohelper/internal/watcher"
)

var errExists = errors.New("checkpoint already exists (use --force to overwrite)")

func (c *cli) initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init OUT INPUT",
		Short: "Create a checkpoint with one example per non-empty line of INPUT",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, input := args[0], args[1]
			if filepath.Ext(out) == "" {
				out += c.cfg.Checkpoint.Extension
			}

			data, err := c.fsys.ReadFile(input)
			if err != nil {
				return app.NewOperationError("init", input, fmt.Errorf("%w: %w", session.ErrIOFailure, err))
			}
			sess, err := session.NewFromTexts(splitSamples(string(data)))
			if err != nil {
				return app.NewOperationError("init", input, err)
			}

			if !force && c.store().Exists(out) {
				return app.NewOperationError("init", out, errExists)
			}
			r := c.reviewer()
			r.Adopt(out, sess)
			if err := r.Save(""); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d examples to %s\n", sess.Count(), out)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing checkpoint")
	return cmd
}

// splitSamples returns the non-blank lines of data with line endings removed.
func splitSamples(data string) []string {
	var samples []string
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		samples = append(samples, line)
	}
	return samples
}

func (c *cli) inspectCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "inspect [FILE]",
		Short: "Print the current example and its selected spans",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.open(args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			sess := r.Session()
			if all {
				printAll(out, sess)
				return nil
			}
			printCurrent(out, sess)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "list every example instead of the current one")
	return cmd
}

func printCurrent(w io.Writer, sess *session.Session) {
	f := sess.Current()
	fmt.Fprintf(w, "example:   %s (%d annotated)\n", sess.Progress(), sess.Annotated())
	fmt.Fprintf(w, "text:      %s\n", f.Text())
	fmt.Fprintf(w, "intervals: %v\n", f.Intervals())
	selected := f.Selected()
	for i, iv := range f.Intervals() {
		fmt.Fprintf(w, "  %-10s %q\n", iv, selected[i])
	}
}

func printAll(w io.Writer, sess *session.Session) {
	for i := 0; i < sess.Count(); i++ {
		f, _ := sess.Frame(i)
		marker := " "
		if i == sess.Cursor() {
			marker = ">"
		}
		fmt.Fprintf(w, "%s %3d  %-24s %s\n", marker, i+1, fmt.Sprint(f.Intervals()), f.Text())
	}
}

// editValue collects --select and --deselect values into one slice so that
// edits keep their command line order.
type editValue struct {
	edits  *[]span.Edit
	status span.Status
}

func (v *editValue) String() string {
	return ""
}

func (v *editValue) Set(s string) error {
	start, stop, err := parseRange(s)
	if err != nil {
		return err
	}
	*v.edits = append(*v.edits, span.Edit{Start: start, Stop: stop, Status: v.status})
	return nil
}

func (v *editValue) Type() string {
	return "start:stop"
}

// parseRange parses "start:stop".
func parseRange(s string) (int, int, error) {
	a, b, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("%q is not start:stop", s)
	}
	start, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return 0, 0, fmt.Errorf("bad start in %q", s)
	}
	stop, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return 0, 0, fmt.Errorf("bad stop in %q", s)
	}
	return start, stop, nil
}

func (c *cli) markCmd() *cobra.Command {
	var (
		edits  []span.Edit
		frame  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "mark [FILE]",
		Short: "Select or deselect character ranges of an example",
		Long: `Apply --select and --deselect ranges, in the order given, to the current
example or to the example chosen with --frame (1-based). Ranges are
character offsets start:stop with stop exclusive.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(edits) == 0 {
				return errors.New("nothing to mark: give --select or --deselect")
			}
			r, err := c.open(args)
			if err != nil {
				return err
			}

			origin := r.Session().Cursor()
			if frame > 0 {
				if err := r.Seek(frame - 1); err != nil {
					return err
				}
			}
			for _, e := range edits {
				if e.Status == span.Selected {
					err = r.Mark(e.Start, e.Stop)
				} else {
					err = r.Unmark(e.Start, e.Stop)
				}
				if err != nil {
					return err
				}
			}
			intervals := r.Intervals()
			if frame > 0 {
				if err := r.Seek(origin); err != nil {
					return err
				}
			}

			if err := r.Save(output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%v\n", intervals)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Var(&editValue{edits: &edits, status: span.Selected}, "select", "select start:stop (repeatable)")
	flags.Var(&editValue{edits: &edits, status: span.Deselected}, "deselect", "deselect start:stop (repeatable)")
	flags.IntVar(&frame, "frame", 0, "example to edit, 1-based (default current)")
	flags.StringVarP(&output, "output", "o", "", "write the checkpoint here instead of FILE")
	return cmd
}

// stepCmd builds next and prev.
func (c *cli) stepCmd(use, short string, step func(*app.Reviewer) (bool, error), edge string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   use + " [FILE]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.open(args)
			if err != nil {
				return err
			}
			moved, err := step(r)
			if err != nil {
				return err
			}
			if !moved {
				fmt.Fprintf(cmd.ErrOrStderr(), "already at the %s example\n", edge)
			}
			if err := r.Save(output); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), r.Status())
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the checkpoint here instead of FILE")
	return cmd
}

func (c *cli) nextCmd() *cobra.Command {
	return c.stepCmd("next", "Move to the next example", (*app.Reviewer).Next, "last")
}

func (c *cli) prevCmd() *cobra.Command {
	return c.stepCmd("prev", "Move to the previous example", (*app.Reviewer).Prev, "first")
}

func (c *cli) seekCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "seek [FILE] POS",
		Short: "Move to example POS (1-based)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			posArg := args[len(args)-1]
			pos, err := strconv.Atoi(posArg)
			if err != nil {
				return fmt.Errorf("invalid position %q", posArg)
			}

			r, err := c.open(args[:len(args)-1])
			if err != nil {
				return err
			}
			if err := r.Seek(pos - 1); err != nil {
				return err
			}
			if err := r.Save(output); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), r.Status())
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the checkpoint here instead of FILE")
	return cmd
}

func (c *cli) normalizeCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "normalize [FILE]",
		Short: "Collapse every example's edits into disjoint selected spans",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.open(args)
			if err != nil {
				return err
			}
			r.Session().NormalizeAll()
			if err := r.Save(output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d examples annotated\n", r.Session().Annotated(), r.Session().Count())
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the checkpoint here instead of FILE")
	return cmd
}

func (c *cli) premarkCmd() *cobra.Command {
	var (
		scriptPath string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "premark [FILE]",
		Short: "Run Lua annotation rules over every example",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := script.LoadFile(c.fsys, scriptPath, script.WithOutput(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer rules.Close()

			r, err := c.open(args)
			if err != nil {
				return err
			}
			rep, err := rules.Apply(cmd.Context(), r.Session())
			if err != nil {
				return err
			}
			c.logger.Debug("%s: %d edits over %d examples", rules.Name(), rep.Edits, rep.Frames)

			if err := r.Save(output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d edits, %d of %d examples annotated\n", rep.Edits, rep.Marked, rep.Frames)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&scriptPath, "script", "s", "", "Lua rule script defining annotate(text)")
	flags.StringVarP(&output, "output", "o", "", "write the checkpoint here instead of FILE")
	_ = cmd.MarkFlagRequired("script")
	return cmd
}

func (c *cli) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [FILE]",
		Short: "Print progress whenever the checkpoint changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := c.reviewer()
			path := c.cfg.Checkpoint.Path
			if len(args) > 0 {
				path = args[0]
			}
			if path == "" {
				return app.NewOperationError("watch", "", app.ErrNoPath)
			}

			delay, err := c.cfg.DebounceDelay()
			if err != nil {
				return err
			}
			w, err := watcher.New(path, watcher.WithDebounce(delay))
			if err != nil {
				return app.NewOperationError("watch", path, err)
			}

			out := cmd.OutOrStdout()
			report := func() {
				if err := r.Open(path); err != nil {
					fmt.Fprintln(out, app.StatusMessage(err))
					return
				}
				fmt.Fprintf(out, "%s (%d annotated)\n", r.Status(), r.Session().Annotated())
			}

			report()
			err = w.Run(cmd.Context(), func(ev watcher.Event) error {
				c.logger.Debug("%s changed: %v", ev.Path, ev.Op)
				if !ev.Exists() {
					fmt.Fprintln(out, "checkpoint removed")
					return nil
				}
				report()
				return nil
			}, func(err error) {
				c.logger.Warn("watch: %v", err)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
