package tasks

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Completion reports how a task run ended. ExitCode is -1 when the process
// never started.
type Completion struct {
	Label      string
	ExitCode   int
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Failed reports a non-zero exit or a start failure.
func (c Completion) Failed() bool {
	return c.ExitCode != 0 || c.Err != nil
}

// Duration is the wall time of the run.
func (c Completion) Duration() time.Duration {
	if c.StartedAt.IsZero() || c.FinishedAt.IsZero() {
		return 0
	}
	return c.FinishedAt.Sub(c.StartedAt)
}

// Update is one event of a running task: an output line, or the final
// Completion. The channel closes right after the Completion.
type Update struct {
	Label      string
	Line       string
	Completion *Completion
}

const pipeWaitDelay = 5 * time.Second

// Runner starts tasks as child processes.
type Runner struct {
	logger *zap.Logger
}

// NewRunner creates a Runner.
func NewRunner(logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger}
}

// Start runs e in the background. Stdout and stderr are merged line by line.
func (r *Runner) Start(ctx context.Context, e Entry) <-chan Update {
	updates := make(chan Update)
	go r.run(ctx, e, updates)
	return updates
}

// Run runs e to completion, passing each output line to onLine if non-nil.
func (r *Runner) Run(ctx context.Context, e Entry, onLine func(string)) Completion {
	var done Completion
	for u := range r.Start(ctx, e) {
		if u.Completion != nil {
			done = *u.Completion
			continue
		}
		if onLine != nil {
			onLine(u.Line)
		}
	}
	return done
}

func (r *Runner) run(ctx context.Context, e Entry, updates chan<- Update) {
	defer close(updates)

	done := Completion{Label: e.Label, ExitCode: -1, StartedAt: time.Now()}
	finish := func(err error) {
		done.Err = err
		done.FinishedAt = time.Now()
		r.logger.Info("task finished",
			zap.String("task", e.Label),
			zap.Int("exit_code", done.ExitCode),
			zap.Duration("duration", done.Duration()),
			zap.Error(err))
		updates <- Update{Label: e.Label, Completion: &done}
	}

	cmd, err := Command(ctx, e)
	if err != nil {
		finish(err)
		return
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		finish(err)
		return
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		finish(err)
		return
	}

	r.logger.Info("task started", zap.String("task", e.Label), zap.Strings("argv", cmd.Args), zap.String("cwd", cmd.Dir))
	if err := cmd.Start(); err != nil {
		finish(err)
		return
	}

	merged := make(chan string)
	var streamsWG sync.WaitGroup
	streamsWG.Add(2)
	go readStream(&streamsWG, stdout, merged)
	go readStream(&streamsWG, stderr, merged)
	go func() {
		streamsWG.Wait()
		close(merged)
	}()

	for line := range merged {
		updates <- Update{Label: e.Label, Line: line}
	}

	err = cmd.Wait()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		done.ExitCode = 0
	case errors.As(err, &exitErr):
		done.ExitCode = exitErr.ExitCode()
		err = nil
	default:
		done.ExitCode = 1
	}
	finish(err)
}

// readStream forwards r line by line until EOF. Lines have no length cap, so
// the pipe is always drained and the child never blocks on a full pipe.
func readStream(wg *sync.WaitGroup, r io.Reader, merged chan<- string) {
	defer wg.Done()
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			merged <- strings.TrimRight(line, "\r\n")
		}
		if err != nil {
			return
		}
	}
}

// Command builds the process for e. Shell tasks run through bash -lc; process
// tasks exec their command directly.
func Command(ctx context.Context, e Entry) (*exec.Cmd, error) {
	if strings.TrimSpace(e.Command) == "" {
		return nil, errors.New("task " + e.Label + " has no command")
	}

	var cmd *exec.Cmd
	switch e.Type {
	case "process":
		cmd = exec.CommandContext(ctx, expand(e.Command, e.Root), expandAll(e.Args, e.Root)...)
	default:
		line := expand(e.Command, e.Root)
		for _, a := range expandAll(e.Args, e.Root) {
			line += " " + shellQuote(a)
		}
		cmd = exec.CommandContext(ctx, "bash", "-lc", line)
	}

	// A grandchild holding the pipes open must not stall Wait.
	cmd.WaitDelay = pipeWaitDelay

	cmd.Dir = e.Root
	if e.Options.Cwd != "" {
		dir := expand(e.Options.Cwd, e.Root)
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(e.Root, dir)
		}
		cmd.Dir = dir
	}
	if len(e.Options.Env) > 0 {
		cmd.Env = os.Environ()
		keys := make([]string, 0, len(e.Options.Env))
		for k := range e.Options.Env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			cmd.Env = append(cmd.Env, k+"="+expand(e.Options.Env[k], e.Root))
		}
	}
	return cmd, nil
}

func expand(s, root string) string {
	return strings.NewReplacer(
		"${workspaceFolder}", root,
		"${workspaceRoot}", root,
		"${workspaceFolderBasename}", filepath.Base(root),
	).Replace(s)
}

func expandAll(args []string, root string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = expand(a, root)
	}
	return out
}

func shellQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"\\$`!*?[]{}()<>|&;#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
