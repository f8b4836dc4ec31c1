package tasks

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const jsoncTasks = `{
    // build tasks
    "version": "2.0.0",
    "tasks": [
        {"label": "build", "type": "shell", "command": "make"},
        {"label": "lint", "command": "golangci-lint", "args": ["run"],},
        {"label": "build", "type": "shell", "command": "make all"},
    ],
}`

func TestParse_AcceptsCommentsAndTrailingCommas(t *testing.T) {
	t.Parallel()

	f, err := Parse([]byte(jsoncTasks))

	require.NoError(t, err)
	assert.Equal(t, "2.0.0", f.Version)
	require.Len(t, f.Tasks, 3)
	assert.Equal(t, []string{"run"}, f.Tasks[1].Args)
}

func TestLoad_CollectsTasksAcrossRoots_When_SomeFilesMissingOrBroken(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, Path("/a"), []byte(jsoncTasks), 0o644))
	require.NoError(t, afero.WriteFile(fsys, Path("/b"), []byte(`{"tasks": [`), 0o644))
	require.NoError(t, afero.WriteFile(fsys, Path("/d"), []byte(`{"tasks": [{"label": "test", "command": "go test ./..."}]}`), 0o644))
	core, logs := observer.New(zapcore.WarnLevel)

	set := Load(fsys, []string{"/a", "/b", "/c", "/d"}, zap.New(core))

	assert.Equal(t, []string{"build", "lint", "test"}, set.Labels())
	assert.Len(t, set.Entries, 4)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, Path("/b"), logs.All()[0].ContextMap()["file"])
}

func TestSet_Find(t *testing.T) {
	t.Parallel()

	set := &Set{Entries: []Entry{
		{Task: Task{Label: "build", Command: "make"}, Root: "/a"},
		{Task: Task{Label: "build", Command: "make all"}, Root: "/b"},
	}}

	e, err := set.Find("build")
	require.NoError(t, err)
	assert.Equal(t, "/a", e.Root)

	_, err = set.Find("deploy")
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.EqualError(t, err, "task not found: deploy")

	_, err = (&Set{}).Find("build")
	assert.ErrorIs(t, err, ErrNoTasksConfigured)
}

func TestSelection_Sync(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		current string
		labels  []string
		want    string
	}{
		{name: "no labels clears", current: "build", labels: nil, want: ""},
		{name: "missing falls back to first", current: "gone", labels: []string{"build", "lint"}, want: "build"},
		{name: "empty selection takes first", current: "", labels: []string{"lint"}, want: "lint"},
		{name: "present is kept", current: "lint", labels: []string{"build", "lint"}, want: "lint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var s Selection
			s.Select(tt.current)
			s.Sync(tt.labels)
			assert.Equal(t, tt.want, s.Current())
		})
	}
}

func TestSelection_Choose(t *testing.T) {
	t.Parallel()

	var s Selection
	_, _, err := s.Choose(nil)
	assert.ErrorIs(t, err, ErrNoTasksConfigured)

	label, pick, err := s.Choose([]string{"build", "lint"})
	require.NoError(t, err)
	assert.Equal(t, "build", label)
	assert.True(t, pick)

	s.Select("lint")
	label, pick, err = s.Choose([]string{"build", "lint"})
	require.NoError(t, err)
	assert.Equal(t, "lint", label)
	assert.False(t, pick)
}

func TestSelection_Description(t *testing.T) {
	t.Parallel()

	var s Selection
	assert.Equal(t, "no task selected", s.Description())
	s.Select("build")
	assert.Equal(t, "task: build", s.Description())
}

func TestRefreshPolicy(t *testing.T) {
	t.Parallel()

	ok := Completion{ExitCode: 0}
	failed := Completion{ExitCode: 2}

	p, err := ParseRefreshPolicy("")
	require.NoError(t, err)
	assert.Equal(t, RefreshAlways, p)
	assert.True(t, p.ShouldRefresh(ok))
	assert.True(t, p.ShouldRefresh(failed))

	assert.False(t, RefreshOnFailure.ShouldRefresh(ok))
	assert.True(t, RefreshOnFailure.ShouldRefresh(failed))
	assert.False(t, RefreshNever.ShouldRefresh(failed))

	_, err = ParseRefreshPolicy("sometimes")
	assert.Error(t, err)
}

func TestEnsureTasksFile_CreatesTemplateOnce(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()

	path, err := EnsureTasksFile(fsys, "/ws")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/ws", ".vscode", "tasks.json"), path)

	f, err := afero.ReadFile(fsys, path)
	require.NoError(t, err)
	parsed, err := Parse(f)
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", parsed.Version)
	assert.Empty(t, parsed.Tasks)

	require.NoError(t, afero.WriteFile(fsys, path, []byte(jsoncTasks), 0o644))
	_, err = EnsureTasksFile(fsys, "/ws")
	require.NoError(t, err)
	kept, err := afero.ReadFile(fsys, path)
	require.NoError(t, err)
	assert.Equal(t, jsoncTasks, string(kept))
}

func TestCommand_BuildsArgv(t *testing.T) {
	t.Parallel()

	shell, err := Command(context.Background(), Entry{
		Task: Task{Label: "b", Command: "make", Args: []string{"out dir", "${workspaceFolder}/x"}},
		Root: "/ws",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"bash", "-lc", "make 'out dir' /ws/x"}, shell.Args)
	assert.Equal(t, "/ws", shell.Dir)

	proc, err := Command(context.Background(), Entry{
		Task: Task{Label: "p", Type: "process", Command: "go", Args: []string{"vet"}, Options: Options{Cwd: "sub"}},
		Root: "/ws",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "vet"}, proc.Args)
	assert.Equal(t, filepath.Join("/ws", "sub"), proc.Dir)

	_, err = Command(context.Background(), Entry{Task: Task{Label: "empty"}})
	assert.Error(t, err)
}

func TestRunner_Run_ReportsExitCodeAndOutput_When_CommandsSucceedAndFail(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	root := t.TempDir()
	r := NewRunner(nil)

	var out []string
	ok := r.Run(ctx, Entry{Task: Task{Label: "ok", Command: "printf 'stdout\\n'"}, Root: root}, func(l string) {
		out = append(out, l)
	})
	assert.Equal(t, "ok", ok.Label)
	assert.Equal(t, 0, ok.ExitCode)
	assert.False(t, ok.Failed())
	assert.NoError(t, ok.Err)
	assert.Contains(t, out, "stdout")

	out = nil
	bad := r.Run(ctx, Entry{Task: Task{Label: "bad", Command: "printf 'stderr\\n' 1>&2; exit 2"}, Root: root}, func(l string) {
		out = append(out, l)
	})
	assert.Equal(t, 2, bad.ExitCode)
	assert.True(t, bad.Failed())
	assert.Contains(t, out, "stderr")
}

func TestRunner_Run_Completes_When_OutputLineExceedsOneMiB(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	e := Entry{Task: Task{
		Label:   "long",
		Command: `head -c 3000000 /dev/zero | tr '\0' x; echo; echo done`,
	}, Root: t.TempDir()}

	type result struct {
		done  Completion
		lines []string
	}
	results := make(chan result, 1)
	go func() {
		var lines []string
		done := NewRunner(nil).Run(ctx, e, func(l string) { lines = append(lines, l) })
		results <- result{done: done, lines: lines}
	}()

	select {
	case got := <-results:
		assert.Equal(t, 0, got.done.ExitCode)
		assert.NoError(t, got.done.Err)
		require.Len(t, got.lines, 2)
		assert.Len(t, got.lines[0], 3000000)
		assert.Equal(t, "done", got.lines[1])
	case <-time.After(20 * time.Second):
		t.Fatal("no completion for a task printing a 3MB line")
	}
}

func TestCommand_SetsWaitDelay(t *testing.T) {
	t.Parallel()

	cmd, err := Command(context.Background(), Entry{Task: Task{Label: "x", Command: "true"}, Root: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, pipeWaitDelay, cmd.WaitDelay)
}

func TestRunner_Start_ClosesAfterCompletion_When_CommandCannotStart(t *testing.T) {
	t.Parallel()

	r := NewRunner(nil)
	missing := Entry{Task: Task{Label: "x", Type: "process", Command: "definitely-not-a-binary-" + strings.Repeat("z", 8)}, Root: t.TempDir()}

	var completions []Completion
	for u := range r.Start(context.Background(), missing) {
		if u.Completion != nil {
			completions = append(completions, *u.Completion)
		}
	}

	require.Len(t, completions, 1)
	assert.Equal(t, -1, completions[0].ExitCode)
	assert.Error(t, completions[0].Err)
	assert.True(t, completions[0].Failed())
}
