package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	locked   bool
	prompts  int

	calls []string
	args  [][]string
	err   error
}

func (f *fakeExec) isLoggedIn() bool                { return f.loggedIn }
func (f *fakeExec) isLocked() bool                  { return f.locked }
func (f *fakeExec) beforePrompt(ctx context.Context) { f.prompts++ }

func (f *fakeExec) rec(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	return f.err
}

func (f *fakeExec) Register(ctx context.Context) error { return f.rec("register", nil) }
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.rec("login", nil)
}
func (f *fakeExec) OAuth(ctx context.Context, a []string) error    { return f.rec("oauth", a) }
func (f *fakeExec) Callback(ctx context.Context, a []string) error { return f.rec("callback", a) }
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.rec("logout", nil)
}
func (f *fakeExec) Onboarding(ctx context.Context) error            { return f.rec("onboarding", nil) }
func (f *fakeExec) Dashboard(ctx context.Context) error             { return f.rec("dashboard", nil) }
func (f *fakeExec) Projects(ctx context.Context, a []string) error  { return f.rec("projects", a) }
func (f *fakeExec) Project(ctx context.Context, a []string) error   { return f.rec("project", a) }
func (f *fakeExec) Tasks(ctx context.Context) error                 { return f.rec("tasks", nil) }
func (f *fakeExec) Task(ctx context.Context, a []string) error      { return f.rec("task", a) }
func (f *fakeExec) Members(ctx context.Context) error               { return f.rec("members", nil) }
func (f *fakeExec) Profile(ctx context.Context, a []string) error   { return f.rec("profile", a) }
func (f *fakeExec) AppLock(ctx context.Context, a []string) error   { return f.rec("applock", a) }
func (f *fakeExec) Passcode(ctx context.Context, a []string) error  { return f.rec("passcode", a) }
func (f *fakeExec) Background(ctx context.Context) error            { return f.rec("background", nil) }
func (f *fakeExec) Foreground(ctx context.Context) error            { return f.rec("foreground", nil) }
func (f *fakeExec) Unlock(ctx context.Context) error {
	f.locked = false
	return f.rec("unlock", nil)
}

func capturePrint(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = origPrint })
	return &lines
}

func scannerOf(lines ...string) *bufio.Scanner {
	return bufio.NewScanner(strings.NewReader(strings.Join(lines, "\n")))
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	capturePrint(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, scannerOf(
		"help",
		"projects",
		"login",
		"help",
		"project show p1",
		"task add",
		"applock on",
		"foobar",
		"exit",
		"tasks",
	))

	assert.Equal(t, []string{"login", "project", "task", "applock"}, exec.calls)
	assert.Equal(t, []string{"show", "p1"}, exec.args[1])
	assert.Equal(t, 9, exec.prompts)
}

func TestRunREPL_SignedOutCommandsNeedLogin(t *testing.T) {
	lines := capturePrint(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" }, scannerOf("dashboard", "logout"))

	assert.Empty(t, exec.calls)
	assert.Contains(t, *lines, "Please sign in first (login, register or oauth)")
}

func TestRunREPL_LockedAcceptsOnlyUnlock(t *testing.T) {
	lines := capturePrint(t)

	exec := &fakeExec{loggedIn: true, locked: true}
	runREPL(context.Background(), exec, func() string { return "s" }, scannerOf(
		"projects",
		"logout",
		"unlock",
		"projects",
		"quit",
	))

	assert.Equal(t, []string{"unlock", "projects"}, exec.calls)
	assert.Contains(t, *lines, helpLocked)
	assert.Equal(t, "Bye!", (*lines)[len(*lines)-1])
}

func TestRunREPL_CommandErrorIsReported(t *testing.T) {
	lines := capturePrint(t)

	exec := &fakeExec{loggedIn: true, err: errors.New("Only the task owner can delete this task")}
	runREPL(context.Background(), exec, func() string { return "s" }, scannerOf("task delete t1"))

	assert.Contains(t, *lines, "Error: Only the task owner can delete this task")
}
