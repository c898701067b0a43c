package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isLocked() bool
	// beforePrompt runs pending work such as the automatic unlock challenge.
	beforePrompt(ctx context.Context)

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	OAuth(ctx context.Context, args []string) error
	Callback(ctx context.Context, args []string) error
	Logout(ctx context.Context) error

	Onboarding(ctx context.Context) error
	Dashboard(ctx context.Context) error
	Projects(ctx context.Context, args []string) error
	Project(ctx context.Context, args []string) error
	Tasks(ctx context.Context) error
	Task(ctx context.Context, args []string) error
	Members(ctx context.Context) error
	Profile(ctx context.Context, args []string) error

	AppLock(ctx context.Context, args []string) error
	Passcode(ctx context.Context, args []string) error
	Background(ctx context.Context) error
	Foreground(ctx context.Context) error
	Unlock(ctx context.Context) error
}

const (
	helpSignedOut = "Available commands: login, register, oauth <provider>, callback <url>, background, foreground, exit"
	helpSignedIn  = "Available commands: onboarding, dashboard, projects [status], project add|show|edit|status|delete, tasks, task add|status|delete, members, profile [edit|account], applock on|off, passcode [remove], background, foreground, logout, exit"
	helpLocked    = "App is locked. Available commands: unlock, exit"
)

// runREPL starts a simple read–eval–print loop for the Orbit CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. While the app lock overlay is
// shown only "unlock", app state changes and "exit" are accepted. The loop exits on
// scanner EOF or when the user types "exit" or "quit".
//
// Errors returned by command handlers are printed as a single alert line;
// the REPL itself keeps running.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		a.beforePrompt(ctx)

		printlnFn(fmt.Sprintf("orbit %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}

		if a.isLocked() {
			switch cmd {
			case "unlock":
				report(a.Unlock(ctx))
			case "background":
				report(a.Background(ctx))
			case "foreground":
				report(a.Foreground(ctx))
			default:
				printlnFn(helpLocked)
			}
			continue
		}

		report(dispatch(ctx, a, cmd, args))
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn(helpSignedIn)
		} else {
			printlnFn(helpSignedOut)
		}
		return nil
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "oauth":
		return a.OAuth(ctx, args)
	case "callback":
		return a.Callback(ctx, args)
	case "background":
		return a.Background(ctx)
	case "foreground":
		return a.Foreground(ctx)
	case "unlock":
		return a.Unlock(ctx)
	}

	if !a.isLoggedIn() {
		switch cmd {
		case "onboarding", "dashboard", "home", "projects", "project", "tasks", "task",
			"members", "profile", "applock", "passcode", "logout":
			printlnFn("Please sign in first (login, register or oauth)")
			return nil
		}
	}

	switch cmd {
	case "onboarding":
		return a.Onboarding(ctx)
	case "dashboard", "home":
		return a.Dashboard(ctx)
	case "projects":
		return a.Projects(ctx, args)
	case "project":
		return a.Project(ctx, args)
	case "tasks":
		return a.Tasks(ctx)
	case "task":
		return a.Task(ctx, args)
	case "members":
		return a.Members(ctx)
	case "profile":
		return a.Profile(ctx, args)
	case "applock":
		return a.AppLock(ctx, args)
	case "passcode":
		return a.Passcode(ctx, args)
	case "logout":
		return a.Logout(ctx)
	}

	printlnFn("Unknown command:", cmd)
	return nil
}

// report prints a failed command as an alert line.
func report(err error) {
	if err != nil {
		printlnFn("Error:", err.Error())
	}
}
