// Package cli provides the interactive Orbit command-line client.
//
// It wires configuration, local storage, the backend client, the session
// store, the app lock and the root controller, then runs a REPL in which
// every screen of the mobile app is a command. The prompt shows the current
// route, the signed-in user, connectivity and the lock state.
//
// Key features:
//   - Sign in with email/password, sign up, OAuth via browser + callback URL
//   - Onboarding, dashboard, projects, tasks, team members, profile
//   - Live reload of the open list on backend changes
//   - App lock backed by a device passcode, re-armed by "foreground"
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
