package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/orbit/internal/client/models"
	"github.com/dmitrijs2005/orbit/internal/client/routing"
	"github.com/dmitrijs2005/orbit/internal/client/services"
)

// Tab routes used by the screen commands.
const (
	routeProjects = "/(tabs)/project"
	routeTasks    = "/(tabs)/task"
	routeMembers  = "/(tabs)/members"
	routeProfile  = "/(tabs)/profile"
)

// open navigates to route and reports whether the routing rules let the
// user stay there.
func (a *App) open(ctx context.Context, route string) bool {
	a.stopWatching()
	a.ctrl.Navigate(ctx, route)
	if a.ctrl.Location() == routing.ParseLocation(route) {
		return true
	}
	if a.ctrl.Location().SubRoute == routing.SubRouteOnboarding {
		a.println("Please complete onboarding first (type 'onboarding')")
	}
	return false
}

// watch reloads the current screen on every change of table until the
// next navigation.
func (a *App) watch(ctx context.Context, table, recordID string, reload func(context.Context) error) {
	stop, err := a.watcher.Watch(ctx, table, recordID, func(ev models.ChangeEvent) {
		a.printf("\n[live] %s %s changed\n", strings.TrimSuffix(table, "s"), strings.ToLower(string(ev.Type)))
		if err := reload(ctx); err != nil {
			a.logger.Warn(ctx, "reload failed", "table", table, "error", err)
		}
	})
	if err != nil {
		a.logger.Warn(ctx, "realtime subscription failed", "table", table, "error", err)
		return
	}
	a.mu.Lock()
	a.stopWatch = stop
	a.mu.Unlock()
}

func (a *App) stopWatching() {
	a.mu.Lock()
	stop := a.stopWatch
	a.stopWatch = nil
	a.mu.Unlock()
	if stop != nil {
		stop()
	}
}

func (a *App) Onboarding(ctx context.Context) error {
	if !a.open(ctx, routing.RouteOnboarding) {
		return nil
	}

	a.println("What's your role?")
	role, err := GetChoice(a.reader, "Role (number or text)", services.Roles, a.out)
	if err != nil {
		return err
	}
	org, err := getSimpleText(a.reader, "Organization (optional)", a.out)
	if err != nil {
		return err
	}
	phone, err := getSimpleText(a.reader, "Phone number (optional)", a.out)
	if err != nil {
		return err
	}

	if _, err := a.profiles.CompleteOnboarding(ctx, services.OnboardingInput{
		Role: role, Organization: org, PhoneNumber: phone,
	}); err != nil {
		return err
	}
	a.ctrl.Flush()
	a.open(ctx, routing.RouteTabs)
	a.println("Welcome aboard!")
	return nil
}

func (a *App) Dashboard(ctx context.Context) error {
	if !a.open(ctx, routing.RouteTabs) {
		return nil
	}
	if err := a.printDashboard(ctx); err != nil {
		return err
	}
	a.watch(ctx, services.TableTasks, "", a.printDashboard)
	return nil
}

func (a *App) printDashboard(ctx context.Context) error {
	d, err := a.projects.Dashboard(ctx)
	if err != nil {
		return err
	}
	name := "there"
	if s := a.ctrl.Session(); s != nil {
		if n := s.User.Metadata.FullName(); n != "" {
			name = n
		}
	}
	a.printf("Hello, %s\n", name)
	a.printf("Projects: %d (%d active)\n", d.TotalProjects, d.ActiveProjects)
	a.printf("Tasks: %d total, %d completed, %d pending\n", d.TotalTasks, d.CompletedTasks, d.PendingTasks)
	if len(d.RecentProjects) > 0 {
		a.println("Recent projects:")
		for _, p := range d.RecentProjects {
			a.printf("  %s  %-24s %s\n", p.ID, p.Name, p.Status)
		}
	}
	if len(d.UpcomingTasks) > 0 {
		a.println("Upcoming tasks:")
		for _, t := range d.UpcomingTasks {
			a.printf("  %s  %-24s %s\n", t.ID, t.Title, formatDue(t.DueDate))
		}
	}
	return nil
}

func (a *App) Members(ctx context.Context) error {
	if !a.open(ctx, routeMembers) {
		return nil
	}
	if err := a.printMembers(ctx); err != nil {
		return err
	}
	a.watch(ctx, services.TableProfiles, "", a.printMembers)
	return nil
}

func (a *App) printMembers(ctx context.Context) error {
	items, err := a.members.List(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		a.println("No team members yet. Set an organization with 'profile account'.")
		return nil
	}
	a.printf("Team (%d)\n", len(items))
	for _, m := range items {
		a.printf("  %-24s %-16s %s %s\n", m.DisplayName(), m.DisplayRole(), m.Email, m.PhoneNumber)
	}
	return nil
}

func (a *App) Profile(ctx context.Context, args []string) error {
	if !a.open(ctx, routeProfile) {
		return nil
	}
	sub := ""
	if len(args) > 0 {
		sub = args[0]
	}
	switch sub {
	case "":
		a.printProfile()
		return nil
	case "edit":
		return a.editProfile(ctx)
	case "account":
		return a.editAccount(ctx)
	}
	a.println("Usage: profile [edit|account]")
	return nil
}

func (a *App) printProfile() {
	s := a.ctrl.Session()
	if s == nil {
		return
	}
	md := s.User.Metadata
	a.printf("Name:         %s\n", orNotSet(md.FullName()))
	a.printf("Email:        %s\n", s.User.Email)
	a.printf("Role:         %s\n", orNotSet(md.Role()))
	a.printf("Organization: %s\n", orNotSet(md.Organization()))
	a.printf("Phone:        %s\n", orNotSet(md.PhoneNumber()))
	a.printf("Bio:          %s\n", orNotSet(md.Bio()))

	lockState := "off"
	if a.lock.Enabled() {
		lockState = "on"
	}
	a.printf("App lock:     %s (%s)\n", lockState, a.lock.Capability())
}

func (a *App) editProfile(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Full name", a.out)
	if err != nil {
		return err
	}
	bio, err := getSimpleText(a.reader, "Bio (optional)", a.out)
	if err != nil {
		return err
	}
	if _, err := a.profiles.UpdateProfile(ctx, services.ProfileInput{FullName: name, Bio: bio}); err != nil {
		return err
	}
	a.println("Profile updated")
	return nil
}

func (a *App) editAccount(ctx context.Context) error {
	role, err := getSimpleText(a.reader, "Role", a.out)
	if err != nil {
		return err
	}
	org, err := getSimpleText(a.reader, "Organization (optional)", a.out)
	if err != nil {
		return err
	}
	phone, err := getSimpleText(a.reader, "Phone number (optional)", a.out)
	if err != nil {
		return err
	}
	if _, err := a.profiles.UpdateAccountInfo(ctx, services.AccountInput{
		Role: role, Organization: org, PhoneNumber: phone,
	}); err != nil {
		return err
	}
	a.println("Account information updated successfully")
	return nil
}

func orNotSet(s string) string {
	if s == "" {
		return "Not set"
	}
	return s
}
