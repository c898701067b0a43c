package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/orbit/internal/client/models"
	"github.com/dmitrijs2005/orbit/internal/client/services"
)

const dateLayout = "2006-01-02"

func (a *App) Projects(ctx context.Context, args []string) error {
	var status models.ProjectStatus
	if len(args) > 0 {
		st, err := models.ParseProjectStatus(args[0])
		if err != nil {
			return err
		}
		status = st
	}
	if !a.open(ctx, routeProjects) {
		return nil
	}
	reload := func(ctx context.Context) error { return a.printProjects(ctx, status) }
	if err := reload(ctx); err != nil {
		return err
	}
	a.watch(ctx, services.TableProjects, "", reload)
	return nil
}

func (a *App) printProjects(ctx context.Context, status models.ProjectStatus) error {
	items, err := a.projects.List(ctx, status)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		a.println("No projects yet. Create one with 'project add'.")
		return nil
	}
	for _, p := range items {
		a.printf("  %s  %-24s %-10s %s\n", p.ID, p.Name, p.Status, p.Color)
	}
	return nil
}

// Project handles "project add|show|edit|status|delete".
func (a *App) Project(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println("Usage: project add | show <id> | edit <id> | status <id> <active|completed|archived> | delete <id>")
		return nil
	}
	if !a.open(ctx, routeProjects) {
		return nil
	}

	switch {
	case args[0] == "add":
		return a.addProject(ctx)
	case args[0] == "show" && len(args) == 2:
		return a.showProject(ctx, args[1])
	case args[0] == "edit" && len(args) == 2:
		return a.editProject(ctx, args[1])
	case args[0] == "status" && len(args) == 3:
		if _, err := a.projects.SetStatus(ctx, args[1], models.ProjectStatus(args[2])); err != nil {
			return err
		}
		a.println("Status updated")
		return nil
	case args[0] == "delete" && len(args) == 2:
		if !confirm(a.reader, "Delete this project? This cannot be undone.", a.out) {
			return nil
		}
		if err := a.projects.Delete(ctx, args[1]); err != nil {
			return err
		}
		a.println("Project deleted")
		return nil
	}
	return a.Project(ctx, nil)
}

func (a *App) addProject(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Project name", a.out)
	if err != nil {
		return err
	}
	desc, err := GetMultiline(a.reader, "Description (optional)", a.out)
	if err != nil {
		return err
	}
	color, err := a.pickColor()
	if err != nil {
		return err
	}
	p, err := a.projects.Create(ctx, services.ProjectInput{Name: name, Description: desc, Color: color})
	if err != nil {
		return err
	}
	a.printf("Project created: %s\n", p.ID)
	return nil
}

func (a *App) pickColor() (string, error) {
	a.println("Colors:")
	return GetChoice(a.reader, "Color (number or hex, empty for default)", services.ProjectColors, a.out)
}

func (a *App) showProject(ctx context.Context, id string) error {
	reload := func(ctx context.Context) error {
		p, err := a.projects.Get(ctx, id)
		if err != nil {
			return err
		}
		a.printf("%s  [%s]\n", p.Name, p.Status)
		if p.Description != "" {
			a.println(p.Description)
		}
		a.printf("Created %s, updated %s\n", p.CreatedAt.Format(dateLayout), p.UpdatedAt.Format(dateLayout))

		tasks, err := a.tasks.List(ctx)
		if err != nil {
			return err
		}
		for _, t := range tasks {
			if t.ProjectID == id {
				a.printf("  %s  %-24s %-12s %s\n", t.ID, t.Title, t.Status, formatDue(t.DueDate))
			}
		}
		return nil
	}
	if err := reload(ctx); err != nil {
		return err
	}
	a.watch(ctx, services.TableProjects, id, reload)
	return nil
}

// editProject keeps the current value for every empty answer.
func (a *App) editProject(ctx context.Context, id string) error {
	p, err := a.projects.Get(ctx, id)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, fmt.Sprintf("Project name [%s]", p.Name), a.out)
	if err != nil {
		return err
	}
	if name == "" {
		name = p.Name
	}
	desc, err := getSimpleText(a.reader, fmt.Sprintf("Description [%s]", p.Description), a.out)
	if err != nil {
		return err
	}
	if desc == "" {
		desc = p.Description
	}
	if _, err := a.projects.Update(ctx, id, services.ProjectInput{Name: name, Description: desc}); err != nil {
		return err
	}
	a.println("Project updated")
	return nil
}

func formatDue(d *time.Time) string {
	if d == nil {
		return "no due date"
	}
	return "due " + d.Format(dateLayout)
}

func parseDue(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("due date must look like %s", dateLayout)
	}
	return &d, nil
}
