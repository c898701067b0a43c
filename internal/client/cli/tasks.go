package cli

import (
	"context"

	"github.com/dmitrijs2005/orbit/internal/client/models"
	"github.com/dmitrijs2005/orbit/internal/client/services"
)

func (a *App) Tasks(ctx context.Context) error {
	if !a.open(ctx, routeTasks) {
		return nil
	}
	if err := a.printTasks(ctx); err != nil {
		return err
	}
	a.watch(ctx, services.TableTasks, "", a.printTasks)
	return nil
}

func (a *App) printTasks(ctx context.Context) error {
	items, err := a.tasks.List(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		a.println("No tasks yet. Create one with 'task add'.")
		return nil
	}
	me := ""
	if s := a.ctrl.Session(); s != nil {
		me = s.User.ID
	}
	for _, t := range items {
		mark := " "
		if t.AssigneeID == me && t.UserID != me {
			mark = "@"
		}
		a.printf("%s %s  %-24s %-12s %-7s %s\n", mark, t.ID, t.Title, t.Status, t.Priority, formatDue(t.DueDate))
	}
	return nil
}

// Task handles "task add|status|delete".
func (a *App) Task(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println("Usage: task add | status <id> <todo|in_progress|completed|cancelled> | delete <id>")
		return nil
	}
	if !a.open(ctx, routeTasks) {
		return nil
	}

	switch {
	case args[0] == "add":
		return a.addTask(ctx)
	case args[0] == "status" && len(args) == 3:
		if _, err := a.tasks.SetStatus(ctx, args[1], models.TaskStatus(args[2])); err != nil {
			return err
		}
		a.println("Status updated")
		return nil
	case args[0] == "delete" && len(args) == 2:
		if !confirm(a.reader, "Delete this task?", a.out) {
			return nil
		}
		if err := a.tasks.Delete(ctx, args[1]); err != nil {
			return err
		}
		a.println("Task deleted")
		return nil
	}
	return a.Task(ctx, nil)
}

func (a *App) addTask(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Task name", a.out)
	if err != nil {
		return err
	}
	desc, err := getSimpleText(a.reader, "Description (optional)", a.out)
	if err != nil {
		return err
	}
	dueText, err := getSimpleText(a.reader, "Due date YYYY-MM-DD (optional)", a.out)
	if err != nil {
		return err
	}
	due, err := parseDue(dueText)
	if err != nil {
		return err
	}
	priority, err := getSimpleText(a.reader, "Priority low|medium|high|urgent (default medium)", a.out)
	if err != nil {
		return err
	}
	projectID, err := getSimpleText(a.reader, "Project id (optional)", a.out)
	if err != nil {
		return err
	}
	assigneeID, err := getSimpleText(a.reader, "Assignee id (optional)", a.out)
	if err != nil {
		return err
	}

	t, err := a.tasks.Create(ctx, services.TaskInput{
		Title:       title,
		Description: desc,
		DueDate:     due,
		Priority:    models.TaskPriority(priority),
		ProjectID:   projectID,
		AssigneeID:  assigneeID,
	})
	if err != nil {
		return err
	}
	a.printf("Task created: %s\n", t.ID)
	return nil
}
