package catalog

import (
	"context"
	"fmt"
	"sort"
)

// Task is a named unit of work. Run reports failure through its error;
// there is no other result channel.
type Task struct {
	Name        string
	Description string
	Run         func(ctx context.Context) error
}

// Catalog is the fixed registry of tasks, built at startup and never
// mutated during a run.
type Catalog struct {
	tasks map[string]Task
}

// New creates an empty catalog
func New() *Catalog {
	return &Catalog{
		tasks: make(map[string]Task),
	}
}

// Register adds a task to the catalog. Registration happens once at
// startup; a duplicate or unnamed task is a programming error.
func (c *Catalog) Register(t Task) error {
	if t.Name == "" {
		return fmt.Errorf("task must have a name")
	}
	if t.Run == nil {
		return fmt.Errorf("task '%s' has no run function", t.Name)
	}
	if _, exists := c.tasks[t.Name]; exists {
		return fmt.Errorf("task '%s' is already registered", t.Name)
	}

	c.tasks[t.Name] = t
	return nil
}

// MustRegister registers a task and panics on error. Intended for the
// compiled-in catalog built in main.
func (c *Catalog) MustRegister(t Task) {
	if err := c.Register(t); err != nil {
		panic(err)
	}
}

// Lookup returns a task by name
func (c *Catalog) Lookup(name string) (Task, bool) {
	t, ok := c.tasks[name]
	return t, ok
}

// Names returns all registered task names, sorted
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.tasks))
	for name := range c.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tasks
func (c *Catalog) Len() int {
	return len(c.tasks)
}
