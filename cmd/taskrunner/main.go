package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ngenohkevin/taskrunner/config"
	"github.com/ngenohkevin/taskrunner/internal/notify"
	"github.com/ngenohkevin/taskrunner/internal/runlog"
	"github.com/ngenohkevin/taskrunner/internal/runner"
	"github.com/ngenohkevin/taskrunner/internal/tasks"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: taskrunner [all|<task_name>]")
		return 1
	}
	request := strings.TrimSpace(args[1])

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		return 1
	}

	tasksFile, err := config.LoadTasksFile(cfg.TasksFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		return 1
	}

	cat := tasks.DefaultCatalog(cfg)
	enabled := runner.ResolveEnabled(tasksFile, cat, os.Stderr)

	rlog, err := runlog.Open(cfg.LogDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		return 1
	}
	defer rlog.Close()

	publisher := notify.NewFromConfig(cfg.NATSURL)
	defer publisher.Close()

	engine := runner.New(cat, rlog, cfg.MaxRetries)
	engine.SetConsole(os.Stdout)
	engine.SetPublisher(publisher)

	fmt.Print("Starting Task Runner...\n\n")

	result, err := engine.Run(context.Background(), request, enabled)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		return 1
	}

	return result.ExitCode()
}
