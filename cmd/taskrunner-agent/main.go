package main

import (
	"log"
	"os"

	"github.com/ngenohkevin/taskrunner/config"
	"github.com/ngenohkevin/taskrunner/internal/notify"
	"github.com/ngenohkevin/taskrunner/internal/runlog"
	"github.com/ngenohkevin/taskrunner/internal/runner"
	"github.com/ngenohkevin/taskrunner/internal/server"
	"github.com/ngenohkevin/taskrunner/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.APIKey == "" {
		log.Fatalf("API_KEY is required to start the agent")
	}

	tasksFile, err := config.LoadTasksFile(cfg.TasksFile)
	if err != nil {
		log.Fatalf("Failed to load tasks file: %v", err)
	}

	cat := tasks.DefaultCatalog(cfg)
	enabled := runner.ResolveEnabled(tasksFile, cat, os.Stderr)

	rlog, err := runlog.Open(cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to open run log: %v", err)
	}
	defer rlog.Close()

	publisher := notify.NewFromConfig(cfg.NATSURL)
	defer publisher.Close()

	engine := runner.New(cat, rlog, cfg.MaxRetries)
	engine.SetPublisher(publisher)

	handlers := server.NewHandlers(cfg, engine, cat, enabled, rlog.Path())
	srv := server.New(cfg, handlers)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
