package tasks

import (
	"context"
	"fmt"
	"log"

	"github.com/ngenohkevin/taskrunner/config"
	"github.com/ngenohkevin/taskrunner/internal/catalog"
	"github.com/ngenohkevin/taskrunner/internal/docker"
	"github.com/ngenohkevin/taskrunner/internal/systemd"
)

// NewDockerPrune removes stopped containers and, when configured,
// dangling images. An unreachable daemon fails the task cleanly.
func NewDockerPrune(cfg *config.Config) catalog.Task {
	return catalog.Task{
		Name:        "docker_prune",
		Description: "Remove stopped containers and dangling images",
		Run: func(ctx context.Context) error {
			pruner, err := docker.NewPruner()
			if err != nil {
				return err
			}
			defer pruner.Close()

			if err := pruner.Ping(ctx); err != nil {
				return err
			}

			containers, err := pruner.PruneContainers(ctx)
			if err != nil {
				return err
			}

			images := 0
			if cfg.PruneDanglingImages {
				images, err = pruner.PruneImages(ctx)
				if err != nil {
					return err
				}
			}

			log.Printf("docker_prune: removed %d containers, %d images", containers, images)
			return nil
		},
	}
}

// NewServiceCheck verifies the watched systemd units are active
func NewServiceCheck(cfg *config.Config) catalog.Task {
	return catalog.Task{
		Name:        "service_check",
		Description: "Verify watched systemd units are active",
		Run: func(ctx context.Context) error {
			if len(cfg.WatchedServices) == 0 {
				return nil
			}

			checker := systemd.NewChecker(cfg.WatchedServices)
			if _, err := checker.Check(ctx); err != nil {
				return fmt.Errorf("service check failed: %w", err)
			}
			return nil
		},
	}
}
