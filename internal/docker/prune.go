package docker

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
)

// Pruner removes stopped containers and dangling images
type Pruner struct {
	client *client.Client
}

// NewPruner creates a Docker client from the environment
func NewPruner() (*Pruner, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Pruner{client: cli}, nil
}

// Ping verifies the daemon is reachable
func (p *Pruner) Ping(ctx context.Context) error {
	if _, err := p.client.Ping(ctx); err != nil {
		return fmt.Errorf("docker daemon not reachable: %w", err)
	}
	return nil
}

// Close closes the Docker client
func (p *Pruner) Close() error {
	return p.client.Close()
}

// PruneContainers removes containers that are not running and returns
// how many were removed
func (p *Pruner) PruneContainers(ctx context.Context) (int, error) {
	containers, err := p.client.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return 0, fmt.Errorf("failed to list containers: %w", err)
	}

	removed := 0
	for _, c := range containers {
		switch c.State {
		case "exited", "created", "dead":
		default:
			continue
		}

		if err := p.client.ContainerRemove(ctx, c.ID, container.RemoveOptions{}); err != nil {
			return removed, fmt.Errorf("failed to remove container %s: %w", c.ID[:12], err)
		}
		removed++
	}

	return removed, nil
}

// PruneImages removes dangling images and returns how many were removed
func (p *Pruner) PruneImages(ctx context.Context) (int, error) {
	dangling := filters.NewArgs(filters.Arg("dangling", "true"))

	images, err := p.client.ImageList(ctx, types.ImageListOptions{Filters: dangling})
	if err != nil {
		return 0, fmt.Errorf("failed to list images: %w", err)
	}

	removed := 0
	for _, img := range images {
		if _, err := p.client.ImageRemove(ctx, img.ID, types.ImageRemoveOptions{}); err != nil {
			return removed, fmt.Errorf("failed to remove image %s: %w", img.ID, err)
		}
		removed++
	}

	return removed, nil
}
