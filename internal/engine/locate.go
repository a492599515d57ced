package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/termoshtt/cport/internal/config"
	"github.com/termoshtt/cport/internal/driver"
)

// Handle is the container a session works on.
type Handle struct {
	ID       string
	Identity Identity
	// Adopted is true when the container existed before this run.
	Adopted bool
}

// Locate returns the container whose labels match id exactly, including
// stopped ones, or nil if there is none. Containers being removed are
// ignored.
//
// When several containers match (two runs raced before locking existed, or
// containers were created by hand) the oldest one is used, ties broken by
// id, and a warning lists every candidate.
func (e *Engine) Locate(ctx context.Context, id Identity) (*driver.ContainerDetails, error) {
	return e.locate(ctx, id, e.logger)
}

func (e *Engine) locate(ctx context.Context, id Identity, logger *slog.Logger) (*driver.ContainerDetails, error) {
	found, err := e.driver.ListContainers(ctx, id.Labels())
	if err != nil {
		return nil, fmt.Errorf("finding container: %w", err)
	}

	var candidates []driver.ContainerDetails
	for _, c := range found {
		if !id.Matches(c.Labels) || c.State.IsRemoving() {
			continue
		}
		candidates = append(candidates, c)
	}
	if len(candidates) == 0 {
		logger.Info("no container found", "image", id.Image, "source", id.Source, "build", id.BuildDir)
		return nil, nil
	}

	if len(candidates) > 1 {
		sort.SliceStable(candidates, func(i, j int) bool {
			a, b := candidates[i], candidates[j]
			if !a.Created.Equal(b.Created) {
				return a.Created.Before(b.Created)
			}
			return a.ID < b.ID
		})
		ids := make([]string, len(candidates))
		for i, c := range candidates {
			ids[i] = c.ID
		}
		logger.Warn("several containers match the build identity, using the oldest",
			"source", id.Source, "chosen", candidates[0].ID, "candidates", ids)
	}

	c := candidates[0]
	logger.Info("container found", "container", c.ID, "status", c.State.Status)
	return &c, nil
}

// createOrAdopt returns the existing container for cfg or creates one.
// The lookup and the create happen under the identity's creation lock, so
// concurrent runs with the same identity end up sharing one container.
// An adopted container is used as is: its mounts and labels are trusted.
func (e *Engine) createOrAdopt(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Handle, error) {
	id := IdentityOf(cfg)

	unlock, err := e.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	existing, err := e.locate(ctx, id, logger)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &Handle{ID: existing.ID, Identity: id, Adopted: true}, nil
	}

	e.reportProgress("Creating container...")
	res, err := e.driver.CreateContainer(ctx, createOptions(cfg, id))
	if err != nil {
		return nil, fmt.Errorf("creating container: %w", err)
	}
	for _, w := range res.Warnings {
		_, _ = fmt.Fprintln(e.stderr, w)
	}
	logger.Info("new container created", "container", res.ID)

	return &Handle{ID: res.ID, Identity: id}, nil
}

// createOptions describes a new build container: the source tree is
// mounted at the same path so absolute paths are valid on both sides, and
// the container is kept after it stops so later runs can adopt it.
func createOptions(cfg *config.Config, id Identity) *driver.CreateOptions {
	return &driver.CreateOptions{
		Image:      cfg.Image,
		Binds:      []driver.Bind{{Source: cfg.Source, Target: cfg.Source}},
		Labels:     id.Labels(),
		TTY:        true,
		AutoRemove: false,
	}
}
