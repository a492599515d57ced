package oci

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/termoshtt/cport/internal/driver"
	"github.com/termoshtt/cport/internal/fault"
)

// ListContainers returns containers (including stopped ones) carrying every
// label in labels, in the order `ps` reports them.
func (d *OCIDriver) ListContainers(ctx context.Context, labels map[string]string) ([]driver.ContainerDetails, error) {
	out, err := d.helper.Output(ctx, buildListArgs(labels)...)
	if err != nil {
		return nil, err
	}

	ids := parseLines(string(out))
	if len(ids) == 0 {
		return nil, nil
	}

	var raw []inspectContainer
	if err := d.helper.Inspect(ctx, ids, "container", &raw); err != nil {
		return nil, err
	}

	containers := make([]driver.ContainerDetails, 0, len(raw))
	for i := range raw {
		containers = append(containers, raw[i].toContainerDetails())
	}
	return containers, nil
}

// buildListArgs constructs the `ps` argument list.
func buildListArgs(labels map[string]string) []string {
	args := []string{"ps", "-a", "-q", "--no-trunc"}
	for _, k := range sortedKeys(labels) {
		args = append(args, "--filter", LabelFilter(k, labels[k]))
	}
	return args
}

// CreateContainer creates a container without starting it, pulling the
// image if needed.
func (d *OCIDriver) CreateContainer(ctx context.Context, opts *driver.CreateOptions) (*driver.CreateResult, error) {
	stdout, stderr, err := d.helper.Capture(ctx, buildCreateArgs(opts)...)
	if err != nil {
		return nil, err
	}

	lines := parseLines(string(stdout))
	if len(lines) == 0 {
		return nil, fault.TransportErr(d.helper.op([]string{"create"}), fmt.Errorf("no container id in output"))
	}

	return &driver.CreateResult{
		// The id is the last line of stdout.
		ID:       lines[len(lines)-1],
		Warnings: parseWarnings(string(stderr)),
	}, nil
}

// buildCreateArgs constructs the `create` argument list.
func buildCreateArgs(opts *driver.CreateOptions) []string {
	args := []string{"create"}

	if opts.TTY {
		args = append(args, "-t")
	}
	if opts.AutoRemove {
		args = append(args, "--rm")
	}

	for _, k := range sortedKeys(opts.Labels) {
		args = append(args, "--label", k+"="+opts.Labels[k])
	}

	for _, b := range opts.Binds {
		args = append(args, "--mount", b.String())
	}

	// Image (required, last).
	args = append(args, opts.Image)

	return args
}

// StartContainer starts a stopped container.
func (d *OCIDriver) StartContainer(ctx context.Context, containerID string) error {
	_, err := d.helper.Output(ctx, "start", containerID)
	return err
}

// StopContainer stops a running container.
func (d *OCIDriver) StopContainer(ctx context.Context, containerID string, timeout *time.Duration) error {
	_, err := d.helper.Output(ctx, buildStopArgs(containerID, timeout)...)
	return err
}

// buildStopArgs constructs the `stop` argument list. Without a timeout the
// runtime's default grace period applies.
func buildStopArgs(containerID string, timeout *time.Duration) []string {
	args := []string{"stop"}
	if timeout != nil {
		args = append(args, "-t", strconv.Itoa(int(timeout.Seconds())))
	}
	return append(args, containerID)
}

// inspectContainer is an intermediate struct for unmarshaling docker/podman
// inspect JSON.
type inspectContainer struct {
	ID      string `json:"Id"`
	Created string `json:"Created"`
	State   struct {
		Status    string `json:"Status"`
		StartedAt string `json:"StartedAt"`
	} `json:"State"`
	Config struct {
		Image  string            `json:"Image"`
		Labels map[string]string `json:"Labels"`
	} `json:"Config"`
}

// toContainerDetails converts the intermediate inspect result to a driver.ContainerDetails.
func (ic *inspectContainer) toContainerDetails() driver.ContainerDetails {
	created, _ := time.Parse(time.RFC3339Nano, ic.Created)
	started, _ := time.Parse(time.RFC3339Nano, ic.State.StartedAt)
	return driver.ContainerDetails{
		ID:      ic.ID,
		Image:   ic.Config.Image,
		Created: created,
		State: driver.ContainerState{
			Status:    ic.State.Status,
			StartedAt: started,
		},
		Labels: ic.Config.Labels,
	}
}

// parseWarnings returns the "WARNING:" lines of stderr without the prefix.
// Pull progress is also written to stderr and is skipped.
func parseWarnings(stderr string) []string {
	var warnings []string
	for _, line := range parseLines(stderr) {
		if rest, ok := strings.CutPrefix(line, "WARNING:"); ok {
			warnings = append(warnings, strings.TrimSpace(rest))
		}
	}
	return warnings
}

// parseLines splits output by newlines and removes empty strings.
func parseLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(s), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// sortedKeys returns the keys of a map in sorted order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
