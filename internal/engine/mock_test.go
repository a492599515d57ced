package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/termoshtt/cport/internal/driver"
)

// mockDriver is an in-memory container runtime recording every operation.
type mockDriver struct {
	mu sync.Mutex

	containers []driver.ContainerDetails
	ops        []string

	createCalls []*driver.CreateOptions
	warnings    []string

	// errors is keyed by operation: "list", "create", "start", "stop" or
	// "exec <cmdline>".
	errors map[string]error
	// exitCodes and outputs are keyed by exec command line.
	exitCodes map[string]int
	outputs   map[string][]driver.Chunk

	// ignoreFilter makes ListContainers return every container, like a
	// runtime that does not support label filters.
	ignoreFilter bool

	// stopCtxErr records ctx.Err() seen by each StopContainer call.
	stopCtxErr []error
}

var mockEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func (m *mockDriver) record(op string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, _, _ := strings.Cut(op, " ")
	m.ops = append(m.ops, op)
	if key == "exec" {
		return m.errors[op]
	}
	return m.errors[key]
}

func (m *mockDriver) ListContainers(ctx context.Context, labels map[string]string) ([]driver.ContainerDetails, error) {
	if err := m.record("list"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []driver.ContainerDetails
	for _, c := range m.containers {
		if m.ignoreFilter || labelsMatch(c.Labels, labels) {
			out = append(out, c)
		}
	}
	return out, nil
}

func labelsMatch(have, want map[string]string) bool {
	for k, v := range want {
		got, ok := have[k]
		if !ok || (v != "" && got != v) {
			return false
		}
	}
	return true
}

func (m *mockDriver) CreateContainer(ctx context.Context, opts *driver.CreateOptions) (*driver.CreateResult, error) {
	if err := m.record("create"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.createCalls = append(m.createCalls, opts)
	id := fmt.Sprintf("c%d", len(m.createCalls))
	labels := make(map[string]string, len(opts.Labels))
	for k, v := range opts.Labels {
		labels[k] = v
	}
	m.containers = append(m.containers, driver.ContainerDetails{
		ID:      id,
		Image:   opts.Image,
		Created: mockEpoch.Add(time.Duration(len(m.containers)) * time.Minute),
		State:   driver.ContainerState{Status: "created"},
		Labels:  labels,
	})
	return &driver.CreateResult{ID: id, Warnings: m.warnings}, nil
}

func (m *mockDriver) StartContainer(ctx context.Context, containerID string) error {
	return m.record("start " + containerID)
}

func (m *mockDriver) StopContainer(ctx context.Context, containerID string, timeout *time.Duration) error {
	m.mu.Lock()
	m.stopCtxErr = append(m.stopCtxErr, ctx.Err())
	m.mu.Unlock()
	if timeout != nil {
		return fmt.Errorf("unexpected stop timeout %v", *timeout)
	}
	return m.record("stop " + containerID)
}

func (m *mockDriver) ExecContainer(ctx context.Context, containerID string, opts *driver.ExecOptions) (*driver.ExecStream, error) {
	cmdline := strings.Join(opts.Cmd, " ")
	if err := m.record("exec " + cmdline); err != nil {
		return nil, err
	}
	m.mu.Lock()
	chunks := m.outputs[cmdline]
	code := m.exitCodes[cmdline]
	m.mu.Unlock()

	ch := make(chan driver.Chunk, len(chunks))
	for _, c := range chunks {
		ch <- c
	}
	close(ch)
	return driver.NewExecStream(ch, func() (int, error) { return code, nil }), nil
}

// opsLog returns a copy of the recorded operations.
func (m *mockDriver) opsLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ops...)
}

// creates returns the number of create calls.
func (m *mockDriver) creates() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.createCalls)
}
