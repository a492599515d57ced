package oci

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/termoshtt/cport/internal/driver"
	"github.com/termoshtt/cport/internal/fault"
)

// collect reads every chunk of s and returns its exit status.
func collect(t *testing.T, s *driver.ExecStream) (map[driver.StreamKind]string, int, error) {
	t.Helper()
	out := map[driver.StreamKind]string{}
	for c := range s.Chunks() {
		out[c.Stream] += string(c.Data)
	}
	code, err := s.Wait()
	return out, code, err
}

func TestExecContainer_StreamsBothAttachedStreams(t *testing.T) {
	d := newFakeDriver(t)

	s, err := d.ExecContainer(context.Background(), "abc", &driver.ExecOptions{
		Cmd:          []string{"ok"},
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		t.Fatalf("ExecContainer: %v", err)
	}
	out, code, err := collect(t, s)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if out[driver.Stdout] != "to stdout\n" {
		t.Errorf("stdout = %q", out[driver.Stdout])
	}
	if out[driver.Stderr] != "to stderr\n" {
		t.Errorf("stderr = %q", out[driver.Stderr])
	}
}

func TestExecContainer_UnattachedStderrIsNotDelivered(t *testing.T) {
	d := newFakeDriver(t)

	s, err := d.ExecContainer(context.Background(), "abc", &driver.ExecOptions{
		Cmd:          []string{"ok"},
		AttachStdout: true,
	})
	if err != nil {
		t.Fatalf("ExecContainer: %v", err)
	}
	out, _, err := collect(t, s)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if _, ok := out[driver.Stderr]; ok {
		t.Errorf("stderr delivered without being attached: %q", out[driver.Stderr])
	}
}

func TestExecContainer_NonZeroExitIsNotAnError(t *testing.T) {
	d := newFakeDriver(t)

	s, err := d.ExecContainer(context.Background(), "abc", &driver.ExecOptions{
		Cmd:          []string{"fail"},
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		t.Fatalf("ExecContainer: %v", err)
	}
	out, code, err := collect(t, s)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
	if !strings.Contains(out[driver.Stderr], "compile error") {
		t.Errorf("stderr = %q", out[driver.Stderr])
	}
}

func TestExecContainer_RuntimeFailureIsContainerFault(t *testing.T) {
	d := newFakeDriver(t)

	s, err := d.ExecContainer(context.Background(), "abc", &driver.ExecOptions{
		Cmd:          []string{"gone"},
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		t.Fatalf("ExecContainer: %v", err)
	}
	_, _, err = collect(t, s)
	fe, ok := fault.As(err)
	if !ok || fe.Kind != fault.ContainerFault {
		t.Fatalf("expected container fault, got %v", err)
	}
	if fe.Code != 409 {
		t.Errorf("Code = %d, want 409", fe.Code)
	}
}

func TestExecContainer_CommandOutputMentioningRuntimeIsNotAFault(t *testing.T) {
	for _, cmd := range []string{"nested", "fixture"} {
		t.Run(cmd, func(t *testing.T) {
			d := newFakeDriver(t)

			s, err := d.ExecContainer(context.Background(), "abc", &driver.ExecOptions{
				Cmd:          []string{cmd},
				AttachStdout: true,
				AttachStderr: true,
			})
			if err != nil {
				t.Fatalf("ExecContainer: %v", err)
			}
			_, code, err := collect(t, s)
			if err != nil {
				t.Fatalf("Wait: %v", err)
			}
			if code != 2 {
				t.Errorf("exit code = %d, want 2", code)
			}
		})
	}
}

func TestExecContainer_MissingExecutableIsContainerFault(t *testing.T) {
	d := newFakeDriver(t)

	s, err := d.ExecContainer(context.Background(), "abc", &driver.ExecOptions{
		Cmd:          []string{"noexec"},
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		t.Fatalf("ExecContainer: %v", err)
	}
	_, _, err = collect(t, s)
	fe, ok := fault.As(err)
	if !ok || fe.Kind != fault.ContainerFault {
		t.Fatalf("expected container fault, got %v", err)
	}
	if fe.Code != 404 {
		t.Errorf("Code = %d, want 404", fe.Code)
	}
}

func TestExecRuntimeMessage(t *testing.T) {
	tests := []struct {
		name    string
		stderr  string
		code    int
		wantMsg string
		wantOK  bool
	}{
		{"daemon rejection", "Error response from daemon: container abc is not running\n", 1, "container abc is not running", true},
		{"docker lead", "docker: Error response from daemon: No such container: abc.\n", 125, "No such container: abc.", true},
		{"oci runtime", "OCI runtime exec failed: exec failed: no such file\n", 126, "exec failed: no such file", true},
		{"bare error from cli", "Error: No such container: abc\n", 125, "No such container: abc", true},
		{"bare error from command", "Error: tests failed\n", 1, "", false},
		{"daemon text mid line", "  docker pull failed: Error response from daemon: manifest unknown\n", 2, "", false},
		{"daemon text on earlier line", "Error response from daemon: manifest unknown\nninja: build stopped.\n", 2, "", false},
		{"unreachable text", "-- tests: error during connect to fixture server\n", 2, "", false},
		{"trailing blank lines", "Error response from daemon: gone\n\n\n", 1, "gone", true},
		{"empty", "", 1, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := execRuntimeMessage(tt.stderr, tt.code)
			if ok != tt.wantOK || msg != tt.wantMsg {
				t.Errorf("execRuntimeMessage = (%q, %v), want (%q, %v)", msg, ok, tt.wantMsg, tt.wantOK)
			}
		})
	}
}

func TestPump(t *testing.T) {
	out := make(chan driver.Chunk, 16)
	tail := &tailBuffer{max: 4}

	if err := pump(strings.NewReader("hello world"), driver.Stderr, out, tail); err != nil {
		t.Fatalf("pump: %v", err)
	}
	close(out)

	var got bytes.Buffer
	for c := range out {
		if c.Stream != driver.Stderr {
			t.Errorf("chunk stream = %v, want stderr", c.Stream)
		}
		got.Write(c.Data)
	}
	if got.String() != "hello world" {
		t.Errorf("pumped %q, want %q", got.String(), "hello world")
	}
	if tail.String() != "orld" {
		t.Errorf("tail = %q, want %q", tail.String(), "orld")
	}
}
