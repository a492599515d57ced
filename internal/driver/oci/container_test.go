package oci

import (
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/termoshtt/cport/internal/driver"
)

func newTestDockerDriver() *OCIDriver {
	return &OCIDriver{
		helper:  NewHelper("docker", slog.Default()),
		runtime: RuntimeDocker,
		logger:  slog.Default(),
	}
}

func TestBuildCreateArgs(t *testing.T) {
	opts := &driver.CreateOptions{
		Image: "debian",
		Binds: []driver.Bind{{Source: "/proj", Target: "/proj"}},
		Labels: map[string]string{
			"cport.source": "/proj",
			"cport.image":  "debian",
			"cport.build":  "_cport",
		},
		TTY: true,
	}

	got := buildCreateArgs(opts)
	want := []string{
		"create", "-t",
		"--label", "cport.build=_cport",
		"--label", "cport.image=debian",
		"--label", "cport.source=/proj",
		"--mount", "type=bind,src=/proj,dst=/proj",
		"debian",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("buildCreateArgs =\n%v\nwant\n%v", got, want)
	}
}

func TestBuildCreateArgs_NoOptionalFlags(t *testing.T) {
	got := strings.Join(buildCreateArgs(&driver.CreateOptions{Image: "alpine"}), " ")

	for _, flag := range []string{"-t", "--rm", "--label", "--mount"} {
		if strings.Contains(got, flag) {
			t.Errorf("unexpected flag %q in args: %s", flag, got)
		}
	}
	if !strings.HasSuffix(got, "alpine") {
		t.Errorf("expected args to end with the image, got: %s", got)
	}
}

func TestBuildCreateArgs_AutoRemove(t *testing.T) {
	got := buildCreateArgs(&driver.CreateOptions{Image: "alpine", AutoRemove: true})
	assertContains(t, strings.Join(got, " "), "create --rm alpine")
}

func TestBuildListArgs(t *testing.T) {
	got := buildListArgs(map[string]string{
		"cport.source": "/proj",
		"cport.image":  "debian",
	})
	want := []string{
		"ps", "-a", "-q", "--no-trunc",
		"--filter", "label=cport.image=debian",
		"--filter", "label=cport.source=/proj",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("buildListArgs = %v, want %v", got, want)
	}
}

func TestBuildListArgs_PresenceFilter(t *testing.T) {
	got := buildListArgs(map[string]string{"cport.source": ""})
	assertContains(t, strings.Join(got, " "), "--filter label=cport.source")
	if strings.Contains(strings.Join(got, " "), "label=cport.source=") {
		t.Errorf("presence filter should not carry a value: %v", got)
	}
}

func TestBuildStopArgs(t *testing.T) {
	if got, want := buildStopArgs("abc", nil), []string{"stop", "abc"}; !reflect.DeepEqual(got, want) {
		t.Errorf("buildStopArgs(nil) = %v, want %v", got, want)
	}
	timeout := 30 * time.Second
	if got, want := buildStopArgs("abc", &timeout), []string{"stop", "-t", "30", "abc"}; !reflect.DeepEqual(got, want) {
		t.Errorf("buildStopArgs(30s) = %v, want %v", got, want)
	}
}

func TestBuildExecArgs(t *testing.T) {
	got := buildExecArgs("abc", []string{"cmake", "--build", "/proj/_cport"})
	want := []string{"exec", "abc", "cmake", "--build", "/proj/_cport"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("buildExecArgs = %v, want %v", got, want)
	}
}

func TestToContainerDetails(t *testing.T) {
	var ic inspectContainer
	ic.ID = "abc"
	ic.Created = "2026-10-19T08:30:00.123456789Z"
	ic.State.Status = "exited"
	ic.State.StartedAt = "2026-10-19T08:31:00Z"
	ic.Config.Image = "debian"
	ic.Config.Labels = map[string]string{"cport.source": "/proj"}

	d := ic.toContainerDetails()
	if d.ID != "abc" || d.Image != "debian" || d.State.Status != "exited" {
		t.Errorf("unexpected details: %+v", d)
	}
	if d.Created.IsZero() || d.Created.Nanosecond() != 123456789 {
		t.Errorf("Created = %v, want parsed timestamp", d.Created)
	}
	if want := time.Date(2026, 10, 19, 8, 31, 0, 0, time.UTC); !d.State.StartedAt.Equal(want) {
		t.Errorf("StartedAt = %v, want %v", d.State.StartedAt, want)
	}
	if d.Labels["cport.source"] != "/proj" {
		t.Errorf("Labels = %v", d.Labels)
	}
}

func TestParseWarnings(t *testing.T) {
	stderr := "Unable to find image 'debian:latest' locally\n" +
		"latest: Pulling from library/debian\n" +
		"WARNING: The requested image's platform (linux/arm64) does not match\n"
	got := parseWarnings(stderr)
	want := []string{"The requested image's platform (linux/arm64) does not match"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseWarnings = %v, want %v", got, want)
	}
}

func TestParseLines(t *testing.T) {
	got := parseLines("\n  abc \n\ndef\n")
	if want := []string{"abc", "def"}; !reflect.DeepEqual(got, want) {
		t.Errorf("parseLines = %v, want %v", got, want)
	}
	if got := parseLines(""); got != nil {
		t.Errorf("parseLines(\"\") = %v, want nil", got)
	}
}

func assertContains(t *testing.T, s, substr string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("expected %q to contain %q", s, substr)
	}
}
