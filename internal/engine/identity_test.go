package engine

import "testing"

func TestIdentityOf(t *testing.T) {
	id := IdentityOf(testConfig())
	want := Identity{Image: "debian", Source: "/proj", BuildDir: "_cport"}
	if id != want {
		t.Errorf("IdentityOf = %+v, want %+v", id, want)
	}
	if got := IdentityFromLabels(id.Labels()); got != id {
		t.Errorf("IdentityFromLabels = %+v, want %+v", got, id)
	}
}

func TestIdentityMatches(t *testing.T) {
	id := IdentityOf(testConfig())

	tests := []struct {
		name   string
		labels map[string]string
		want   bool
	}{
		{"exact", id.Labels(), true},
		{"extra labels", map[string]string{LabelImage: "debian", LabelSource: "/proj", LabelBuild: "_cport", "x": "y"}, true},
		{"other image", map[string]string{LabelImage: "ubuntu", LabelSource: "/proj", LabelBuild: "_cport"}, false},
		{"other source", map[string]string{LabelImage: "debian", LabelSource: "/proj2", LabelBuild: "_cport"}, false},
		{"other build", map[string]string{LabelImage: "debian", LabelSource: "/proj", LabelBuild: "build"}, false},
		{"missing build", map[string]string{LabelImage: "debian", LabelSource: "/proj"}, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := id.Matches(tt.labels); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIdentityKey(t *testing.T) {
	a := Identity{Image: "debian", Source: "/proj", BuildDir: "_cport"}
	if a.Key() != a.Key() {
		t.Error("Key is not stable")
	}
	if len(a.Key()) != 32 {
		t.Errorf("len(Key) = %d, want 32", len(a.Key()))
	}

	// Field boundaries are part of the key.
	b := Identity{Image: "debian/", Source: "proj", BuildDir: "_cport"}
	if a.Key() == b.Key() {
		t.Error("shifting characters between fields must change the key")
	}
	c := a
	c.BuildDir = "_release"
	if a.Key() == c.Key() {
		t.Error("different build dirs share a key")
	}
}
