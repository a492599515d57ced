package engine

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/termoshtt/cport/internal/config"
)

// Labels attached to every build container. Together they encode the
// container's Identity so it can be found again on the next run.
const (
	LabelImage  = "cport.image"
	LabelSource = "cport.source"
	LabelBuild  = "cport.build"
)

// Identity is the (image, source, build dir) triple naming a build
// container. Two configs with the same triple share a container.
type Identity struct {
	Image    string
	Source   string
	BuildDir string
}

// IdentityOf returns the identity of the build container for cfg.
func IdentityOf(cfg *config.Config) Identity {
	return Identity{
		Image:    cfg.Image,
		Source:   cfg.Source,
		BuildDir: cfg.Build,
	}
}

// Labels returns the container labels encoding id.
func (id Identity) Labels() map[string]string {
	return map[string]string{
		LabelImage:  id.Image,
		LabelSource: id.Source,
		LabelBuild:  id.BuildDir,
	}
}

// Matches reports whether labels carry exactly the three values of id.
func (id Identity) Matches(labels map[string]string) bool {
	return labels[LabelImage] == id.Image &&
		labels[LabelSource] == id.Source &&
		labels[LabelBuild] == id.BuildDir
}

// IdentityFromLabels reads an identity back from container labels.
func IdentityFromLabels(labels map[string]string) Identity {
	return Identity{
		Image:    labels[LabelImage],
		Source:   labels[LabelSource],
		BuildDir: labels[LabelBuild],
	}
}

// Key returns a stable file-name-safe digest of id.
func (id Identity) Key() string {
	h := sha256.New()
	for _, s := range []string{id.Image, id.Source, id.BuildDir} {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:32]
}
