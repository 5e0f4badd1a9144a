// Package tracks bundles the track catalog, segment maps and selector
// scripts, and lets a directory on disk override them while authoring.
package tracks

import (
	"embed"
	"errors"
	"io/fs"
	"os"
)

// Catalog is the name of the track list inside the tracks file system.
const Catalog = "tracks.yaml"

// MapsDir and ScriptsDir are the roots catalog paths are relative to.
const (
	MapsDir    = "maps"
	ScriptsDir = "scripts"
)

//go:embed tracks.yaml maps scripts
var Files embed.FS

// FS returns the track files with dir on disk taking precedence over the
// embedded copies. An empty dir yields the embedded files only.
func FS(dir string) fs.FS {
	if dir == "" {
		return Files
	}
	return overlayFS{disk: os.DirFS(dir), embedded: Files}
}

type overlayFS struct {
	disk     fs.FS
	embedded fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	f, err := o.disk.Open(name)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return o.embedded.Open(name)
}

// MapPath returns the path of a catalog map file inside the tracks FS.
func MapPath(name string) string { return MapsDir + "/" + name }

// ScriptPath returns the path of a catalog selector script.
func ScriptPath(name string) string { return ScriptsDir + "/" + name }
