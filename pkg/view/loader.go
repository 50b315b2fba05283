package view

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/teslashibe/go-flycam/pkg/movement"
)

// fileData is the on-disk layout of a view space file.
//
//	views:
//	  - position: {x: 0, y: 0, z: 1}
//	    orientation: {x: 0, y: 0, z: 0, w: 1}
type fileData struct {
	Frame string             `json:"frame,omitempty" yaml:"frame,omitempty"`
	Views []movement.PoseMsg `json:"views" yaml:"views"`
}

// LoadFromFolder loads folder/name.
func LoadFromFolder(folder, name string) (*ViewSpace, error) {
	return LoadFromFile(filepath.Join(folder, name))
}

// LoadFromFile reads a .json, .yaml or .yml view space file.
//
// It never returns a nil space: a missing or malformed source yields an
// empty space together with the error, and the caller decides whether an
// empty space is fatal. A well-formed file without views also returns
// ErrEmptyViewSpace.
func LoadFromFile(path string) (*ViewSpace, error) {
	empty := &ViewSpace{}

	data, err := os.ReadFile(path)
	if err != nil {
		return empty, fmt.Errorf("failed to read view space file: %w", err)
	}

	var raw fileData
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &raw)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		return empty, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return empty, fmt.Errorf("failed to parse view space %s: %w", path, err)
	}

	if len(raw.Views) == 0 {
		return empty, fmt.Errorf("%w: %s", ErrEmptyViewSpace, path)
	}

	poses := make([]movement.Pose, 0, len(raw.Views))
	for i, m := range raw.Views {
		p := movement.PoseFromMsg(m)
		p.Orientation = movement.NormalizeQuat(p.Orientation)
		if err := p.Validate(); err != nil {
			return empty, fmt.Errorf("view %d in %s: %w", i, path, err)
		}
		poses = append(poses, p)
	}

	return NewViewSpace(poses...), nil
}
