package renderer

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrUnknownMode is returned by ParseMode for names that are not a render mode.
var ErrUnknownMode = errors.New("renderer: unknown render mode")

// Program names registered with the shader library.
const (
	ProgramTexturedGeometry = "TEXTURED_GEOMETRY"
	ProgramTexturedMeshes   = "TEXTURED_MESHES"
)

// Mode selects what a frame draws.
type Mode int

const (
	// ModeTexturedQuad draws the embedded quad with the dice texture. It is the starting mode.
	ModeTexturedQuad Mode = iota

	// ModeTexturedMeshes draws every enabled scene object with its materials' albedo textures.
	ModeTexturedMeshes
)

var modeNames = map[Mode]string{
	ModeTexturedQuad:   "textured_quad",
	ModeTexturedMeshes: "textured_meshes",
}

// ParseMode returns the mode named by s. An empty name selects ModeTexturedQuad.
//
// Parameters:
//   - s: "textured_quad" or "textured_meshes", in any case
//
// Returns:
//   - Mode: the parsed mode
//   - error: ErrUnknownMode for any other name
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeTexturedQuad, nil
	}
	for m, name := range modeNames {
		if strings.EqualFold(name, s) {
			return m, nil
		}
	}
	return ModeTexturedQuad, errors.Wrapf(ErrUnknownMode, "%q", s)
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// Next returns the mode after m, wrapping around.
func (m Mode) Next() Mode {
	return (m + 1) % Mode(len(modeNames))
}

// ProgramName returns the name of the shader program the mode draws with.
func (m Mode) ProgramName() string {
	if m == ModeTexturedMeshes {
		return ProgramTexturedMeshes
	}
	return ProgramTexturedGeometry
}
