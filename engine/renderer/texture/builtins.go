package texture

import "github.com/cockroachdb/errors"

const (
	BuiltinWhite   = "builtin:white"
	BuiltinBlack   = "builtin:black"
	BuiltinNormal  = "builtin:normal"
	BuiltinMagenta = "builtin:magenta"
)

// Builtins holds the indices of the textures registered at startup.
type Builtins struct {
	White   uint32
	Black   uint32
	Normal  uint32
	Magenta uint32
	// Dice is the quad texture, Magenta when the file could not be loaded.
	Dice uint32
}

// RegisterBuiltins registers the solid fallback textures and loads the dice texture.
// A missing dice file is reported and replaced by magenta.
//
// Parameters:
//   - lib: the library receiving the textures
//   - dicePath: the dice texture file, empty to skip
//
// Returns:
//   - Builtins: the registered indices
//   - error: an error if a solid texture could not be created
func RegisterBuiltins(lib Library, dicePath string) (Builtins, error) {
	var b Builtins
	solids := []struct {
		key string
		img Image
		dst *uint32
	}{
		{BuiltinWhite, Solid(0xff, 0xff, 0xff, 0xff), &b.White},
		{BuiltinBlack, Solid(0, 0, 0, 0xff), &b.Black},
		{BuiltinNormal, Solid(0x80, 0x80, 0xff, 0xff), &b.Normal},
		{BuiltinMagenta, Solid(0xff, 0, 0xff, 0xff), &b.Magenta},
	}
	for _, s := range solids {
		idx, err := lib.Register(s.key, s.img)
		if err != nil {
			return Builtins{}, errors.Wrapf(err, "builtin %s", s.key)
		}
		*s.dst = idx
	}

	b.Dice = b.Magenta
	if dicePath != "" {
		if idx, err := lib.Load(dicePath); err == nil {
			b.Dice = idx
		}
	}
	return b, nil
}

// Or returns idx, or fallback when idx is NotFound.
func Or(idx, fallback uint32) uint32 {
	if idx == NotFound {
		return fallback
	}
	return idx
}
