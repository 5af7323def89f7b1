package model

// Quad returns the unit quad centered at the origin in the z = 0 plane, with positions at
// location 0 and uvs at location 2. Its vertex record is 20 bytes.
func Quad() ImportedMesh {
	return ImportedMesh{
		Name: "quad",
		Positions: []float32{
			-0.5, -0.5, 0, // bottom left
			0.5, -0.5, 0, // bottom right
			0.5, 0.5, 0, // top right
			-0.5, 0.5, 0, // top left
		},
		UVs: []float32{
			0, 0,
			1, 0,
			1, 1,
			0, 1,
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}
