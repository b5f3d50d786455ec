package renderer

// DetailOptions are passed once to New and control tessellation and
// sampling detail.
type DetailOptions struct {
	// Number of segments used to draw ring systems.
	RingSystemSections uint32

	// Number of samples per orbital period used for orbit paths.
	OrbitPathSamplePoints uint32

	// Shadow and eclipse texture dimensions (powers of two).
	ShadowTextureSize  uint32
	EclipseTextureSize uint32
}

// The default detail options.
func DefaultDetailOptions() DetailOptions {
	return DetailOptions{
		RingSystemSections:    100,
		OrbitPathSamplePoints: 100,
		ShadowTextureSize:     256,
		EclipseTextureSize:    128,
	}
}

func (o DetailOptions) validate() error {
	if o.RingSystemSections < 3 || o.OrbitPathSamplePoints < 3 {
		return ErrInvalidDetailOptions
	}
	if !isPowerOfTwo(o.ShadowTextureSize) || !isPowerOfTwo(o.EclipseTextureSize) {
		return ErrInvalidDetailOptions
	}
	return nil
}

func isPowerOfTwo(v uint32) bool {
	return v != 0 && v&(v-1) == 0
}
