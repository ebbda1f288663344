package lighting

// MaxPointLights is the maximum number of point lights supported in shaders.
const MaxPointLights = 8

// PointLight is an omnidirectional light at a world position.
// A zero Range means no distance falloff.
type PointLight struct {
	Position  [3]float32
	Color     Color
	Range     float32
	Intensity float32
}

// AddPoint adds a point light to the rig.
// Returns false if the rig is full.
func (r *Rig) AddPoint(light PointLight) bool {
	if len(r.Points) >= MaxPointLights {
		return false
	}
	for i := range light.Color {
		light.Color[i] = clamp01(light.Color[i])
	}
	if light.Range < 0 {
		light.Range = 0
	}
	r.Points = append(r.Points, light)
	return true
}

// ClearPoints removes all point lights.
func (r *Rig) ClearPoints() {
	r.Points = r.Points[:0]
}

// PointCount returns the number of active point lights.
func (r *Rig) PointCount() int {
	return len(r.Points)
}

// PointPositions returns positions as a flat float32 slice for GPU upload.
// Format: [x0, y0, z0, x1, y1, z1, ...], padded to MaxPointLights.
func (r *Rig) PointPositions() []float32 {
	result := make([]float32, MaxPointLights*3)
	for i, light := range r.Points {
		copy(result[i*3:], light.Position[:])
	}
	return result
}

// PointColors returns colors premultiplied by intensity, padded to
// MaxPointLights.
func (r *Rig) PointColors() []float32 {
	result := make([]float32, MaxPointLights*3)
	for i, light := range r.Points {
		c := light.Color.Scaled(light.Intensity)
		copy(result[i*3:], c[:])
	}
	return result
}

// PointRanges returns ranges as a flat float32 slice for GPU upload.
func (r *Rig) PointRanges() []float32 {
	result := make([]float32, MaxPointLights)
	for i, light := range r.Points {
		result[i] = light.Range
	}
	return result
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
