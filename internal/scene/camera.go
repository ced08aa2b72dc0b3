package scene

// CameraKeyframe pins the camera to a center point and zoom level at a
// specific scene time.
type CameraKeyframe struct {
	Time float64 `yaml:"time"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
	Zoom float64 `yaml:"zoom"`
}

// CameraState is the interpolated camera position and zoom at one moment.
type CameraState struct {
	X    float64 // pan X (center point in pixels)
	Y    float64 // pan Y (center point in pixels)
	Zoom float64 // zoom level (1.0 = no zoom)
}

// InterpolateCamera calculates the camera state at a given time by
// interpolating between keyframes with smooth in-out easing.
func InterpolateCamera(keyframes []CameraKeyframe, currentTime float64) CameraState {
	if len(keyframes) == 0 {
		return CameraState{Zoom: 1.0}
	}

	if currentTime <= keyframes[0].Time {
		return stateOf(keyframes[0])
	}
	if currentTime >= keyframes[len(keyframes)-1].Time {
		return stateOf(keyframes[len(keyframes)-1])
	}

	var prev, next CameraKeyframe
	for i := 0; i < len(keyframes)-1; i++ {
		if currentTime >= keyframes[i].Time && currentTime < keyframes[i+1].Time {
			prev = keyframes[i]
			next = keyframes[i+1]
			break
		}
	}

	timeDelta := next.Time - prev.Time
	if timeDelta == 0 {
		timeDelta = 0.001
	}
	t := easeInOutCubic((currentTime - prev.Time) / timeDelta)

	return CameraState{
		X:    lerp(prev.X, next.X, t),
		Y:    lerp(prev.Y, next.Y, t),
		Zoom: lerp(zoomOf(prev), zoomOf(next), t),
	}
}

func stateOf(kf CameraKeyframe) CameraState {
	return CameraState{X: kf.X, Y: kf.Y, Zoom: zoomOf(kf)}
}

func zoomOf(kf CameraKeyframe) float64 {
	if kf.Zoom <= 0 {
		return 1.0
	}
	return kf.Zoom
}

// lerp performs linear interpolation between a and b.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// easeInOutCubic applies a smooth easing function.
func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}
