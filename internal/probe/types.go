package probe

// VideoDescriptor is the probed identity of one video file. Immutable once
// built; invalid files never produce a descriptor.
type VideoDescriptor struct {
	Path     string
	Duration float64 // Seconds, > 0.
	Width    int
	Height   int
	FPS      float64 // 0 when ffprobe reports no usable frame rate.
	HasAudio bool
	Size     int64 // Container size in bytes, 0 when unreported.
}

// Resolution returns "WxH" for display.
func (d *VideoDescriptor) Resolution() string {
	return itoa(d.Width) + "x" + itoa(d.Height)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	neg := n < 0
	if neg {
		n = -n
	}
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
