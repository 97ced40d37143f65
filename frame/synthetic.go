package frame

// Synthetic generates count deterministic frames of the given size.
//
// Each frame is a diagonal colour gradient that shifts with the frame index,
// speckled with dark pixels on a sparse grid so that the edge-highlight
// effect has work to do. Identical arguments always produce identical frames.
func Synthetic(width, height, count int) ([]*Buffer, error) {
	frames := make([]*Buffer, 0, count)
	for i := 0; i < count; i++ {
		b, err := NewBuffer(width, height)
		if err != nil {
			return nil, err
		}
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				if (x*7+y*13+i*3)%29 == 0 {
					b.Set(x, y, 10, 20, 30)
					continue
				}
				b.Set(x, y,
					byte(96+(x+i)%160),
					byte(96+(y+i)%160),
					byte(96+(x+y)%160))
			}
		}
		frames = append(frames, b)
	}
	return frames, nil
}
