package frame

import "fmt"

// Effect is a per-frame transform. Implementations must not modify their
// input and must be safe for concurrent use.
type Effect interface {
	// Apply processes a frame and returns a new frame of the same size
	Apply(frame *Buffer) (*Buffer, error)
	// GetName returns the effect name for identification
	GetName() string
}

// DefaultDarkThreshold is the intensity below which a pixel counts as dark.
const DefaultDarkThreshold = 64

// Highlight colour written around dark pixels (B, G, R).
const (
	highlightBlue  = 0
	highlightGreen = 0
	highlightRed   = 255
)

// EdgeHighlightEffect paints the 8 neighbours of every dark pixel red.
//
// A pixel is dark when (B+G+R)/3 < threshold, evaluated on the input frame.
// Writes go to a separate output buffer, so the result does not depend on
// iteration order: an output pixel is red exactly when it neighbours at
// least one dark input pixel, and a copy of the input otherwise.
type EdgeHighlightEffect struct {
	threshold int // 0-256
}

// NewEdgeHighlightEffect creates the effect with DefaultDarkThreshold.
func NewEdgeHighlightEffect() *EdgeHighlightEffect {
	return NewEdgeHighlightEffectWithThreshold(DefaultDarkThreshold)
}

// NewEdgeHighlightEffectWithThreshold creates the effect with a custom
// intensity threshold, clamped to 0-256.
func NewEdgeHighlightEffectWithThreshold(threshold int) *EdgeHighlightEffect {
	if threshold < 0 {
		threshold = 0
	}
	if threshold > 256 {
		threshold = 256
	}
	return &EdgeHighlightEffect{threshold: threshold}
}

// Apply returns a new buffer with the neighbourhoods of dark pixels marked.
func (e *EdgeHighlightEffect) Apply(frame *Buffer) (*Buffer, error) {
	if frame == nil {
		return nil, ErrNilBuffer
	}
	if err := frame.Validate(); err != nil {
		return nil, err
	}

	result := frame.Clone()
	width := frame.Width
	height := frame.Height
	src := frame.Data
	dst := result.Data

	// intensity < threshold  <=>  B+G+R < 3*threshold for integer sums
	limit := 3 * e.threshold

	for y := 0; y < height; y++ {
		row := y * width
		for x := 0; x < width; x++ {
			i := (row + x) * Channels
			if int(src[i])+int(src[i+1])+int(src[i+2]) >= limit {
				continue
			}

			for dy := -1; dy <= 1; dy++ {
				ny := y + dy
				if ny < 0 || ny >= height {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					nx := x + dx
					if (dx == 0 && dy == 0) || nx < 0 || nx >= width {
						continue
					}
					j := (ny*width + nx) * Channels
					dst[j] = highlightBlue
					dst[j+1] = highlightGreen
					dst[j+2] = highlightRed
				}
			}
		}
	}

	return result, nil
}

// GetName returns the effect name.
func (e *EdgeHighlightEffect) GetName() string {
	return fmt.Sprintf("EdgeHighlight(<%d)", e.threshold)
}
