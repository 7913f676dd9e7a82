package workflow

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"sync"
)

// Point is one sampled position on the signature surface.
type Point struct {
	X, Y int
}

// SignaturePad collects freehand strokes and encodes them as a PNG image.
// Reading an empty pad is a silent no-op: no error, no image, so an empty
// signature can never reach the sign callback.
type SignaturePad struct {
	mu      sync.Mutex
	width   int
	height  int
	strokes [][]Point
}

// NewSignaturePad creates a drawing surface of the given pixel size.
func NewSignaturePad(width, height int) *SignaturePad {
	if width <= 0 {
		width = 512
	}
	if height <= 0 {
		height = 256
	}
	return &SignaturePad{width: width, height: height}
}

// Stroke appends one pen stroke. Empty strokes are ignored.
func (p *SignaturePad) Stroke(points []Point) {
	if len(points) == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.strokes = append(p.strokes, append([]Point(nil), points...))
}

// Clear erases all strokes.
func (p *SignaturePad) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.strokes = nil
}

// Empty reports whether the pad holds no strokes.
func (p *SignaturePad) Empty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.strokes) == 0
}

// Read renders the strokes as black-on-white PNG and returns it as a
// "data:image/png;base64," payload. ok is false when the pad is empty.
func (p *SignaturePad) Read() (signature string, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.strokes) == 0 {
		return "", false
	}

	img := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	white := color.RGBA{255, 255, 255, 255}
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			img.SetRGBA(x, y, white)
		}
	}

	pen := color.RGBA{0, 0, 0, 255}
	for _, stroke := range p.strokes {
		prev := stroke[0]
		p.drawDot(img, prev, pen)
		for _, pt := range stroke[1:] {
			p.drawLine(img, prev, pt, pen)
			prev = pt
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", false
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), true
}

// drawDot paints a 2px pen mark, skipping out-of-bounds pixels.
func (p *SignaturePad) drawDot(img *image.RGBA, pt Point, pen color.RGBA) {
	for dy := 0; dy <= 1; dy++ {
		for dx := 0; dx <= 1; dx++ {
			x, y := pt.X+dx, pt.Y+dy
			if x >= 0 && x < p.width && y >= 0 && y < p.height {
				img.SetRGBA(x, y, pen)
			}
		}
	}
}

// drawLine paints a straight segment between two points.
func (p *SignaturePad) drawLine(img *image.RGBA, from, to Point, pen color.RGBA) {
	dx := abs(to.X - from.X)
	dy := abs(to.Y - from.Y)
	steps := dx
	if dy > steps {
		steps = dy
	}
	if steps == 0 {
		p.drawDot(img, to, pen)
		return
	}
	for i := 0; i <= steps; i++ {
		x := from.X + (to.X-from.X)*i/steps
		y := from.Y + (to.Y-from.Y)*i/steps
		p.drawDot(img, Point{X: x, Y: y}, pen)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
