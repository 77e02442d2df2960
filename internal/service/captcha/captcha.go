package captcha

import (
	"bytes"
	"fmt"
	"math/rand/v2"

	svg "github.com/ajstarks/svgo"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultAlphabet leaves out glyphs that are easy to confuse when distorted.
const DefaultAlphabet = "23456789abcdefghjkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"

// Options fixes the visual parameters of every challenge.
type Options struct {
	Size       int
	Noise      int
	Color      bool
	Background string
	Width      int
	Height     int
	FontSize   int
	Alphabet   string

	// TextSource overrides random answer generation.
	TextSource func() (string, error)
}

// DefaultOptions returns the parameters used by the contact page.
func DefaultOptions() Options {
	return Options{
		Size:       5,
		Noise:      2,
		Color:      true,
		Background: "#f0f0f0",
		Width:      150,
		Height:     50,
		FontSize:   36,
		Alphabet:   DefaultAlphabet,
	}
}

// Challenge pairs a rendered puzzle with its answer. Text never leaves the server.
type Challenge struct {
	Image []byte
	Text  string
}

// Issuer renders distorted-text SVG challenges.
type Issuer struct {
	opts Options
}

// NewIssuer fills zero-valued options from DefaultOptions.
func NewIssuer(opts Options) *Issuer {
	def := DefaultOptions()
	if opts.Size <= 0 {
		opts.Size = def.Size
	}
	if opts.Noise < 0 {
		opts.Noise = 0
	}
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.FontSize <= 0 {
		opts.FontSize = def.FontSize
	}
	if opts.Alphabet == "" {
		opts.Alphabet = def.Alphabet
	}
	return &Issuer{opts: opts}
}

// Issue generates a new answer and draws it.
func (i *Issuer) Issue() (Challenge, error) {
	text, err := i.text()
	if err != nil {
		return Challenge{}, fmt.Errorf("generate captcha text: %w", err)
	}
	if text == "" {
		return Challenge{}, fmt.Errorf("generate captcha text: empty answer")
	}
	return Challenge{Image: i.render(text), Text: text}, nil
}

func (i *Issuer) text() (string, error) {
	if i.opts.TextSource != nil {
		return i.opts.TextSource()
	}
	return gonanoid.Generate(i.opts.Alphabet, i.opts.Size)
}

func (i *Issuer) render(text string) []byte {
	var buf bytes.Buffer
	w, h := i.opts.Width, i.opts.Height

	canvas := svg.New(&buf)
	canvas.Start(w, h, fmt.Sprintf(`viewBox="0 0 %d %d"`, w, h))
	if i.opts.Background != "" {
		canvas.Rect(0, 0, w, h, "fill:"+i.opts.Background)
	}

	for n := 0; n < i.opts.Noise; n++ {
		canvas.Path(noisePath(w, h), "fill:none;stroke-width:1.5;stroke:"+i.color())
	}

	runes := []rune(text)
	slot := w / (len(runes) + 1)
	for idx, r := range runes {
		x := slot * (idx + 1)
		y := h/2 + i.opts.FontSize/3 + rand.IntN(7) - 3
		angle := rand.IntN(61) - 30
		canvas.Text(x, y, string(r),
			fmt.Sprintf(`transform="rotate(%d %d %d)"`, angle, x, y),
			fmt.Sprintf("font-family:monospace;font-weight:bold;font-size:%dpx;text-anchor:middle;fill:%s",
				i.opts.FontSize, i.color()))
	}

	canvas.End()
	return buf.Bytes()
}

func (i *Issuer) color() string {
	if !i.opts.Color {
		return "#444"
	}
	// Dark enough to stay readable on a light background.
	return fmt.Sprintf("#%02x%02x%02x", rand.IntN(160), rand.IntN(160), rand.IntN(160))
}

func noisePath(w, h int) string {
	return fmt.Sprintf("M%d %d C%d %d,%d %d,%d %d",
		rand.IntN(w/5+1), rand.IntN(h),
		rand.IntN(w), rand.IntN(h),
		rand.IntN(w), rand.IntN(h),
		w-rand.IntN(w/5+1), rand.IntN(h))
}
