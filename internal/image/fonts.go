package imagepkg

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	fontsOnce sync.Once
	fontsErr  error
	fontSet   map[string]*truetype.Font
)

type faceKey struct {
	name string
	size float64
}

func loadFonts() error {
	fontsOnce.Do(func() {
		fontSet = map[string]*truetype.Font{}
		for name, ttf := range map[string][]byte{
			"regular": goregular.TTF,
			"medium":  gomedium.TTF,
			"bold":    gobold.TTF,
		} {
			f, err := truetype.Parse(ttf)
			if err != nil {
				fontsErr = fmt.Errorf("parsing %s font: %w", name, err)
				return
			}
			fontSet[name] = f
		}
	})
	return fontsErr
}

func weightName(weight int) string {
	switch {
	case weight >= 700:
		return "bold"
	case weight >= 500:
		return "medium"
	default:
		return "regular"
	}
}

// face returns a face for a CSS style weight and a pixel size, built once
// per painter.
func (p *painter) face(weight int, size float64) (font.Face, error) {
	if err := loadFonts(); err != nil {
		return nil, err
	}
	if size < 1 {
		size = 1
	}
	key := faceKey{weightName(weight), size}
	if f, ok := p.faces[key]; ok {
		return f, nil
	}
	f := truetype.NewFace(fontSet[key.name], &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
	p.faces[key] = f
	return f, nil
}
