package design

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/youruser/sonicstencil/internal/layout"
	"github.com/youruser/sonicstencil/internal/scene"
)

// ConfigFilename is the name used when a configuration is downloaded.
const ConfigFilename = "sonicstencil_config.json"

// ConfigError reports a configuration that cannot be used.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("design: %s: %s", e.Field, e.Reason)
}

// Marshal encodes c in its canonical form. Load(Marshal(c)) followed by
// Marshal yields the same bytes.
func Marshal(c Config) ([]byte, error) {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// Load decodes a saved configuration. Fields missing from data keep their
// defaults; unknown fields, newer versions and invalid values are rejected.
func Load(data []byte) (Config, error) {
	c := Default()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("design: decoding config: %w", err)
	}
	if dec.More() {
		return Config{}, errors.New("design: trailing data after config")
	}
	if c.Version == 0 {
		c.Version = CurrentVersion
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Hash identifies the rendered look of c.
func (c Config) Hash() string {
	b, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// LayoutRequest builds the planner input from the card and page sections.
func (c Config) LayoutRequest() layout.Request {
	return layout.Request{
		Format:             c.Page.PageFormat,
		CardWidth:          c.Card.Width,
		CardHeight:         c.Card.Height,
		GapX:               c.Page.GapX,
		GapY:               c.Page.GapY,
		Padding:            c.Page.Padding,
		AutoFit:            c.Page.AutoFit,
		ManualCardsPerPage: c.Page.CardsPerPage,
	}
}

// Validate checks every section and returns the first problem found.
func (c Config) Validate() error {
	if c.Version > CurrentVersion {
		return &ConfigError{"version", fmt.Sprintf("unsupported version %d", c.Version)}
	}
	if c.Mode != ModeCard && c.Mode != ModeToken {
		return &ConfigError{"mode", fmt.Sprintf("unknown mode %q", c.Mode)}
	}
	if c.Card.Width <= 0 || c.Card.Height <= 0 {
		return &ConfigError{"card", "width and height must be positive"}
	}
	if c.Card.Width > MaxCardSize || c.Card.Height > MaxCardSize {
		return &ConfigError{"card", fmt.Sprintf("width and height must not exceed %dpx", MaxCardSize)}
	}
	if c.Card.BorderRadius < 0 || c.Card.BorderWidth < 0 {
		return &ConfigError{"card", "border radius and width must not be negative"}
	}
	if _, err := layout.Format(c.Page.PageFormat); err != nil {
		return &ConfigError{"page.pageFormat", err.Error()}
	}
	if c.Page.Padding < 0 || c.Page.GapX < 0 || c.Page.GapY < 0 {
		return &ConfigError{"page", "padding and gaps must not be negative"}
	}
	if !c.Page.AutoFit && c.Page.CardsPerPage < 1 {
		return &ConfigError{"page.cardsPerPage", "must be at least 1 in manual mode"}
	}
	if c.QRCode.Size <= 0 || c.QRCode.Size > 100 {
		return &ConfigError{"qrCode.size", "must be within (0, 100]"}
	}
	if !c.Vinyl.Style.Valid() {
		return &ConfigError{"vinyl.style", fmt.Sprintf("unknown style %q", c.Vinyl.Style)}
	}
	if c.Vinyl.RingCount < 0 || c.Vinyl.SoundwavePoints < 0 || c.Vinyl.EqualizerBars < 0 ||
		c.Vinyl.SunburstLines < 0 || c.Vinyl.GridDensity < 0 || c.Vinyl.GlitchSegments < 0 {
		return &ConfigError{"vinyl", "counts must not be negative"}
	}
	if c.Back.CodeRotation != RotationMirrored && c.Back.CodeRotation != RotationUniform {
		return &ConfigError{"back.codeRotation", fmt.Sprintf("unknown rotation %q", c.Back.CodeRotation)}
	}
	for name, f := range map[string]TextField{"back.artist": c.Back.Artist, "back.year": c.Back.Year, "back.title": c.Back.Title} {
		switch f.Case {
		case "", CaseNone, CaseUpper, CaseLower, CaseCapitalize:
		default:
			return &ConfigError{name + ".case", fmt.Sprintf("unknown case transform %q", f.Case)}
		}
	}
	return c.validateColors()
}

func (c Config) validateColors() error {
	colors := map[string]string{
		"card.backgroundColor": c.Card.BackgroundColor,
		"card.borderColor":     c.Card.BorderColor,
		"qrCode.color":         c.QRCode.Color,
		"qrCode.bgColor":       c.QRCode.BgColor,
		"vinyl.lineColor":      c.Vinyl.LineColor,
	}
	for field, v := range colors {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if _, err := scene.ParseColor(v); err != nil {
			return &ConfigError{field, err.Error()}
		}
	}
	return nil
}
