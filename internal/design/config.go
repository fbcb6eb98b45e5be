// Package design holds the card design configuration: the tree of settings
// every render pass reads.
//
// A Config is treated as a value. Sections are replaced whole through the
// With* methods, which return a modified copy, so a snapshot taken at export
// start can never change underneath a running export.
package design

import (
	"github.com/youruser/sonicstencil/internal/ornament"
)

// CurrentVersion is written into every saved configuration.
const CurrentVersion = 1

// MaxCardSize bounds card width and height in px.
const MaxCardSize = 4000

type Mode string

const (
	ModeCard  Mode = "card"
	ModeToken Mode = "token"
)

type Config struct {
	Version int    `json:"version"`
	Mode    Mode   `json:"mode"`
	Card    Card   `json:"card"`
	Front   Front  `json:"front"`
	Back    Back   `json:"back"`
	Token   Token  `json:"token"`
	QRCode  QRCode `json:"qrCode"`
	Vinyl   Vinyl  `json:"vinyl"`
	Page    Page   `json:"page"`
}

// Card is the physical geometry in device pixels.
type Card struct {
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	BorderRadius    float64 `json:"borderRadius"`
	BackgroundColor string  `json:"backgroundColor"`
	ShowBorder      bool    `json:"showBorder"`
	BorderOnFront   bool    `json:"borderOnFront"`
	BorderOnBack    bool    `json:"borderOnBack"`
	BorderWidth     float64 `json:"borderWidth"`
	BorderColor     string  `json:"borderColor"`
}

type Front struct {
	ShowArtist     bool    `json:"showArtist"`
	ArtistFontSize float64 `json:"artistFontSize"`
	ArtistColor    string  `json:"artistColor"`
	ArtistOffset   float64 `json:"artistOffset"` // pt from the top edge
	ShowTitle      bool    `json:"showTitle"`
	TitleFontSize  float64 `json:"titleFontSize"`
	TitleColor     string  `json:"titleColor"`
	TitleOffset    float64 `json:"titleOffset"` // pt from the bottom edge
}

type CaseTransform string

const (
	CaseNone       CaseTransform = "none"
	CaseUpper      CaseTransform = "upper"
	CaseLower      CaseTransform = "lower"
	CaseCapitalize CaseTransform = "capitalize"
)

// TextField styles one text block on the back of a card.
type TextField struct {
	Show          bool          `json:"show"`
	FontSize      float64       `json:"fontSize"`
	Color         string        `json:"color"`
	Weight        int           `json:"weight"`
	Case          CaseTransform `json:"case"`
	LetterSpacing float64       `json:"letterSpacing"` // em
	Offset        float64       `json:"offset"`        // px from the top (artist) or bottom (title) edge, 0 for automatic
}

type CodeRotation string

const (
	RotationMirrored CodeRotation = "mirrored"
	RotationUniform  CodeRotation = "uniform"
)

type Back struct {
	Artist       TextField    `json:"artist"`
	Year         TextField    `json:"year"`
	Title        TextField    `json:"title"`
	ShowCodes    bool         `json:"showCodes"`
	CodeFontSize float64      `json:"codeFontSize"`
	CodeColor    string       `json:"codeColor"`
	CodeOffsetX  float64      `json:"codeOffsetX"`
	CodeRotation CodeRotation `json:"codeRotation"`
}

type Token struct {
	Text1       string  `json:"text1"`
	Text2       string  `json:"text2,omitempty"`
	Text1Size   float64 `json:"text1Size"`
	Text2Size   float64 `json:"text2Size"`
	Text1Color  string  `json:"text1Color"`
	Text2Color  string  `json:"text2Color"`
	TextStroke  bool    `json:"textStroke"`
	StrokeColor string  `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"`
	ShowFrame   bool    `json:"showFrame"`
	FrameGlow   float64 `json:"frameGlow"`
	FrameColor  string  `json:"frameColor"`
}

type QRCode struct {
	Size              float64 `json:"size"` // percent of card width
	Color             string  `json:"color"`
	BgColor           string  `json:"bgColor"`
	BgTransparent     bool    `json:"bgTransparent"`
	PositionX         float64 `json:"positionX"` // percent of card width
	PositionY         float64 `json:"positionY"` // percent of card height
	Frame             bool    `json:"frame"`
	FrameWidth        float64 `json:"frameWidth"`
	FrameBgColor      string  `json:"frameBgColor"`
	FrameBorderRadius float64 `json:"frameBorderRadius"`
}

type Vinyl struct {
	Enabled            bool           `json:"enabled"`
	Style              ornament.Style `json:"style"`
	LineColor          string         `json:"lineColor"`
	LineGap            float64        `json:"lineGap"`
	LineWidth          float64        `json:"lineWidth"`
	GlowIntensity      float64        `json:"glowIntensity"`
	RingCount          int            `json:"ringCount"`
	ClipMargin         float64        `json:"clipMargin"`
	Neon               bool           `json:"neon"`
	GlitchSegments     int            `json:"glitchSegments"`
	GlitchGapMin       float64        `json:"glitchGapMin"`
	GlitchGapMax       float64        `json:"glitchGapMax"`
	SoundwavePoints    int            `json:"soundwavePoints"`
	SoundwaveAmplitude float64        `json:"soundwaveAmplitude"`
	SoundwaveFrequency float64        `json:"soundwaveFrequency"`
	EqualizerBars      int            `json:"equalizerBars"`
	EqualizerMaxHeight float64        `json:"equalizerMaxHeight"`
	SunburstLines      int            `json:"sunburstLines"`
	GridDensity        int            `json:"gridDensity"`
	BackgroundImage    string         `json:"backgroundImage,omitempty"` // data URL or http(s) URL
	BackgroundOpacity  float64        `json:"backgroundOpacity"`
	Seed               uint64         `json:"seed,omitempty"` // 0: fresh randomness per render
}

type Page struct {
	PageFormat   string  `json:"pageFormat"`
	Padding      float64 `json:"padding"`
	GapX         float64 `json:"gapX"`
	GapY         float64 `json:"gapY"`
	AutoFit      bool    `json:"autoFit"`
	CardsPerPage int     `json:"cardsPerPage"`
	MirrorBacks  bool    `json:"mirrorBacks"`
}

// Default returns the configuration a new session starts from.
func Default() Config {
	return Config{
		Version: CurrentVersion,
		Mode:    ModeCard,
		Card: Card{
			Width:           300,
			Height:          300,
			BorderRadius:    16,
			BackgroundColor: "#ffffff",
			ShowBorder:      true,
			BorderOnFront:   true,
			BorderOnBack:    true,
			BorderWidth:     1,
			BorderColor:     "#000000",
		},
		Front: Front{
			ShowArtist:     false,
			ArtistFontSize: 18,
			ArtistColor:    "#000000",
			ArtistOffset:   12,
			ShowTitle:      false,
			TitleFontSize:  14,
			TitleColor:     "#000000",
			TitleOffset:    12,
		},
		Back: Back{
			Artist:       TextField{Show: true, FontSize: 22, Color: "#000000", Weight: 700, Case: CaseNone},
			Year:         TextField{Show: true, FontSize: 56, Color: "#000000", Weight: 900, Case: CaseNone},
			Title:        TextField{Show: true, FontSize: 18, Color: "#000000", Weight: 400, Case: CaseNone},
			ShowCodes:    true,
			CodeFontSize: 10,
			CodeColor:    "#000000",
			CodeOffsetX:  12,
			CodeRotation: RotationMirrored,
		},
		Token: Token{
			Text1:       "1",
			Text1Size:   72,
			Text2Size:   18,
			Text1Color:  "#000000",
			Text2Color:  "#000000",
			StrokeColor: "#ffffff",
			StrokeWidth: 2,
			ShowFrame:   true,
			FrameGlow:   8,
			FrameColor:  "#ff00ff",
		},
		QRCode: QRCode{
			Size:              35,
			Color:             "#000000",
			BgColor:           "#ffffff",
			PositionX:         50,
			PositionY:         50,
			FrameWidth:        6,
			FrameBgColor:      "#ffffff",
			FrameBorderRadius: 6,
		},
		Vinyl: Vinyl{
			Enabled:            true,
			Style:              ornament.StyleGlitch,
			LineColor:          "#222222",
			LineGap:            20,
			LineWidth:          2,
			GlowIntensity:      0,
			RingCount:          13,
			ClipMargin:         4,
			GlitchSegments:     3,
			GlitchGapMin:       5,
			GlitchGapMax:       45,
			SoundwavePoints:    180,
			SoundwaveAmplitude: 8,
			SoundwaveFrequency: 30,
			EqualizerBars:      48,
			EqualizerMaxHeight: 12,
			SunburstLines:      72,
			GridDensity:        12,
			BackgroundOpacity:  0.6,
		},
		Page: Page{
			PageFormat:   "A4",
			Padding:      38,
			GapX:         0,
			GapY:         0,
			AutoFit:      true,
			CardsPerPage: 12,
			MirrorBacks:  true,
		},
	}
}

// With* return a copy of c with one section replaced.

func (c Config) WithMode(m Mode) Config     { c.Mode = m; return c }
func (c Config) WithCard(s Card) Config     { c.Card = s; return c }
func (c Config) WithFront(s Front) Config   { c.Front = s; return c }
func (c Config) WithBack(s Back) Config     { c.Back = s; return c }
func (c Config) WithToken(s Token) Config   { c.Token = s; return c }
func (c Config) WithQRCode(s QRCode) Config { c.QRCode = s; return c }
func (c Config) WithVinyl(s Vinyl) Config   { c.Vinyl = s; return c }
func (c Config) WithPage(s Page) Config     { c.Page = s; return c }
