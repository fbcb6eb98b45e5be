// Package scene describes a card face as an ordered list of drawing items.
//
// A Scene is backend independent: the compositor records items into it and a
// rasterizer plays them back in order. Coordinates are device pixels with the
// origin at the top-left corner of the card. Angles on arcs are degrees
// measured clockwise from twelve o'clock.
package scene

import (
	"image"
	"image/color"
)

type Point struct {
	X, Y float64
}

// Style is shared by the geometric items. A nil Stroke or Fill disables that
// paint. The zero Opacity is fully opaque.
type Style struct {
	Stroke    color.Color
	Fill      color.Color
	LineWidth float64
	Opacity   float64
	Glow      float64 // blur radius of a halo in the stroke colour
}

// Alpha returns the effective opacity in [0,1].
func (s Style) Alpha() float64 {
	return alpha(s.Opacity)
}

func alpha(o float64) float64 {
	if o <= 0 || o > 1 {
		return 1
	}
	return o
}

// Item is one of the drawing primitives declared in this package.
type Item interface {
	item()
}

type Circle struct {
	Center Point
	R      float64
	Style
}

type Arc struct {
	Center     Point
	R          float64
	Start, End float64
	Style
}

type Line struct {
	From, To Point
	Style
}

type Polyline struct {
	Points []Point
	Closed bool
	Style
}

type Rect struct {
	X, Y, W, H float64
	Radius     float64
	Style
}

// Text is a single line of text. Pos is the anchor point; AnchorX/AnchorY
// select which part of the text box sits on it (0.5/0.5 centres it). Rotate
// turns the text about Pos, in degrees clockwise. A positive MaxWidth wraps
// the text at word boundaries into lines spaced 1.2 em apart.
type Text struct {
	Pos           Point
	Text          string
	Size          float64
	Weight        int
	Color         color.Color
	Opacity       float64
	AnchorX       float64
	AnchorY       float64
	Rotate        float64
	LetterSpacing float64 // extra advance per glyph, px
	MaxWidth      float64
}

func (t Text) Alpha() float64 {
	return alpha(t.Opacity)
}

type Image struct {
	X, Y, W, H float64
	Src        image.Image
	Opacity    float64
}

func (i Image) Alpha() float64 {
	return alpha(i.Opacity)
}

// QR marks the square region where a QR code for Payload is drawn. A nil
// Background leaves the region transparent.
type QR struct {
	X, Y, Size float64
	Payload    string
	Foreground color.Color
	Background color.Color
}

// Group draws its items on a separate layer which is then blurred by Blur
// px and composited at Opacity, shifted by Offset.
type Group struct {
	Offset  Point
	Items   []Item
	Blur    float64
	Opacity float64
}

func (g Group) Alpha() float64 {
	return alpha(g.Opacity)
}

func (Circle) item()   {}
func (Arc) item()      {}
func (Line) item()     {}
func (Polyline) item() {}
func (Rect) item()     {}
func (Text) item()     {}
func (Image) item()    {}
func (QR) item()       {}
func (Group) item()    {}

// Scene is a recorded card face. CornerRadius clips everything drawn to the
// rounded card outline.
type Scene struct {
	Width, Height float64
	CornerRadius  float64
	Items         []Item
}

func New(width, height float64) *Scene {
	return &Scene{Width: width, Height: height}
}

func (s *Scene) Add(items ...Item) {
	s.Items = append(s.Items, items...)
}

// Embed adds all items of other as one group shifted by (dx, dy).
func (s *Scene) Embed(other *Scene, dx, dy float64) {
	if other == nil || len(other.Items) == 0 {
		return
	}
	s.Add(Group{Offset: Point{dx, dy}, Items: other.Items})
}

// Empty reports whether the scene draws nothing.
func (s *Scene) Empty() bool {
	return s == nil || len(s.Items) == 0
}

// Walk calls fn for every item, descending into groups.
func (s *Scene) Walk(fn func(Item)) {
	var walk func([]Item)
	walk = func(items []Item) {
		for _, it := range items {
			fn(it)
			if g, ok := it.(Group); ok {
				walk(g.Items)
			}
		}
	}
	walk(s.Items)
}
