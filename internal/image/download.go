package imagepkg

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"net/url"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/youruser/sonicstencil/internal/util"
)

// DownloadImage fetches an image over http(s) and decodes it.
func DownloadImage(ctx context.Context, rawURL string) (image.Image, error) {
	body, err := util.GetBytes(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return imaging.Decode(bytes.NewReader(body), imaging.AutoOrientation(true))
}

// DecodeDataURL decodes a base64 "data:image/...;base64," URL.
func DecodeDataURL(s string) (image.Image, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, errors.New("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, errors.New("data URL has no payload")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return nil, errors.New("data URL is not base64 encoded")
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("data URL: %w", err)
	}
	return imaging.Decode(bytes.NewReader(raw))
}

// LoadBackground resolves the background image reference of a design: a
// data URL or an http(s) URL. An empty reference yields a nil image.
func LoadBackground(ctx context.Context, ref string) (image.Image, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, nil
	}
	if strings.HasPrefix(ref, "data:") {
		return DecodeDataURL(ref)
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("background image %q: unsupported reference", ref)
	}
	return DownloadImage(ctx, ref)
}
