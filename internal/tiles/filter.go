package tiles

import (
	"bytes"
	"image"
	"sync"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
)

// TileSize is the edge of a raster tile in pixels.
const TileSize = 256

// Darken renders the dark map style: grayscale 100%, invert 90%, contrast 90%.
// Alpha is kept.
func Darken(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)

	for i := 0; i+3 < len(dst.Pix); i += 4 {
		r := float64(dst.Pix[i]) / 255
		g := float64(dst.Pix[i+1]) / 255
		bl := float64(dst.Pix[i+2]) / 255

		v := 0.2126*r + 0.7152*g + 0.0722*bl // grayscale
		v = v*0.1 + (1-v)*0.9                // invert 90%
		v = (v-0.5)*0.9 + 0.5                // contrast 90%

		c := toByte(v)
		dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2] = c, c, c
	}

	return dst
}

func toByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}

var (
	transparentOnce sync.Once
	transparentTile []byte
)

// Transparent returns an empty WebP tile served when a tile is unavailable.
func Transparent() []byte {
	transparentOnce.Do(func() {
		var buf bytes.Buffer
		img := image.NewNRGBA(image.Rect(0, 0, TileSize, TileSize))
		if err := webp.Encode(&buf, img, &webp.Options{Lossless: true}); err == nil {
			transparentTile = buf.Bytes()
		}
	})
	return transparentTile
}
