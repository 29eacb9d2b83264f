package ingest

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/h2non/filetype"
	"github.com/sirupsen/logrus"
)

const DefaultMaxBytes = 10 * 1024 * 1024

var (
	ErrTooLarge = errors.New("file too large")
	ErrNotImage = errors.New("file is not an image")
	ErrEmpty    = errors.New("file is empty")
)

// ImageDecoder reads an image file into a data URI preview, the same shape
// a browser FileReader produces. Images larger than MaxDimension on either
// side are scaled down first when the standard codecs can read them.
type ImageDecoder struct {
	MaxBytes     int64
	MaxDimension int
}

func NewImageDecoder(maxBytes int64, maxDimension int) *ImageDecoder {
	return &ImageDecoder{MaxBytes: maxBytes, MaxDimension: maxDimension}
}

func (d *ImageDecoder) Decode(ctx context.Context, src Source) (*Preview, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", src.Name(), err)
	}
	defer rc.Close()

	limit := d.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", src.Name(), err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, src.Name(), limit)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, src.Name())
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !filetype.IsImage(data) {
		kind, _ := filetype.Match(data)
		return nil, fmt.Errorf("%w: %s (%s)", ErrNotImage, src.Name(), kind.Extension)
	}
	kind, _ := filetype.Match(data)

	preview := &Preview{MIME: kind.MIME.Value, Bytes: len(data)}
	payload := data

	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		preview.Width, preview.Height = cfg.Width, cfg.Height
		if d.MaxDimension > 0 && (cfg.Width > d.MaxDimension || cfg.Height > d.MaxDimension) {
			resized, size, mime, err := downscale(data, d.MaxDimension)
			if err != nil {
				logrus.WithError(err).WithField("file", src.Name()).Debug("keeping full size preview")
			} else {
				payload = resized
				preview.Width, preview.Height = size.X, size.Y
				preview.MIME = mime
			}
		}
	}

	preview.DataURI = DataURI(preview.MIME, payload)
	return preview, nil
}

func DataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// downscale fits the image inside a maxDim square keeping its aspect ratio.
func downscale(data []byte, maxDim int) ([]byte, image.Point, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, image.Point{}, "", fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	ratio := float64(width) / float64(height)
	var newWidth, newHeight int
	if ratio > 1 {
		newWidth = maxDim
		newHeight = int(float64(maxDim) / ratio)
	} else {
		newHeight = maxDim
		newWidth = int(float64(maxDim) * ratio)
	}
	newWidth = max(newWidth, 1)
	newHeight = max(newHeight, 1)

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	for y := 0; y < newHeight; y++ {
		for x := 0; x < newWidth; x++ {
			srcX := bounds.Min.X + int(float64(x)*float64(width)/float64(newWidth))
			srcY := bounds.Min.Y + int(float64(y)*float64(height)/float64(newHeight))
			resized.Set(x, y, img.At(srcX, srcY))
		}
	}

	var buf bytes.Buffer
	mime := "image/jpeg"
	if format == "png" {
		mime = "image/png"
		err = png.Encode(&buf, resized)
	} else {
		err = jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 90})
	}
	if err != nil {
		return nil, image.Point{}, "", fmt.Errorf("failed to encode resized image: %w", err)
	}
	return buf.Bytes(), image.Pt(newWidth, newHeight), mime, nil
}
