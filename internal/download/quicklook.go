package download

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	// Quicklooks arrive as JPEG or PNG, some providers serve TIFF or WebP.
	_ "image/png"

	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/paulmach/orb"
)

// noiseThreshold separates no-data borders from image content. JPEG
// compression leaves noise in the black margins, values below 50 count
// as empty.
const noiseThreshold = 50

// QuicklookFiles names the outputs of SaveQuicklook.
type QuicklookFiles struct {
	ImagePath     string
	WorldfilePath string
	Width         int
	Height        int
}

// SaveQuicklook crops the no-data borders off a quicklook image, saves
// it as <srcID>.jpg and writes a <srcID>.jpgw worldfile that shifts the
// image to the scene footprint. The geocoding is rough: it assumes the
// image spans the footprint bounds exactly.
func SaveQuicklook(data []byte, bound orb.Bound, targetDir, srcID string) (*QuicklookFiles, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode quicklook: %w", err)
	}

	cropped, err := cropNoData(img)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return nil, fmt.Errorf("create target dir: %w", err)
	}

	imagePath := filepath.Join(targetDir, srcID+".jpg")
	f, err := os.Create(imagePath)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", imagePath, err)
	}
	if err := jpeg.Encode(f, cropped, nil); err != nil {
		f.Close()
		return nil, fmt.Errorf("encode quicklook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	size := cropped.Bounds().Size()
	worldfilePath := filepath.Join(targetDir, srcID+".jpgw")
	if err := writeWorldfile(worldfilePath, bound, size.X, size.Y); err != nil {
		return nil, err
	}

	return &QuicklookFiles{
		ImagePath:     imagePath,
		WorldfilePath: worldfilePath,
		Width:         size.X,
		Height:        size.Y,
	}, nil
}

// cropNoData trims the image to the bounding box of pixels with any
// channel above the noise threshold.
func cropNoData(img image.Image) (image.Image, error) {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r>>8 >= noiseThreshold || g>>8 >= noiseThreshold || bl>>8 >= noiseThreshold {
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}

	if maxX < minX || maxY < minY {
		return nil, fmt.Errorf("quicklook has no content above noise threshold")
	}

	rect := image.Rect(minX, minY, maxX+1, maxY+1)
	if rect == b {
		return img, nil
	}
	cropped := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(cropped, cropped.Bounds(), img, rect.Min, draw.Src)
	return cropped, nil
}

// writeWorldfile writes the six-line ESRI worldfile geocoding the image
// to the footprint bounds: pixel sizes, zero rotation, upper-left corner.
func writeWorldfile(path string, bound orb.Bound, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("worldfile needs a non-empty image")
	}
	distX := (bound.Max.X() - bound.Min.X()) / float64(width)
	distY := (bound.Max.Y() - bound.Min.Y()) / float64(height)

	lines := []string{
		formatCoord(distX),
		"0.0",
		"0.0",
		formatCoord(-distY),
		formatCoord(bound.Min.X()),
		formatCoord(bound.Max.Y()),
	}
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write worldfile: %w", err)
	}
	return nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
