package vfx

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

type AssetId string

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}

// CurveAsset is an externally supplied curve texture: an RGBA image whose
// rows are resampled into the 4-channel LUT (R size, G opacity, B velocity,
// A rotation speed).
type CurveAsset struct {
	ID      AssetId
	Path    string
	Texture *CurveTexture
}

// loadCurveAsset reads and decodes the image at path and bakes it into a
// CurveTextureWidth-wide LUT using bilinear resampling.
func loadCurveAsset(path string) (*CurveAsset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open curve asset: %w", err)
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode curve asset %s: %w", path, err)
	}

	// Collapse whatever came in to a single CurveTextureWidth x 1 strip.
	dst := image.NewRGBA(image.Rect(0, 0, CurveTextureWidth, 1))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	tex := NewCurveTexture(CurveTextureWidth)
	texels := make([]float32, CurveTextureWidth*4)
	for i := 0; i < CurveTextureWidth; i++ {
		base := i * 4
		texels[base+0] = float32(dst.Pix[base+0]) / 255
		texels[base+1] = float32(dst.Pix[base+1]) / 255
		texels[base+2] = float32(dst.Pix[base+2]) / 255
		texels[base+3] = float32(dst.Pix[base+3]) / 255
	}
	tex.SetTexels(texels)
	tex.SetEnabled(CurveChannelSize|CurveChannelOpacity|CurveChannelVelocity|CurveChannelRotationSpeed, true)

	return &CurveAsset{
		ID:      makeAssetId(),
		Path:    path,
		Texture: tex,
	}, nil
}

// LoadCurveTexture loads a curve asset asynchronously. On success the LUT is
// swapped in at the start of the next Update; on failure a warning is logged
// and the engine keeps the curve it has. Never fatal.
func (e *Engine) LoadCurveTexture(path string) {
	go func() {
		asset, err := loadCurveAsset(path)
		if err != nil {
			e.logger.Warnf("curve asset load failed, keeping current curve: %v", err)
			return
		}
		e.logger.Infof("curve asset %s loaded from %s", asset.ID, asset.Path)
		e.pendingCurve.Store(asset.Texture)
	}()
}
