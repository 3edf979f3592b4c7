package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hylla/zukai/internal/domain"
)

// ImageExport is a rendered diagram image.
type ImageExport struct {
	Format         domain.ImageFormat
	Data           []byte
	FileName       string
	FellBack       bool
	FallbackReason string
}

// settle waits for d or until ctx is done.
func settle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// renderImage runs render for the requested format. A failed PNG render falls
// back to SVG; the export reports the fallback and its cause.
func (s *session) renderImage(requested domain.ImageFormat, baseName string, render func(domain.ImageFormat) ([]byte, error)) (ImageExport, error) {
	if s.renderer == nil {
		return ImageExport{}, ErrRendererUnavailable
	}
	if requested == "" {
		requested = domain.ImagePNG
	}
	data, err := render(requested)
	if err == nil {
		return ImageExport{Format: requested, Data: data, FileName: baseName + "." + requested.Extension()}, nil
	}
	if requested != domain.ImagePNG {
		return ImageExport{}, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	s.logger.Warn("png export failed, falling back to svg", "diagram", s.kind, "err", err)
	svg, svgErr := render(domain.ImageSVG)
	if svgErr != nil {
		return ImageExport{}, fmt.Errorf("%w: %w", ErrExportFailed, errors.Join(err, svgErr))
	}
	return ImageExport{
		Format:         domain.ImageSVG,
		Data:           svg,
		FileName:       baseName + "." + domain.ImageSVG.Extension(),
		FellBack:       true,
		FallbackReason: err.Error(),
	}, nil
}
