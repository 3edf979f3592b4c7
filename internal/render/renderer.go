package render

import (
	"context"
	"fmt"

	"github.com/hylla/zukai/internal/domain"
	"github.com/hylla/zukai/internal/layout"
)

// Renderer turns placed diagrams into SVG or PNG bytes.
type Renderer struct{}

// New constructs a new value for this package.
func New() *Renderer {
	return &Renderer{}
}

// RenderLogic renders a placed logic board in format.
func (r *Renderer) RenderLogic(ctx context.Context, placed layout.Logic, frame layout.ExportFrame, format domain.ImageFormat) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch format {
	case domain.ImageSVG:
		return LogicSVG(placed, frame), nil
	case domain.ImagePNG:
		return LogicPNG(placed, frame)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidImageFormat, format)
	}
}

// RenderPurpose renders a placed purpose ring in format.
func (r *Renderer) RenderPurpose(ctx context.Context, placed layout.PurposeDiagram, format domain.ImageFormat) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch format {
	case domain.ImageSVG:
		return PurposeSVG(placed), nil
	case domain.ImagePNG:
		return PurposePNG(placed)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidImageFormat, format)
	}
}
