package render

import (
	"bytes"
	"context"
	"strings"

	"github.com/matzehuels/stackorder/pkg/errors"
	"github.com/matzehuels/stackorder/pkg/plan"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// Formats lists every supported format in display order.
var Formats = []string{FormatText, FormatJSON, FormatDOT, FormatSVG, FormatPNG}

// ValidateFormat reports an INVALID_FORMAT error for unknown formats.
func ValidateFormat(format string) error {
	return errors.ValidateFormat(format, Formats...)
}

// Render produces the schedule of p in the given format.
func Render(ctx context.Context, p *plan.Plan, s *plan.Schedule, format string) ([]byte, error) {
	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case FormatText:
		if err := WriteText(&buf, p, s); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		if err := WriteJSON(&buf, s); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatDOT:
		return []byte(ToDOT(p, s)), nil
	case FormatSVG:
		return RenderSVG(ctx, ToDOT(p, s))
	case FormatPNG:
		return RenderPNG(ctx, ToDOT(p, s))
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
	}
}
