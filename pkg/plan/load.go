package plan

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stackorder/pkg/errors"
)

// Supported plan file formats.
const (
	FormatTOML = "toml"
	FormatJSON = "json"
)

// FormatFromPath derives the plan format from a file extension.
// Unknown extensions default to TOML.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	default:
		return FormatTOML
	}
}

// Parse decodes a plan in the given format and validates it.
//
// Parse returns an error with code INVALID_FORMAT for an unknown format or
// malformed input, and the codes of [Plan.Validate] for structural
// problems. TOML input rejects unknown keys so typos in flag names surface
// instead of silently dropping a dependency.
func Parse(data []byte, format string) (*Plan, error) {
	var p Plan
	switch strings.ToLower(format) {
	case FormatTOML:
		md, err := toml.Decode(string(data), &p)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode toml plan")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown plan key %q", undecoded[0].String())
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json plan")
		}
	default:
		return nil, errors.ValidateFormat(format, FormatTOML, FormatJSON)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Read decodes a plan from r. It does not close r.
func Read(r io.Reader, format string) (*Plan, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read plan")
	}
	return Parse(data, format)
}

// Load reads and parses the plan file at path, choosing the format from
// its extension. A missing file yields code FILE_NOT_FOUND.
func Load(path string) (*Plan, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "plan %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	p, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, err
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}

// Encode writes p in the given format.
func Encode(w io.Writer, p *Plan, format string) error {
	switch strings.ToLower(format) {
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(p); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode toml plan")
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(p); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode json plan")
		}
		return nil
	default:
		return errors.ValidateFormat(format, FormatTOML, FormatJSON)
	}
}
