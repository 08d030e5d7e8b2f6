package fps

import (
	"encoding/base64"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// SaveImages writes the embedded images of p into dir and points their
// references in the text fields at urlPrefix. It returns the written file
// paths so a failed import can remove them.
func SaveImages(p *Problem, dir, urlPrefix string) ([]string, error) {
	if len(p.Images) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("fps: create upload dir: %w", err)
	}

	var written []string
	for _, img := range p.Images {
		data, err := base64.StdEncoding.DecodeString(img.Blob)
		if err != nil {
			return written, fmt.Errorf("%w: image %q: %v", ErrMalformed, img.Src, err)
		}
		name := uuid.NewString() + filepath.Ext(img.Src)
		full := filepath.Join(dir, name)
		if err := os.WriteFile(full, data, 0o644); err != nil {
			return written, fmt.Errorf("fps: write image: %w", err)
		}
		written = append(written, full)

		if img.Src == "" {
			continue
		}
		url := path.Join(urlPrefix, name)
		for _, field := range []*string{&p.Description, &p.Input, &p.Output, &p.Hint} {
			*field = strings.ReplaceAll(*field, img.Src, url)
		}
	}
	return written, nil
}
