package s3mock

import (
	"context"
	"strings"

	"github.com/Klaiveft/What2Watch/internal/model"
)

// Posters stands in for the bucket when S3 is not configured: nothing is
// mirrored and every link points at the TMDB image CDN.
type Posters struct {
	imageBase string
}

func New(imageBase string) *Posters {
	return &Posters{imageBase: strings.TrimRight(imageBase, "/")}
}

func (p *Posters) Mirror(ctx context.Context, m model.Movie) error {
	return nil
}

func (p *Posters) URL(ctx context.Context, m model.Movie) string {
	if m.PosterPath == "" {
		return ""
	}
	return p.imageBase + "/" + strings.TrimLeft(m.PosterPath, "/")
}
