package archive

import (
	"context"
	"errors"

	"github.com/project-tktt/dream-jobs/internal/domain"
)

// Archiver stores finished search responses. Archives are write-only:
// nothing in the pipeline reads them back.
type Archiver interface {
	Archive(ctx context.Context, resp *domain.SearchResponse) error
}

// Multi fans a response out to every archiver and joins their errors
type Multi []Archiver

func (m Multi) Archive(ctx context.Context, resp *domain.SearchResponse) error {
	var errs []error
	for _, a := range m {
		if err := a.Archive(ctx, resp); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
