package validators

import (
	"context"

	"github.com/anonto42/tweetline/backend/internal/models"
)

const (
	DefaultTake = 10
	MaxTake     = 50
)

// Identifier checks a path identifier.
func (v *Validator) Identifier(id string) *Failure {
	if !v.IsUUID(id) {
		return Fail("Identifier must be a UUID")
	}
	return nil
}

// PageQuery is a paging query as sent by the client. Nil fields were absent.
type PageQuery struct {
	Page   *int
	Take   *int
	Search string
}

// Pagination drops the presence information. Absent fields become zero, which
// the services read as "use the default".
func (q PageQuery) Pagination() models.Pagination {
	p := models.Pagination{Search: q.Search}
	if q.Page != nil {
		p.Page = *q.Page
	}
	if q.Take != nil {
		p.Take = *q.Take
	}
	return p
}

// PaginationChain validates paging queries. Only parameters that were sent are checked.
func PaginationChain() Chain[PageQuery] {
	return NewChain(func(_ context.Context, q *PageQuery) *Failure {
		var errs []string
		if q.Page != nil && *q.Page < 1 {
			errs = append(errs, "Page must be a positive integer")
		}
		if q.Take != nil && (*q.Take < 1 || *q.Take > MaxTake) {
			errs = append(errs, "Take must be between 1 and 50")
		}
		return FailAll(errs)
	})
}
