package collection

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve/v2"

	"github.com/kailas-cloud/textdex/internal/domain"
	"github.com/kailas-cloud/textdex/internal/domain/search/request"
	"github.com/kailas-cloud/textdex/internal/domain/search/result"
)

// Search executes a query against the committed index state. The total hit
// count is exact; hits carry the stored subset of their fields. Results are
// ranked by relevance unless the request names sort fields, in which case
// relevance (descending) breaks ties.
func (c *Collection) Search(ctx context.Context, req request.Request) (result.Result, error) {
	q, err := c.mapper.Compile(req.Query())
	if err != nil {
		return result.Result{}, err
	}

	sreq := bleve.NewSearchRequestOptions(q, req.Limit(), req.Offset(), false)
	sreq.Fields = []string{"*"}
	if sort := req.Sort(); len(sort) > 0 {
		keys := make([]string, 0, len(sort)+1)
		for _, s := range sort {
			if _, ok := c.mapper.Field(s.Field()); !ok {
				return result.Result{}, fmt.Errorf("%w: unknown sort field %q", domain.ErrQuery, s.Field())
			}
			key := s.Field()
			if s.Order() == request.OrderDesc {
				key = "-" + key
			}
			keys = append(keys, key)
		}
		keys = append(keys, "-_score")
		sreq.SortBy(keys)
	}

	res, err := c.idx.SearchInContext(ctx, sreq)
	if err != nil {
		return result.Result{}, fmt.Errorf("%w: %v", domain.ErrSearch, err)
	}

	hits := make([]result.Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, result.NewHit(h.ID, float32(h.Score), c.mapper.DecodeHit(h.Fields)))
	}
	return result.New(res.Total, hits, res.Took.Milliseconds()), nil
}
