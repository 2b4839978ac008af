package search

import (
	"sort"

	"github.com/kailas-cloud/collabsearch/internal/domain/search/category"
	"github.com/kailas-cloud/collabsearch/internal/domain/search/cursor"
	"github.com/kailas-cloud/collabsearch/internal/domain/search/request"
	"github.com/kailas-cloud/collabsearch/internal/domain/search/result"
)

// outputCategory is the request category whose filter pages each output bucket.
var outputCategory = map[result.Output]category.Category{
	result.OutputContributors:       category.Contributors,
	result.OutputContributions:      category.Responses,
	result.OutputFramings:           category.Responses,
	result.OutputSpaces:             category.Spaces,
	result.OutputCollaborationTools: category.CollaborationTools,
}

// rank groups resolved results into output buckets and pages each bucket.
// Within a bucket results are ordered by score descending, then raw id
// descending. Buckets whose category was not requested stay empty.
//
// Buckets fed by the same filter share one cursor holding a position per
// bucket, so resuming with either bucket's cursor advances all of them
// together. A bucket with nothing on this page keeps its incoming position.
func rank(req request.Request, resolved []result.Resolved) result.Response {
	grouped := make(map[result.Output][]result.Resolved)
	for _, r := range resolved {
		grouped[r.Output()] = append(grouped[r.Output()], r)
	}

	var resp result.Response
	for _, o := range result.Outputs() {
		resp.Set(o).Total = result.TotalNotComputed
	}

	for _, f := range req.Filters() {
		next := cursor.Set{}
		var paged []result.Output

		for _, o := range outputsOf(f.Category) {
			from, resume := f.Position(o)
			items := page(grouped[o], from, resume, f.Size)
			resp.Set(o).Results = items

			switch {
			case len(items) > 0:
				last := items[len(items)-1].Raw()
				next[string(o)] = cursor.Position{
					Score:  last.Score(),
					ID:     last.ID(),
					Served: from.Served + len(items),
				}
				paged = append(paged, o)
			case resume:
				next[string(o)] = from
			}
		}

		if len(paged) == 0 {
			continue
		}
		token := cursor.Encode(next)
		for _, o := range paged {
			resp.Set(o).Cursor = token
		}
	}
	return resp
}

// outputsOf lists the buckets paged by category c, in response order.
func outputsOf(c category.Category) []result.Output {
	var out []result.Output
	for _, o := range result.Outputs() {
		if outputCategory[o] == c {
			out = append(out, o)
		}
	}
	return out
}

// page sorts items, skips everything up to from when resuming and truncates
// to size. The input slice is not reordered.
func page(items []result.Resolved, from cursor.Position, resume bool, size int) []result.Resolved {
	sorted := make([]result.Resolved, 0, len(items))
	for _, it := range items {
		raw := it.Raw()
		if resume && !from.After(raw.Score(), raw.ID()) {
			continue
		}
		sorted = append(sorted, it)
	}
	sortResolved(sorted)

	if size > 0 && len(sorted) > size {
		sorted = sorted[:size]
	}
	return sorted
}

func sortResolved(items []result.Resolved) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Raw(), items[j].Raw()
		return cursor.Less(a.Score(), a.ID(), b.Score(), b.ID())
	})
}
