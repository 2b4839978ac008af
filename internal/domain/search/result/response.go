package result

// TotalNotComputed is reported in CategorySet.Total: counting is not implemented.
const TotalNotComputed = -1

// CategorySet is one ranked page of a response bucket.
type CategorySet struct {
	Results []Resolved
	Cursor  string
	Total   int
}

// Response holds one CategorySet per output bucket.
type Response struct {
	Contributors       CategorySet
	Contributions      CategorySet
	Framings           CategorySet
	Spaces             CategorySet
	CollaborationTools CategorySet
}

// Set returns a pointer to the bucket for o, nil for unknown outputs.
func (r *Response) Set(o Output) *CategorySet {
	switch o {
	case OutputContributors:
		return &r.Contributors
	case OutputContributions:
		return &r.Contributions
	case OutputFramings:
		return &r.Framings
	case OutputSpaces:
		return &r.Spaces
	case OutputCollaborationTools:
		return &r.CollaborationTools
	default:
		return nil
	}
}
