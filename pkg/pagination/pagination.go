package pagination

// DefaultLimit is the standard page size when a limit is not provided.
const DefaultLimit = 10

// MaxLimit caps how many rows any list query can request.
const MaxLimit = 100

// Params holds page/limit pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Meta describes the page returned alongside list results.
type Meta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// Normalize clamps the params to sane page/limit values.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset converts the normalized page into a skip count.
func (p Params) Offset() int {
	normalized := p.Normalize()
	return (normalized.Page - 1) * normalized.Limit
}

// MetaFor builds the response metadata for a total row count.
func (p Params) MetaFor(total int64) Meta {
	normalized := p.Normalize()
	return Meta{
		Page:  normalized.Page,
		Limit: normalized.Limit,
		Total: total,
	}
}
