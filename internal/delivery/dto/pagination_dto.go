package dto

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageQuery is the parsed ?page=&limit= pair
type PageQuery struct {
	Page  int
	Limit int
}

// Normalize clamps the page to >= 1 and the limit to 1..MaxPageLimit
func (q PageQuery) Normalize() PageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	return q
}
