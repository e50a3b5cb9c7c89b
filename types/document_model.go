package types

import "time"

// Document is a schema-flexible record as the document store returns it.
type Document struct {
	Id        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Data      map[string]interface{}
}

type Direction int

const (
	Asc Direction = iota
	Desc
)

type FilterOp int

const (
	// Equal matches documents whose field equals Value.
	Equal FilterOp = iota
	// Contains matches documents whose array field contains Value.
	Contains
	// Search matches documents whose text field shares a keyword with Value.
	Search
)

type Filter struct {
	Field string
	Op    FilterOp
	Value interface{}
}

type Query struct {
	Filters   []Filter
	OrderBy   string
	Direction Direction
	Limit     int
	// Cursor is the id of the last document of the previous page.
	Cursor string
}

func (q Query) Where(field string, value interface{}) Query {
	q.Filters = append(q.Filters, Filter{Field: field, Op: Equal, Value: value})
	return q
}

func (q Query) WhereContains(field string, value interface{}) Query {
	q.Filters = append(q.Filters, Filter{Field: field, Op: Contains, Value: value})
	return q
}

func (q Query) WhereSearch(field, term string) Query {
	q.Filters = append(q.Filters, Filter{Field: field, Op: Search, Value: term})
	return q
}

func (q Query) Order(field string, dir Direction) Query {
	q.OrderBy = field
	q.Direction = dir
	return q
}

func (q Query) WithLimit(n int) Query {
	q.Limit = n
	return q
}

func (q Query) After(cursor string) Query {
	q.Cursor = cursor
	return q
}
