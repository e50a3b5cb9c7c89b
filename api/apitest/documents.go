package apitest

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"snapgram_api/tools"
	"snapgram_api/types"
)

// Documents is an in-memory document store with the query semantics of the
// Firestore adapter.
type Documents struct {
	rec   *Recorder
	clock *clock

	mu          sync.Mutex
	collections map[string]map[string]*types.Document
}

func newDocuments(rec *Recorder, clk *clock) *Documents {
	return &Documents{rec: rec, clock: clk, collections: map[string]map[string]*types.Document{}}
}

func (d *Documents) Create(ctx context.Context, collection, id string, data map[string]interface{}) (*types.Document, error) {
	if err := d.rec.record("Documents.Create", collection, id); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	docs := d.collection(collection)
	if _, ok := docs[id]; ok {
		return nil, fmt.Errorf("%w: %s/%s", types.ErrConflict, collection, id)
	}

	now := d.clock.tick()
	doc := &types.Document{Id: id, CreatedAt: now, UpdatedAt: now, Data: cloneData(data)}
	docs[id] = doc

	return cloneDocument(doc), nil
}

func (d *Documents) Get(ctx context.Context, collection, id string) (*types.Document, error) {
	if err := d.rec.record("Documents.Get", collection, id); err != nil {
		return nil, err
	}

	doc, ok := d.Peek(collection, id)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", types.ErrNotFound, collection, id)
	}
	return doc, nil
}

func (d *Documents) Update(ctx context.Context, collection, id string, data map[string]interface{}) (*types.Document, error) {
	if err := d.rec.record("Documents.Update", collection, id); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	doc, ok := d.collection(collection)[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", types.ErrNotFound, collection, id)
	}

	for k, v := range cloneData(data) {
		doc.Data[k] = v
	}
	doc.UpdatedAt = d.clock.tick()

	return cloneDocument(doc), nil
}

func (d *Documents) Delete(ctx context.Context, collection, id string) error {
	if err := d.rec.record("Documents.Delete", collection, id); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	docs := d.collection(collection)
	if _, ok := docs[id]; !ok {
		return fmt.Errorf("%w: %s/%s", types.ErrNotFound, collection, id)
	}
	delete(docs, id)

	return nil
}

func (d *Documents) List(ctx context.Context, collection string, q types.Query) ([]types.Document, error) {
	if err := d.rec.record("Documents.List", collection, q.Cursor); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	docs := d.collection(collection)

	var matched []*types.Document
	for _, doc := range docs {
		if matches(doc, q.Filters) {
			matched = append(matched, doc)
		}
	}

	less := orderBy(q)
	sort.Slice(matched, func(i, j int) bool { return less(matched[i], matched[j]) })

	if q.Cursor != "" {
		cursor, ok := docs[q.Cursor]
		if !ok {
			return nil, fmt.Errorf("%w: cursor %s", types.ErrNotFound, q.Cursor)
		}
		start := sort.Search(len(matched), func(i int) bool { return less(cursor, matched[i]) })
		matched = matched[start:]
	}

	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	out := make([]types.Document, 0, len(matched))
	for _, doc := range matched {
		out = append(out, *cloneDocument(doc))
	}
	return out, nil
}

// Put stores doc as is, bypassing the recorder. Use it to seed fixtures.
func (d *Documents) Put(collection string, doc types.Document) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = d.clock.tick()
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = doc.CreatedAt
	}
	doc.Data = cloneData(doc.Data)
	d.collection(collection)[doc.Id] = &doc
}

// Peek returns a stored document without recording a call.
func (d *Documents) Peek(collection, id string) (*types.Document, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	doc, ok := d.collection(collection)[id]
	if !ok {
		return nil, false
	}
	return cloneDocument(doc), true
}

// Count returns the number of documents in a collection.
func (d *Documents) Count(collection string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.collection(collection))
}

func (d *Documents) collection(name string) map[string]*types.Document {
	docs, ok := d.collections[name]
	if !ok {
		docs = map[string]*types.Document{}
		d.collections[name] = docs
	}
	return docs
}

func matches(doc *types.Document, filters []types.Filter) bool {
	for _, f := range filters {
		value := doc.Data[f.Field]

		switch f.Op {
		case types.Equal:
			if !reflect.DeepEqual(value, f.Value) {
				return false
			}
		case types.Contains:
			if !contains(value, f.Value) {
				return false
			}
		case types.Search:
			text, _ := value.(string)
			term, _ := f.Value.(string)
			if !tools.MatchesAny(text, tools.SearchKeywords(term)) {
				return false
			}
		}
	}
	return true
}

func contains(array, value interface{}) bool {
	switch v := array.(type) {
	case []string:
		for _, item := range v {
			if item == value {
				return true
			}
		}
	case []interface{}:
		for _, item := range v {
			if item == value {
				return true
			}
		}
	}
	return false
}

func orderBy(q types.Query) func(a, b *types.Document) bool {
	key := func(doc *types.Document) interface{} {
		switch q.OrderBy {
		case types.FIREBASE_FIELDS_CREATED_AT:
			return doc.CreatedAt
		case types.FIREBASE_FIELDS_UPDATED_AT:
			return doc.UpdatedAt
		case "":
			return doc.Id
		default:
			return fmt.Sprint(doc.Data[q.OrderBy])
		}
	}

	compare := func(a, b interface{}) int {
		switch av := a.(type) {
		case time.Time:
			return av.Compare(b.(time.Time))
		default:
			as, bs := fmt.Sprint(a), fmt.Sprint(b)
			switch {
			case as < bs:
				return -1
			case as > bs:
				return 1
			}
			return 0
		}
	}

	return func(a, b *types.Document) bool {
		c := compare(key(a), key(b))
		if q.Direction == types.Desc {
			c = -c
		}
		if c == 0 {
			return a.Id < b.Id
		}
		return c < 0
	}
}

func cloneDocument(doc *types.Document) *types.Document {
	out := *doc
	out.Data = cloneData(doc.Data)
	return &out
}

func cloneData(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		if s, ok := v.([]string); ok {
			v = append([]string{}, s...)
		}
		out[k] = v
	}
	return out
}
