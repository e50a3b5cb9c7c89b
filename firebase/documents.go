package firebase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"snapgram_api/tools"
	"snapgram_api/types"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// searchableFields lists, per collection, the text fields that get a keyword
// array so they can be queried with array-contains-any.
var searchableFields = map[string][]string{
	types.FIREBASE_POSTS_COLLECTION: {
		types.FIREBASE_POSTS_FIELDS_CAPTION,
		types.FIREBASE_POSTS_FIELDS_LOCATION,
	},
	types.FIREBASE_USERS_COLLECTION: {
		types.FIREBASE_USERS_FIELDS_NAME,
		types.FIREBASE_USERS_FIELDS_USERNAME,
	},
}

// Documents stores documents in Firestore. Timestamps are kept in the
// createdAt and updatedAt fields of every document.
type Documents struct {
	db  *firestore.Client
	now func() time.Time
}

func NewDocuments(db *firestore.Client) *Documents {
	return &Documents{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (d *Documents) Create(ctx context.Context, collection, id string, data map[string]interface{}) (*types.Document, error) {
	now := d.now()

	fields := withKeywords(collection, data)
	fields[types.FIREBASE_FIELDS_CREATED_AT] = now
	fields[types.FIREBASE_FIELDS_UPDATED_AT] = now

	if _, err := d.db.Collection(collection).Doc(id).Create(ctx, fields); err != nil {
		return nil, classify(err)
	}

	return fromData(id, fields), nil
}

func (d *Documents) Get(ctx context.Context, collection, id string) (*types.Document, error) {
	snap, err := d.db.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		return nil, classify(err)
	}

	return fromData(snap.Ref.ID, snap.Data()), nil
}

// Update fails with a not found error when the document does not exist.
func (d *Documents) Update(ctx context.Context, collection, id string, data map[string]interface{}) (*types.Document, error) {
	fields := withKeywords(collection, data)
	fields[types.FIREBASE_FIELDS_UPDATED_AT] = d.now()

	updates := make([]firestore.Update, 0, len(fields))
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}

	docRef := d.db.Collection(collection).Doc(id)
	if _, err := docRef.Update(ctx, updates); err != nil {
		return nil, classify(err)
	}

	return d.Get(ctx, collection, id)
}

func (d *Documents) Delete(ctx context.Context, collection, id string) error {
	_, err := d.db.Collection(collection).Doc(id).Delete(ctx, firestore.Exists)
	return classify(err)
}

func (d *Documents) List(ctx context.Context, collection string, q types.Query) ([]types.Document, error) {
	col := d.db.Collection(collection)
	query := col.Query

	for _, f := range q.Filters {
		switch f.Op {
		case types.Equal:
			query = query.Where(f.Field, "==", f.Value)
		case types.Contains:
			query = query.Where(f.Field, "array-contains", f.Value)
		case types.Search:
			term, _ := f.Value.(string)
			keywords := tools.SearchKeywords(term)
			if len(keywords) == 0 {
				return []types.Document{}, nil
			}
			query = query.Where(f.Field+types.FIREBASE_KEYWORDS_SUFFIX, "array-contains-any", keywords)
		default:
			return nil, fmt.Errorf("%w: unsupported filter on %s", types.ErrInvalidInput, f.Field)
		}
	}

	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Direction == types.Desc {
			dir = firestore.Desc
		}
		// Ties are broken by id so cursors stay stable.
		query = query.OrderBy(q.OrderBy, dir).OrderBy(firestore.DocumentID, dir)
	}

	if q.Cursor != "" {
		cursor, err := col.Doc(q.Cursor).Get(ctx)
		if err != nil {
			return nil, classify(err)
		}
		query = query.StartAfter(cursor)
	}

	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	docs := []types.Document{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, classify(err)
		}

		docs = append(docs, *fromData(snap.Ref.ID, snap.Data()))
	}

	return docs, nil
}

// withKeywords copies data and adds the keyword array of every searchable
// text field it carries.
func withKeywords(collection string, data map[string]interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(data)+2)
	for k, v := range data {
		fields[k] = v
	}

	for _, field := range searchableFields[collection] {
		text, ok := data[field].(string)
		if !ok {
			continue
		}
		fields[field+types.FIREBASE_KEYWORDS_SUFFIX] = tools.Keywords(text)
	}

	return fields
}

// fromData turns stored fields back into a Document, lifting the timestamps
// out and dropping the keyword arrays.
func fromData(id string, fields map[string]interface{}) *types.Document {
	doc := &types.Document{Id: id, Data: make(map[string]interface{}, len(fields))}

	for k, v := range fields {
		switch {
		case k == types.FIREBASE_FIELDS_CREATED_AT:
			doc.CreatedAt, _ = v.(time.Time)
		case k == types.FIREBASE_FIELDS_UPDATED_AT:
			doc.UpdatedAt, _ = v.(time.Time)
		case strings.HasSuffix(k, types.FIREBASE_KEYWORDS_SUFFIX):
		default:
			doc.Data[k] = v
		}
	}

	return doc
}
