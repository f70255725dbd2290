package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"cloud.google.com/go/firestore"
	"github.com/Death-Raider13/CAPS-TEAM/app/models"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// sortKeyField holds the record timestamp as epoch milliseconds so documents
// can be ordered server side.
const sortKeyField = "_sortKey"

// recordFields are the document fields of InspectionRecord except photos.
var recordFields = []string{
	"id", "reportNumber", "district", "capPractitioner", "addressOfInfraction",
	"nearestLandmark", "gpsCoordinates", "dateOfIdentification", "numberOfFloors",
	"stageOfWork", "stateOfBuilding", "observations", "observationsRichText",
	"executiveSummary", "siteLocation", "typeOfBuilding", "recommendationStatus",
	"challengesAndLimitations",
}

// firestoreCollection implements Collection on a Firestore collection. The
// document id is the decimal record id.
type firestoreCollection[T any, PT stamped[T]] struct {
	client     *firestore.Client
	name       string
	stampField string
}

// NewFirestoreRepositories creates repositories backed by the drafts and reports collections
func NewFirestoreRepositories(client *firestore.Client) *Repositories {
	return &Repositories{
		Drafts:  &firestoreCollection[models.Draft, *models.Draft]{client: client, name: "drafts", stampField: "savedAt"},
		Reports: &firestoreCollection[models.Report, *models.Report]{client: client, name: "reports", stampField: "generatedAt"},
	}
}

func (c *firestoreCollection[T, PT]) doc(id int64) *firestore.DocumentRef {
	return c.client.Collection(c.name).Doc(strconv.FormatInt(id, 10))
}

// List retrieves all records, newest first
func (c *firestoreCollection[T, PT]) List(ctx context.Context, opts ListOptions) ([]T, error) {
	q := c.client.Collection(c.name).OrderBy(sortKeyField, firestore.Desc)
	if !opts.WithPhotos {
		q = q.Select(append(append([]string{}, recordFields...), c.stampField, sortKeyField)...)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	items := []T{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", c.name, err)
		}
		item, err := fromDocument[T](snap.Data())
		if err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", c.name, snap.Ref.ID, err)
		}
		items = append(items, *item)
	}
	sortNewestFirst[T, PT](items)
	stripPhotos[T, PT](items, opts)
	return items, nil
}

// Get retrieves one full record by its id
func (c *firestoreCollection[T, PT]) Get(ctx context.Context, id int64) (*T, error) {
	snap, err := c.doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	item, err := fromDocument[T](snap.Data())
	if err != nil {
		return nil, err
	}
	PT(item).Record().Normalize()
	return item, nil
}

// Upsert writes the whole document, replacing any previous version
func (c *firestoreCollection[T, PT]) Upsert(ctx context.Context, item *T) error {
	if err := prepare[T, PT](item); err != nil {
		return err
	}
	data, err := toDocument(item)
	if err != nil {
		return err
	}
	data[sortKeyField] = PT(item).Stamp().UnixMilli()
	_, err = c.doc(PT(item).Record().ID).Set(ctx, data)
	return err
}

// Delete removes the document. Firestore treats a missing document as deleted.
func (c *firestoreCollection[T, PT]) Delete(ctx context.Context, id int64) error {
	_, err := c.doc(id).Delete(ctx)
	return err
}

// toDocument converts a record to the field map stored in Firestore, using
// the same field names as the JSON API.
func toDocument(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	if id, ok := data["id"].(float64); ok {
		data["id"] = int64(id)
	}
	return data, nil
}

func fromDocument[T any](data map[string]interface{}) (*T, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, err
	}
	return &item, nil
}
