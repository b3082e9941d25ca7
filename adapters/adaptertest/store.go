package adaptertest

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/luno/jettison/jtest"
	"github.com/stretchr/testify/require"

	"github.com/luno/openclaw"
)

// RunStoreTest runs the behaviour every openclaw.Store must have. factory must
// return a new, empty store on every call.
func RunStoreTest(t *testing.T, factory func() openclaw.Store) {
	tests := []func(t *testing.T, store openclaw.Store){
		testReadEmpty,
		testWriteRead,
		testOverwrite,
		testOrder,
		testWriteIsolation,
	}

	for _, test := range tests {
		storeForTesting := factory()
		test(t, storeForTesting)
	}
}

var epoch = time.Date(2025, time.March, 14, 9, 26, 53, 0, time.UTC)

func makeDocument(records, relations int) openclaw.Document {
	var doc openclaw.Document
	for i := 0; i < records; i++ {
		at := epoch.Add(time.Duration(i) * time.Minute)
		doc.Records = append(doc.Records, openclaw.Record{
			ID:     uuid.New().String(),
			Title:  fmt.Sprintf("record %d", i),
			KindID: openclaw.KindID(openclaw.KindAgent),
			Fields: openclaw.Fields{
				"name":    fmt.Sprintf("agent-%d", i),
				"tools":   `["search"]`,
				"enabled": i%2 == 0,
				"port":    float64(8080 + i),
			},
			CreatedAt: at,
			UpdatedAt: at.Add(time.Second),
			Tags:      []string{"config"},
			Status:    openclaw.StatusActive,
			Priority:  openclaw.PriorityMedium,
		})
	}

	for i := 0; i < relations && i < records; i++ {
		doc.Relations = append(doc.Relations, openclaw.Relation{
			ID:        uuid.New().String(),
			SourceID:  "parent",
			TargetID:  doc.Records[i].ID,
			Type:      openclaw.RelationParentOf,
			CreatedAt: epoch,
			Metadata:  map[string]any{"source": "test"},
		})
	}

	return doc
}

// requireSameDocument compares documents by their JSON form, which is what every
// store persists.
func requireSameDocument(t *testing.T, expected, actual openclaw.Document) {
	t.Helper()

	if expected.Records == nil {
		expected.Records = []openclaw.Record{}
	}
	if expected.Relations == nil {
		expected.Relations = []openclaw.Relation{}
	}
	if actual.Records == nil {
		actual.Records = []openclaw.Record{}
	}
	if actual.Relations == nil {
		actual.Relations = []openclaw.Relation{}
	}

	want, err := json.Marshal(expected)
	jtest.RequireNil(t, err)

	got, err := json.Marshal(actual)
	jtest.RequireNil(t, err)

	require.JSONEq(t, string(want), string(got))
}

func testReadEmpty(t *testing.T, store openclaw.Store) {
	t.Run("ReadAll on an empty store", func(t *testing.T) {
		doc, err := store.ReadAll(context.Background())
		jtest.RequireNil(t, err)
		require.Len(t, doc.Records, 0)
		require.Len(t, doc.Relations, 0)
	})
}

func testWriteRead(t *testing.T, store openclaw.Store) {
	t.Run("WriteAll then ReadAll", func(t *testing.T) {
		ctx := context.Background()
		doc := makeDocument(3, 2)

		deletedAt := epoch.Add(time.Hour)
		doc.Records[1].DeletedAt = &deletedAt
		doc.Records[1].Status = openclaw.StatusCancelled
		doc.Records[2].Description = "has a description"

		err := store.WriteAll(ctx, doc)
		jtest.RequireNil(t, err)

		actual, err := store.ReadAll(ctx)
		jtest.RequireNil(t, err)

		requireSameDocument(t, doc, actual)
		require.True(t, actual.Records[1].Deleted())
		require.True(t, deletedAt.Equal(*actual.Records[1].DeletedAt))
	})
}

func testOverwrite(t *testing.T, store openclaw.Store) {
	t.Run("WriteAll replaces the whole document", func(t *testing.T) {
		ctx := context.Background()

		err := store.WriteAll(ctx, makeDocument(5, 5))
		jtest.RequireNil(t, err)

		smaller := makeDocument(2, 1)
		err = store.WriteAll(ctx, smaller)
		jtest.RequireNil(t, err)

		actual, err := store.ReadAll(ctx)
		jtest.RequireNil(t, err)
		requireSameDocument(t, smaller, actual)

		err = store.WriteAll(ctx, openclaw.Document{})
		jtest.RequireNil(t, err)

		actual, err = store.ReadAll(ctx)
		jtest.RequireNil(t, err)
		require.Len(t, actual.Records, 0)
		require.Len(t, actual.Relations, 0)
	})
}

func testOrder(t *testing.T, store openclaw.Store) {
	t.Run("Order of records and relations is kept", func(t *testing.T) {
		ctx := context.Background()
		doc := makeDocument(25, 25)

		// Reverse the records so that order cannot come from ids or timestamps.
		for i, j := 0, len(doc.Records)-1; i < j; i, j = i+1, j-1 {
			doc.Records[i], doc.Records[j] = doc.Records[j], doc.Records[i]
		}

		err := store.WriteAll(ctx, doc)
		jtest.RequireNil(t, err)

		actual, err := store.ReadAll(ctx)
		jtest.RequireNil(t, err)
		require.Len(t, actual.Records, 25)

		for i := range doc.Records {
			require.Equal(t, doc.Records[i].ID, actual.Records[i].ID)
		}

		for i := range doc.Relations {
			require.Equal(t, doc.Relations[i].ID, actual.Relations[i].ID)
		}
	})
}

func testWriteIsolation(t *testing.T, store openclaw.Store) {
	t.Run("Changing a document after writing it does not change the store", func(t *testing.T) {
		ctx := context.Background()
		doc := makeDocument(1, 1)

		err := store.WriteAll(ctx, doc)
		jtest.RequireNil(t, err)

		doc.Records[0].Fields["name"] = "changed"
		doc.Records[0].Title = "changed"

		actual, err := store.ReadAll(ctx)
		jtest.RequireNil(t, err)
		require.Equal(t, "record 0", actual.Records[0].Title)
		require.Equal(t, "agent-0", actual.Records[0].Fields["name"])
	})
}
