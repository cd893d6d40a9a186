package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/domain"
	"github.com/BlackSky-Jose/PolyMarket-trading-AI-model/internal/history"
)

// Archiver exports audit-history collections to object storage as JSONL
// snapshots. Archival reads through the record store, so a disabled store
// yields empty snapshots rather than errors.
type Archiver struct {
	client *Client
	store  domain.RecordStore
	logger *slog.Logger
}

// NewArchiver creates an Archiver uploading through the given client.
func NewArchiver(c *Client, store domain.RecordStore, logger *slog.Logger) *Archiver {
	return &Archiver{
		client: c,
		store:  store,
		logger: logger.With(slog.String("component", "archiver")),
	}
}

// allCollections lists every audit collection in archive order.
var allCollections = []string{
	history.CollectionCLI,
	history.CollectionTrades,
	history.CollectionMarketCreation,
	history.CollectionLLM,
	history.CollectionMarketQueries,
	history.CollectionRAG,
	history.CollectionNewsQueries,
}

// ArchiveCollection snapshots one collection and returns the object key and
// the number of records written. An empty collection is skipped and returns
// an empty key.
func (a *Archiver) ArchiveCollection(ctx context.Context, collection string) (string, int, error) {
	docs := a.store.Find(ctx, collection, nil, domain.QueryOpts{Sort: domain.SortTimestampAsc})
	if len(docs) == 0 {
		a.logger.Info("nothing to archive", slog.String("collection", collection))
		return "", 0, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, doc := range docs {
		if err := enc.Encode(doc); err != nil {
			return "", 0, fmt.Errorf("s3blob: encode %s record: %w", collection, err)
		}
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("history/%s/%s/%s-%s.jsonl",
		collection, now.Format("2006/01/02"), collection, now.Format("20060102T150405Z"))

	if err := a.client.Put(ctx, key, &buf, "application/x-ndjson"); err != nil {
		return "", 0, err
	}

	a.logger.Info("archived collection",
		slog.String("collection", collection),
		slog.String("key", key),
		slog.Int("records", len(docs)),
	)
	return key, len(docs), nil
}

// ArchiveAll snapshots every audit collection and returns record counts per
// collection. The first upload failure aborts the run.
func (a *Archiver) ArchiveAll(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, len(allCollections))
	for _, collection := range allCollections {
		_, n, err := a.ArchiveCollection(ctx, collection)
		if err != nil {
			return counts, err
		}
		counts[collection] = n
	}
	return counts, nil
}

// Snapshot describes one archived object.
type Snapshot struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// List returns the archived snapshots under the given collection, newest
// last. An empty collection lists every snapshot.
func (a *Archiver) List(ctx context.Context, collection string) ([]Snapshot, error) {
	prefix := "history/"
	if collection != "" {
		prefix += collection + "/"
	}

	var snapshots []Snapshot
	paginator := s3.NewListObjectsV2Paginator(a.client.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(a.client.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3blob: list prefix %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			s := Snapshot{
				Key:  aws.ToString(obj.Key),
				Size: aws.ToInt64(obj.Size),
			}
			if obj.LastModified != nil {
				s.LastModified = *obj.LastModified
			}
			snapshots = append(snapshots, s)
		}
	}
	return snapshots, nil
}
