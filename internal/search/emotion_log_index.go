package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/team-popo-world/back-repo/internal/models"
)

// DefaultSearchSize caps a search when the caller does not ask for a size.
const DefaultSearchSize = 20

// MaxSearchSize is the largest page a caller may request.
const MaxSearchSize = 100

// EmotionLogQuery filters an emotion log search. Empty fields are ignored.
type EmotionLogQuery struct {
	UserID string
	Type   string
	Text   string
	Size   int
}

// EmotionLogIndex stores and searches emotion logs.
type EmotionLogIndex interface {
	Index(ctx context.Context, log *models.EmotionLog) error
	Search(ctx context.Context, query EmotionLogQuery) ([]models.EmotionLog, error)
}

// Compile-time check to ensure implementation satisfies the interface.
var _ EmotionLogIndex = (*esEmotionLogIndex)(nil)

type esEmotionLogIndex struct {
	client *elasticsearch.Client
	index  string
	logger *zap.Logger
}

// NewClient builds an Elasticsearch client for the given node addresses.
func NewClient(addresses []string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	return client, nil
}

// NewEmotionLogIndex creates an Elasticsearch backed EmotionLogIndex.
func NewEmotionLogIndex(client *elasticsearch.Client, index string, logger *zap.Logger) EmotionLogIndex {
	return &esEmotionLogIndex{
		client: client,
		index:  index,
		logger: logger.Named("EmotionLogIndex"),
	}
}

// emotionLogDocument is the stored shape. Field names follow the index mapping.
type emotionLogDocument struct {
	UserID  string `json:"userId"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (i *esEmotionLogIndex) Index(ctx context.Context, log *models.EmotionLog) error {
	body, err := json.Marshal(emotionLogDocument{UserID: log.UserID, Type: log.Type, Message: log.Message})
	if err != nil {
		return fmt.Errorf("marshal emotion log: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: log.ID.String(),
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		i.logger.Error("Index request failed", zap.Stringer("logID", log.ID), zap.Error(err))
		return fmt.Errorf("index emotion log %s: %w", log.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		i.logger.Error("Index request rejected", zap.Stringer("logID", log.ID), zap.String("status", res.Status()))
		return fmt.Errorf("index emotion log %s: %s", log.ID, responseError(res))
	}

	i.logger.Debug("Emotion log indexed", zap.Stringer("logID", log.ID), zap.String("type", log.Type))
	return nil
}

func (i *esEmotionLogIndex) Search(ctx context.Context, query EmotionLogQuery) ([]models.EmotionLog, error) {
	body, err := json.Marshal(buildSearchBody(query))
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(i.index),
		i.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		i.logger.Error("Search request failed", zap.Error(err))
		return nil, fmt.Errorf("search emotion logs: %w", err)
	}
	defer res.Body.Close()

	// A missing index simply means nothing was logged yet.
	if res.StatusCode == http.StatusNotFound {
		return []models.EmotionLog{}, nil
	}
	if res.IsError() {
		i.logger.Error("Search request rejected", zap.String("status", res.Status()))
		return nil, fmt.Errorf("search emotion logs: %s", responseError(res))
	}

	return decodeSearchHits(res.Body)
}

func normalizeSize(size int) int {
	if size <= 0 {
		return DefaultSearchSize
	}
	if size > MaxSearchSize {
		return MaxSearchSize
	}
	return size
}

func buildSearchBody(query EmotionLogQuery) map[string]any {
	var filters []map[string]any
	if query.UserID != "" {
		filters = append(filters, map[string]any{"term": map[string]any{"userId.keyword": query.UserID}})
	}
	if query.Type != "" {
		filters = append(filters, map[string]any{"term": map[string]any{"type.keyword": query.Type}})
	}

	boolQuery := map[string]any{}
	if len(filters) > 0 {
		boolQuery["filter"] = filters
	}
	if text := strings.TrimSpace(query.Text); text != "" {
		boolQuery["must"] = []map[string]any{{"match": map[string]any{"message": text}}}
	}

	var q map[string]any
	if len(boolQuery) == 0 {
		q = map[string]any{"match_all": map[string]any{}}
	} else {
		q = map[string]any{"bool": boolQuery}
	}

	return map[string]any{
		"size":  normalizeSize(query.Size),
		"query": q,
	}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string             `json:"_id"`
			Source emotionLogDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func decodeSearchHits(r io.Reader) ([]models.EmotionLog, error) {
	var parsed searchResponse
	if err := json.NewDecoder(r).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	logs := make([]models.EmotionLog, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		entry := models.EmotionLog{
			UserID:  hit.Source.UserID,
			Type:    hit.Source.Type,
			Message: hit.Source.Message,
		}
		// Documents indexed by other producers may carry non-UUID ids.
		if id, err := uuid.Parse(hit.ID); err == nil {
			entry.ID = id
		}
		logs = append(logs, entry)
	}
	return logs, nil
}

func responseError(res *esapi.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return fmt.Sprintf("%s: %s", res.Status(), strings.TrimSpace(string(raw)))
}
