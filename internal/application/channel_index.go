package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/vidtube/backend/internal/domain/entity"
)

// ChannelIndex mirrors channel profiles into Elasticsearch for search.
// Indexing is best-effort: a nil client disables it, failures are logged and
// never fail the calling operation.
type ChannelIndex struct {
	ES     *elasticsearch.Client
	Index  string
	Logger *logrus.Logger
}

func NewChannelIndex(es *elasticsearch.Client, index string, logger *logrus.Logger) *ChannelIndex {
	return &ChannelIndex{ES: es, Index: index, Logger: logger}
}

func (ci *ChannelIndex) enabled() bool {
	return ci != nil && ci.ES != nil && ci.Index != ""
}

// IndexChannel upserts the channel document keyed by user id.
func (ci *ChannelIndex) IndexChannel(ctx context.Context, u *entity.User) {
	if !ci.enabled() {
		return
	}
	doc := map[string]any{
		"id":         u.ID,
		"username":   u.Username,
		"fullname":   u.Fullname,
		"avatar_url": u.AvatarURL,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: ci.Index, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, ci.ES)
	if err != nil {
		if ci.Logger != nil {
			ci.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && ci.Logger != nil {
		ci.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
}

// Search performs a multi_match over username and fullname.
func (ci *ChannelIndex) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if !ci.enabled() {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"username^2", "fullname"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := ci.ES.Search(
		ci.ES.Search.WithContext(c),
		ci.ES.Search.WithIndex(ci.Index),
		ci.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
