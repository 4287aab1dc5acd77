// internal/repository/elasticsearch.go
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "renovation-matching/internal/common/errors"
	"renovation-matching/internal/common/logger"
	"renovation-matching/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const defaultRosterPageSize = 500

// ElasticsearchCompanyRepository reads the eligible roster from a search index
// whose documents use the models.Company JSON layout.
type ElasticsearchCompanyRepository struct {
	client *elasticsearch.Client
	index  string
	size   int
	logger logger.Logger
}

func NewElasticsearchCompanyRepository(client *elasticsearch.Client, index string, log logger.Logger) *ElasticsearchCompanyRepository {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &ElasticsearchCompanyRepository{
		client: client,
		index:  index,
		size:   defaultRosterPageSize,
		logger: log.WithFields(map[string]interface{}{"component": "company-repository", "source": "elasticsearch"}),
	}
}

type searchHit struct {
	ID     string          `json:"_id"`
	Source json.RawMessage `json:"_source"`
	Sort   []interface{}   `json:"sort"`
}

type searchResponse struct {
	Hits struct {
		Hits []searchHit `json:"hits"`
	} `json:"hits"`
}

// ListEligible pages through the index with search_after on the id sort until
// a short page is returned.
func (r *ElasticsearchCompanyRepository) ListEligible(ctx context.Context) ([]models.Company, error) {
	var (
		companies []models.Company
		after     []interface{}
		pages     int
	)
	for {
		hits, err := r.searchPage(ctx, after)
		if err != nil {
			return nil, err
		}
		pages++

		for _, hit := range hits {
			var c models.Company
			if err := json.Unmarshal(hit.Source, &c); err != nil {
				r.logger.Warn("skipping unreadable company document", map[string]interface{}{
					"documentId": hit.ID,
					"error":      err,
				})
				continue
			}
			if c.ID == "" {
				c.ID = hit.ID
			}
			companies = append(companies, c)
		}

		if len(hits) < r.size {
			break
		}
		after = hits[len(hits)-1].Sort
		if len(after) == 0 {
			r.logger.Warn("search hits carry no sort values, roster truncated", map[string]interface{}{
				"index": r.index,
				"pages": pages,
			})
			break
		}
	}

	r.logger.Debug("company roster loaded", map[string]interface{}{
		"count": len(companies),
		"pages": pages,
	})
	if companies == nil {
		companies = []models.Company{}
	}
	return companies, nil
}

func (r *ElasticsearchCompanyRepository) searchPage(ctx context.Context, after []interface{}) ([]searchHit, error) {
	query := eligibleQuery()
	if after != nil {
		query["search_after"] = after
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	req := esapi.SearchRequest{
		Index: []string{r.index},
		Body:  bytes.NewReader(body),
		Size:  &r.size,
	}
	res, err := req.Do(ctx, r.client)
	if err != nil {
		return nil, apperrors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, apperrors.NewIndexNotFoundError(r.index)
	}
	if res.IsError() {
		return nil, apperrors.NewSearchQueryFailedError(r.index, fmt.Errorf("%s", res.String()))
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return sr.Hits.Hits, nil
}

func eligibleQuery() map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"status": string(models.CompanyStatusActive)}},
					map[string]interface{}{"term": map[string]interface{}{"verificationStatus": string(models.VerificationVerified)}},
				},
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"id": "asc"},
		},
	}
}
