package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/novalxp/novalxp-bot/internal/domain"
)

// CatalogProvider delegates retrieval to an external catalog API that
// returns citations already ranked; the engine only truncates.
type CatalogProvider struct {
	url        string
	token      string
	httpClient *http.Client
}

// NewCatalogProvider creates a catalog API provider.
func NewCatalogProvider(apiURL, token string) *CatalogProvider {
	return &CatalogProvider{
		url:        apiURL,
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Retrieve queries the catalog API and trusts its ordering.
func (p *CatalogProvider) Retrieve(ctx context.Context, req Request) ([]domain.Citation, error) {
	if p.url == "" || p.token == "" {
		return nil, domain.NewBotError(domain.ErrCodeRetrievalUnavailable,
			"Catalog API URL and token must be configured.", true)
	}

	query := url.Values{
		"q":      {req.QueryText},
		"intent": {string(req.Intent)},
		"top_k":  {strconv.Itoa(req.TopK)},
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url+"?"+query.Encode(), nil)
	if err != nil {
		return nil, domain.NewBotErrorWithCause(domain.ErrCodeRetrievalUnavailable,
			"Failed to build the catalog API request.", true, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.token)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.NewBotErrorWithCause(domain.ErrCodeRetrievalUnavailable,
			"Catalog API request failed.", true, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, domain.NewBotError(domain.ErrCodeRetrievalUnavailable,
			fmt.Sprintf("Catalog API returned status %d.", resp.StatusCode), true)
	}

	var body struct {
		Citations []domain.Citation `json:"citations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, domain.NewBotErrorWithCause(domain.ErrCodeRetrievalUnavailable,
			"Catalog API returned a malformed response.", true, err)
	}

	return body.Citations, nil
}
