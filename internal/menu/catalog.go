package menu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jimmynenos/ordering-backend/pkg/config"
	pkgerrors "github.com/jimmynenos/ordering-backend/pkg/errors"
)

// Fetcher retrieves the full catalog from the upstream menu backend.
type Fetcher interface {
	FetchMenu(ctx context.Context) ([]Item, error)
}

// CatalogClient is the one-shot HTTP client for the upstream catalog service.
// There is no pagination and no retry loop; a failure is surfaced as a
// dependency error for the caller's policy to handle.
type CatalogClient struct {
	httpClient *http.Client
	cfg        config.CatalogConfig
}

func NewCatalogClient(cfg config.CatalogConfig) *CatalogClient {
	return &CatalogClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
	}
}

type menuEnvelope struct {
	Menu []Item `json:"menu"`
}

// FetchMenu posts the catalog query and decodes the menu array.
func (c *CatalogClient) FetchMenu(ctx context.Context) ([]Item, error) {
	body, err := json.Marshal(map[string]string{"name": "Functions"})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode catalog request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.MenuURL, bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build catalog request")
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch menu")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("catalog returned status %d", resp.StatusCode)).
			WithDetails(map[string]string{"body": string(payload)})
	}

	var envelope menuEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode menu payload")
	}
	if envelope.Menu == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog response has no menu")
	}
	return envelope.Menu, nil
}

func (c *CatalogClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("apikey", c.cfg.APIKey)
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
}
