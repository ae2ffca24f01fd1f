package djen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/crimson-sun/djenbridge/internal/connector"
	"github.com/crimson-sun/djenbridge/internal/connector/httpclient"
	"github.com/crimson-sun/djenbridge/internal/metrics"
	"github.com/crimson-sun/djenbridge/internal/model"
)

// DefaultEndpoint is the public comunicaapi resource.
const DefaultEndpoint = "https://comunicaapi.pje.jus.br/api/v1/comunicacao"

const (
	defaultPageSize = 100
	defaultMaxPages = 10
)

func init() {
	connector.Register("djen", func() connector.Connector {
		return &Connector{}
	})
}

// Connector implements connector.Connector for the DJEN comunicaapi.
//
// Extra keys: "page_size" (itensPorPagina, default 100), "max_pages"
// (page ceiling, default 10) and "page_interval" (minimum gap between page
// requests of one query, e.g. "250ms"; unset means no pacing).
type Connector struct{}

// pageResponse covers both the current ("items") and legacy ("itens") envelopes.
type pageResponse struct {
	Status string                  `json:"status"`
	Count  json.Number             `json:"count"`
	Items  []model.RawNotification `json:"items"`
	Itens  []model.RawNotification `json:"itens"`
}

func (p *pageResponse) records() []model.RawNotification {
	if len(p.Items) > 0 {
		return p.Items
	}
	return p.Itens
}

func (p *pageResponse) total() (int, bool) {
	if p.Count == "" {
		return 0, false
	}
	n, err := p.Count.Int64()
	if err != nil || n < 0 {
		return 0, false
	}
	return int(n), true
}

// buildQuery maps params onto comunicaapi's parameter names.
func buildQuery(params connector.QueryParams) url.Values {
	q := url.Values{}
	q.Set("texto", params.LawyerName)
	if params.OAB != "" {
		number, uf, _ := strings.Cut(params.OAB, "/")
		q.Set("numeroOab", strings.TrimSpace(number))
		if uf = strings.TrimSpace(uf); uf != "" {
			q.Set("ufOab", strings.ToUpper(uf))
		}
	}
	if params.Court != "" {
		q.Set("siglaTribunal", strings.ToUpper(params.Court))
	}
	if !params.Start.IsZero() {
		q.Set("dataDisponibilizacaoInicio", params.Start.Format(model.DateLayout))
	}
	if !params.End.IsZero() {
		q.Set("dataDisponibilizacaoFim", params.End.Format(model.DateLayout))
	}
	return q
}

func intExtra(cfg connector.ConnectorConfig, key string, def int) int {
	if raw := cfg.Extra[key]; raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func pacer(cfg connector.ConnectorConfig) *rate.Limiter {
	if raw := cfg.Extra["page_interval"]; raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			return rate.NewLimiter(rate.Every(d), 1)
		}
	}
	return rate.NewLimiter(rate.Inf, 1)
}

func (c *Connector) Query(ctx context.Context, cfg connector.ConnectorConfig, params connector.QueryParams) ([]model.RawNotification, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	opts := []httpclient.Option{
		httpclient.WithMaxRetries(cfg.MaxRetries),
		httpclient.WithUserAgent("djenbridge"),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, httpclient.WithTimeout(cfg.Timeout))
	}
	if cfg.BackoffBase > 0 {
		opts = append(opts, httpclient.WithBackoff(cfg.BackoffBase))
	}
	client := httpclient.New(endpoint, cfg.APIKey, opts...)

	pageSize := intExtra(cfg, "page_size", defaultPageSize)
	maxPages := intExtra(cfg, "max_pages", defaultMaxPages)
	pace := pacer(cfg)

	start := time.Now()
	defer func() { metrics.UpstreamDuration.Observe(time.Since(start).Seconds()) }()

	q := buildQuery(params)
	q.Set("itensPorPagina", strconv.Itoa(pageSize))

	var results []model.RawNotification
	for page := 1; page <= maxPages; page++ {
		if err := pace.Wait(ctx); err != nil {
			return nil, classifyError(err)
		}
		q.Set("pagina", strconv.Itoa(page))

		var resp pageResponse
		if err := client.GetJSON(ctx, "", q, &resp); err != nil {
			return nil, classifyError(err)
		}

		items := resp.records()
		results = append(results, items...)

		// A declared count is authoritative: the upstream may cap pages
		// below itensPorPagina. Without one a short page ends the set.
		total, counted := resp.total()
		if len(items) == 0 || (counted && len(results) >= total) || (!counted && len(items) < pageSize) {
			break
		}
		if page == maxPages {
			slog.Warn("djen page ceiling reached, result truncated",
				"pages", maxPages, "records", len(results), "declared", total)
		}
	}

	return results, nil
}

// classifyError maps client failures onto the model error taxonomy.
func classifyError(err error) error {
	var apiErr *httpclient.APIError
	if errors.As(err, &apiErr) {
		if !apiErr.Temporary() {
			return &model.InvalidQueryError{Reason: fmt.Sprintf("rejected by upstream (HTTP %d)", apiErr.StatusCode)}
		}
		return &model.UpstreamError{StatusCode: apiErr.StatusCode, Err: apiErr}
	}
	return &model.UpstreamError{Err: err}
}
