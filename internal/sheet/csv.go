package sheet

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/bookmook/storefront/internal/apperr"
)

const (
	serviceName  = "inventory sheet"
	maxSheetSize = 16 << 20
)

// DetectDelimiter picks tab for TSV exports (format=tsv or tqx=tsv in the
// URL, or a tab anywhere in the first line) and comma otherwise.
func DetectDelimiter(sourceURL, firstLine string) rune {
	if u, err := url.Parse(sourceURL); err == nil {
		q := u.Query()
		if strings.EqualFold(q.Get("format"), "tsv") || strings.EqualFold(q.Get("tqx"), "tsv") {
			return '\t'
		}
	}
	if strings.Contains(firstLine, "\t") {
		return '\t'
	}
	return ','
}

// ParseDelimited parses CSV or TSV text whose first line is the header.
// Quoted cells may contain delimiters, doubled quotes and line breaks.
func ParseDelimited(text, sourceURL string) ([]Row, error) {
	text = strings.TrimPrefix(text, "\uFEFF")

	firstLine, _, _ := strings.Cut(text, "\n")
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = DetectDelimiter(sourceURL, strings.TrimSuffix(firstLine, "\r"))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	table, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse sheet: %w", err)
	}

	return toRows(table), nil
}

// HTTPSource downloads a published CSV/TSV export on every fetch. Calls go
// through a circuit breaker so a dead sheet host fails fast.
type HTTPSource struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

func NewHTTPSource(sourceURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		url:    sourceURL,
		client: &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        serviceName,
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
	}
}

func (s *HTTPSource) FetchRows(ctx context.Context) ([]Row, error) {
	body, err := s.breaker.Execute(func() (interface{}, error) {
		return s.download(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, apperr.Upstream(serviceName, err)
		}
		return nil, err
	}

	return ParseDelimited(body.(string), s.url)
}

func (s *HTTPSource) download(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build sheet request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", apperr.Upstream(serviceName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &apperr.UpstreamError{
			Service: serviceName,
			Status:  resp.StatusCode,
			Err:     errors.New("unexpected status"),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSheetSize))
	if err != nil {
		return "", apperr.Upstream(serviceName, err)
	}

	return string(data), nil
}
