package satellite

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/greenaudit/greenaudit/internal/cache"
	"github.com/greenaudit/greenaudit/internal/classify"
	"github.com/greenaudit/greenaudit/internal/model"
)

const clientMaxRetries = 3

// clientSleepFunc is the sleep function used between retries (injectable for tests)
var clientSleepFunc = time.Sleep

// Client queries an imagery statistics API for metric values at a location,
// comparing the current window against a historical one.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	window     time.Duration
	limiter    *rate.Limiter
	cache      cache.Cache
	now        func() time.Time
}

// NewClient creates a statistics API client. cache may be nil.
func NewClient(cfg model.SatelliteConfig, c cache.Cache) *Client {
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 2
	}
	window := cfg.ComparisonWindow
	if window <= 0 {
		window = 365 * 24 * time.Hour
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		window:     window,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		cache:      c,
		now:        time.Now,
	}
}

// AnalyzeLocation fetches the current and historical metric values and
// derives the change delta in percentage points.
func (c *Client) AnalyzeLocation(ctx context.Context, coords model.GeoCoordinates, mode classify.Mode) (*model.SatelliteAnalysis, error) {
	metric := metricFor(mode)
	cacheKey := cache.Key(fmt.Sprintf("satellite:%s:%.4f:%.4f", metric, coords.Latitude, coords.Longitude))

	if c.cache != nil {
		if raw, found := c.cache.Get(cacheKey); found {
			var analysis model.SatelliteAnalysis
			if err := json.Unmarshal(raw, &analysis); err == nil {
				return &analysis, nil
			}
		}
	}

	analysisDate := c.now().UTC()
	comparisonDate := analysisDate.Add(-c.window)

	current, err := c.fetchScore(ctx, coords, metric, analysisDate)
	if err != nil {
		return nil, fmt.Errorf("current window: %w", err)
	}
	historical, err := c.fetchScore(ctx, coords, metric, comparisonDate)
	if err != nil {
		return nil, fmt.Errorf("historical window: %w", err)
	}

	// Index values live in [-1,1]; the delta is reported in percentage points.
	change := (current - historical) * 100

	analysis := &model.SatelliteAnalysis{
		Score:           current,
		MetricName:      metric,
		HistoricalScore: &historical,
		FeatureDetected: current > featureThreshold(mode),
		ChangePct:       &change,
		AnalysisDate:    analysisDate,
		ComparisonDate:  &comparisonDate,
	}

	if c.cache != nil {
		if raw, err := json.Marshal(analysis); err == nil {
			_ = c.cache.Set(cacheKey, raw, 0)
		}
	}
	return analysis, nil
}

type statsResponse struct {
	Mean float64 `json:"mean"`
}

// fetchScore queries one statistics window, retrying transient failures.
func (c *Client) fetchScore(ctx context.Context, coords model.GeoCoordinates, metric string, date time.Time) (float64, error) {
	var lastErr error
	for attempt := 0; attempt < clientMaxRetries; attempt++ {
		score, retryable, err := c.fetchOnce(ctx, coords, metric, date)
		if err == nil {
			return score, nil
		}
		lastErr = err
		if !retryable || ctx.Err() != nil {
			break
		}
		if attempt < clientMaxRetries-1 {
			clientSleepFunc(time.Duration(1<<uint(attempt)) * time.Second)
		}
	}
	return 0, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, coords model.GeoCoordinates, metric string, date time.Time) (float64, bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, false, err
	}

	query := url.Values{}
	query.Set("lat", fmt.Sprintf("%.6f", coords.Latitude))
	query.Set("lon", fmt.Sprintf("%.6f", coords.Longitude))
	query.Set("metric", metric)
	query.Set("date", date.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/statistics?"+query.Encode(), nil)
	if err != nil {
		return 0, false, fmt.Errorf("create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, true, fmt.Errorf("statistics request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return 0, true, fmt.Errorf("statistics API status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, false, fmt.Errorf("statistics API status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, true, fmt.Errorf("read response: %w", err)
	}

	var stats statsResponse
	if err := json.Unmarshal(body, &stats); err != nil {
		return 0, false, fmt.Errorf("decode response: %w", err)
	}
	return stats.Mean, false, nil
}
