package factcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/greenaudit/greenaudit/internal/cache"
	"github.com/greenaudit/greenaudit/internal/model"
	"github.com/greenaudit/greenaudit/internal/util"
)

// maxSearchContext bounds how much search text reaches the LLM prompt.
const maxSearchContext = 4000

const verdictPrompt = `You are an expert environmental auditor. Fact-check the claim below using only the provided search results.

Claim: %q
Date claimed: %q

Search results:
%s

Result links:
%s

Analyze the evidence:
- If the search results confirm the claim, set is_verified to true.
- If they contradict it, set is_verified to false.
- If inconclusive, set is_verified to false with low confidence (e.g. 0.1).
- Summarize the findings in evidence_summary.
- List the relevant result links in source_urls.

Respond with a JSON object:
{"is_verified": boolean, "confidence": number between 0 and 1, "evidence_summary": string, "source_urls": [string]}`

// WebChecker fact-checks claims by searching the public web and asking an
// LLM for a verdict over the results.
type WebChecker struct {
	llm         *openai.Client
	model       string
	searchBase  string
	httpClient  *http.Client
	robots      *util.RobotsChecker
	limiter     *rate.Limiter
	cache       cache.Cache
	userAgent   string
	maxSnippets int
	timeout     time.Duration
}

// NewWebChecker creates the web fact-checker. cache may be nil.
func NewWebChecker(llmCfg model.LLMConfig, cfg model.FactCheckConfig, userAgent string, c cache.Cache) (*WebChecker, error) {
	if llmCfg.APIKey == "" {
		return nil, fmt.Errorf("LLM API key is required")
	}

	clientConfig := openai.DefaultConfig(llmCfg.APIKey)
	if llmCfg.BaseURL != "" {
		clientConfig.BaseURL = llmCfg.BaseURL
	}

	m := llmCfg.Model
	if m == "" {
		m = openai.GPT4oMini
	}
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 1
	}
	maxSnippets := cfg.MaxSnippets
	if maxSnippets <= 0 {
		maxSnippets = 8
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &WebChecker{
		llm:         openai.NewClientWithConfig(clientConfig),
		model:       m,
		searchBase:  cfg.SearchBaseURL,
		httpClient:  &http.Client{Timeout: timeout},
		robots:      util.NewRobotsChecker(userAgent, timeout),
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
		cache:       c,
		userAgent:   userAgent,
		maxSnippets: maxSnippets,
		timeout:     timeout,
	}, nil
}

// VerifyClaim searches for corroborating coverage and asks the LLM whether
// the results support the claim.
func (w *WebChecker) VerifyClaim(ctx context.Context, claim model.EnvironmentalClaim) (*Verdict, error) {
	cacheKey := cache.Key("factcheck:" + claim.Description)
	if w.cache != nil {
		if raw, found := w.cache.Get(cacheKey); found {
			var verdict Verdict
			if err := json.Unmarshal(raw, &verdict); err == nil {
				return &verdict, nil
			}
		}
	}

	searchText, links := w.search(ctx, claim.Description+" verification audit report")

	dateClaimed := claim.DateClaimed
	if dateClaimed == "" {
		dateClaimed = "unknown"
	}
	prompt := fmt.Sprintf(verdictPrompt, claim.Description, dateClaimed, searchText, strings.Join(links, "\n"))

	ctxWithTimeout, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	resp, err := w.llm.CreateChatCompletion(ctxWithTimeout, openai.ChatCompletionRequest{
		Model: w.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("verdict completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty verdict response")
	}

	verdict, err := ParseVerdict(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	if w.cache != nil {
		if raw, err := json.Marshal(verdict); err == nil {
			_ = w.cache.Set(cacheKey, raw, 0)
		}
	}
	return verdict, nil
}

// search fetches one results page. A failed search degrades to an
// explanatory placeholder; the LLM then answers "inconclusive".
func (w *WebChecker) search(ctx context.Context, query string) (string, []string) {
	searchURL := w.searchBase + "?q=" + url.QueryEscape(query)

	if !w.robots.IsAllowed(ctx, searchURL) {
		return "Search unavailable: disallowed by robots.txt.", nil
	}
	if err := w.limiter.Wait(ctx); err != nil {
		return "Search unavailable: " + err.Error(), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "Search unavailable: " + err.Error(), nil
	}
	req.Header.Set("User-Agent", w.userAgent)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "Search unavailable: " + err.Error(), nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Search unavailable: status %d.", resp.StatusCode), nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "Search unavailable: " + err.Error(), nil
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return "Search unavailable: " + err.Error(), nil
	}

	text := visibleText(doc)
	if len(text) > maxSearchContext {
		text = text[:maxSearchContext]
	}
	return text, resultLinks(doc, w.maxSnippets)
}

// verdictPayload is the wire shape the verdict prompt requests.
type verdictPayload struct {
	IsVerified      bool     `json:"is_verified"`
	Confidence      float64  `json:"confidence"`
	EvidenceSummary string   `json:"evidence_summary"`
	SourceURLs      []string `json:"source_urls"`
}

// ParseVerdict decodes the LLM's JSON verdict, clamping confidence to [0,1].
func ParseVerdict(raw string) (*Verdict, error) {
	var payload verdictPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &payload); err != nil {
		return nil, fmt.Errorf("decode verdict JSON: %w", err)
	}

	confidence := payload.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return &Verdict{
		Verified:   payload.IsVerified,
		Confidence: confidence,
		Evidence:   payload.EvidenceSummary,
		Sources:    payload.SourceURLs,
	}, nil
}
