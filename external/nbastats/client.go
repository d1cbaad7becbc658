package nbastats

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/team-gamelog/internal/domain/gamelog"
	"github.com/riskibarqy/team-gamelog/internal/platform/logging"
	"github.com/riskibarqy/team-gamelog/internal/platform/resilience"
	"github.com/riskibarqy/team-gamelog/internal/usecase"
)

const (
	defaultBaseURL   = "https://stats.nba.com/stats"
	gameFinderPath   = "/leaguegamefinder"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	maxBodyBytes     = 16 << 20
)

var errStatsTransient = crerr.New("nba stats transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads team game logs from the stats API. It does not retry; the fetcher owns retries.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	breakerCfg := cfg.CircuitBreaker.Normalized()
	named := logger.Named("nbastats")
	if breakerCfg.OnStateChange == nil {
		breakerCfg.OnStateChange = func(from, to resilience.CircuitState) {
			named.Warn("nba stats circuit breaker state changed", "from", from, "to", to)
		}
	}

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		logger:         named,
		breaker:        resilience.NewCircuitBreaker(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// FetchGameLog returns every game the team played as an unsorted table.
func (c *Client) FetchGameLog(ctx context.Context, teamID int64) (gamelog.Table, error) {
	if teamID <= 0 {
		return gamelog.Table{}, fmt.Errorf("%w: team id must be greater than zero", usecase.ErrInvalidInput)
	}

	query := url.Values{}
	query.Set("PlayerOrTeam", "T")
	query.Set("LeagueID", "00")
	query.Set("TeamID", strconv.FormatInt(teamID, 10))

	var envelope resultSetEnvelope
	if err := c.doJSON(ctx, gameFinderPath, query, &envelope); err != nil {
		return gamelog.Table{}, fmt.Errorf("fetch game log team_id=%d: %w", teamID, err)
	}
	if len(envelope.ResultSets) == 0 {
		return gamelog.Table{}, crerr.Newf("fetch game log team_id=%d: response has no result sets", teamID)
	}

	return toTable(envelope.ResultSets[0]), nil
}

func (c *Client) doJSON(ctx context.Context, path string, query url.Values, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "nba stats circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: stats provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	raw, err := c.executeRequest(ctx, fullURL)
	if c.circuitEnabled {
		c.breaker.Record(err != nil && isCircuitFailure(err))
	}
	if err != nil {
		return err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Referer", "https://www.nba.com/")
	req.Header.Set("Origin", "https://www.nba.com")
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %w", errStatsTransient, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %w", errStatsTransient, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if isRetryableStatus(resp.StatusCode) {
			return nil, fmt.Errorf("%w: provider status=%d body=%s", errStatsTransient, resp.StatusCode, abbreviateBody(raw))
		}
		return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
	}
	return raw, nil
}

func toTable(set resultSet) gamelog.Table {
	rows := make([][]string, 0, len(set.RowSet))
	for _, raw := range set.RowSet {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = cellString(cell)
		}
		rows = append(rows, row)
	}
	return gamelog.Table{Header: append([]string(nil), set.Headers...), Rows: rows}
}

// cellString renders a JSON cell the way pandas writes it to CSV: null is empty,
// integral floats lose the fraction.
func cellString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case int:
		return strconv.Itoa(value)
	default:
		return fmt.Sprint(value)
	}
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func isCircuitFailure(err error) bool {
	return crerr.Is(err, errStatsTransient)
}

func abbreviateBody(raw []byte) string {
	body := strings.TrimSpace(string(raw))
	if len(body) > 256 {
		return body[:256] + "..."
	}
	return body
}
