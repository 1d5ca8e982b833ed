package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	logx "github.com/stockchat-core-poc/server/pkg/logger"
)

const (
	defaultQuoteBaseURL = "https://query1.finance.yahoo.com"
	defaultNewsBaseURL  = "https://news.google.com"

	// Yahoo rejects requests without a browser-ish user agent.
	userAgent = "Mozilla/5.0 (compatible; stockchat/1.0)"
)

// Client fetches quotes, price history and company profiles from the Yahoo
// Finance public endpoints, and market headlines from Google News RSS.
type Client struct {
	httpClient   *http.Client
	quoteBaseURL string
	newsBaseURL  string
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func WithQuoteBaseURL(u string) Option {
	return func(cl *Client) { cl.quoteBaseURL = u }
}

func WithNewsBaseURL(u string) Option {
	return func(cl *Client) { cl.newsBaseURL = u }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		quoteBaseURL: defaultQuoteBaseURL,
		newsBaseURL:  defaultNewsBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chart holds one daily-interval price series. Bars with a missing close are
// dropped, so all slices share the same length and index.
type Chart struct {
	Symbol     string
	Timestamps []time.Time
	Open       []float64
	High       []float64
	Low        []float64
	Close      []float64
	Volume     []int64
}

// Quote is the latest daily bar plus the intraday change percentage.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Current   float64   `json:"current_price"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Volume    int64     `json:"volume"`
	DayChange float64   `json:"day_change"`
	Timestamp time.Time `json:"timestamp"`
}

// CompanyProfile carries sector/industry plus headline financial metrics.
// Zero values mean the provider did not report the field.
type CompanyProfile struct {
	Sector        string  `json:"sector,omitempty"`
	Industry      string  `json:"industry,omitempty"`
	MarketCap     float64 `json:"market_cap,omitempty"`
	PERatio       float64 `json:"pe_ratio,omitempty"`
	DividendYield float64 `json:"dividend_yield,omitempty"`
	Beta          float64 `json:"beta,omitempty"`
	EPS           float64 `json:"eps,omitempty"`
}

type rawValue struct {
	Raw float64 `json:"raw"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartEnvelope struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol string `json:"symbol"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"chart"`
}

type summaryEnvelope struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile *struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
			} `json:"assetProfile"`
			SummaryDetail *struct {
				MarketCap     rawValue `json:"marketCap"`
				TrailingPE    rawValue `json:"trailingPE"`
				DividendYield rawValue `json:"dividendYield"`
				Beta          rawValue `json:"beta"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics *struct {
				TrailingEps rawValue `json:"trailingEps"`
			} `json:"defaultKeyStatistics"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"quoteSummary"`
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Chart fetches rangeDays of daily bars for a symbol.
func (c *Client) Chart(ctx context.Context, symbol string, rangeDays int) (*Chart, error) {
	if rangeDays <= 0 {
		rangeDays = 1
	}
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%dd",
		c.quoteBaseURL, url.PathEscape(symbol), rangeDays)

	var env chartEnvelope
	if err := c.getJSON(ctx, u, &env); err != nil {
		return nil, fmt.Errorf("fetch chart for %s: %w", symbol, err)
	}
	if env.Chart.Error != nil {
		return nil, fmt.Errorf("chart for %s: %s (%s)", symbol, env.Chart.Error.Description, env.Chart.Error.Code)
	}
	if len(env.Chart.Result) == 0 || len(env.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("chart for %s: empty result", symbol)
	}

	res := env.Chart.Result[0]
	quote := res.Indicators.Quote[0]

	chart := &Chart{Symbol: symbol}
	if chart.Symbol == "" {
		chart.Symbol = res.Meta.Symbol
	}
	for i, ts := range res.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		chart.Timestamps = append(chart.Timestamps, time.Unix(ts, 0).UTC())
		chart.Close = append(chart.Close, *quote.Close[i])
		chart.Open = append(chart.Open, deref(quote.Open, i))
		chart.High = append(chart.High, deref(quote.High, i))
		chart.Low = append(chart.Low, deref(quote.Low, i))
		chart.Volume = append(chart.Volume, derefInt(quote.Volume, i))
	}
	if len(chart.Close) == 0 {
		return nil, fmt.Errorf("chart for %s: no usable bars", symbol)
	}
	return chart, nil
}

// Quote fetches the latest daily bar for a symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (*Quote, error) {
	chart, err := c.Chart(ctx, symbol, 1)
	if err != nil {
		return nil, err
	}

	last := len(chart.Close) - 1
	q := &Quote{
		Symbol:    symbol,
		Current:   chart.Close[last],
		Open:      chart.Open[last],
		High:      chart.High[last],
		Low:       chart.Low[last],
		Volume:    chart.Volume[last],
		Timestamp: chart.Timestamps[last],
	}
	if q.Open != 0 {
		q.DayChange = (q.Current - q.Open) / q.Open * 100
	}
	return q, nil
}

// Profile fetches sector, industry and headline financial metrics.
func (c *Client) Profile(ctx context.Context, symbol string) (*CompanyProfile, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=assetProfile%%2CsummaryDetail%%2CdefaultKeyStatistics",
		c.quoteBaseURL, url.PathEscape(symbol))

	var env summaryEnvelope
	if err := c.getJSON(ctx, u, &env); err != nil {
		return nil, fmt.Errorf("fetch profile for %s: %w", symbol, err)
	}
	if env.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("profile for %s: %s (%s)", symbol,
			env.QuoteSummary.Error.Description, env.QuoteSummary.Error.Code)
	}
	if len(env.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("profile for %s: empty result", symbol)
	}

	res := env.QuoteSummary.Result[0]
	profile := &CompanyProfile{}
	if res.AssetProfile != nil {
		profile.Sector = res.AssetProfile.Sector
		profile.Industry = res.AssetProfile.Industry
	}
	if res.SummaryDetail != nil {
		profile.MarketCap = res.SummaryDetail.MarketCap.Raw
		profile.PERatio = res.SummaryDetail.TrailingPE.Raw
		profile.DividendYield = res.SummaryDetail.DividendYield.Raw
		profile.Beta = res.SummaryDetail.Beta.Raw
	}
	if res.DefaultKeyStatistics != nil {
		profile.EPS = res.DefaultKeyStatistics.TrailingEps.Raw
	}
	return profile, nil
}

func deref(vals []*float64, i int) float64 {
	if i < len(vals) && vals[i] != nil {
		return *vals[i]
	}
	logx.Debug().Int("index", i).Msg("missing bar value, defaulting to zero")
	return 0
}

func derefInt(vals []*int64, i int) int64 {
	if i < len(vals) && vals[i] != nil {
		return *vals[i]
	}
	return 0
}
