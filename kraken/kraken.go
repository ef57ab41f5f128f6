// Package kraken fetches a Kraken account's ledger history and normalizes it
// into taxlot transactions: rows are deduplicated, time-sorted, aliases
// resolved, and the two rows of a trade merged into one transaction.
package kraken

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lotwise/taxlot"
	"github.com/shopspring/decimal"
)

const defaultBaseURL = "https://api.kraken.com"

// Client talks to Kraken's private REST API. It is an explicit, lifetime-scoped
// object: credentials, throttling and caching all live here, never in package
// state.
type Client struct {
	APIKey string
	Secret string // base64, as issued by Kraken

	// BaseURL overrides the API endpoint, for tests.
	BaseURL string

	// CacheFile, when set, persists raw ledger rows between runs so only the
	// newer part of the history is fetched.
	CacheFile string

	// HTTP is the client used for API calls, http.DefaultClient when nil.
	HTTP *http.Client

	throttle throttle
}

// New creates a client with a 5s minimum spacing between private API calls,
// matching Kraken's tier-1 rate allowance.
func New(apiKey, secret string) *Client {
	return &Client{
		APIKey:   apiKey,
		Secret:   secret,
		throttle: throttle{every: 5 * time.Second},
	}
}

// ledgerRow is one raw row of the Ledgers endpoint.
type ledgerRow struct {
	ID      string          `json:"id"`
	RefID   string          `json:"refid"`
	Time    float64         `json:"time"` // unix seconds
	Type    string          `json:"type"`
	Asset   string          `json:"asset"`
	Amount  decimal.Decimal `json:"amount"`
	Fee     decimal.Decimal `json:"fee"`
	Balance decimal.Decimal `json:"balance"`
}

func (r ledgerRow) date() time.Time {
	sec, frac := int64(r.Time), r.Time-float64(int64(r.Time))
	return time.Unix(sec, int64(frac*1e9)).UTC()
}

// FetchHistory returns the full, normalized transaction history of the
// account, oldest first.
func (c *Client) FetchHistory(ctx context.Context) ([]taxlot.Transaction, error) {
	rows, err := c.fetchLedger(ctx)
	if err != nil {
		return nil, err
	}
	return ParseHistory(rows)
}

// fetchLedger pages backward through the Ledgers endpoint until it reaches
// rows already cached, then returns the whole set ascending by time.
func (c *Client) fetchLedger(ctx context.Context) ([]ledgerRow, error) {
	var rows []ledgerRow
	cache := jsonCache{path: c.CacheFile}
	if err := cache.load(&rows); err != nil {
		return nil, fmt.Errorf("loading ledger cache: %w", err)
	}
	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		seen[r.ID] = true
	}

	end := float64(time.Now().Unix())
	for {
		payload := url.Values{}
		payload.Set("trades", "true")
		payload.Set("end", strconv.FormatFloat(end, 'f', 4, 64))

		var resp struct {
			Error  []string `json:"error"`
			Result struct {
				Ledger map[string]ledgerRow `json:"ledger"`
				Count  int                  `json:"count"`
			} `json:"result"`
		}
		if err := c.post(ctx, "/0/private/Ledgers", payload, &resp); err != nil {
			return nil, err
		}
		if len(resp.Error) > 0 {
			return nil, fmt.Errorf("kraken: %s", strings.Join(resp.Error, "; "))
		}

		var fresh []ledgerRow
		for id, row := range resp.Result.Ledger {
			if seen[id] {
				continue
			}
			row.ID = id
			fresh = append(fresh, row)
			seen[id] = true
		}
		if len(fresh) == 0 {
			break
		}
		sort.Slice(fresh, func(i, j int) bool { return fresh[i].Time > fresh[j].Time })
		rows = append(rows, fresh...)
		end = rows[len(rows)-1].Time
	}

	if c.CacheFile != "" {
		if err := cache.dump(rows); err != nil {
			return nil, fmt.Errorf("writing ledger cache: %w", err)
		}
	}

	sorted := append([]ledgerRow(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
	return sorted, nil
}

// post signs and sends one private API call, honoring the call spacing.
func (c *Client) post(ctx context.Context, path string, payload url.Values, out any) error {
	payload.Set("nonce", strconv.FormatInt(time.Now().UnixMilli(), 10))

	sig, err := c.sign(path, payload)
	if err != nil {
		return err
	}

	base := c.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+path, strings.NewReader(payload.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("API-Key", c.APIKey)
	req.Header.Set("API-Sign", sig)

	c.throttle.wait()

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot POST %s: %s", path, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// sign computes the API-Sign header: HMAC-SHA512 of the path concatenated
// with SHA256(nonce + postdata), keyed by the base64-decoded secret.
func (c *Client) sign(path string, payload url.Values) (string, error) {
	secret, err := base64.StdEncoding.DecodeString(c.Secret)
	if err != nil {
		return "", fmt.Errorf("invalid API secret: %w", err)
	}

	postdata := payload.Encode()
	digest := sha256.Sum256([]byte(payload.Get("nonce") + postdata))
	message := append([]byte(path), digest[:]...)

	mac := hmac.New(sha512.New, secret)
	mac.Write(message)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}
