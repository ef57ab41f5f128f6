// Package gecko resolves historical fiat rates for crypto assets from the
// CoinGecko API. It satisfies the taxlot.RateService contract: a rate comes
// back with its staleness, the distance between the requested instant and the
// data point actually served, so the caller decides whether to trust it.
package gecko

import (
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

const defaultBaseURL = "https://api.coingecko.com/api/v3"

// coinIDs maps exchange currency symbols to CoinGecko coin ids.
var coinIDs = map[string]string{
	"ADA":   "cardano",
	"ALGO":  "algorand",
	"ATOM":  "cosmos",
	"AAVE":  "aave",
	"BAL":   "balancer",
	"BAT":   "basic-attention-token",
	"BICO":  "biconomy",
	"DOT":   "polkadot",
	"FIL":   "filecoin",
	"KEEP":  "keep-network",
	"MATIC": "matic-network",
	"NANO":  "nano",
	"OMG":   "omisego",
	"OXT":   "orchid-protocol",
	"SC":    "siacoin",
	"SCRT":  "secret",
	"SOL":   "solana",
	"SUSHI": "sushi",
	"UNI":   "uniswap",
	"USDC":  "usd-coin",
	"XETC":  "ethereum-classic",
	"XETH":  "ethereum",
	"XTZ":   "tezos",
	"XXBT":  "bitcoin",
	"XXMR":  "monero",
	"YFI":   "yearn-finance",
}

// Service queries the CoinGecko market chart endpoint. The zero value is
// usable: responses are cached on disk for a day, so replaying a history only
// hits the network for instants never asked before; a forced live lookup
// bypasses the cache.
type Service struct {
	// BaseURL overrides the API endpoint, for tests.
	BaseURL string

	// Window is the half-width of the requested chart range around the
	// instant, 4 days when zero. CoinGecko serves daily granularity past 90
	// days, so the window must span a few points.
	Window time.Duration

	// Cached serves regular lookups, a daily-caching client when nil.
	Cached *http.Client
	// Live serves forced lookups, http.DefaultClient when nil.
	Live *http.Client

	throttle throttle
}

// NewService creates a service with a 1s minimum spacing between API calls,
// staying under CoinGecko's public rate allowance.
func NewService() *Service {
	return &Service{throttle: throttle{every: time.Second}}
}

// Rate returns how many units of to one unit of from was worth at the given
// instant, along with the distance to the nearest chart point served. Equal
// currencies short-circuit to (1, 0) without any I/O.
func (s *Service) Rate(at time.Time, from, to string, forceLive bool) (decimal.Decimal, time.Duration, error) {
	if from == to {
		return decimal.NewFromInt(1), 0, nil
	}
	id, ok := coinIDs[from]
	if !ok {
		return decimal.Zero, 0, fmt.Errorf("no coingecko id for currency %q", from)
	}

	window := s.Window
	if window <= 0 {
		window = 4 * 24 * time.Hour
	}
	base := s.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	addr := fmt.Sprintf("%s/coins/%s/market_chart/range?vs_currency=%s&from=%d&to=%d",
		base, id, strings.ToLower(to), at.Add(-window).Unix(), at.Add(window).Unix())

	client := s.Cached
	if client == nil {
		client = newDailyCachingClient()
	}
	if forceLive {
		client = s.Live
		if client == nil {
			client = http.DefaultClient
		}
	}

	s.throttle.wait()
	var payload interface{}
	if err := jwget(client, addr, &payload); err != nil {
		return decimal.Zero, 0, err
	}
	return nearestPrice(payload, at)
}

// nearestPrice picks, out of the chart's [millis, price] pairs, the point
// closest to the requested instant.
func nearestPrice(payload interface{}, at time.Time) (decimal.Decimal, time.Duration, error) {
	prices, err := jsonpath.Get("$.prices", payload)
	if err != nil {
		return decimal.Zero, 0, fmt.Errorf("malformed chart response: %w", err)
	}
	points, ok := prices.([]interface{})
	if !ok || len(points) == 0 {
		return decimal.Zero, 0, fmt.Errorf("no chart points around %s", at.Format("2006-01-02"))
	}

	var best float64
	bestDist := time.Duration(math.MaxInt64)
	for _, p := range points {
		pair, ok := p.([]interface{})
		if !ok || len(pair) != 2 {
			return decimal.Zero, 0, fmt.Errorf("malformed chart point %v", p)
		}
		millis, mok := pair[0].(float64)
		price, pok := pair[1].(float64)
		if !mok || !pok {
			return decimal.Zero, 0, fmt.Errorf("malformed chart point %v", p)
		}
		dist := at.Sub(time.UnixMilli(int64(millis)))
		if dist < 0 {
			dist = -dist
		}
		if dist < bestDist {
			bestDist = dist
			best = price
		}
	}
	return decimal.NewFromFloat(best), bestDist, nil
}
