// Package rpc selects which tempo endpoint a command should talk to when
// several are configured.
package rpc

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tempoxyz/tempo-go/internal/chain"
)

// ErrNoHealthyRPC is returned when no healthy RPC endpoint is available.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Algorithm defines how an RPC endpoint is selected.
type Algorithm string

const (
	AlgorithmFastest Algorithm = "fastest"
	AlgorithmFirst   Algorithm = "first"

	// Discard nodes more than this many blocks behind the best.
	staleBlockThreshold = 3
	// Cache winner for this duration before re-benchmarking.
	cacheTTL = 5 * time.Minute

	probeTimeout = 5 * time.Second
)

// Endpoint is one probed RPC endpoint.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Healthy     bool
}

// Picker benchmarks configured endpoints and hands out clients.
type Picker struct {
	algo Algorithm
	urls []string
	log  zerolog.Logger

	mu          sync.Mutex
	cachedURL   string
	cacheExpiry time.Time
}

// NewPicker creates a Picker over the configured endpoint URLs.
func NewPicker(algo Algorithm, urls []string, log zerolog.Logger) *Picker {
	return &Picker{algo: algo, urls: urls, log: log}
}

// Client returns a client for the selected endpoint.
func (p *Picker) Client(ctx context.Context) (*chain.Client, error) {
	url, err := p.Pick(ctx)
	if err != nil {
		return nil, err
	}
	return chain.NewClient(url, chain.WithLogger(p.log)), nil
}

// Pick selects an endpoint URL according to the algorithm.
func (p *Picker) Pick(ctx context.Context) (string, error) {
	if len(p.urls) == 0 {
		return "", ErrNoHealthyRPC
	}
	if p.algo == AlgorithmFirst || len(p.urls) == 1 {
		return p.urls[0], nil
	}
	return p.pickFastest(ctx)
}

// pickFastest probes all endpoints in parallel and picks the lowest-latency
// healthy node that is not stale, caching the winner for cacheTTL.
func (p *Picker) pickFastest(ctx context.Context) (string, error) {
	p.mu.Lock()
	if p.cachedURL != "" && time.Now().Before(p.cacheExpiry) {
		url := p.cachedURL
		p.mu.Unlock()
		return url, nil
	}
	p.mu.Unlock()

	endpoints := p.probeAll(ctx)

	var bestBlock uint64
	for _, e := range endpoints {
		if e.Healthy && e.BlockNumber > bestBlock {
			bestBlock = e.BlockNumber
		}
	}

	var winner *Endpoint
	for i := range endpoints {
		e := &endpoints[i]
		if !e.Healthy {
			continue
		}
		if bestBlock > 0 && bestBlock-e.BlockNumber > staleBlockThreshold {
			continue
		}
		if winner == nil || e.Latency < winner.Latency {
			winner = e
		}
	}
	if winner == nil {
		return "", ErrNoHealthyRPC
	}

	p.log.Debug().Str("url", winner.URL).Dur("latency", winner.Latency).Msg("selected rpc endpoint")

	p.mu.Lock()
	p.cachedURL = winner.URL
	p.cacheExpiry = time.Now().Add(cacheTTL)
	p.mu.Unlock()
	return winner.URL, nil
}

func (p *Picker) probeAll(ctx context.Context) []Endpoint {
	endpoints := make([]Endpoint, len(p.urls))
	var wg sync.WaitGroup
	for i, url := range p.urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			endpoints[i] = probe(ctx, url)
		}(i, url)
	}
	wg.Wait()
	return endpoints
}

// probe pings a single endpoint and records latency + head block.
func probe(ctx context.Context, url string) Endpoint {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	c := chain.NewClient(url)
	latency, blockNum, err := c.Ping(probeCtx)
	return Endpoint{
		URL:         url,
		Latency:     latency,
		BlockNumber: blockNum,
		Healthy:     err == nil,
	}
}
