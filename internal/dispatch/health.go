package dispatch

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const probeTimeout = 5 * time.Second

// Monitor periodically probes the backend and logs health transitions. It only
// observes; dispatch itself never consults it.
type Monitor struct {
	target   string
	client   *http.Client
	interval time.Duration
	logger   zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	healthy bool
}

// NewMonitor creates a Monitor probing the given base URL.
func NewMonitor(baseURL string, interval time.Duration, logger zerolog.Logger) *Monitor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor{
		target:   baseURL,
		client:   &http.Client{Timeout: probeTimeout},
		interval: interval,
		logger:   logger.With().Str("component", "health").Logger(),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the probe loop.
func (m *Monitor) Start() {
	m.wg.Add(1)
	go m.loop()
}

// Stop terminates the probe loop and waits for it to exit.
func (m *Monitor) Stop() {
	m.cancel()
	m.wg.Wait()
}

// Healthy reports the result of the most recent probe.
func (m *Monitor) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.healthy
}

func (m *Monitor) loop() {
	defer m.wg.Done()

	m.check()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.check()
		}
	}
}

// check probes the backend once and logs when its health flips.
func (m *Monitor) check() {
	healthy := m.probe()

	m.mu.Lock()
	changed := healthy != m.healthy
	m.healthy = healthy
	m.mu.Unlock()

	if changed {
		if healthy {
			m.logger.Info().Str("backend", m.target).Msg("backend is healthy")
		} else {
			m.logger.Warn().Str("backend", m.target).Msg("backend is unreachable")
		}
	}
}

func (m *Monitor) probe() bool {
	ctx, cancel := context.WithTimeout(m.ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, m.target, nil)
	if err != nil {
		return false
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}
