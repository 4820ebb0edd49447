// Package widgetsim drives a running widget server with concurrent simulated
// visitors and checks every response against the local state machine.
package widgetsim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net/url"
	"sync"
	"time"

	"github.com/okian/samemean/internal/domain/selection"
	"github.com/okian/samemean/pkg/logger"
)

// ErrVerification is returned when the server disagreed with the expected state.
var ErrVerification = errors.New("verification failed")

// Run executes a complete simulation.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{
		StartTime: time.Now(),
		Visitors:  config.Visitors,
	}

	logger.Get().Info(ctx, "starting widget simulation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("visitors", config.Visitors),
		logger.Int("actionsPerVisitor", config.ActionsPerVisitor),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.Any("seed", config.Seed))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Read the registry
	ids, err := fetchDatasetIDs(ctx, config)
	if err != nil {
		return stats, fmt.Errorf("dataset listing failed: %w", err)
	}

	// Step 3: Verify every chart layout
	if err := verifyCharts(ctx, config, ids, stats); err != nil {
		return stats, fmt.Errorf("chart verification failed: %w", err)
	}

	// Step 4: Walk visitors through random actions concurrently
	if err := simulateVisitors(ctx, config, ids, stats); err != nil {
		return stats, fmt.Errorf("visitor simulation failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	if stats.Mismatches > 0 {
		return stats, fmt.Errorf("%w: %d state mismatches", ErrVerification, stats.Mismatches)
	}
	logger.Get().Info(ctx, "simulation completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	client, err := newHTTPClient(config.BaseURL, config.Timeout)
	if err != nil {
		return err
	}
	var health struct {
		Status string `json:"status"`
	}
	if err := client.getJSON(ctx, "/healthz", &health); err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if health.Status != "ok" {
		return fmt.Errorf("service reports status %q", health.Status)
	}
	logger.Get().Info(ctx, "service is healthy")
	return nil
}

func fetchDatasetIDs(ctx context.Context, config *Config) ([]string, error) {
	client, err := newHTTPClient(config.BaseURL, config.Timeout)
	if err != nil {
		return nil, err
	}
	var resp datasetsResponse
	if err := client.getJSON(ctx, "/api/datasets", &resp); err != nil {
		return nil, err
	}
	if len(resp.Datasets) == 0 {
		return nil, errors.New("registry is empty")
	}
	ids := make([]string, len(resp.Datasets))
	for i, ds := range resp.Datasets {
		ids[i] = ds.ID
	}
	return ids, nil
}

// simulateVisitors runs every visitor through the worker pool.
func simulateVisitors(ctx context.Context, config *Config, ids []string, stats *Stats) error {
	workers := config.Workers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int, workers*WorkerChannelMultiplier)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for visitor := range jobs {
				result, err := runVisitor(ctx, config, ids, visitor)

				mu.Lock()
				stats.ActionsSent += result.sent
				stats.ActionsRejected += result.rejected
				stats.Mismatches += result.mismatches
				if err != nil && firstErr == nil {
					firstErr = fmt.Errorf("visitor %d: %w", visitor, err)
				}
				mu.Unlock()
			}
		}()
	}

	for v := 0; v < config.Visitors; v++ {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- v:
		}
	}
	close(jobs)
	wg.Wait()
	return firstErr
}

type visitorResult struct {
	sent       int
	rejected   int
	mismatches int
}

// runVisitor mounts one widget and applies random actions, predicting each
// response with the selection state machine.
func runVisitor(ctx context.Context, config *Config, ids []string, visitor int) (visitorResult, error) {
	var result visitorResult
	rng := newRand(config.Seed, uint64(visitor))

	client, err := newHTTPClient(config.BaseURL, config.Timeout)
	if err != nil {
		return result, err
	}

	var got stateResponse
	if err := client.getJSON(ctx, "/api/state", &got); err != nil {
		return result, err
	}
	expected := selection.Initial(ids[0])
	result.mismatches += compare(ctx, config, visitor, "mount", expected, got.State)

	for i := 0; i < config.ActionsPerVisitor; i++ {
		req, unknown := nextAction(rng, ids, visitor)
		result.sent++

		var resp stateResponse
		err := client.postJSON(ctx, "/api/actions", req, &resp)
		if unknown {
			var se *statusError
			if errors.As(err, &se) && se.Code == 404 {
				result.rejected++
				continue
			}
			result.mismatches++
			logger.Get().Warn(ctx, "unknown dataset was not rejected",
				logger.Int("visitor", visitor), logger.String("dataset", req.DatasetID))
			continue
		}
		if err != nil {
			return result, err
		}

		expected, err = selection.Apply(expected, selection.Action(req.Action), req.DatasetID)
		if err != nil {
			return result, err
		}
		result.mismatches += compare(ctx, config, visitor, req.Action, expected, resp.State)
	}

	if err := client.getJSON(ctx, "/api/state", &got); err != nil {
		return result, err
	}
	result.mismatches += compare(ctx, config, visitor, "final", expected, got.State)
	return result, nil
}

// newRand gives each visitor its own reproducible stream.
func newRand(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}

// nextAction picks a random action. About one in ten selects an id the
// registry does not hold, which the server must reject.
func nextAction(rng *rand.Rand, ids []string, visitor int) (actionRequest, bool) {
	switch rng.IntN(4) {
	case 0:
		return actionRequest{Action: string(selection.ActionToggleStats)}, false
	case 1:
		return actionRequest{Action: string(selection.ActionToggleInterpretation)}, false
	default:
		if rng.IntN(10) == 0 {
			return actionRequest{
				Action:    string(selection.ActionSelect),
				DatasetID: fmt.Sprintf("missing-%d", visitor),
			}, true
		}
		return actionRequest{
			Action:    string(selection.ActionSelect),
			DatasetID: ids[rng.IntN(len(ids))],
		}, false
	}
}

func compare(ctx context.Context, config *Config, visitor int, step string, want, got selection.State) int {
	if want == got {
		return 0
	}
	if config.Verbose {
		logger.Get().Warn(ctx, "state mismatch",
			logger.Int("visitor", visitor),
			logger.String("step", step),
			logger.Any("want", want),
			logger.Any("got", got))
	}
	return 1
}

// verifyCharts checks each chart layout's invariants.
func verifyCharts(ctx context.Context, config *Config, ids []string, stats *Stats) error {
	client, err := newHTTPClient(config.BaseURL, config.Timeout)
	if err != nil {
		return err
	}
	for _, id := range ids {
		var chart chartResponse
		if err := client.getJSON(ctx, "/api/datasets/"+url.PathEscape(id)+"/chart", &chart); err != nil {
			return err
		}
		if err := checkChart(chart); err != nil {
			return fmt.Errorf("%s: %w", id, err)
		}
		stats.ChartsVerified++
	}
	logger.Get().Info(ctx, "chart layouts verified", logger.Int("charts", stats.ChartsVerified))
	return nil
}

func checkChart(chart chartResponse) error {
	var sum float64
	tallest := 0
	for _, b := range chart.Bars {
		sum += b.Percent
		if b.Count > tallest {
			tallest = b.Count
		}
	}
	if math.Abs(sum-PercentageMultiplier) > percentSumTolerance+1e-9 {
		return fmt.Errorf("%w: bar percentages sum to %.1f", ErrVerification, sum)
	}
	if tallest != chart.MaxCount {
		return fmt.Errorf("%w: max_count %d but tallest bar is %d", ErrVerification, chart.MaxCount, tallest)
	}
	if len(chart.Gridlines) == 0 || chart.Gridlines[0] != chart.MaxCount {
		return fmt.Errorf("%w: top gridline does not match max_count", ErrVerification)
	}
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(stats *Stats) {
	var actionsPerSecond float64
	if stats.Duration > 0 {
		actionsPerSecond = float64(stats.ActionsSent) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("visitors", stats.Visitors),
		logger.Int("actionsSent", stats.ActionsSent),
		logger.Int("actionsRejected", stats.ActionsRejected),
		logger.Int("mismatches", stats.Mismatches),
		logger.Int("chartsVerified", stats.ChartsVerified),
		logger.Duration("duration", stats.Duration),
		logger.Float64("actionsPerSecond", actionsPerSecond))
}
