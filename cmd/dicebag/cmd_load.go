package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chosenoffset/dicebag/internal/random"
)

// loadScenario is a named set of notations sent by the load command.
// Hostile scenarios must be answered with 400 Bad Request.
type loadScenario struct {
	name      string
	notations []string
	hostile   bool
}

var loadScenarios = []loadScenario{
	{name: "character", notations: []string{"4d6kh3", "1d20+5", "2d20kh1", "2d20kl1 - 1"}},
	{name: "damage", notations: []string{"2d6+3", "8d6", "1d12 + 1d6 + 4", "10d10dl2"}},
	{name: "hostile", hostile: true, notations: []string{"abc", "1d0", "5000d6", "1d6; drop", "-1", strings.Repeat("1+", 200) + "1"}},
}

type loadRequest struct {
	scenario string
	notation string
	hostile  bool
}

type loadReport struct {
	Sent       int64
	Rolled     int64
	Rejected   int64
	Unexpected int64
	Elapsed    time.Duration
}

func newLoadCmd(a *app) *cobra.Command {
	var (
		target  string
		count   int
		workers int
	)

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Send a mix of valid and hostile rolls to a running dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 || workers < 1 {
				return fmt.Errorf("--count and --workers must be positive")
			}
			seed, err := random.Resolve(a.cfg.Seed)
			if err != nil {
				return err
			}

			requests := planLoad(rand.New(rand.NewSource(seed)), count)
			client := &http.Client{Timeout: 5 * time.Second}
			report, err := runLoad(cmd.Context(), client, strings.TrimSuffix(target, "/"), requests, workers, a.logger)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			if report.Unexpected > 0 {
				return fmt.Errorf("%d responses did not match their scenario", report.Unexpected)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "target", "http://localhost:9090", "Dashboard base URL")
	cmd.Flags().IntVarP(&count, "count", "n", 100, "Number of requests to send")
	cmd.Flags().IntVar(&workers, "workers", 4, "Concurrent senders")
	return cmd
}

// planLoad draws count requests: mostly valid rolls, with one in five
// taken from the hostile scenario.
func planLoad(rng *rand.Rand, count int) []loadRequest {
	var valid, hostile []loadScenario
	for _, sc := range loadScenarios {
		if sc.hostile {
			hostile = append(hostile, sc)
		} else {
			valid = append(valid, sc)
		}
	}

	requests := make([]loadRequest, count)
	for i := range requests {
		pool := valid
		if rng.Intn(5) == 0 {
			pool = hostile
		}
		sc := pool[rng.Intn(len(pool))]
		requests[i] = loadRequest{
			scenario: sc.name,
			notation: sc.notations[rng.Intn(len(sc.notations))],
			hostile:  sc.hostile,
		}
	}
	return requests
}

func runLoad(ctx context.Context, client *http.Client, baseURL string, requests []loadRequest, workers int, logger *zap.Logger) (loadReport, error) {
	var report loadReport
	start := time.Now()

	queue := make(chan loadRequest)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(queue)
		for _, req := range requests {
			select {
			case queue <- req:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for req := range queue {
				status, err := sendRoll(gctx, client, baseURL, req.notation)
				if err != nil {
					return fmt.Errorf("send %q: %w", req.notation, err)
				}
				atomic.AddInt64(&report.Sent, 1)

				switch {
				case status == http.StatusOK && !req.hostile:
					atomic.AddInt64(&report.Rolled, 1)
				case status == http.StatusBadRequest && req.hostile:
					atomic.AddInt64(&report.Rejected, 1)
				default:
					atomic.AddInt64(&report.Unexpected, 1)
					logger.Warn("Unexpected response",
						zap.String("scenario", req.scenario),
						zap.String("notation", req.notation),
						zap.Int("status", status))
				}
			}
			return nil
		})
	}

	err := g.Wait()
	report.Elapsed = time.Since(start)
	return report, err
}

func sendRoll(ctx context.Context, client *http.Client, baseURL, notation string) (int, error) {
	body, err := json.Marshal(map[string]string{"notation": notation})
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/roll", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func printReport(w io.Writer, r loadReport) {
	fmt.Fprintf(w, "sent:       %d\n", r.Sent)
	fmt.Fprintf(w, "rolled:     %d\n", r.Rolled)
	fmt.Fprintf(w, "rejected:   %d\n", r.Rejected)
	fmt.Fprintf(w, "unexpected: %d\n", r.Unexpected)
	fmt.Fprintf(w, "elapsed:    %s\n", r.Elapsed.Round(time.Millisecond))
}
