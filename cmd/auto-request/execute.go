package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/brizzai/auto-request/internal/logger"
	"github.com/brizzai/auto-request/internal/utils"
	"github.com/brizzai/auto-request/request"
	"github.com/brizzai/auto-request/transport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/pterm/pterm"
	"go.uber.org/zap"
)

// send builds b and executes it once. An interrupt aborts the request
// instead of killing the process so the abort path is reported.
func send(ctx context.Context, b *request.Builder, c *client, showMetrics bool) error {
	exe, err := b.Build()
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	desc := exe.Descriptor()
	logger.Debug("Sending request",
		zap.String("method", string(desc.Method())),
		zap.String("url", desc.URL()))

	done := make(chan struct{})
	defer close(done)
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)
	go func() {
		select {
		case <-interrupts:
			pterm.Warning.Println("Interrupted, aborting request")
			exe.Abort()
		case <-done:
		}
	}()

	resp, err := exe.Execute(ctx)
	if showMetrics {
		defer printMetrics(c.registry)
	}
	if err != nil {
		printFailure(err)
		return err
	}
	printResponse(resp)
	return nil
}

func printResponse(resp *transport.Response) {
	pterm.Success.Printf("%d (%s)\n", resp.StatusCode, resp.Elapsed)
	if body := utils.FormatBody(resp.ContentType(), resp.Body); body != "" {
		fmt.Println(body)
	}
}

func printFailure(err error) {
	if errors.Is(err, request.ErrAborted) {
		return
	}
	var withBody interface{ Body() []byte }
	if errors.As(err, &withBody) && len(withBody.Body()) > 0 {
		fmt.Println(utils.FormatBody("", withBody.Body()))
	}
}

// printMetrics renders every counter and histogram sample gathered from registry
func printMetrics(registry *prometheus.Registry) {
	families, err := registry.Gather()
	if err != nil {
		logger.Warn("Failed to gather metrics", zap.Error(err))
		return
	}

	rows := [][]string{{"Metric", "Labels", "Value"}}
	for _, family := range families {
		for _, m := range family.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			sort.Strings(labels)

			value := ""
			switch {
			case m.GetCounter() != nil:
				value = fmt.Sprintf("%g", m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				value = fmt.Sprintf("count=%d sum=%.4fs", m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum())
			default:
				continue
			}
			rows = append(rows, []string{family.GetName(), strings.Join(labels, ","), value})
		}
	}
	if len(rows) == 1 {
		pterm.Info.Println("No metrics recorded")
		return
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
		logger.Warn("Failed to render metrics", zap.Error(err))
	}
}

// readBody returns data as the request body, or the contents of the named
// file when data starts with @
func readBody(data string) (any, error) {
	path, ok := strings.CutPrefix(data, "@")
	if !ok {
		return data, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read body file: %w", err)
	}
	return raw, nil
}
