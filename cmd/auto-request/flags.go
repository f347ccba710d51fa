package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/brizzai/auto-request/request"
	"github.com/spf13/cobra"
)

// requestFlags are the request shaping flags shared by the commands that send requests
type requestFlags struct {
	headers     []string
	query       []string
	params      []string
	data        string
	contentType string
	retryOn     string
	retryNet    bool
	showMetrics bool
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.headers, "header", "H", nil, "Request header as name:value (repeatable)")
	cmd.Flags().StringArrayVarP(&f.query, "query", "q", nil, "Query parameter as name=value (repeatable, values accumulate)")
	cmd.Flags().StringArrayVarP(&f.params, "param", "p", nil, "Path parameter as name=value filling :name in the URL")
	cmd.Flags().StringVarP(&f.data, "data", "d", "", "Request body; @file reads the body from a file")
	cmd.Flags().StringVar(&f.contentType, "content-type", "", "Content type of the request body")
	cmd.Flags().StringVar(&f.retryOn, "retry-on", "", "Comma separated status codes that trigger one retry, e.g. 502,503")
	cmd.Flags().BoolVar(&f.retryNet, "retry-on-network-error", false, "Retry once after connection failures and timeouts")
	cmd.Flags().BoolVar(&f.showMetrics, "show-metrics", false, "Print execution metrics after the request")
}

// apply adds the flag values to b
func (f *requestFlags) apply(b *request.Builder) error {
	for _, h := range f.headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			return fmt.Errorf("invalid header %q, expected name:value", h)
		}
		b.AddHeader(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	for _, q := range f.query {
		name, value, ok := strings.Cut(q, "=")
		if !ok {
			return fmt.Errorf("invalid query parameter %q, expected name=value", q)
		}
		b.AddQueryParam(name, value)
	}
	for _, p := range f.params {
		name, value, ok := strings.Cut(p, "=")
		if !ok {
			return fmt.Errorf("invalid path parameter %q, expected name=value", p)
		}
		b.AddParam(name, value)
	}

	if f.contentType != "" {
		b.SetContentType(f.contentType)
	}
	if f.data != "" {
		body, err := readBody(f.data)
		if err != nil {
			return err
		}
		b.SetBody(body)
	}

	if f.retryOn != "" {
		codes, err := parseStatusCodes(f.retryOn)
		if err != nil {
			return err
		}
		b.AddOnErrorHook(request.RetryOnStatus(codes...))
	}
	if f.retryNet {
		b.AddOnErrorHook(request.RetryOnNetworkError())
	}
	return b.Err()
}

func parseStatusCodes(list string) ([]int, error) {
	var codes []int
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		code, err := strconv.Atoi(part)
		if err != nil || code < 100 || code > 599 {
			return nil, fmt.Errorf("invalid status code %q", part)
		}
		codes = append(codes, code)
	}
	return codes, nil
}
