package main

import (
	"github.com/brizzai/auto-request/request"
	"github.com/spf13/cobra"
)

func newSendCmd() *cobra.Command {
	flags := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "send METHOD URL",
		Short: "Send a single request",
		Example: `  auto-request send GET https://api.example.com/users/:id -p id=42
  auto-request send POST /users -d '{"name":"ada"}' --content-type application/json --retry-on 502,503`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method, err := request.ParseMethod(args[0])
			if err != nil {
				return err
			}

			c, err := newClient(cmd.Context(), cfg, flags.showMetrics)
			if err != nil {
				return err
			}
			defer c.Close(cmd.Context())

			b := c.factory.New(args[1]).SetMethod(method)
			if err := flags.apply(b); err != nil {
				return err
			}
			return send(cmd.Context(), b, c, flags.showMetrics)
		},
	}
	flags.register(cmd)
	return cmd
}
