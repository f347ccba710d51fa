package main

import (
	"fmt"
	"strings"

	"github.com/brizzai/auto-request/internal/preset"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	flags := &requestFlags{}
	var file string
	cmd := &cobra.Command{
		Use:   "run NAME",
		Short: "Send a request described by a named preset",
		Long: `Send a request described by a named preset. Flags are applied after the
preset, so they add to or override its values.`,
		Example: `  auto-request run --file presets.yaml get-user -p id=42`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := preset.Load(file)
			if err != nil {
				return err
			}
			p, ok := set.Get(args[0])
			if !ok {
				return fmt.Errorf("preset %q not found, available: %s", args[0], strings.Join(set.Names(), ", "))
			}

			c, err := newClient(cmd.Context(), cfg, flags.showMetrics)
			if err != nil {
				return err
			}
			defer c.Close(cmd.Context())

			// A relative preset URL is resolved against client.base_url by the transport
			b, err := p.Apply(c.factory.New(set.BaseURL))
			if err != nil {
				return err
			}
			if err := flags.apply(b); err != nil {
				return err
			}
			return send(cmd.Context(), b, c, flags.showMetrics)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "presets.yaml", "Preset file")
	flags.register(cmd)
	return cmd
}
