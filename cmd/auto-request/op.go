package main

import (
	"fmt"

	"github.com/brizzai/auto-request/internal/openapi"
	"github.com/brizzai/auto-request/internal/tui"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newOpCmd() *cobra.Command {
	flags := &requestFlags{}
	var specFile string
	cmd := &cobra.Command{
		Use:   "op [OPERATION_ID]",
		Short: "Send a request for an OpenAPI operation",
		Long: `Send a request for an OpenAPI operation. Without an operation ID an
interactive picker lists the operations of the document.`,
		Example: `  auto-request op --spec petstore.yaml getPetById -p petId=7`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := openapi.Load(specFile)
			if err != nil {
				return err
			}
			op, err := chooseOperation(doc, args)
			if err != nil {
				return err
			}

			c, err := newClient(cmd.Context(), cfg, flags.showMetrics)
			if err != nil {
				return err
			}
			defer c.Close(cmd.Context())

			baseURL := cfg.Client.BaseURL
			if baseURL == "" {
				baseURL = doc.ServerURL()
			}
			b := op.Apply(c.factory.New(baseURL))
			if err := flags.apply(b); err != nil {
				return err
			}
			if err := op.Check(b); err != nil {
				return err
			}
			return send(cmd.Context(), b, c, flags.showMetrics)
		},
	}
	cmd.Flags().StringVarP(&specFile, "spec", "s", "", "OpenAPI or Swagger document (JSON or YAML)")
	_ = cmd.MarkFlagRequired("spec")
	flags.register(cmd)
	return cmd
}

func chooseOperation(doc *openapi.Document, args []string) (*openapi.Operation, error) {
	if len(args) == 0 {
		return tui.Pick(doc.Title(), doc.Operations())
	}
	op, ok := doc.Operation(args[0])
	if !ok {
		return nil, fmt.Errorf("operation %q not found", args[0])
	}
	return op, nil
}

func newOpsCmd() *cobra.Command {
	var specFile string
	cmd := &cobra.Command{
		Use:   "ops",
		Short: "List the operations of an OpenAPI document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := openapi.Load(specFile)
			if err != nil {
				return err
			}

			pterm.DefaultSection.Printf("%s %s", doc.Title(), doc.Version())
			rows := [][]string{{"Operation", "Method", "Path", "Summary"}}
			for _, op := range doc.Operations() {
				rows = append(rows, []string{op.ID, op.Method.String(), op.Path, op.Summary})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		},
	}
	cmd.Flags().StringVarP(&specFile, "spec", "s", "", "OpenAPI or Swagger document (JSON or YAML)")
	_ = cmd.MarkFlagRequired("spec")
	return cmd
}
