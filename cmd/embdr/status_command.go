package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/embdr/embdr-go/pkg/processr"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "status <resource-id>",
		Short: "Show the processing state of a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if id == "" {
				return fmt.Errorf("status: resource id required")
			}
			client, err := ctx.newClient()
			if err != nil {
				return err
			}

			resource, err := client.Fetch(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !watch || !resource.Pending() {
				fmt.Fprintln(out, renderResourceTable(out, resource))
				return nil
			}

			fmt.Fprintf(out, "Resource %s is pending; watching.\n", resource.ID)
			var final *processr.Resource
			err = client.Watch(cmd.Context(), resource, processr.Callbacks{
				OnThumbnailsComplete: func(processors []processr.Processor) {
					fmt.Fprintf(out, "Thumbnails ready (%d)\n", len(processors))
				},
				OnImagesComplete: func(processors []processr.Processor) {
					fmt.Fprintf(out, "Image previews ready (%d)\n", len(processors))
				},
				OnComplete: func(r *processr.Resource) {
					final = r
				},
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, renderResourceTable(out, final))
			return nil
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Poll until the resource settles")
	return cmd
}
