package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/embdr/embdr-go/internal/history"
	"github.com/embdr/embdr-go/pkg/processr"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var thumbnailSizes []string
	var imageSizes []string
	var wait bool

	cmd := &cobra.Command{
		Use:   "submit <file-or-url>",
		Short: "Submit a file or link for processing",
		Long: "Submit a local file or an http(s) link to Embdr for thumbnail and " +
			"image preview generation. With --wait the command polls until the " +
			"resource settles, reporting each milestone as it lands.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := strings.TrimSpace(args[0])
			if source == "" {
				return fmt.Errorf("submit: source required")
			}
			client, err := ctx.newClient()
			if err != nil {
				return err
			}

			item := processr.ClassifyString(source)
			kind := history.KindFile
			if isLink(source) {
				kind = history.KindLink
			}
			opts := processr.SubmitOptions{
				ThumbnailSizes:    thumbnailSizes,
				ImagePreviewSizes: imageSizes,
			}

			store, enabled, err := ctx.openHistory()
			if err != nil {
				return err
			}
			if enabled {
				defer store.Close()
			}

			submission := &history.Submission{
				Kind:              kind,
				Source:            source,
				ThumbnailSizes:    strings.Join(thumbnailSizes, ","),
				ImagePreviewSizes: strings.Join(imageSizes, ","),
			}
			if enabled {
				if err := store.Record(cmd.Context(), submission); err != nil {
					return fmt.Errorf("record submission: %w", err)
				}
			}

			// Recording outcomes is best effort; the submission itself
			// already happened on the server.
			recordOutcome := func(resourceID string, status history.Status) {
				if !enabled {
					return
				}
				_ = store.UpdateStatus(context.Background(), submission.ID, resourceID, status, "")
			}
			recordFailure := func(failure error) {
				if !enabled {
					return
				}
				_ = store.MarkFailed(context.Background(), submission.ID, failure.Error())
			}

			out := cmd.OutOrStdout()
			if !wait {
				resource, err := client.Submit(cmd.Context(), item, opts)
				if err != nil {
					recordFailure(err)
					return err
				}
				status := history.StatusPending
				if !resource.Pending() {
					status = history.StatusComplete
				}
				recordOutcome(resource.ID, status)
				fmt.Fprintf(out, "Created resource %s (%s)\n", resource.ID, resource.Status)
				if resource.Pending() {
					fmt.Fprintf(out, "Run `embdr status %s --watch` to follow processing.\n", resource.ID)
				}
				return nil
			}

			var final *processr.Resource
			err = client.Process(cmd.Context(), item, opts, processr.Callbacks{
				OnStart: func(r *processr.Resource) {
					recordOutcome(r.ID, history.StatusPending)
					fmt.Fprintf(out, "Created resource %s\n", r.ID)
				},
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
				recordFailure(err)
				return err
			}
			recordOutcome(final.ID, historyStatusFor(final))
			fmt.Fprintf(out, "Resource %s finished with status %s\n", final.ID, final.Status)
			fmt.Fprintln(out, renderResourceTable(out, final))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&thumbnailSizes, "thumbnail-sizes", nil, "Thumbnail sizes to request (e.g. 100x100)")
	cmd.Flags().StringSliceVar(&imageSizes, "image-sizes", nil, "Image preview sizes to request (e.g. 800x600)")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Block until processing settles")
	return cmd
}

func isLink(value string) bool {
	lower := strings.ToLower(strings.TrimSpace(value))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func historyStatusFor(resource *processr.Resource) history.Status {
	if resource.Status == processr.StatusError {
		return history.StatusFailed
	}
	return history.StatusComplete
}
