package cmd

import (
	"context"
	"fmt"

	"github.com/kozaktomas/photo-faces/internal/config"
	"github.com/kozaktomas/photo-faces/internal/identity"
	"github.com/spf13/cobra"
)

var identitiesCmd = &cobra.Command{
	Use:   "identities",
	Short: "List known identities",
	RunE:  runIdentities,
}

func init() {
	rootCmd.AddCommand(identitiesCmd)

	identitiesCmd.Flags().String("event", "", "Event namespace to list")
}

func runIdentities(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	namespace := mustGetString(cmd, "event")

	ctx := context.Background()
	eng, err := buildEngine(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer eng.close()

	identities, err := eng.store.ListIdentities(ctx, namespace)
	if err != nil {
		return fmt.Errorf("listing identities: %w", err)
	}

	if len(identities) == 0 {
		fmt.Println("No identities found")
		return nil
	}

	fmt.Printf("%-24s %-24s %8s  %s\n", "ID", "NAME", "SAMPLES", "THUMBNAIL")
	for _, id := range identities {
		name := id.DisplayName
		if name == "" {
			name = "-"
		}
		thumb := id.ThumbnailRef
		if thumb == "" {
			thumb = "-"
		}
		fmt.Printf("%-24s %-24s %8d  %s\n", id.ID, name, len(id.Samples), thumb)
	}
	fmt.Printf("\n%d identities\n", len(identities))
	return nil
}

// sampleTotal sums the sample counts of a namespace listing.
func sampleTotal(identities []identity.Identity) int {
	var total int
	for _, id := range identities {
		total += len(id.Samples)
	}
	return total
}
