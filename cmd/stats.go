package cmd

import (
	"context"
	"fmt"

	"github.com/kozaktomas/photo-faces/internal/config"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show identity store statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().String("event", "", "Event namespace to inspect")
}

func runStats(cmd *cobra.Command, args []string) error {
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

	samples := sampleTotal(identities)
	var named, withThumb int
	for _, id := range identities {
		if id.DisplayName != "" {
			named++
		}
		if id.ThumbnailRef != "" {
			withThumb++
		}
	}

	if namespace == "" {
		fmt.Println("Namespace:       (default)")
	} else {
		fmt.Printf("Namespace:       %s\n", namespace)
	}
	fmt.Printf("Identities:      %d\n", len(identities))
	fmt.Printf("Samples:         %d\n", samples)
	if len(identities) > 0 {
		fmt.Printf("Avg samples:     %.1f\n", float64(samples)/float64(len(identities)))
	}
	fmt.Printf("Named:           %d\n", named)
	fmt.Printf("With thumbnail:  %d\n", withThumb)
	return nil
}
