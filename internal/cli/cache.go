package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/wholeslide/pkg/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Show the shared tile cache statistics",
	Args:  cobra.NoArgs,
	RunE:  runCache,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
}

func runCache(cmd *cobra.Command, _ []string) error {
	stats := cache.Default().Stats()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Capacity:  %d tiles\n", stats.Capacity)
	fmt.Fprintf(out, "Size:      %d tiles (%d bytes)\n", stats.Size, stats.MemoryBytes)
	fmt.Fprintf(out, "Hits:      %d\n", stats.Hits)
	fmt.Fprintf(out, "Misses:    %d\n", stats.Misses)
	fmt.Fprintf(out, "Hit ratio: %.2f\n", stats.HitRatio())
	return nil
}
