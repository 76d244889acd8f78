package commands

import (
	"github.com/dyluth/aurora-cli/internal/format"
	"github.com/spf13/cobra"
)

var clusterListJSON bool

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Inspect the configured clusters",
}

var clusterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every cluster available to this client",
	Long: `List every cluster available to this client, in the order used when a
job key's cluster segment is a wildcard.

Examples:
  # Table of clusters
  aurora cluster list

  # Include clusters advertised by local Docker containers, as JSONL
  aurora cluster list --discover-docker --json`,
	Args: exactArgs(0),
	RunE: runClusterList,
}

// clusterView is the JSON form of a cluster. Credentials are never printed.
type clusterView struct {
	Name         string `json:"name"`
	Source       string `json:"source"`
	SchedulerURL string `json:"scheduler_url,omitempty"`
	Auth         string `json:"auth"`
}

func init() {
	clusterListCmd.Flags().BoolVar(&clusterListJSON, "json", false, "Output line-delimited JSON")

	clusterCmd.AddCommand(clusterListCmd)
	rootCmd.AddCommand(clusterCmd)
}

func runClusterList(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	descs := s.registry.All()
	if !clusterListJSON {
		format.FormatClusters(cmd.OutOrStdout(), descs)
		return nil
	}

	views := make([]clusterView, 0, len(descs))
	for _, d := range descs {
		views = append(views, clusterView{
			Name:         d.Name,
			Source:       string(d.Source),
			SchedulerURL: d.SchedulerURL,
			Auth:         d.AuthModule().Mechanism(),
		})
	}
	return format.FormatJSONL(cmd.OutOrStdout(), views)
}
