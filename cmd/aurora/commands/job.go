package commands

import (
	"fmt"
	"time"

	"github.com/dyluth/aurora-cli/internal/clierr"
	"github.com/dyluth/aurora-cli/internal/format"
	"github.com/dyluth/aurora-cli/internal/printer"
	"github.com/dyluth/aurora-cli/internal/resolver"
	"github.com/dyluth/aurora-cli/internal/webui"
	"github.com/dyluth/aurora-cli/pkg/scheduler"
	"github.com/spf13/cobra"
)

var (
	jobListJSON   bool
	jobStatusJSON bool
)

// openBrowser is replaced in tests.
var openBrowser = webui.NewBrowser().Open

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Find and inspect jobs",
}

var jobListCmd = &cobra.Command{
	Use:   "list <cluster[/role[/env[/name]]]>",
	Short: "List jobs matching a partial job key",
	Long: `List the jobs a partial, possibly wildcarded, job key refers to.

Missing trailing segments match anything. Segments may use shell globs:
'*' matches any run of characters, '?' one character and '[...]' a set.
A key without any glob is printed as-is without contacting the scheduler.

Examples:
  # Every job on cluster west
  aurora job list west

  # Prod jobs of any role on every cluster, for scripts
  aurora job list '*/*/prod' --json`,
	Args: exactArgs(1),
	RunE: runJobList,
}

var jobStatusCmd = &cobra.Command{
	Use:   "status <cluster[/role[/env[/name]]]>",
	Short: "Show the tasks of every job matching a partial job key",
	Args:  exactArgs(1),
	RunE:  runJobStatus,
}

var jobOpenCmd = &cobra.Command{
	Use:   "open <cluster/role/env/name>",
	Short: "Open a job's page in the scheduler web UI",
	Long: `Open a job's page in the scheduler web UI.

The key may contain wildcards as long as it matches exactly one job.`,
	Args: exactArgs(1),
	RunE: runJobOpen,
}

func init() {
	jobListCmd.Flags().BoolVar(&jobListJSON, "json", false, "Output line-delimited JSON")
	jobStatusCmd.Flags().BoolVar(&jobStatusJSON, "json", false, "Output JSON")

	jobCmd.AddCommand(jobListCmd, jobStatusCmd, jobOpenCmd)
	rootCmd.AddCommand(jobCmd)
}

func runJobList(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	keys, err := s.resolver.ResolveString(s.ctx, args[0])
	if err != nil {
		return printer.Fail(err, resolveSuggestions(err)...)
	}

	if jobListJSON {
		return format.FormatJSONL(cmd.OutOrStdout(), keys)
	}
	if format.FormatKeys(cmd.OutOrStdout(), keys) == 0 {
		printer.Warning("No jobs match '%s'\n", args[0])
	}
	return nil
}

// jobStatus is the JSON form of one job's status.
type jobStatus struct {
	Job   scheduler.JobKey          `json:"job"`
	Tasks []scheduler.ScheduledTask `json:"tasks"`
}

func runJobStatus(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	keys, err := s.resolver.ResolveString(s.ctx, args[0])
	if err != nil {
		return printer.Fail(err, resolveSuggestions(err)...)
	}
	if len(keys) == 0 {
		return printer.Fail(&resolver.NotFoundError{Pattern: args[0]},
			"Run 'aurora job list' with a broader key to see what exists.")
	}

	statuses := make([]jobStatus, 0, len(keys))
	for _, key := range keys {
		tasks, err := s.resolver.Status(s.ctx, key)
		if err != nil {
			return printer.Fail(err)
		}
		statuses = append(statuses, jobStatus{Job: key, Tasks: tasks})
	}

	if jobStatusJSON {
		return format.FormatSingleJSON(cmd.OutOrStdout(), statuses)
	}
	now := time.Now()
	for i, st := range statuses {
		if i > 0 {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		format.FormatTasks(cmd.OutOrStdout(), st.Job, st.Tasks, now)
	}
	return nil
}

func runJobOpen(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	key, err := resolveSingle(s, args[0])
	if err != nil {
		return err
	}

	desc, ok := s.registry.Get(key.Cluster)
	if !ok {
		return printer.Fail(clierr.InvalidParameter("Unknown cluster: %s", key.Cluster),
			"Run 'aurora cluster list' to see configured clusters.")
	}

	url, err := webui.JobURL(desc.SchedulerURL, key)
	if err != nil {
		return printer.Fail(clierr.Wrap(clierr.ExitInvalidConfiguration, err, "cannot build job page URL"),
			"Set scheduler_url for the cluster in clusters.yml.")
	}

	if err := openBrowser(url); err != nil {
		return printer.Fail(clierr.Wrap(clierr.ExitCommandFailure, err, "cannot open %s", url))
	}
	printer.Success("Opened %s\n", url)
	return nil
}

// resolveSingle resolves raw and requires it to name exactly one job.
func resolveSingle(s *session, raw string) (scheduler.JobKey, error) {
	keys, err := s.resolver.ResolveString(s.ctx, raw)
	if err != nil {
		return scheduler.JobKey{}, printer.Fail(err, resolveSuggestions(err)...)
	}

	key, err := resolver.RequireSingle(keys, raw)
	if err != nil {
		if amb, ok := err.(*resolver.AmbiguousError); ok {
			return scheduler.JobKey{}, printer.Fail(err, "Narrow the key to one of:\n"+amb.Details())
		}
		return scheduler.JobKey{}, printer.Fail(err,
			"Run 'aurora job list' with a broader key to see what exists.")
	}
	return key, nil
}

func resolveSuggestions(err error) []string {
	switch clierr.CodeOf(err) {
	case clierr.ExitInvalidParameter:
		return []string{"Job keys look like cluster/role/env/name; trailing segments may be omitted."}
	case clierr.ExitNetworkError:
		return []string{"Check the scheduler is running, or retry with --verbose to see every response."}
	case clierr.ExitTimeout:
		return []string{"Retry with a longer --timeout."}
	}
	return nil
}
