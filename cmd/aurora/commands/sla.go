package commands

import (
	"fmt"
	"time"

	"github.com/dyluth/aurora-cli/internal/clierr"
	"github.com/dyluth/aurora-cli/internal/printer"
	"github.com/dyluth/aurora-cli/internal/sla"
	"github.com/spf13/cobra"
)

var (
	slaPercentiles    []float64
	slaInstances      bool
	slaDuration       time.Duration
	slaWaitPercentile float64
	slaWaitDuration   time.Duration
)

var slaCmd = &cobra.Command{
	Use:   "sla",
	Short: "Report job uptime against service level targets",
}

var slaJobUptimeCmd = &cobra.Command{
	Use:   "get-job-uptime <cluster/role/env/name>",
	Short: "Print the uptime reached by a percentage of a job's instances",
	Long: `Print how long a given percentage of a job's instances have been running.

Examples:
  # Uptime of the 50th, 75th and 95th percentile
  aurora sla get-job-uptime west/www-data/prod/hello --percentiles 50,75,95`,
	Args: exactArgs(1),
	RunE: runSLAJobUptime,
}

var slaTaskUpCountCmd = &cobra.Command{
	Use:   "get-task-up-count <cluster/role/env/name>",
	Short: "Print the percentage of a job's instances up for at least a duration",
	Args:  exactArgs(1),
	RunE:  runSLATaskUpCount,
}

var slaWaitTimeCmd = &cobra.Command{
	Use:   "get-wait-time <cluster/role/env/name>",
	Short: "Estimate how long until a job meets an uptime SLA",
	Long: `Estimate how long until the given percentage of a job's active instances
have been up for at least the given duration. Pending instances count towards
the total, so the SLA is infeasible while too many of them are not running.

Examples:
  # Wait until 95% of instances have been up for an hour
  aurora sla get-wait-time west/www-data/prod/hello --percentile 95 --duration 1h`,
	Args: exactArgs(1),
	RunE: runSLAWaitTime,
}

func init() {
	slaJobUptimeCmd.Flags().Float64SliceVar(&slaPercentiles, "percentiles", []float64{50, 75, 90, 95, 99},
		"Percentiles to report, each within (0, 100)")
	slaJobUptimeCmd.Flags().BoolVar(&slaInstances, "instances", false, "Also print the uptime of every instance")
	slaTaskUpCountCmd.Flags().DurationVar(&slaDuration, "duration", time.Hour, "Minimum uptime an instance must have")
	slaWaitTimeCmd.Flags().Float64Var(&slaWaitPercentile, "percentile", 95, "Percentage of instances that must be up, within (0, 100)")
	slaWaitTimeCmd.Flags().DurationVar(&slaWaitDuration, "duration", time.Hour, "Uptime each of those instances must reach")

	slaCmd.AddCommand(slaJobUptimeCmd, slaTaskUpCountCmd, slaWaitTimeCmd)
	rootCmd.AddCommand(slaCmd)
}

func runSLAJobUptime(cmd *cobra.Command, args []string) error {
	for _, p := range slaPercentiles {
		if p <= 0 || p >= 100 {
			return printer.Fail(clierr.InvalidParameter("percentile must be within (0, 100), got %v", p))
		}
	}

	vector, key, err := loadUptime(cmd, args[0])
	if err != nil {
		return err
	}

	for _, p := range slaPercentiles {
		uptime, err := vector.JobUptime(p)
		if err != nil {
			return printer.Fail(clierr.Wrap(clierr.ExitInvalidParameter, err, "job uptime"))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %g percentile\t- %d seconds\n", key, p, int64(uptime.Seconds()))
	}

	if slaInstances {
		for _, id := range vector.InstanceIDs() {
			uptime, _ := vector.Instance(id)
			fmt.Fprintf(cmd.OutOrStdout(), "%s instance %d\t- %d seconds\n", key, id, int64(uptime.Seconds()))
		}
	}
	return nil
}

func runSLATaskUpCount(cmd *cobra.Command, args []string) error {
	if slaDuration <= 0 {
		return printer.Fail(clierr.InvalidParameter("duration must be positive, got %s", slaDuration))
	}

	vector, key, err := loadUptime(cmd, args[0])
	if err != nil {
		return err
	}

	pct := vector.TaskUpCount(slaDuration, 0)
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\t- %.2f%%\n", key, slaDuration, pct)
	return nil
}

func runSLAWaitTime(cmd *cobra.Command, args []string) error {
	if slaWaitPercentile <= 0 || slaWaitPercentile >= 100 {
		return printer.Fail(clierr.InvalidParameter("percentile must be within (0, 100), got %v", slaWaitPercentile))
	}
	if slaWaitDuration <= 0 {
		return printer.Fail(clierr.InvalidParameter("duration must be positive, got %s", slaWaitDuration))
	}

	vector, key, err := loadUptime(cmd, args[0])
	if err != nil {
		return err
	}

	wait, ok := vector.WaitTimeToSLA(slaWaitPercentile, slaWaitDuration, vector.ActiveTasks())
	if !ok {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %g%% up for %s\t- infeasible, %d of %d instances running\n",
			key, slaWaitPercentile, slaWaitDuration, vector.TotalTasks(), vector.ActiveTasks())
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %g%% up for %s\t- %d seconds\n",
		key, slaWaitPercentile, slaWaitDuration, int64(wait.Seconds()))
	return nil
}

// loadUptime resolves raw to one job and measures its instances.
func loadUptime(cmd *cobra.Command, raw string) (*sla.JobUptime, string, error) {
	s, err := newSession(cmd)
	if err != nil {
		return nil, "", err
	}
	defer s.close()

	key, err := resolveSingle(s, raw)
	if err != nil {
		return nil, "", err
	}

	tasks, err := s.resolver.Status(s.ctx, key)
	if err != nil {
		return nil, "", printer.Fail(err)
	}
	return sla.NewJobUptime(tasks, time.Now()), key.String(), nil
}
