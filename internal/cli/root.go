package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stacked.dev/st/internal/cli/common"
	"stacked.dev/st/internal/tui"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	var (
		debug bool
		splog *tui.Splog
	)

	rootCmd := &cobra.Command{
		Use:   "st",
		Short: "st keeps stacks of dependent git branches rebased and their pull requests in sync",
		Long: `st keeps stacks of dependent git branches rebased and their pull requests in sync.

Branches are tracked locally in .git/st. After a parent changes, st restack
rebases everything above it; st submit and st sync publish the stack to GitHub.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			opts := tui.SplogOptions{
				Writer:  cmd.OutOrStdout(),
				LogFile: tui.LogFilePath(),
				Debug:   debug || os.Getenv("DEBUG") != "",
			}
			s, err := tui.NewSplogWithConfig(opts)
			if err != nil {
				// A log file we cannot open must not block the command
				opts.LogFile = ""
				if s, err = tui.NewSplogWithConfig(opts); err != nil {
					return err
				}
			}
			splog = s
			splog.Logger().Debug("running command", "command", cmd.CommandPath(), "version", version)
			cmd.SetContext(common.WithSplog(cmd.Context(), splog))
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if splog != nil {
				_ = splog.Close()
			}
		},
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Write debug output to the console")

	rootCmd.AddCommand(
		newInitCmd(),
		newTrackCmd(),
		newUntrackCmd(),
		newCreateCmd(),
		newDeleteCmd(),
		newMoveCmd(),
		newRestackCmd(),
		newContinueCmd(),
		newAbortCmd(),
		newStatusCmd(),
		newSubmitCmd(),
		newSyncCmd(),
		newLogCmd(),
		newCheckoutCmd(),
		newUpCmd(),
		newDownCmd(),
		newTrunkCmd(),
		newDoctorCmd(),
		newInfoCmd(),
		newPRCmd(),
		newRenameCmd(),
		newForeachCmd(),
		newConfigCmd(),
	)
	return rootCmd
}
