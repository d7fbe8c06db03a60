package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-timetable/internal/models"
)

var errCountersDrifted = errors.New("hour counters drifted")

func verifyCmd(opts *globalOptions) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Audit subject and allocation hour counters",
		Long: `Recomputes base hours plus scheduled slots for every subject and teacher allocation
and compares the result with the stored counters. Nothing is written.

Examples:
  timetablectl verify             # print drifted rows
  timetablectl verify --quiet     # exit code only (0=consistent, 1=drift)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			drift, err := s.container.Audit.Verify(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(drift) == 0 {
				if !quiet {
					success(out, "hour counters consistent")
				}
				return nil
			}
			if !quiet {
				fmt.Fprintf(out, "\n%-28s %-8s %-8s %-7s %s\n", "COUNTER", "SUBJECT", "TEACHER", "STORED", "EXPECTED")
				fmt.Fprintln(out, "────────────────────────────────────────────────────────────────")
				for _, d := range drift {
					teacher := "-"
					if d.Kind == models.CounterAllocationAllocatedHours {
						teacher = fmt.Sprint(d.TeacherID)
					}
					fmt.Fprintf(out, "%-28s %-8d %-8s %-7d %d\n", d.Kind, d.SubjectID, teacher, d.Stored, d.Expected)
				}
				fmt.Fprintln(out)
				failure(out, "%d counter(s) drifted", len(drift))
			}
			return errCountersDrifted
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "exit code only")
	return cmd
}
