package cli

import (
	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-timetable/internal/service"
	"github.com/noah-isme/sma-timetable/internal/validation"
	"github.com/noah-isme/sma-timetable/pkg/storage"
)

type exportOptions struct {
	format string
	outDir string
}

func exportCmd(opts *globalOptions) *cobra.Command {
	exp := &exportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write timetable grids to CSV or PDF files",
	}
	cmd.PersistentFlags().StringVarP(&exp.format, "format", "f", "csv", "csv or pdf")
	cmd.PersistentFlags().StringVarP(&exp.outDir, "out", "o", "./exports", "output directory")

	cmd.AddCommand(&cobra.Command{
		Use:   "division [division-id]",
		Short: "Export the timetable of a division",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			divisionID, err := validation.RequireID(args[0], "division id")
			if err != nil {
				return err
			}
			return exp.run(cmd, opts, func(s *session) (*service.ExportFile, error) {
				return s.container.Exports.Division(cmd.Context(), divisionID, exp.format)
			})
		},
	})

	var shift string
	teacher := &cobra.Command{
		Use:   "teacher [teacher-id]",
		Short: "Export the timetable of a teacher in a shift",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			teacherID, err := validation.RequireID(args[0], "teacher id")
			if err != nil {
				return err
			}
			shiftID, err := validation.RequireID(shift, "shift")
			if err != nil {
				return err
			}
			return exp.run(cmd, opts, func(s *session) (*service.ExportFile, error) {
				return s.container.Exports.Teacher(cmd.Context(), teacherID, shiftID, exp.format)
			})
		},
	}
	teacher.Flags().StringVar(&shift, "shift", "", "shift id")
	_ = teacher.MarkFlagRequired("shift")
	cmd.AddCommand(teacher)
	return cmd
}

func (e *exportOptions) run(cmd *cobra.Command, opts *globalOptions, render func(*session) (*service.ExportFile, error)) error {
	s, err := opts.open(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	file, err := render(s)
	if err != nil {
		return reportError(cmd.ErrOrStderr(), err)
	}
	store, err := storage.NewLocalStorage(e.outDir)
	if err != nil {
		return err
	}
	path, err := store.Save(file.Filename, file.Data)
	if err != nil {
		return err
	}
	success(cmd.OutOrStdout(), "wrote %s (%d bytes)", path, len(file.Data))
	return nil
}
