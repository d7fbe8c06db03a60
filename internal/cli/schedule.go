package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-timetable/internal/models"
	"github.com/noah-isme/sma-timetable/internal/service"
	"github.com/noah-isme/sma-timetable/internal/validation"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
)

// slotFlags are the slot fields shared by both add commands. Values stay raw so the
// engine reports invalid input with its usual messages.
type slotFlags struct {
	day, slot, start, end string
	subject               string
}

func (f *slotFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.day, "day", "", "weekday (Monday..Friday)")
	cmd.Flags().StringVar(&f.slot, "slot", "", "slot number")
	cmd.Flags().StringVar(&f.start, "start", "", "start time HH:MM")
	cmd.Flags().StringVar(&f.end, "end", "", "end time HH:MM")
	cmd.Flags().StringVar(&f.subject, "subject", "", "subject id")
}

func scheduleCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Add, list and remove schedule slots",
	}
	cmd.AddCommand(scheduleAddDivisionCmd(opts))
	cmd.AddCommand(scheduleAddTeacherCmd(opts))
	cmd.AddCommand(scheduleListCmd(opts))
	cmd.AddCommand(scheduleRemoveCmd(opts))
	return cmd
}

func scheduleAddDivisionCmd(opts *globalOptions) *cobra.Command {
	var (
		slot                     slotFlags
		division, teacher, shift string
	)
	cmd := &cobra.Command{
		Use:   "add-division",
		Short: "Assign a slot of a division",
		Example: `  timetablectl schedule add-division --division 1 --day Monday --slot 1 --subject 3 --teacher 2
  timetablectl schedule add-division --division 1 --day martes --slot 2 --start 08:45 --end 09:30`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			created, err := s.container.Schedules.CreateForDivision(cmd.Context(), service.CreateForDivisionRequest{
				DivisionID: validation.Raw(division),
				Day:        validation.Raw(slot.day),
				Slot:       validation.Raw(slot.slot),
				StartTime:  validation.Raw(slot.start),
				EndTime:    validation.Raw(slot.end),
				SubjectID:  validation.Raw(slot.subject),
				TeacherID:  validation.Raw(teacher),
				ShiftID:    validation.Raw(shift),
			})
			if err != nil {
				return reportError(cmd.ErrOrStderr(), err)
			}
			success(cmd.OutOrStdout(), "created schedule %d: %s slot %d", created.ID, created.Day, created.Slot)
			return nil
		},
	}
	slot.bind(cmd)
	cmd.Flags().StringVar(&division, "division", "", "division id")
	cmd.Flags().StringVar(&teacher, "teacher", "", "teacher id")
	cmd.Flags().StringVar(&shift, "shift", "", "shift id (defaults to the division's shift)")
	_ = cmd.MarkFlagRequired("division")
	return cmd
}

func scheduleAddTeacherCmd(opts *globalOptions) *cobra.Command {
	var (
		slot                     slotFlags
		teacher, shift, division string
	)
	cmd := &cobra.Command{
		Use:     "add-teacher",
		Short:   "Assign a slot of a teacher within a shift",
		Example: `  timetablectl schedule add-teacher --teacher 2 --shift 1 --day Tuesday --slot 3 --division 4 --subject 3`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			created, err := s.container.Schedules.CreateForTeacher(cmd.Context(), service.CreateForTeacherRequest{
				TeacherID:  validation.Raw(teacher),
				ShiftID:    validation.Raw(shift),
				Day:        validation.Raw(slot.day),
				Slot:       validation.Raw(slot.slot),
				StartTime:  validation.Raw(slot.start),
				EndTime:    validation.Raw(slot.end),
				DivisionID: validation.Raw(division),
				SubjectID:  validation.Raw(slot.subject),
			})
			if err != nil {
				return reportError(cmd.ErrOrStderr(), err)
			}
			success(cmd.OutOrStdout(), "created schedule %d: %s slot %d", created.ID, created.Day, created.Slot)
			return nil
		},
	}
	slot.bind(cmd)
	cmd.Flags().StringVar(&teacher, "teacher", "", "teacher id")
	cmd.Flags().StringVar(&shift, "shift", "", "shift id")
	cmd.Flags().StringVar(&division, "division", "", "division id")
	_ = cmd.MarkFlagRequired("teacher")
	_ = cmd.MarkFlagRequired("shift")
	return cmd
}

func scheduleListCmd(opts *globalOptions) *cobra.Command {
	var division, teacher, shift int64
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the timetable of a division or of a teacher in a shift",
		Example: `  timetablectl schedule list --division 1
  timetablectl schedule list --teacher 2 --shift 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (division == 0) == (teacher == 0) {
				return errors.New("pass either --division or --teacher")
			}
			if teacher != 0 && shift == 0 {
				return errors.New("--shift is required with --teacher")
			}
			s, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			var rows []models.ScheduleDetail
			if division != 0 {
				rows, err = s.container.Schedules.ListForDivision(cmd.Context(), division)
			} else {
				rows, err = s.container.Schedules.ListForTeacher(cmd.Context(), teacher, shift)
			}
			if err != nil {
				return err
			}
			printSchedules(cmd.OutOrStdout(), rows)
			return nil
		},
	}
	cmd.Flags().Int64Var(&division, "division", 0, "division id")
	cmd.Flags().Int64Var(&teacher, "teacher", 0, "teacher id")
	cmd.Flags().Int64Var(&shift, "shift", 0, "shift id")
	return cmd
}

func scheduleRemoveCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove [schedule-id]",
		Short: "Remove a schedule slot and release its hours",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := validation.RequireID(args[0], "schedule id")
			if err != nil {
				return err
			}
			s, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.container.Schedules.Delete(cmd.Context(), id); err != nil {
				return reportError(cmd.ErrOrStderr(), err)
			}
			success(cmd.OutOrStdout(), "removed schedule %d", id)
			return nil
		},
	}
}

func printSchedules(w io.Writer, rows []models.ScheduleDetail) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No schedules found")
		return
	}
	fmt.Fprintf(w, "\n%-6s %-10s %-5s %-13s %-20s %-20s %s\n", "ID", "DAY", "SLOT", "TIME", "SUBJECT", "TEACHER", "DIVISION")
	fmt.Fprintln(w, "──────────────────────────────────────────────────────────────────────────────────────")
	for _, row := range rows {
		timeRange := "-"
		if row.StartTime != nil || row.EndTime != nil {
			timeRange = deref(row.StartTime) + "-" + deref(row.EndTime)
		}
		fmt.Fprintf(w, "%-6s %-10s %-5d %-13s %-20s %-20s %s\n",
			strconv.FormatInt(row.ID, 10), row.Day, row.Slot, timeRange,
			deref(row.SubjectName), deref(row.TeacherName), deref(row.DivisionName))
	}
	fmt.Fprintln(w)
}

// reportError prints the blocking assignment of a conflict and reduces client errors
// to their message.
func reportError(w io.Writer, err error) error {
	var conflict *models.ScheduleConflictError
	if errors.As(err, &conflict) {
		c := conflict.Conflict
		if c.ScheduleID != 0 {
			warning(w, "%s: blocked by schedule %d (%s slot %d, shift %d)", c.Dimension, c.ScheduleID, c.Day, c.Slot, c.ShiftID)
		} else {
			warning(w, "%s", c.Dimension)
		}
	}
	appErr := appErrors.FromError(err)
	if appErr.Status >= http.StatusInternalServerError {
		return err
	}
	return errors.New(appErr.Message)
}
