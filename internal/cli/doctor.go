package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vcscsvcscs/dental-console/internal/mutation"
	"github.com/vcscsvcscs/dental-console/internal/screen"
	"github.com/vcscsvcscs/dental-console/internal/status"
	"github.com/vcscsvcscs/dental-console/pkg/model"
)

func (c *cli) doctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Doctor workspace",
	}
	cmd.AddCommand(c.doctorAppointmentsCmd())
	cmd.AddCommand(c.doctorCompleteCmd())
	cmd.AddCommand(c.doctorCasesCmd())
	cmd.AddCommand(c.doctorPatientsCmd())
	cmd.AddCommand(c.doctorDashboardCmd())
	return cmd
}

func (c *cli) doctorAppointmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "appointments",
		Short: "Today's schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.app.requireRole(model.RoleDoctor); err != nil {
				return err
			}
			s := screen.NewDoctorSchedule(c.app.Deps)
			defer s.Close()

			search, _ := cmd.Flags().GetString("search")
			s.SetQuery(search)
			err := s.Load(cmd.Context())
			if err := page(c.app.Renderer(), "Schedule", s.Header(), screen.EmptyDoctorSchedule, err, s.Table()); err != nil {
				return err
			}
			fmt.Fprintf(c.app.Out, "\n%d of %d still open.\n", s.Actionable(), s.Total())
			return nil
		},
	}
	cmd.Flags().String("search", "", "filter by patient, id or visit type")
	return cmd
}

func (c *cli) doctorCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <appointment-id>",
		Short: "Mark one of today's appointments completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.app.requireRole(model.RoleDoctor); err != nil {
				return err
			}
			s := screen.NewDoctorSchedule(c.app.Deps)
			defer s.Close()

			r := c.app.Renderer()
			if err := s.Load(cmd.Context()); err != nil {
				return page(r, "Schedule", s.Header(), screen.EmptyDoctorSchedule, err)
			}
			if err := s.Complete(cmd.Context(), args[0]); err != nil {
				if errors.Is(err, screen.ErrUnknownAppointment) {
					return fmt.Errorf("%s is not on today's schedule", args[0])
				}
				fmt.Fprintln(c.app.Out, s.Message())
				return ErrReported
			}
			fmt.Fprintf(c.app.Out, "Appointment %s marked completed.\n", args[0])
			return page(r, "Schedule", s.Header(), screen.EmptyDoctorSchedule, nil, s.Table())
		},
	}
}

func (c *cli) doctorCasesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cases",
		Short: "My cases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.app.requireRole(model.RoleDoctor); err != nil {
				return err
			}
			s := screen.NewDoctorCases(c.app.Deps)
			defer s.Close()

			stage, _ := cmd.Flags().GetString("stage")
			if err := s.SetStage(stage); err != nil {
				return err
			}
			search, _ := cmd.Flags().GetString("search")
			s.SetQuery(search)
			err := s.Load(cmd.Context())
			return page(c.app.Renderer(), "Cases", s.Header(), screen.EmptyDoctorCases, err, s.Table())
		},
	}
	stages := strings.Join(status.DoctorStageLabels(), ", ")
	cmd.Flags().String("stage", "", "only this stage: "+stages)
	cmd.Flags().String("search", "", "filter by patient, id or diagnosis")

	create := &cobra.Command{
		Use:   "create",
		Short: "Open a new case",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.app.requireRole(model.RoleDoctor); err != nil {
				return err
			}
			s := screen.NewDoctorCases(c.app.Deps)
			defer s.Close()

			flags := cmd.Flags()
			s.OpenCreate()
			s.Form().Edit(func(f screen.CaseForm) screen.CaseForm {
				f.PatientName, _ = flags.GetString("patient")
				f.ToothRegion, _ = flags.GetString("tooth")
				f.Diagnosis, _ = flags.GetString("diagnosis")
				if flags.Changed("stage") {
					f.Stage, _ = flags.GetString("stage")
				}
				return f
			})

			outcome, err := s.Submit(cmd.Context())
			if outcome != mutation.OutcomeSuccess {
				fmt.Fprintln(c.app.Out, s.Form().Message())
				return ErrReported
			}
			fmt.Fprintln(c.app.Out, "Case created.")
			return page(c.app.Renderer(), "Cases", s.Header(), screen.EmptyDoctorCases, err, s.Table())
		},
	}
	create.Flags().String("patient", "", "patient name")
	create.Flags().String("tooth", "", "tooth or region, e.g. 36")
	create.Flags().String("diagnosis", "", "diagnosis")
	create.Flags().String("stage", model.DoctorStageNew, "initial stage: "+stages)
	cmd.AddCommand(create)
	return cmd
}

func (c *cli) doctorPatientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patients",
		Short: "Patients from my recent appointments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.app.requireRole(model.RoleDoctor); err != nil {
				return err
			}
			s := screen.NewDoctorPatients(c.app.Deps)
			defer s.Close()

			search, _ := cmd.Flags().GetString("search")
			s.SetQuery(search)
			err := s.Load(cmd.Context())
			return page(c.app.Renderer(), "Patients", s.Header(), screen.EmptyDoctorPatients, err, s.Table())
		},
	}
	cmd.Flags().String("search", "", "filter by name, id or phone")
	return cmd
}

func (c *cli) doctorDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Today's counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.app.requireRole(model.RoleDoctor); err != nil {
				return err
			}
			s := screen.NewDoctorDashboard(c.app.Deps)
			defer s.Close()

			err := s.Load(cmd.Context())
			r := c.app.Renderer()
			if err := page(r, "Dashboard", s.Header(), "", err); err != nil {
				return err
			}
			return r.Fields("", s.Fields())
		},
	}
}
