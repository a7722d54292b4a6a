package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vcscsvcscs/dental-console/internal/screen"
	"github.com/vcscsvcscs/dental-console/pkg/model"
)

func (c *cli) patientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patient",
		Short: "Patient portal",
	}
	cmd.AddCommand(c.patientHomeCmd())
	cmd.AddCommand(c.patientBillingCmd())
	cmd.AddCommand(c.patientAppointmentsCmd())
	cmd.AddCommand(c.patientTreatmentsCmd())
	return cmd
}

func (c *cli) patientHomeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Upcoming visits, treatments and payments at a glance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.app.requireRole(model.RolePatient); err != nil {
				return err
			}
			s := screen.NewPatientHome(c.app.Deps)
			defer s.Close()

			err := s.Load(cmd.Context())
			r := c.app.Renderer()
			if err := page(r, "Home", s.Header(), "", err); err != nil {
				return err
			}
			if err := r.Fields("", s.Fields()); err != nil {
				return err
			}
			if err := r.Table(s.Upcoming()); err != nil {
				return err
			}
			return r.Table(s.Treatments())
		},
	}
}

func (c *cli) patientBillingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "billing",
		Short: "Payments and amount due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.app.requireRole(model.RolePatient); err != nil {
				return err
			}
			s := screen.NewBilling(c.app.Deps)
			defer s.Close()

			err := s.Load(cmd.Context())
			r := c.app.Renderer()
			if err := page(r, "Billing", s.Header(), screen.EmptyPayments, err, s.Table()); err != nil {
				return err
			}
			return r.Fields("", s.Fields())
		},
	}
}

func (c *cli) patientAppointmentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "appointments",
		Short: "All my appointments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.app.requireRole(model.RolePatient); err != nil {
				return err
			}
			s := screen.NewPatientVisits(c.app.Deps)
			defer s.Close()

			err := s.Load(cmd.Context())
			if err := page(c.app.Renderer(), "Appointments", s.Header(), screen.EmptyPatientVisits, err, s.Table()); err != nil {
				return err
			}
			fmt.Fprintf(c.app.Out, "\n%d upcoming.\n", s.UpcomingCount())
			return nil
		},
	}
}

func (c *cli) patientTreatmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "treatments",
		Short: "Treatment summaries; the first one is expanded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.app.requireRole(model.RolePatient); err != nil {
				return err
			}
			s := screen.NewTreatments(c.app.Deps)
			defer s.Close()

			err := s.Load(cmd.Context())
			r := c.app.Renderer()
			if err := page(r, "Treatments", s.Header(), screen.EmptyTreatments, err); err != nil {
				return err
			}

			toggles, _ := cmd.Flags().GetIntSlice("toggle")
			for _, n := range toggles {
				if err := s.Toggle(n - 1); err != nil {
					return err
				}
			}
			return s.Write(r)
		},
	}
	cmd.Flags().IntSlice("toggle", nil, "open or close entries by position, e.g. --toggle 1,3")
	return cmd
}
