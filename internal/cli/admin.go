package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vcscsvcscs/dental-console/internal/apiclient"
	"github.com/vcscsvcscs/dental-console/internal/mutation"
	"github.com/vcscsvcscs/dental-console/internal/screen"
	"github.com/vcscsvcscs/dental-console/internal/status"
	"github.com/vcscsvcscs/dental-console/pkg/model"
)

func (c *cli) adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Clinic administration screens",
	}
	cmd.AddCommand(c.adminAppointmentsCmd())
	cmd.AddCommand(c.adminTrackingCmd())
	cmd.AddCommand(c.adminCasesCmd())
	cmd.AddCommand(c.adminInventoryCmd())
	cmd.AddCommand(c.adminPatientsCmd())
	cmd.AddCommand(c.adminDashboardCmd())
	cmd.AddCommand(c.adminRevenueCmd())
	cmd.AddCommand(c.adminReportCmd())
	return cmd
}

func (c *cli) adminAppointmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "appointments",
		Short: "Today's schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.app.requireRole(model.RoleAdmin); err != nil {
				return err
			}
			s := screen.NewAdminAppointments(c.app.Deps)
			defer s.Close()

			search, _ := cmd.Flags().GetString("search")
			s.SetQuery(search)
			err := s.Load(cmd.Context())
			return page(c.app.Renderer(), "Appointments "+s.Date(), s.Header(), screen.EmptyAppointments, err, s.Table())
		},
	}
	cmd.Flags().String("search", "", "filter by id, patient or doctor")
	cmd.AddCommand(c.adminCreateAppointmentCmd())
	return cmd
}

// resolveOption accepts an exact id or the first option whose name, id or phone matches
func resolveOption(kind, value string, search func(string) []model.UserOption) (string, error) {
	if value == "" {
		return "", nil
	}
	for _, o := range search("") {
		if o.ID == value {
			return o.ID, nil
		}
	}
	matches := search(value)
	if len(matches) == 0 {
		return "", fmt.Errorf("no %s matches %q", kind, value)
	}
	return matches[0].ID, nil
}

func (c *cli) adminCreateAppointmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Book an appointment; on a slot conflict pick one of the suggested slots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := c.app
			if _, err := app.requireRole(model.RoleAdmin); err != nil {
				return err
			}
			ctx := cmd.Context()
			s := screen.NewAdminAppointments(app.Deps)
			defer s.Close()

			if err := s.OpenCreate(ctx); err != nil {
				fmt.Fprintln(app.Out, apiclient.Describe(err, screen.MsgLoadPeople))
			}

			flags := cmd.Flags()
			patient, _ := flags.GetString("patient")
			doctor, _ := flags.GetString("doctor")
			patientUID, err := resolveOption("patient", patient, s.Patients)
			if err != nil {
				return err
			}
			doctorUID, err := resolveOption("doctor", doctor, s.Doctors)
			if err != nil {
				return err
			}

			s.Form().Edit(func(f screen.AppointmentForm) screen.AppointmentForm {
				if patientUID != "" {
					f.PatientUID = patientUID
				}
				if doctorUID != "" {
					f.DoctorUID = doctorUID
				}
				if flags.Changed("date") {
					f.Date, _ = flags.GetString("date")
				}
				if flags.Changed("time") {
					f.Time, _ = flags.GetString("time")
				}
				if flags.Changed("type") {
					f.Type, _ = flags.GetString("type")
				}
				if flags.Changed("status") {
					f.Status, _ = flags.GetString("status")
				}
				return f
			})

			pick, _ := flags.GetInt("pick")
			interactive, _ := flags.GetBool("interactive")
			p := c.prompter()

			for {
				outcome, err := s.Submit(ctx)
				switch outcome {
				case mutation.OutcomeSuccess:
					fmt.Fprintln(app.Out, "Appointment created.")
					if err != nil {
						fmt.Fprintln(app.Out, apiclient.Describe(err, screen.MsgLoadAppointments))
						return ErrReported
					}
					return page(app.Renderer(), "Appointments "+s.Date(), s.Header(), screen.EmptyAppointments, nil, s.Table())
				case mutation.OutcomeConflict:
					sugg := s.Form().Suggestions()
					fmt.Fprintln(app.Out, s.Form().Message())
					printSuggestions(c, sugg)
					if sugg.Empty() {
						return ErrReported
					}
					choice := pick
					pick = 0
					if choice == 0 && interactive {
						choice, _ = strconv.Atoi(p.ask(fmt.Sprintf("Pick a slot [1-%d], or press Enter to cancel: ", len(sugg.Visible()))))
					}
					if choice == 0 {
						return ErrReported
					}
					slot, err := s.PickSlot(choice - 1)
					if err != nil {
						return fmt.Errorf("slot %d: %w", choice, err)
					}
					fmt.Fprintf(app.Out, "Retrying with %s.\n", mutation.SlotLabel(slot))
				default:
					fmt.Fprintln(app.Out, s.Form().Message())
					return ErrReported
				}
			}
		},
	}
	cmd.Flags().String("patient", "", "patient id, or a name or phone to search for")
	cmd.Flags().String("doctor", "", "doctor id, or a name or phone to search for")
	cmd.Flags().String("date", "", "YYYY-MM-DD (default today)")
	cmd.Flags().String("time", "", "HH:MM (default "+screen.DefaultAppointmentTime+")")
	cmd.Flags().String("type", "", "visit type (default "+screen.DefaultAppointmentType+")")
	cmd.Flags().String("status", "", "initial status: "+strings.Join(screen.AppointmentStatuses, ", "))
	cmd.Flags().Int("pick", 0, "on a conflict, book the n-th suggested slot")
	cmd.Flags().BoolP("interactive", "i", false, "on a conflict, ask which suggested slot to book")
	return cmd
}

func printSuggestions(c *cli, sugg mutation.Suggestions) {
	if sugg.Empty() {
		fmt.Fprintln(c.app.Out, "No alternative slots were suggested.")
		return
	}
	fmt.Fprintln(c.app.Out, "Suggested slots:")
	for i, label := range sugg.Labels() {
		fmt.Fprintf(c.app.Out, "  %d. %s\n", i+1, label)
	}
	if sugg.Total() > len(sugg.Visible()) {
		fmt.Fprintf(c.app.Out, "  (%d more not shown)\n", sugg.Total()-len(sugg.Visible()))
	}
}

func (c *cli) adminTrackingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tracking",
		Short: "Case tracking board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.app.requireRole(model.RoleAdmin); err != nil {
				return err
			}
			s := screen.NewCaseTracking(c.app.Deps)
			defer s.Close()

			stage, _ := cmd.Flags().GetString("stage")
			if err := s.SetStage(stage); err != nil {
				return err
			}
			highRisk, _ := cmd.Flags().GetBool("high-risk")
			s.SetHighRisk(highRisk)
			search, _ := cmd.Flags().GetString("search")
			s.SetQuery(search)

			err := s.Load(cmd.Context())
			r := c.app.Renderer()
			if err := page(r, "Case tracking", s.Header(), screen.EmptyTrackedCases, err, s.Table()); err != nil {
				return err
			}
			return r.Fields("Summary", s.SummaryFields())
		},
	}
	cmd.Flags().String("stage", "", "only this stage (e.g. IN_TREATMENT)")
	cmd.Flags().Bool("high-risk", false, "only cases with a risk score of 70 or more")
	cmd.Flags().String("search", "", "filter by case id, patient, doctor or type")
	cmd.AddCommand(&cobra.Command{
		Use:   "stage <case-id> <stage>",
		Short: "Move a tracked case to another stage",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.app.requireRole(model.RoleAdmin); err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("case id must be numeric: %w", err)
			}
			stage, ok := status.ParseStage(args[1])
			if !ok {
				return fmt.Errorf("unknown stage %q", args[1])
			}

			s := screen.NewCaseTracking(c.app.Deps)
			defer s.Close()
			if err := s.Load(cmd.Context()); err != nil {
				return page(c.app.Renderer(), "Case tracking", s.Header(), screen.EmptyTrackedCases, err)
			}
			if err := s.UpdateStage(cmd.Context(), id, stage); err != nil {
				fmt.Fprintln(c.app.Out, s.Message())
				return ErrReported
			}
			fmt.Fprintf(c.app.Out, "Case %d moved to %s.\n", id, status.StageLabel(stage))
			return page(c.app.Renderer(), "Case tracking", s.Header(), screen.EmptyTrackedCases, nil, s.Table())
		},
	})
	return cmd
}

func (c *cli) adminCasesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cases",
		Short: "Case pipeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.app.requireRole(model.RoleAdmin); err != nil {
				return err
			}
			s := screen.NewCasePipeline(c.app.Deps)
			defer s.Close()

			stage, _ := cmd.Flags().GetString("stage")
			if err := s.SetStage(stage); err != nil {
				return err
			}
			search, _ := cmd.Flags().GetString("search")
			s.SetQuery(search)

			err := s.Load(cmd.Context())
			r := c.app.Renderer()
			if err := page(r, "Cases", s.Header(), screen.EmptyCases, err, s.Table()); err != nil {
				return err
			}
			return r.Fields("Pipeline", s.CountFields())
		},
	}
	cmd.Flags().String("stage", "", "only this stage")
	cmd.Flags().String("search", "", "filter by id, patient, doctor or type")
	return cmd
}

func (c *cli) adminInventoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Stock list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.app.requireRole(model.RoleAdmin); err != nil {
				return err
			}
			s := screen.NewInventory(c.app.Deps)
			defer s.Close()

			category, _ := cmd.Flags().GetString("category")
			s.SetCategory(category)
			search, _ := cmd.Flags().GetString("search")
			s.SetQuery(search)

			err := s.Load(cmd.Context())
			if err := page(c.app.Renderer(), "Inventory", s.Header(), screen.EmptyInventory, err, s.Table()); err != nil {
				return err
			}
			fmt.Fprintf(c.app.Out, "\nLow stock: %d   Categories: %s\n", s.LowStockCount(), strings.Join(s.Categories(), ", "))
			return nil
		},
	}
	cmd.Flags().String("category", "", "only this category")
	cmd.Flags().String("search", "", "filter by name, code or category")

	create := &cobra.Command{
		Use:   "create",
		Short: "Add a stock line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.app.requireRole(model.RoleAdmin); err != nil {
				return err
			}
			s := screen.NewInventory(c.app.Deps)
			defer s.Close()

			flags := cmd.Flags()
			s.OpenCreate()
			s.Form().Edit(func(f screen.InventoryForm) screen.InventoryForm {
				f.ItemCode, _ = flags.GetString("code")
				f.Name, _ = flags.GetString("name")
				if flags.Changed("category") {
					f.Category, _ = flags.GetString("category")
				}
				f.Stock, _ = flags.GetFloat64("stock")
				if flags.Changed("threshold") {
					f.ReorderThreshold, _ = flags.GetFloat64("threshold")
				}
				f.ExpiryDate, _ = flags.GetString("expiry")
				return f
			})

			outcome, err := s.Submit(cmd.Context())
			if outcome != mutation.OutcomeSuccess {
				fmt.Fprintln(c.app.Out, s.Form().Message())
				return ErrReported
			}
			fmt.Fprintln(c.app.Out, "Item created.")
			return page(c.app.Renderer(), "Inventory", s.Header(), screen.EmptyInventory, err, s.Table())
		},
	}
	create.Flags().String("code", "", "item code, e.g. GAUZE-001")
	create.Flags().String("name", "", "item name")
	create.Flags().String("category", "", "category (default "+screen.DefaultInventoryCategory+")")
	create.Flags().Float64("stock", 0, "units in stock")
	create.Flags().Float64("threshold", screen.DefaultReorderThreshold, "reorder threshold")
	create.Flags().String("expiry", "", "expiry date YYYY-MM-DD")
	cmd.AddCommand(create)
	return cmd
}

func (c *cli) adminPatientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patients",
		Short: "Patient directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.app.requireRole(model.RoleAdmin); err != nil {
				return err
			}
			s := screen.NewPatientDirectory(c.app.Deps)
			defer s.Close()

			search, _ := cmd.Flags().GetString("search")
			s.SetQuery(search)
			err := s.Load(cmd.Context())
			return page(c.app.Renderer(), "Patients", s.Header(), screen.EmptyPatients, err, s.Table())
		},
	}
	cmd.Flags().String("search", "", "filter by id, name or phone")
	return cmd
}

func (c *cli) adminDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Today at a glance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.app.requireRole(model.RoleAdmin); err != nil {
				return err
			}
			s := screen.NewDashboard(c.app.Deps)
			defer s.Close()

			err := s.Load(cmd.Context())
			r := c.app.Renderer()
			if perr := page(r, "Dashboard", s.Header(), "", err); perr != nil {
				return perr
			}
			return r.Fields("", s.Fields())
		},
	}
}

func (c *cli) adminRevenueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revenue",
		Short: "Revenue overview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.app.requireRole(model.RoleAdmin); err != nil {
				return err
			}
			s := screen.NewRevenue(c.app.Deps)
			defer s.Close()

			err := s.Load(cmd.Context())
			r := c.app.Renderer()
			if perr := page(r, "Revenue", s.Header(), "", err); perr != nil {
				return perr
			}
			if ferr := r.Fields("", s.Fields()); ferr != nil {
				return ferr
			}
			return r.Table(s.Table())
		},
	}
}

func (c *cli) adminReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export the clinic report as PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := c.app.requireRole(model.RoleAdmin)
			if err != nil {
				return err
			}
			out, _ := cmd.Flags().GetString("out")
			clinic, _ := cmd.Flags().GetString("clinic")

			data, err := screen.ExportClinicReport(cmd.Context(), c.app.Deps, clinic, displayName(sess))
			if err != nil {
				fmt.Fprintln(c.app.Out, apiclient.Describe(err, screen.MsgLoadReport))
				return ErrReported
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			fmt.Fprintf(c.app.Out, "Report written to %s (%d bytes).\n", out, len(data))
			return nil
		},
	}
	cmd.Flags().StringP("out", "o", "clinic-report.pdf", "output file")
	cmd.Flags().String("clinic", "Dental Clinic", "clinic name on the report")
	return cmd
}
