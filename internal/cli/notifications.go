package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/vcscsvcscs/dental-console/internal/screen"
)

func (c *cli) notificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"inbox"},
		Short:   "Notification inbox",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.app.requireSession(); err != nil {
				return err
			}
			tab, _ := cmd.Flags().GetString("tab")
			t, err := screen.ParseTab(tab)
			if err != nil {
				return err
			}
			s := screen.NewNotifications(c.app.Deps)
			defer s.Close()
			s.SetTab(t)

			err = s.Load(cmd.Context())
			return page(c.app.Renderer(), "Notifications", s.Header(), screen.EmptyNotifications, err, s.Table())
		},
	}
	cmd.Flags().String("tab", "unread", "unread or all")

	cmd.AddCommand(&cobra.Command{
		Use:   "read <id>",
		Short: "Mark one notification read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.app.requireSession(); err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("notification id must be numeric: %w", err)
			}
			s := screen.NewNotifications(c.app.Deps)
			defer s.Close()

			if err := s.MarkRead(cmd.Context(), id); err != nil {
				fmt.Fprintln(c.app.Out, s.Message())
				return ErrReported
			}
			fmt.Fprintf(c.app.Out, "Notification %d marked read.\n", id)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.app.requireSession(); err != nil {
				return err
			}
			s := screen.NewNotifications(c.app.Deps)
			defer s.Close()

			if err := s.MarkAllRead(cmd.Context()); err != nil {
				fmt.Fprintln(c.app.Out, s.Message())
				return ErrReported
			}
			fmt.Fprintln(c.app.Out, "All notifications marked read.")
			return nil
		},
	})
	return cmd
}
