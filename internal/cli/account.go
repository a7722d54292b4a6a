package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vcscsvcscs/dental-console/internal/render"
	"github.com/vcscsvcscs/dental-console/internal/service"
	"github.com/vcscsvcscs/dental-console/internal/session"
	"github.com/vcscsvcscs/dental-console/pkg/model"
)

// prompter reads answers line by line from the command's input
type prompter struct {
	c       *cli
	scanner *bufio.Scanner
}

func (c *cli) prompter() *prompter {
	return &prompter{c: c, scanner: bufio.NewScanner(c.in)}
}

// ask writes label and returns the trimmed answer; end of input is an empty answer
func (p *prompter) ask(label string) string {
	fmt.Fprint(p.c.out, label)
	if !p.scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(p.scanner.Text())
}

func (c *cli) loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as an admin, doctor or patient",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := c.app
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			role, _ := cmd.Flags().GetString("role")
			force, _ := cmd.Flags().GetBool("force")

			if sess, ok := app.Sessions.Current(); ok && app.Sessions.Authenticated() && !force {
				fmt.Fprintf(app.Out, "Already signed in as %s (%s). Use --force to sign in again.\n", displayName(sess), sess.Role)
				return nil
			}

			p := c.prompter()
			if role == "" {
				role = p.ask("Role (admin/doctor/patient): ")
			}
			if email == "" {
				email = p.ask("Email: ")
			}
			if password == "" {
				password = p.ask("Password: ")
			}

			sess, err := app.Auth.Login(cmd.Context(), email, password, model.Role(strings.ToUpper(role)))
			if err != nil {
				var loginErr *service.LoginError
				if errors.As(err, &loginErr) {
					fmt.Fprintln(app.Out, loginErr.Message)
					return ErrReported
				}
				return err
			}
			fmt.Fprintf(app.Out, "Signed in as %s (%s).\n", displayName(sess), sess.Role)
			return nil
		},
	}
	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("password", "", "account password (prompted when omitted)")
	cmd.Flags().String("role", "", "admin, doctor or patient")
	cmd.Flags().Bool("force", false, "sign in again even with an active session")
	return cmd
}

func displayName(s model.Session) string {
	if s.UserName != "" {
		return s.UserName
	}
	if s.UserID != "" {
		return s.UserID
	}
	return "unknown user"
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Auth.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(c.app.Out, "Signed out.")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := c.app.requireSession()
			if err != nil {
				return err
			}
			return c.app.Renderer().Fields("Session", []render.Field{
				{Label: "Name", Value: render.Text(displayName(sess))},
				{Label: "User id", Value: render.Text(orDash(sess.UserID))},
				{Label: "Role", Value: render.Text(string(sess.Role))},
				{Label: "Backend", Value: render.Text(c.app.Client.BaseURL())},
			})
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func (c *cli) prefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change display preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sessions := c.app.Sessions

			if cmd.Flags().Changed("theme") {
				theme, _ := cmd.Flags().GetString("theme")
				mode := session.ParseTheme(strings.ToLower(theme))
				if string(mode) != strings.ToLower(theme) {
					return fmt.Errorf("unknown theme %q (want light, dark or system)", theme)
				}
				if err := sessions.SetTheme(mode); err != nil {
					return err
				}
			}
			if toggle, _ := cmd.Flags().GetBool("cycle-theme"); toggle {
				if err := sessions.SetTheme(session.NextTheme(sessions.Preferences().Theme)); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("sidebar") {
				raw, _ := cmd.Flags().GetString("sidebar")
				open, err := strconv.ParseBool(raw)
				if err != nil {
					return fmt.Errorf("--sidebar wants true or false: %w", err)
				}
				if err := sessions.SetSidebarOpen(open); err != nil {
					return err
				}
			}

			prefs := sessions.Preferences()
			return c.app.Renderer().Fields("Preferences", []render.Field{
				{Label: "Theme", Value: render.Text(string(prefs.Theme))},
				{Label: "Sidebar open", Value: render.Text(strconv.FormatBool(prefs.SidebarOpen))},
			})
		},
	}
	cmd.Flags().String("theme", "", "light, dark or system")
	cmd.Flags().Bool("cycle-theme", false, "switch to the next theme")
	cmd.Flags().String("sidebar", "", "true or false")
	return cmd
}
