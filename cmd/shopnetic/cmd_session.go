package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/shopnetic/internal/domain"
	"github.com/felixgeelhaar/shopnetic/internal/view"
	"github.com/spf13/cobra"
)

// readPassword prompts on out and reads one line from in.
func readPassword(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Password: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func loginCmd(g *globalFlags) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Sign in",
		Long: `Sign in and keep the session token for later commands.

The password is read from --password or prompted for.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				p, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				password = p
			}

			s, err := openShop(cmd, g)
			if err != nil {
				return err
			}
			defer s.Close()

			s.View.Navigate(view.PageLogin)
			ok := s.View.SubmitLogin(cmd.Context(), args[0], password)
			if ok {
				s.Catalog.Refresh(cmd.Context())
			}
			return s.finish(ok)
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")

	return cmd
}

func registerCmd(g *globalFlags) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "register <username> <email>",
		Short: "Create an account",
		Long:  `Create an account. Registration does not sign you in; run login afterwards.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				p, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				password = p
			}

			s, err := openShop(cmd, g)
			if err != nil {
				return err
			}
			defer s.Close()

			s.View.Navigate(view.PageRegister)
			ok := s.View.SubmitRegister(cmd.Context(), domain.RegisterRequest{
				Username: args[0],
				Email:    args[1],
				Password: password,
			})
			return s.finish(ok)
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")

	return cmd
}

func logoutCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openShop(cmd, g)
			if err != nil {
				return err
			}
			defer s.Close()

			s.View.Logout()
			s.View.Navigate(view.PageLogin)
			return s.finish(true)
		},
	}
}

func whoamiCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openShop(cmd, g)
			if err != nil {
				return err
			}
			defer s.Close()

			u := s.Session.User()
			if u == nil {
				if v := s.View.Render(); v.Error != "" {
					return errors.New(v.Error)
				}
				fmt.Fprintln(s.out, "Not logged in.")
				return nil
			}

			fmt.Fprintf(s.out, "%s <%s>\n", u.Username, u.Email)
			fmt.Fprintf(s.out, "Member since %s\n", u.CreatedAt.Format("2006-01-02"))
			return nil
		},
	}
}
