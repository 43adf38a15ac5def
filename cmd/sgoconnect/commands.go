package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/sgo-connect/app"
	"github.com/jrsteele09/sgo-connect/browser"
	"github.com/jrsteele09/sgo-connect/internal/config"
	apperrors "github.com/jrsteele09/sgo-connect/internal/errors"
	"github.com/jrsteele09/sgo-connect/internal/utils"
	"github.com/jrsteele09/sgo-connect/profiles"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// cli carries the app between cobra's pre-run hook and the subcommands.
type cli struct {
	config     config.Config
	app        *app.App
	freshStart bool
}

func (c *cli) close() {
	if c.app == nil {
		return
	}
	if err := c.app.Close(); err != nil {
		log.Err(err).Msg("Closing token store failed")
	}
}

func newRootCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sgoconnect",
		Short:         "Sign in to the school portal and manage the stored tokens",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd.Context(), c.config)
			if err != nil {
				return err
			}
			c.app = a
			return a.Start(cmd.Context(), c.freshStart)
		},
	}
	cmd.PersistentFlags().BoolVar(&c.freshStart, "fresh-start", false, "forget every stored token before running the command")

	cmd.AddCommand(
		newLoginCmd(c),
		newStatusCmd(c),
		newSelectTokenCmd(c),
		newSelectUserCmd(c),
		newTokenCmd(c),
		newProfilesCmd(c),
		newPublishCmd(c),
		newLogoutCmd(c),
	)
	return cmd
}

func newLoginCmd(c *cli) *cobra.Command {
	var region string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in through the portal's login page",
		RunE: func(cmd *cobra.Command, args []string) error {
			displayAppname(c.config.GetAppName())
			out := cmd.OutOrStdout()
			outcome, err := c.app.Login(cmd.Context(), browser.NewTerminal(os.Stdin, out), region)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nSigned in. Token %s\n", outcome.TokenID)
			printUsers(out, outcome.Users, nil)
			if len(outcome.Users) > 1 {
				fmt.Fprintln(out, "\nSeveral profiles are available; choose one with: sgoconnect select-user ID")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&region, "region", "", "regional portal base URL (default SGO_REGION_URL)")
	return cmd
}

func newStatusCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List stored tokens and the current selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			snap, err := c.app.Store().Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			if len(snap.Tokens) == 0 {
				fmt.Fprintln(out, "Not signed in.")
				return nil
			}
			selectedToken := utils.Value(snap.Selection.SelectedTokenID)
			for _, t := range snap.Tokens {
				marker := " "
				if t.ID == selectedToken {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s  expires %s\n", marker, t.ID, t.ExpiresAt.Local().Format(time.RFC1123))
				if t.ID == selectedToken {
					printUsers(out, t.Users, snap.Selection.SelectedUserID)
				} else {
					printUsers(out, t.Users, nil)
				}
			}
			return nil
		},
	}
}

func newSelectTokenCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "select-token ID",
		Short: "Make a stored token the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Store().SelectToken(cmd.Context(), args[0])
		},
	}
}

func newSelectUserCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "select-user ID",
		Short: "Choose the active profile of the selected token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("user id must be a number: %w", err)
			}
			return c.app.Store().SelectUser(cmd.Context(), id)
		},
	}
}

func newTokenCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Print a valid access token for the selected record, refreshing it if needed",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.app.Gate().IsOpen() {
				return apperrors.ErrNotLoggedIn
			}
			src, err := c.app.TokenSource(cmd.Context())
			if err != nil {
				return err
			}
			tok, err := src.Token()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok.AccessToken)
			return nil
		},
	}
}

func newProfilesCmd(c *cli) *cobra.Command {
	var region string
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Fetch the selected token's profiles again",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := c.app.ReloadProfiles(cmd.Context(), region)
			if err != nil {
				return err
			}
			printUsers(cmd.OutOrStdout(), users, nil)
			return nil
		},
	}
	cmd.Flags().StringVar(&region, "region", "", "regional portal base URL (default SGO_REGION_URL)")
	return cmd
}

func newPublishCmd(c *cli) *cobra.Command {
	var userID int
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Hand the selected token to the SGO Connect backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			var user *int
			if cmd.Flags().Changed("user") {
				user = &userID
			}
			id, err := c.app.Publish(cmd.Context(), user)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token id: %s (valid %d minutes, until %s)\n",
				id.TokenID, id.TokenExpiresSeconds/60, id.ExpiresAt.Local().Format(time.RFC1123))
			return nil
		},
	}
	cmd.Flags().IntVar(&userID, "user", 0, "publish only this profile")
	return cmd
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget every stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Logout(cmd.Context())
		},
	}
}

func printUsers(out io.Writer, users []profiles.UserProfile, selected *int) {
	var walk func([]profiles.UserProfile, int)
	walk = func(list []profiles.UserProfile, depth int) {
		for _, u := range list {
			marker := " "
			if selected != nil && *selected == u.ID {
				marker = "*"
			}
			fmt.Fprintf(out, "  %s%s%d  %s (%s)%s\n", strings.Repeat("  ", depth), marker, u.ID, u.FirstName, u.LoginName, roles(u))
			for _, org := range u.ActiveOrganizations() {
				fmt.Fprintf(out, "  %s   %s\n", strings.Repeat("  ", depth), org.Organization.Name)
			}
			walk(u.Children, depth+1)
		}
	}
	walk(users, 0)
}

func roles(u profiles.UserProfile) string {
	var r []string
	if u.IsParent {
		r = append(r, "parent")
	}
	if u.IsStudent {
		r = append(r, "student")
	}
	if u.IsStaff {
		r = append(r, "staff")
	}
	if len(r) == 0 {
		return ""
	}
	return " [" + strings.Join(r, ", ") + "]"
}
