package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	helix "github.com/Guliveer/twitch-helix-go"
	"github.com/Guliveer/twitch-helix-go/internal/utils"
)

var authorizeCmd = &cobra.Command{
	Use:   "authorize",
	Short: "Obtain an app access token and print when it expires",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		exp, err := app.client.Authorize(ctx)
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(cmd, map[string]any{"expires_at": exp})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "token valid until %s (%s)\n",
			exp.Local().Format(time.RFC1123), utils.HumanDuration(time.Until(exp)))
		return nil
	},
}

var userCmd = &cobra.Command{
	Use:   "user LOGIN...",
	Short: "Look up users by login name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		users, err := app.client.GetTwitchUsersByName(ctx, args)
		if err != nil {
			return err
		}
		return printUsers(cmd, args, users)
	},
}

var userIDCmd = &cobra.Command{
	Use:   "user-id ID...",
	Short: "Look up users by id",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		users, err := app.client.GetTwitchUsersByID(ctx, args)
		if err != nil {
			return err
		}
		return printUsers(cmd, args, users)
	},
}

var streamByLogin bool

var streamCmd = &cobra.Command{
	Use:   "stream USER_ID",
	Short: "Show the live stream of a broadcaster",
	Long:  "Show the live stream of a broadcaster. Exits with status 2 when the broadcaster is offline.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		var (
			stream *helix.Stream
			err    error
		)
		if streamByLogin {
			stream, err = app.client.GetStreamInfoByUsername(ctx, args[0])
		} else {
			stream, err = app.client.GetStreamInfoByID(ctx, args[0])
		}
		if err != nil {
			return err
		}
		if stream == nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s is offline\n", args[0])
			return errNotFound
		}
		if asJSON {
			return printJSON(cmd, stream)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is live: %s · %s · %s viewers · up %s\n",
			stream.UserName, stream.Title, stream.GameName,
			utils.Millify(stream.ViewerCount, 1), utils.HumanDuration(stream.Uptime(time.Now())))
		return nil
	},
}

var clipCmd = &cobra.Command{
	Use:   "clip ID...",
	Short: "Look up clips by id",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		clips, err := app.client.GetClipsByIDs(ctx, args)
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(cmd, clips)
		}

		missing := 0
		for i, c := range clips {
			if c == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tnot found\n", args[i])
				missing++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s · %s · %s views · %s\n",
				c.ID, c.Title, c.BroadcasterName, utils.Millify(c.ViewCount, 1), c.Length())
		}
		if missing == len(clips) {
			return errNotFound
		}
		return nil
	},
}

var followDateCmd = &cobra.Command{
	Use:   "follow-date FOLLOWER_ID FOLLOWEE_ID",
	Short: "Show when one user started following another",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		date, err := app.client.GetFollowDate(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		if date == nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s does not follow %s\n", args[0], args[1])
			return errNotFound
		}
		if asJSON {
			return printJSON(cmd, map[string]any{"followed_at": date})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", date.Format("2006-01-02"), utils.Since(*date, time.Now()))
		return nil
	},
}

func init() {
	streamCmd.Flags().BoolVar(&streamByLogin, "login", false, "treat the argument as a login name instead of a user id")
}

func printUsers(cmd *cobra.Command, keys []string, users []*helix.User) error {
	if asJSON {
		return printJSON(cmd, users)
	}

	missing := 0
	for i, u := range users {
		if u == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\tnot found\n", keys[i])
			missing++
			continue
		}
		kind := u.BroadcasterType
		if kind == "" {
			kind = "user"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", u.Login, u.ID, u.DisplayName, kind)
	}
	if missing == len(users) {
		return errNotFound
	}
	return nil
}
