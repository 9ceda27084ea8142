package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/marabinga/passport-dc/pkg/discord"
	"github.com/marabinga/passport-dc/pkg/slogx"
	"github.com/spf13/cobra"
)

type joinGuildOptions struct {
	GuildID     string
	UserID      string
	AccessToken string
	BotToken    string
	Nick        string
	Roles       []string
	Mute        bool
	Deaf        bool
	APIURL      string
	Timeout     time.Duration
	Verbose     bool
}

func newJoinGuildCommand(out io.Writer) *cobra.Command {
	o := &joinGuildOptions{}

	cmd := &cobra.Command{
		Use:   "join-guild",
		Short: "Add a user to a guild with their access token and a bot token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.BotToken == "" {
				o.BotToken = os.Getenv("DISCORD_BOT_TOKEN")
			}

			var opts discord.GuildMemberOptions
			set := false
			if o.Nick != "" {
				opts.Nick, set = o.Nick, true
			}
			if len(o.Roles) > 0 {
				opts.Roles, set = o.Roles, true
			}
			if cmd.Flags().Changed("mute") {
				opts.Mute, set = &o.Mute, true
			}
			if cmd.Flags().Changed("deaf") {
				opts.Deaf, set = &o.Deaf, true
			}
			var optsPtr *discord.GuildMemberOptions
			if set {
				optsPtr = &opts
			}

			logger := slogx.Discard()
			if o.Verbose {
				logger = slogx.New(slogx.Config{Service: "portal-cli", Level: "debug", Format: "text", Output: cmd.ErrOrStderr()})
			}

			client := discord.NewClient(discord.ClientOptions{
				APIBaseURL: o.APIURL,
				Timeout:    o.Timeout,
				Logger:     logger,
			})

			err := client.AddUserToGuild(cmd.Context(), discord.GuildJoinRequest{
				GuildID:     o.GuildID,
				UserID:      o.UserID,
				AccessToken: o.AccessToken,
				BotToken:    o.BotToken,
				Options:     optsPtr,
			})
			var joinErr *discord.GuildJoinError
			if errors.As(err, &joinErr) && joinErr.StatusCode != 0 {
				return fmt.Errorf("%w (status %d)", err, joinErr.StatusCode)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "user %s is a member of guild %s\n", o.UserID, o.GuildID)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&o.GuildID, "guild", "", "Guild id to join")
	flags.StringVar(&o.UserID, "user", "", "Discord user id")
	flags.StringVar(&o.AccessToken, "access-token", "", "User access token granted with the guilds.join scope")
	flags.StringVar(&o.BotToken, "bot-token", "", "Bot token of a member of the guild (default $DISCORD_BOT_TOKEN)")
	flags.StringVar(&o.Nick, "nick", "", "Nickname to set")
	flags.StringSliceVar(&o.Roles, "role", nil, "Role id to assign (repeatable)")
	flags.BoolVar(&o.Mute, "mute", false, "Join server muted")
	flags.BoolVar(&o.Deaf, "deaf", false, "Join server deafened")
	flags.StringVar(&o.APIURL, "api-url", discord.DefaultAPIBaseURL, "Discord REST base URL")
	flags.DurationVar(&o.Timeout, "timeout", discord.DefaultTimeout, "Request timeout")
	flags.BoolVarP(&o.Verbose, "verbose", "v", false, "Log requests to stderr")

	for _, name := range []string{"guild", "user", "access-token"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
