package main

import (
	"fmt"
	"io"

	"github.com/marabinga/passport-dc/internal/portal/app"
	"github.com/marabinga/passport-dc/pkg/cryptox"
	"github.com/marabinga/passport-dc/pkg/discord"
	"github.com/marabinga/passport-dc/pkg/oauth2x"
	"github.com/spf13/cobra"
)

func newAuthorizeURLCommand(out io.Writer) *cobra.Command {
	var (
		state  string
		prompt string
		scopes []string
	)

	cmd := &cobra.Command{
		Use:   "authorize-url",
		Short: "Print the Discord authorize URL for the configured application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.LoadConfig()

			strategy, err := discord.New(discord.Config{
				ClientID:     cfg.DiscordClientID,
				ClientSecret: cfg.DiscordClientSecret,
				CallbackURL:  cfg.DiscordCallbackURL,
				Scopes:       cfg.DiscordScopes,
				Prompt:       cfg.DiscordPrompt,
				Permissions:  cfg.DiscordPermissions,
			})
			if err != nil {
				return err
			}

			if state == "" {
				if state, err = cryptox.GenerateToken(cryptox.TokenSize128); err != nil {
					return err
				}
			}

			ao := oauth2x.AuthorizeOptions{Scopes: scopes}
			if prompt != "" {
				ao.Extra = map[string]string{"prompt": prompt}
			}

			engine := oauth2x.New[*discord.Profile](strategy, oauth2x.Options{})
			fmt.Fprintln(out, engine.AuthCodeURL(state, ao))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&state, "state", "", "State value (random when empty)")
	flags.StringVar(&prompt, "prompt", "", "Override DISCORD_PROMPT (consent or none)")
	flags.StringSliceVar(&scopes, "scope", nil, "Override DISCORD_SCOPES (repeatable)")
	return cmd
}
