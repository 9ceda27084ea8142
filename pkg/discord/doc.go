// Package discord authenticates users against Discord with OAuth2 and loads
// their profile.
//
// A Strategy plugs into oauth2x.Engine: the engine runs the redirect and code
// exchange, the strategy contributes Discord endpoints, the extra authorize
// parameters (permissions, prompt) and the profile fetch. The fetch always
// reads /users/@me and, when the strategy was configured with the matching
// scope, /users/@me/connections and /users/@me/guilds, in that order.
//
// AddUserToGuild puts an authenticated user into a guild using a bot token.
// The bot must already be in the guild with CREATE_INSTANT_INVITE and the
// user must have granted the guilds.join scope.
//
//	s, err := discord.New(discord.Config{
//		ClientID:     os.Getenv("DISCORD_CLIENT_ID"),
//		ClientSecret: os.Getenv("DISCORD_CLIENT_SECRET"),
//		CallbackURL:  "https://example.com/auth/discord/callback",
//		Scopes:       []string{discord.ScopeIdentify, discord.ScopeGuilds},
//	})
//	engine := oauth2x.New[*discord.Profile](s, oauth2x.Options{})
package discord
