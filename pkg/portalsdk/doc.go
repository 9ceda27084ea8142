/*
Package portalsdk is a client for the passport portal HTTP API and holds the
wire types its handlers write.

# Overview

The portal signs browsers in with Discord and keeps a session cookie. A
Client can call the public health endpoints on its own; the session routes
need the cookie value issued by the login callback:

	client := portalsdk.NewClient("https://portal.example.com")

	health, err := client.GetReadiness(ctx)

	session := client.WithSession(cookieValue)
	me, err := session.Me(ctx)

	join, err := session.JoinGuild(ctx)

# Errors

Every non-success response becomes an *APIError carrying the HTTP status,
the error code and its description:

	var apiErr *portalsdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == portalsdk.ErrorCodeGuildJoinFailed {
		// Discord refused the join; the session is still valid.
	}
*/
package portalsdk
