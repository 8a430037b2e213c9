// Package helix is a client for the Twitch Helix API that authenticates
// with application credentials.
//
// A Client obtains an app access token through the OAuth client-credentials
// grant and renews it shortly before it expires, so callers never handle
// tokens. Lookups that accept several keys return one result per key in the
// order of the keys, with nil for keys Twitch does not know. A lookup that
// finds nothing returns nil and no error.
//
// The package does not log. Diagnostic events are delivered to handlers
// registered with Client.On:
//
//	client, err := helix.New(&helix.Options{
//		ClientID:     os.Getenv("TWITCH_CLIENT_ID"),
//		ClientSecret: os.Getenv("TWITCH_CLIENT_SECRET"),
//	})
//	if err != nil {
//		return err
//	}
//	client.On(helix.LogError, func(ev helix.Event) { slog.Error(ev.Message, ev.Attrs()...) })
//
//	user, err := client.GetTwitchUserByName(ctx, "nightbot")
package helix
