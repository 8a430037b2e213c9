package helix

import (
	"github.com/Guliveer/twitch-helix-go/internal/events"
	"github.com/Guliveer/twitch-helix-go/internal/model"
)

// Records returned by the lookups.
type (
	User   = model.User
	Stream = model.Stream
	Clip   = model.Clip
	Follow = model.Follow
)

// Diagnostic events.
type (
	Event     = events.Event
	EventKind = events.Kind
	Handler   = events.Handler
)

// Event kinds accepted by Client.On.
const (
	LogInfo  = events.KindInfo
	LogWarn  = events.KindWarn
	LogError = events.KindError
)
