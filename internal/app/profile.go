package service

import "strings"

// Profile is a named rule set for a deployment.
type Profile struct {
	Name            string
	MaxTaps         int
	MaxSeconds      int
	RequireIdentity bool
	Leaderboard     bool
}

// Built-in profiles. The leaderboard profile is the kiosk game with player
// details and a shared board; classic is the anonymous variant.
var (
	ProfileLeaderboard = Profile{Name: "leaderboard", MaxTaps: 13, MaxSeconds: 90, RequireIdentity: true, Leaderboard: true}
	ProfileClassic     = Profile{Name: "classic", MaxTaps: 11, MaxSeconds: 60}
)

// ProfileByName looks up a built-in profile. Names are case-insensitive.
func ProfileByName(name string) (Profile, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ProfileLeaderboard.Name:
		return ProfileLeaderboard, true
	case ProfileClassic.Name:
		return ProfileClassic, true
	default:
		return Profile{}, false
	}
}
