// Package types contains the views shared by the service and its transports.
package types

import (
	"time"

	"github.com/okian/spotcheck/internal/domain/model"
)

// SessionView is the public state of one session.
type SessionView struct {
	ID               string       `json:"id"`
	Status           model.Status `json:"status"`
	TapsRemaining    int          `json:"taps_remaining"`
	SecondsRemaining int          `json:"seconds_remaining"`
	TotalValid       int          `json:"total_valid"`
	FoundIDs         []int        `json:"found_ids"`
	MaxTaps          int          `json:"max_taps"`
	MaxSeconds       int          `json:"max_seconds"`
	MaxCorrect       int          `json:"max_correct"`
	Cause            model.Cause  `json:"cause,omitempty"`
	Player           string       `json:"player,omitempty"`
	// StartsAt is set while the pre-play countdown runs.
	StartsAt  *time.Time `json:"starts_at,omitempty"`
	StartedAt *time.Time `json:"started_at,omitempty"`
}

// StageRect is the on-screen rectangle of the stage in client pixels.
type StageRect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// TapRequest carries either a normalized point (X, Y) or raw client
// coordinates with the stage rectangle they refer to.
type TapRequest struct {
	X       *float64   `json:"x,omitempty"`
	Y       *float64   `json:"y,omitempty"`
	ClientX *float64   `json:"client_x,omitempty"`
	ClientY *float64   `json:"client_y,omitempty"`
	Stage   *StageRect `json:"stage,omitempty"`
}

// TapResponse is the feedback for one tap.
type TapResponse struct {
	Accepted      bool        `json:"accepted"`
	Hit           bool        `json:"hit"`
	HotspotID     int         `json:"hotspot_id,omitempty"`
	Point         model.Point `json:"point"`
	TapsRemaining int         `json:"taps_remaining"`
	TotalValid    int         `json:"total_valid"`
	Ended         bool        `json:"ended"`
	Session       SessionView `json:"session"`
}

// ResultView is the scored outcome of an ended session.
type ResultView struct {
	SessionID        string      `json:"session_id"`
	Cause            model.Cause `json:"cause"`
	IssuesFound      int         `json:"issues_found"`
	MaxCorrect       int         `json:"max_correct"`
	TimeRemaining    int         `json:"time_remaining"`
	TimeBonus        int         `json:"time_bonus"`
	TotalScore       int         `json:"total_score"`
	Verdict          string      `json:"verdict"`
	Headline         string      `json:"headline"`
	CompletionTimeMs int64       `json:"completion_time_ms"`
	FoundIDs         []int       `json:"found_ids"`
	// Recorded is true when the result made it onto the leaderboard.
	Recorded bool `json:"recorded"`
	Rank     int  `json:"rank,omitempty"`
}

// LeaderboardEntry is one public leaderboard row. Emails are never exposed.
type LeaderboardEntry struct {
	Rank             int    `json:"rank"`
	Name             string `json:"name"`
	IssuesFound      int    `json:"issues_found"`
	TimeRemaining    int    `json:"time_remaining"`
	TotalScore       int    `json:"total_score"`
	CompletionTimeMs int64  `json:"completion_time_ms"`
	Timestamp        string `json:"timestamp"`
}

// CatalogView describes the stage a client should render.
type CatalogView struct {
	Profile    string          `json:"profile"`
	Debug      bool            `json:"debug"`
	MaxTaps    int             `json:"max_taps"`
	MaxSeconds int             `json:"max_seconds"`
	MaxCorrect int             `json:"max_correct"`
	Countdown  int             `json:"countdown_seconds"`
	Identity   bool            `json:"identity_required"`
	Hotspots   []model.Hotspot `json:"hotspots"`
}

// Stats is a point-in-time summary of the service.
type Stats struct {
	Profile          string `json:"profile"`
	ActiveSessions   int    `json:"active_sessions"`
	RunningSessions  int    `json:"running_sessions"`
	SessionsStarted  int64  `json:"sessions_started"`
	SessionsEnded    int64  `json:"sessions_ended"`
	LeaderboardSize  int    `json:"leaderboard_size"`
	SubmitQueueDepth int    `json:"submit_queue_depth"`
	Uptime           string `json:"uptime"`
}
