package playbot

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/okian/spotcheck/internal/domain/hittest"
	"github.com/okian/spotcheck/internal/domain/model"
	"github.com/okian/spotcheck/internal/domain/types"
)

// Number of polls for a result that is not ready yet.
const resultAttempts = 10

type createRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// outcome is what one player saw while playing.
type outcome struct {
	SessionID string
	Name      string
	Taps      int
	Hits      int
	Result    types.ResultView
}

type player struct {
	c       *client
	catalog types.CatalogView
	miss    model.Point
	canMiss bool
	ratio   float64
	poll    time.Duration
}

func newPlayer(c *client, cat types.CatalogView, ratio float64, poll time.Duration) *player {
	miss, ok := missPoint(cat.Hotspots)
	return &player{c: c, catalog: cat, miss: miss, canMiss: ok, ratio: ratio, poll: poll}
}

// missPoint finds a stage point that lies in no hotspot.
func missPoint(hotspots []model.Hotspot) (model.Point, bool) {
	for y := 0.5; y < 100; y++ {
		for x := 0.5; x < 100; x++ {
			p := model.Point{X: x, Y: y}
			inside := false
			for _, h := range hotspots {
				if hittest.Contains(h, p) {
					inside = true
					break
				}
			}
			if !inside {
				return p, true
			}
		}
	}
	return model.Point{}, false
}

// play runs one session from start to scored result.
func (p *player) play(ctx context.Context, n int, rng *rand.Rand) (outcome, error) {
	out := outcome{Name: fmt.Sprintf("bot-%03d", n)}
	req := createRequest{Name: out.Name, Email: fmt.Sprintf("bot-%03d@playbot.test", n)}

	var view types.SessionView
	if err := p.c.post(ctx, "/sessions", req, &view); err != nil {
		return out, err
	}
	out.SessionID = view.ID

	view, err := p.waitRunning(ctx, view)
	if err != nil {
		return out, err
	}

	targets := make([]model.Point, 0, len(p.catalog.Hotspots))
	for _, h := range p.catalog.Hotspots {
		targets = append(targets, h.Center())
	}
	rng.Shuffle(len(targets), func(i, j int) { targets[i], targets[j] = targets[j], targets[i] })

	// Every tap either ends the session or spends budget, so this bound is never the reason to stop.
	limit := view.MaxTaps + len(targets) + 1
	for i := 0; i < limit && view.Status != model.StatusEnded; i++ {
		var pt model.Point
		switch {
		case p.canMiss && (len(targets) == 0 || rng.Float64() < p.ratio):
			pt = p.miss
		case len(targets) > 0:
			pt, targets = targets[0], targets[1:]
		}

		var res types.TapResponse
		if err := p.c.post(ctx, "/sessions/"+view.ID+"/taps", map[string]float64{"x": pt.X, "y": pt.Y}, &res); err != nil {
			return out, err
		}
		view = res.Session
		if !res.Accepted {
			break
		}
		out.Taps++
		if res.Hit {
			out.Hits++
		}
	}

	result, err := p.result(ctx, view.ID)
	if err != nil {
		return out, err
	}
	out.Result = result
	return out, nil
}

func (p *player) waitRunning(ctx context.Context, view types.SessionView) (types.SessionView, error) {
	for view.Status == model.StatusNotStarted {
		select {
		case <-ctx.Done():
			return view, ctx.Err()
		case <-time.After(p.poll):
		}
		if err := p.c.get(ctx, "/sessions/"+view.ID, &view); err != nil {
			return view, err
		}
	}
	return view, nil
}

func (p *player) result(ctx context.Context, id string) (types.ResultView, error) {
	var res types.ResultView
	var err error
	for range resultAttempts {
		if err = p.c.get(ctx, "/sessions/"+id+"/result", &res); err == nil {
			return res, nil
		}
		if !errors.Is(err, ErrStatus) {
			return res, err
		}
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		case <-time.After(p.poll):
		}
	}
	return res, err
}
