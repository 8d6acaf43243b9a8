package submit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/spotcheck/internal/domain/model"
)

const (
	// DefaultUserAgent is reported when no WithUserAgent is given. The
	// server binary passes its stamped version instead.
	DefaultUserAgent = "spotcheck"

	defaultHTTPTimeout = 10 * time.Second
	maxDrainBytes      = 64 << 10
)

// Sink receives finished results. Implementations must be safe for
// concurrent use.
type Sink interface {
	Name() string
	Send(ctx context.Context, rec model.ResultRecord) error
}

// SinkOption configures an HTTP sink.
type SinkOption func(*httpSink)

// WithUserAgent sets the userAgent value reported with each result.
func WithUserAgent(ua string) SinkOption {
	return func(s *httpSink) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithSinkName overrides the sink name used in logs, metrics and dedupe keys.
func WithSinkName(name string) SinkOption {
	return func(s *httpSink) {
		if name != "" {
			s.name = name
		}
	}
}

type httpSink struct {
	name      string
	endpoint  string
	client    *http.Client
	userAgent string
}

func newHTTPSink(name, endpoint string, client *http.Client, opts []SinkOption) httpSink {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	s := httpSink{
		name:      name,
		endpoint:  endpoint,
		client:    client,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s *httpSink) Name() string { return s.name }

func (s *httpSink) do(req *http.Request) error {
	req.Header.Set("User-Agent", s.userAgent)
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	// body is ignored
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: %s returned %d", ErrSinkStatus, s.name, resp.StatusCode)
	}
	return nil
}

// ScoreEndpoint reports a result as query parameters of a GET request.
type ScoreEndpoint struct {
	httpSink
}

// NewScoreEndpoint creates a score endpoint sink named "score".
func NewScoreEndpoint(endpoint string, client *http.Client, opts ...SinkOption) *ScoreEndpoint {
	return &ScoreEndpoint{httpSink: newHTTPSink("score", endpoint, client, opts)}
}

// Send issues GET endpoint?name&email&issuesFound&timeRemaining&totalScore
// &completionTimeMs&timestamp&userAgent.
func (s *ScoreEndpoint) Send(ctx context.Context, rec model.ResultRecord) error {
	u, err := url.Parse(s.endpoint)
	if err != nil {
		return fmt.Errorf("parse score endpoint: %w", err)
	}
	q := u.Query()
	q.Set("name", rec.Name)
	q.Set("email", rec.Email)
	q.Set("issuesFound", strconv.Itoa(rec.IssuesFound))
	q.Set("timeRemaining", strconv.Itoa(rec.TimeRemainingSeconds))
	q.Set("totalScore", strconv.Itoa(rec.TotalScore))
	q.Set("completionTimeMs", strconv.FormatInt(rec.CompletionTimeMs, 10))
	q.Set("timestamp", rec.Timestamp)
	q.Set("userAgent", s.userAgent)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	return s.do(req)
}

// FormFields maps result fields to the form's input identifiers.
type FormFields struct {
	Name          string
	Email         string
	IssuesFound   string
	TimeRemaining string
	TotalScore    string
}

// DefaultFormFields are the identifiers of the stock feedback form.
func DefaultFormFields() FormFields {
	return FormFields{
		Name:          "entry.2005620554",
		Email:         "entry.1045781291",
		IssuesFound:   "entry.1065046570",
		TimeRemaining: "entry.1166974658",
		TotalScore:    "entry.839337160",
	}
}

// FormFieldsFromMap overrides the defaults with the non-empty values of m,
// keyed name, email, issuesFound, timeRemaining and totalScore. Keys are
// matched case-insensitively.
func FormFieldsFromMap(m map[string]string) FormFields {
	f := DefaultFormFields()
	for k, v := range m {
		if v == "" {
			continue
		}
		switch strings.ToLower(k) {
		case "name":
			f.Name = v
		case "email":
			f.Email = v
		case "issuesfound", "issues_found":
			f.IssuesFound = v
		case "timeremaining", "time_remaining":
			f.TimeRemaining = v
		case "totalscore", "total_score":
			f.TotalScore = v
		}
	}
	return f
}

// FormSink posts a result as an urlencoded form.
type FormSink struct {
	httpSink
	fields FormFields
}

// NewFormSink creates a form sink named "form".
func NewFormSink(endpoint string, fields FormFields, client *http.Client, opts ...SinkOption) *FormSink {
	return &FormSink{httpSink: newHTTPSink("form", endpoint, client, opts), fields: fields}
}

// Send posts the configured fields.
func (s *FormSink) Send(ctx context.Context, rec model.ResultRecord) error {
	form := url.Values{}
	form.Set(s.fields.Name, rec.Name)
	form.Set(s.fields.Email, rec.Email)
	form.Set(s.fields.IssuesFound, strconv.Itoa(rec.IssuesFound))
	form.Set(s.fields.TimeRemaining, strconv.Itoa(rec.TimeRemainingSeconds))
	form.Set(s.fields.TotalScore, strconv.Itoa(rec.TotalScore))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}
