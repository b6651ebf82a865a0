package commons

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/lehigh-university-libraries/bhl-commons/internal/restyutil"
)

const (
	DefaultAPIURL = "https://commons.wikimedia.org/w/api.php"

	resultSuccess = "Success"
	// anonymousToken is what MediaWiki hands out as a CSRF token to a
	// session that is not logged in.
	anonymousToken = "+\\"
)

// State of a Session in the login handshake
type State int

const (
	StateAnonymous State = iota
	StateLoginTokenFetched
	StateLoggedIn
	StateAuthorized
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateLoginTokenFetched:
		return "login_token_fetched"
	case StateLoggedIn:
		return "logged_in"
	case StateAuthorized:
		return "authorized"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Options configures a Session
type Options struct {
	APIURL    string
	UserAgent string
	Timeout   time.Duration
	Retries   int
}

// Session is an authenticated MediaWiki API session. Every call goes through
// one HTTP client and one cookie jar, so the cookies set by the login POST
// are carried to the CSRF token request and to every upload and edit.
// Calls are serialised.
type Session struct {
	apiURL string
	http   *resty.Client

	mu         sync.Mutex
	state      State
	loginToken string
	csrfToken  string
}

// NewSession creates an anonymous session
func NewSession(opts Options) (*Session, error) {
	if opts.APIURL == "" {
		opts.APIURL = DefaultAPIURL
	}

	client, err := restyutil.New(restyutil.Options{
		UserAgent:   opts.UserAgent,
		Timeout:     opts.Timeout,
		Retries:     opts.Retries,
		WithCookies: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}

	return &Session{apiURL: opts.APIURL, http: client}, nil
}

// APIURL is the endpoint this session talks to
func (s *Session) APIURL() string {
	return s.apiURL
}

// State reports how far the login handshake got
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

type tokensResponse struct {
	Query struct {
		Tokens struct {
			LoginToken string `json:"logintoken"`
			CSRFToken  string `json:"csrftoken"`
		} `json:"tokens"`
	} `json:"query"`
	Error *apiError `json:"error"`
}

type loginResponse struct {
	Login struct {
		Result     string `json:"result"`
		Reason     string `json:"reason"`
		LgUsername string `json:"lgusername"`
	} `json:"login"`
	Error *apiError `json:"error"`
}

type uploadResponse struct {
	Upload struct {
		Result   string         `json:"result"`
		Filename string         `json:"filename"`
		Warnings map[string]any `json:"warnings"`
	} `json:"upload"`
	Error *apiError `json:"error"`
}

type editResponse struct {
	Edit struct {
		Result string `json:"result"`
		Title  string `json:"title"`
	} `json:"edit"`
	Error *apiError `json:"error"`
}

// Login runs the login token, login and CSRF token steps. Any step that does
// not clearly succeed returns an *AuthError and leaves the session
// unauthorized.
func (s *Session) Login(ctx context.Context, username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateAnonymous
	s.loginToken = ""
	s.csrfToken = ""

	if username == "" || password == "" {
		return &AuthError{Step: "login", Reason: "username and password are required"}
	}

	tokens, err := s.fetchTokens(ctx, "login")
	if err != nil {
		return &AuthError{Step: "login_token", Reason: "request failed", Err: err}
	}
	if tokens.Error != nil {
		return &AuthError{Step: "login_token", Reason: tokens.Error.Code + ": " + tokens.Error.Info}
	}
	if tokens.Query.Tokens.LoginToken == "" {
		return &AuthError{Step: "login_token", Reason: "empty login token"}
	}
	s.loginToken = tokens.Query.Tokens.LoginToken
	s.state = StateLoginTokenFetched
	slog.Debug("Fetched login token")

	res, err := s.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"action":     "login",
			"lgname":     username,
			"lgpassword": password,
			"lgtoken":    s.loginToken,
			"format":     "json",
		}).
		Post(s.apiURL)
	if err != nil {
		return &AuthError{Step: "login", Reason: "request failed", Err: err}
	}
	if res.IsError() {
		return &AuthError{Step: "login", Reason: fmt.Sprintf("HTTP %d", res.StatusCode())}
	}
	var login loginResponse
	if err := json.Unmarshal(res.Body(), &login); err != nil {
		return &AuthError{Step: "login", Reason: "malformed response", Err: err}
	}
	if login.Error != nil {
		return &AuthError{Step: "login", Reason: login.Error.Code + ": " + login.Error.Info}
	}
	if login.Login.Result != resultSuccess {
		reason := login.Login.Reason
		if reason == "" {
			reason = "result " + login.Login.Result
		}
		return &AuthError{Step: "login", Reason: reason}
	}
	s.state = StateLoggedIn
	slog.Info("Logged in", "user", login.Login.LgUsername)

	tokens, err = s.fetchTokens(ctx, "")
	if err != nil {
		return &AuthError{Step: "csrf_token", Reason: "request failed", Err: err}
	}
	if tokens.Error != nil {
		return &AuthError{Step: "csrf_token", Reason: tokens.Error.Code + ": " + tokens.Error.Info}
	}
	csrf := tokens.Query.Tokens.CSRFToken
	if csrf == "" || csrf == anonymousToken {
		return &AuthError{Step: "csrf_token", Reason: "session is not authenticated"}
	}
	s.csrfToken = csrf
	s.state = StateAuthorized
	slog.Debug("Fetched CSRF token")

	return nil
}

func (s *Session) fetchTokens(ctx context.Context, tokenType string) (*tokensResponse, error) {
	req := s.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"action": "query",
			"meta":   "tokens",
			"format": "json",
		})
	if tokenType != "" {
		req.SetQueryParam("type", tokenType)
	}

	res, err := req.Get(s.apiURL)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("HTTP %d", res.StatusCode())
	}

	var tokens tokensResponse
	if err := json.Unmarshal(res.Body(), &tokens); err != nil {
		return nil, fmt.Errorf("malformed token response: %w", err)
	}
	return &tokens, nil
}

// Upload sends the file at localPath as targetName. Success is an
// upload.result of "Success"; anything else is an *UploadError.
func (s *Session) Upload(ctx context.Context, localPath, targetName string, ignoreWarnings bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAuthorized {
		return &UploadError{TargetName: targetName, Err: ErrNotAuthorized}
	}

	form := map[string]string{
		"action":   "upload",
		"filename": targetName,
		"token":    s.csrfToken,
		"format":   "json",
	}
	if ignoreWarnings {
		form["ignorewarnings"] = "1"
	}

	res, err := s.http.R().
		SetContext(ctx).
		SetFile("file", localPath).
		SetFormData(form).
		Post(s.apiURL)
	if err != nil {
		return &UploadError{TargetName: targetName, Err: err}
	}
	if res.IsError() {
		return &UploadError{TargetName: targetName, StatusCode: res.StatusCode()}
	}

	var body uploadResponse
	if err := json.Unmarshal(res.Body(), &body); err != nil {
		return &UploadError{TargetName: targetName, Err: fmt.Errorf("malformed response: %w", err)}
	}
	if body.Error != nil {
		return &UploadError{TargetName: targetName, Code: body.Error.Code, Info: body.Error.Info}
	}
	if body.Upload.Result != resultSuccess {
		return &UploadError{TargetName: targetName, Result: body.Upload.Result, Warnings: body.Upload.Warnings}
	}

	if len(body.Upload.Warnings) > 0 {
		slog.Warn("Upload succeeded with warnings", "target_name", targetName, "warnings", body.Upload.Warnings)
	}
	return nil
}

// Edit replaces the text of the page title. Success is an edit.result of
// "Success"; anything else is an *AnnotateError.
func (s *Session) Edit(ctx context.Context, title, text, summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAuthorized {
		return &AnnotateError{Title: title, Err: ErrNotAuthorized}
	}

	res, err := s.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"action":  "edit",
			"title":   title,
			"text":    text,
			"summary": summary,
			"token":   s.csrfToken,
			"format":  "json",
		}).
		Post(s.apiURL)
	if err != nil {
		return &AnnotateError{Title: title, Err: err}
	}
	if res.IsError() {
		return &AnnotateError{Title: title, StatusCode: res.StatusCode()}
	}

	var body editResponse
	if err := json.Unmarshal(res.Body(), &body); err != nil {
		return &AnnotateError{Title: title, Err: fmt.Errorf("malformed response: %w", err)}
	}
	if body.Error != nil {
		return &AnnotateError{Title: title, Code: body.Error.Code, Info: body.Error.Info}
	}
	if body.Edit.Result != resultSuccess {
		return &AnnotateError{Title: title, Result: body.Edit.Result}
	}
	return nil
}
