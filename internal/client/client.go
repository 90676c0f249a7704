package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/examtrainer/backend/internal/session"
)

var (
	// ErrUnauthorized is returned on any 401/403: the stored token is no
	// longer good and the caller must discard it and log in again.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrLoginFailed is an authentication failure on /api/login.
	ErrLoginFailed = errors.New("login failed")
)

// Question matches the wire shape of GET /api/questions.
type Question struct {
	ID       string   `json:"_id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Correct  int      `json:"correct"`
}

// ImportResult matches the response of POST /api/import.
type ImportResult struct {
	Success    bool `json:"success"`
	Added      int  `json:"added"`
	Duplicates int  `json:"duplicates"`
	TotalInDB  int  `json:"total_in_db"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Error    string `json:"error"`
}

// API talks to the sync backend. Not safe for concurrent use beyond the
// fire-and-forget pushes the Pusher serializes.
type API struct {
	http  *resty.Client
	token string
}

func New(baseURL string) *API {
	return &API{http: resty.New().SetBaseURL(baseURL)}
}

// SetToken restores a token kept from an earlier login.
func (a *API) SetToken(token string) { a.token = token }

// Token returns the current bearer token, "" after a 401/403.
func (a *API) Token() string { return a.token }

// Login exchanges credentials for a bearer token and keeps it for the
// following calls.
func (a *API) Login(username, password string) error {
	var out loginResponse
	resp, err := a.http.R().
		SetBody(map[string]string{"username": username, "password": password}).
		SetResult(&out).
		SetError(&out).
		Post("/api/login")
	if err != nil {
		return err
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		if out.Error != "" {
			return fmt.Errorf("%w: %s", ErrLoginFailed, out.Error)
		}
		return ErrLoginFailed
	}
	if resp.IsError() {
		return fmt.Errorf("login: server returned %s", resp.Status())
	}
	a.token = out.Token
	return nil
}

// Questions fetches the whole question bank.
func (a *API) Questions() ([]Question, error) {
	var out []Question
	resp, err := a.authReq().SetResult(&out).Get("/api/questions")
	if err != nil {
		return nil, err
	}
	if err := a.checkStatus(resp); err != nil {
		return nil, err
	}
	return out, nil
}

// Progress fetches the saved progress; the server auto-creates an empty
// record on first access.
func (a *API) Progress() (session.Progress, error) {
	out := session.EmptyProgress()
	resp, err := a.authReq().SetResult(&out).Get("/api/progress")
	if err != nil {
		return out, err
	}
	if err := a.checkStatus(resp); err != nil {
		return out, err
	}
	if out.Answers == nil {
		out.Answers = map[string]int{}
	}
	if out.ShuffledOptions == nil {
		out.ShuffledOptions = map[string][]session.OptionView{}
	}
	return out, nil
}

// SaveProgress replaces the saved progress with p.
func (a *API) SaveProgress(p session.Progress) error {
	resp, err := a.authReq().SetBody(p).Post("/api/progress")
	if err != nil {
		return err
	}
	return a.checkStatus(resp)
}

// DeleteProgress wipes the saved progress (session reset).
func (a *API) DeleteProgress() error {
	resp, err := a.authReq().Delete("/api/progress")
	if err != nil {
		return err
	}
	return a.checkStatus(resp)
}

// Import uploads a question array; duplicates are counted and skipped
// server-side.
func (a *API) Import(questions []Question) (ImportResult, error) {
	var out ImportResult
	resp, err := a.authReq().SetBody(questions).SetResult(&out).Post("/api/import")
	if err != nil {
		return out, err
	}
	if err := a.checkStatus(resp); err != nil {
		return out, err
	}
	return out, nil
}

// CreateQuestion adds a single question and returns its assigned ID.
func (a *API) CreateQuestion(q Question) (string, error) {
	var out struct {
		Success bool   `json:"success"`
		ID      string `json:"id"`
	}
	resp, err := a.authReq().SetBody(q).SetResult(&out).Post("/api/questions")
	if err != nil {
		return "", err
	}
	if err := a.checkStatus(resp); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (a *API) authReq() *resty.Request {
	return a.http.R().SetAuthToken(a.token)
}

// checkStatus maps 401/403 to ErrUnauthorized and clears the stored token,
// forcing the caller back through Login.
func (a *API) checkStatus(resp *resty.Response) error {
	switch resp.StatusCode() {
	case http.StatusUnauthorized, http.StatusForbidden:
		a.token = ""
		return ErrUnauthorized
	}
	if resp.IsError() {
		return fmt.Errorf("server returned %s", resp.Status())
	}
	return nil
}
