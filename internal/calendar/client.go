package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// TokenSet is what the provider hands back after an OAuth code exchange. It
// is stored per advisor so events land on the advisor's own calendar.
type TokenSet struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	Expiry       time.Time `json:"expiry"`
}

type Event struct {
	ID          string
	MeetingLink string
}

// Provider is the slice of the external calendar API the booking flow needs.
type Provider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*TokenSet, error)
	CreateEvent(ctx context.Context, tokens *TokenSet, summary string, start, end time.Time, attendees []string) (*Event, *TokenSet, error)
	DeleteEvent(ctx context.Context, tokens *TokenSet, eventID string) (*TokenSet, error)
}

type Client struct {
	BaseURL      string
	AuthBaseURL  string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	HttpClient   *http.Client
}

func NewClient(baseURL, authBaseURL, clientID, clientSecret, redirectURL string) *Client {
	return &Client{
		BaseURL:      baseURL,
		AuthBaseURL:  authBaseURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		HttpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) AuthURL(state string) string {
	q := url.Values{}
	q.Set("client_id", c.ClientID)
	q.Set("redirect_uri", c.RedirectURL)
	q.Set("response_type", "code")
	q.Set("scope", "calendar.events")
	q.Set("access_type", "offline")
	q.Set("state", state)
	return c.AuthBaseURL + "/auth?" + q.Encode()
}

func (c *Client) Exchange(ctx context.Context, code string) (*TokenSet, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", c.ClientID)
	form.Set("client_secret", c.ClientSecret)
	form.Set("redirect_uri", c.RedirectURL)

	req, _ := http.NewRequestWithContext(ctx, "POST", c.AuthBaseURL+"/token", bytes.NewBufferString(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("code exchange failed: %s", string(body))
	}

	var res struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, err
	}
	return &TokenSet{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		Expiry:       time.Now().Add(time.Duration(res.ExpiresIn) * time.Second),
	}, nil
}

// ensureFresh refreshes the access token when it is inside a minute of
// expiring. The returned set is the one callers should persist.
func (c *Client) ensureFresh(ctx context.Context, tokens *TokenSet) (*TokenSet, error) {
	if time.Now().Add(time.Minute).Before(tokens.Expiry) && tokens.AccessToken != "" {
		return tokens, nil
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", tokens.RefreshToken)
	form.Set("client_id", c.ClientID)
	form.Set("client_secret", c.ClientSecret)

	req, _ := http.NewRequestWithContext(ctx, "POST", c.AuthBaseURL+"/token", bytes.NewBufferString(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("token refresh failed: %s", string(body))
	}

	var res struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, err
	}
	return &TokenSet{
		AccessToken:  res.AccessToken,
		RefreshToken: tokens.RefreshToken,
		Expiry:       time.Now().Add(time.Duration(res.ExpiresIn) * time.Second),
	}, nil
}

func (c *Client) CreateEvent(ctx context.Context, tokens *TokenSet, summary string, start, end time.Time, attendees []string) (*Event, *TokenSet, error) {
	fresh, err := c.ensureFresh(ctx, tokens)
	if err != nil {
		return nil, nil, err
	}

	type attendee struct {
		Email string `json:"email"`
	}
	payload := struct {
		Summary   string     `json:"summary"`
		Start     string     `json:"start"`
		End       string     `json:"end"`
		Attendees []attendee `json:"attendees"`
		Conference bool      `json:"conference"`
	}{
		Summary:    summary,
		Start:      start.Format(time.RFC3339),
		End:        end.Format(time.RFC3339),
		Conference: true,
	}
	for _, a := range attendees {
		payload.Attendees = append(payload.Attendees, attendee{Email: a})
	}

	body, _ := json.Marshal(payload)
	req, _ := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/v1/events", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+fresh.AccessToken)

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 && resp.StatusCode != 201 {
		b, _ := io.ReadAll(resp.Body)
		return nil, nil, fmt.Errorf("create event failed: %s", string(b))
	}

	var res struct {
		ID          string `json:"id"`
		MeetingLink string `json:"meeting_link"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, nil, err
	}
	return &Event{ID: res.ID, MeetingLink: res.MeetingLink}, fresh, nil
}

func (c *Client) DeleteEvent(ctx context.Context, tokens *TokenSet, eventID string) (*TokenSet, error) {
	fresh, err := c.ensureFresh(ctx, tokens)
	if err != nil {
		return nil, err
	}

	req, _ := http.NewRequestWithContext(ctx, "DELETE", c.BaseURL+"/v1/events/"+eventID, nil)
	req.Header.Set("Authorization", "Bearer "+fresh.AccessToken)

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// 404 means the advisor removed it by hand; treat as done.
	if resp.StatusCode != 200 && resp.StatusCode != 204 && resp.StatusCode != 404 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("delete event failed: %s", string(b))
	}
	return fresh, nil
}
