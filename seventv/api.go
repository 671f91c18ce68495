package seventv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/julez-dev/stvsync/httputil"
)

const (
	DefaultBaseURL = "https://api.7tv.app/v2"
	appURL         = "https://7tv.app/emotes/"

	maxRateLimitWait = 30 * time.Second
)

type API struct {
	client  *http.Client
	baseURL string
}

type APIOption func(*API)

func WithBaseURL(base string) APIOption {
	return func(a *API) {
		a.baseURL = strings.TrimSuffix(base, "/")
	}
}

func NewAPI(client *http.Client, opts ...APIOption) *API {
	if client == nil {
		client = http.DefaultClient
	}

	api := &API{
		client:  client,
		baseURL: DefaultBaseURL,
	}

	for _, opt := range opts {
		opt(api)
	}

	return api
}

// https://api.7tv.app/v2/emotes/global
func (a *API) GetGlobalEmotes(ctx context.Context) ([]Emote, error) {
	return doRequest[[]Emote](ctx, a, "/emotes/global")
}

// https://api.7tv.app/v2/users/22484632/emotes
func (a *API) GetChannelEmotes(ctx context.Context, channelID string) ([]Emote, error) {
	emotes, err := doRequest[[]Emote](ctx, a, "/users/"+url.PathEscape(channelID)+"/emotes")
	if err != nil {
		var apiErr APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %w", ErrUnknownChannel, err)
		}

		return nil, err
	}

	return emotes, nil
}

// EmoteAppURL returns the 7TV website page of the emote.
func (a *API) EmoteAppURL(e Emote) string {
	return appURL + e.ID
}

func doRequest[T any](ctx context.Context, api *API, path string) (T, error) {
	var data T

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, api.baseURL+path, nil)
	if err != nil {
		return data, err
	}

	req.Header.Set("Accept", "application/json")

	resp, err := httputil.RetryOn429(ctx, maxRateLimitWait, func() (*http.Response, error) {
		return api.client.Do(req.Clone(ctx))
	})
	if err != nil {
		return data, err
	}

	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return data, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errResp := APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}

		// error bodies are best effort, the status alone is enough to act on
		_ = json.Unmarshal(respBody, &errResp)

		return data, errResp
	}

	if err := json.Unmarshal(respBody, &data); err != nil {
		return data, fmt.Errorf("could not decode 7TV response for %s: %w", path, err)
	}

	return data, nil
}
