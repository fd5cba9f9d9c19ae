package bwapi

import (
	"bwtoolkit/utils/requests"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

type Endpoint = string

const (
	ENDPOINT_BASE         Endpoint = "https://api.betweenworlds.net/v1"
	ENDPOINT_USERS        Endpoint = "/users"
	ENDPOINT_ITEMS        Endpoint = "/items"
	ENDPOINT_LEADERBOARDS Endpoint = "/leaderboards"
)

const REDACTED = "REDACTED"

// A blocking client for the Between Worlds API.
//
// The client holds only credentials and transport settings. Every call is a single
// GET round-trip: nothing is cached or retried.
type Client struct {
	baseURL string
	authID  string // In-game name of the account the key belongs to.
	apiKey  string // Obtained in the account settings.
	http    *http.Client
	log     *log.Logger
}

type Option func(*Client)

// Overrides the API root, e.g. for a test server.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = base }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// Sets the transport deadline. Reaching it surfaces as ErrRequestTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http = &http.Client{Timeout: d} }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.log = l }
}

func NewClient(authID, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: ENDPOINT_BASE,
		authID:  authID,
		apiKey:  apiKey,
		http:    requests.DefaultClient,
		log:     log.StandardLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) AuthID() string {
	return c.authID
}

// Gets a user by name. Pass flags to include biography, equipment and/or inventory.
func (c *Client) GetUser(username string, flags UserDataFlags) (*User, error) {
	user, err := get[User](c, ENDPOINT_USERS, username, flags.Query())
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// Gets every item in the game.
func (c *Client) GetItems() ([]Item, error) {
	return get[[]Item](c, ENDPOINT_ITEMS, "", "")
}

// Gets every item in the game keyed by name.
func (c *Client) GetItemsMap() (ItemCatalog, error) {
	items, err := c.GetItems()
	if err != nil {
		return nil, err
	}

	return lo.KeyBy(items, func(i Item) string {
		return i.Name
	}), nil
}

// Gets the global leaderboards for the sections selected by flags.
func (c *Client) GetLeaderboards(flags LeaderboardsFlags) (*Leaderboards, error) {
	lb, err := get[Leaderboards](c, ENDPOINT_LEADERBOARDS, "", flags.Query())
	if err != nil {
		return nil, err
	}

	return &lb, nil
}

// Gets the raw per-section rows for a single player, before reassembly.
func (c *Client) GetUserLeaderboards(username string, flags LeaderboardsFlags) (*Leaderboards, error) {
	lb, err := get[Leaderboards](c, ENDPOINT_LEADERBOARDS, username, flags.Query())
	if err != nil {
		return nil, err
	}

	return &lb, nil
}

// Gets a single player's rows across the sections selected by flags, reassembled into one record.
// See [Reassemble] for how sections are combined.
func (c *Client) GetLeaderboardUser(username string, flags LeaderboardsFlags) (*LeaderboardUser, error) {
	lb, err := c.GetUserLeaderboards(username, flags)
	if err != nil {
		return nil, err
	}

	return Reassemble(lb)
}

// Builds the full request URL. Flag tokens are bare keys ("&biography") so they are appended
// after the encoded key/value parameters.
func (c *Client) buildURL(endpoint Endpoint, apiKey, name, flagQuery string) string {
	params := url.Values{}
	params.Set("authId", c.authID)
	params.Set("apiKey", apiKey)
	if name != "" {
		params.Set("name", name)
	}

	query := params.Encode()
	if flagQuery != "" {
		query += QUERY_DELIMITER + flagQuery
	}

	return c.baseURL + endpoint + "?" + query
}

func get[T any](c *Client, endpoint Endpoint, name, flagQuery string) (T, error) {
	var data T

	reqURL := c.buildURL(endpoint, c.apiKey, name, flagQuery)
	safeURL := c.buildURL(endpoint, REDACTED, name, flagQuery)
	logger := c.log.WithField("url", safeURL)

	start := time.Now()
	body, err := requests.Get(c.http, reqURL)
	if err != nil {
		err = classify(err, safeURL)
		logger.WithError(err).Debug("GET failed")
		return data, err
	}

	if err := json.Unmarshal(body, &data); err != nil {
		logger.WithError(err).Debug("GET returned unexpected body")
		return data, &DeserializationError{URL: safeURL, Detail: err.Error(), Err: err}
	}

	logger.WithFields(log.Fields{
		"bytes":   len(body),
		"elapsed": time.Since(start).String(),
	}).Debug("GET ok")

	return data, nil
}

// Maps a transport or status failure to one of the package error kinds.
// URLs inside the chain are replaced with safeURL so the API key never reaches logs.
func classify(err error, safeURL string) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = safeURL
	}

	var statusErr *requests.StatusError
	if errors.As(err, &statusErr) {
		statusErr.URL = safeURL

		switch statusErr.StatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %w", ErrUnauthorized, err)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		default:
			return fmt.Errorf("%w: %w", ErrOther, err)
		}
	}

	if requests.IsTimeout(err) {
		return fmt.Errorf("%w: %w", ErrRequestTimeout, err)
	}

	return fmt.Errorf("%w: %w", ErrOther, err)
}
