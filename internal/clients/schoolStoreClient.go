package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"otprelay/internal/models"
	"otprelay/internal/utils"
)

// ErrNotFound means the store answered but had no matching record. It is
// distinct from a transport failure, which callers must report differently.
var ErrNotFound = errors.New("record not found")

// SchoolStoreClient talks to the school administration data store, which
// owns accounts (identity) and passwords (credentials).
type SchoolStoreClient interface {
	FindUserByUsername(ctx context.Context, username string) (*models.Account, error)
	FindStudentByUserID(ctx context.Context, userID string) (*models.Student, error)
	ResetPassword(ctx context.Context, username, newPassword string) error
}

type schoolStoreClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewSchoolStoreClient(baseURL string, timeout time.Duration) SchoolStoreClient {
	return &schoolStoreClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *schoolStoreClient) FindUserByUsername(ctx context.Context, username string) (*models.Account, error) {
	var accounts []models.Account
	endpoint := fmt.Sprintf("%s/users?UserName=%s", c.baseURL, url.QueryEscape(username))
	if err := c.getJSON(ctx, "findUserByUsername", endpoint, &accounts); err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, ErrNotFound
	}
	// Usernames are unique in the store; take the first record.
	return &accounts[0], nil
}

func (c *schoolStoreClient) FindStudentByUserID(ctx context.Context, userID string) (*models.Student, error) {
	var students []models.Student
	endpoint := fmt.Sprintf("%s/Student?UserId=%s", c.baseURL, url.QueryEscape(userID))
	if err := c.getJSON(ctx, "findStudentByUserID", endpoint, &students); err != nil {
		return nil, err
	}
	if len(students) == 0 || students[0].Email == "" {
		return nil, ErrNotFound
	}
	return &students[0], nil
}

func (c *schoolStoreClient) ResetPassword(ctx context.Context, username, newPassword string) error {
	operation := "resetPassword"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.StoreRequestDurationSeconds.WithLabelValues(operation, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	payload, err := json.Marshal(map[string]string{
		"username":    username,
		"newPassword": newPassword,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/reset-password", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		status = "error"
		log.Error().Err(err).Str("username", username).Msg("Password reset request to school store failed")
		return fmt.Errorf("school store unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		status = "error"
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		status = "error"
		return fmt.Errorf("school store returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *schoolStoreClient) getJSON(ctx context.Context, operation, endpoint string, out interface{}) error {
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.StoreRequestDurationSeconds.WithLabelValues(operation, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		status = "error"
		log.Error().Err(err).Str("operation", operation).Msg("School store request failed")
		return fmt.Errorf("school store unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		status = "error"
		return fmt.Errorf("school store returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		status = "error"
		return fmt.Errorf("failed to decode school store response: %w", err)
	}
	return nil
}
