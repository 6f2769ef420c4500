package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"otprelay/internal/models"
	"otprelay/internal/services"
)

// In-memory stand-ins for the mongo repositories so the relay contract can
// be exercised end to end over HTTP.

type memChallengeRepo struct {
	mu         sync.Mutex
	challenges map[string]*models.Challenge
}

func (m *memChallengeRepo) Replace(_ context.Context, c *models.Challenge) (*models.Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.challenges == nil {
		m.challenges = make(map[string]*models.Challenge)
	}
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now()
	m.challenges[c.Email] = c
	return c, nil
}

func (m *memChallengeRepo) FindLiveByEmail(_ context.Context, email string) (*models.Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.challenges[email]
	if !ok || c.Consumed || time.Now().After(c.ExpiresAt) {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (m *memChallengeRepo) MarkConsumed(_ context.Context, id primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.challenges {
		if c.ID == id && !c.Consumed && time.Now().Before(c.ExpiresAt) {
			c.Consumed = true
			return true, nil
		}
	}
	return false, nil
}

func (m *memChallengeRepo) IncrementAttempts(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.challenges {
		if c.ID == id {
			c.Attempts++
		}
	}
	return nil
}

func (m *memChallengeRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for email, c := range m.challenges {
		if c.ID == id {
			delete(m.challenges, email)
		}
	}
	return nil
}

func (m *memChallengeRepo) DeleteExpired(_ context.Context) error { return nil }

type memTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*models.ResetToken
}

func (m *memTokenRepo) Create(_ context.Context, token *models.ResetToken) (*models.ResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tokens == nil {
		m.tokens = make(map[string]*models.ResetToken)
	}
	token.ID = primitive.NewObjectID()
	m.tokens[token.TokenID] = token
	return token, nil
}

func (m *memTokenRepo) Consume(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.tokens[tokenID]
	if !ok || token.Consumed || time.Now().After(token.ExpiresAt) {
		return false, nil
	}
	token.Consumed = true
	return true, nil
}

func (m *memTokenRepo) DeleteExpired(_ context.Context) error { return nil }

type nopEmailService struct{}

func (nopEmailService) SendEmail(_, _, _ string) error { return nil }

func newRelayTestServer() *httptest.Server {
	tokenService := services.NewTokenService(&memTokenRepo{}, []byte("test-secret"), 10*time.Minute)
	otpService := services.NewOTPService(&memChallengeRepo{}, tokenService, nopEmailService{}, 5*time.Minute, 5)

	oh := NewOTPHandler(otpService)
	r := mux.NewRouter()
	r.HandleFunc("/send-otp", oh.SendOTP).Methods("POST")
	r.HandleFunc("/verify-otp", oh.VerifyOTP).Methods("POST")

	return httptest.NewServer(r)
}

func postOTP(t *testing.T, url string, body models.OTPRequest) (int, models.OTPResponse) {
	t.Helper()
	payload, err := json.Marshal(body)
	assert.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	assert.NoError(t, err)
	defer resp.Body.Close()

	var out models.OTPResponse
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestRelayEndToEnd(t *testing.T) {
	srv := newRelayTestServer()
	defer srv.Close()

	status, out := postOTP(t, srv.URL+"/send-otp", models.OTPRequest{Email: "alice@school.edu", OTP: "482913"})
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, out.Success)

	status, out = postOTP(t, srv.URL+"/verify-otp", models.OTPRequest{Email: "alice@school.edu", OTP: "482913"})
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, out.Success)
	assert.NotEmpty(t, out.ResetToken)

	// the code is spent; a replay must fail
	status, out = postOTP(t, srv.URL+"/verify-otp", models.OTPRequest{Email: "alice@school.edu", OTP: "482913"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, out.Success)
	assert.Empty(t, out.ResetToken)
}

func TestRelayVerifyBeforeDispatch(t *testing.T) {
	srv := newRelayTestServer()
	defer srv.Close()

	status, out := postOTP(t, srv.URL+"/verify-otp", models.OTPRequest{Email: "alice@school.edu", OTP: "000000"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, out.Success)
}

func TestRelaySendOTPRejectsEmptyFields(t *testing.T) {
	srv := newRelayTestServer()
	defer srv.Close()

	status, out := postOTP(t, srv.URL+"/send-otp", models.OTPRequest{Email: "", OTP: ""})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, out.Success)
}

func TestRelayFailureResponseRevealsNothing(t *testing.T) {
	srv := newRelayTestServer()
	defer srv.Close()

	_, _ = postOTP(t, srv.URL+"/send-otp", models.OTPRequest{Email: "alice@school.edu", OTP: "482913"})

	// wrong code, spent code and absent challenge must be byte-identical
	_, wrongCode := postOTP(t, srv.URL+"/verify-otp", models.OTPRequest{Email: "alice@school.edu", OTP: "111111"})
	_, noChallenge := postOTP(t, srv.URL+"/verify-otp", models.OTPRequest{Email: "nobody@school.edu", OTP: "482913"})
	assert.Equal(t, wrongCode, noChallenge)
}
