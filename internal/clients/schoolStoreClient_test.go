package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newStoreStub() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("UserName") == "alice" {
			_ = json.NewEncoder(w).Encode([]map[string]string{{"id": "u1", "UserName": "alice"}})
			return
		}
		_ = json.NewEncoder(w).Encode([]map[string]string{})
	})
	mux.HandleFunc("/Student", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("UserId") == "u1" {
			_ = json.NewEncoder(w).Encode([]map[string]string{{"id": "s1", "UserId": "u1", "email": "alice@school.edu"}})
			return
		}
		_ = json.NewEncoder(w).Encode([]map[string]string{})
	})
	mux.HandleFunc("/reset-password", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return httptest.NewServer(mux)
}

func TestFindUserByUsername(t *testing.T) {
	srv := newStoreStub()
	defer srv.Close()

	client := NewSchoolStoreClient(srv.URL, 5*time.Second)

	account, err := client.FindUserByUsername(context.Background(), "alice")
	assert.NoError(t, err)
	assert.Equal(t, "u1", account.ID)

	_, err = client.FindUserByUsername(context.Background(), "mallory")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindStudentByUserID(t *testing.T) {
	srv := newStoreStub()
	defer srv.Close()

	client := NewSchoolStoreClient(srv.URL, 5*time.Second)

	student, err := client.FindStudentByUserID(context.Background(), "u1")
	assert.NoError(t, err)
	assert.Equal(t, "alice@school.edu", student.Email)

	_, err = client.FindStudentByUserID(context.Background(), "u2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResetPassword(t *testing.T) {
	srv := newStoreStub()
	defer srv.Close()

	client := NewSchoolStoreClient(srv.URL, 5*time.Second)
	assert.NoError(t, client.ResetPassword(context.Background(), "alice", "hashed-password"))
}

func TestTransportErrorIsNotNotFound(t *testing.T) {
	srv := newStoreStub()
	srv.Close() // server gone: transport error, not an absent record

	client := NewSchoolStoreClient(srv.URL, time.Second)

	_, err := client.FindUserByUsername(context.Background(), "alice")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
