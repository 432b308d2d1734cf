package akismet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckComment(t *testing.T) {
	t.Run("Should return true for a spam verdict", func(t *testing.T) {
		var gotForm map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			gotForm = map[string]string{
				"blog":            r.PostFormValue("blog"),
				"user_ip":         r.PostFormValue("user_ip"),
				"comment_author":  r.PostFormValue("comment_author"),
				"comment_content": r.PostFormValue("comment_content"),
				"comment_type":    r.PostFormValue("comment_type"),
			}
			w.Write([]byte("true"))
		}))
		defer srv.Close()

		client := NewClient("key123", "https://example.com", WithBaseURL(srv.URL))
		isSpam, err := client.CheckComment(context.Background(), Comment{
			UserIP:  "203.0.113.7",
			Author:  "Jane",
			Content: "buy cheap watches",
			Type:    "contact-form",
		})
		require.NoError(t, err)
		assert.True(t, isSpam)
		assert.Equal(t, "https://example.com", gotForm["blog"])
		assert.Equal(t, "203.0.113.7", gotForm["user_ip"])
		assert.Equal(t, "buy cheap watches", gotForm["comment_content"])
		assert.Equal(t, "contact-form", gotForm["comment_type"])
	})

	t.Run("Should return false for a ham verdict", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("false"))
		}))
		defer srv.Close()

		client := NewClient("key123", "https://example.com", WithBaseURL(srv.URL))
		isSpam, err := client.CheckComment(context.Background(), Comment{Content: "hello"})
		require.NoError(t, err)
		assert.False(t, isSpam)
	})

	t.Run("Should error on an unexpected response body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("invalid"))
		}))
		defer srv.Close()

		client := NewClient("key123", "https://example.com", WithBaseURL(srv.URL))
		_, err := client.CheckComment(context.Background(), Comment{Content: "hello"})
		assert.Error(t, err)
	})

	t.Run("Should error on a non-200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := NewClient("key123", "https://example.com", WithBaseURL(srv.URL))
		_, err := client.CheckComment(context.Background(), Comment{Content: "hello"})
		assert.Error(t, err)
	})

	t.Run("Should fail fast without credentials", func(t *testing.T) {
		client := NewClient("", "")
		_, err := client.CheckComment(context.Background(), Comment{Content: "hello"})
		assert.ErrorIs(t, err, ErrNotConfigured)
	})
}

func TestVerifyKey(t *testing.T) {
	t.Run("Should accept a valid key", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "key123", r.PostFormValue("key"))
			w.Write([]byte("valid"))
		}))
		defer srv.Close()

		client := NewClient("key123", "https://example.com", WithBaseURL(srv.URL))
		assert.NoError(t, client.VerifyKey(context.Background()))
	})

	t.Run("Should reject an invalid key", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("invalid"))
		}))
		defer srv.Close()

		client := NewClient("key123", "https://example.com", WithBaseURL(srv.URL))
		assert.Error(t, client.VerifyKey(context.Background()))
	})
}
