package ghost

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ai-trip-planner/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "a1b2c3d4e5f60718"

func TestCreatePost(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/ghost/api/v3/admin/posts/", r.URL.Path)
			assert.Equal(t, "html", r.URL.Query().Get("source"))

			raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Ghost ")
			secret, _ := hex.DecodeString(testSecret)
			token, err := jwt.Parse(raw, func(tok *jwt.Token) (interface{}, error) {
				assert.Equal(t, "key-id", tok.Header["kid"])
				return secret, nil
			}, jwt.WithAudience("/v3/admin/"), jwt.WithValidMethods([]string{"HS256"}))
			require.NoError(t, err)
			assert.True(t, token.Valid)

			var body struct {
				Posts []struct {
					Title  string              `json:"title"`
					Status string              `json:"status"`
					Tags   []map[string]string `json:"tags"`
				} `json:"posts"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Len(t, body.Posts, 1)
			assert.Equal(t, "Monsoon in Kerala", body.Posts[0].Title)
			assert.Equal(t, "published", body.Posts[0].Status)
			assert.Equal(t, "Kerala", body.Posts[0].Tags[0]["name"])

			w.WriteHeader(http.StatusCreated)
			fmt.Fprintln(w, `{"posts": [{"id": "p1", "title": "Monsoon in Kerala", "url": "http://ghost.test/monsoon", "status": "published"}]}`)
		}))
		defer server.Close()

		client := NewClient(&config.Config{GhostURL: server.URL, GhostAdminKey: "key-id:" + testSecret})
		post, err := client.CreatePost(context.Background(), "Monsoon in Kerala", "<p>Rain</p>", []string{"Kerala"}, true)
		require.NoError(t, err)
		assert.Equal(t, "p1", post.ID)
		assert.Equal(t, "http://ghost.test/monsoon", post.URL)
	})

	t.Run("ServerError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClient(&config.Config{GhostURL: server.URL, GhostAdminKey: "key-id:" + testSecret})
		_, err := client.CreatePost(context.Background(), "t", "h", nil, false)
		assert.Error(t, err)
	})

	t.Run("InvalidKey", func(t *testing.T) {
		client := NewClient(&config.Config{GhostURL: "http://unused", GhostAdminKey: "no-colon"})
		_, err := client.CreatePost(context.Background(), "t", "h", nil, false)
		assert.ErrorContains(t, err, "expected id:secret")

		client = NewClient(&config.Config{GhostURL: "http://unused", GhostAdminKey: "id:not-hex"})
		_, err = client.CreatePost(context.Background(), "t", "h", nil, false)
		assert.ErrorContains(t, err, "decode secret hex")
	})
}
