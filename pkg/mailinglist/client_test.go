package mailinglist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func TestMemberID(t *testing.T) {
	// md5 is taken over the lower-cased address
	assert.Equal(t, MemberID("user@example.com"), MemberID("User@Example.COM"))
	assert.Equal(t, "b58996c504c5638798eb6b511e6f49af", MemberID("user@example.com"))
}

func TestNewClientParsesRegion(t *testing.T) {
	client, err := NewClient("secret-us6", "list-1", testLogger())
	require.NoError(t, err)
	assert.Equal(t, "https://us6.api.mailchimp.com/3.0", client.baseURL)

	_, err = NewClient("noregion", "list-1", testLogger())
	assert.Error(t, err)

	_, err = NewClient("trailing-", "list-1", testLogger())
	assert.Error(t, err)
}

func TestSubscribe(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path

		username, password, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "anystring", username)
		assert.Equal(t, "secret-us6", password)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"subscribed"}`))
	}))
	defer server.Close()

	client, err := NewClient("secret-us6", "list-1", testLogger())
	require.NoError(t, err)
	client.baseURL = server.URL

	err = client.Subscribe(context.Background(), "user@example.com", "Jo", "Byrne")

	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/lists/list-1/members/"+MemberID("user@example.com"), gotPath)
	assert.Equal(t, "subscribed", gotBody["status_if_new"])
	merge, ok := gotBody["merge_fields"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Jo", merge["FNAME"])
	assert.Equal(t, "Byrne", merge["LNAME"])
}

func TestUnsubscribe(t *testing.T) {
	var gotMethod string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient("secret-us6", "list-1", testLogger())
	require.NoError(t, err)
	client.baseURL = server.URL

	err = client.Unsubscribe(context.Background(), "user@example.com")

	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "unsubscribed", gotBody["status"])
}

func TestSubscribeAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"title":"Invalid Resource"}`))
	}))
	defer server.Close()

	client, err := NewClient("secret-us6", "list-1", testLogger())
	require.NoError(t, err)
	client.baseURL = server.URL

	err = client.Subscribe(context.Background(), "bad", "", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "Invalid Resource")
}
