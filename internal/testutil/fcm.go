package testutil

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// FCMCredentials is a service account key file whose token_uri points at a
// local OAuth2 token endpoint
type FCMCredentials struct {
	Path      string
	ProjectID string
	TokenURL  string

	minted atomic.Int32
	fail   atomic.Bool
}

// NewFCMCredentials writes a service account key for projectID. Each token
// request mints "ya29.minted-N" valid for expiresIn seconds.
func NewFCMCredentials(t *testing.T, projectID string, expiresIn int) *FCMCredentials {
	t.Helper()

	c := &FCMCredentials{ProjectID: projectID}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if c.fail.Load() {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		n := c.minted.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": fmt.Sprintf("ya29.minted-%d", n),
			"token_type":   "Bearer",
			"expires_in":   expiresIn,
		})
	}))
	t.Cleanup(server.Close)
	c.TokenURL = server.URL + "/token"

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	data, err := json.Marshal(map[string]string{
		"type":           "service_account",
		"project_id":     projectID,
		"private_key_id": "test-key-1",
		"private_key":    string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})),
		"client_email":   fmt.Sprintf("push@%s.iam.gserviceaccount.com", projectID),
		"client_id":      "100000000000000000001",
		"token_uri":      c.TokenURL,
	})
	require.NoError(t, err)

	c.Path = filepath.Join(t.TempDir(), "fcm-service-account.json")
	require.NoError(t, os.WriteFile(c.Path, data, 0o600))
	return c
}

// Minted returns how many access tokens were issued
func (c *FCMCredentials) Minted() int {
	return int(c.minted.Load())
}

// RejectTokens makes the token endpoint refuse further requests
func (c *FCMCredentials) RejectTokens() {
	c.fail.Store(true)
}
