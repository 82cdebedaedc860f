package mux

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"rankguesser-server/internal/jwt"
	"rankguesser-server/pkg/room"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "mux-test")
	if err != nil {
		panic(err)
	}

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(err)
	}

	privatePath := filepath.Join(dir, "private.key")
	privatePEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	if err := os.WriteFile(privatePath, privatePEM, 0600); err != nil {
		panic(err)
	}

	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		panic(err)
	}

	publicPath := filepath.Join(dir, "public.pem")
	publicPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: publicDER,
	})
	if err := os.WriteFile(publicPath, publicPEM, 0600); err != nil {
		panic(err)
	}

	configPath := filepath.Join(dir, "config.yaml")
	configYAML := fmt.Sprintf("jwt:\n  publicKey: %s\n  privateKey: %s\n", publicPath, privatePath)
	if err := os.WriteFile(configPath, []byte(configYAML), 0600); err != nil {
		panic(err)
	}

	_ = os.Setenv("RG_CONFIG_FILE", configPath)
	jwt.LoadKeys()

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func testOptions() room.Options {
	return room.Options{
		StartGameDelay: time.Millisecond * 50,
		GuessTimeout:   time.Second * 5,
		IdleTimeout:    time.Second * 5,
		CodeLength:     4,
	}
}

func testServer(t *testing.T) (*httptest.Server, *Mux) {
	t.Helper()

	m := NewMux("v-test", room.NewRegistry(testOptions()))
	ts := httptest.NewServer(m)
	t.Cleanup(ts.Close)

	return ts, m
}

func signedJWTForTest(t *testing.T, name string) string {
	t.Helper()

	signed, err := jwt.Sign(name)
	if err != nil {
		t.Fatal(err)
	}

	return signed
}

func assertDo(t *testing.T, req *http.Request, respObj interface{}, statusCode int, signedJWT ...string) *http.Response {
	t.Helper()

	if len(signedJWT) > 0 {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", signedJWT[0]))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Error(err)
		return nil
	}
	defer resp.Body.Close()

	if statusCode != resp.StatusCode {
		b, _ := io.ReadAll(resp.Body)
		t.Log(string(b))
		assert.Equal(t, statusCode, resp.StatusCode)
		return nil
	}

	if respObj != nil {
		if err := json.NewDecoder(resp.Body).Decode(respObj); err != nil {
			t.Error(err)
			return nil
		}
	}

	return resp
}

func assertGet(t *testing.T, ts *httptest.Server, path string, respObj interface{}, statusCode int, signedJWT ...string) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	if err != nil {
		t.Error(err)
		return
	}

	assertDo(t, req, respObj, statusCode, signedJWT...)
}

func assertSend(t *testing.T, ts *httptest.Server, method, path string, payload interface{}, respObj interface{}, statusCode int, signedJWT ...string) {
	t.Helper()

	var body io.Reader
	switch val := payload.(type) {
	case string:
		body = strings.NewReader(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			t.Error(err)
			return
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Error(err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	assertDo(t, req, respObj, statusCode, signedJWT...)
}

func assertPost(t *testing.T, ts *httptest.Server, path string, payload interface{}, respObj interface{}, statusCode int, signedJWT ...string) {
	t.Helper()
	assertSend(t, ts, http.MethodPost, path, payload, respObj, statusCode, signedJWT...)
}

func assertPut(t *testing.T, ts *httptest.Server, path string, payload interface{}, respObj interface{}, statusCode int, signedJWT ...string) {
	t.Helper()
	assertSend(t, ts, http.MethodPut, path, payload, respObj, statusCode, signedJWT...)
}
