package server

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeKeyPair creates a self signed certificate for cn
func writeKeyPair(t *testing.T, dir, cn string) (certFile, keyFile string) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: cn},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		DNSNames:     []string{cn},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	keyDer, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(certFile,
		pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(keyFile,
		pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDer}), 0o600))
	return certFile, keyFile
}

func commonName(t *testing.T, cfg *tls.Config) string {
	t.Helper()
	cert, err := cfg.GetCertificate(&tls.ClientHelloInfo{})
	require.NoError(t, err)
	require.NotNil(t, cert)
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	require.NoError(t, err)
	return leaf.Subject.CommonName
}

func TestNewTLSConfig(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeKeyPair(t, dir, "first.local")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := newTLSConfig(ctx, certFile, keyFile, "")
	require.NoError(t, err)
	assert.Equal(t, uint16(tls.VersionTLS13), cfg.MinVersion)
	assert.Nil(t, cfg.ClientCAs)
	assert.Equal(t, "first.local", commonName(t, cfg))
}

func TestNewTLSConfig_Reload(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeKeyPair(t, dir, "first.local")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := newTLSConfig(ctx, certFile, keyFile, "")
	require.NoError(t, err)
	writeKeyPair(t, dir, "second.local")

	assert.Eventually(t, func() bool {
		cert, err := cfg.GetCertificate(&tls.ClientHelloInfo{})
		if err != nil || cert == nil {
			return false
		}
		leaf, err := x509.ParseCertificate(cert.Certificate[0])
		return err == nil && leaf.Subject.CommonName == "second.local"
	}, 2*time.Second, 20*time.Millisecond)
}

func TestNewTLSConfig_WithCA(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeKeyPair(t, dir, "ca.local")

	cfg, err := newTLSConfig(context.Background(), certFile, keyFile, certFile)
	require.NoError(t, err)
	assert.NotNil(t, cfg.ClientCAs)
	assert.Equal(t, tls.VerifyClientCertIfGiven, cfg.ClientAuth)

	_, err = newTLSConfig(context.Background(), certFile, keyFile, keyFile)
	assert.ErrorIs(t, err, errNoCACerts)
}

func TestNewTLSConfig_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := newTLSConfig(context.Background(),
		filepath.Join(dir, "cert.pem"), filepath.Join(dir, "key.pem"), "")
	assert.Error(t, err)
}
