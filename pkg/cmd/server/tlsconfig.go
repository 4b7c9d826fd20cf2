package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/mpapenbr/f1-dashboard-service/log"
)

var errNoCACerts = errors.New("no certificates found in CA file")

type certs struct {
	ctx      context.Context
	certFile string
	keyFile  string
	log      *log.Logger
	cert     *tls.Certificate
	mu       sync.RWMutex
}

// newTLSConfig returns a server config whose certificate is reloaded whenever
// cert or key file change. A failed reload keeps the previous certificate.
//
//nolint:whitespace // can't make both editor and linter happy
func newTLSConfig(
	ctx context.Context, certFile, keyFile, caFile string,
) (*tls.Config, error) {
	c := &certs{
		ctx:      ctx,
		certFile: certFile,
		keyFile:  keyFile,
		log:      log.GetFromContext(ctx).Named("tls"),
	}
	if err := c.loadCert(); err != nil {
		return nil, err
	}
	ret := &tls.Config{
		GetCertificate: func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
			c.mu.RLock()
			defer c.mu.RUnlock()
			return c.cert, nil
		},
		MinVersion: tls.VersionTLS13,
	}
	if caFile != "" {
		c.log.Info("Loading ca cert", log.String("file", caFile))
		caCert, err := os.ReadFile(caFile)
		if err != nil {
			return nil, err
		}
		pool := x509.NewCertPool()
		if ok := pool.AppendCertsFromPEM(caCert); !ok {
			return nil, errNoCACerts
		}
		ret.ClientCAs = pool
		ret.ClientAuth = tls.VerifyClientCertIfGiven
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		c.log.Error("could not create fsnotify watcher", log.ErrorField(err))
		return ret, nil
	}
	for _, f := range []string{certFile, keyFile} {
		if err := watcher.Add(f); err != nil {
			c.log.Error("could not watch file",
				log.String("file", f), log.ErrorField(err))
		}
	}
	go c.watchAndReload(watcher)
	return ret, nil
}

func (c *certs) watchAndReload(watcher *fsnotify.Watcher) {
	defer watcher.Close()
	for {
		select {
		case <-c.ctx.Done():
			c.log.Debug("context done, stopping cert reload")
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Chmod) {

				continue
			}
			c.log.Info("cert file changed, reloading cert",
				log.String("file", event.Name))
			if err := c.loadCert(); err != nil {
				c.log.Error("could not reload TLS key pair, keeping previous",
					log.ErrorField(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			c.log.Error("watcher error", log.ErrorField(err))
		}
	}
}

func (c *certs) loadCert() error {
	c.log.Info("Loading cert",
		log.String("key", c.keyFile),
		log.String("cert", c.certFile))
	cert, err := tls.LoadX509KeyPair(c.certFile, c.keyFile)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cert = &cert
	return nil
}
