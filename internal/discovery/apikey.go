// Package discovery reads an *arr application's own config.xml to find the
// API key, so the caller does not have to copy it out by hand.
package discovery

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/poiley/arr-quality/internal/adapters"
	"github.com/poiley/arr-quality/internal/adapters/execclient"
)

// AutoAPIKey is the API key argument that asks for discovery.
const AutoAPIKey = "auto"

// DefaultPollInterval is how often WaitForAPIKey re-reads config.xml.
const DefaultPollInterval = 2 * time.Second

// ArrConfig represents the parsed config.xml structure for *arr applications.
// All *arr apps use a similar config.xml format.
type ArrConfig struct {
	XMLName xml.Name `xml:"Config"`
	ApiKey  string   `xml:"ApiKey"`
	Port    int      `xml:"Port"`
	UrlBase string   `xml:"UrlBase"`
}

// ParseConfigXML parses an *arr config.xml file and extracts configuration.
// Anything before the <Config> element (shell noise from exec) is skipped.
func ParseConfigXML(r io.Reader) (*ArrConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config.xml: %w", err)
	}
	if i := bytes.Index(data, []byte("<Config>")); i > 0 {
		data = data[i:]
	}

	var config ArrConfig
	if err := xml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config.xml: %w", err)
	}
	return &config, nil
}

// DefaultConfigPaths returns where *arr images keep config.xml. The
// linuxserver images use /config; some older tags nest it per app.
func DefaultConfigPaths() []string {
	return []string{
		"/config/config.xml",
		"/config/radarr/config.xml",
		"/config/sonarr/config.xml",
	}
}

// DiscoverAPIKey reads each candidate config.xml inside the container and
// returns the first non-empty ApiKey. With no paths, DefaultConfigPaths is
// used. Failure is reported as an *adapters.TransportError naming the last
// path tried.
func DiscoverAPIKey(ctx context.Context, exec execclient.Executor, paths ...string) (string, error) {
	log := logf.FromContext(ctx)

	if len(paths) == 0 {
		paths = DefaultConfigPaths()
	}

	var lastErr error
	var lastPath string
	for _, path := range paths {
		key, err := readAPIKey(ctx, exec, path)
		if err == nil {
			log.V(1).Info("Discovered API key", "path", path)
			return key, nil
		}
		log.V(1).Info("No API key at path", "path", path, "reason", err.Error())
		lastErr, lastPath = err, path
	}

	return "", adapters.NewTransportError("cat", lastPath, fmt.Errorf("API key discovery failed: %w", lastErr))
}

// WaitForAPIKey retries DiscoverAPIKey until it succeeds or timeout elapses.
// A freshly started container writes config.xml only after first boot.
func WaitForAPIKey(ctx context.Context, exec execclient.Executor, interval, timeout time.Duration, paths ...string) (string, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	var key string
	var lastErr error
	err := wait.PollUntilContextTimeout(ctx, interval, timeout, true, func(ctx context.Context) (bool, error) {
		k, err := DiscoverAPIKey(ctx, exec, paths...)
		if err != nil {
			lastErr = err
			return false, nil // keep waiting
		}
		key = k
		return true, nil
	})
	if err != nil {
		if lastErr != nil {
			return "", lastErr
		}
		return "", err
	}
	return key, nil
}

func readAPIKey(ctx context.Context, exec execclient.Executor, path string) (string, error) {
	stdout, _, err := exec.Exec(ctx, []string{"cat", path}, nil)
	if err != nil {
		return "", err
	}

	config, err := ParseConfigXML(bytes.NewReader(stdout))
	if err != nil {
		return "", err
	}
	if config.ApiKey == "" {
		return "", errors.New("ApiKey is empty in config.xml")
	}
	return config.ApiKey, nil
}
