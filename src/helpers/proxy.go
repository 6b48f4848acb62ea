package helpers

import (
	"net/http"
	"net/url"
	"strings"
	"sync"

	"market-dashboard/src/logger"
)

// -----------------------------------------------------------------------------

// ProxyManager holds the outbound proxies of the feed connection and rotates
// through them on reconnect.
type ProxyManager struct {
	proxies []*url.URL
	index   int
	mu      sync.Mutex
	logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewProxyManager(proxies []string, log *logger.Logger) *ProxyManager {
	if log == nil {
		log = logger.NewNop()
	}

	// Validate and format proxies on init
	var valid []*url.URL
	for _, p := range proxies {
		if !ValidateProxy(p) {
			log.Warning("Ignoring invalid proxy %q", p)
			continue
		}
		u, err := url.Parse(FormatProxy(p))
		if err != nil {
			continue
		}
		valid = append(valid, u)
	}

	return &ProxyManager{proxies: valid, logger: log}
}

// -----------------------------------------------------------------------------

func (pm *ProxyManager) GetCurrentProxy() *url.URL {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if len(pm.proxies) == 0 {
		return nil
	}
	return pm.proxies[pm.index]
}

// -----------------------------------------------------------------------------

func (pm *ProxyManager) RotateProxy() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if len(pm.proxies) <= 1 {
		return
	}

	pm.index = (pm.index + 1) % len(pm.proxies)
	pm.logger.Info("Rotating proxy to: %s", pm.proxies[pm.index].Host)
}

// -----------------------------------------------------------------------------

// Proxy fits http.Transport.Proxy and websocket.Dialer.Proxy. Without
// configured proxies it falls back to the environment.
func (pm *ProxyManager) Proxy(req *http.Request) (*url.URL, error) {
	if p := pm.GetCurrentProxy(); p != nil {
		return p, nil
	}
	return http.ProxyFromEnvironment(req)
}

// -----------------------------------------------------------------------------

func (pm *ProxyManager) HasProxies() bool {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return len(pm.proxies) > 0
}

// -----------------------------------------------------------------------------

// ValidateProxy checks if a proxy string is roughly valid.
func ValidateProxy(proxyStr string) bool {
	if strings.TrimSpace(proxyStr) == "" {
		return false
	}
	u, err := url.Parse(FormatProxy(proxyStr))
	return err == nil && u.Host != "" && (u.Scheme == "http" || u.Scheme == "https" || u.Scheme == "socks5")
}

// -----------------------------------------------------------------------------

// FormatProxy ensures the proxy has a scheme.
func FormatProxy(proxyStr string) string {
	if !strings.Contains(proxyStr, "://") {
		return "http://" + proxyStr
	}
	return proxyStr
}
