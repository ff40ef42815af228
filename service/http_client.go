package service

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/haeksim/noonsongi/common/config"
	"golang.org/x/net/proxy"
)

var (
	proxyClientLock sync.Mutex
	proxyClients    = make(map[string]*http.Client)
)

// defaultTimeout bounds a single submit or status request. The poll loop itself is
// bounded only by its context.
func defaultTimeout() time.Duration {
	if config.RelayTimeout > 0 {
		return time.Duration(config.RelayTimeout) * time.Second
	}
	return 2 * time.Minute
}

func newTransport() *http.Transport {
	return &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		ForceAttemptHTTP2:   true,
		Proxy:               http.ProxyFromEnvironment,
	}
}

// GetRelayHttpClient returns the client used for the generation service, honouring RELAY_PROXY.
func GetRelayHttpClient() (*http.Client, error) {
	return NewProxyHttpClient(config.RelayProxy)
}

// NewProxyHttpClient builds a client routed through proxyURL. An empty proxyURL yields a
// direct client. Clients are cached per proxy.
func NewProxyHttpClient(proxyURL string) (*http.Client, error) {
	proxyClientLock.Lock()
	defer proxyClientLock.Unlock()
	if client, ok := proxyClients[proxyURL]; ok {
		return client, nil
	}

	transport := newTransport()
	if proxyURL != "" {
		parsedURL, err := url.Parse(proxyURL)
		if err != nil {
			return nil, err
		}
		switch parsedURL.Scheme {
		case "http", "https":
			transport.Proxy = http.ProxyURL(parsedURL)
		case "socks5", "socks5h":
			var auth *proxy.Auth
			if parsedURL.User != nil {
				auth = &proxy.Auth{User: parsedURL.User.Username()}
				if password, ok := parsedURL.User.Password(); ok {
					auth.Password = password
				}
			}
			// DNS resolution happens on the proxy side for both schemes
			dialer, err := proxy.SOCKS5("tcp", parsedURL.Host, auth, proxy.Direct)
			if err != nil {
				return nil, err
			}
			transport.Proxy = nil
			transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
				if cd, ok := dialer.(proxy.ContextDialer); ok {
					return cd.DialContext(ctx, network, addr)
				}
				return dialer.Dial(network, addr)
			}
		default:
			return nil, fmt.Errorf("unsupported proxy scheme: %s, must be http, https, socks5 or socks5h", parsedURL.Scheme)
		}
	}

	client := &http.Client{Transport: transport, Timeout: defaultTimeout()}
	proxyClients[proxyURL] = client
	return client, nil
}
