// Package client provides methods to do JSON-RPC requests (single and batch).
package client

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultTimeout = 60 // seconds

	maxIdleConns        int = 100
	maxIdleConnsPerHost int = 10
	maxConnsPerHost     int = 50
	idleConnTimeout     int = 90
)

var restClient = newRestClient()

// newRestClient for connection re-use
func newRestClient() *resty.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxConnsPerHost:     maxConnsPerHost,
		MaxIdleConns:        maxIdleConns,
		MaxIdleConnsPerHost: maxIdleConnsPerHost,
		IdleConnTimeout:     time.Duration(idleConnTimeout) * time.Second,
	}
	return resty.New().
		SetTransport(transport).
		SetHeader("Content-Type", "application/json")
}

// HTTPClient the underlying http client shared by all requests
func HTTPClient() *http.Client {
	return restClient.GetClient()
}

// post send json body and return the raw response body
func post(ctx context.Context, url string, body interface{}, timeoutSeconds int) ([]byte, error) {
	if timeoutSeconds <= 0 {
		timeoutSeconds = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSeconds)*time.Second)
	defer cancel()

	resp, err := restClient.R().
		SetContext(ctx).
		SetBody(body).
		Post(url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("wrong response status %v. message: %v", resp.StatusCode(), string(resp.Body()))
	}
	return resp.Body(), nil
}
