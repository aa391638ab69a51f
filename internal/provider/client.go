// internal/provider/client.go
package provider

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"

	"chainfolio/internal/util"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// tokenListResponse is the envelope the indexing API wraps results in.
type tokenListResponse struct {
	Result []TokenItem `json:"result"`
}

// Client is a TokenProvider backed by the HTTP indexing API.
type Client struct {
	client   *fasthttp.Client
	baseURL  string
	apiKey   string
	timeout  time.Duration
	chainMap map[string]string
	logger   *slog.Logger
}

// NewClient creates a provider client. chainMap maps friendly chain names to
// provider identifiers and is copied so the client owns an immutable view.
func NewClient(baseURL, apiKey string, timeout time.Duration, chainMap map[string]string, logger *slog.Logger) *Client {
	owned := make(map[string]string, len(chainMap))
	for name, id := range chainMap {
		owned[name] = id
	}
	return &Client{
		client:   &fasthttp.Client{},
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		timeout:  timeout,
		chainMap: owned,
		logger:   logger,
	}
}

// MapChain converts a friendly chain name to the provider's identifier.
// Unknown names pass through unchanged.
func (c *Client) MapChain(chain string) string {
	if id, ok := c.chainMap[strings.ToLower(chain)]; ok {
		return id
	}
	return chain
}

// FetchTokens fetches the token holdings of one wallet. A non-200 response or
// a transport failure is returned as an error wrapping util.ErrProvider with
// the provider's status and body preserved; it is never a panic.
func (c *Client) FetchTokens(ctx context.Context, address, chain string, opts FetchOptions) ([]TokenItem, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	req.SetRequestURI(fmt.Sprintf("%s/wallets/%s/tokens", c.baseURL, address))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("accept", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	args := req.URI().QueryArgs()
	args.Set("exclude_spam", strconv.FormatBool(opts.ExcludeSpam))
	args.Set("exclude_unverified_contracts", strconv.FormatBool(opts.ExcludeUnverified))
	if chain != "" {
		providerChain := c.MapChain(chain)
		args.Set("chain", providerChain)
		c.logger.Info("querying provider for wallet tokens", "address", address, "chain", providerChain)
	} else {
		c.logger.Info("querying provider for wallet tokens across all chains", "address", address)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		c.logger.Error("provider request failed", "address", address, "error", err)
		return nil, fmt.Errorf("%w: %v", util.ErrProvider, err)
	}

	body := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Error("provider returned an error response",
			"address", address, "status", resp.StatusCode(), "body", string(body))
		return nil, fmt.Errorf("%w: status %d, %s", util.ErrProvider, resp.StatusCode(), string(body))
	}

	var payload tokenListResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		c.logger.Error("failed to decode provider response", "address", address, "error", err)
		return nil, fmt.Errorf("%w: malformed response: %v", util.ErrProvider, err)
	}

	return payload.Result, nil
}
