package storage

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/ipfs/kubo/client/rpc"
	"go.uber.org/zap"
)

const (
	// IpfsPrefix is the URI scheme prefix recognized for IPFS content.
	IpfsPrefix = "ipfs://"
	// FilecoinPrefix is the URI scheme prefix recognized for Filecoin/Lighthouse content.
	FilecoinPrefix = "filecoin://"
	// HTTPPrefix and HTTPSPrefix mark metadata served from a plain web server.
	HTTPPrefix  = "http://"
	HTTPSPrefix = "https://"
)

// Reader fetches the content a token URI points to.
type Reader interface {
	ReadFile(ctx context.Context, uri string) ([]byte, error)
}

// LighthouseFetcher fetches content from a Lighthouse gateway.
type LighthouseFetcher interface {
	Fetch(ctx context.Context, endpoint, path string) ([]byte, error)
}

// IPFSFetcher fetches content addressed by CID (optionally followed by a
// path inside the DAG) from IPFS.
type IPFSFetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// Client aggregates the configured storage backends.
type Client struct {
	// HttpApi is a Kubo RPC client used for IPFS reads. When nil, ipfs:// URIs
	// are read through the Lighthouse gateway instead.
	*rpc.HttpApi
	// LighthouseURL is the base URL of the Lighthouse HTTP gateway.
	LighthouseURL string
	// Timeout bounds a single ReadFile. Zero means no bound besides ctx.
	Timeout time.Duration

	httpClient        *http.Client
	lighthouseFetcher LighthouseFetcher
	ipfsFetcher       IPFSFetcher
}

// NewStorage constructs a storage client. ipfsURL is the optional Kubo RPC
// endpoint; if it is empty or the client fails to initialize, IPFS content is
// read through lighthouseURL.
func NewStorage(ipfsURL, lighthouseURL string, timeout time.Duration) *Client {
	s := &Client{
		LighthouseURL: lighthouseURL,
		Timeout:       timeout,
		httpClient:    http.DefaultClient,
	}
	s.lighthouseFetcher = gatewayFetcher{client: s.httpClient}
	if ipfsURL != "" {
		api, err := NewIPFSClient(ipfsURL)
		if err != nil {
			zap.L().Error("Failed to create IPFS client, falling back to gateway", zap.String("url", ipfsURL), zap.Error(err))
		} else {
			s.HttpApi = api
			s.ipfsFetcher = newIPFSFetcher(api)
		}
	}
	return s
}

// ReadFile fetches the content identified by uri:
//   - filecoin://<cid>[/path] through the Lighthouse gateway
//   - http(s)://... with a plain GET
//   - ipfs://<cid>[/path] or a bare CID through Kubo, or the gateway when no
//     Kubo client is configured
func (s *Client) ReadFile(ctx context.Context, uri string) ([]byte, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	// ReadFile never writes to s. A Client built without NewStorage gets
	// default fetchers per call.
	gateway := s.lighthouseFetcher
	if gateway == nil {
		gateway = gatewayFetcher{client: s.httpClient}
	}
	ipfs := s.ipfsFetcher
	if ipfs == nil && s.HttpApi != nil {
		ipfs = newIPFSFetcher(s.HttpApi)
	}

	uri = strings.TrimSpace(uri)
	switch {
	case strings.HasPrefix(uri, FilecoinPrefix):
		return gateway.Fetch(ctx, s.LighthouseURL, contentPath(uri))
	case strings.HasPrefix(uri, HTTPPrefix), strings.HasPrefix(uri, HTTPSPrefix):
		return GetURL(ctx, s.httpClient, uri)
	case ipfs != nil:
		return ipfs.Fetch(ctx, contentPath(uri))
	default:
		return gateway.Fetch(ctx, s.LighthouseURL, contentPath(uri))
	}
}

// gatewayFetcher is the production implementation of LighthouseFetcher.
type gatewayFetcher struct {
	client *http.Client
}

func (g gatewayFetcher) Fetch(ctx context.Context, endpoint, path string) ([]byte, error) {
	return GetLighthouseFileCtx(ctx, g.client, endpoint, path)
}

// contentPath strips the scheme (and a leading "ipfs/" segment) from a
// content URI and returns "<cid>" or "<cid>/<path>". The CID is sanitized
// with formatHash; the path is kept as is.
func contentPath(uri string) string {
	p := strings.TrimPrefix(uri, IpfsPrefix)
	p = strings.TrimPrefix(p, FilecoinPrefix)
	p = strings.TrimLeft(p, "/")
	p = strings.TrimPrefix(p, "ipfs/")

	root, rest, hasRest := strings.Cut(p, "/")
	root = formatHash(root)
	rest = strings.Trim(rest, "/")
	if !hasRest || rest == "" {
		return root
	}
	return root + "/" + rest
}

// formatHash removes known URI scheme prefixes and any non-alphanumeric
// characters (except '=') from the supplied hash/URI to produce a clean CID
// string suitable for the underlying backends.
func formatHash(hash string) string {
	hash = strings.Replace(hash, IpfsPrefix, "", -1)
	hash = strings.Replace(hash, FilecoinPrefix, "", -1)
	hash = removeSpecialCharacters(hash)
	return hash
}

var specialCharacters = regexp.MustCompile("[^a-zA-Z0-9=]")

// removeSpecialCharacters strips all characters except ASCII letters, digits,
// and '=' from pString.
func removeSpecialCharacters(pString string) string {
	return specialCharacters.ReplaceAllString(pString, "")
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
