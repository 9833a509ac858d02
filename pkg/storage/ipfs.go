package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/ipfs/kubo/client/rpc"
	"go.uber.org/zap"
)

// ErrContentMismatch is returned when content read for a raw-block CID does
// not hash to that CID.
var ErrContentMismatch = errors.New("ipfs content does not match CID")

// ipfsFetcher is the concrete implementation of IPFSFetcher using the Kubo RPC API.
type ipfsFetcher struct {
	api *rpc.HttpApi
}

// newIPFSFetcher creates a new IPFS fetcher with the given Kubo client.
func newIPFSFetcher(api *rpc.HttpApi) IPFSFetcher {
	return &ipfsFetcher{api: api}
}

// Fetch reads "<cid>[/path]" with `ipfs cat`. The root must parse as a CID.
// When the path is the CID itself and the CID uses the raw codec, the content
// is re-hashed with the CID prefix and compared.
func (f *ipfsFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	if f.api == nil {
		return nil, fmt.Errorf("ipfs client not configured")
	}

	root, sub, _ := strings.Cut(path, "/")
	zap.L().Debug("Reading from IPFS", zap.String("path", path))

	cID, err := cid.Parse(root)
	if err != nil {
		zap.L().Error("error parsing the ipfs hash", zap.String("hash", root), zap.Error(err))
		return nil, fmt.Errorf("parsing CID %q: %w", root, err)
	}

	target := "/ipfs/" + cID.String()
	if sub != "" {
		target += "/" + sub
	}

	resp, err := f.api.Request("cat", target).Send(ctx)
	if err != nil {
		zap.L().Error("error executing the cat command in ipfs", zap.String("path", target), zap.Error(err))
		return nil, err
	}
	defer func(resp *rpc.Response) {
		if cerr := resp.Close(); cerr != nil {
			zap.L().Debug("error closing response in ipfs", zap.String("path", target), zap.Error(cerr))
		}
	}(resp)

	if resp.Error != nil {
		zap.L().Error("ipfs cat returned error", zap.String("path", target), zap.Error(resp.Error))
		return nil, resp.Error
	}

	fileContent, err := io.ReadAll(io.LimitReader(resp.Output, maxContentSize+1))
	if err != nil {
		zap.L().Error("error reading ipfs content", zap.String("path", target), zap.Error(err))
		return nil, err
	}
	if len(fileContent) > maxContentSize {
		return nil, fmt.Errorf("ipfs %s: content exceeds %d bytes", target, maxContentSize)
	}

	if sub == "" && cID.Type() == cid.Raw {
		if err := verifyRaw(cID, fileContent); err != nil {
			zap.L().Error("IPFS hash verification failed", zap.String("expectedHash", cID.String()), zap.Error(err))
			return nil, err
		}
	}
	return fileContent, nil
}

// verifyRaw recomputes the CID of a single raw block and compares it with want.
func verifyRaw(want cid.Cid, content []byte) error {
	got, err := want.Prefix().Sum(content)
	if err != nil {
		return fmt.Errorf("hashing content: %w", err)
	}
	if !got.Equals(want) {
		return fmt.Errorf("%w: got %s, want %s", ErrContentMismatch, got, want)
	}
	return nil
}

// NewIPFSClient constructs a Kubo RPC client pointed at url.
func NewIPFSClient(url string) (*rpc.HttpApi, error) {
	httpClient := http.Client{
		Timeout: 30 * time.Second,
	}
	client, err := rpc.NewURLApiWithClient(url, &httpClient)
	if err != nil {
		zap.L().Error("Connection failed to IPFS", zap.String("url", url), zap.Error(err))
		return nil, err
	}
	return client, nil
}
