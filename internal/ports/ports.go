package ports

import (
	"context"
	"net/http"
	"time"
)

// Fetcher issues outbound HTTP requests on behalf of adapters.
type Fetcher interface {
	// FetchJSON GETs url and decodes the JSON body into v.
	FetchJSON(ctx context.Context, url string, v any) error
	// FetchPage GETs url with browser-like headers, following redirects,
	// bounded by the page timeout and size cap. A timeout or overflow
	// returns whatever was read so far.
	FetchPage(ctx context.Context, url string) (string, error)
	// FetchBytes GETs url with the given extra headers and returns the
	// body and the response Content-Type.
	FetchBytes(ctx context.Context, url string, header http.Header) ([]byte, string, error)
}

// AIOptions tunes a single AI tool invocation. Zero values select the
// runner's defaults.
type AIOptions struct {
	Model     string
	Timeout   time.Duration
	MaxOutput int64
}

// AIRunner invokes the external command-line AI tool with a prompt on stdin
// and returns its captured stdout.
type AIRunner interface {
	Run(ctx context.Context, prompt string, opts AIOptions) (string, error)
	// RunPrint uses the tool's free-form print mode for generative content.
	RunPrint(ctx context.Context, prompt string, opts AIOptions) (string, error)
}

// CommandRunner executes a local command and returns its stdout. It exists
// so adapters that shell out (reminders, usage reporting) can be tested.
type CommandRunner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}
