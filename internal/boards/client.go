package boards

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	userAgent         = "spigell/jobbot (+https://github.com/spigell/jobbot)"
	defaultTimeout    = 15 * time.Second
	defaultMaxRetries = 2
	defaultRetryWait  = time.Second
)

const (
	PlatformRemoteOK       = "RemoteOK"
	PlatformWeWorkRemotely = "WeWorkRemotely"
	PlatformTwitter        = "X/Twitter"
	PlatformDice           = "DICE"
	PlatformIndeed         = "Indeed"
	PlatformTuring         = "Turing"
	PlatformWellfound      = "Wellfound"
)

// Board is a source of job listings.
type Board interface {
	Name() string
	Search(ctx context.Context) (*Jobs, error)
}

// Client performs HTTP requests on behalf of the boards.
type Client struct {
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	MaxRetries int
	RetryWait  time.Duration
}

func NewClient(logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: defaultTimeout,
		},
		UserAgent:  userAgent,
		MaxRetries: defaultMaxRetries,
		RetryWait:  defaultRetryWait,
	}
}
