package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ChainSafe/forest-explorer/query"
)

const (
	defaultKeyPrefix = "forest-explorer"
	writeTimeout     = 3 * time.Second
)

// HashWriter is the slice of the go-redis API the publisher needs.
type HashWriter interface {
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// Publisher mirrors each query's facets into a Redis hash so that an
// out-of-process page can render them. Keys are <prefix>:<session>:<query>.
type Publisher struct {
	rdb     HashWriter
	prefix  string
	session string
	log     *zap.Logger
	now     func() time.Time
}

func NewPublisher(rdb HashWriter, prefix, session string, logger *zap.Logger) *Publisher {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{rdb: rdb, prefix: prefix, session: session, log: logger, now: time.Now}
}

func (p *Publisher) Key(name string) string {
	return fmt.Sprintf("%s:%s:%s", p.prefix, p.session, name)
}

// Render writes f and logs failures; a Render call never fails.
func (p *Publisher) Render(name string, f query.Facets) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := p.Publish(ctx, name, f); err != nil {
		p.log.Warn("failed to publish query facets", zap.String("key", p.Key(name)), zap.Error(err))
	}
}

func (p *Publisher) Publish(ctx context.Context, name string, f query.Facets) error {
	value := ""
	if f.Value != nil {
		value = fmt.Sprint(f.Value)
	}
	return p.rdb.HSet(ctx, p.Key(name),
		"value", value,
		"has_value", strconv.FormatBool(f.Value != nil),
		"loading", strconv.FormatBool(f.Loading),
		"failed", strconv.FormatBool(f.Failed),
		"generation", strconv.FormatUint(f.Generation, 10),
		"updated_at", p.now().UTC().Format(time.RFC3339Nano),
	).Err()
}
