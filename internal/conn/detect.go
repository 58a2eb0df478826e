package conn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eliasnord/neonpane/internal/cache"
	"github.com/eliasnord/neonpane/internal/domain"
	"github.com/eliasnord/neonpane/internal/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	// ScanCacheTTL is how long a detected-connections scan result stays
	// valid before a fresh scan is required.
	ScanCacheTTL = 5 * time.Minute

	probeTimeout = 2 * time.Second

	scanCacheKey = "local"
)

// defaultPorts are the conventional local Postgres listener ports, including
// the common pooler ports.
var defaultPorts = []int{5432, 5433, 5434, 6432}

// LocalEndpoint is one Postgres listener found on the local machine.
type LocalEndpoint struct {
	Host string
	Port int
}

// Scanner finds Postgres listeners on conventional local ports. Scan results
// are cached; a manual refresh invalidates the cache.
type Scanner struct {
	ports []int
	cache *cache.Cache[[]LocalEndpoint]
	probe func(ctx context.Context, dsn string) error
}

func NewScanner() *Scanner {
	return &Scanner{
		ports: defaultPorts,
		cache: cache.New[[]LocalEndpoint](ScanCacheTTL),
		probe: pgProbe,
	}
}

// Detect returns the reachable local listeners, serving a cached scan when it
// is still fresh.
func (s *Scanner) Detect(ctx context.Context) []LocalEndpoint {
	if cached, ok := s.cache.Get(scanCacheKey); ok {
		return cached
	}

	found := make([]LocalEndpoint, 0, len(s.ports))
	for _, port := range s.ports {
		dsn := fmt.Sprintf("postgres://postgres@127.0.0.1:%d/postgres?connect_timeout=2", port)

		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := s.probe(probeCtx, dsn)
		cancel()

		if err != nil {
			continue
		}

		found = append(found, LocalEndpoint{Host: "127.0.0.1", Port: port})
	}

	logger.Log("Conn: Detected %d local listeners", len(found))
	s.cache.Set(scanCacheKey, found)
	return found
}

// Invalidate drops the cached scan result. Wired to the manual refresh
// intent.
func (s *Scanner) Invalidate() {
	s.cache.InvalidateAll()
}

// pgProbe reports nil when something speaking the Postgres protocol answers
// at the DSN. An authentication rejection still proves a listener, so it
// counts as reachable; only transport-level failures do not.
func pgProbe(ctx context.Context, dsn string) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err == nil {
		return conn.Close(ctx)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return nil
	}

	return err
}

// Verify checks that a connection tuple actually accepts a session.
func Verify(ctx context.Context, info domain.ConnectionInfo) error {
	dsn := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=require",
		info.User, info.Password, info.Host, info.Database)

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to %s/%s: %w", info.Host, info.Database, err)
	}
	defer conn.Close(ctx)

	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("ping failed for %s/%s: %w", info.Host, info.Database, err)
	}

	return nil
}
