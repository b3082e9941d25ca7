package main

import (
	"context"
	"database/sql"
	"io"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/luno/jettison/errors"
	"github.com/redis/go-redis/v9"

	"github.com/luno/openclaw"
	"github.com/luno/openclaw/adapters/filestore"
	"github.com/luno/openclaw/adapters/gatewayws"
	"github.com/luno/openclaw/adapters/jlog"
	"github.com/luno/openclaw/adapters/kafkanotifier"
	"github.com/luno/openclaw/adapters/redisstore"
	"github.com/luno/openclaw/adapters/sqlite"
	"github.com/luno/openclaw/adapters/sqlstore"
	"github.com/luno/openclaw/internal/logger"
)

const (
	recordTable   = "openclaw_records"
	relationTable = "openclaw_relations"
)

// deps is a manager together with the resources that must be released with it.
type deps struct {
	manager *openclaw.Manager
	closers []io.Closer
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		_ = d.closers[i].Close()
	}
}

func wire(ctx context.Context, cfg Config) (*deps, error) {
	var d deps

	store, err := openStore(ctx, cfg.Store, &d)
	if err != nil {
		d.Close()
		return nil, err
	}

	var l openclaw.Logger = logger.New(os.Stderr)
	if cfg.Log.Format == "jettison" {
		l = jlog.New()
	}

	opts := []openclaw.Option{
		openclaw.WithLogger(l),
		openclaw.WithDialer(gatewayws.New(
			gatewayws.WithLogger(l),
			gatewayws.WithHandshakeTimeout(cfg.Gateway.Timeout),
			gatewayws.WithCallTimeout(cfg.Gateway.Timeout),
		)),
	}

	if cfg.Log.Debug {
		opts = append(opts, openclaw.WithDebugMode())
	}

	if len(cfg.Kafka.Brokers) > 0 {
		n, err := kafkanotifier.New(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.closers = append(d.closers, n)
		opts = append(opts, openclaw.WithNotifier(n))
	}

	d.manager = openclaw.New(store, opts...)
	return &d, nil
}

func openStore(ctx context.Context, cfg StoreConfig, d *deps) (openclaw.Store, error) {
	switch cfg.Driver {
	case "sqlite":
		db, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, db)

		if err := sqlite.InitSchema(db); err != nil {
			return nil, err
		}

		return sqlite.New(db), nil

	case "mysql":
		db, err := sql.Open("mysql", cfg.DSN)
		if err != nil {
			return nil, errors.Wrap(err, "open mysql")
		}
		d.closers = append(d.closers, db)

		for _, stmt := range sqlstore.MySQLSchema(recordTable, relationTable) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return nil, errors.Wrap(err, "create mysql tables")
			}
		}

		return sqlstore.New(db, db, recordTable, relationTable), nil

	case "redis":
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{cfg.Addr},
		})
		d.closers = append(d.closers, client)

		return redisstore.New(client), nil

	default:
		return filestore.New(cfg.Path), nil
	}
}
