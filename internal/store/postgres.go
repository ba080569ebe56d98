package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/flightdelay/internal/db"
	"github.com/sells-group/flightdelay/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS flights (
	flight              TEXT NOT NULL,
	origin              TEXT NOT NULL,
	airline_id          TEXT NOT NULL,
	scheduled_departure TIMESTAMPTZ NOT NULL,
	departure           TIMESTAMPTZ,
	departure_delay     INTEGER,
	ord                 BIGSERIAL
);

CREATE TABLE IF NOT EXISTS airports (
	airport_code TEXT NOT NULL,
	name         TEXT NOT NULL,
	latitude     DOUBLE PRECISION NOT NULL,
	longitude    DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS airlines (
	airline_id TEXT NOT NULL,
	airline    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS aircrafts (
	tail_number  TEXT NOT NULL,
	model        TEXT NOT NULL DEFAULT '',
	manufacturer TEXT NOT NULL DEFAULT '',
	seats        INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_flights_origin ON flights(origin);
CREATE INDEX IF NOT EXISTS idx_flights_airline_id ON flights(airline_id);
`

var (
	flightColumns   = []string{"flight", "origin", "airline_id", "scheduled_departure", "departure", "departure_delay"}
	airportColumns  = []string{"airport_code", "name", "latitude", "longitude"}
	airlineColumns  = []string{"airline_id", "airline"}
	aircraftColumns = []string{"tail_number", "model", "manufacturer", "seats"}
)

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// SaveDataset truncates the tables and bulk-loads ds with COPY inside one
// transaction.
func (s *PostgresStore) SaveDataset(ctx context.Context, ds *model.Dataset) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `TRUNCATE flights, airports, airlines, aircrafts RESTART IDENTITY`); err != nil {
		return eris.Wrap(err, "postgres: truncate")
	}

	if _, err := db.CopySlice(ctx, tx, "flights", flightColumns, len(ds.Flights), func(i int) ([]any, error) {
		f := ds.Flights[i]
		return []any{f.Flight, f.Origin, f.AirlineID, f.ScheduledDeparture, f.Departure, f.DepartureDelay}, nil
	}); err != nil {
		return eris.Wrap(err, "postgres: save flights")
	}
	if _, err := db.CopySlice(ctx, tx, "airports", airportColumns, len(ds.Airports), func(i int) ([]any, error) {
		a := ds.Airports[i]
		return []any{a.Code, a.Name, a.Latitude, a.Longitude}, nil
	}); err != nil {
		return eris.Wrap(err, "postgres: save airports")
	}

	airlineRows := make([][]any, len(ds.Airlines))
	for i, a := range ds.Airlines {
		airlineRows[i] = []any{a.ID, a.Name}
	}
	if _, err := db.CopyFrom(ctx, tx, "airlines", airlineColumns, airlineRows); err != nil {
		return eris.Wrap(err, "postgres: save airlines")
	}

	aircraftRows := make([][]any, len(ds.Aircrafts))
	for i, a := range ds.Aircrafts {
		aircraftRows[i] = []any{a.TailNumber, a.Model, a.Manufacturer, a.Seats}
	}
	if _, err := db.CopyFrom(ctx, tx, "aircrafts", aircraftColumns, aircraftRows); err != nil {
		return eris.Wrap(err, "postgres: save aircrafts")
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "postgres: commit")
	}
	zap.L().Info("postgres: saved dataset", zap.Int("flights", len(ds.Flights)))
	return nil
}

func (s *PostgresStore) LoadDataset(ctx context.Context) (*model.Dataset, error) {
	flights, err := s.loadFlights(ctx)
	if err != nil {
		return nil, err
	}

	airports, err := collect(ctx, s.pool, "airports",
		`SELECT airport_code, name, latitude, longitude FROM airports ORDER BY ctid`,
		func(row pgx.CollectableRow) (model.Airport, error) {
			var a model.Airport
			err := row.Scan(&a.Code, &a.Name, &a.Latitude, &a.Longitude)
			return a, err
		})
	if err != nil {
		return nil, err
	}

	airlines, err := collect(ctx, s.pool, "airlines",
		`SELECT airline_id, airline FROM airlines ORDER BY ctid`,
		func(row pgx.CollectableRow) (model.Airline, error) {
			var a model.Airline
			err := row.Scan(&a.ID, &a.Name)
			return a, err
		})
	if err != nil {
		return nil, err
	}

	aircrafts, err := collect(ctx, s.pool, "aircrafts",
		`SELECT tail_number, model, manufacturer, seats FROM aircrafts ORDER BY ctid`,
		func(row pgx.CollectableRow) (model.Aircraft, error) {
			var a model.Aircraft
			err := row.Scan(&a.TailNumber, &a.Model, &a.Manufacturer, &a.Seats)
			return a, err
		})
	if err != nil {
		return nil, err
	}

	return model.NewDataset(flights, airports, airlines, aircrafts), nil
}

// loadFlights reads the nullable columns through COALESCE plus a presence
// flag so every column scans into a plain Go value.
func (s *PostgresStore) loadFlights(ctx context.Context) ([]model.Flight, error) {
	return collect(ctx, s.pool, "flights",
		`SELECT flight, origin, airline_id, scheduled_departure,
			departure IS NOT NULL, COALESCE(departure, scheduled_departure),
			departure_delay IS NOT NULL, COALESCE(departure_delay, 0)
		FROM flights ORDER BY ord`,
		func(row pgx.CollectableRow) (model.Flight, error) {
			var (
				f        model.Flight
				hasDep   bool
				dep      time.Time
				hasDelay bool
				delay    int
			)
			if err := row.Scan(&f.Flight, &f.Origin, &f.AirlineID, &f.ScheduledDeparture,
				&hasDep, &dep, &hasDelay, &delay); err != nil {
				return f, err
			}
			if hasDep {
				f.Departure = &dep
			}
			if hasDelay {
				f.DepartureDelay = &delay
			}
			return f, nil
		})
}

func collect[T any](ctx context.Context, pool db.Pool, table, q string, fn pgx.RowToFunc[T]) ([]T, error) {
	rows, err := pool.Query(ctx, q)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: query %s", table)
	}
	out, err := pgx.CollectRows(rows, fn)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: scan %s", table)
	}
	return out, nil
}
