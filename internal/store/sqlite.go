package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	"github.com/sells-group/flightdelay/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS flights (
	flight              TEXT NOT NULL,
	origin              TEXT NOT NULL,
	airline_id          TEXT NOT NULL,
	scheduled_departure TEXT NOT NULL,
	departure           TEXT,
	departure_delay     INTEGER
);

CREATE TABLE IF NOT EXISTS airports (
	airport_code TEXT NOT NULL,
	name         TEXT NOT NULL,
	latitude     REAL NOT NULL,
	longitude    REAL NOT NULL
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

const sqliteTime = time.RFC3339Nano

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveDataset(ctx context.Context, ds *model.Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, table := range []string{"flights", "airports", "airlines", "aircrafts"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return eris.Wrapf(err, "sqlite: clear %s", table)
		}
	}

	if err := insertEach(ctx, tx, "flights",
		`INSERT INTO flights (flight, origin, airline_id, scheduled_departure, departure, departure_delay) VALUES (?, ?, ?, ?, ?, ?)`,
		len(ds.Flights), func(i int) []any {
			f := ds.Flights[i]
			var dep sql.NullString
			var delay sql.NullInt64
			if f.Departure != nil {
				dep = sql.NullString{String: f.Departure.UTC().Format(sqliteTime), Valid: true}
			}
			if f.DepartureDelay != nil {
				delay = sql.NullInt64{Int64: int64(*f.DepartureDelay), Valid: true}
			}
			return []any{f.Flight, f.Origin, f.AirlineID, f.ScheduledDeparture.UTC().Format(sqliteTime), dep, delay}
		}); err != nil {
		return err
	}
	if err := insertEach(ctx, tx, "airports",
		`INSERT INTO airports (airport_code, name, latitude, longitude) VALUES (?, ?, ?, ?)`,
		len(ds.Airports), func(i int) []any {
			a := ds.Airports[i]
			return []any{a.Code, a.Name, a.Latitude, a.Longitude}
		}); err != nil {
		return err
	}
	if err := insertEach(ctx, tx, "airlines",
		`INSERT INTO airlines (airline_id, airline) VALUES (?, ?)`,
		len(ds.Airlines), func(i int) []any {
			return []any{ds.Airlines[i].ID, ds.Airlines[i].Name}
		}); err != nil {
		return err
	}
	if err := insertEach(ctx, tx, "aircrafts",
		`INSERT INTO aircrafts (tail_number, model, manufacturer, seats) VALUES (?, ?, ?, ?)`,
		len(ds.Aircrafts), func(i int) []any {
			a := ds.Aircrafts[i]
			return []any{a.TailNumber, a.Model, a.Manufacturer, a.Seats}
		}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "sqlite: commit")
	}
	zap.L().Info("sqlite: saved dataset", zap.Int("flights", len(ds.Flights)))
	return nil
}

func insertEach(ctx context.Context, tx *sql.Tx, table, query string, n int, row func(i int) []any) error {
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return eris.Wrapf(err, "sqlite: prepare insert %s", table)
	}
	defer stmt.Close() //nolint:errcheck
	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, row(i)...); err != nil {
			return eris.Wrapf(err, "sqlite: insert %s row %d", table, i)
		}
	}
	return nil
}

func (s *SQLiteStore) LoadDataset(ctx context.Context) (*model.Dataset, error) {
	var (
		flights   []model.Flight
		airports  []model.Airport
		airlines  []model.Airline
		aircrafts []model.Aircraft
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		flights, err = s.loadFlights(gctx)
		return err
	})
	g.Go(func() error {
		return s.query(gctx, "airports", `SELECT airport_code, name, latitude, longitude FROM airports ORDER BY rowid`,
			func(rows *sql.Rows) error {
				var a model.Airport
				if err := rows.Scan(&a.Code, &a.Name, &a.Latitude, &a.Longitude); err != nil {
					return err
				}
				airports = append(airports, a)
				return nil
			})
	})
	g.Go(func() error {
		return s.query(gctx, "airlines", `SELECT airline_id, airline FROM airlines ORDER BY rowid`,
			func(rows *sql.Rows) error {
				var a model.Airline
				if err := rows.Scan(&a.ID, &a.Name); err != nil {
					return err
				}
				airlines = append(airlines, a)
				return nil
			})
	})
	g.Go(func() error {
		return s.query(gctx, "aircrafts", `SELECT tail_number, model, manufacturer, seats FROM aircrafts ORDER BY rowid`,
			func(rows *sql.Rows) error {
				var a model.Aircraft
				if err := rows.Scan(&a.TailNumber, &a.Model, &a.Manufacturer, &a.Seats); err != nil {
					return err
				}
				aircrafts = append(aircrafts, a)
				return nil
			})
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return model.NewDataset(flights, airports, airlines, aircrafts), nil
}

func (s *SQLiteStore) loadFlights(ctx context.Context) ([]model.Flight, error) {
	var out []model.Flight
	err := s.query(ctx, "flights",
		`SELECT flight, origin, airline_id, scheduled_departure, departure, departure_delay FROM flights ORDER BY rowid`,
		func(rows *sql.Rows) error {
			var (
				f     model.Flight
				sched string
				dep   sql.NullString
				delay sql.NullInt64
			)
			if err := rows.Scan(&f.Flight, &f.Origin, &f.AirlineID, &sched, &dep, &delay); err != nil {
				return err
			}
			t, err := time.Parse(sqliteTime, sched)
			if err != nil {
				return eris.Wrapf(err, "scheduled_departure %q", sched)
			}
			f.ScheduledDeparture = t
			if dep.Valid {
				d, err := time.Parse(sqliteTime, dep.String)
				if err != nil {
					return eris.Wrapf(err, "departure %q", dep.String)
				}
				f.Departure = &d
			}
			if delay.Valid {
				v := int(delay.Int64)
				f.DepartureDelay = &v
			}
			out = append(out, f)
			return nil
		})
	return out, err
}

func (s *SQLiteStore) query(ctx context.Context, table, q string, scan func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return eris.Wrapf(err, "sqlite: query %s", table)
	}
	defer rows.Close() //nolint:errcheck
	for rows.Next() {
		if err := scan(rows); err != nil {
			return eris.Wrapf(err, "sqlite: scan %s", table)
		}
	}
	return eris.Wrapf(rows.Err(), "sqlite: iterate %s", table)
}
