package dataset

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/flightdelay/internal/fetcher"
	"github.com/sells-group/flightdelay/internal/model"
	"github.com/sells-group/flightdelay/internal/store"
)

// Loader produces a dataset from some source.
type Loader interface {
	Load(ctx context.Context) (*model.Dataset, error)
}

// XLSXLoader reads a workbook with one sheet per table.
type XLSXLoader struct {
	Path string
}

func (l XLSXLoader) Load(ctx context.Context) (*model.Dataset, error) {
	if err := checkExists(l.Path); err != nil {
		return nil, err
	}
	zap.L().Info("dataset: loading workbook", zap.String("path", l.Path))

	tables, err := fetcher.ReadWorkbook(l.Path, Sheets...)
	if err != nil {
		if eris.Is(err, fetcher.ErrSheetNotFound) {
			return nil, eris.Wrapf(ErrMissingData, "%s: %s", l.Path, err.Error())
		}
		return nil, eris.Wrap(err, "dataset: read workbook")
	}
	return Build(ctx, tables)
}

// CSVLoader reads <table>.csv files from a directory.
type CSVLoader struct {
	Dir     string
	Options fetcher.CSVOptions
}

func (l CSVLoader) Load(ctx context.Context) (*model.Dataset, error) {
	zap.L().Info("dataset: loading csv directory", zap.String("dir", l.Dir))

	paths := make(map[string]string, len(Sheets))
	for _, name := range Sheets {
		p := filepath.Join(l.Dir, name+".csv")
		if err := checkExists(p); err != nil {
			return nil, err
		}
		paths[name] = p
	}

	read := make([]*fetcher.Table, len(Sheets))
	g, _ := errgroup.WithContext(ctx)
	for i, name := range Sheets {
		g.Go(func() error {
			t, err := fetcher.ReadCSVTable(paths[name], name, l.Options)
			if err != nil {
				return eris.Wrapf(err, "dataset: read %s", name)
			}
			read[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tables := make(Tables, len(Sheets))
	for i, name := range Sheets {
		tables[name] = read[i]
	}
	return Build(ctx, tables)
}

// StoreLoader reads a dataset previously imported into a database.
type StoreLoader struct {
	DSN  string
	Pool *store.PoolConfig
}

func (l StoreLoader) Load(ctx context.Context) (*model.Dataset, error) {
	s, err := store.Open(ctx, l.DSN, l.Pool)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: open store")
	}
	defer s.Close() //nolint:errcheck

	ds, err := s.LoadDataset(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: load from store")
	}
	zap.L().Info("dataset: loaded from store", zap.Int("flights", len(ds.Flights)))
	return ds, nil
}

func checkExists(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return eris.Wrapf(ErrMissingData, "%s does not exist", path)
		}
		return eris.Wrapf(err, "dataset: stat %s", path)
	}
	return nil
}
