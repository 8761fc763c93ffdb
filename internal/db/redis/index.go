package redis

import (
	"context"
	"errors"
	"strconv"

	"github.com/kailas-cloud/sommelier/internal/db"
)

// CreateIndex runs FT.CREATE. TEXT fields are dropped on valkey-search, which does
// not support them.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if !s.SupportsTextSearch(ctx) {
		def = def.Without(db.FieldText)
	}
	args, err := buildCreateArgs(def)
	if err != nil {
		return err
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// IndexExists probes the index via FT.INFO.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") || isRedisErr(err, "not found") {
			return false, nil
		}
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return true, nil
}

// SupportsTextSearch reports BM25 availability.
func (s *Store) SupportsTextSearch(_ context.Context) bool {
	return s.flavor == FlavorRedis
}

func buildCreateArgs(def *db.IndexDefinition) ([]string, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	args := []string{def.Name, "ON", "HASH"}
	if len(def.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(def.Prefixes)))
		args = append(args, def.Prefixes...)
	}
	args = append(args, "SCHEMA")

	for _, f := range def.Fields {
		args = append(args, f.Name)
		switch f.Type {
		case db.FieldTag:
			args = append(args, "TAG")
		case db.FieldText:
			args = append(args, "TEXT")
		case db.FieldNumeric:
			args = append(args, "NUMERIC")
		case db.FieldVector:
			attrs := []string{"TYPE", "FLOAT32", "DIM", strconv.Itoa(f.Dim), "DISTANCE_METRIC", "COSINE"}
			if f.M > 0 {
				attrs = append(attrs, "M", strconv.Itoa(f.M))
			}
			if f.EFConstruct > 0 {
				attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(f.EFConstruct))
			}
			args = append(args, "VECTOR", "HNSW", strconv.Itoa(len(attrs)))
			args = append(args, attrs...)
		default:
			return nil, errors.New("unknown field type")
		}
	}
	return args, nil
}
