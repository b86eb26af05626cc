package pipeline

import (
	"context"
	"errors"

	"github.com/dunamismax/imgbox/internal/backend"
	"github.com/dunamismax/imgbox/internal/storage"
)

var errNoStorage = errors.New("object storage is not configured")

type ObjectStoreFetcher struct {
	Storage *storage.Client
}

func (f ObjectStoreFetcher) Exists(ctx context.Context, src string) (bool, error) {
	if f.Storage == nil {
		return false, errNoStorage
	}
	obj, err := storage.ParseObjectURL(src)
	if err != nil {
		return false, err
	}
	return f.Storage.ObjectExists(ctx, obj)
}

func (f ObjectStoreFetcher) Fetch(ctx context.Context, src string) ([]byte, error) {
	if f.Storage == nil {
		return nil, errNoStorage
	}
	obj, err := storage.ParseObjectURL(src)
	if err != nil {
		return nil, err
	}
	return f.Storage.ReadObject(ctx, obj)
}

type ObjectStoreEmitter struct {
	Storage *storage.Client
}

func (e ObjectStoreEmitter) Emit(ctx context.Context, _ Request, target string, data []byte, format string) (string, error) {
	if e.Storage == nil {
		return "", errNoStorage
	}
	obj, err := storage.ParseObjectURL(target)
	if err != nil {
		return "", err
	}
	if err := e.Storage.EnsureBucket(ctx, obj.Bucket); err != nil {
		return "", err
	}
	if err := e.Storage.WriteObject(ctx, obj, data, backend.ContentType(format)); err != nil {
		return "", err
	}
	return obj.String(), nil
}
