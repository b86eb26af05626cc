package pipeline

import (
	"context"

	"github.com/dunamismax/imgbox/internal/storage"
)

type Fetcher interface {
	Exists(ctx context.Context, src string) (bool, error)
	Fetch(ctx context.Context, src string) ([]byte, error)
}

type Emitter interface {
	// Emit stores data at target and returns where it was written.
	Emit(ctx context.Context, req Request, target string, data []byte, format string) (string, error)
}

// RouteFetcher sends s3:// sources to Object and everything else to Local.
type RouteFetcher struct {
	Local  Fetcher
	Object Fetcher
}

func NewRouteFetcher(client *storage.Client) RouteFetcher {
	return RouteFetcher{
		Local:  LocalFileFetcher{},
		Object: ObjectStoreFetcher{Storage: client},
	}
}

func (r RouteFetcher) pick(src string) Fetcher {
	if storage.IsObjectURL(src) {
		return r.Object
	}
	return r.Local
}

func (r RouteFetcher) Exists(ctx context.Context, src string) (bool, error) {
	return r.pick(src).Exists(ctx, src)
}

func (r RouteFetcher) Fetch(ctx context.Context, src string) ([]byte, error) {
	return r.pick(src).Fetch(ctx, src)
}

// RouteEmitter sends s3:// targets to Object and everything else to Local.
type RouteEmitter struct {
	Local  Emitter
	Object Emitter
}

func NewRouteEmitter(client *storage.Client) RouteEmitter {
	return RouteEmitter{
		Local:  LocalFileEmitter{},
		Object: ObjectStoreEmitter{Storage: client},
	}
}

func (r RouteEmitter) Emit(ctx context.Context, req Request, target string, data []byte, format string) (string, error) {
	if storage.IsObjectURL(target) {
		return r.Object.Emit(ctx, req, target, data, format)
	}
	return r.Local.Emit(ctx, req, target, data, format)
}
