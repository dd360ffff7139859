package live

import (
	"context"
	"strconv"
	"time"

	hotspot "github.com/chimerakang/hotspot-go"
	"github.com/chimerakang/hotspot-go/querycache"
	"github.com/chimerakang/hotspot-go/transport"
	"github.com/chimerakang/hotspot-go/validate"
)

// crud is the shared request path for one REST resource: T is the record,
// In the create payload, P the partial-update payload.
type crud[T any, In any, P any] struct {
	tr          *transport.Transport
	gate        *validate.Gate
	cache       *querycache.Cache
	path        string
	family      string
	ttl         time.Duration
	invalidates []string
}

func (r *crud[T, In, P]) itemPath(id int64) string {
	return r.path + "/" + strconv.FormatInt(id, 10)
}

func (r *crud[T, In, P]) itemKey(id int64) querycache.Key {
	return querycache.Key{Family: r.family, ID: strconv.FormatInt(id, 10)}
}

func (r *crud[T, In, P]) list(ctx context.Context, opts hotspot.ListOptions) ([]T, error) {
	query, filters := listQuery(opts)
	key := querycache.Key{Family: r.family, Filters: filters}
	v, err := r.cache.Get(ctx, key, r.ttl, func(ctx context.Context) (any, error) {
		var out []T
		if err := r.tr.Get(ctx, r.path+query, &out); err != nil {
			return nil, err
		}
		// One malformed element fails the whole fetch; an invalid list is
		// never cached.
		if err := r.gate.Each(out); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]T), nil
}

func (r *crud[T, In, P]) get(ctx context.Context, id int64) (*T, error) {
	v, err := r.cache.Get(ctx, r.itemKey(id), r.ttl, func(ctx context.Context) (any, error) {
		var out T
		if err := r.tr.Get(ctx, r.itemPath(id), &out); err != nil {
			return nil, err
		}
		if err := r.gate.Struct(&out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*T), nil
}

func (r *crud[T, In, P]) create(ctx context.Context, in In) (*T, error) {
	if err := r.gate.Struct(in); err != nil {
		return nil, err
	}
	var out T
	if err := r.tr.Post(ctx, r.path, in, &out); err != nil {
		return nil, err
	}
	// The backend committed the mutation, so the families are invalidated
	// even when its response fails the inbound check.
	r.cache.InvalidateFamily(r.invalidates...)
	if err := r.gate.Struct(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *crud[T, In, P]) update(ctx context.Context, id int64, patch P) (*T, error) {
	if err := r.gate.Partial(patch); err != nil {
		return nil, err
	}
	var out T
	if err := r.tr.Patch(ctx, r.itemPath(id), patch, &out); err != nil {
		return nil, err
	}
	r.cache.InvalidateFamily(r.invalidates...)
	if err := r.gate.Struct(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *crud[T, In, P]) delete(ctx context.Context, id int64) error {
	if err := r.tr.Delete(ctx, r.itemPath(id)); err != nil {
		return err
	}
	r.cache.InvalidateFamily(r.invalidates...)
	return nil
}
