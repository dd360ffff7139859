package live

import (
	"context"

	hotspot "github.com/chimerakang/hotspot-go"
	"github.com/chimerakang/hotspot-go/querycache"
	"github.com/chimerakang/hotspot-go/transport"
	"github.com/chimerakang/hotspot-go/validate"
)

// AccountService reads and updates the signed-in operator's profile.
type AccountService struct {
	tr    *transport.Transport
	gate  *validate.Gate
	cache *querycache.Cache
}

func (s *AccountService) Current(ctx context.Context) (*hotspot.Account, error) {
	key := querycache.Key{Family: FamilyAccount}
	v, err := s.cache.Get(ctx, key, querycache.TTLReference, func(ctx context.Context) (any, error) {
		var out hotspot.Account
		if err := s.tr.Get(ctx, "/account", &out); err != nil {
			return nil, err
		}
		if err := s.gate.Struct(&out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*hotspot.Account), nil
}

func (s *AccountService) Update(ctx context.Context, patch hotspot.AccountPatch) (*hotspot.Account, error) {
	if err := s.gate.Partial(patch); err != nil {
		return nil, err
	}
	var out hotspot.Account
	if err := s.tr.Patch(ctx, "/account", patch, &out); err != nil {
		return nil, err
	}
	s.cache.InvalidateFamily(FamilyAccount)
	if err := s.gate.Struct(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StatsService serves the aggregate dashboard view. Stats age out on the
// operational TTL and are additionally invalidated by any mutation of the
// resources they aggregate.
type StatsService struct {
	tr    *transport.Transport
	gate  *validate.Gate
	cache *querycache.Cache
}

func (s *StatsService) Dashboard(ctx context.Context) (*hotspot.DashboardStats, error) {
	key := querycache.Key{Family: FamilyStats}
	v, err := s.cache.Get(ctx, key, querycache.TTLOperational, func(ctx context.Context) (any, error) {
		var out hotspot.DashboardStats
		if err := s.tr.Get(ctx, "/stats/dashboard", &out); err != nil {
			return nil, err
		}
		if err := s.gate.Struct(&out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*hotspot.DashboardStats), nil
}
