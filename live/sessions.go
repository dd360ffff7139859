package live

import (
	"context"
	"strconv"

	hotspot "github.com/chimerakang/hotspot-go"
	"github.com/chimerakang/hotspot-go/querycache"
	"github.com/chimerakang/hotspot-go/transport"
	"github.com/chimerakang/hotspot-go/validate"
)

const sessionsPath = "/radius/sessions"

// RadiusSessionService reads and terminates accounting sessions over REST.
// Session data changes fast, so reads use the operational TTL.
type RadiusSessionService struct {
	tr    *transport.Transport
	gate  *validate.Gate
	cache *querycache.Cache
}

func (s *RadiusSessionService) List(ctx context.Context, opts hotspot.ListOptions) ([]hotspot.RadiusSession, error) {
	query, filters := listQuery(opts)
	key := querycache.Key{Family: FamilyRadiusSessions, Filters: filters}
	v, err := s.cache.Get(ctx, key, querycache.TTLOperational, func(ctx context.Context) (any, error) {
		var out []hotspot.RadiusSession
		if err := s.tr.Get(ctx, sessionsPath+query, &out); err != nil {
			return nil, err
		}
		if err := s.gate.Each(out); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]hotspot.RadiusSession), nil
}

func (s *RadiusSessionService) Get(ctx context.Context, id int64) (*hotspot.RadiusSession, error) {
	key := querycache.Key{Family: FamilyRadiusSessions, ID: strconv.FormatInt(id, 10)}
	v, err := s.cache.Get(ctx, key, querycache.TTLOperational, func(ctx context.Context) (any, error) {
		var out hotspot.RadiusSession
		if err := s.tr.Get(ctx, sessionsPath+"/"+strconv.FormatInt(id, 10), &out); err != nil {
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
	return v.(*hotspot.RadiusSession), nil
}

// Disconnect asks the RADIUS backend to terminate the session. The session
// keeps existing as a stopped accounting record.
func (s *RadiusSessionService) Disconnect(ctx context.Context, id int64) error {
	path := sessionsPath + "/" + strconv.FormatInt(id, 10) + "/disconnect"
	if err := s.tr.Post(ctx, path, nil, nil); err != nil {
		return err
	}
	s.cache.InvalidateFamily(FamilyRadiusSessions, FamilyStats)
	return nil
}
