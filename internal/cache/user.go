package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/pawangupta079/skill-hire/pkg/model"
)

// UserLoader fetches a user from the backing store.
type UserLoader func(ctx context.Context, id string) (*model.User, error)

// UserCache keeps recently authenticated users in process so that every request
// does not hit the store. Entries are stored by value.
type UserCache struct {
	c    *gocache.Cache
	load UserLoader
}

// NewUserCache caches loaded users for ttl. A zero ttl disables caching.
func NewUserCache(ttl time.Duration, load UserLoader) *UserCache {
	uc := &UserCache{load: load}
	if ttl > 0 {
		uc.c = gocache.New(ttl, 2*ttl)
	}
	return uc
}

func (uc *UserCache) Get(ctx context.Context, id string) (*model.User, error) {
	if uc.c != nil {
		if v, ok := uc.c.Get(id); ok {
			u := v.(model.User)
			return &u, nil
		}
	}
	u, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if uc.c != nil {
		uc.c.Set(id, *u, gocache.DefaultExpiration)
	}
	return u, nil
}

// Forget drops id so the next Get reloads it.
func (uc *UserCache) Forget(id string) {
	if uc.c != nil {
		uc.c.Delete(id)
	}
}
