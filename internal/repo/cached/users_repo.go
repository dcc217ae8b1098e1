package cached

import (
	"context"
	"log/slog"

	"github.com/geocoder89/todohub/internal/cache"
	"github.com/geocoder89/todohub/internal/domain/user"
	"github.com/geocoder89/todohub/internal/observability"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// UsersRepo puts a read-through cache in front of FindByID. Cache failures
// are logged and fall back to the wrapped store.
//
// Fills from FindByID never replace a live entry; only Save overwrites, so a
// slow read cannot clobber a newer write-through.
type UsersRepo struct {
	next  user.Store
	cache cache.Cache
	log   *slog.Logger
	prom  *observability.Prom
}

func NewUsersRepo(next user.Store, c cache.Cache, log *slog.Logger, prom *observability.Prom) *UsersRepo {
	if log == nil {
		log = slog.Default()
	}

	return &UsersRepo{next: next, cache: c, log: log, prom: prom}
}

func (r *UsersRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.next.FindByEmail(ctx, email)
}

func (r *UsersRepo) FindByID(ctx context.Context, id string) (*user.User, error) {
	key := cache.UserKey(id)

	b, ok, err := r.cache.Get(ctx, key)

	switch {
	case err != nil:
		r.prom.ObserveCache("error")
		r.log.WarnContext(ctx, "user cache get failed", "user_id", id, "err", err)
	case ok:
		var u user.User
		if err := bson.Unmarshal(b, &u); err == nil {
			r.prom.ObserveCache("hit")
			return &u, nil
		}
		r.prom.ObserveCache("error")
		r.evict(ctx, id)
	default:
		r.prom.ObserveCache("miss")
	}

	u, err := r.next.FindByID(ctx, id)

	if err != nil || u == nil {
		return u, err
	}

	r.put(ctx, u, r.cache.Add)

	return u, nil
}

// Save writes through on success. On any failure the entry is evicted so the
// next read sees the store's current version.
func (r *UsersRepo) Save(ctx context.Context, u *user.User) (*user.User, error) {
	saved, err := r.next.Save(ctx, u)

	if err != nil {
		if u.ID != "" {
			r.evict(ctx, u.ID)
		}
		return nil, err
	}

	r.put(ctx, saved, r.cache.Set)

	return saved, nil
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}

func (r *UsersRepo) put(ctx context.Context, u *user.User, store func(context.Context, string, []byte) error) {
	b, err := bson.Marshal(u)

	if err != nil {
		r.log.WarnContext(ctx, "user cache encode failed", "user_id", u.ID, "err", err)
		return
	}

	if err := store(ctx, cache.UserKey(u.ID), b); err != nil {
		r.log.WarnContext(ctx, "user cache set failed", "user_id", u.ID, "err", err)
	}
}

func (r *UsersRepo) evict(ctx context.Context, id string) {
	if err := r.cache.Delete(ctx, cache.UserKey(id)); err != nil {
		r.log.WarnContext(ctx, "user cache delete failed", "user_id", id, "err", err)
	}
}
