package router

import (
	"time"

	"github.com/alexisbanda/invercorp-backend/handlers"
	"github.com/alexisbanda/invercorp-backend/models"
	"github.com/alexisbanda/invercorp-backend/store"
	"github.com/go-redis/cache/v8"
	"github.com/gofiber/fiber/v2"
)

// ResolveIdentity turns the auth proxy's headers into the explicit identity
// every ledger call is stamped with. The service never authenticates; it
// trusts the already-resolved uid/email. Known users are cached so the
// per-request lookup does not hit Mongo every time.
func ResolveIdentity(userDB store.UserStore, rcache *cache.Cache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()
		uid := c.Get("X-Auth-Uid")
		email := c.Get("X-Auth-Email")

		if uid != "" && email == "" {
			var user models.User

			err := rcache.Get(ctx, uid, &user)
			if err != nil && err != cache.ErrCacheMiss {
				return handlers.FiberJsonResponse(c, fiber.StatusInternalServerError, "error", "failed get user from cache", err.Error())
			}

			if err == cache.ErrCacheMiss {
				stored, dbErr := userDB.GetUserByAuthUID(ctx, uid)
				if dbErr == nil {
					user = *stored
					if err = rcache.Set(&cache.Item{
						Ctx:   ctx,
						Key:   uid,
						Value: &user,
						TTL:   24 * time.Hour,
					}); err != nil {
						l.Errorf("failed to cache user %s: %v", uid, err)
					}
				}
			}
			email = user.Email
		}

		c.Locals(handlers.IdentityLocal, models.Identity{UID: uid, Email: email})
		return c.Next()
	}
}
