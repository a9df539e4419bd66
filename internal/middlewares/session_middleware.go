package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"

	"ucmodeler/internal/errs"
	"ucmodeler/internal/models"
	"ucmodeler/internal/repositories"
	"ucmodeler/internal/responses"
	"ucmodeler/internal/utils"
)

const (
	CookieName = "ucmodeler_session"

	sessionIDKey = "sid"
	stateKey     = "sessionState"
	storeKey     = "sessionStore"
	endedKey     = "sessionEnded"
)

// Session attaches the caller's state to the request. The cookie only
// carries the session id; the state lives in repo and is saved back once the
// handler returns.
func Session(store sessions.Store, repo repositories.SessionRepository, ttl time.Duration, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		// A cookie that fails to decode (rotated secret) still yields a fresh session.
		sess, _ := store.Get(c.Request, CookieName)

		var state *models.SessionState
		if raw, ok := sess.Values[sessionIDKey].(string); ok {
			if id, ok := utils.ParseUUID(raw); ok {
				loaded, err := repo.Get(ctx, id)
				switch {
				case err == nil:
					state = loaded
				case !errs.Is(err, errs.NotFound):
					responses.Error(c, err)
					return
				}
			}
		}

		if state == nil {
			state = &models.SessionState{}
		}
		state.Prepare()

		sess.Values[sessionIDKey] = state.ID.String()
		sess.Options.MaxAge = int(ttl.Seconds())
		sess.Options.HttpOnly = true
		if err := sess.Save(c.Request, c.Writer); err != nil {
			responses.Error(c, errs.E(errs.Internal, "session.Cookie", err))
			return
		}

		c.Set(stateKey, state)
		c.Set(storeKey, store)
		c.Next()

		if c.GetBool(endedKey) {
			if err := repo.Delete(ctx, state.ID); err != nil {
				log.Warn().Err(err).Str("session", state.ID.String()).Msg("deleting session state")
			}
			return
		}

		if err := repo.Save(ctx, state); err != nil {
			log.Error().Err(err).Str("session", state.ID.String()).Msg("saving session state")
		}
	}
}

// SessionState returns the state attached by Session.
func SessionState(c *gin.Context) *models.SessionState {
	if v, ok := c.Get(stateKey); ok {
		if state, ok := v.(*models.SessionState); ok {
			return state
		}
	}

	return &models.SessionState{}
}

// EndSession expires the cookie and drops the stored state after the
// handler returns. It must run before the response is written.
func EndSession(c *gin.Context) {
	c.Set(endedKey, true)

	v, ok := c.Get(storeKey)
	if !ok {
		return
	}
	store := v.(sessions.Store)

	sess, _ := store.Get(c.Request, CookieName)
	sess.Options.MaxAge = -1
	_ = sess.Save(c.Request, c.Writer)
}
