// Package handlers holds the gin controllers for platforms, games, users,
// login and user games, and the router that mounts them.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/eerojala/My-video-game-collection/apperr"
	"github.com/eerojala/My-video-game-collection/auth"
	"github.com/eerojala/My-video-game-collection/cache"
	"github.com/eerojala/My-video-game-collection/integrity"
	"github.com/eerojala/My-video-game-collection/middleware"
	"github.com/eerojala/My-video-game-collection/models"
	"github.com/eerojala/My-video-game-collection/monitoring"
	"github.com/eerojala/My-video-game-collection/store"
	"github.com/eerojala/My-video-game-collection/utils"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"
)

// Cache stores catalog responses. *cache.Redis satisfies it.
type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CatalogGeneration(ctx context.Context) (int64, error)
	InvalidateCatalog(ctx context.Context) error
}

type Deps struct {
	Store       *store.Store
	Coordinator *integrity.Coordinator
	Auth        *auth.Service
	Cache       Cache
	Metrics     *monitoring.Metrics
	Log         *logrus.Logger
}

type Handler struct {
	store   *store.Store
	coord   *integrity.Coordinator
	auth    *auth.Service
	cache   Cache
	metrics *monitoring.Metrics
	log     *logrus.Logger
}

func New(d Deps) *Handler {
	h := &Handler{
		store:   d.Store,
		coord:   d.Coordinator,
		auth:    d.Auth,
		cache:   d.Cache,
		metrics: d.Metrics,
		log:     d.Log,
	}
	if h.log == nil {
		h.log = utils.NewLogger(utils.LoggerOptions{})
	}
	if h.coord == nil {
		h.coord = integrity.New(d.Store, h.log)
	}
	if h.cache == nil {
		h.cache = nopCache{}
	}
	if h.metrics == nil {
		h.metrics = monitoring.NewMetrics()
	}
	return h
}

type nopCache struct{}

func (nopCache) Get(context.Context, string, any) error                { return cache.ErrMiss }
func (nopCache) Set(context.Context, string, any, time.Duration) error { return nil }
func (nopCache) CatalogGeneration(context.Context) (int64, error) { return 0, nil }
func (nopCache) InvalidateCatalog(context.Context) error          { return nil }

// messages are the client-facing texts for one entity kind.
type messages struct {
	malformed string
	notFound  string
	invalid   string
}

var (
	platformMessages = messages{
		malformed: "Malformatted platform id",
		notFound:  "No platform found matching id",
		invalid:   "Invalid platform parameters",
	}
	gameMessages = messages{
		malformed: "Malformatted game id",
		notFound:  "No game found matching id",
		invalid:   "Invalid game parameters",
	}
	userMessages = messages{
		malformed: "Malformatted user id",
		notFound:  "No user found matching id",
		invalid:   "Invalid user parameters",
	}
	entryMessages = messages{
		malformed: "Malformatted user game id",
		notFound:  "No user game found matching id",
		invalid:   "Invalid user game parameters",
	}
)

// lookup maps a failed id lookup onto the entity's messages.
func (m messages) lookup(err error) error {
	switch {
	case errors.Is(err, store.ErrMalformedID):
		return apperr.MalformedID(m.malformed)
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(m.notFound)
	default:
		return err
	}
}

// fail writes err as {error: message}. Only the message reaches the client;
// unexpected failures are attached to the context for middleware.ErrorLogger.
func (h *Handler) fail(c *gin.Context, err error) {
	appErr := apperr.From(err)
	entry := h.log.WithFields(logrus.Fields{
		"kind":   appErr.Kind.String(),
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	})
	switch {
	case appErr.Kind == apperr.KindUnexpected:
		_ = c.Error(appErr)
	case len(appErr.Violations) > 0:
		entry.WithField("violations", appErr.Violations).Info(appErr.Message)
	default:
		entry.Debug(appErr.Message)
	}
	c.AbortWithStatusJSON(appErr.Status(), gin.H{"error": appErr.Message})
}

// bind decodes the JSON body into dest and runs the entity rules on it.
// The body stays readable for a second bind.
func bind(c *gin.Context, dest any, message string) error {
	if err := c.ShouldBindBodyWith(dest, binding.JSON); err != nil {
		return apperr.Validation(message, utils.BindViolations(err))
	}
	if violations := utils.Validate(dest); len(violations) > 0 {
		return apperr.Validation(message, violations)
	}
	return nil
}

// authorize runs the single permission check guarding a privileged action.
func (h *Handler) authorize(c *gin.Context, resource auth.Resource, action auth.Action, message string) (*models.User, error) {
	user, err := h.auth.Permit(c.Request.Context(), middleware.Token(c), resource, action)
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		return nil, apperr.Unauthorized(message)
	case errors.Is(err, auth.ErrForbidden):
		return nil, apperr.Forbidden(message)
	case err != nil:
		return nil, err
	}
	c.Set(middleware.UserIDKey, user.ID)
	return user, nil
}

func (h *Handler) invalidateCatalog(ctx context.Context) {
	if err := h.cache.InvalidateCatalog(ctx); err != nil {
		h.log.WithError(err).Warn("catalog cache invalidation failed")
	}
}

// cachedJSON serves a catalog read from the cache, loading and storing it on
// a miss. Errors are never cached. Entries are keyed by the catalog
// generation read before loading, so a load that races a write is stored
// under a generation no later read asks for.
func cachedJSON[T any](h *Handler, c *gin.Context, key string, load func(ctx context.Context) (T, error)) {
	ctx := c.Request.Context()

	gen, err := h.cache.CatalogGeneration(ctx)
	if err != nil {
		h.log.WithError(err).Warn("cache generation read failed")
		out, err := load(ctx)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
		return
	}
	key += ":gen=" + strconv.FormatInt(gen, 10)

	var out T
	err = h.cache.Get(ctx, key, &out)
	if err == nil {
		h.log.WithField("key", key).Debug("Cache HIT")
		c.JSON(http.StatusOK, out)
		return
	}
	if !errors.Is(err, cache.ErrMiss) {
		h.log.WithError(err).WithField("key", key).Warn("cache read failed")
	}

	out, err = load(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.cache.Set(ctx, key, out, cache.CatalogTTL); err != nil {
		h.log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
	c.JSON(http.StatusOK, out)
}
