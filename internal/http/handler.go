package httpx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/52poke/kvgate/internal/cache"
)

const (
	bodyPong     = "pong"
	bodyNotFound = "not found"
	bodySetOK    = "set ok"
	bodyDelOK    = "del ok"
)

// Handler translates the four public routes into backend calls. Backend
// failures never reach the client: get reports them as a miss, set and del
// still answer ok. The error is logged instead.
type Handler struct {
	Backend cache.Backend
	Logger  *zap.Logger
}

func NewHandler(backend cache.Backend, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Backend: backend, Logger: logger}
}

// Router binds the gateway routes. Extra middleware runs after recovery.
func (h *Handler) Router(middleware ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	// match on the escaped path so an encoded "/" stays inside the key;
	// PathKey does the single decode
	r.UseRawPath = true
	r.UnescapePathValues = false
	r.Use(gin.Recovery())
	r.Use(middleware...)

	r.GET("/ping", h.Ping)
	r.GET("/get/:key", h.Get)
	r.POST("/set", h.Set)
	r.POST("/del", h.Del)
	return r
}

func (h *Handler) Ping(c *gin.Context) {
	c.String(http.StatusOK, bodyPong)
}

func (h *Handler) Get(c *gin.Context) {
	key := PathKey(c.Request, "/get/", c.Param("key"))
	val, err := h.Backend.Get(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			h.Logger.Debug("cache miss", zap.String("key", key))
		} else {
			h.Logger.Error("cache get failed", zap.String("key", key), zap.Error(err))
		}
		c.String(http.StatusNotFound, bodyNotFound)
		return
	}
	c.String(http.StatusOK, val)
}

func (h *Handler) Set(c *gin.Context) {
	req, err := DecodeSet(c.Request)
	if err != nil {
		writeRequestError(c, err)
		return
	}
	if err := h.Backend.Set(c.Request.Context(), req.Key, req.Value, req.TTL); err != nil {
		fields := []zap.Field{zap.String("key", req.Key), zap.Error(err)}
		if req.TTL != nil {
			fields = append(fields, zap.Int32("ttl", *req.TTL))
		}
		h.Logger.Error("cache set failed", fields...)
	}
	c.String(http.StatusOK, bodySetOK)
}

func (h *Handler) Del(c *gin.Context) {
	req, err := DecodeDel(c.Request)
	if err != nil {
		writeRequestError(c, err)
		return
	}
	if err := h.Backend.Del(c.Request.Context(), req.Key); err != nil {
		h.Logger.Error("cache del failed", zap.String("key", req.Key), zap.Error(err))
	}
	c.String(http.StatusOK, bodyDelOK)
}

func writeRequestError(c *gin.Context, err error) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		c.String(reqErr.Status, reqErr.Msg)
		return
	}
	c.String(http.StatusBadRequest, err.Error())
}
