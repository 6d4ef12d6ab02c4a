package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/mall-console/internal/apiclient"
	"github.com/suPer8Hu/mall-console/internal/app"
	"github.com/suPer8Hu/mall-console/internal/common"
	"github.com/suPer8Hu/mall-console/internal/httpapi/middleware"
	"github.com/suPer8Hu/mall-console/internal/logger"
	"github.com/suPer8Hu/mall-console/internal/permission"
)

type Handler struct {
	App *app.App
}

func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}

// failErr maps an error from the stores or the upstream API to an envelope.
func failErr(c *gin.Context, err error) {
	var (
		ve *apiclient.ValidationError
		se *apiclient.ServerError
		te *apiclient.TransportError
	)
	switch {
	case errors.As(err, &ve):
		common.Fail(c, http.StatusBadRequest, 10002, ve.Error())
	case errors.Is(err, apiclient.ErrUnauthorized):
		common.Fail(c, http.StatusUnauthorized, 40101, apiclient.UserMessage(err))
	case errors.Is(err, permission.ErrUnknownView):
		common.Fail(c, http.StatusInternalServerError, 50010, "route configuration error")
	case errors.As(err, &se):
		common.Fail(c, http.StatusBadGateway, 50201, apiclient.UserMessage(err))
	case errors.As(err, &te):
		common.Fail(c, http.StatusBadGateway, 50202, apiclient.UserMessage(err))
	default:
		common.Fail(c, http.StatusInternalServerError, 50000, "internal error")
	}
	logger.WithField(middleware.RequestIDKey, c.GetString(middleware.RequestIDKey)).
		Warnf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
}

func pageQuery(c *gin.Context) (int, bool) {
	v := c.DefaultQuery("page", "1")
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		common.Fail(c, http.StatusBadRequest, 10004, "invalid page")
		return 0, false
	}
	return n, true
}
