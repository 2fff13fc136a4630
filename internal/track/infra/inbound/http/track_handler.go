package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/davicafu/metamood/internal/track/application"
	trackDomain "github.com/davicafu/metamood/internal/track/domain"
	"github.com/davicafu/metamood/pkg/utils"
)

// TrackHandler encapsula los endpoints HTTP de consulta de pistas.
type TrackHandler struct {
	service *application.TrackService
	log     *zap.Logger
}

// NewTrackHandler crea un nuevo TrackHandler.
func NewTrackHandler(service *application.TrackService, log *zap.Logger) *TrackHandler {
	return &TrackHandler{service: service, log: log}
}

// ---------------- Handlers ----------------

// ListTracks endpoint GET /tracks?pageSize=&pageNumber=&sortBy=&<campo>[_min|_max]=
func (h *TrackHandler) ListTracks(c *gin.Context) {
	views, err := h.service.GetTrackPageFromQuery(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		h.sendError(c, err)
		return
	}

	if len(views) == 0 {
		utils.SendNotFound(c, "no tracks found")
		return
	}
	utils.SendSuccess(c, http.StatusOK, views)
}

// CountRows endpoint GET /count/:table
func (h *TrackHandler) CountRows(c *gin.Context) {
	n, err := h.service.Count(c.Request.Context(), c.Param("table"))
	if err != nil {
		h.sendError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{"count": n})
}

// Averages endpoint GET /averages
func (h *TrackHandler) Averages(c *gin.Context) {
	avg, err := h.service.Averages(c.Request.Context())
	if err != nil {
		h.sendError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, avg)
}

// sendError traduce errores de dominio a códigos HTTP. Los mensajes de
// validación se exponen tal cual; los de backend no.
func (h *TrackHandler) sendError(c *gin.Context, err error) {
	var verr *trackDomain.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.SendBadRequest(c, verr.Msg)
	case errors.Is(err, trackDomain.ErrUnknownTable):
		utils.SendNotFound(c, "table not found")
	default:
		h.log.Error("Track request failed", zap.String("path", c.FullPath()), zap.Error(err))
		utils.SendInternalServerError(c, "internal error")
	}
}
