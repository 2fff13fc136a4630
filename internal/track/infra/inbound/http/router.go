package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterTrackRoutes registra las rutas HTTP del dominio de pistas.
func RegisterTrackRoutes(r *gin.Engine, handler *TrackHandler) {
	r.GET("/tracks", handler.ListTracks)      // Página filtrada y ordenada
	r.GET("/count/:table", handler.CountRows) // Conteo de una tabla conocida
	r.GET("/averages", handler.Averages)      // Medias de métricas de audio
}

// RegisterOpsRoutes registra /health y, si metrics no es nil, /metrics.
func RegisterOpsRoutes(r *gin.Engine, metrics http.Handler) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}
}
