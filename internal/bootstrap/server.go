package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nicoguerrero/boleteria/api"
	"github.com/nicoguerrero/boleteria/config"
	"github.com/nicoguerrero/boleteria/internal/service/redemption"
	"github.com/nicoguerrero/boleteria/internal/service/reservation"
	"github.com/nicoguerrero/boleteria/internal/service/zones"
)

// Run starts the HTTP API server and blocks until the context is canceled
// or the server fails.
func Run(ctx context.Context, cfg *config.Config, reservationSvc reservation.ReservationUseCase, redemptionSvc redemption.RedemptionUseCase, zoneSvc zones.ZoneUseCase) error {
	router := gin.New()
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")
	api.NewOrderHandler(reservationSvc).Register(v1.Group("/orders"))
	api.NewTicketHandler(redemptionSvc).Register(v1.Group("/tickets"))
	api.NewZoneHandler(zoneSvc).Register(v1.Group("/zones"))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}
