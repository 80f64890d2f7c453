package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"servewise-backend/internal/controller"
	"servewise-backend/internal/db"
	"servewise-backend/internal/model"
	"servewise-backend/pkg/middleware"
	"servewise-backend/utilities"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		printStartUpBanner()

		rt, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer rt.log.Sync()

		conn := db.GetDB()
		if rt.cfg.DB.Initialize {
			if err := db.AutoMigrate(conn); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}

		a, err := newApp(conn, rt.cfg, rt.log)
		if err != nil {
			return err
		}

		r := gin.New()
		r.Use(gin.Recovery())
		r.Use(cors.New(corsConfig(rt.cfg.Context.CORSOrigins)))
		if rt.cfg.RequestDump {
			r.Use(middleware.RequestDumpMiddleware(rt.log))
		}

		var managerOnly gin.HandlerFunc
		if rt.cfg.Authentication.EnableTokenAuth {
			r.Use(utilities.AuthMiddleware("/health", "/auth/"))
			managerOnly = utilities.RequireRole(model.RoleManager)
		} else {
			rt.log.Warn("token authentication disabled")
		}
		controller.RegisterRoutes(r, a.services, managerOnly)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := &http.Server{
			Addr:    fmt.Sprintf("%s:%d", rt.cfg.Context.Host, rt.cfg.Context.Port),
			Handler: r,
		}
		errCh := make(chan error, 1)
		go func() {
			rt.log.Info("listening", "addr", srv.Addr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		case <-ctx.Done():
		}

		rt.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			rt.log.Error("shutdown", "error", err)
		}
		// Template fan-out and notifications run on the bus.
		a.bus.Wait()
		return nil
	},
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}

func printStartUpBanner() {
	figure.NewFigure("SERVEWISE", "", true).Print()

	fmt.Println("======================================================")
	fmt.Printf("SERVEWISE API (v%s)\n\n", version)
}
