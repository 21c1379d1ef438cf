package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Mailaender/vaisalad/internal/config"
	"github.com/Mailaender/vaisalad/internal/httpapi"
	"github.com/Mailaender/vaisalad/internal/link"
	"github.com/Mailaender/vaisalad/internal/mqtt"
	"github.com/Mailaender/vaisalad/internal/store"
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"serialDevice", cfg.SerialDevice,
		"serialBaud", cfg.SerialBaud,
		"serialReadTimeout", cfg.SerialReadTimeout,
		"reconnectBackoff", cfg.ReconnectBackoff,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"stationID", cfg.StationID,
	)

	st := store.New()

	var pub link.Publisher
	var mqttClient *mqtt.Client
	if cfg.MQTTBroker != "" {
		mqttClient = mqtt.NewClient(cfg)
		// Short timeout for the initial connect so a down broker does not
		// block startup; paho keeps retrying in the background.
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		err := mqttClient.Connect(connectCtx)
		connectCancel()
		if err != nil {
			slog.Warn("mqtt connection failed (continuing without broker)", "error", err)
		}
		pub = mqttClient
	}

	linkCtx, linkCancel := context.WithCancel(ctx)
	defer linkCancel()

	manager := link.NewManager(cfg, st, pub)
	linkDone := make(chan struct{})
	go func() {
		defer close(linkDone)
		manager.Run(linkCtx)
	}()

	mux := httpapi.NewMux(st)
	srv := httpapi.NewServer(cfg, mux)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		// The server died on its own; stop acquisition before returning.
		linkCancel()
		<-linkDone
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if mqttClient != nil {
		slog.Info("mqtt disconnecting")
		mqttClient.Disconnect()
	}

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err := <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-linkDone
	return ctx.Err()
}
