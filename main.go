package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/cloud"
	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/config"
	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/engine"
	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/ota"
	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/profile"
	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/statusserver"
	"github.com/rodrigo-s-lange/easysmart-iiot-gateway/transport"
)

// Version info - increment based on change magnitude:
// Major (x.0.0): Breaking changes, major rewrites
// Minor (0.y.0): New features, significant enhancements
// Patch (0.0.z): Bug fixes, minor improvements
var Version = "0.1.0"

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if logFile, err := os.OpenFile(cfg.Logging.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
		log.SetOutput(logFile)
	}
	if lvl, err := log.ParseLevel(cfg.Logging.Level); err == nil {
		log.SetLevel(lvl)
	}

	log.Infof("Starting gateway v%s", Version)
	log.Infof("  Device: %s (profile %s)", cfg.Device.ID, cfg.Device.Profile)
	log.Infof("  Transport: %s", cfg.Transport.Kind)
	log.Infof("  Status port: %d", cfg.Status.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Shutting down...")
		cancel()
	}()

	tr, err := buildTransport(cfg.Transport)
	if err != nil {
		log.Fatalf("Failed to build transport: %v", err)
	}

	prof, err := profile.FromName(cfg.Device.Profile)
	if err != nil {
		log.Fatalf("Unknown profile %q: %v", cfg.Device.Profile, err)
	}

	eng, err := engine.New(engine.Config{
		DeviceID:   cfg.Device.ID,
		LoopPeriod: cfg.Device.LoopPeriod,
		Profile:    prof,
		Cloud: cloud.Config{
			DeviceID:           cfg.Cloud.DeviceID,
			HardwareID:         cfg.Cloud.HardwareID,
			IdentityKey:        cfg.Cloud.IdentityKey,
			ManufacturingKey:   cfg.Cloud.ManufacturingKey,
			BootstrapURL:       cfg.Cloud.BootstrapURL,
			SecretURL:          cfg.Cloud.SecretURL,
			APIBaseURL:         cfg.Cloud.APIBaseURL,
			BrokerURL:          cfg.Cloud.BrokerURL,
			MQTTUsername:       cfg.Cloud.MQTTUsername,
			DeviceSecret:       cfg.Cloud.DeviceSecret,
			TopicPrefix:        cfg.Cloud.TopicPrefix,
			MQTTClientID:       cfg.Cloud.MQTTClientID,
			MQTTKeepaliveSec:   cfg.Cloud.MQTTKeepaliveSec,
			BootstrapTimeout:   cfg.Cloud.BootstrapTimeout,
			MQTTConnectTimeout: cfg.Cloud.MQTTConnectTimeout,
		},
		OTA: ota.Config{
			ChunkSize: cfg.OTA.ChunkSize,
			TimeoutMS: cfg.OTA.TimeoutMS,
		},
	}, tr)
	if err != nil {
		log.Fatalf("Failed to init engine: %v", err)
	}

	statusSrv := statusserver.New(eng)

	poller := cloud.NewPoller(eng.Cloud(), cfg.Cloud.PollMinInterval)
	poller.OnChange(func(status cloud.Status) {
		log.Infof("Cloud status changed: %s", status)
		statusSrv.PublishEvent([]byte(fmt.Sprintf("cloud status: %s", status)))
	})

	go func() {
		// Poller.Run retries the cloud connect until it succeeds or hits a
		// terminal error; only once the cloud side is actually up do we
		// bring the engine the rest of the way up. eng.Start's own
		// Connect call then finds the client already connected and is a
		// fast no-op, leaving it to open the transport and start stepping.
		if err := poller.Run(ctx); err != nil {
			if ctx.Err() == nil {
				log.Errorf("Cloud poller stopped: %v", err)
			}
			return
		}

		if err := eng.Start(ctx); err != nil {
			log.Errorf("Engine start failed after cloud connect: %v", err)
			return
		}
		statusSrv.PublishEvent([]byte("engine started"))
		runLoop(ctx, eng, cfg.Device.LoopPeriod, statusSrv)
	}()

	addr := fmt.Sprintf(":%d", cfg.Status.Port)
	if err := statusSrv.ListenAndServe(ctx, addr); err != nil {
		log.Errorf("Status server error: %v", err)
	}

	_ = eng.Stop()
}

func runLoop(ctx context.Context, eng *engine.Engine, period time.Duration, statusSrv *statusserver.Server) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := eng.Step(ctx); err != nil {
				log.Errorf("Engine step fault: %v", err)
				statusSrv.PublishEvent([]byte(fmt.Sprintf("fault: %v", err)))
				return
			}
		}
	}
}

func buildTransport(cfg config.TransportConfig) (transport.Transport, error) {
	switch cfg.Kind {
	case "spi":
		return transport.NewSPITransport(transport.SPIConfig{
			MTU:         cfg.SPI.MTU,
			Bus:         cfg.SPI.Bus,
			FrequencyHz: cfg.SPI.FrequencyHz,
			ChipSelect:  cfg.SPI.ChipSelect,
		}, transport.NotSupportedSPIPort{}), nil
	case "uart":
		return transport.NewUARTTransport(transport.UARTConfig{
			MTU:      cfg.UART.MTU,
			Device:   cfg.UART.Device,
			BaudRate: cfg.UART.BaudRate,
		}, transport.NotSupportedUARTPort{}), nil
	case "internal", "":
		return transport.NewInternalTransport(transport.InternalConfig{}), nil
	default:
		return nil, fmt.Errorf("unknown transport kind %q", cfg.Kind)
	}
}
