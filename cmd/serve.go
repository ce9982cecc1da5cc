package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kozaktomas/photo-faces/internal/config"
	"github.com/kozaktomas/photo-faces/internal/detect"
	"github.com/kozaktomas/photo-faces/internal/identity"
	"github.com/kozaktomas/photo-faces/internal/pipeline"
	"github.com/kozaktomas/photo-faces/internal/store"
	"github.com/kozaktomas/photo-faces/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Photo Faces web server.
The server accepts photo uploads, tags them with person identities, and
exposes the identity CRUD and similarity API.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// lazyInitProcessor retries detector initialization before each photo so a
// detection service that comes up after the API does not require a restart.
// Init is a no-op once it has succeeded.
type lazyInitProcessor struct {
	detector  *detect.Orchestrator
	processor *pipeline.Processor
}

func (p *lazyInitProcessor) ProcessPhoto(ctx context.Context, photoUID string, imageData []byte, namespace string) (*identity.PhotoResult, error) {
	if err := p.detector.Init(ctx); err != nil {
		return nil, fmt.Errorf("face detection service is not available: %w", err)
	}
	return p.processor.ProcessPhoto(ctx, photoUID, imageData, namespace)
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng, err := buildEngine(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer eng.close()

	// The detection service may come up after us. A failed init here only
	// delays readiness; lazyInitProcessor retries before each photo until
	// the health check passes.
	if err := eng.detector.Init(ctx); err != nil {
		fmt.Printf("Warning: face detection service not reachable yet: %v\n", err)
	}

	port, host := resolveServeHostPort(cmd)

	server := web.NewServer(cfg, port, host, web.Deps{
		Store:     eng.store,
		Processor: &lazyInitProcessor{detector: eng.detector, processor: eng.processor},
		Artifacts: eng.artifacts,
		Index:     store.NewRepresentativeIndex(),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Photo Faces API on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
