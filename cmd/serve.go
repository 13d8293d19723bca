// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/canonical/tenant-access-service/pkg/audit"
	"github.com/canonical/tenant-access-service/pkg/authentication"
	"github.com/canonical/tenant-access-service/pkg/enrollment"
	"github.com/canonical/tenant-access-service/pkg/jobs"
	"github.com/canonical/tenant-access-service/pkg/license"
	"github.com/canonical/tenant-access-service/pkg/tokens"
	"github.com/canonical/tenant-access-service/pkg/web"
	"github.com/canonical/tenant-access-service/pkg/webhooks"
)

// health checks stay reachable without credentials or a license
const healthMethodPrefix = "/grpc.health.v1.Health/"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve starts the web server",
	Long:  `Launch the HTTP API, the gRPC health server and, unless WORKER_ENABLED is false, the job sweeper`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := serve(); err != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() error {
	specs, err := loadSpecs()
	if err != nil {
		return err
	}

	a, err := newApp(specs, true)
	if err != nil {
		return err
	}
	defer a.close()

	logger := a.logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var authMiddleware *authentication.Middleware
	if specs.AuthenticationEnabled {
		verifier, err := authentication.NewJWTAuthenticator(
			ctx,
			specs.OIDCIssuer,
			specs.OIDCJWKSURL,
			specs.AllowedSubjects,
			specs.RequiredScope,
			a.tracer,
			a.monitor,
			logger,
		)
		if err != nil {
			return fmt.Errorf("failed to set up authentication: %v", err)
		}
		authMiddleware = authentication.NewMiddleware(verifier, a.tracer, a.monitor, logger)
	} else {
		logger.Warnf("Authentication is disabled, trusting the %s header", authentication.PrincipalHeader)
		authMiddleware = authentication.NewTrustedHeaderMiddleware(a.tracer, a.monitor, logger)
	}

	resolver := license.NewResolver(a.storage, specs.SuperAdminPrincipals, a.tracer, a.monitor, logger)
	licenseMiddleware := license.NewMiddleware(resolver, a.licenses, a.tracer, a.monitor, logger)
	gate := enrollment.NewGate(a.storage, a.tracer, a.monitor, logger)

	router := web.NewRouter(
		web.APIs{
			License:    license.NewAPI(a.licenses, logger),
			Enrollment: enrollment.NewAPI(a.enrollments, gate, logger),
			Tokens:     tokens.NewAPI(a.tokens, specs.TokenRateLimit, specs.TokenRateBurst, logger),
			Webhooks:   webhooks.NewAPI(webhooks.NewService(a.licenses, specs.BillingWebhookSecret, specs.BillingWebhookInsecure, a.tracer, a.monitor, logger), logger),
			Audit:      audit.NewAPI(a.storage, logger),
			Jobs:       jobs.NewAPI(a.queue, logger),
		},
		authMiddleware,
		licenseMiddleware,
		gate,
		a.dbClient,
		a.tracer,
		a.monitor,
		logger,
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%v", specs.Port),
		WriteTimeout: time.Second * 60,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      router,
	}

	lis, err := net.Listen("tcp", fmt.Sprintf("0.0.0.0:%v", specs.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen on grpc port: %v", err)
	}

	healthServer := health.NewServer()
	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			authMiddleware.UnaryInterceptor(healthMethodPrefix),
			licenseMiddleware.GRPCInterceptor(healthMethodPrefix),
		),
	)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Infof("Starting HTTP server on port %v", specs.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Infof("Starting gRPC server on port %v", specs.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("failed to serve gRPC: %w", err)
		}
		return nil
	})

	if specs.WorkerEnabled {
		worker, err := a.newWorker()
		if err != nil {
			return fmt.Errorf("failed to set up the job worker: %v", err)
		}
		g.Go(func() error {
			return worker.Run(gctx, specs.SweepInterval)
		})
	} else {
		logger.Info("Job worker is disabled, run `app worker` separately")
	}

	g.Go(func() error {
		<-gctx.Done()

		logger.Security().SystemShutdown()
		healthServer.Shutdown()

		// Create a deadline to wait for.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		grpcServer.GracefulStop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil
	})

	logger.Security().SystemStartup()

	return g.Wait()
}
