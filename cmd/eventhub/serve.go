package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"eventhub/internal/certificate"
	"eventhub/internal/handlers"
	"eventhub/internal/workflow"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().String("addr", "0.0.0.0:8080", "listen address (env SERVER_ADDRESS)")
	cmd.Flags().String("reports-dir", "./uploads/reports", "directory for approval certificates")
	cmd.Flags().Bool("strict-sponsor-amount", false, "only accept sponsors for approved proposals, up to the outstanding requirement")
	_ = a.v.BindPFlag("server.address", cmd.Flags().Lookup("addr"))
	_ = a.v.BindPFlag("reports.dir", cmd.Flags().Lookup("reports-dir"))
	_ = a.v.BindPFlag("workflow.strict_sponsor_amount", cmd.Flags().Lookup("strict-sponsor-amount"))
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	store, closeStore, err := a.openBackend(ctx)
	if err != nil {
		return err
	}
	defer closeStore.Close()

	rec, closeRedis, err := a.recorders(ctx, store)
	if err != nil {
		return err
	}
	defer closeRedis.Close()

	svc := workflow.New(store,
		workflow.WithLogger(a.logger),
		workflow.WithIdentityResolver(store),
		workflow.WithAuditRecorder(rec),
		workflow.WithApprovalHook(certificate.ApprovalHook(certificate.NewRenderer(a.cfg.ReportsDir), store)),
		workflow.WithStrictSponsorAmount(a.cfg.StrictSponsorAmount),
	)

	srv := &http.Server{
		Addr:              a.cfg.ServerAddress,
		Handler:           handlers.NewHandler(svc, a.logger).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting server", slog.String("addr", srv.Addr), slog.String("store", a.cfg.Store))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	return errors.Wrap(srv.Shutdown(shutdownCtx), "shutdown")
}
