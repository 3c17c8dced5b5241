package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"supplyscore/internal/configuration"
	"supplyscore/internal/order"
	"supplyscore/internal/server"

	"github.com/jaswdr/faker"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "/etc/supplyscore/config.yaml"

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "supplyscore",
		Short:         "Supplier reliability scoring service",
		Long:          `supplyscore aggregates supplier order history, fits a linear model on heuristic reliability labels and serves the resulting 0-100 scores.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "configuration file")

	root.AddCommand(
		newServeCommand(&configPath),
		newRunCommand(&configPath, "train", "Fetch orders, train a new model and print the scores", runTrain),
		newRunCommand(&configPath, "predict", "Score suppliers with the persisted model, training one if needed", runPredict),
		newGenerateCommand(),
	)
	return root
}

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP scoring API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			appCtx, appCancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer appCancel()

			app, err := newApplication(appCtx, config)
			if err != nil {
				return err
			}
			defer app.Close()

			router := server.NewApiV1Router(app.service, app.trainings, app.metrics.Handler())
			srv := server.NewServer(config.Server.Address, config.Server.ReadTimeout, config.Server.WriteTimeout, router)

			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					slog.Error("Server failed", "error", err)
					appCancel()
				}
			}()
			slog.Info("Server listening " + config.Server.Address)
			<-appCtx.Done()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second*10)
			defer shutdownCancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("Server shutdown", "error", err)
			}
			slog.Info("Server stopped")
			return nil
		},
	}
}

type runFunc func(ctx context.Context, app *application) (any, error)

func runTrain(ctx context.Context, app *application) (any, error) {
	return app.service.TrainAndScore(ctx)
}

func runPredict(ctx context.Context, app *application) (any, error) {
	return app.service.PredictScore(ctx)
}

// newRunCommand builds a one-shot command printing the result of run as JSON.
func newRunCommand(configPath *string, use, short string, run runFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			app, err := newApplication(cmd.Context(), config)
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := run(cmd.Context(), app)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
}

func newGenerateCommand() *cobra.Command {
	var (
		suppliers int
		count     int
		seed      int64
		output    string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write synthetic order records as a JSON array",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if suppliers <= 0 || count < suppliers {
				return fmt.Errorf("need at least one supplier and count >= suppliers, got suppliers=%d count=%d", suppliers, count)
			}

			fake := faker.New()
			if seed != 0 {
				fake = faker.NewWithSeed(rand.NewSource(seed))
			}
			records := order.Generate(fake, suppliers, count)

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return writeJSON(out, records)
		},
	}
	cmd.Flags().IntVar(&suppliers, "suppliers", 10, "number of suppliers")
	cmd.Flags().IntVar(&count, "count", 200, "number of order records")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks a random one)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func loadConfig(path string) (*configuration.AppConfig, error) {
	config, err := configuration.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("unable to load configuration: %w", err)
	}
	prepareLogger(config.Logger.Level)
	return config, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
