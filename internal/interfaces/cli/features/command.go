// Package features implements the operator commands for the feature catalog and
// its overrides.
package features

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	featureApp "github.com/bodrix-ai/bodrix/internal/application/feature"
	"github.com/bodrix-ai/bodrix/internal/application/feature/dto"
	"github.com/bodrix-ai/bodrix/internal/application/feature/registry"
	"github.com/bodrix-ai/bodrix/internal/application/feature/usecases"
	"github.com/bodrix-ai/bodrix/internal/infrastructure/catalog"
	"github.com/bodrix-ai/bodrix/internal/infrastructure/config"
	"github.com/bodrix-ai/bodrix/internal/infrastructure/database"
	httpRouter "github.com/bodrix-ai/bodrix/internal/interfaces/http"
	"github.com/bodrix-ai/bodrix/internal/shared/constants"
	"github.com/bodrix-ai/bodrix/internal/shared/logger"
	"github.com/bodrix-ai/bodrix/internal/shared/version"
)

// cliActor is recorded as the author of overrides written from the command line.
const cliActor = "cli"

var (
	env        string
	configPath string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "features",
		Short: "Inspect and manage features",
		Long:  `List and validate the feature catalog, toggle features and move override snapshots between environments.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", constants.EnvDevelopment, "Environment (development, staging, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	cmd.AddCommand(
		newListCommand(),
		newValidateCommand(),
		newToggleCommand("enable", true),
		newToggleCommand("disable", false),
		newExportCommand(),
		newImportCommand(),
	)

	return cmd
}

// session is a bootstrapped feature service over the configured database.
type session struct {
	service *featureApp.ServiceDDD
	close   func()
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load(env, configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	// Command output goes to stdout, so logs move to stderr.
	if strings.EqualFold(cfg.Logger.OutputPath, "stdout") || cfg.Logger.OutputPath == "" {
		cfg.Logger.OutputPath = "stderr"
	}
	if err := logger.Init(&cfg.Logger, cfg.Server.Mode); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	db, err := database.Open(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	closers := []func(){func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// With sync enabled, overrides changed here are published to running servers.
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { _ = redisClient.Close() })
	}

	container, err := httpRouter.NewContainer(db, redisClient, cfg, log)
	if err != nil {
		closeAll()
		return nil, err
	}
	if _, err := container.Bootstrap(ctx); err != nil {
		closeAll()
		return nil, err
	}

	return &session{service: container.FeatureService(), close: closeAll}, nil
}

func newListCommand() *cobra.Command {
	var req dto.ListFeaturesRequest

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List features with their effective state",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			return writeFeatureTable(cmd.OutOrStdout(), s.service.ListAdmin(req, dto.LocaleEnglish))
		},
	}

	cmd.Flags().StringVar(&req.Category, "category", "", "Only list features in this category")
	cmd.Flags().StringVar(&req.Status, "status", "", "Only list features with this status")

	return cmd
}

func writeFeatureTable(w io.Writer, features []*dto.AdminFeatureResponse) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tSTATUS\tENABLED\tEFFECTIVE\tOVERRIDE\tDEPENDENCIES")
	for _, f := range features {
		override := "-"
		if f.Override != nil {
			override = fmt.Sprintf("%t", *f.Override)
		}
		deps := "-"
		if len(f.Dependencies) > 0 {
			deps = strings.Join(f.Dependencies, ",")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%t\t%s\t%s\n",
			f.ID, f.Category, f.Status, f.Enabled, f.EffectiveEnabled, override, deps)
	}
	return tw.Flush()
}

func newValidateCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a catalog for missing dependencies and cycles",
		Long: `Validate the catalog file given with --file, or the stored catalog when no
file is given. Exits non-zero when the catalog is invalid.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var report *dto.ValidationReport
			if file != "" {
				r, err := validateFile(cmd.OutOrStdout(), file)
				if err != nil {
					return err
				}
				report = r
			} else {
				s, err := openSession(cmd.Context())
				if err != nil {
					return err
				}
				defer s.close()
				report = s.service.ValidateCatalog()
			}
			return writeReport(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Catalog file to validate")

	return cmd
}

func validateFile(w io.Writer, path string) (*dto.ValidationReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	doc, err := catalog.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	if version.IsNewerCatalog(doc.Version) {
		fmt.Fprintf(w, "note: catalog version %s is newer than %s; unknown semantics may be ignored\n",
			doc.Version, version.CatalogSchema)
	}

	log := logger.NewNop()
	return usecases.NewValidateCatalogUseCase(registry.New(log), log).ExecuteDefinitions(doc.Features)
}

func writeReport(w io.Writer, report *dto.ValidationReport) error {
	if report.Valid {
		fmt.Fprintf(w, "catalog is valid (%d features)\n", report.Features)
		return nil
	}

	for id, missing := range report.MissingDependencies {
		fmt.Fprintf(w, "%s: missing dependencies %s\n", id, strings.Join(missing, ", "))
	}
	for _, cycle := range report.Cycles {
		fmt.Fprintf(w, "dependency cycle: %s -> %s\n", strings.Join(cycle, " -> "), cycle[0])
	}
	return fmt.Errorf("catalog is invalid")
}

func newToggleCommand(use string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <feature-id>",
		Short: strings.ToUpper(use[:1]) + use[1:] + " a feature in the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			toggle := s.service.DisableFeature
			if enabled {
				toggle = s.service.EnableFeature
			}
			if _, err := toggle(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %sd\n", args[0], use)
			return nil
		},
	}
}

func newExportCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the current override snapshot as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			data, err := s.service.ExportSnapshot()
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(out, data, 0o600); err != nil {
				return fmt.Errorf("failed to write snapshot: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "snapshot written to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: stdout)")

	return cmd
}

func newImportCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Apply an exported override snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read snapshot: %w", err)
			}

			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			result, err := s.service.ImportSnapshot(cmd.Context(), data, cliActor)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d overrides (context replaced: %t)\n",
				result.Overrides, result.ContextReplaced)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Snapshot file to import (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
