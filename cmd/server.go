package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/englishschool/internal/auth"
	"github.com/example/englishschool/internal/config"
	"github.com/example/englishschool/internal/course"
	"github.com/example/englishschool/internal/db"
	"github.com/example/englishschool/internal/migrate"
	"github.com/example/englishschool/internal/notify"
	"github.com/example/englishschool/internal/placement"
	"github.com/example/englishschool/internal/web"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServerCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the web UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			rt, err := openRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			if migrateUp {
				if err := migrate.Up(ctx, rt.db, rt.logger); err != nil {
					return err
				}
			}

			users := auth.NewStore(rt.db)
			if err := checkHandler(ctx, users, rt.cfg.HandlerID); err != nil {
				return err
			}

			notifier, err := newNotifier(rt.cfg, rt.logger)
			if err != nil {
				return err
			}
			svc := placement.NewService(placement.NewRepo(rt.db), rt.cfg.PlacementOptions(), notifier, rt.logger)

			ws := &web.Server{
				Users:        users,
				Sessions:     auth.NewSessions(rt.cfg.CookieHashKey, rt.cfg.CookieBlockKey),
				Registration: auth.Registration{Users: users, TeacherCode: rt.cfg.TeacherRegistrationCode},
				Placement:    svc,
				Courses:      course.NewService(course.NewRepo(rt.db), users, rt.logger),
				Logger:       rt.logger,
				BaseURL:      rt.cfg.BaseURL,
			}
			return web.Start(ctx, rt.cfg.ListenAddr, ws.Routes(), rt.logger)
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")

	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}

// checkHandler refuses to start when the configured handler is not a teacher.
func checkHandler(ctx context.Context, users auth.UserGetter, id int64) error {
	if id == 0 {
		return nil
	}
	u, err := users.GetUser(ctx, id)
	if db.IsNotFound(err) {
		return fmt.Errorf("PLACEMENT_HANDLER_ID: no user with id %d", id)
	}
	if err != nil {
		return fmt.Errorf("PLACEMENT_HANDLER_ID: %w", err)
	}
	if !u.IsTeacher() {
		return fmt.Errorf("PLACEMENT_HANDLER_ID: user %q is not a teacher", u.Username)
	}
	return nil
}

func newNotifier(cfg config.Config, logger *zap.Logger) (placement.Notifier, error) {
	if !cfg.TelegramEnabled() {
		logger.Info("telegram notifications disabled")
		return notify.Nop{}, nil
	}
	return notify.NewTelegram(cfg.TelegramToken, cfg.TelegramHandlerChatID, cfg.BaseURL, logger)
}
