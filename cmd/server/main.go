package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-config/config"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-persistence-bun"
	photostream "github.com/goliatone/go-photostream"
	appconfig "github.com/goliatone/go-photostream/cmd/server/config"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type App struct {
	config *config.Container[*appconfig.BaseConfig]
	bunDB  *bun.DB
	repo   photostream.RepositoryManager
	auther *photostream.Auther
	http   *photostream.RouteAuthenticator
	srv    router.Server[*fiber.App]
	logger *glog.BaseLogger
}

func (a *App) Config() *appconfig.BaseConfig {
	return a.config.Raw()
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Debug),
		glog.WithName("photostream"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := config.New(&appconfig.BaseConfig{}).
		WithLogger(lgr.GetLogger("config"))

	ctx := context.Background()
	if err := cfg.Load(ctx); err != nil {
		panic(err)
	}

	fmt.Println(print.MaybeHighlightJSON(cfg.Raw()))

	app := &App{
		config: cfg,
		logger: lgr,
	}

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	if err := WithRoutes(ctx, app); err != nil {
		panic(err)
	}

	app.srv.Serve(app.Config().GetServer().GetAddress())

	WaitExitSignal()
}

func WithPersistence(ctx context.Context, app *App) error {
	pcfg := app.Config().GetPersistence()

	db, err := sql.Open(sqliteshim.ShimName, pcfg.GetDSN())
	if err != nil {
		log.Fatal(err)
		return err
	}

	persistence.RegisterModel((*photostream.User)(nil))
	persistence.RegisterModel((*photostream.Photo)(nil))
	persistence.RegisterModel((*photostream.Tag)(nil))
	persistence.RegisterModel((*photostream.PhotoTag)(nil))
	persistence.RegisterModel((*photostream.Comment)(nil))
	persistence.RegisterModel((*photostream.Rating)(nil))

	client, err := persistence.New(pcfg, db, sqlitedialect.New())
	if err != nil {
		log.Fatal(err)
		return err
	}

	client.SetLogger(app.GetLogger("persistence"))

	migrationsFS, err := fs.Sub(photostream.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return err
	}

	client.RegisterDialectMigrations(
		migrationsFS,
		persistence.WithDialectSourceLabel("data/sql/migrations"),
		persistence.WithValidationTargets("postgres", "sqlite"),
	)

	if err := client.ValidateDialects(ctx); err != nil {
		return err
	}

	if err := client.Migrate(ctx); err != nil {
		return err
	}

	app.bunDB = client.DB()
	app.repo = photostream.NewRepositoryManager(client.DB())

	return app.repo.Validate()
}

func WithHTTPServer(ctx context.Context, app *App) error {
	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			EnablePrintRoutes: true,
			StrictRouting:     false,
		}))
	})

	srv.Router().WithLogger(app.GetLogger("router"))

	scfg := app.Config().GetStorage()
	srv.Router().Static(scfg.GetPublicURL(), scfg.GetDir())

	app.srv = srv

	return nil
}

func WithRoutes(ctx context.Context, app *App) error {
	cfg := app.Config()
	acfg := cfg.GetAuth()

	templates, err := fs.Sub(photostream.GetTemplatesFS(), "data/templates")
	if err != nil {
		return err
	}

	baseURL := cfg.GetMail().GetBaseURL()
	if baseURL == "" {
		baseURL = cfg.GetServer().GetPublicURL()
	}

	mailer, err := photostream.NewTemplateMailerFS(templates, baseURL, nil)
	if err != nil {
		return err
	}
	mailer.WithLogger(app.GetLogger("mailer"))

	auther := photostream.NewAuthenticator(app.repo.Users(), acfg).
		WithLogger(app.GetLogger("auth")).
		WithMailer(mailer).
		WithPhoneRegion(acfg.GetPhoneRegion())

	app.auther = auther

	httpAuth, err := photostream.NewHTTPAuthenticator(auther, acfg)
	if err != nil {
		return err
	}
	app.http = httpAuth

	root := app.srv.Router().Group("/")

	photostream.RegisterAuthRoutes(root,
		photostream.WithControllerAuther(auther),
		photostream.WithControllerLogger(app.GetLogger("auth:ctrl")),
	)

	storage, err := photostream.NewDiskStorage(cfg.GetStorage().GetDir(), cfg.GetStorage().GetPublicURL())
	if err != nil {
		return err
	}

	protected := httpAuth.ProtectedRoute(nil)

	photostream.RegisterPhotoRoutes(root, protected,
		photostream.WithPhotoRepo(app.repo),
		photostream.WithPhotoStorage(storage),
		photostream.WithPhotoLogger(app.GetLogger("photos")),
		photostream.WithPhotoContextKey(acfg.GetContextKey()),
	)

	return nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
