// Package daemon wires configuration, stores, identity provider and webserver together.
package daemon

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mirror-ball/mirrorball/internal/appconfig"
	"github.com/mirror-ball/mirrorball/internal/auth"
	"github.com/mirror-ball/mirrorball/internal/awsclient"
	"github.com/mirror-ball/mirrorball/internal/config"
	"github.com/mirror-ball/mirrorball/internal/db"
	"github.com/mirror-ball/mirrorball/internal/gallery"
	"github.com/mirror-ball/mirrorball/internal/objectstore"
	"github.com/mirror-ball/mirrorball/internal/store"
	"github.com/mirror-ball/mirrorball/internal/store/dynamo"
	"github.com/mirror-ball/mirrorball/internal/store/sqlstore"
	"github.com/mirror-ball/mirrorball/internal/web"
	"github.com/mirror-ball/mirrorball/internal/web/handler"
	"github.com/mirror-ball/mirrorball/internal/web/handler/auth/oidc"
	"github.com/mirror-ball/mirrorball/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start serves until SIGINT or SIGTERM.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// New creates a new Daemon instance with the provided configuration.
// ctx must live as long as the daemon; the token key set refreshes with it.
func New(ctx context.Context, cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is nil") //nolint:err113
	}

	awsCfg, err := awsclient.Load(ctx, cfg.AWS)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	clients := awsclient.NewClients(awsCfg, cfg.AWS.Endpoint)

	images, configs, err := openStores(cfg, clients)
	if err != nil {
		return nil, err
	}

	objects := objectstore.New(objectstore.Config{
		Bucket:    cfg.AWS.BucketName,
		Region:    cfg.AWS.Region,
		CDNDomain: cfg.AWS.CloudFrontDomain,
	}, clients.S3, clients.Presigner)

	appCfg := appconfig.New(configs, cfg.Auth.ConfigCacheTTL, nil)

	authenticator, hostedUI := newAuth(ctx, cfg, clients, appCfg)

	warnUnconfigured(cfg, images, configs)

	webService := web.New(cfg, web.Deps{
		Gallery: gallery.New(images, objects, gallery.Options{
			PresignExpiry:   cfg.Upload.PresignExpiry,
			ProbeDimensions: cfg.Upload.ProbeDimensions,
			ProbeBytes:      cfg.Upload.ProbeBytes,
		}),
		AppConfig:     appCfg,
		Authenticator: authenticator,
		HostedUI:      hostedUI,
		Sessions:      session.New(session.NewStorage(cfg)),
	})

	return &Daemon{cfg: cfg, webService: webService}, nil
}

// openStores returns nil stores for tables that are not configured.
func openStores(cfg *config.Config, clients *awsclient.Clients) (store.Images, store.Configs, error) {
	var (
		images  store.Images
		configs store.Configs
	)

	if cfg.Store.Driver == config.DriverDynamoDB {
		if cfg.Store.ImageTableName != "" {
			images = dynamo.NewImages(clients.DynamoDB, cfg.Store.ImageTableName, cfg.Store.TitleIndexName)
		}

		if cfg.Store.ConfigTableName != "" {
			configs = dynamo.NewConfigs(clients.DynamoDB, cfg.Store.ConfigTableName)
		}

		return images, configs, nil
	}

	dialector, err := db.Dialector(cfg)
	if err != nil {
		return nil, nil, err //nolint:wrapcheck
	}

	gormDB, err := db.Open(dialector, cfg.DevMode)
	if err != nil {
		return nil, nil, err //nolint:wrapcheck
	}

	return sqlstore.NewImages(gormDB), sqlstore.NewConfigs(gormDB), nil
}

// newAuth builds the token verifier, group assigner and hosted login from the user pool settings.
func newAuth(
	ctx context.Context,
	cfg *config.Config,
	clients *awsclient.Clients,
	restrictions auth.RestrictionSource,
) (*auth.Authenticator, *auth.HostedUI) {
	var (
		verifier auth.Verifier
		groups   auth.GroupAssigner
		hostedUI *auth.HostedUI
	)

	issuer := cfg.Auth.Issuer
	if issuer == "" && cfg.Auth.UserPoolID != "" {
		issuer = auth.IssuerURL(cfg.AWS.Region, cfg.Auth.UserPoolID)
	}

	if issuer != "" {
		keySet := auth.NewRemoteKeySet(ctx, issuer)
		verifier = auth.NewTokenVerifier(issuer, keySet)

		ui, err := auth.NewHostedUI(auth.HostedUIConfig{
			Domain:       cfg.Auth.Domain,
			ClientID:     cfg.Auth.ClientID,
			ClientSecret: cfg.Auth.ClientSecret,
			RedirectURL:  cfg.Webserver.URL + handler.APIPath + oidc.CallbackPath,
			LogoutURL:    cfg.Webserver.FrontendURL,
			Scopes:       cfg.Auth.Scopes,
		}, issuer, keySet)

		switch {
		case err == nil:
			hostedUI = ui
		case errors.Is(err, auth.ErrHostedUIDisabled):
			log.Info().Msg("hosted login disabled: no domain or client id")
		default:
			log.Warn().Err(err).Msg("failed to initialize hosted login")
		}

		log.Info().Str("issuer", issuer).Msg("token verification enabled")
	} else {
		log.Error().Str("region", cfg.AWS.Region).Msg("no user pool configured, protected routes answer 500")
	}

	if cfg.Auth.UserPoolID != "" {
		groups = auth.NewCognitoGroups(clients.Cognito, cfg.Auth.UserPoolID)
	}

	return auth.NewAuthenticator(verifier, groups, restrictions, cfg.Auth.DefaultGroup), hostedUI
}

func warnUnconfigured(cfg *config.Config, images store.Images, configs store.Configs) {
	if cfg.AWS.BucketName == "" {
		log.Warn().Msg("BUCKET_NAME not configured, uploads answer 500")
	}

	if images == nil {
		log.Warn().Msg("TABLE_NAME not configured, image routes answer 500")
	}

	if configs == nil {
		log.Warn().Msg("CONFIG_TABLE_NAME not configured, serving the default configuration")
	}
}
