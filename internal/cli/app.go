package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/rshade/stockdesk/internal/api"
	"github.com/rshade/stockdesk/internal/cart"
	"github.com/rshade/stockdesk/internal/config"
	"github.com/rshade/stockdesk/internal/session"
	"github.com/rshade/stockdesk/internal/storage"
)

// app holds the collaborators shared by commands.
type app struct {
	cfg     *config.Config
	store   storage.Store
	session *session.Session
	creds   session.Source
	client  *api.Client
}

// newApp opens storage and builds the API client from cfg.
// STOCKDESK_TOKEN takes precedence over the stored session.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	store, err := storage.Open(ctx, cfg.Storage.ToStorageConfig())
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	client, err := api.NewClient(cfg.API.BaseURL, api.WithTimeout(cfg.API.Timeout))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	sess := session.New(store)
	return &app{
		cfg:     cfg,
		store:   store,
		session: sess,
		creds:   session.Chain{session.Env(config.EnvToken), sess},
		client:  client,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// cartKeys maps --cart values to storage keys.
//
//nolint:gochecknoglobals // Lookup table.
var cartKeys = map[string]string{
	"offer-list":     cart.KeyOfferList,
	"offers":         cart.KeyOfferList,
	"transfer":       cart.KeyTransferItems,
	"transfer-items": cart.KeyTransferItems,
}

func (a *app) openCart(ctx context.Context, name string) (*cart.Cart, error) {
	key, ok := cartKeys[name]
	if !ok {
		return nil, fmt.Errorf("unknown cart %q (use offer-list or transfer)", name)
	}
	return cart.Open(ctx, a.store, key)
}

// describeError adds a hint for errors a user can act on.
func describeError(err error) error {
	switch api.KindOf(err) {
	case api.KindAuthRequired:
		var se *api.ServerError
		if errors.As(err, &se) {
			return fmt.Errorf("%w\nhint: the session expired, run 'stockdesk login --token <token>'", err)
		}
		return fmt.Errorf("%w\nhint: run 'stockdesk login --token <token>' or set %s", err, config.EnvToken)
	case api.KindNetwork:
		return fmt.Errorf("%w\nhint: check api.base_url or %s", err, "STOCKDESK_API_URL")
	default:
		return err
	}
}
