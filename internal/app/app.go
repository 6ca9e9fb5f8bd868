// Package app is the composition root: it opens durable storage, builds the
// HTTP client and wires every store to them.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/hongminglow/storefront/internal/apiclient"
	"github.com/hongminglow/storefront/internal/cart"
	"github.com/hongminglow/storefront/internal/config"
	"github.com/hongminglow/storefront/internal/logging"
	"github.com/hongminglow/storefront/internal/menu"
	"github.com/hongminglow/storefront/internal/models"
	"github.com/hongminglow/storefront/internal/order"
	"github.com/hongminglow/storefront/internal/session"
	"github.com/hongminglow/storefront/internal/storage"
	"github.com/hongminglow/storefront/internal/storage/file"
	"github.com/hongminglow/storefront/internal/storage/memory"
	"github.com/hongminglow/storefront/internal/storage/postgres"
	"github.com/hongminglow/storefront/internal/storage/redis"
	"github.com/hongminglow/storefront/internal/ui"
)

// App holds the wired stores.
type App struct {
	Client  *apiclient.Client
	Session *session.Store
	Cart    *cart.Store
	Menu    *menu.Store
	Orders  *order.Store
	UI      *ui.Store

	kv  storage.KV
	log logrus.FieldLogger
}

// Open opens the configured storage driver and builds the application.
func Open(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) (*App, error) {
	kv, err := OpenStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	a, err := New(ctx, cfg, kv, logger)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}
	return a, nil
}

// New builds the application over an already open kv, which App then owns.
func New(ctx context.Context, cfg config.Config, kv storage.KV, logger logrus.FieldLogger) (*App, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	client, err := apiclient.New(apiclient.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.RequestTimeout,
		Tokens:  session.NewTokenSource(kv),
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build client: %w", err)
	}

	sess, err := session.NewStore(ctx, client, kv, session.Options{
		AuthPrefix: cfg.AuthPrefix,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}

	return &App{
		Client:  client,
		Session: sess,
		Cart:    cart.NewStore(),
		Menu:    menu.NewStore(client, logger),
		Orders:  order.NewStore(client, order.Options{Logger: logger}),
		UI:      ui.NewStore(),
		kv:      kv,
		log:     logger.WithField("component", "app"),
	}, nil
}

// OpenStorage opens the durable storage driver named by cfg.Driver.
func OpenStorage(ctx context.Context, cfg config.StorageConfig) (storage.KV, error) {
	switch cfg.Driver {
	case config.StorageMemory:
		return memory.New(), nil
	case config.StorageFile, "":
		kv, err := file.Open(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open file storage: %w", err)
		}
		return kv, nil
	case config.StorageRedis:
		kv, err := redis.New(ctx, redis.Options{
			Addr:     cfg.RedisAddr,
			Username: cfg.RedisUsername,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.KeyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("open redis storage: %w", err)
		}
		return kv, nil
	case config.StoragePostgres:
		kv, err := postgres.New(ctx, cfg.DatabaseURL, cfg.KeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("open postgres storage: %w", err)
		}
		return kv, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// Close releases durable storage.
func (a *App) Close() error {
	return a.kv.Close()
}

// ErrEmptyCart is returned by Checkout when there is nothing to order.
var ErrEmptyCart = errors.New("cart is empty")

// CheckoutRequest carries what the checkout form collects.
type CheckoutRequest struct {
	OrderType     string
	PaymentMethod string
	// Customer defaults to the signed-in user's profile.
	Customer *models.Customer
}

// Checkout places an order for the cart. The cart is cleared and the cart
// panel closed only when every step succeeded; on failure the cart is kept
// so the user can retry.
func (a *App) Checkout(ctx context.Context, req CheckoutRequest) (int64, error) {
	snapshot := a.Cart.State()
	if len(snapshot.Lines) == 0 {
		return 0, ErrEmptyCart
	}

	header := order.Header{
		TotalAmount:   snapshot.TotalPrice(),
		OrderType:     req.OrderType,
		PaymentMethod: req.PaymentMethod,
	}
	if req.Customer != nil {
		header.Customer = *req.Customer
	} else if user := a.Session.State().User; user != nil {
		header.Customer = models.Customer{
			Name:        user.Name,
			PhoneNumber: user.PhoneNumber,
			Address:     user.Address,
		}
	}

	id, err := a.Orders.PlaceOrder(ctx, header, snapshot.Lines)
	if err != nil {
		var orphan *order.OrphanedOrderError
		if errors.As(err, &orphan) {
			a.log.WithField("order_id", orphan.OrderID).Error("order header left without all of its lines")
		}
		return 0, err
	}

	a.Cart.ClearCart()
	a.UI.CloseCart()
	return id, nil
}
