// Package order loads order history and places new orders.
//
// Placing an order is a client-orchestrated sequence: the header is created
// first, then every line is posted concurrently. The backend offers no way to
// make this atomic, so a line failure leaves the header behind; that case is
// reported as an *OrphanedOrderError and nothing is rolled back.
package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/hongminglow/storefront/internal/apiclient"
	"github.com/hongminglow/storefront/internal/apierr"
	"github.com/hongminglow/storefront/internal/envelope"
	"github.com/hongminglow/storefront/internal/logging"
	"github.com/hongminglow/storefront/internal/models"
	"github.com/hongminglow/storefront/internal/models/dto"
	"github.com/hongminglow/storefront/internal/observe"
)

const (
	fetchFallback = "Failed to fetch orders"
	placeFallback = "Failed to place order"
)

// Display layouts for order timestamps.
const (
	DateLayout = "Jan 2, 2006"
	TimeLayout = "3:04 PM"
)

// localCreatedAtLayouts carry no zone and are read in the display location.
var localCreatedAtLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

var (
	// ErrEmptyOrder is returned when PlaceOrder is given no lines.
	ErrEmptyOrder = errors.New("order has no lines")
	// ErrMissingOrderID is returned when order/add does not yield an id.
	ErrMissingOrderID = errors.New("order id missing from response")
	// ErrUnexpectedResponse is returned when get/orders is not a list.
	ErrUnexpectedResponse = errors.New("unexpected orders response")
)

// OrphanedOrderError reports an order header that was created while one or
// more of its lines were not.
type OrphanedOrderError struct {
	OrderID     int64
	FailedLines int
	TotalLines  int
	Err         error
}

func (e *OrphanedOrderError) Error() string {
	return fmt.Sprintf("order %d created but %d of %d lines failed: %v", e.OrderID, e.FailedLines, e.TotalLines, e.Err)
}

func (e *OrphanedOrderError) Unwrap() error { return e.Err }

// API is the subset of the HTTP client the order store needs.
type API interface {
	Get(ctx context.Context, path string, opts ...apiclient.Option) (*apiclient.Response, error)
	Post(ctx context.Context, path string, body any, opts ...apiclient.Option) (*apiclient.Response, error)
}

// Header is the order-level data captured at checkout.
type Header struct {
	TotalAmount   float64
	OrderType     string
	PaymentMethod string
	Customer      models.Customer
}

// State is a snapshot of the order list.
type State struct {
	Orders  []models.Order
	Loading bool
	Err     string
}

// Options tune a Store. The zero value is usable.
type Options struct {
	Logger logrus.FieldLogger
	// Location is used for the display date and time. Defaults to time.Local.
	Location *time.Location
	Now      func() time.Time
}

// Store is the order store. It is safe for concurrent use.
type Store struct {
	api API
	log logrus.FieldLogger
	loc *time.Location
	now func() time.Time

	mu    sync.Mutex
	state State
	hub   observe.Hub[State]
}

// NewStore returns an empty order store.
func NewStore(api API, opts Options) *Store {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{api: api, log: log.WithField("component", "order"), loc: loc, now: now}
}

// FetchOrders replaces the list with the backend's order history.
func (s *Store) FetchOrders(ctx context.Context) (err error) {
	s.begin()
	defer func() { s.end(err, fetchFallback) }()

	resp, err := s.api.Get(ctx, "get/orders")
	if err != nil {
		return err
	}

	raw, ok := envelope.Data(resp.Body)
	if !ok {
		raw = resp.Body
	}
	list := gjson.ParseBytes(raw)
	if !list.IsArray() {
		return apierr.Reject(apierr.KindValidationGap, ErrUnexpectedResponse, "")
	}

	var records []dto.OrderRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return fmt.Errorf("decode orders: %w", err)
	}
	orders := make([]models.Order, 0, len(records))
	for _, rec := range records {
		orders = append(orders, s.fromRecord(rec))
	}

	s.mu.Lock()
	s.state.Orders = orders
	s.mu.Unlock()
	s.log.WithField("orders", len(orders)).Debug("order history loaded")
	return nil
}

// PlaceOrder creates the order header, then posts every line concurrently
// and waits for all of them. A line failure does not stop its siblings.
// On full success the order is appended locally and its id returned.
func (s *Store) PlaceOrder(ctx context.Context, header Header, lines []models.CartLine) (id int64, err error) {
	s.begin()
	defer func() { s.end(err, placeFallback) }()

	if len(lines) == 0 {
		return 0, apierr.Reject(apierr.KindValidationGap, ErrEmptyOrder, "Your cart is empty")
	}

	resp, err := s.api.Post(ctx, "order/add", dto.CreateOrderPayload{TotalAmount: header.TotalAmount})
	if err != nil {
		return 0, err
	}
	id, ok := orderID(resp.Body)
	if !ok {
		return 0, apierr.Reject(apierr.KindValidationGap, ErrMissingOrderID, "")
	}
	log := s.log.WithField("order_id", id)

	var (
		g      errgroup.Group
		failed atomic.Int32
	)
	for _, line := range lines {
		payload := dto.OrderLinePayload{
			OrderID:          id,
			MenuID:           line.ItemID,
			Quantity:         line.Quantity,
			PriceAtOrderTime: line.UnitPrice,
		}
		g.Go(func() error {
			if _, err := s.api.Post(ctx, "order/item/add", payload); err != nil {
				failed.Add(1)
				log.WithError(err).WithField("menu_id", payload.MenuID).Warn("order line rejected")
				return fmt.Errorf("add line for menu item %d: %w", payload.MenuID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, &OrphanedOrderError{
			OrderID:     id,
			FailedLines: int(failed.Load()),
			TotalLines:  len(lines),
			Err:         err,
		}
	}

	placed := s.localOrder(id, header, lines)
	s.mu.Lock()
	s.state.Orders = append(s.state.Orders, placed)
	s.mu.Unlock()
	log.WithField("lines", len(lines)).Info("order placed")
	return id, nil
}

// Orders returns the current list.
func (s *Store) Orders() []models.Order {
	return s.State().Orders
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn for every change.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	return s.hub.Subscribe(fn)
}

func (s *Store) begin() {
	s.mu.Lock()
	s.state.Loading = true
	s.state.Err = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.hub.Publish(snap)
}

func (s *Store) end(err error, fallback string) {
	s.mu.Lock()
	s.state.Loading = false
	if err != nil {
		s.state.Err = apierr.Message(err, fallback)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if err != nil {
		s.log.WithError(err).WithField("kind", apierr.KindOf(err)).Warn(fallback)
	}
	s.hub.Publish(snap)
}

func (s *Store) snapshotLocked() State {
	snap := s.state
	snap.Orders = append([]models.Order(nil), s.state.Orders...)
	return snap
}

func (s *Store) fromRecord(rec dto.OrderRecord) models.Order {
	order := models.Order{
		ID:            rec.OrderID,
		Status:        orDefault(rec.Status, models.DefaultOrderStatus),
		OrderType:     orDefault(rec.OrderType, models.DefaultOrderType),
		PaymentMethod: orDefault(rec.PaymentMethod, models.DefaultPaymentMethod),
		TotalAmount:   rec.TotalAmount,
		Lines:         make([]models.OrderLine, 0, len(rec.OrderItems)),
		Customer: models.Customer{
			Name:        rec.CustomerName,
			PhoneNumber: rec.PhoneNumber,
			Address:     rec.Address,
		},
	}
	if created, ok := s.parseCreatedAt(rec.CreatedAt); ok {
		order.CreatedAt = created
		order.Date, order.Time = s.display(created)
	} else {
		order.Date = rec.CreatedAt
	}
	for _, item := range rec.OrderItems {
		order.Lines = append(order.Lines, models.OrderLine{
			Name:             item.Item,
			Quantity:         item.Quantity,
			PriceAtOrderTime: item.PriceAtOrderTime,
		})
	}
	return order
}

func (s *Store) localOrder(id int64, header Header, lines []models.CartLine) models.Order {
	created := s.now()
	order := models.Order{
		ID:            id,
		CreatedAt:     created,
		Status:        models.DefaultOrderStatus,
		OrderType:     orDefault(header.OrderType, models.DefaultOrderType),
		PaymentMethod: orDefault(header.PaymentMethod, models.DefaultPaymentMethod),
		TotalAmount:   header.TotalAmount,
		Lines:         make([]models.OrderLine, 0, len(lines)),
		Customer:      header.Customer,
	}
	order.Date, order.Time = s.display(created)
	for _, line := range lines {
		order.Lines = append(order.Lines, models.OrderLine{
			Name:             line.Name,
			Quantity:         line.Quantity,
			PriceAtOrderTime: line.UnitPrice,
		})
	}
	return order
}

func (s *Store) display(t time.Time) (date, clock string) {
	local := t.In(s.loc)
	return local.Format(DateLayout), local.Format(TimeLayout)
}

// orderID reads the new id from order/add. The payload is either the id
// itself or an object carrying it.
func orderID(body []byte) (int64, bool) {
	data, ok := envelope.First(body, envelope.DataPaths)
	if !ok {
		data = gjson.ParseBytes(body)
	}
	if data.IsObject() {
		for _, key := range []string{"orderId", "orderID", "id"} {
			if v := data.Get(key); v.Exists() {
				data = v
				break
			}
		}
	}
	switch data.Type {
	case gjson.Number:
		return data.Int(), data.Int() > 0
	case gjson.String:
		n, err := strconv.ParseInt(strings.TrimSpace(data.Str), 10, 64)
		return n, err == nil && n > 0
	default:
		return 0, false
	}
}

func (s *Store) parseCreatedAt(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, true
	}
	for _, layout := range localCreatedAtLayouts {
		if t, err := time.ParseInLocation(layout, value, s.loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func orDefault(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
