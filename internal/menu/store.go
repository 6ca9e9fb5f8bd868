// Package menu loads the two-level catalog and keeps the browsable,
// flattened item list with the active category filter.
package menu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/hongminglow/storefront/internal/apiclient"
	"github.com/hongminglow/storefront/internal/apierr"
	"github.com/hongminglow/storefront/internal/envelope"
	"github.com/hongminglow/storefront/internal/logging"
	"github.com/hongminglow/storefront/internal/models"
	"github.com/hongminglow/storefront/internal/models/dto"
	"github.com/hongminglow/storefront/internal/observe"
)

const fetchFallback = "Failed to load menu"

// ErrUnexpectedResponse is returned when the catalog payload is not a list.
var ErrUnexpectedResponse = errors.New("unexpected menu response")

// API is the subset of the HTTP client the menu needs.
type API interface {
	Get(ctx context.Context, path string, opts ...apiclient.Option) (*apiclient.Response, error)
}

// State is a snapshot of the menu.
type State struct {
	Categories     []string
	Items          []models.MenuItem
	ActiveCategory string
	Loading        bool
	Err            string
}

// VisibleItems filters Items by ActiveCategory. The "All" category matches
// every item.
func (s State) VisibleItems() []models.MenuItem {
	if s.ActiveCategory == "" || s.ActiveCategory == models.AllCategories {
		return s.Items
	}
	visible := make([]models.MenuItem, 0, len(s.Items))
	for _, item := range s.Items {
		if item.Category == s.ActiveCategory {
			visible = append(visible, item)
		}
	}
	return visible
}

// Store is the menu store. It is safe for concurrent use.
type Store struct {
	api API
	log logrus.FieldLogger

	mu    sync.Mutex
	state State
	hub   observe.Hub[State]
}

// NewStore returns an empty menu with only the "All" category.
func NewStore(api API, logger logrus.FieldLogger) *Store {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Store{
		api: api,
		log: logger.WithField("component", "menu"),
		state: State{
			Categories:     []string{models.AllCategories},
			ActiveCategory: models.AllCategories,
		},
	}
}

// FetchMenu loads the catalog. Deleted categories and items are dropped. On
// failure the previous categories and items are kept.
func (s *Store) FetchMenu(ctx context.Context) (err error) {
	s.update(func(st *State) {
		st.Loading = true
		st.Err = ""
	})
	defer func() {
		s.update(func(st *State) {
			st.Loading = false
			if err != nil {
				st.Err = apierr.Message(err, fetchFallback)
			}
		})
		if err != nil {
			s.log.WithError(err).Warn("fetch menu failed")
		}
	}()

	resp, err := s.api.Get(ctx, "menu/getMenu")
	if err != nil {
		return err
	}

	records, err := decodeCategories(resp.Body)
	if err != nil {
		return err
	}
	categories, items := flatten(records)

	s.update(func(st *State) {
		st.Categories = categories
		st.Items = items
		if !contains(categories, st.ActiveCategory) {
			st.ActiveCategory = models.AllCategories
		}
	})
	s.log.WithFields(logrus.Fields{
		"categories": len(categories) - 1,
		"items":      len(items),
	}).Debug("menu loaded")
	return nil
}

// SetCategory changes the active filter.
func (s *Store) SetCategory(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = models.AllCategories
	}
	s.update(func(st *State) { st.ActiveCategory = name })
}

// ActiveCategory returns the current filter.
func (s *Store) ActiveCategory() string { return s.State().ActiveCategory }

// Categories returns "All" followed by the loaded category names.
func (s *Store) Categories() []string { return s.State().Categories }

// Items returns every browsable item.
func (s *Store) Items() []models.MenuItem { return s.State().Items }

// VisibleItems returns the items in the active category.
func (s *Store) VisibleItems() []models.MenuItem { return s.State().VisibleItems() }

// Find looks an item up by id.
func (s *Store) Find(id int64) (models.MenuItem, bool) {
	for _, item := range s.Items() {
		if item.ID == id {
			return item, true
		}
	}
	return models.MenuItem{}, false
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn for every menu change.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	return s.hub.Subscribe(fn)
}

func (s *Store) update(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.hub.Publish(snap)
}

func (s *Store) snapshotLocked() State {
	snap := s.state
	snap.Categories = append([]string(nil), s.state.Categories...)
	snap.Items = append([]models.MenuItem(nil), s.state.Items...)
	return snap
}

// decodeCategories accepts the list either inside a known envelope or as
// the whole body.
func decodeCategories(body []byte) ([]dto.MenuCategoryRecord, error) {
	raw, ok := envelope.Data(body)
	if !ok {
		raw = body
	}
	if !gjson.ParseBytes(raw).IsArray() {
		return nil, apierr.Reject(apierr.KindValidationGap, ErrUnexpectedResponse, "")
	}
	var records []dto.MenuCategoryRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode menu: %w", err)
	}
	return records, nil
}

func flatten(records []dto.MenuCategoryRecord) ([]string, []models.MenuItem) {
	categories := []string{models.AllCategories}
	var items []models.MenuItem
	for _, category := range records {
		if category.IsDeleted {
			continue
		}
		categories = append(categories, category.Item)
		for _, child := range category.Children {
			if child.IsDeleted {
				continue
			}
			items = append(items, models.MenuItem{
				ID:          child.ID,
				Name:        child.Item,
				Category:    category.Item,
				Price:       child.Price,
				ImageURL:    child.PicturePath,
				Description: child.Description,
			})
		}
	}
	return categories, items
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
