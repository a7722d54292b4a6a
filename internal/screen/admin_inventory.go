package screen

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/vcscsvcscs/dental-console/internal/apiclient"
	"github.com/vcscsvcscs/dental-console/internal/audit"
	"github.com/vcscsvcscs/dental-console/internal/listview"
	"github.com/vcscsvcscs/dental-console/internal/mutation"
	"github.com/vcscsvcscs/dental-console/internal/normalize"
	"github.com/vcscsvcscs/dental-console/internal/render"
	"github.com/vcscsvcscs/dental-console/internal/resource"
	"github.com/vcscsvcscs/dental-console/internal/status"
	"github.com/vcscsvcscs/dental-console/pkg/model"
)

const (
	DefaultInventoryCategory = "Consumables"
	DefaultReorderThreshold  = 10
	UncategorizedCategory    = "Uncategorized"
	MsgItemCodeRequired      = "Item Code is required (e.g., GAUZE-001)."
	MsgNameRequired          = "Name is required."
	MsgStockNegative         = "Stock must be 0 or greater."
	MsgThresholdNegative     = "Reorder threshold must be 0 or greater."
	MsgCreateItem            = "Failed to create item."
	MsgLoadInventory         = "Failed to load inventory."
	EmptyInventory           = "No inventory items found."
)

// InventoryForm is the new-item modal. Numbers are floored on submit.
type InventoryForm struct {
	ItemCode         string
	Name             string
	Category         string
	Stock            float64
	ReorderThreshold float64
	ExpiryDate       string
}

// Inventory is the admin stock list with the new-item modal
type Inventory struct {
	deps     Deps
	list     *resource.Resource[[]model.InventoryItem]
	create   *mutation.Flow[InventoryForm, struct{}]
	query    string
	category string
}

// NewInventory creates the inventory screen
func NewInventory(d Deps) *Inventory {
	s := &Inventory{
		deps:     d,
		list:     resource.New("inventory", d.Admin.Inventory, d.logger()),
		category: listview.AllFacet,
	}
	s.create = mutation.NewFlow(mutation.Config[InventoryForm, struct{}]{
		Name:     "create-inventory-item",
		Policy:   mutation.PolicyReload,
		Fallback: MsgCreateItem,
		Validate: ValidateInventory,
		Submit:   s.submit,
		Apply: func(ctx context.Context, _ struct{}, _ InventoryForm) error {
			return s.Refresh(ctx)
		},
	}, d.logger())
	return s
}

// Load fetches the stock list
func (s *Inventory) Load(ctx context.Context) error {
	_, err := s.list.Load(ctx)
	return loadError(err)
}

// Refresh re-fetches the stock list
func (s *Inventory) Refresh(ctx context.Context) error {
	_, err := s.list.Reload(ctx)
	return loadError(err)
}

// Close discards anything still in flight
func (s *Inventory) Close() {
	s.list.Close()
}

// Snapshot exposes the resource state
func (s *Inventory) Snapshot() resource.Snapshot[[]model.InventoryItem] {
	return s.list.Snapshot()
}

// SetQuery sets the search text
func (s *Inventory) SetQuery(q string) {
	s.query = q
}

// SetCategory filters by category; "ALL" or "" clears the filter
func (s *Inventory) SetCategory(c string) {
	if c == "" {
		c = listview.AllFacet
	}
	s.category = c
}

// Categories lists the distinct categories of the unfiltered list, sorted
func (s *Inventory) Categories() []string {
	return listview.Distinct(s.list.Snapshot().Data, func(i model.InventoryItem) string { return i.Category })
}

// LowStockCount counts Low items over the unfiltered list
func (s *Inventory) LowStockCount() int {
	return listview.Count(s.list.Snapshot().Data, func(i model.InventoryItem) bool { return status.IsLowStock(i.Status) })
}

// Rows applies the category filter and the search over name, id and category
func (s *Inventory) Rows() []model.InventoryItem {
	return listview.Search(s.list.Snapshot().Data, s.query, func(i model.InventoryItem) []string {
		return []string{i.Name, i.ID, i.Category}
	}, listview.Facet(s.category, func(i model.InventoryItem) string { return i.Category }))
}

// Header is the state line of the stock list
func (s *Inventory) Header() render.Header {
	return headerOf(s.list.Snapshot(), len(s.Rows()), MsgLoadInventory)
}

// Table renders the filtered stock list
func (s *Inventory) Table() render.Table {
	t := render.Table{
		Title:   "Inventory",
		Columns: []string{"ID", "Name", "Category", "Stock", "Reorder at", "Status", "Expiry"},
		Empty:   EmptyInventory,
	}
	loc := s.deps.location()
	for _, i := range s.Rows() {
		threshold := normalize.Placeholder
		if i.ReorderThreshold != nil {
			threshold = strconv.Itoa(*i.ReorderThreshold)
		}
		t.Rows = append(t.Rows, []render.Cell{
			render.Text(i.ID),
			render.Text(i.Name),
			render.Text(i.Category),
			render.Text(strconv.Itoa(i.Stock)),
			render.Text(threshold),
			render.Badge(i.Status, status.InventoryTone(i.Status)),
			render.Text(normalize.DisplayDate(i.ExpiryDate, loc)),
		})
	}
	return t
}

// Form exposes the new-item modal
func (s *Inventory) Form() *mutation.Flow[InventoryForm, struct{}] {
	return s.create
}

// OpenCreate opens the new-item modal with its defaults
func (s *Inventory) OpenCreate() {
	s.create.Open(InventoryForm{
		Category:         DefaultInventoryCategory,
		ReorderThreshold: DefaultReorderThreshold,
	})
}

// Submit sends the new-item modal
func (s *Inventory) Submit(ctx context.Context) (mutation.Outcome, error) {
	return s.create.Submit(ctx)
}

// ValidateInventory checks the new-item modal before anything is sent
func ValidateInventory(f InventoryForm) *mutation.FieldError {
	switch {
	case strings.TrimSpace(f.ItemCode) == "":
		return &mutation.FieldError{Field: "itemCode", Message: MsgItemCodeRequired}
	case strings.TrimSpace(f.Name) == "":
		return &mutation.FieldError{Field: "name", Message: MsgNameRequired}
	case !validCount(f.Stock):
		return &mutation.FieldError{Field: "stock", Message: MsgStockNegative}
	case !validCount(f.ReorderThreshold):
		return &mutation.FieldError{Field: "reorderThreshold", Message: MsgThresholdNegative}
	}
	return nil
}

// validCount accepts finite values in [0, MaxInt32] so flooring to int cannot overflow
func validCount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0 && v <= math.MaxInt32
}

// InventoryPayload builds the POST body the form owns
func InventoryPayload(f InventoryForm) model.CreateInventoryPayload {
	p := model.CreateInventoryPayload{
		ItemCode:         strings.TrimSpace(f.ItemCode),
		Name:             strings.TrimSpace(f.Name),
		Category:         strings.TrimSpace(f.Category),
		Stock:            int(math.Floor(f.Stock)),
		ReorderThreshold: int(math.Floor(f.ReorderThreshold)),
	}
	if p.Category == "" {
		p.Category = UncategorizedCategory
	}
	if expiry := strings.TrimSpace(f.ExpiryDate); expiry != "" {
		p.ExpiryDate = &expiry
	}
	return p
}

func (s *Inventory) submit(ctx context.Context, f InventoryForm) (struct{}, error) {
	payload := InventoryPayload(f)
	err := s.deps.Admin.CreateInventoryItem(ctx, payload)

	var conflict *apiclient.ConflictError
	s.deps.auditor().LogCreate(audit.ResourceInventoryItem, payload.ItemCode, audit.OutcomeOf(err, errors.As(err, &conflict)))
	return struct{}{}, err
}
