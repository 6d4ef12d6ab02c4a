// Package goodspublish keeps the merchant's multi-step goods form so that a
// half-finished publish survives a console restart.
package goodspublish

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/suPer8Hu/mall-console/internal/api"
	"github.com/suPer8Hu/mall-console/internal/apiclient"
	"github.com/suPer8Hu/mall-console/internal/persist"
	"golang.org/x/sync/errgroup"
)

const (
	persistKey = "goodsPublish"

	// DefaultUnit is the backend's "piece".
	DefaultUnit = "件"
)

type FileItem struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	RawURL string `json:"rawUrl"`
	UID    int64  `json:"uid"`
}

type State struct {
	Form           api.GoodsPayload    `json:"formData"`
	DisplayImages  []FileItem          `json:"displayImages"`
	DetailImages   []FileItem          `json:"detailImages"`
	Specifications []api.Specification `json:"specifications"`
	Skus           []api.SkuItem       `json:"skuList"`
	Categories     []api.CategoryItem  `json:"categoryList"`
	Units          []api.GoodsUnit     `json:"unitList"`
	ActiveStep     int                 `json:"activeStep"`
	Submitting     bool                `json:"submitting"`
	Readonly       bool                `json:"isReadonly"`
	CurrentGoodsID string              `json:"currentGoodsId,omitempty"`
	Loading        bool                `json:"loading"`
	BaseDataLoaded bool                `json:"baseDataLoaded"`
}

func initialState() State {
	return State{
		Form:           emptyForm("", ""),
		Specifications: []api.Specification{{Name: "", Values: []string{}}},
	}
}

func emptyForm(storeID, storeName string) api.GoodsPayload {
	return api.GoodsPayload{
		Unit:      DefaultUnit,
		Status:    api.GoodsOn,
		StoreID:   storeID,
		StoreName: storeName,
	}
}

type GoodsAPI interface {
	CategoryTree(ctx context.Context) ([]api.CategoryItem, error)
	MerchantGoodsUnits(ctx context.Context) ([]api.GoodsUnit, error)
	MerchantGoods(ctx context.Context, id string) (*api.GoodsItem, error)
	MerchantAddGoods(ctx context.Context, p api.GoodsPayload) error
	MerchantUpdateGoods(ctx context.Context, p api.GoodsPayload) error
	MerchantRepublishGoods(ctx context.Context, auditID string, p api.GoodsPayload) error
}

type Draft struct {
	api     GoodsAPI
	persist persist.Persister
	now     func() time.Time

	mu    sync.RWMutex
	state State
}

func NewDraft(a GoodsAPI, p persist.Persister) *Draft {
	return &Draft{api: a, persist: p, now: time.Now, state: initialState()}
}

func (d *Draft) Restore(ctx context.Context) error {
	var st State
	ok, err := d.persist.Load(ctx, persistKey, &st)
	if err != nil || !ok {
		return err
	}
	// transient flags never survive a restart
	st.Submitting, st.Loading = false, false
	d.mu.Lock()
	d.state = st
	d.mu.Unlock()
	return nil
}

func (d *Draft) Snapshot() State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return cloneState(d.state)
}

func cloneState(s State) State {
	s.DisplayImages = slices.Clone(s.DisplayImages)
	s.DetailImages = slices.Clone(s.DetailImages)
	s.Specifications = slices.Clone(s.Specifications)
	s.Skus = slices.Clone(s.Skus)
	s.Categories = slices.Clone(s.Categories)
	s.Units = slices.Clone(s.Units)
	s.Form.Specifications = slices.Clone(s.Form.Specifications)
	s.Form.Skus = slices.Clone(s.Form.Skus)
	return s
}

// update applies fn under the lock and persists the result.
func (d *Draft) update(ctx context.Context, fn func(*State)) error {
	d.mu.Lock()
	fn(&d.state)
	snap := cloneState(d.state)
	d.mu.Unlock()
	return d.persist.Save(ctx, persistKey, snap)
}

// InitBaseData loads the category tree and unit list once, in parallel.
func (d *Draft) InitBaseData(ctx context.Context) error {
	d.mu.RLock()
	loaded := d.state.BaseDataLoaded
	d.mu.RUnlock()
	if loaded {
		return nil
	}

	d.setLoading(true)
	defer d.setLoading(false)

	var (
		categories []api.CategoryItem
		units      []api.GoodsUnit
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = d.api.CategoryTree(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		units, err = d.api.MerchantGoodsUnits(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	return d.update(ctx, func(s *State) {
		s.Categories = categories
		s.Units = units
		s.BaseDataLoaded = true
	})
}

func (d *Draft) setLoading(v bool) {
	d.mu.Lock()
	d.state.Loading = v
	d.mu.Unlock()
}

// LoadGoods fills the form from an existing goods item for editing.
func (d *Draft) LoadGoods(ctx context.Context, id string) error {
	if id == "" {
		return apiclient.Invalid("loadGoods", "id is required")
	}
	d.setLoading(true)
	defer d.setLoading(false)

	g, err := d.api.MerchantGoods(ctx, id)
	if err != nil {
		return err
	}

	form := api.GoodsPayload{
		ID:           g.ID,
		Name:         g.Name,
		CategoryID:   g.CategoryID,
		StoreID:      g.StoreID,
		StoreName:    g.StoreName,
		Info:         g.Info,
		Img:          g.Img,
		ImgList:      g.ImgList,
		DetailImages: g.DetailImages,
		Unit:         g.Unit,
		Status:       api.GoodsOff,
	}
	if form.Unit == "" {
		form.Unit = DefaultUnit
	}
	if g.Status {
		form.Status = api.GoodsOn
	}

	base := d.now().UnixMilli()
	var display []FileItem
	if g.Img != "" {
		display = append(display, FileItem{Name: "main-image", URL: g.Img, RawURL: g.Img, UID: base})
	}
	for i, u := range splitList(g.ImgList) {
		display = append(display, FileItem{Name: fmt.Sprintf("display-%d", i), URL: u, RawURL: u, UID: base + int64(i) + 1})
	}
	var detail []FileItem
	for i, u := range splitList(g.DetailImages) {
		detail = append(detail, FileItem{Name: fmt.Sprintf("detail-%d", i), URL: u, RawURL: u, UID: base + int64(i) + 100})
	}

	return d.update(ctx, func(s *State) {
		s.Form = form
		s.DisplayImages = display
		s.DetailImages = detail
		if g.Specifications != nil {
			s.Specifications = g.Specifications
		}
		if g.Skus != nil {
			s.Skus = g.Skus
		}
		s.CurrentGoodsID = id
	})
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (d *Draft) SetStoreInfo(ctx context.Context, storeID, storeName string) error {
	return d.update(ctx, func(s *State) {
		s.Form.StoreID = storeID
		s.Form.StoreName = storeName
	})
}

// UpdateForm lets fn edit the form fields in place.
func (d *Draft) UpdateForm(ctx context.Context, fn func(*api.GoodsPayload)) error {
	return d.update(ctx, func(s *State) { fn(&s.Form) })
}

func (d *Draft) SetDisplayImages(ctx context.Context, images []FileItem) error {
	return d.update(ctx, func(s *State) { s.DisplayImages = slices.Clone(images) })
}

func (d *Draft) SetDetailImages(ctx context.Context, images []FileItem) error {
	return d.update(ctx, func(s *State) { s.DetailImages = slices.Clone(images) })
}

func (d *Draft) SetSpecifications(ctx context.Context, specs []api.Specification) error {
	return d.update(ctx, func(s *State) { s.Specifications = slices.Clone(specs) })
}

func (d *Draft) SetSkus(ctx context.Context, skus []api.SkuItem) error {
	return d.update(ctx, func(s *State) { s.Skus = slices.Clone(skus) })
}

func (d *Draft) SetActiveStep(ctx context.Context, step int) error {
	return d.update(ctx, func(s *State) { s.ActiveStep = step })
}

func (d *Draft) SetReadonly(ctx context.Context, readonly bool) error {
	return d.update(ctx, func(s *State) { s.Readonly = readonly })
}

// IsFormValid requires a name, a category, a unit and at least one display
// image.
func (d *Draft) IsFormValid() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	f := d.state.Form
	return f.Name != "" && f.CategoryID != "" && f.Unit != "" && len(d.state.DisplayImages) > 0
}

func (d *Draft) HasValidSpec() bool {
	return len(d.ValidSpecifications()) > 0
}

// ValidSpecifications drops specifications without a name or values.
func (d *Draft) ValidSpecifications() []api.Specification {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return validSpecs(d.state.Specifications)
}

func validSpecs(specs []api.Specification) []api.Specification {
	out := []api.Specification{}
	for _, s := range specs {
		if s.Name != "" && len(s.Values) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// SubmitPayload assembles what Submit sends. Image fields follow the image
// lists: the first display image is the main one.
func (d *Draft) SubmitPayload() api.GoodsPayload {
	d.mu.RLock()
	defer d.mu.RUnlock()

	p := d.state.Form
	p.Specifications = validSpecs(d.state.Specifications)
	p.Skus = slices.Clone(d.state.Skus)
	if imgs := d.state.DisplayImages; len(imgs) > 0 {
		p.Img = imgs[0].RawURL
		p.ImgList = joinRaw(imgs[1:])
	}
	if len(d.state.DetailImages) > 0 {
		p.DetailImages = joinRaw(d.state.DetailImages)
	}
	return p
}

func joinRaw(items []FileItem) string {
	urls := make([]string, 0, len(items))
	for _, it := range items {
		if it.RawURL != "" {
			urls = append(urls, it.RawURL)
		}
	}
	return strings.Join(urls, ",")
}

// Submit validates the form and adds or updates the goods. The draft is
// reset for the same store on success.
func (d *Draft) Submit(ctx context.Context) error {
	return d.send(ctx, "publishGoods", func(p api.GoodsPayload, goodsID string) error {
		if goodsID != "" {
			p.ID = goodsID
			return d.api.MerchantUpdateGoods(ctx, p)
		}
		return d.api.MerchantAddGoods(ctx, p)
	})
}

// Republish resubmits the form against a rejected or withdrawn audit.
func (d *Draft) Republish(ctx context.Context, auditID string) error {
	if auditID == "" {
		return apiclient.Invalid("republishGoods", "audit id is required")
	}
	return d.send(ctx, "republishGoods", func(p api.GoodsPayload, goodsID string) error {
		p.ID = goodsID
		return d.api.MerchantRepublishGoods(ctx, auditID, p)
	})
}

func (d *Draft) send(ctx context.Context, op string, fn func(p api.GoodsPayload, goodsID string) error) error {
	if !d.IsFormValid() {
		return apiclient.Invalid(op, "name, category, unit and a display image are required")
	}

	d.mu.Lock()
	if d.state.Submitting || d.state.Readonly {
		d.mu.Unlock()
		return apiclient.Invalid(op, "draft is busy or read-only")
	}
	d.state.Submitting = true
	goodsID := d.state.CurrentGoodsID
	d.mu.Unlock()

	payload := d.SubmitPayload()
	err := fn(payload, goodsID)

	d.mu.Lock()
	d.state.Submitting = false
	d.mu.Unlock()
	if err != nil {
		return err
	}
	return d.ResetForm(ctx, payload.StoreID, payload.StoreName)
}

// Reset discards the whole flow, base data included.
func (d *Draft) Reset(ctx context.Context) error {
	d.mu.Lock()
	d.state = initialState()
	d.mu.Unlock()
	return d.persist.Delete(ctx, persistKey)
}

// ResetForm clears the form but keeps the loaded base data.
func (d *Draft) ResetForm(ctx context.Context, storeID, storeName string) error {
	return d.update(ctx, func(s *State) {
		s.Form = emptyForm(storeID, storeName)
		s.DisplayImages = nil
		s.DetailImages = nil
		s.Specifications = []api.Specification{{Name: "", Values: []string{}}}
		s.Skus = nil
		s.ActiveStep = 0
		s.CurrentGoodsID = ""
	})
}
