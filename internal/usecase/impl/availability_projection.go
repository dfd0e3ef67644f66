package impl

import (
	"context"
	"log/slog"
	"sync"

	"madredder/internal/domain/entity"
	domainerrors "madredder/internal/domain/errors"
	"madredder/internal/domain/repository"
	"madredder/internal/errors"
	"madredder/internal/usecase"

	"go.uber.org/fx"
)

type availabilityService struct {
	profileRepo    repository.ProfileRepository
	offerWatcher   repository.OfferWatcher
	profileWatcher repository.ProfileWatcher
	logger         *slog.Logger
}

// AvailabilityServiceParams holds dependencies for AvailabilityService,
// injected by Fx.
type AvailabilityServiceParams struct {
	fx.In

	ProfileRepo    repository.ProfileRepository
	OfferWatcher   repository.OfferWatcher
	ProfileWatcher repository.ProfileWatcher
	Logger         *slog.Logger
}

// NewAvailabilityService creates the read-side projection builder.
func NewAvailabilityService(params AvailabilityServiceParams) usecase.AvailabilityUsecase {
	return &availabilityService{
		profileRepo:    params.ProfileRepo,
		offerWatcher:   params.OfferWatcher,
		profileWatcher: params.ProfileWatcher,
		logger:         params.Logger,
	}
}

// Open starts a live projection for one viewer: a subscription on the
// viewer's own profile, one on the offer set at their location, and one per
// reserved offer so held items stay visible even when deactivated.
func (s *availabilityService) Open(ctx context.Context, userID string) (usecase.Projection, error) {
	if userID == "" {
		return nil, domainerrors.ErrUnauthenticated
	}

	profile, err := s.profileRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, domainerrors.ErrProfileNotFound
		}

		return nil, err
	}
	if !profile.HasLocation() {
		return nil, domainerrors.ErrNoLocation
	}

	projCtx, cancel := context.WithCancel(ctx)

	p := &projection{
		userID:       userID,
		offerWatcher: s.offerWatcher,
		logger:       s.logger,
		ctx:          projCtx,
		cancel:       cancel,
		profile:      profile,
		location:     make(map[string]*entity.Offer),
		details:      make(map[string]*entity.Offer),
		detailStops:  make(map[string]repository.StopFunc),
		overlay:      make(map[string]int),
		detailCh:     make(chan detailUpdate, 16),
		updates:      make(chan *usecase.AvailabilityView, 1),
	}

	profileCh, stopProfile := s.profileWatcher.WatchProfile(projCtx, userID)
	listCh, stopList := s.offerWatcher.WatchOffersByLocation(projCtx, profile.LocationID)
	p.stopProfile = stopProfile
	p.stopList = stopList

	p.mu.Lock()
	p.syncDetailWatchesLocked()
	p.mu.Unlock()

	go p.run(profileCh, listCh)

	return p, nil
}

// detailUpdate carries one per-offer snapshot from a detail watch goroutine
// into the projection loop.
type detailUpdate struct {
	offerID string
	snap    repository.OfferSnapshot
}

// projection holds one viewer's live read-side state. All maps are guarded
// by mu; the run loop is the only writer apart from ApplyLocalReserve.
type projection struct {
	userID       string
	offerWatcher repository.OfferWatcher
	logger       *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once

	mu          sync.Mutex
	profile     *entity.Profile
	location    map[string]*entity.Offer // latest location query result, by offer id
	locOrder    []string                 // store-delivered ordering of the location set
	details     map[string]*entity.Offer // latest per-offer snapshots for reserved offers
	detailStops map[string]repository.StopFunc
	overlay     map[string]int // optimistic local decrements, per offer id
	closed      bool

	detailCh chan detailUpdate
	updates  chan *usecase.AvailabilityView

	stopProfile repository.StopFunc
	stopList    repository.StopFunc
}

func (p *projection) Updates() <-chan *usecase.AvailabilityView {
	return p.updates
}

// ApplyLocalReserve optimistically decrements the displayed quantity of one
// offer. The patch lives only until the next authoritative snapshot that
// covers the offer.
func (p *projection) ApplyLocalReserve(offerID string) {
	p.mu.Lock()
	p.overlay[offerID]++
	view := p.recomputeLocked()
	p.mu.Unlock()

	p.push(view)
}

func (p *projection) Close() {
	p.once.Do(func() {
		p.cancel()
	})
}

// run is the projection event loop: it folds profile changes, location query
// snapshots and per-offer detail snapshots into full recomputations.
func (p *projection) run(profileCh <-chan repository.ProfileSnapshot, listCh <-chan repository.OfferListSnapshot) {
	defer p.teardown()

	for {
		select {
		case <-p.ctx.Done():
			return

		case snap, ok := <-profileCh:
			if !ok {
				return
			}
			if snap.Err != nil {
				p.logger.Warn("profile watch failed, closing projection",
					slog.String("user_id", p.userID),
					slog.Any("error", snap.Err),
				)

				return
			}
			if !snap.Exists {
				// Account deleted while the projection was open.
				return
			}
			p.mu.Lock()
			p.profile = snap.Profile
			p.syncDetailWatchesLocked()
			view := p.recomputeLocked()
			p.mu.Unlock()
			p.push(view)

		case snap, ok := <-listCh:
			if !ok {
				return
			}
			if snap.Err != nil {
				p.logger.Warn("location watch failed, closing projection",
					slog.String("user_id", p.userID),
					slog.Any("error", snap.Err),
				)

				return
			}
			p.mu.Lock()
			p.location = make(map[string]*entity.Offer, len(snap.Offers))
			p.locOrder = p.locOrder[:0]
			for _, offer := range snap.Offers {
				p.location[offer.ID] = offer
				p.locOrder = append(p.locOrder, offer.ID)
				// The query result is authoritative for each offer it contains.
				delete(p.overlay, offer.ID)
			}
			view := p.recomputeLocked()
			p.mu.Unlock()
			p.push(view)

		case upd := <-p.detailCh:
			p.mu.Lock()
			if _, watched := p.detailStops[upd.offerID]; !watched {
				p.mu.Unlock()

				continue
			}
			if upd.snap.Err != nil {
				p.logger.Warn("offer watch failed",
					slog.String("offer_id", upd.offerID),
					slog.Any("error", upd.snap.Err),
				)
				p.dropDetailWatchLocked(upd.offerID)
			} else if upd.snap.Exists {
				p.details[upd.offerID] = upd.snap.Offer
			} else {
				delete(p.details, upd.offerID)
			}
			delete(p.overlay, upd.offerID)
			view := p.recomputeLocked()
			p.mu.Unlock()
			p.push(view)
		}
	}
}

// syncDetailWatchesLocked reconciles the per-offer watch registry against
// the current reservation registry: one live watch per held offer, torn
// down as soon as the hold is gone.
func (p *projection) syncDetailWatchesLocked() {
	held := make(map[string]bool, len(p.profile.ReservedOfferIDs))
	for _, offerID := range p.profile.ReservedOfferIDs {
		held[offerID] = true
		if _, ok := p.detailStops[offerID]; ok {
			continue
		}
		ch, stop := p.offerWatcher.WatchOffer(p.ctx, offerID)
		p.detailStops[offerID] = stop
		go p.forwardDetail(offerID, ch)
	}

	for offerID := range p.detailStops {
		if !held[offerID] {
			p.dropDetailWatchLocked(offerID)
		}
	}
}

func (p *projection) dropDetailWatchLocked(offerID string) {
	if stop, ok := p.detailStops[offerID]; ok {
		stop()
		delete(p.detailStops, offerID)
	}
	delete(p.details, offerID)
}

// forwardDetail drains one per-offer watch into the shared detail channel.
func (p *projection) forwardDetail(offerID string, ch <-chan repository.OfferSnapshot) {
	for snap := range ch {
		select {
		case p.detailCh <- detailUpdate{offerID: offerID, snap: snap}:
		case <-p.ctx.Done():
			return
		}
	}
}

// recomputeLocked rebuilds the full view from current state. It never
// patches a previous view in place.
func (p *projection) recomputeLocked() *usecase.AvailabilityView {
	view := &usecase.AvailabilityView{
		LocationID: p.profile.LocationID,
		Offers:     make([]*usecase.OfferView, 0, len(p.locOrder)),
		Reserved:   make([]*usecase.OfferView, 0, len(p.profile.ReservedOfferIDs)),
	}

	for _, offerID := range p.locOrder {
		offer := p.location[offerID]
		if offer == nil || !offer.Active {
			continue
		}
		view.Offers = append(view.Offers, p.offerViewLocked(offer))
	}

	// Reserved items keep reservation order and stay visible even when the
	// offer is inactive or belongs to a previous location.
	for _, offerID := range p.profile.ReservedOfferIDs {
		offer := p.details[offerID]
		if offer == nil {
			offer = p.location[offerID]
		}
		if offer == nil {
			continue
		}
		view.Reserved = append(view.Reserved, p.offerViewLocked(offer))
	}

	return view
}

func (p *projection) offerViewLocked(offer *entity.Offer) *usecase.OfferView {
	qty := offer.Qty - p.overlay[offer.ID]
	if qty < 0 {
		qty = 0
	}

	return &usecase.OfferView{
		ID:           offer.ID,
		Title:        offer.Title,
		PickupWindow: offer.PickupWindow,
		Contents:     offer.Contents,
		UnitPrice:    offer.UnitPrice.StringFixed(2),
		AvailableQty: qty,
		IsReserved:   p.profile.HasReserved(offer.ID),
		SoldOut:      qty <= 0,
	}
}

// push delivers a view with latest-wins semantics: a stale undelivered view
// is replaced rather than queued. The mutex also fences the send against
// teardown closing the channel.
func (p *projection) push(view *usecase.AvailabilityView) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	for {
		select {
		case p.updates <- view:
			return
		default:
		}
		select {
		case <-p.updates:
		default:
		}
	}
}

// teardown stops every subscription and closes the updates channel. Only
// the run loop calls it.
func (p *projection) teardown() {
	p.cancel()
	p.stopProfile()
	p.stopList()

	p.mu.Lock()
	p.closed = true
	for offerID := range p.detailStops {
		p.dropDetailWatchLocked(offerID)
	}
	p.mu.Unlock()

	close(p.updates)
}
