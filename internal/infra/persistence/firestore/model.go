package firestore

import (
	"time"

	"madredder/internal/domain/entity"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Document shapes use the field names the deployed mobile clients already
// read and write (locID, reservedIds, pickup, ...); renaming them would
// orphan live data.

type offerDoc struct {
	LocationID   string    `firestore:"locID"`
	Title        string    `firestore:"title"`
	PickupWindow string    `firestore:"pickup"`
	Contents     []string  `firestore:"items"`
	UnitPrice    string    `firestore:"price"`
	Qty          int       `firestore:"qty"`
	Active       bool      `firestore:"active"`
	CreatedAt    time.Time `firestore:"createdAt"`
}

type profileDoc struct {
	Role             string    `firestore:"role"`
	LocationID       string    `firestore:"locID"`
	ReservedOfferIDs []string  `firestore:"reservedIds"`
	Email            string    `firestore:"email"`
	Phone            string    `firestore:"phone"`
	CreatedAt        time.Time `firestore:"createdAt"`
	UpdatedAt        time.Time `firestore:"updatedAt"`
}

type locationDoc struct {
	Name string `firestore:"name"`
}

func offerToDoc(o *entity.Offer) *offerDoc {
	return &offerDoc{
		LocationID:   o.LocationID,
		Title:        o.Title,
		PickupWindow: o.PickupWindow,
		Contents:     o.Contents,
		UnitPrice:    o.UnitPrice.String(),
		Qty:          o.Qty,
		Active:       o.Active,
		CreatedAt:    o.CreatedAt,
	}
}

func (d *offerDoc) toEntity(id string) (*entity.Offer, error) {
	price, err := decimal.NewFromString(d.UnitPrice)
	if err != nil {
		return nil, errors.Wrapf(err, "offer %s has malformed price %q", id, d.UnitPrice)
	}

	return &entity.Offer{
		ID:           id,
		LocationID:   d.LocationID,
		Title:        d.Title,
		PickupWindow: d.PickupWindow,
		Contents:     d.Contents,
		UnitPrice:    price,
		Qty:          d.Qty,
		Active:       d.Active,
		CreatedAt:    d.CreatedAt,
	}, nil
}

func profileToDoc(p *entity.Profile) *profileDoc {
	return &profileDoc{
		Role:             p.Role.String(),
		LocationID:       p.LocationID,
		ReservedOfferIDs: p.ReservedOfferIDs,
		Email:            p.Email,
		Phone:            p.Phone,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func (d *profileDoc) toEntity(userID string) *entity.Profile {
	return &entity.Profile{
		UserID:           userID,
		Role:             entity.Role(d.Role),
		LocationID:       d.LocationID,
		ReservedOfferIDs: d.ReservedOfferIDs,
		Email:            d.Email,
		Phone:            d.Phone,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}
