// Command seed populates the offers and locations collections with demo
// data for one canteen, so a fresh environment has something to browse.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"madredder/config"
	"madredder/internal/domain/entity"
	fsstore "madredder/internal/infra/persistence/firestore"

	firebase "firebase.google.com/go/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"google.golang.org/api/option"
)

func main() {
	locID := flag.String("loc", "1234", "4-digit canteen code to seed offers for")
	name := flag.String("name", "Demo Canteen", "display name for the canteen")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := run(context.Background(), logger, *locID, *name); err != nil {
		logger.Error("seeding failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, locID, name string) error {
	if !entity.IsValidLocationCode(locID) {
		return errors.Errorf("invalid canteen code %q, must be 4 digits", locID)
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}
	if cfg.Firestore == nil {
		return errors.New("firestore is not configured; seeding targets the managed store")
	}

	var opts []option.ClientOption
	if cfg.Firestore.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Firestore.CredentialsPath))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.Firestore.ProjectID}, opts...)
	if err != nil {
		return errors.Wrap(err, "failed to initialize Firebase app")
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get Firestore client")
	}
	defer client.Close()

	locationRepo := fsstore.NewLocationRepository(client)
	offerRepo := fsstore.NewOfferRepository(client)

	logger.Info("seeding canteen", slog.String("loc", locID), slog.String("name", name))

	if err := locationRepo.Create(ctx, &entity.Location{ID: locID, Name: name}); err != nil {
		return errors.Wrap(err, "failed to create location")
	}

	for _, o := range demoOffers(locID) {
		if err := offerRepo.Create(ctx, o); err != nil {
			return errors.Wrapf(err, "failed to create offer %s", o.ID)
		}
		logger.Info("offer seeded",
			slog.String("id", o.ID),
			slog.String("title", o.Title),
			slog.Int("qty", o.Qty),
		)
	}

	fmt.Println("Done.")

	return nil
}

func demoOffers(locID string) []*entity.Offer {
	type row struct {
		id     string
		title  string
		items  []string
		price  int64
		pickup string
		qty    int
	}

	rows := []row{
		{"1", "Pastaboks", []string{"Pasta", "Tomatsauce", "Salat"}, 15, "15:30-16:30", 3},
		{"2", "Vegetarboks", []string{"Grønt", "Hummus", "Brød"}, 12, "15:30-16:00", 0},
		{"3", "Smørrebrød mix", []string{"Æg/rejer", "Frikadelle", "Kartoffel"}, 20, "14:45-15:30", 6},
		{"4", "Suppe + brød", []string{"Tomatsuppe", "Flüte"}, 10, "15:00-16:00", 4},
		{"5", "Salatbowl", []string{"Kylling", "Quinoa", "Dressing"}, 18, "15:15-16:15", 2},
		{"6", "Wokboks", []string{"Nudler", "Grøntsager", "Soja"}, 16, "15:20-16:20", 5},
		{"7", "Lasagne", []string{"Oksekød", "Ost", "Salat"}, 22, "15:30-16:30", 1},
		{"8", "Dessertboks", []string{"Cheesecake", "Frugt"}, 8, "15:30-16:00", 7},
	}

	now := time.Now().UTC()
	offers := make([]*entity.Offer, 0, len(rows))
	for _, r := range rows {
		offers = append(offers, &entity.Offer{
			ID:           r.id,
			LocationID:   locID,
			Title:        r.title,
			PickupWindow: r.pickup,
			Contents:     r.items,
			UnitPrice:    decimal.NewFromInt(r.price),
			Qty:          r.qty,
			Active:       true,
			CreatedAt:    now,
		})
	}

	return offers
}
