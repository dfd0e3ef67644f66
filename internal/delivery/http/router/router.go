// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"madredder/internal/delivery/http/middleware"
	"madredder/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	ProfileHandler      *handler.ProfileHandler
	ReservationHandler  *handler.ReservationHandler
	OfferHandler        *handler.OfferHandler
	AvailabilityHandler *handler.AvailabilityHandler
	AuthHandler         *handler.AuthHandler
	AuthMiddleware      *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	profileHandler      *handler.ProfileHandler
	reservationHandler  *handler.ReservationHandler
	offerHandler        *handler.OfferHandler
	availabilityHandler *handler.AvailabilityHandler
	authHandler         *handler.AuthHandler
	authMiddleware      *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		profileHandler:      params.ProfileHandler,
		reservationHandler:  params.ReservationHandler,
		offerHandler:        params.OfferHandler,
		availabilityHandler: params.AvailabilityHandler,
		authHandler:         params.AuthHandler,
		authMiddleware:      params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Auth routes
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", r.profileHandler.Register)
		if r.authHandler.Enabled() {
			// Development sign-in; absent when Firebase handles auth client-side.
			authGroup.POST("/login", r.authHandler.Login)
		}
	}

	// Account routes that require authentication
	meGroup := e.Group("/me")
	meGroup.Use(r.authMiddleware.Authenticate)
	{
		meGroup.GET("", r.profileHandler.GetProfile)
		meGroup.PATCH("/contact", r.profileHandler.UpdateContact)
		meGroup.POST("/location", r.profileHandler.AttachLocation)
		meGroup.DELETE("", r.profileHandler.DeleteAccount)
		meGroup.DELETE("/reservations", r.reservationHandler.CancelAll)
	}

	// Reservation routes against a single offer
	offerGroup := e.Group("/offers")
	offerGroup.Use(r.authMiddleware.Authenticate)
	{
		offerGroup.POST("/:id/reservation", r.reservationHandler.Reserve)
		offerGroup.DELETE("/:id/reservation", r.reservationHandler.Cancel)
		offerGroup.GET("/:id/reservation/qr", r.reservationHandler.PickupQR)
	}

	// Read-side availability routes
	availabilityGroup := e.Group("/availability")
	availabilityGroup.Use(r.authMiddleware.Authenticate)
	{
		availabilityGroup.GET("", r.availabilityHandler.Snapshot)
		availabilityGroup.GET("/stream", r.availabilityHandler.Stream)
	}

	// Canteen-side offer management
	canteenGroup := e.Group("/canteen")
	canteenGroup.Use(r.authMiddleware.Authenticate)
	{
		canteenGroup.GET("/offers", r.offerHandler.List)
		canteenGroup.POST("/offers", r.offerHandler.Create)
		canteenGroup.PATCH("/offers/:id", r.offerHandler.Update)
		canteenGroup.POST("/offers/:id/deactivate", r.offerHandler.Deactivate)
		canteenGroup.DELETE("/offers/:id", r.offerHandler.Delete)
	}
}
