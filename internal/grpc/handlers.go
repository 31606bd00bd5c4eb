package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/clearbid/auctiond/internal/core/asset"
	"github.com/clearbid/auctiond/internal/core/auction"
)

// GetListingRequest identifies one asset's listing.
type GetListingRequest struct {
	// Class is the asset class (collection) name.
	Class string

	// AssetID is the asset's numeric identifier within the class.
	AssetID uint64
}

// GetListingResponse carries the listing record.
type GetListingResponse struct {
	// Seller is the hex account address of the listing owner.
	Seller string

	// LastBidder is the hex address of the lead bidder, empty if no bid.
	LastBidder string

	// ListedAt and EndsAt are unix seconds.
	ListedAt uint64
	EndsAt   uint64

	StartPrice   uint64
	CurrentPrice uint64
	AccruedFee   uint64

	// Active reports whether the auction is live.
	Active bool
}

// GetListing retrieves the listing for an asset.
func (s *Server) GetListing(ctx context.Context, req *GetListingRequest) (*GetListingResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	key := asset.Key{Class: asset.Class(req.Class), ID: req.AssetID}
	listing, err := s.engine.GetListing(ctx, key)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	if !listing.IsActive() {
		return nil, status.Error(codes.NotFound, "no active listing for asset")
	}

	resp := &GetListingResponse{
		Seller:       listing.Seller.String(),
		ListedAt:     listing.ListedAt,
		EndsAt:       listing.EndsAt,
		StartPrice:   listing.StartPrice,
		CurrentPrice: listing.CurrentPrice,
		AccruedFee:   listing.AccruedFee,
		Active:       true,
	}
	if listing.HasBid() {
		resp.LastBidder = listing.LastBidder.String()
	}
	return resp, nil
}

// IsEndedRequest identifies one asset's auction.
type IsEndedRequest struct {
	Class   string
	AssetID uint64
}

// IsEndedResponse reports the deadline check.
type IsEndedResponse struct {
	Ended bool
}

// IsEnded reports whether an auction's deadline has passed.
func (s *Server) IsEnded(ctx context.Context, req *IsEndedRequest) (*IsEndedResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	key := asset.Key{Class: asset.Class(req.Class), ID: req.AssetID}
	ended, err := s.engine.IsEnded(ctx, key)
	switch {
	case errors.Is(err, auction.ErrClassNotAllowed):
		return nil, status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, auction.ErrNoActiveListing):
		return nil, status.Error(codes.NotFound, err.Error())
	case err != nil:
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &IsEndedResponse{Ended: ended}, nil
}

// GetServiceConfigResponse carries the active auction parameters.
type GetServiceConfigResponse struct {
	FeeRatePercent         uint64
	BidIncreaseRatePercent uint64
	ExtensionDuration      uint64
	ExtensionWindow        uint64
}

// GetServiceConfig returns the configuration currently in effect.
func (s *Server) GetServiceConfig(ctx context.Context) (*GetServiceConfigResponse, error) {
	cfg, err := s.engine.ServiceConfig(ctx)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &GetServiceConfigResponse{
		FeeRatePercent:         cfg.FeeRatePercent,
		BidIncreaseRatePercent: cfg.BidIncreaseRatePercent,
		ExtensionDuration:      cfg.ExtensionDuration,
		ExtensionWindow:        cfg.ExtensionWindow,
	}, nil
}

// GetFeeTotalResponse carries the global collected fee total.
type GetFeeTotalResponse struct {
	Total uint64
}

// GetFeeTotal returns the accumulated service fees collected at settlement.
func (s *Server) GetFeeTotal(ctx context.Context) (*GetFeeTotalResponse, error) {
	total, err := s.engine.FeeTotal(ctx)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &GetFeeTotalResponse{Total: total}, nil
}
