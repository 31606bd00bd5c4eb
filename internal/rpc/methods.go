package rpc

import (
	"encoding/hex"
	"encoding/json"

	"github.com/clearbid/auctiond/internal/authz"
	"github.com/clearbid/auctiond/internal/core/account"
	"github.com/clearbid/auctiond/internal/core/asset"
	"github.com/clearbid/auctiond/internal/core/auction"
	"github.com/clearbid/auctiond/internal/storage/archive"
)

// Deps are the collaborators the RPC methods operate on. Archive may be nil
// when no settlement archive is configured.
type Deps struct {
	Engine  *auction.Engine
	Archive archive.Archiver
}

// registerAllMethods wires every auction method into the registry.
func (s *Server) registerAllMethods(deps Deps) {
	s.registry.Register("ping", &PingMethod{})

	s.registry.Register("listing_create", &ListingCreateMethod{engine: deps.Engine})
	s.registry.Register("listing_bid", &ListingBidMethod{engine: deps.Engine})
	s.registry.Register("listing_cancel", &ListingCancelMethod{engine: deps.Engine})
	s.registry.Register("listing_finalize", &ListingFinalizeMethod{engine: deps.Engine})
	s.registry.Register("listing_info", &ListingInfoMethod{engine: deps.Engine})
	s.registry.Register("listing_ended", &ListingEndedMethod{engine: deps.Engine})

	s.registry.Register("config_info", &ConfigInfoMethod{engine: deps.Engine})
	s.registry.Register("config_set", &ConfigSetMethod{engine: deps.Engine})
	s.registry.Register("allowlist_set", &AllowListSetMethod{engine: deps.Engine})
	s.registry.Register("fee_total", &FeeTotalMethod{engine: deps.Engine})

	s.registry.Register("settlements_recent", &SettlementsRecentMethod{archive: deps.Archive})
}

// assetParams is the common asset addressing pair.
type assetParams struct {
	Class   string `json:"class"`
	AssetID uint64 `json:"asset_id"`
}

func (p *assetParams) key() asset.Key {
	return asset.Key{Class: asset.Class(p.Class), ID: p.AssetID}
}

// proofParams carries the optional signed authorization evidence on admin
// methods.
type proofParams struct {
	PubKey    string `json:"pub_key,omitempty"`
	Signature string `json:"signature,omitempty"`
}

// attach decodes the proof, if any, onto the context for the authorizer.
func (p *proofParams) attach(ctx *RpcContext) *RpcError {
	if p.PubKey == "" && p.Signature == "" {
		return nil
	}
	pubKey, err := hex.DecodeString(p.PubKey)
	if err != nil {
		return ErrInvalidParams("pub_key is not valid hex")
	}
	sig, err := hex.DecodeString(p.Signature)
	if err != nil {
		return ErrInvalidParams("signature is not valid hex")
	}
	ctx.Context = authz.WithProof(ctx.Context, authz.Proof{PubKey: pubKey, Signature: sig})
	return nil
}

func parseParams(params json.RawMessage, v interface{}) *RpcError {
	if params == nil {
		return ErrInvalidParams("missing params")
	}
	if err := json.Unmarshal(params, v); err != nil {
		return ErrInvalidParams("malformed params: " + err.Error())
	}
	return nil
}

func parseAccount(s string) (account.ID, *RpcError) {
	id, err := account.Parse(s)
	if err != nil {
		return account.ID{}, ErrInvalidParams(err.Error())
	}
	return id, nil
}

// applyResponse maps an engine ApplyResult into a response or error.
func applyResponse(res auction.ApplyResult) (interface{}, *RpcError) {
	if !res.Applied {
		return nil, NewRpcError(CodeNotApplied, res.Result.String(), res.Message)
	}
	out := map[string]interface{}{
		"applied": true,
		"result":  res.Result.String(),
	}
	if res.Listing != nil && res.Listing.IsActive() {
		out["listing"] = listingJSON(res.Listing)
	}
	return out, nil
}

func listingJSON(l *auction.Listing) map[string]interface{} {
	out := map[string]interface{}{
		"seller":        l.Seller.String(),
		"listed_at":     l.ListedAt,
		"ends_at":       l.EndsAt,
		"start_price":   l.StartPrice,
		"current_price": l.CurrentPrice,
		"accrued_fee":   l.AccruedFee,
		"status":        l.Status.String(),
	}
	if l.HasBid() {
		out["last_bidder"] = l.LastBidder.String()
	}
	return out
}

// PingMethod answers connectivity probes.
type PingMethod struct{}

func (m *PingMethod) Handle(*RpcContext, json.RawMessage) (interface{}, *RpcError) {
	return map[string]interface{}{}, nil
}

// ListingCreateMethod opens an auction.
type ListingCreateMethod struct {
	engine *auction.Engine
}

func (m *ListingCreateMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var req struct {
		assetParams
		Account    string `json:"account"`
		StartPrice uint64 `json:"start_price"`
		EndsAt     uint64 `json:"ends_at"`
	}
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAccount(req.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return applyResponse(m.engine.List(ctx.Context, caller, req.key(), req.StartPrice, req.EndsAt))
}

// ListingBidMethod places a bid.
type ListingBidMethod struct {
	engine *auction.Engine
}

func (m *ListingBidMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var req struct {
		assetParams
		Account  string `json:"account"`
		BidPrice uint64 `json:"bid_price"`
	}
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAccount(req.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return applyResponse(m.engine.Bid(ctx.Context, caller, req.key(), req.BidPrice))
}

// ListingCancelMethod withdraws an unbid listing.
type ListingCancelMethod struct {
	engine *auction.Engine
}

func (m *ListingCancelMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var req struct {
		assetParams
		Account string `json:"account"`
	}
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAccount(req.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return applyResponse(m.engine.Cancel(ctx.Context, caller, req.key()))
}

// ListingFinalizeMethod settles an ended auction.
type ListingFinalizeMethod struct {
	engine *auction.Engine
}

func (m *ListingFinalizeMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var req struct {
		assetParams
		Account string `json:"account"`
	}
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAccount(req.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return applyResponse(m.engine.Finalize(ctx.Context, caller, req.key()))
}

// ListingInfoMethod returns the listing record for an asset.
type ListingInfoMethod struct {
	engine *auction.Engine
}

func (m *ListingInfoMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var req assetParams
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	listing, err := m.engine.GetListing(ctx.Context, req.key())
	if err != nil {
		return nil, ErrInternal(err.Error())
	}
	if !listing.IsActive() {
		return nil, NewRpcError(CodeNotFound, "notListed", "no active listing for asset")
	}
	return map[string]interface{}{"listing": listingJSON(listing)}, nil
}

// ListingEndedMethod reports whether an auction's deadline has passed.
type ListingEndedMethod struct {
	engine *auction.Engine
}

func (m *ListingEndedMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var req assetParams
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	ended, err := m.engine.IsEnded(ctx.Context, req.key())
	if err != nil {
		return nil, NewRpcError(CodeNotFound, "notListed", err.Error())
	}
	return map[string]interface{}{"ended": ended}, nil
}

// ConfigInfoMethod returns the service configuration in effect.
type ConfigInfoMethod struct {
	engine *auction.Engine
}

func (m *ConfigInfoMethod) Handle(ctx *RpcContext, _ json.RawMessage) (interface{}, *RpcError) {
	cfg, err := m.engine.ServiceConfig(ctx.Context)
	if err != nil {
		return nil, ErrInternal(err.Error())
	}
	return map[string]interface{}{
		"fee_rate_percent":          cfg.FeeRatePercent,
		"bid_increase_rate_percent": cfg.BidIncreaseRatePercent,
		"extension_duration":        cfg.ExtensionDuration,
		"extension_window":          cfg.ExtensionWindow,
	}, nil
}

// ConfigSetMethod is the admin method replacing the service configuration.
type ConfigSetMethod struct {
	engine *auction.Engine
}

func (m *ConfigSetMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var req struct {
		proofParams
		Account                string `json:"account"`
		FeeRatePercent         uint64 `json:"fee_rate_percent"`
		BidIncreaseRatePercent uint64 `json:"bid_increase_rate_percent"`
		ExtensionDuration      uint64 `json:"extension_duration"`
		ExtensionWindow        uint64 `json:"extension_window"`
	}
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAccount(req.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := req.attach(ctx); rpcErr != nil {
		return nil, rpcErr
	}
	cfg := auction.ServiceConfig{
		FeeRatePercent:         req.FeeRatePercent,
		BidIncreaseRatePercent: req.BidIncreaseRatePercent,
		ExtensionDuration:      req.ExtensionDuration,
		ExtensionWindow:        req.ExtensionWindow,
	}
	return applyResponse(m.engine.SetServiceConfig(ctx.Context, caller, cfg))
}

// AllowListSetMethod is the admin method toggling allow-list membership.
type AllowListSetMethod struct {
	engine *auction.Engine
}

func (m *AllowListSetMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var req struct {
		proofParams
		Account string `json:"account"`
		Class   string `json:"class"`
		Allowed bool   `json:"allowed"`
	}
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAccount(req.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := req.attach(ctx); rpcErr != nil {
		return nil, rpcErr
	}
	return applyResponse(m.engine.SetAssetAllowed(ctx.Context, caller, asset.Class(req.Class), req.Allowed))
}

// FeeTotalMethod returns the global collected fee total.
type FeeTotalMethod struct {
	engine *auction.Engine
}

func (m *FeeTotalMethod) Handle(ctx *RpcContext, _ json.RawMessage) (interface{}, *RpcError) {
	total, err := m.engine.FeeTotal(ctx.Context)
	if err != nil {
		return nil, ErrInternal(err.Error())
	}
	return map[string]interface{}{"fee_total": total}, nil
}

// SettlementsRecentMethod lists recent archived settlements.
type SettlementsRecentMethod struct {
	archive archive.Archiver
}

func (m *SettlementsRecentMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	if m.archive == nil {
		return nil, NewRpcError(CodeNotFound, "noArchive", "settlement archive is not configured")
	}
	req := struct {
		Limit int `json:"limit"`
	}{Limit: 20}
	if params != nil {
		if err := json.Unmarshal(params, &req); err != nil {
			return nil, ErrInvalidParams("malformed params: " + err.Error())
		}
	}
	if req.Limit <= 0 || req.Limit > 1000 {
		return nil, ErrInvalidParams("limit must be between 1 and 1000")
	}

	settlements, err := m.archive.Recent(ctx.Context, req.Limit)
	if err != nil {
		return nil, ErrInternal(err.Error())
	}
	out := make([]map[string]interface{}, 0, len(settlements))
	for _, s := range settlements {
		entry := map[string]interface{}{
			"seq":         s.Seq,
			"class":       string(s.Asset.Class),
			"asset_id":    s.Asset.ID,
			"seller":      s.Seller.String(),
			"recipient":   s.Recipient().String(),
			"sold":        s.Sold,
			"final_price": s.FinalPrice,
			"accrued_fee": s.AccruedFee,
			"listed_at":   s.ListedAt,
			"ended_at":    s.EndedAt,
			"settled_at":  s.SettledAt.Unix(),
		}
		if s.Sold {
			entry["winner"] = s.Winner.String()
		}
		out = append(out, entry)
	}
	return map[string]interface{}{"settlements": out}, nil
}
