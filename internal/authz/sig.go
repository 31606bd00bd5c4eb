package authz

import (
	"context"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/clearbid/auctiond/internal/core/account"
	"github.com/clearbid/auctiond/internal/core/auction"
	crypto "github.com/clearbid/auctiond/internal/crypto/common"
)

// Proof is a caller's authorization evidence: their compressed secp256k1
// public key and a DER-encoded ECDSA signature over the action digest.
type Proof struct {
	PubKey    []byte
	Signature []byte
}

type proofKey struct{}

// WithProof attaches an authorization proof to a request context. RPC and
// gRPC frontends call this before handing admin requests to the engine.
func WithProof(ctx context.Context, p Proof) context.Context {
	return context.WithValue(ctx, proofKey{}, p)
}

// proofFrom extracts the proof attached by WithProof.
func proofFrom(ctx context.Context) (Proof, bool) {
	p, ok := ctx.Value(proofKey{}).(Proof)
	return p, ok
}

// ActionDigest is the message a caller signs to authorize an action.
func ActionDigest(action auction.Action) [32]byte {
	return crypto.Sha512Half([]byte(action))
}

// SignAction produces a Proof for an action with the given private key.
// Intended for admin tooling and tests.
func SignAction(priv *secp256k1.PrivateKey, action auction.Action) Proof {
	digest := ActionDigest(action)
	sig := ecdsa.Sign(priv, digest[:])
	return Proof{
		PubKey:    priv.PubKey().SerializeCompressed(),
		Signature: sig.Serialize(),
	}
}

// SigAuthorizer grants actions to admin accounts that prove key possession:
// the request context must carry a Proof whose public key derives the
// caller's account ID and whose signature verifies over the action digest.
type SigAuthorizer struct {
	admins map[account.ID]struct{}
}

// NewSigAuthorizer builds a signature-checking authorizer over the given
// admin accounts.
func NewSigAuthorizer(admins ...account.ID) *SigAuthorizer {
	a := &SigAuthorizer{admins: make(map[account.ID]struct{}, len(admins))}
	for _, id := range admins {
		if !id.IsZero() {
			a.admins[id] = struct{}{}
		}
	}
	return a
}

// IsAuthorized implements auction.Authorizer. A missing or invalid proof is
// a plain "no", not an error: the engine maps it to an unauthorized result.
func (a *SigAuthorizer) IsAuthorized(ctx context.Context, caller account.ID, action auction.Action) (bool, error) {
	if _, ok := a.admins[caller]; !ok {
		return false, nil
	}
	proof, ok := proofFrom(ctx)
	if !ok {
		return false, nil
	}

	pubKey, err := secp256k1.ParsePubKey(proof.PubKey)
	if err != nil {
		return false, nil
	}
	if account.FromPubKey(pubKey.SerializeCompressed()) != caller {
		return false, nil
	}

	sig, err := ecdsa.ParseDERSignature(proof.Signature)
	if err != nil {
		return false, nil
	}
	digest := ActionDigest(action)
	return sig.Verify(digest[:], pubKey), nil
}
