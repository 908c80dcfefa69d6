// Package cryptosecp256k1 is the default Crypto collaborator (spec §6),
// verifying proposer signatures with Schnorr signatures over secp256k1.
// Grounded on the teacher's own RawTxInSignature/SignatureScript signing
// path (domain/txscript/sign.go) and the newer SchnorrKeyPair-based API
// exercised by domain/consensus/utils/txscript/sign_test.go, both of which
// sit on top of github.com/kaspanet/go-secp256k1.
package cryptosecp256k1

import (
	"github.com/kaspanet/go-secp256k1"
	"github.com/pkg/errors"

	"github.com/meridian-dag/consensus/consensus"
)

// Crypto implements consensus.Crypto over secp256k1 Schnorr signatures. It
// carries no VRF support of its own (spec §2 Non-goals: the VRF/leader
// election suite is left to the caller) — VerifyVRF is a pass-through
// provided only so the collaborator can be wired in untouched when a
// deployment doesn't need VRF-gated proposal.
type Crypto struct {
	// VRFVerifier, if set, backs VerifyVRF. Left nil, VerifyVRF reports ok
	// for any block that carries no proof and fails any block that does.
	VRFVerifier func(pk consensus.PublicKey, input, proof []byte) ([]byte, bool)
}

// VerifySignature reports whether sig is a valid Schnorr signature by pk
// over msg, mirroring the verification half of the teacher's
// RawTxInSignature signing path.
func (c Crypto) VerifySignature(pk consensus.PublicKey, msg, sig []byte) bool {
	pubKey, err := secp256k1.DeserializeSchnorrPubKey(pk)
	if err != nil {
		log.WithError(err).Debug("malformed proposer public key")
		return false
	}

	schnorrSig, err := secp256k1.DeserializeSchnorrSignature(sig)
	if err != nil {
		log.WithError(err).Debug("malformed schnorr signature")
		return false
	}

	var secpHash secp256k1.Hash
	copy(secpHash[:], msg)

	valid, err := pubKey.SchnorrVerify(&secpHash, schnorrSig)
	if err != nil {
		log.WithError(err).Debug("schnorr verification error")
		return false
	}
	return valid
}

// VerifyVRF delegates to VRFVerifier when configured. The consensus core
// never inspects VRF internals itself (spec §2 Non-goals); this exists so
// a leader-election scheme can be plugged in without changing engine.go.
func (c Crypto) VerifyVRF(pk consensus.PublicKey, input, proof []byte) ([]byte, bool) {
	if c.VRFVerifier == nil {
		return nil, len(proof) == 0
	}
	return c.VRFVerifier(pk, input, proof)
}

// GenerateKeyPair is a convenience used by tests and the demo binary to
// produce a proposer identity, mirroring sign_test.go's mkGetKey fixtures.
func GenerateKeyPair() (*secp256k1.SchnorrKeyPair, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, errors.Errorf("cannot generate proposer key: %s", err)
	}
	return priv.SchnorrKeyPair()
}

// Sign produces a Schnorr signature over msg with key, in the serialized
// form VerifySignature expects.
func Sign(key *secp256k1.SchnorrKeyPair, msg []byte) ([]byte, error) {
	var secpHash secp256k1.Hash
	copy(secpHash[:], msg)
	sig, err := key.SchnorrSign(&secpHash)
	if err != nil {
		return nil, errors.Errorf("cannot sign: %s", err)
	}
	return sig.Serialize()[:], nil
}
