// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package sidesig implements the signature capability spec.md §4.1 and §9
// require blockchain.ChainState to stay polymorphic over: an authorise
// operation (keypair + signatures-stripped txid -> Signature) and a verify
// operation (Signature + signatures-stripped txid -> valid bool, address).
//
// Two concrete instantiations are provided. Ed25519 is the spec's
// reference scheme, grounded on original_source/src/concrete.rs's
// Signature/Sig impl (ed25519_dalek). Secp256k1 is a second instantiation
// over the teacher's github.com/decred/dcrd/dcrec/secp256k1/v4 dependency.
// blockchain.ChainState accepts either through the Signature interface;
// this package's tests exercise both schemes, while blockchain's own
// tests use Ed25519 only.
package sidesig

import (
	"crypto/ed25519"
	"errors"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/nchashch/sdk/chainhash"
	"github.com/nchashch/sdk/chainutil"
	"github.com/nchashch/sdk/sidewire"
)

// Signature is implemented by every signature scheme usable to authorise
// spending a transaction input. Verify must fail, never panic, on
// malformed input (spec.md §4.1).
type Signature interface {
	// Verify reports whether the signature is valid over the given
	// signatures-stripped transaction id.
	Verify(strippedTxid chainhash.Hash) bool

	// SignerAddress returns the address this signature authorises,
	// independent of whether Verify succeeds, so that callers can
	// report AddressMismatch distinctly from BadSignature (spec.md §8
	// scenario S5).
	SignerAddress() chainutil.Address

	// Encode writes the canonical encoding of the signature, prefixed
	// with a scheme discriminant so DecodeSignature can reconstruct
	// the correct concrete type.
	Encode(w io.Writer) error
}

// Keypair is implemented by every signing identity able to authorise
// spending an input.
type Keypair interface {
	// Authorise produces a Signature binding the keypair to the
	// signatures-stripped transaction id.
	Authorise(strippedTxid chainhash.Hash) (Signature, error)

	// Address returns the address this keypair controls.
	Address() chainutil.Address
}

const (
	schemeEd25519   byte = 0
	schemeSecp256k1 byte = 1
)

// ErrUnknownScheme is returned by DecodeSignature when the discriminant
// byte does not name a known signature scheme.
var ErrUnknownScheme = errors.New("sidesig: unknown signature scheme")

// DecodeSignature reads a Signature written by Signature.Encode,
// dispatching on the leading scheme discriminant.
func DecodeSignature(r io.Reader) (Signature, error) {
	scheme, err := sidewire.ReadByte(r)
	if err != nil {
		return nil, err
	}
	switch scheme {
	case schemeEd25519:
		return decodeEd25519(r)
	case schemeSecp256k1:
		return decodeSecp256k1(r)
	default:
		return nil, ErrUnknownScheme
	}
}

// --- Ed25519 ---

// Ed25519Keypair is the reference signature scheme: Address is the
// chainhash.HashH of the raw public key bytes.
type Ed25519Keypair struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

// GenerateEd25519Keypair creates a new random Ed25519 keypair.
func GenerateEd25519Keypair(rand io.Reader) (*Ed25519Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand)
	if err != nil {
		return nil, err
	}
	return &Ed25519Keypair{Public: pub, Private: priv}, nil
}

// Address implements Keypair.
func (k *Ed25519Keypair) Address() chainutil.Address {
	return chainutil.NewAddress(chainhash.HashH(k.Public))
}

// Authorise implements Keypair.
func (k *Ed25519Keypair) Authorise(strippedTxid chainhash.Hash) (Signature, error) {
	sig := ed25519.Sign(k.Private, strippedTxid[:])
	return &Ed25519Signature{PublicKey: k.Public, Sig: sig}, nil
}

// Ed25519Signature is the Ed25519 instantiation of Signature.
type Ed25519Signature struct {
	PublicKey ed25519.PublicKey
	Sig       []byte
}

// Verify implements Signature.
func (s *Ed25519Signature) Verify(strippedTxid chainhash.Hash) bool {
	if len(s.PublicKey) != ed25519.PublicKeySize || len(s.Sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(s.PublicKey, strippedTxid[:], s.Sig)
}

// SignerAddress implements Signature.
func (s *Ed25519Signature) SignerAddress() chainutil.Address {
	return chainutil.NewAddress(chainhash.HashH(s.PublicKey))
}

// Encode implements Signature.
func (s *Ed25519Signature) Encode(w io.Writer) error {
	if err := sidewire.WriteByte(w, schemeEd25519); err != nil {
		return err
	}
	if err := sidewire.WriteVarBytes(w, s.PublicKey); err != nil {
		return err
	}
	return sidewire.WriteVarBytes(w, s.Sig)
}

func decodeEd25519(r io.Reader) (Signature, error) {
	pub, err := sidewire.ReadVarBytes(r, ed25519.PublicKeySize)
	if err != nil {
		return nil, err
	}
	sig, err := sidewire.ReadVarBytes(r, ed25519.SignatureSize)
	if err != nil {
		return nil, err
	}
	return &Ed25519Signature{PublicKey: pub, Sig: sig}, nil
}

// --- Secp256k1 ---

// Secp256k1Keypair is a second signature instantiation, over the curve
// the teacher's dependency on decred/dcrd/dcrec/secp256k1 provides.
// Address is chainhash.HashH of the compressed public key encoding.
type Secp256k1Keypair struct {
	Private *secp256k1.PrivateKey
}

// GenerateSecp256k1Keypair creates a new random secp256k1 keypair.
func GenerateSecp256k1Keypair() (*Secp256k1Keypair, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &Secp256k1Keypair{Private: priv}, nil
}

// Address implements Keypair.
func (k *Secp256k1Keypair) Address() chainutil.Address {
	pub := k.Private.PubKey().SerializeCompressed()
	return chainutil.NewAddress(chainhash.HashH(pub))
}

// Authorise implements Keypair.
func (k *Secp256k1Keypair) Authorise(strippedTxid chainhash.Hash) (Signature, error) {
	sig := ecdsa.Sign(k.Private, strippedTxid[:])
	pub := k.Private.PubKey().SerializeCompressed()
	return &Secp256k1Signature{PublicKey: pub, Sig: sig.Serialize()}, nil
}

// Secp256k1Signature is the secp256k1/ECDSA instantiation of Signature.
type Secp256k1Signature struct {
	PublicKey []byte // compressed, 33 bytes
	Sig       []byte // DER-encoded
}

// Verify implements Signature.
func (s *Secp256k1Signature) Verify(strippedTxid chainhash.Hash) bool {
	pub, err := secp256k1.ParsePubKey(s.PublicKey)
	if err != nil {
		return false
	}
	sig, err := ecdsa.ParseDERSignature(s.Sig)
	if err != nil {
		return false
	}
	return sig.Verify(strippedTxid[:], pub)
}

// SignerAddress implements Signature.
func (s *Secp256k1Signature) SignerAddress() chainutil.Address {
	return chainutil.NewAddress(chainhash.HashH(s.PublicKey))
}

// Encode implements Signature.
func (s *Secp256k1Signature) Encode(w io.Writer) error {
	if err := sidewire.WriteByte(w, schemeSecp256k1); err != nil {
		return err
	}
	if err := sidewire.WriteVarBytes(w, s.PublicKey); err != nil {
		return err
	}
	return sidewire.WriteVarBytes(w, s.Sig)
}

func decodeSecp256k1(r io.Reader) (Signature, error) {
	pub, err := sidewire.ReadVarBytes(r, 33)
	if err != nil {
		return nil, err
	}
	sig, err := sidewire.ReadVarBytes(r, 72)
	if err != nil {
		return nil, err
	}
	return &Secp256k1Signature{PublicKey: pub, Sig: sig}, nil
}
