// Package program implements the DeResearch on-chain state machine:
// account schemas, deterministic address derivation, instruction
// validation and transition rules, and the authorization policy gating
// reputation assignment. The solana package in this repository encodes
// and submits these instructions against the deployed program; the
// Ledger type here supplies the runtime contract (atomic serialized
// execution, rent funding, lamport transfer) so every rule is testable
// in-process.
package program

import (
	"github.com/gagliardetto/solana-go"
)

// ProgramID is the deployed DeResearch program address.
var ProgramID = solana.MustPublicKeyFromBase58("FyoBWuGkYgcuaxeBKAXE82Y5NvB6cqn61Heog6s2xCEQ")

const (
	// MaxNameLen bounds a researcher's display name; the stored field is
	// zero padded to this length.
	MaxNameLen = 64

	// MaxScore is the upper bound of each peer-review dimension.
	MaxScore = 100

	// MaxReputation is the upper bound a reputation checker may assign.
	MaxReputation = 100
)

// AccountRef is one entry of an instruction's ordered account list.
type AccountRef struct {
	Key      solana.PublicKey
	Signer   bool
	Writable bool
}

// Instruction is the wire form the dispatcher consumes: a single-byte
// discriminator followed by the borsh-encoded arguments, plus the
// ordered accounts the instruction touches.
type Instruction struct {
	ProgramID solana.PublicKey
	Accounts  []AccountRef
	Data      []byte
}

// Meta builds an account list entry.
func Meta(key solana.PublicKey, signer, writable bool) AccountRef {
	return AccountRef{Key: key, Signer: signer, Writable: writable}
}
