package program

import (
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// Rent parameters mirroring the runtime's rent-exemption formula: an
// account must hold two years of rent for its size plus the 128-byte
// account overhead.
const (
	rentLamportsPerByteYear = 3480
	rentExemptionYears      = 2
	accountStorageOverhead  = 128
)

// RentExemptBalance returns the minimum lamport balance for an account
// of the given data size.
func RentExemptBalance(dataSize int) uint64 {
	return uint64(dataSize+accountStorageOverhead) * rentLamportsPerByteYear * rentExemptionYears
}

// Account is the ledger-side record: a lamport balance, the program that
// owns (and may mutate) the data, and the data itself.
type Account struct {
	Lamports uint64
	Owner    solana.PublicKey
	Data     []byte
}

func (a *Account) clone() *Account {
	c := &Account{Lamports: a.Lamports, Owner: a.Owner}
	if a.Data != nil {
		c.Data = make([]byte, len(a.Data))
		copy(c.Data, a.Data)
	}
	return c
}

// Ledger is an in-process account store with the runtime semantics the
// program depends on: instructions execute one at a time, and an
// instruction either commits all of its account mutations or none.
type Ledger struct {
	mu        sync.Mutex
	accounts  map[solana.PublicKey]*Account
	processor *Processor
}

// NewLedger builds an empty ledger executing instructions under cfg.
func NewLedger(cfg Config) *Ledger {
	return &Ledger{
		accounts:  make(map[solana.PublicKey]*Account),
		processor: NewProcessor(cfg),
	}
}

// Fund credits lamports to a system-owned account, creating it if
// needed. This stands in for the faucet / external transfers.
func (l *Ledger) Fund(key solana.PublicKey, lamports uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	acc, ok := l.accounts[key]
	if !ok {
		acc = &Account{}
		l.accounts[key] = acc
	}
	acc.Lamports += lamports
}

// Balance returns the lamport balance of key, zero when absent.
func (l *Ledger) Balance(key solana.PublicKey) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if acc, ok := l.accounts[key]; ok {
		return acc.Lamports
	}
	return 0
}

// Account returns a copy of the stored account, or nil when absent.
func (l *Ledger) Account(key solana.PublicKey) *Account {
	l.mu.Lock()
	defer l.mu.Unlock()
	if acc, ok := l.accounts[key]; ok {
		return acc.clone()
	}
	return nil
}

// ProgramAccounts returns copies of every account owned by the program
// whose data starts with the given discriminator.
func (l *Ledger) ProgramAccounts(discriminator [8]byte) map[solana.PublicKey]*Account {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[solana.PublicKey]*Account)
	for key, acc := range l.accounts {
		if !acc.Owner.Equals(ProgramID) || len(acc.Data) < 8 {
			continue
		}
		match := true
		for i := 0; i < 8; i++ {
			if acc.Data[i] != discriminator[i] {
				match = false
				break
			}
		}
		if match {
			out[key] = acc.clone()
		}
	}
	return out
}

// Execute runs one instruction atomically. Handlers operate on working
// copies; the copies replace the stored accounts only when the handler
// returns nil.
func (l *Ledger) Execute(ins Instruction) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !ins.ProgramID.Equals(ProgramID) {
		return ErrInvalidProgram
	}

	ctx := &txnContext{ledger: l, instruction: ins, working: make(map[solana.PublicKey]*Account)}
	if err := l.processor.Process(ctx, ins); err != nil {
		return err
	}
	for key, acc := range ctx.working {
		l.accounts[key] = acc
	}
	return nil
}

// txnContext is the mutable view one instruction executes against.
type txnContext struct {
	ledger      *Ledger
	instruction Instruction
	working     map[solana.PublicKey]*Account
}

// account returns the working copy for key, materializing it from the
// committed state on first touch. Absent accounts yield nil.
func (ctx *txnContext) account(key solana.PublicKey) *Account {
	if acc, ok := ctx.working[key]; ok {
		return acc
	}
	stored, ok := ctx.ledger.accounts[key]
	if !ok {
		return nil
	}
	acc := stored.clone()
	ctx.working[key] = acc
	return acc
}

// isSigner reports whether key appears in the instruction's account list
// with the signer flag set.
func (ctx *txnContext) isSigner(key solana.PublicKey) bool {
	for _, ref := range ctx.instruction.Accounts {
		if ref.Key.Equals(key) && ref.Signer {
			return true
		}
	}
	return false
}

// transfer moves lamports between accounts, debiting first.
func (ctx *txnContext) transfer(from, to solana.PublicKey, lamports uint64) error {
	src := ctx.account(from)
	if src == nil || src.Lamports < lamports {
		return fmt.Errorf("%w: %d lamports from %s", ErrInsufficientFunds, lamports, from)
	}
	dst := ctx.account(to)
	if dst == nil {
		dst = &Account{}
		ctx.working[to] = dst
	}
	src.Lamports -= lamports
	dst.Lamports += lamports
	return nil
}

// createAccount allocates a program-owned account of the given size at
// key, with payer funding the rent-exempt balance. Fails when an
// account already exists at key.
func (ctx *txnContext) createAccount(key, payer solana.PublicKey, size int) (*Account, error) {
	if existing := ctx.account(key); existing != nil && (existing.Lamports > 0 || len(existing.Data) > 0) {
		return nil, fmt.Errorf("%w: %s", ErrAccountAlreadyInitialized, key)
	}
	rent := RentExemptBalance(size)
	src := ctx.account(payer)
	if src == nil || src.Lamports < rent {
		return nil, fmt.Errorf("%w: %d lamports rent from %s", ErrInsufficientFunds, rent, payer)
	}
	src.Lamports -= rent
	acc := &Account{Lamports: rent, Owner: ProgramID, Data: make([]byte, size)}
	ctx.working[key] = acc
	return acc, nil
}
