package program

import "errors"

// Every handler fails fast on the first violated precondition; the
// enclosing transaction aborts and no mutation is committed. These are
// the error kinds a rejected transaction carries.
var (
	// Derivation errors.
	ErrAddressMismatch     = errors.New("derived address does not match supplied account")
	ErrDerivationExhausted = errors.New("program address derivation exhausted all bump seeds")

	// State errors.
	ErrAccountAlreadyInitialized = errors.New("account already initialized")
	ErrDuplicatePaper            = errors.New("paper already exists for this publisher and content hash")
	ErrDuplicateReview           = errors.New("reviewer already reviewed this paper")
	ErrAlreadyPublished          = errors.New("paper already published")
	ErrAlreadyMinted             = errors.New("paper already minted by this reader")
	ErrProfileNotFound           = errors.New("researcher profile not found")
	ErrPaperNotFound             = errors.New("research paper not found")
	ErrPaperNotPublished         = errors.New("paper is not published")

	// Authorization errors.
	ErrMissingSigner      = errors.New("required signer is missing")
	ErrUnauthorized       = errors.New("signer is not authorized")
	ErrSelfReviewForbidden = errors.New("publisher cannot review their own paper")
	ErrInvalidFeeReceiver = errors.New("fee receiver does not match the paper's publisher")

	// Validation errors.
	ErrInvalidName            = errors.New("name is empty or exceeds the maximum length")
	ErrInvalidContentHash     = errors.New("content hash must be exactly 32 bytes")
	ErrScoreOutOfRange        = errors.New("review score exceeds the maximum scale")
	ErrReputationOutOfRange   = errors.New("reputation exceeds the maximum value")
	ErrInsufficientReputation = errors.New("reviewer reputation below the configured minimum")

	// Dispatch errors.
	ErrInvalidInstructionData = errors.New("unexpected instruction data")
	ErrInvalidProgram         = errors.New("instruction addressed to a different program")
	ErrNotEnoughAccounts      = errors.New("instruction is missing required accounts")
	ErrInvalidAccountData     = errors.New("unexpected account data")

	// External errors, surfaced from the ledger's transfer primitive.
	ErrInsufficientFunds = errors.New("insufficient funds for transfer")
)
