package deres_protocol

import (
	"context"
	"fmt"
	"sync"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"deres-cli/program"
)

// GenericEvent represents a basic transaction event.
type GenericEvent struct {
	Signature solana.Signature `json:"signature"`
	Timestamp time.Time        `json:"timestamp"`
	Type      string           `json:"type"`
	Amount    uint64           `json:"amount,omitempty"`
	Sender    solana.PublicKey `json:"sender,omitempty"`
	Recipient solana.PublicKey `json:"recipient,omitempty"`
}

// HistoryResult holds the categorized history for one key.
type HistoryResult struct {
	SolHistory      []GenericEvent `json:"solHistory"`
	ProtocolHistory []GenericEvent `json:"protocolHistory"`
}

var instructionNames = map[uint8]string{
	program.InstructionCreateResearcherProfile:  "CreateResearcherProfile",
	program.InstructionCreateResearchPaper:      "CreateResearchPaper",
	program.InstructionPublishPaper:             "PublishPaper",
	program.InstructionAddPeerReview:            "AddPeerReview",
	program.InstructionMintResearchPaper:        "MintResearchPaper",
	program.InstructionCheckAndAssignReputation: "CheckAndAssignReputation",
}

// GetHistory fetches and parses the transaction history for a given public key.
func (c *Client) GetHistory(publicKey solana.PublicKey) (*HistoryResult, error) {
	result := &HistoryResult{
		SolHistory:      make([]GenericEvent, 0),
		ProtocolHistory: make([]GenericEvent, 0),
	}

	ctx := context.Background()
	limit := 1000 // Maximum allowed by Solana RPC

	signatures, err := c.RpcClient.GetSignaturesForAddressWithOpts(
		ctx,
		publicKey,
		&rpc.GetSignaturesForAddressOpts{
			Limit:      &limit,
			Commitment: rpc.CommitmentConfirmed,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transaction signatures: %w", err)
	}

	if len(signatures) == 0 {
		return result, nil
	}

	// Use a mutex to protect concurrent writes to result slices.
	var mu sync.Mutex
	var wg sync.WaitGroup

	// Process transactions concurrently in batches.
	batchSize := 10
	for i := 0; i < len(signatures); i += batchSize {
		end := i + batchSize
		if end > len(signatures) {
			end = len(signatures)
		}

		for j := i; j < end; j++ {
			wg.Add(1)
			go func(sigInfo *rpc.TransactionSignature) {
				defer wg.Done()

				version := uint64(0)
				tx, err := c.RpcClient.GetTransaction(
					ctx,
					sigInfo.Signature,
					&rpc.GetTransactionOpts{
						Encoding:                       solana.EncodingBase64,
						Commitment:                     rpc.CommitmentConfirmed,
						MaxSupportedTransactionVersion: &version,
					},
				)
				if err != nil {
					// Log error but continue processing other transactions.
					fmt.Printf("Warning: failed to fetch transaction %s: %v\n", sigInfo.Signature, err)
					return
				}

				parseTransactionForHistory(tx, publicKey, result, &mu)
			}(signatures[j])
		}

		// Wait for current batch to complete before starting next batch.
		wg.Wait()
	}

	return result, nil
}

// parseTransactionForHistory parses transaction data to build history.
func parseTransactionForHistory(tx *rpc.GetTransactionResult, self solana.PublicKey, result *HistoryResult, mu *sync.Mutex) {
	if tx == nil || tx.Meta == nil || tx.Transaction == nil {
		return
	}

	var timestamp time.Time
	if tx.BlockTime != nil {
		timestamp = tx.BlockTime.Time()
	} else {
		timestamp = time.Now()
	}

	parsed, err := tx.Transaction.GetTransaction()
	if err != nil {
		return
	}
	var signature solana.Signature
	if len(parsed.Signatures) > 0 {
		signature = parsed.Signatures[0]
	}

	for _, instr := range parsed.Message.Instructions {
		programIdx := instr.ProgramIDIndex
		if int(programIdx) >= len(parsed.Message.AccountKeys) {
			continue
		}
		programID := parsed.Message.AccountKeys[programIdx]

		switch {
		case programID.Equals(program.ProgramID):
			parseProtocolInstruction(parsed, instr, timestamp, signature, result, mu)
		case programID.Equals(solana.SystemProgramID):
			parseSolTransfer(parsed, instr, self, timestamp, signature, result, mu)
		}
	}
}

// parseProtocolInstruction categorizes one program instruction by its
// leading discriminator byte.
func parseProtocolInstruction(parsed *solana.Transaction, instr solana.CompiledInstruction, timestamp time.Time, signature solana.Signature, result *HistoryResult, mu *sync.Mutex) {
	if len(instr.Data) == 0 {
		return
	}
	name, found := instructionNames[instr.Data[0]]
	if !found {
		return
	}

	event := GenericEvent{
		Signature: signature,
		Timestamp: timestamp,
		Type:      name,
	}

	// The signer is always the first account of the instruction.
	if len(instr.Accounts) > 0 && int(instr.Accounts[0]) < len(parsed.Message.AccountKeys) {
		event.Sender = parsed.Message.AccountKeys[instr.Accounts[0]]
	}

	// Access fee spent on a mint shows up as the paper's fee; the fee
	// receiver is the third account of the instruction.
	if instr.Data[0] == program.InstructionMintResearchPaper &&
		len(instr.Accounts) > 2 && int(instr.Accounts[2]) < len(parsed.Message.AccountKeys) {
		event.Recipient = parsed.Message.AccountKeys[instr.Accounts[2]]
	}

	mu.Lock()
	result.ProtocolHistory = append(result.ProtocolHistory, event)
	mu.Unlock()
}

// parseSolTransfer extracts System Program transfers involving self.
func parseSolTransfer(parsed *solana.Transaction, instr solana.CompiledInstruction, self solana.PublicKey, timestamp time.Time, signature solana.Signature, result *HistoryResult, mu *sync.Mutex) {
	if len(instr.Data) < 4 {
		return
	}

	// Decode instruction type (first 4 bytes for System Program).
	decoder := bin.NewBorshDecoder(instr.Data)
	var instrType uint32
	if err := decoder.Decode(&instrType); err != nil {
		return
	}

	// 2 = Transfer instruction
	if instrType != 2 {
		return
	}

	var amount uint64
	if err := decoder.Decode(&amount); err != nil {
		return
	}

	if len(instr.Accounts) < 2 {
		return
	}
	fromIdx := instr.Accounts[0]
	toIdx := instr.Accounts[1]
	if int(fromIdx) >= len(parsed.Message.AccountKeys) || int(toIdx) >= len(parsed.Message.AccountKeys) {
		return
	}

	from := parsed.Message.AccountKeys[fromIdx]
	to := parsed.Message.AccountKeys[toIdx]

	// Only include if user is involved.
	if from != self && to != self {
		return
	}

	eventType := "SOLTransferSent"
	if to == self {
		eventType = "SOLTransferReceived"
	}

	event := GenericEvent{
		Signature: signature,
		Timestamp: timestamp,
		Type:      eventType,
		Amount:    amount,
		Sender:    from,
		Recipient: to,
	}

	mu.Lock()
	result.SolHistory = append(result.SolHistory, event)
	mu.Unlock()
}
