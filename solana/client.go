package deres_protocol

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"

	"deres-cli/program"
)

// Client is a client for the DeResearch protocol.
type Client struct {
	RpcClient *rpc.Client
	Signer    solana.PrivateKey
}

// NewClient creates a new Client for the DeResearch protocol with a specific signer.
func NewClient(rpcEndpoint string, signer solana.PrivateKey) (*Client, error) {
	rpcClient := rpc.New(rpcEndpoint)

	return &Client{
		RpcClient: rpcClient,
		Signer:    signer,
	}, nil
}

// NewReadOnlyClient creates a new client for read-only operations that don't require a signer.
// It uses a dummy keypair internally.
func NewReadOnlyClient(rpcEndpoint string) (*Client, error) {
	rpcClient := rpc.New(rpcEndpoint)

	// Create a dummy wallet for read-only operations.
	dummyWallet := solana.NewWallet()

	return &Client{
		RpcClient: rpcClient,
		Signer:    dummyWallet.PrivateKey,
	}, nil
}

// GetProfilePDA returns the PDA for the current user's researcher profile.
func (c *Client) GetProfilePDA() (solana.PublicKey, uint8, error) {
	return program.DeriveResearcherProfilePDA(c.Signer.PublicKey())
}

// GetProfilePDAForResearcher returns the profile PDA for a specific researcher key.
func GetProfilePDAForResearcher(researcher solana.PublicKey) (solana.PublicKey, uint8, error) {
	return program.DeriveResearcherProfilePDA(researcher)
}

// GetPaperPDA returns the paper PDA for a content hash under the current signer.
func (c *Client) GetPaperPDA(contentHash [32]byte) (solana.PublicKey, uint8, error) {
	return program.DeriveResearchPaperPDA(contentHash, c.Signer.PublicKey())
}

// signAndSend wraps the instructions into a transaction signed by the
// client's keypair and submits it.
func (c *Client) signAndSend(instructions ...solana.Instruction) (*solana.Signature, error) {
	latestBlockhash, err := c.RpcClient.GetLatestBlockhash(context.Background(), rpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		latestBlockhash.Value.Blockhash,
		solana.TransactionPayer(c.Signer.PublicKey()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.Sign(
		func(key solana.PublicKey) *solana.PrivateKey {
			if c.Signer.PublicKey().Equals(key) {
				return &c.Signer
			}
			return nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := c.RpcClient.SendTransaction(context.Background(), tx)
	if err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	return &sig, nil
}

// CreateResearcherProfile sends a transaction to register the signer's
// researcher profile.
func (c *Client) CreateResearcherProfile(name string, metadataCommitment [32]byte) (*solana.Signature, error) {
	profilePDA, bump, err := c.GetProfilePDA()
	if err != nil {
		return nil, fmt.Errorf("failed to get profile PDA: %w", err)
	}

	instruction, err := NewCreateResearcherProfileInstruction(
		name,
		metadataCommitment,
		bump,
		c.Signer.PublicKey(),
		profilePDA,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CreateResearcherProfile instruction: %w", err)
	}

	return c.signAndSend(instruction)
}

// CreateResearchPaper sends a transaction to record a draft paper for
// the signer.
func (c *Client) CreateResearchPaper(contentHash []byte, accessFee uint64, metadataCommitment [32]byte) (*solana.Signature, error) {
	if len(contentHash) != 32 {
		return nil, fmt.Errorf("%w: got %d bytes", program.ErrInvalidContentHash, len(contentHash))
	}
	var hash [32]byte
	copy(hash[:], contentHash)

	profilePDA, _, err := c.GetProfilePDA()
	if err != nil {
		return nil, fmt.Errorf("failed to get profile PDA: %w", err)
	}
	paperPDA, bump, err := c.GetPaperPDA(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get paper PDA: %w", err)
	}

	instruction, err := NewCreateResearchPaperInstruction(
		contentHash,
		accessFee,
		metadataCommitment,
		bump,
		c.Signer.PublicKey(),
		profilePDA,
		paperPDA,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CreateResearchPaper instruction: %w", err)
	}

	return c.signAndSend(instruction)
}

// PublishPaper sends a transaction to flip one of the signer's draft
// papers to published.
func (c *Client) PublishPaper(contentHash [32]byte) (*solana.Signature, error) {
	paperPDA, bump, err := c.GetPaperPDA(contentHash)
	if err != nil {
		return nil, fmt.Errorf("failed to get paper PDA: %w", err)
	}

	instruction, err := NewPublishPaperInstruction(bump, c.Signer.PublicKey(), paperPDA)
	if err != nil {
		return nil, fmt.Errorf("failed to create PublishPaper instruction: %w", err)
	}

	return c.signAndSend(instruction)
}

// AddPeerReview sends a transaction recording the signer's review of a
// published paper.
func (c *Client) AddPeerReview(
	paperPDA solana.PublicKey,
	qualityOfResearch uint8,
	potentialForRealWorldUseCase uint8,
	practicalityOfResultObtained uint8,
	domainKnowledge uint8,
	metadataCommitment [32]byte,
) (*solana.Signature, error) {
	reviewerProfilePDA, _, err := c.GetProfilePDA()
	if err != nil {
		return nil, fmt.Errorf("failed to get reviewer profile PDA: %w", err)
	}
	reviewPDA, bump, err := program.DerivePeerReviewPDA(paperPDA, c.Signer.PublicKey())
	if err != nil {
		return nil, fmt.Errorf("failed to get review PDA: %w", err)
	}

	instruction, err := NewAddPeerReviewInstruction(
		qualityOfResearch,
		potentialForRealWorldUseCase,
		practicalityOfResultObtained,
		domainKnowledge,
		metadataCommitment,
		bump,
		c.Signer.PublicKey(),
		reviewerProfilePDA,
		paperPDA,
		reviewPDA,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AddPeerReview instruction: %w", err)
	}

	return c.signAndSend(instruction)
}

// MintResearchPaper sends a transaction paying the paper's access fee
// to its publisher and minting the signer's access token. The fee
// receiver is read from the paper account; supplying any other account
// would be rejected on-chain.
func (c *Client) MintResearchPaper(paperPDA solana.PublicKey) (*solana.Signature, error) {
	paper, err := c.FetchPaperAccount(paperPDA)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch paper before mint: %w", err)
	}

	reader := c.Signer.PublicKey()
	mintCollectionPDA, collectionBump, err := program.DeriveMintCollectionPDA(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to get mint collection PDA: %w", err)
	}
	whitelistPDA, whitelistBump, err := program.DeriveReaderWhitelistPDA(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to get reader whitelist PDA: %w", err)
	}
	tokenPDA, tokenBump, err := program.DeriveResearchTokenPDA(paperPDA, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to get token account PDA: %w", err)
	}

	instruction, err := NewMintResearchPaperInstruction(
		collectionBump,
		whitelistBump,
		tokenBump,
		reader,
		paperPDA,
		paper.Publisher,
		mintCollectionPDA,
		whitelistPDA,
		tokenPDA,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create MintResearchPaper instruction: %w", err)
	}

	return c.signAndSend(instruction)
}

// CheckAndAssignReputation sends a transaction assigning a reputation
// value to a researcher. The signer must be a configured reputation
// checker.
func (c *Client) CheckAndAssignReputation(researcher solana.PublicKey, reputation uint8) (*solana.Signature, error) {
	profilePDA, _, err := GetProfilePDAForResearcher(researcher)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile PDA: %w", err)
	}

	instruction, err := NewCheckAndAssignReputationInstruction(reputation, c.Signer.PublicKey(), profilePDA)
	if err != nil {
		return nil, fmt.Errorf("failed to create CheckAndAssignReputation instruction: %w", err)
	}

	return c.signAndSend(instruction)
}

// IsResearcherRegistered checks if the client's signer already has a
// profile account on-chain.
func (c *Client) IsResearcherRegistered() (bool, error) {
	profilePDA, _, err := c.GetProfilePDA()
	if err != nil {
		return false, fmt.Errorf("failed to get profile PDA for check: %w", err)
	}

	resp, err := c.RpcClient.GetAccountInfoWithOpts(context.Background(), profilePDA, &rpc.GetAccountInfoOpts{
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		// Not found comes back as an RPC error with a nil response; any
		// other failure is a real problem.
		if resp == nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get profile account info: %w", err)
	}
	if resp.Value == nil {
		return false, nil
	}
	return true, nil
}

// FetchProfileAccount fetches and parses the signer's profile account.
func (c *Client) FetchProfileAccount() (*program.ResearcherProfile, error) {
	profilePDA, _, err := c.GetProfilePDA()
	if err != nil {
		return nil, fmt.Errorf("failed to get profile PDA: %w", err)
	}
	return c.FetchProfileAccountAt(profilePDA)
}

// FetchProfileAccountAt fetches and parses a profile account at a known address.
func (c *Client) FetchProfileAccountAt(profilePDA solana.PublicKey) (*program.ResearcherProfile, error) {
	resp, err := c.RpcClient.GetAccountInfoWithOpts(context.Background(), profilePDA, &rpc.GetAccountInfoOpts{
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get profile account info: %w", err)
	}
	if resp.Value == nil {
		return nil, fmt.Errorf("researcher profile not found on-chain")
	}

	profile, err := program.ParseResearcherProfile(resp.Value.Data.GetBinary())
	if err != nil {
		return nil, fmt.Errorf("failed to parse profile account data: %w", err)
	}
	return profile, nil
}

// FetchPaperAccount fetches and parses a paper account.
func (c *Client) FetchPaperAccount(paperPDA solana.PublicKey) (*program.ResearchPaper, error) {
	resp, err := c.RpcClient.GetAccountInfoWithOpts(context.Background(), paperPDA, &rpc.GetAccountInfoOpts{
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get paper account info: %w", err)
	}
	if resp.Value == nil {
		return nil, fmt.Errorf("research paper not found on-chain")
	}

	paper, err := program.ParseResearchPaper(resp.Value.Data.GetBinary())
	if err != nil {
		return nil, fmt.Errorf("failed to parse paper account data: %w", err)
	}
	return paper, nil
}

// FetchMintCollection fetches the signer's mint collection. A missing
// account means the reader has never minted and is reported as a zero
// collection.
func (c *Client) FetchMintCollection() (*program.ResearchMintCollection, error) {
	collectionPDA, bump, err := program.DeriveMintCollectionPDA(c.Signer.PublicKey())
	if err != nil {
		return nil, fmt.Errorf("failed to get mint collection PDA: %w", err)
	}

	resp, err := c.RpcClient.GetAccountInfoWithOpts(context.Background(), collectionPDA, &rpc.GetAccountInfoOpts{
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil || resp.Value == nil {
		return &program.ResearchMintCollection{
			Reader: c.Signer.PublicKey(),
			Bump:   bump,
		}, nil
	}

	collection, err := program.ParseResearchMintCollection(resp.Value.Data.GetBinary())
	if err != nil {
		return nil, fmt.Errorf("failed to parse mint collection data: %w", err)
	}
	return collection, nil
}

// HasAccessToPaper checks whether the signer holds an access token for
// the paper.
func (c *Client) HasAccessToPaper(paperPDA solana.PublicKey) (bool, error) {
	tokenPDA, _, err := program.DeriveResearchTokenPDA(paperPDA, c.Signer.PublicKey())
	if err != nil {
		return false, fmt.Errorf("failed to get token account PDA: %w", err)
	}

	resp, err := c.RpcClient.GetAccountInfoWithOpts(context.Background(), tokenPDA, &rpc.GetAccountInfoOpts{
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		if resp == nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get token account info: %w", err)
	}
	if resp.Value == nil {
		return false, nil
	}

	if _, err := program.ParseResearchTokenAccount(resp.Value.Data.GetBinary()); err != nil {
		return false, fmt.Errorf("failed to parse token account data: %w", err)
	}
	return true, nil
}

// SendSol sends a specified amount of SOL to a recipient.
func (c *Client) SendSol(recipient solana.PublicKey, amountLamports uint64) (*solana.Signature, error) {
	instruction := system.NewTransferInstruction(
		amountLamports,
		c.Signer.PublicKey(),
		recipient,
	).Build()

	return c.signAndSend(instruction)
}

// GetBalance retrieves the SOL balance for a given public key.
func (c *Client) GetBalance(publicKey solana.PublicKey) (uint64, error) {
	balance, err := c.RpcClient.GetBalance(
		context.Background(),
		publicKey,
		rpc.CommitmentFinalized,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance.Value, nil
}
