package deres_protocol

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"deres-cli/program"
)

// PaperResult wraps a ResearchPaper account with its public key.
type PaperResult struct {
	PublicKey solana.PublicKey
	Account   program.ResearchPaper
}

// ProfileResult wraps a ResearcherProfile account with its public key.
type ProfileResult struct {
	PublicKey solana.PublicKey
	Account   program.ResearcherProfile
}

// ReviewResult wraps a PeerReview account with its public key.
type ReviewResult struct {
	PublicKey solana.PublicKey
	Account   program.PeerReview
}

// FetchAllPapers fetches all ResearchPaper accounts from the blockchain.
func (client *Client) FetchAllPapers() ([]*PaperResult, error) {
	resp, err := client.RpcClient.GetProgramAccountsWithOpts(
		context.Background(),
		program.ProgramID,
		&rpc.GetProgramAccountsOpts{
			Filters: []rpc.RPCFilter{
				{
					Memcmp: &rpc.RPCFilterMemcmp{
						Offset: 0,
						Bytes:  program.Account_ResearchPaper[:],
					},
				},
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get program accounts: %w", err)
	}

	var papers []*PaperResult
	for _, account := range resp {
		paper, err := program.ParseResearchPaper(account.Account.Data.GetBinary())
		if err != nil {
			// Log the error but continue with other accounts.
			fmt.Printf("failed to deserialize paper account %s: %v\n", account.Pubkey.String(), err)
			continue
		}
		papers = append(papers, &PaperResult{PublicKey: account.Pubkey, Account: *paper})
	}

	return papers, nil
}

// FetchPublishedPapers fetches all papers and filters to those readers
// can actually access.
func (client *Client) FetchPublishedPapers() ([]*PaperResult, error) {
	papers, err := client.FetchAllPapers()
	if err != nil {
		return nil, err
	}

	var published []*PaperResult
	for _, paper := range papers {
		if paper.Account.Published {
			published = append(published, paper)
		}
	}
	return published, nil
}

// FetchMyPapers fetches paper accounts published by the client's signer,
// filtering locally.
func (client *Client) FetchMyPapers() ([]*PaperResult, error) {
	papers, err := client.FetchAllPapers()
	if err != nil {
		return nil, err
	}

	var mine []*PaperResult
	for _, paper := range papers {
		if paper.Account.Publisher.Equals(client.Signer.PublicKey()) {
			mine = append(mine, paper)
		}
	}
	return mine, nil
}

// FetchAllProfiles fetches all ResearcherProfile accounts from the blockchain.
func (client *Client) FetchAllProfiles() ([]*ProfileResult, error) {
	resp, err := client.RpcClient.GetProgramAccountsWithOpts(
		context.Background(),
		program.ProgramID,
		&rpc.GetProgramAccountsOpts{
			Filters: []rpc.RPCFilter{
				{
					Memcmp: &rpc.RPCFilterMemcmp{
						Offset: 0,
						Bytes:  program.Account_ResearcherProfile[:],
					},
				},
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get program accounts: %w", err)
	}

	var profiles []*ProfileResult
	for _, account := range resp {
		profile, err := program.ParseResearcherProfile(account.Account.Data.GetBinary())
		if err != nil {
			fmt.Printf("failed to deserialize profile account %s: %v\n", account.Pubkey.String(), err)
			continue
		}
		profiles = append(profiles, &ProfileResult{PublicKey: account.Pubkey, Account: *profile})
	}

	return profiles, nil
}

// FetchReviewsForPaper fetches PeerReview accounts for one paper by
// filtering locally on the stored paper address.
func (client *Client) FetchReviewsForPaper(paperPDA solana.PublicKey) ([]*ReviewResult, error) {
	resp, err := client.RpcClient.GetProgramAccountsWithOpts(
		context.Background(),
		program.ProgramID,
		&rpc.GetProgramAccountsOpts{
			Filters: []rpc.RPCFilter{
				{
					Memcmp: &rpc.RPCFilterMemcmp{
						Offset: 0,
						Bytes:  program.Account_PeerReview[:],
					},
				},
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get program accounts for reviews: %w", err)
	}

	var reviews []*ReviewResult
	for _, account := range resp {
		review, err := program.ParsePeerReview(account.Account.Data.GetBinary())
		if err != nil {
			fmt.Printf("failed to deserialize review account %s: %v\n", account.Pubkey.String(), err)
			continue
		}
		if !review.Paper.Equals(paperPDA) {
			continue
		}
		reviews = append(reviews, &ReviewResult{PublicKey: account.Pubkey, Account: *review})
	}

	return reviews, nil
}

// AverageScores aggregates the per-dimension averages over a set of
// reviews. A nil or empty slice yields all zeros.
func AverageScores(reviews []*ReviewResult) (quality, potential, practicality, knowledge float64) {
	if len(reviews) == 0 {
		return 0, 0, 0, 0
	}
	for _, review := range reviews {
		quality += float64(review.Account.QualityOfResearch)
		potential += float64(review.Account.PotentialForRealWorldUseCase)
		practicality += float64(review.Account.PracticalityOfResultObtained)
		knowledge += float64(review.Account.DomainKnowledge)
	}
	n := float64(len(reviews))
	return quality / n, potential / n, practicality / n, knowledge / n
}
