package program

import (
	"crypto/sha256"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

const testFunding = 10 * solana.LAMPORTS_PER_SOL

func newTestLedger(cfg Config) *Ledger {
	return NewLedger(cfg)
}

func createProfileInstruction(t *testing.T, researcher solana.PublicKey, name string) (Instruction, solana.PublicKey) {
	t.Helper()
	profileKey, bump, err := DeriveResearcherProfilePDA(researcher)
	require.NoError(t, err)
	data, err := EncodeCreateResearcherProfile(CreateResearcherProfileArgs{Name: name, Bump: bump})
	require.NoError(t, err)
	return Instruction{
		ProgramID: ProgramID,
		Accounts: []AccountRef{
			Meta(researcher, true, true),
			Meta(profileKey, false, true),
		},
		Data: data,
	}, profileKey
}

func createPaperInstruction(t *testing.T, publisher solana.PublicKey, contentHash [32]byte, accessFee uint64) (Instruction, solana.PublicKey) {
	t.Helper()
	profileKey, _, err := DeriveResearcherProfilePDA(publisher)
	require.NoError(t, err)
	paperKey, bump, err := DeriveResearchPaperPDA(contentHash, publisher)
	require.NoError(t, err)
	data, err := EncodeCreateResearchPaper(CreateResearchPaperArgs{
		ContentHash: contentHash,
		AccessFee:   accessFee,
		Bump:        bump,
	})
	require.NoError(t, err)
	return Instruction{
		ProgramID: ProgramID,
		Accounts: []AccountRef{
			Meta(publisher, true, true),
			Meta(profileKey, false, false),
			Meta(paperKey, false, true),
		},
		Data: data,
	}, paperKey
}

func publishPaperInstruction(t *testing.T, publisher, paperKey solana.PublicKey, bump uint8) Instruction {
	t.Helper()
	data, err := EncodePublishPaper(PublishPaperArgs{Bump: bump})
	require.NoError(t, err)
	return Instruction{
		ProgramID: ProgramID,
		Accounts: []AccountRef{
			Meta(publisher, true, false),
			Meta(paperKey, false, true),
		},
		Data: data,
	}
}

func addReviewInstruction(t *testing.T, reviewer, paperKey solana.PublicKey, scores [4]uint8) (Instruction, solana.PublicKey) {
	t.Helper()
	profileKey, _, err := DeriveResearcherProfilePDA(reviewer)
	require.NoError(t, err)
	reviewKey, bump, err := DerivePeerReviewPDA(paperKey, reviewer)
	require.NoError(t, err)
	data, err := EncodeAddPeerReview(AddPeerReviewArgs{
		QualityOfResearch:            scores[0],
		PotentialForRealWorldUseCase: scores[1],
		PracticalityOfResultObtained: scores[2],
		DomainKnowledge:              scores[3],
		Bump:                         bump,
	})
	require.NoError(t, err)
	return Instruction{
		ProgramID: ProgramID,
		Accounts: []AccountRef{
			Meta(reviewer, true, true),
			Meta(profileKey, false, false),
			Meta(paperKey, false, false),
			Meta(reviewKey, false, true),
		},
		Data: data,
	}, reviewKey
}

func mintInstruction(t *testing.T, reader, paperKey, feeReceiver solana.PublicKey) (Instruction, solana.PublicKey) {
	t.Helper()
	collectionKey, collectionBump, err := DeriveMintCollectionPDA(reader)
	require.NoError(t, err)
	whitelistKey, whitelistBump, err := DeriveReaderWhitelistPDA(reader)
	require.NoError(t, err)
	tokenKey, tokenBump, err := DeriveResearchTokenPDA(paperKey, reader)
	require.NoError(t, err)
	data, err := EncodeMintResearchPaper(MintResearchPaperArgs{
		MintCollectionBump:  collectionBump,
		ReaderWhitelistBump: whitelistBump,
		TokenAccountBump:    tokenBump,
	})
	require.NoError(t, err)
	return Instruction{
		ProgramID: ProgramID,
		Accounts: []AccountRef{
			Meta(reader, true, true),
			Meta(paperKey, false, false),
			Meta(feeReceiver, false, true),
			Meta(collectionKey, false, true),
			Meta(whitelistKey, false, true),
			Meta(tokenKey, false, true),
		},
		Data: data,
	}, tokenKey
}

func assignReputationInstruction(t *testing.T, checker, profileKey solana.PublicKey, reputation uint8) Instruction {
	t.Helper()
	data, err := EncodeCheckAndAssignReputation(CheckAndAssignReputationArgs{Reputation: reputation})
	require.NoError(t, err)
	return Instruction{
		ProgramID: ProgramID,
		Accounts: []AccountRef{
			Meta(checker, true, false),
			Meta(profileKey, false, true),
		},
		Data: data,
	}
}

// registerResearcher funds the key and creates its profile.
func registerResearcher(t *testing.T, ledger *Ledger, key solana.PublicKey, name string) solana.PublicKey {
	t.Helper()
	ledger.Fund(key, testFunding)
	ins, profileKey := createProfileInstruction(t, key, name)
	require.NoError(t, ledger.Execute(ins))
	return profileKey
}

// publishedPaper registers a publisher, creates a paper, and publishes it.
func publishedPaper(t *testing.T, ledger *Ledger, publisher solana.PublicKey, accessFee uint64) (solana.PublicKey, [32]byte) {
	t.Helper()
	registerResearcher(t, ledger, publisher, "publisher")
	contentHash := sha256.Sum256(publisher[:])
	ins, paperKey := createPaperInstruction(t, publisher, contentHash, accessFee)
	require.NoError(t, ledger.Execute(ins))
	_, bump, err := DeriveResearchPaperPDA(contentHash, publisher)
	require.NoError(t, err)
	require.NoError(t, ledger.Execute(publishPaperInstruction(t, publisher, paperKey, bump)))
	return paperKey, contentHash
}

func TestRentExemptBalance(t *testing.T) {
	require.Equal(t, uint64((138+128)*3480*2), RentExemptBalance(ResearcherProfileSize))
}

func TestCreateResearcherProfile(t *testing.T) {
	ledger := newTestLedger(DefaultConfig())
	researcher := solana.NewWallet().PublicKey()
	ledger.Fund(researcher, testFunding)

	ins, profileKey := createProfileInstruction(t, researcher, "Ada Lovelace")
	require.NoError(t, ledger.Execute(ins))

	acc := ledger.Account(profileKey)
	require.NotNil(t, acc)
	require.Equal(t, ProgramID, acc.Owner)
	require.Equal(t, RentExemptBalance(ResearcherProfileSize), acc.Lamports)

	profile, err := ParseResearcherProfile(acc.Data)
	require.NoError(t, err)
	require.Equal(t, researcher, profile.Owner)
	require.Equal(t, "Ada Lovelace", profile.DisplayName())
	require.Equal(t, uint8(0), profile.Reputation)

	// Rent came out of the researcher's balance.
	require.Equal(t, testFunding-RentExemptBalance(ResearcherProfileSize), ledger.Balance(researcher))
}

func TestCreateResearcherProfileMissingSigner(t *testing.T) {
	ledger := newTestLedger(DefaultConfig())
	researcher := solana.NewWallet().PublicKey()
	ledger.Fund(researcher, testFunding)

	ins, _ := createProfileInstruction(t, researcher, "nobody signed")
	ins.Accounts[0].Signer = false
	require.ErrorIs(t, ledger.Execute(ins), ErrMissingSigner)
}

func TestCreateResearcherProfileNameBounds(t *testing.T) {
	ledger := newTestLedger(DefaultConfig())
	researcher := solana.NewWallet().PublicKey()
	ledger.Fund(researcher, testFunding)

	ins, _ := createProfileInstruction(t, researcher, "")
	require.ErrorIs(t, ledger.Execute(ins), ErrInvalidName)

	long := make([]byte, MaxNameLen+1)
	for i := range long {
		long[i] = 'a'
	}
	ins, _ = createProfileInstruction(t, researcher, string(long))
	require.ErrorIs(t, ledger.Execute(ins), ErrInvalidName)

	// Exactly MaxNameLen is fine.
	ins, _ = createProfileInstruction(t, researcher, string(long[:MaxNameLen]))
	require.NoError(t, ledger.Execute(ins))
}

func TestCreateResearcherProfileAddressMismatch(t *testing.T) {
	ledger := newTestLedger(DefaultConfig())
	researcher := solana.NewWallet().PublicKey()
	ledger.Fund(researcher, testFunding)

	ins, _ := createProfileInstruction(t, researcher, "Ada")
	ins.Accounts[1].Key = solana.NewWallet().PublicKey()
	require.ErrorIs(t, ledger.Execute(ins), ErrAddressMismatch)
}

func TestCreateResearcherProfileDuplicate(t *testing.T) {
	ledger := newTestLedger(DefaultConfig())
	researcher := solana.NewWallet().PublicKey()
	registerResearcher(t, ledger, researcher, "Ada")

	ins, _ := createProfileInstruction(t, researcher, "Ada again")
	require.ErrorIs(t, ledger.Execute(ins), ErrAccountAlreadyInitialized)
}

func TestCreateResearchPaper(t *testing.T) {
	ledger := newTestLedger(DefaultConfig())
	publisher := solana.NewWallet().PublicKey()
	registerResearcher(t, ledger, publisher, "publisher")

	contentHash := sha256.Sum256([]byte("the paper content"))
	ins, paperKey := createPaperInstruction(t, publisher, contentHash, 5000)
	require.NoError(t, ledger.Execute(ins))

	acc := ledger.Account(paperKey)
	require.NotNil(t, acc)
	paper, err := ParseResearchPaper(acc.Data)
	require.NoError(t, err)
	require.Equal(t, publisher, paper.Publisher)
	require.Equal(t, contentHash, paper.ContentHash)
	require.Equal(t, uint64(5000), paper.AccessFee)
	require.False(t, paper.Published)
}

func TestCreateResearchPaperRequiresProfile(t *testing.T) {
	ledger := newTestLedger(DefaultConfig())
	publisher := solana.NewWallet().PublicKey()
	ledger.Fund(publisher, testFunding)

	contentHash := sha256.Sum256([]byte("orphan paper"))
	ins, _ := createPaperInstruction(t, publisher, contentHash, 0)
	require.ErrorIs(t, ledger.Execute(ins), ErrProfileNotFound)
}

func TestCreateResearchPaperWrongProfileAccount(t *testing.T) {
	ledger := newTestLedger(DefaultConfig())
	publisher := solana.NewWallet().PublicKey()
	registerResearcher(t, ledger, publisher, "publisher")

	contentHash := sha256.Sum256([]byte("misrouted profile"))
	ins, _ := createPaperInstruction(t, publisher, contentHash, 0)
	// Someone else's profile account in the profile slot must be rejected
	// even though that account exists and parses.
	other := solana.NewWallet().PublicKey()
	otherProfile := registerResearcher(t, ledger, other, "other")
	ins.Accounts[1].Key = otherProfile
	require.ErrorIs(t, ledger.Execute(ins), ErrAddressMismatch)
}

func TestAddPeerReviewWrongProfileAccount(t *testing.T) {
	ledger := newTestLedger(DefaultConfig())
	publisher := solana.NewWallet().PublicKey()
	paperKey, _ := publishedPaper(t, ledger, publisher, 0)

	reviewer := solana.NewWallet().PublicKey()
	registerResearcher(t, ledger, reviewer, "reviewer")
	other := solana.NewWallet().PublicKey()
	otherProfile := registerResearcher(t, ledger, other, "other")

	ins, _ := addReviewInstruction(t, reviewer, paperKey, [4]uint8{50, 50, 50, 50})
	ins.Accounts[1].Key = otherProfile
	require.ErrorIs(t, ledger.Execute(ins), ErrAddressMismatch)
}

func TestCreateResearchPaperDuplicate(t *testing.T) {
	ledger := newTestLedger(DefaultConfig())
	publisher := solana.NewWallet().PublicKey()
	registerResearcher(t, ledger, publisher, "publisher")

	contentHash := sha256.Sum256([]byte("same content"))
	ins, _ := createPaperInstruction(t, publisher, contentHash, 0)
	require.NoError(t, ledger.Execute(ins))

	ins, _ = createPaperInstruction(t, publisher, contentHash, 0)
	require.ErrorIs(t, ledger.Execute(ins), ErrDuplicatePaper)
}

func TestPublishPaper(t *testing.T) {
	ledger := newTestLedger(DefaultConfig())
	publisher := solana.NewWallet().PublicKey()
	registerResearcher(t, ledger, publisher, "publisher")

	contentHash := sha256.Sum256([]byte("draft"))
	ins, paperKey := createPaperInstruction(t, publisher, contentHash, 0)
	require.NoError(t, ledger.Execute(ins))

	_, bump, err := DeriveResearchPaperPDA(contentHash, publisher)
	require.NoError(t, err)
	require.NoError(t, ledger.Execute(publishPaperInstruction(t, publisher, paperKey, bump)))

	paper, err := ParseResearchPaper(ledger.Account(paperKey).Data)
	require.NoError(t, err)
	require.True(t, paper.Published)

	// Publishing is one-way; a second publish fails.
	require.ErrorIs(t, ledger.Execute(publishPaperInstruction(t, publisher, paperKey, bump)), ErrAlreadyPublished)
}

func TestPublishPaperUnauthorized(t *testing.T) {
	ledger := newTestLedger(DefaultConfig())
	publisher := solana.NewWallet().PublicKey()
	registerResearcher(t, ledger, publisher, "publisher")

	contentHash := sha256.Sum256([]byte("draft"))
	ins, paperKey := createPaperInstruction(t, publisher, contentHash, 0)
	require.NoError(t, ledger.Execute(ins))

	intruder := solana.NewWallet().PublicKey()
	ledger.Fund(intruder, testFunding)
	_, bump, err := DeriveResearchPaperPDA(contentHash, publisher)
	require.NoError(t, err)
	require.ErrorIs(t, ledger.Execute(publishPaperInstruction(t, intruder, paperKey, bump)), ErrUnauthorized)
}

func TestPublishPaperNotFound(t *testing.T) {
	ledger := newTestLedger(DefaultConfig())
	publisher := solana.NewWallet().PublicKey()
	ledger.Fund(publisher, testFunding)
	require.ErrorIs(t,
		ledger.Execute(publishPaperInstruction(t, publisher, solana.NewWallet().PublicKey(), 0)),
		ErrPaperNotFound)
}

func TestAddPeerReview(t *testing.T) {
	ledger := newTestLedger(DefaultConfig())
	publisher := solana.NewWallet().PublicKey()
	paperKey, _ := publishedPaper(t, ledger, publisher, 0)

	reviewer := solana.NewWallet().PublicKey()
	registerResearcher(t, ledger, reviewer, "reviewer")

	ins, reviewKey := addReviewInstruction(t, reviewer, paperKey, [4]uint8{90, 70, 60, 85})
	require.NoError(t, ledger.Execute(ins))

	review, err := ParsePeerReview(ledger.Account(reviewKey).Data)
	require.NoError(t, err)
	require.Equal(t, reviewer, review.Reviewer)
	require.Equal(t, paperKey, review.Paper)
	require.Equal(t, uint8(90), review.QualityOfResearch)
	require.Equal(t, uint8(70), review.PotentialForRealWorldUseCase)
	require.Equal(t, uint8(60), review.PracticalityOfResultObtained)
	require.Equal(t, uint8(85), review.DomainKnowledge)
	require.Equal(t, uint8((90+70+60+85)/4), review.AverageScore())
}

// Peer review precedes publication: a draft is reviewable, and the
// review survives the paper being published afterwards.
func TestAddPeerReviewDraftPaper(t *testing.T) {
	ledger := newTestLedger(DefaultConfig())
	publisher := solana.NewWallet().PublicKey()
	registerResearcher(t, ledger, publisher, "publisher")
	contentHash := sha256.Sum256([]byte("still a draft"))
	ins, paperKey := createPaperInstruction(t, publisher, contentHash, 0)
	require.NoError(t, ledger.Execute(ins))

	reviewer := solana.NewWallet().PublicKey()
	registerResearcher(t, ledger, reviewer, "reviewer")
	review, reviewKey := addReviewInstruction(t, reviewer, paperKey, [4]uint8{50, 50, 50, 50})
	require.NoError(t, ledger.Execute(review))

	stored, err := ParsePeerReview(ledger.Account(reviewKey).Data)
	require.NoError(t, err)
	require.Equal(t, paperKey, stored.Paper)

	_, bump, err := DeriveResearchPaperPDA(contentHash, publisher)
	require.NoError(t, err)
	require.NoError(t, ledger.Execute(publishPaperInstruction(t, publisher, paperKey, bump)))
	require.NotNil(t, ledger.Account(reviewKey))
}

func TestAddPeerReviewSelfReview(t *testing.T) {
	ledger := newTestLedger(DefaultConfig())
	publisher := solana.NewWallet().PublicKey()
	paperKey, _ := publishedPaper(t, ledger, publisher, 0)

	ins, _ := addReviewInstruction(t, publisher, paperKey, [4]uint8{100, 100, 100, 100})
	require.ErrorIs(t, ledger.Execute(ins), ErrSelfReviewForbidden)
}

func TestAddPeerReviewScoreOutOfRange(t *testing.T) {
	ledger := newTestLedger(DefaultConfig())
	publisher := solana.NewWallet().PublicKey()
	paperKey, _ := publishedPaper(t, ledger, publisher, 0)

	reviewer := solana.NewWallet().PublicKey()
	registerResearcher(t, ledger, reviewer, "reviewer")
	ins, _ := addReviewInstruction(t, reviewer, paperKey, [4]uint8{MaxScore + 1, 0, 0, 0})
	require.ErrorIs(t, ledger.Execute(ins), ErrScoreOutOfRange)
}

func TestAddPeerReviewRequiresProfile(t *testing.T) {
	ledger := newTestLedger(DefaultConfig())
	publisher := solana.NewWallet().PublicKey()
	paperKey, _ := publishedPaper(t, ledger, publisher, 0)

	reviewer := solana.NewWallet().PublicKey()
	ledger.Fund(reviewer, testFunding)
	ins, _ := addReviewInstruction(t, reviewer, paperKey, [4]uint8{50, 50, 50, 50})
	require.ErrorIs(t, ledger.Execute(ins), ErrProfileNotFound)
}

func TestAddPeerReviewReputationFloor(t *testing.T) {
	checker := solana.NewWallet().PublicKey()
	cfg := Config{
		ReputationCheckers:  []solana.PublicKey{checker},
		MinReviewReputation: 40,
	}
	ledger := newTestLedger(cfg)
	publisher := solana.NewWallet().PublicKey()
	paperKey, _ := publishedPaper(t, ledger, publisher, 0)

	reviewer := solana.NewWallet().PublicKey()
	profileKey := registerResearcher(t, ledger, reviewer, "reviewer")

	ins, _ := addReviewInstruction(t, reviewer, paperKey, [4]uint8{50, 50, 50, 50})
	require.ErrorIs(t, ledger.Execute(ins), ErrInsufficientReputation)

	// A checker raises the reviewer over the floor; the same review lands.
	require.NoError(t, ledger.Execute(assignReputationInstruction(t, checker, profileKey, 40)))
	require.NoError(t, ledger.Execute(ins))
}

func TestAddPeerReviewDuplicate(t *testing.T) {
	ledger := newTestLedger(DefaultConfig())
	publisher := solana.NewWallet().PublicKey()
	paperKey, _ := publishedPaper(t, ledger, publisher, 0)

	reviewer := solana.NewWallet().PublicKey()
	registerResearcher(t, ledger, reviewer, "reviewer")
	ins, _ := addReviewInstruction(t, reviewer, paperKey, [4]uint8{10, 20, 30, 40})
	require.NoError(t, ledger.Execute(ins))

	again, _ := addReviewInstruction(t, reviewer, paperKey, [4]uint8{90, 90, 90, 90})
	require.ErrorIs(t, ledger.Execute(again), ErrDuplicateReview)
}

func TestMintResearchPaper(t *testing.T) {
	ledger := newTestLedger(DefaultConfig())
	publisher := solana.NewWallet().PublicKey()
	const fee = uint64(2_000_000)
	paperKey, _ := publishedPaper(t, ledger, publisher, fee)
	publisherBefore := ledger.Balance(publisher)

	reader := solana.NewWallet().PublicKey()
	ledger.Fund(reader, testFunding)

	ins, tokenKey := mintInstruction(t, reader, paperKey, publisher)
	require.NoError(t, ledger.Execute(ins))

	// Fee went to the publisher.
	require.Equal(t, publisherBefore+fee, ledger.Balance(publisher))

	// Reader paid fee plus rent for the three new accounts.
	rents := RentExemptBalance(ReaderWhitelistSize) +
		RentExemptBalance(ResearchMintCollectionSize) +
		RentExemptBalance(ResearchTokenAccountSize)
	require.Equal(t, testFunding-fee-rents, ledger.Balance(reader))

	token, err := ParseResearchTokenAccount(ledger.Account(tokenKey).Data)
	require.NoError(t, err)
	require.Equal(t, reader, token.Reader)
	require.Equal(t, paperKey, token.Paper)

	whitelistKey, _, err := DeriveReaderWhitelistPDA(reader)
	require.NoError(t, err)
	whitelist, err := ParseReaderWhitelist(ledger.Account(whitelistKey).Data)
	require.NoError(t, err)
	require.Equal(t, reader, whitelist.Reader)

	collectionKey, _, err := DeriveMintCollectionPDA(reader)
	require.NoError(t, err)
	collection, err := ParseResearchMintCollection(ledger.Account(collectionKey).Data)
	require.NoError(t, err)
	require.Equal(t, uint64(1), collection.MintCount)
}

func TestMintResearchPaperSecondPaperSharesCollection(t *testing.T) {
	ledger := newTestLedger(DefaultConfig())
	publisherA := solana.NewWallet().PublicKey()
	publisherB := solana.NewWallet().PublicKey()
	paperA, _ := publishedPaper(t, ledger, publisherA, 0)
	paperB, _ := publishedPaper(t, ledger, publisherB, 0)

	reader := solana.NewWallet().PublicKey()
	ledger.Fund(reader, testFunding)

	insA, _ := mintInstruction(t, reader, paperA, publisherA)
	require.NoError(t, ledger.Execute(insA))
	insB, _ := mintInstruction(t, reader, paperB, publisherB)
	require.NoError(t, ledger.Execute(insB))

	collectionKey, _, err := DeriveMintCollectionPDA(reader)
	require.NoError(t, err)
	collection, err := ParseResearchMintCollection(ledger.Account(collectionKey).Data)
	require.NoError(t, err)
	require.Equal(t, uint64(2), collection.MintCount)
}

func TestMintResearchPaperUnpublished(t *testing.T) {
	ledger := newTestLedger(DefaultConfig())
	publisher := solana.NewWallet().PublicKey()
	registerResearcher(t, ledger, publisher, "publisher")
	contentHash := sha256.Sum256([]byte("not yet public"))
	create, paperKey := createPaperInstruction(t, publisher, contentHash, 0)
	require.NoError(t, ledger.Execute(create))

	reader := solana.NewWallet().PublicKey()
	ledger.Fund(reader, testFunding)
	ins, _ := mintInstruction(t, reader, paperKey, publisher)
	require.ErrorIs(t, ledger.Execute(ins), ErrPaperNotPublished)
}

func TestMintResearchPaperWrongFeeReceiver(t *testing.T) {
	ledger := newTestLedger(DefaultConfig())
	publisher := solana.NewWallet().PublicKey()
	paperKey, _ := publishedPaper(t, ledger, publisher, 1000)

	reader := solana.NewWallet().PublicKey()
	ledger.Fund(reader, testFunding)
	ins, _ := mintInstruction(t, reader, paperKey, solana.NewWallet().PublicKey())
	require.ErrorIs(t, ledger.Execute(ins), ErrInvalidFeeReceiver)
}

func TestMintResearchPaperAlreadyMinted(t *testing.T) {
	ledger := newTestLedger(DefaultConfig())
	publisher := solana.NewWallet().PublicKey()
	paperKey, _ := publishedPaper(t, ledger, publisher, 1000)

	reader := solana.NewWallet().PublicKey()
	ledger.Fund(reader, testFunding)
	ins, _ := mintInstruction(t, reader, paperKey, publisher)
	require.NoError(t, ledger.Execute(ins))
	require.ErrorIs(t, ledger.Execute(ins), ErrAlreadyMinted)
}

func TestMintResearchPaperRemintAllowed(t *testing.T) {
	ledger := newTestLedger(Config{AllowRemint: true})
	publisher := solana.NewWallet().PublicKey()
	const fee = uint64(1000)
	paperKey, _ := publishedPaper(t, ledger, publisher, fee)
	publisherBefore := ledger.Balance(publisher)

	reader := solana.NewWallet().PublicKey()
	ledger.Fund(reader, testFunding)
	ins, _ := mintInstruction(t, reader, paperKey, publisher)
	require.NoError(t, ledger.Execute(ins))
	require.NoError(t, ledger.Execute(ins))

	// The fee is paid each time; the counter advances each time.
	require.Equal(t, publisherBefore+2*fee, ledger.Balance(publisher))
	collectionKey, _, err := DeriveMintCollectionPDA(reader)
	require.NoError(t, err)
	collection, err := ParseResearchMintCollection(ledger.Account(collectionKey).Data)
	require.NoError(t, err)
	require.Equal(t, uint64(2), collection.MintCount)
}

func TestMintResearchPaperInsufficientFundsIsAtomic(t *testing.T) {
	ledger := newTestLedger(DefaultConfig())
	publisher := solana.NewWallet().PublicKey()
	const fee = uint64(1000)
	paperKey, _ := publishedPaper(t, ledger, publisher, fee)
	publisherBefore := ledger.Balance(publisher)

	// Enough for the fee, not for the rent that follows it.
	reader := solana.NewWallet().PublicKey()
	ledger.Fund(reader, fee+1)

	ins, tokenKey := mintInstruction(t, reader, paperKey, publisher)
	require.ErrorIs(t, ledger.Execute(ins), ErrInsufficientFunds)

	// Nothing committed: the fee snapped back and no account exists.
	require.Equal(t, publisherBefore, ledger.Balance(publisher))
	require.Equal(t, fee+1, ledger.Balance(reader))
	require.Nil(t, ledger.Account(tokenKey))
	whitelistKey, _, err := DeriveReaderWhitelistPDA(reader)
	require.NoError(t, err)
	require.Nil(t, ledger.Account(whitelistKey))
}

func TestCheckAndAssignReputation(t *testing.T) {
	checker := solana.NewWallet().PublicKey()
	ledger := newTestLedger(Config{ReputationCheckers: []solana.PublicKey{checker}})
	researcher := solana.NewWallet().PublicKey()
	profileKey := registerResearcher(t, ledger, researcher, "Ada")

	require.NoError(t, ledger.Execute(assignReputationInstruction(t, checker, profileKey, 85)))
	profile, err := ParseResearcherProfile(ledger.Account(profileKey).Data)
	require.NoError(t, err)
	require.Equal(t, uint8(85), profile.Reputation)

	// Downgrades are allowed; the new value replaces the old.
	require.NoError(t, ledger.Execute(assignReputationInstruction(t, checker, profileKey, 10)))
	profile, err = ParseResearcherProfile(ledger.Account(profileKey).Data)
	require.NoError(t, err)
	require.Equal(t, uint8(10), profile.Reputation)
}

func TestCheckAndAssignReputationUnauthorized(t *testing.T) {
	ledger := newTestLedger(DefaultConfig())
	researcher := solana.NewWallet().PublicKey()
	profileKey := registerResearcher(t, ledger, researcher, "Ada")

	impostor := solana.NewWallet().PublicKey()
	require.ErrorIs(t,
		ledger.Execute(assignReputationInstruction(t, impostor, profileKey, 50)),
		ErrUnauthorized)
}

func TestCheckAndAssignReputationBounds(t *testing.T) {
	checker := solana.NewWallet().PublicKey()
	ledger := newTestLedger(Config{ReputationCheckers: []solana.PublicKey{checker}})
	researcher := solana.NewWallet().PublicKey()
	profileKey := registerResearcher(t, ledger, researcher, "Ada")

	require.ErrorIs(t,
		ledger.Execute(assignReputationInstruction(t, checker, profileKey, MaxReputation+1)),
		ErrReputationOutOfRange)
}

func TestCheckAndAssignReputationProfileNotFound(t *testing.T) {
	checker := solana.NewWallet().PublicKey()
	ledger := newTestLedger(Config{ReputationCheckers: []solana.PublicKey{checker}})
	require.ErrorIs(t,
		ledger.Execute(assignReputationInstruction(t, checker, solana.NewWallet().PublicKey(), 50)),
		ErrProfileNotFound)
}

func TestExecuteRejectsForeignProgram(t *testing.T) {
	ledger := newTestLedger(DefaultConfig())
	researcher := solana.NewWallet().PublicKey()
	ledger.Fund(researcher, testFunding)
	ins, _ := createProfileInstruction(t, researcher, "Ada")
	ins.ProgramID = solana.NewWallet().PublicKey()
	require.ErrorIs(t, ledger.Execute(ins), ErrInvalidProgram)
}

func TestExecuteRejectsMalformedData(t *testing.T) {
	ledger := newTestLedger(DefaultConfig())
	researcher := solana.NewWallet().PublicKey()
	ledger.Fund(researcher, testFunding)
	ins, _ := createProfileInstruction(t, researcher, "Ada")

	empty := ins
	empty.Data = nil
	require.ErrorIs(t, ledger.Execute(empty), ErrInvalidInstructionData)

	unknown := ins
	unknown.Data = []byte{0xFF}
	require.ErrorIs(t, ledger.Execute(unknown), ErrInvalidInstructionData)

	truncated := ins
	truncated.Data = ins.Data[:len(ins.Data)-1]
	require.ErrorIs(t, ledger.Execute(truncated), ErrInvalidInstructionData)

	trailing := ins
	trailing.Data = append(append([]byte{}, ins.Data...), 0x00)
	require.ErrorIs(t, ledger.Execute(trailing), ErrInvalidInstructionData)
}

func TestExecuteNotEnoughAccounts(t *testing.T) {
	ledger := newTestLedger(DefaultConfig())
	researcher := solana.NewWallet().PublicKey()
	ledger.Fund(researcher, testFunding)
	ins, _ := createProfileInstruction(t, researcher, "Ada")
	ins.Accounts = ins.Accounts[:1]
	require.ErrorIs(t, ledger.Execute(ins), ErrNotEnoughAccounts)
}

func TestConcurrentDuplicateCreation(t *testing.T) {
	ledger := newTestLedger(DefaultConfig())
	researcher := solana.NewWallet().PublicKey()
	ledger.Fund(researcher, testFunding)
	ins, profileKey := createProfileInstruction(t, researcher, "Ada")

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = ledger.Execute(ins)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, ErrAccountAlreadyInitialized)
		}
	}
	require.Equal(t, 1, succeeded)
	require.NotNil(t, ledger.Account(profileKey))
}
