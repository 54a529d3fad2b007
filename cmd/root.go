package cmd

import (
	"crypto/sha256"
	"fmt"
	"os"
	"strconv"

	"deres-cli/storage"

	deres_protocol "deres-cli/solana"

	"github.com/AlecAivazis/survey/v2"
	figure "github.com/common-nighthawk/go-figure"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "deres-cli",
	Short: "DeResearch CLI helps you publish and review research on-chain.",
	Long:  `An interactive command-line interface to publish papers, write peer reviews, mint paper access, and manage your DeResearch wallet.`,
	Run:   run,
}

// run is the main entry point for the interactive CLI.
func run(cmd *cobra.Command, args []string) {
	myFigure := figure.NewFigure("DERESEARCH", "larry3d", true)
	fmt.Println(titleStyle.Render(myFigure.String()))

	// The main application loop is wrapped in profile selection.
	for {
		signer, profileName, err := runProfileSelection()
		if err != nil {
			// This error is returned when the user chooses to exit.
			fmt.Println("Exiting DeResearch CLI.")
			os.Exit(0)
		}
		runInteractive(signer, profileName)
	}
}

// runProfileSelection handles the UI for choosing or creating a wallet profile.
func runProfileSelection() (solana.PrivateKey, string, error) {
	db, err := storage.NewWalletStorage()
	if err != nil {
		panic(fmt.Sprintf("failed to connect to wallet storage: %v", err))
	}

	// If no researcher wallet exists, run the first-time initialization.
	if !isInitialized(db) {
		runInit(db)
	}

	for {
		profiles, err := db.GetAllWalletNames()
		if err != nil {
			panic(fmt.Sprintf("failed to get wallet profiles: %v", err))
		}

		options := append(profiles, "Create New Reader Profile", "Create New Checker Profile", "Exit")

		selection := ""
		prompt := &survey.Select{
			Message: promptStyle.Render("Choose a profile to continue:"),
			Options: options,
		}
		survey.AskOne(prompt, &selection)

		switch selection {
		case "Create New Reader Profile":
			handleCreateWalletProfile(db, "reader")
			// Loop again to show the new profile in the list.
			continue
		case "Create New Checker Profile":
			handleCreateWalletProfile(db, "checker")
			continue
		case "Exit":
			return nil, "", fmt.Errorf("user exited")
		default: // A profile was selected
			signer, err := db.GetWallet(selection)
			if err != nil {
				panic(fmt.Sprintf("failed to get wallet for profile '%s': %v", selection, err))
			}
			return signer, selection, nil
		}
	}
}

func runInteractive(signer solana.PrivateKey, profileName string) {
	client, err := deres_protocol.NewClient(GetRpcEndpoint(), signer)
	if err != nil {
		fmt.Println(warningStyle.Render(fmt.Sprintf("Failed to create Solana client: %v", err)))
		return
	}

	fmt.Printf("\n---\n")
	fmt.Println(titleStyle.Render(fmt.Sprintf("Operating with profile: %s", profileName)))
	fmt.Println(promptStyle.Render(fmt.Sprintf("Address: %s", signer.PublicKey())))
	fmt.Printf("---\n\n")

	var menuOptions []string
	switch profileName {
	case "researcher":
		fmt.Println(promptStyle.Render("Checking registration status..."))
		isRegistered, err := client.IsResearcherRegistered()
		if err != nil {
			fmt.Println(warningStyle.Render(fmt.Sprintf("Could not check researcher status: %v", err)))
			return
		}
		if isRegistered {
			menuOptions = []string{
				"View Researcher Dashboard",
				"Create Research Paper",
				"Publish Paper",
				"Review a Paper",
				"Transaction History",
				"Wallet Management",
				"Switch Profile",
			}
		} else {
			menuOptions = []string{
				"Register as Researcher",
				"Wallet Management",
				"Switch Profile",
			}
		}
	case "checker":
		menuOptions = []string{
			"Assign Reputation",
			"List Researchers",
			"Wallet Management",
			"Switch Profile",
		}
	default: // reader profiles
		menuOptions = []string{
			"Browse Published Papers",
			"Mint Paper Access",
			"Check Paper Access",
			"View Mint Collection",
			"Transaction History",
			"Wallet Management",
			"Switch Profile",
		}
	}

	menu := &survey.Select{
		Message: promptStyle.Render("Choose an action:"),
		Options: menuOptions,
		Help:    "Use the arrow keys to navigate, and press Enter to select.",
	}

	var choice string
	err = survey.AskOne(menu, &choice)
	if err != nil {
		fmt.Println(warningStyle.Render(err.Error()))
		return
	}

	switch choice {
	// Researcher actions
	case "Register as Researcher":
		handleRegistration(client)
	case "View Researcher Dashboard":
		handleResearcherDashboard(client)
	case "Create Research Paper":
		handleCreatePaper(client)
	case "Publish Paper":
		handlePublishPaper(client)
	case "Review a Paper":
		handleAddReview(client)
	// Reader actions
	case "Browse Published Papers":
		handleBrowsePapers(client)
	case "Mint Paper Access":
		handleMintAccess(client)
	case "Check Paper Access":
		handleCheckAccess(client)
	case "View Mint Collection":
		handleMintCollection(client)
	// Checker actions
	case "Assign Reputation":
		handleAssignReputation(client)
	case "List Researchers":
		handleListResearchers(client)
	// Common actions
	case "Transaction History":
		handleHistory(client)
	case "Wallet Management":
		handleWalletManagement(signer)
	case "Switch Profile":
		return // Exit this interactive loop to go back to profile selection
	}
	fmt.Println()
}

func runInit(db *storage.WalletStorage) {
	fmt.Println(titleStyle.Render("🚀 Welcome to DeResearch! Let's get you set up."))
	fmt.Println(promptStyle.Render("   Creating new default 'researcher' wallet..."))
	newWallet := solana.NewWallet()
	err := db.SaveWallet("researcher", newWallet.PrivateKey)
	if err != nil {
		panic(fmt.Sprintf("❌ Failed to save new researcher wallet: %v", err))
	}
	fmt.Println(titleStyle.Render("\n✅ Initialization Complete!"))
	fmt.Println(promptStyle.Render("   Your researcher wallet address:"), newWallet.PublicKey().String())
	fmt.Println(promptStyle.Render("\nPress Enter to continue..."))
	fmt.Scanln()
}

func handleCreateWalletProfile(db *storage.WalletStorage, name string) {
	fmt.Println(promptStyle.Render(fmt.Sprintf("\nCreating new %s wallet...", name)))
	newWallet := solana.NewWallet()
	err := db.SaveWallet(name, newWallet.PrivateKey)
	if err != nil {
		fmt.Println(warningStyle.Render(fmt.Sprintf("❌ Failed to save new %s wallet: %v", name, err)))
		return
	}
	fmt.Println(titleStyle.Render(fmt.Sprintf("\n✅ %s Profile Created!", name)))
	fmt.Println(promptStyle.Render(fmt.Sprintf("   Your %s wallet address:", name)), newWallet.PublicKey().String())
	fmt.Println(promptStyle.Render("\nPress Enter to continue..."))
	fmt.Scanln()
}

func isInitialized(db *storage.WalletStorage) bool {
	_, err := db.GetWallet("researcher")
	return err == nil
}

func handleRegistration(client *deres_protocol.Client) {
	fmt.Println(promptStyle.Render("\n🚀 Researcher Registration"))

	name := ""
	namePrompt := &survey.Input{Message: "Enter your researcher name:"}
	survey.AskOne(namePrompt, &name, survey.WithValidator(survey.Required))
	if len(name) > 64 {
		fmt.Println(warningStyle.Render("Name is too long (max 64 bytes)."))
		return
	}

	metadata := promptMetadata("affiliation", "orcid")
	metadata["name"] = name
	commitment, err := deres_protocol.ComputeMetadataCommitment(metadata)
	if err != nil {
		fmt.Println(warningStyle.Render(fmt.Sprintf("Failed to compute metadata commitment: %v", err)))
		return
	}

	fmt.Println(promptStyle.Render("\nRegistering researcher profile... Please wait."))
	sig, err := client.CreateResearcherProfile(name, commitment)
	if err != nil {
		fmt.Println(warningStyle.Render(fmt.Sprintf("\n❌ Registration failed: %v", err)))
		return
	}

	fmt.Println(titleStyle.Render("\n✅ Researcher Registration Successful!"))
	fmt.Printf("   Transaction Signature: %s\n", sig.String())
}

func handleResearcherDashboard(client *deres_protocol.Client) {
	profile, err := client.FetchProfileAccount()
	if err != nil {
		fmt.Println(warningStyle.Render(fmt.Sprintf("Failed to fetch profile: %v", err)))
		return
	}

	fmt.Println(titleStyle.Render("\n📊 Researcher Dashboard"))
	fmt.Println(infoStyle.Render(fmt.Sprintf("   Name:       %s", profile.DisplayName())))
	fmt.Println(infoStyle.Render(fmt.Sprintf("   Reputation: %d", profile.Reputation)))

	papers, err := client.FetchMyPapers()
	if err != nil {
		fmt.Println(warningStyle.Render(fmt.Sprintf("Failed to fetch papers: %v", err)))
		return
	}
	fmt.Println(infoStyle.Render(fmt.Sprintf("   Papers:     %d", len(papers))))
	for _, paper := range papers {
		status := "draft"
		if paper.Account.Published {
			status = "published"
		}
		fmt.Println(promptStyle.Render(fmt.Sprintf("     %s [%s] fee %d lamports", paper.PublicKey, status, paper.Account.AccessFee)))
	}
}

func handleCreatePaper(client *deres_protocol.Client) {
	fmt.Println(promptStyle.Render("\n📄 Create Research Paper"))

	filePath := ""
	filePrompt := &survey.Input{Message: "Enter the path to the paper file (PDF etc.):"}
	survey.AskOne(filePrompt, &filePath, survey.WithValidator(survey.Required))

	content, err := os.ReadFile(filePath)
	if err != nil {
		fmt.Println(warningStyle.Render(fmt.Sprintf("Failed to read paper file: %v", err)))
		return
	}
	contentHash := sha256.Sum256(content)

	feeStr := ""
	feePrompt := &survey.Input{Message: "Enter access fee in SOL:", Default: "0.1"}
	survey.AskOne(feePrompt, &feeStr)
	feeFloat, err := strconv.ParseFloat(feeStr, 64)
	if err != nil {
		fmt.Println(warningStyle.Render("Invalid fee entered."))
		return
	}
	feeLamports := uint64(feeFloat * float64(solana.LAMPORTS_PER_SOL))

	metadata := promptMetadata("title", "abstract")
	commitment, err := deres_protocol.ComputeMetadataCommitment(metadata)
	if err != nil {
		fmt.Println(warningStyle.Render(fmt.Sprintf("Failed to compute metadata commitment: %v", err)))
		return
	}

	fmt.Println(promptStyle.Render("\nRecording paper on-chain... Please wait."))
	sig, err := client.CreateResearchPaper(contentHash[:], feeLamports, commitment)
	if err != nil {
		fmt.Println(warningStyle.Render(fmt.Sprintf("\n❌ Failed to create paper: %v", err)))
		return
	}

	fmt.Println(titleStyle.Render("\n✅ Paper Recorded as Draft!"))
	fmt.Println(infoStyle.Render(fmt.Sprintf("   Content hash: %x", contentHash)))
	fmt.Printf("   Transaction Signature: %s\n", sig.String())
}

func handlePublishPaper(client *deres_protocol.Client) {
	papers, err := client.FetchMyPapers()
	if err != nil {
		fmt.Println(warningStyle.Render(fmt.Sprintf("Failed to fetch papers: %v", err)))
		return
	}

	var drafts []string
	byLabel := make(map[string][32]byte)
	for _, paper := range papers {
		if paper.Account.Published {
			continue
		}
		label := fmt.Sprintf("%s (fee %d lamports)", paper.PublicKey, paper.Account.AccessFee)
		drafts = append(drafts, label)
		byLabel[label] = paper.Account.ContentHash
	}
	if len(drafts) == 0 {
		fmt.Println(promptStyle.Render("\nNo draft papers to publish."))
		return
	}

	selection := ""
	prompt := &survey.Select{
		Message: promptStyle.Render("Choose a draft to publish:"),
		Options: drafts,
	}
	survey.AskOne(prompt, &selection)
	contentHash, ok := byLabel[selection]
	if !ok {
		return
	}

	fmt.Println(promptStyle.Render("\nPublishing paper... Please wait."))
	sig, err := client.PublishPaper(contentHash)
	if err != nil {
		fmt.Println(warningStyle.Render(fmt.Sprintf("\n❌ Failed to publish paper: %v", err)))
		return
	}

	fmt.Println(titleStyle.Render("\n✅ Paper Published!"))
	fmt.Printf("   Transaction Signature: %s\n", sig.String())
}

// selectPublishedPaper lists published papers and returns the chosen address.
func selectPublishedPaper(client *deres_protocol.Client) (solana.PublicKey, bool) {
	papers, err := client.FetchPublishedPapers()
	if err != nil {
		fmt.Println(warningStyle.Render(fmt.Sprintf("Failed to fetch papers: %v", err)))
		return solana.PublicKey{}, false
	}
	if len(papers) == 0 {
		fmt.Println(promptStyle.Render("\nNo published papers found."))
		return solana.PublicKey{}, false
	}

	var options []string
	byLabel := make(map[string]solana.PublicKey)
	for _, paper := range papers {
		label := fmt.Sprintf("%s (publisher %s, fee %d lamports)", paper.PublicKey, paper.Account.Publisher, paper.Account.AccessFee)
		options = append(options, label)
		byLabel[label] = paper.PublicKey
	}

	selection := ""
	prompt := &survey.Select{
		Message: promptStyle.Render("Choose a paper:"),
		Options: options,
	}
	survey.AskOne(prompt, &selection)
	key, ok := byLabel[selection]
	return key, ok
}

// selectAnyPaper lists every paper, drafts included, so reviewers can
// assess work before it is published.
func selectAnyPaper(client *deres_protocol.Client) (solana.PublicKey, bool) {
	papers, err := client.FetchAllPapers()
	if err != nil {
		fmt.Println(warningStyle.Render(fmt.Sprintf("Failed to fetch papers: %v", err)))
		return solana.PublicKey{}, false
	}
	if len(papers) == 0 {
		fmt.Println(promptStyle.Render("\nNo papers found."))
		return solana.PublicKey{}, false
	}

	var options []string
	byLabel := make(map[string]solana.PublicKey)
	for _, paper := range papers {
		status := "draft"
		if paper.Account.Published {
			status = "published"
		}
		label := fmt.Sprintf("%s [%s] (publisher %s)", paper.PublicKey, status, paper.Account.Publisher)
		options = append(options, label)
		byLabel[label] = paper.PublicKey
	}

	selection := ""
	prompt := &survey.Select{
		Message: promptStyle.Render("Choose a paper:"),
		Options: options,
	}
	survey.AskOne(prompt, &selection)
	key, ok := byLabel[selection]
	return key, ok
}

func handleAddReview(client *deres_protocol.Client) {
	fmt.Println(promptStyle.Render("\n✍️  Peer Review"))

	paperPDA, ok := selectAnyPaper(client)
	if !ok {
		return
	}

	scores := make([]uint8, 4)
	labels := []string{
		"Quality of research (0-100):",
		"Potential for real-world use case (0-100):",
		"Practicality of result obtained (0-100):",
		"Domain knowledge (0-100):",
	}
	for i, label := range labels {
		scoreStr := ""
		prompt := &survey.Input{Message: label, Default: "50"}
		survey.AskOne(prompt, &scoreStr)
		score, err := strconv.ParseUint(scoreStr, 10, 8)
		if err != nil || score > 100 {
			fmt.Println(warningStyle.Render("Scores must be between 0 and 100."))
			return
		}
		scores[i] = uint8(score)
	}

	metadata := promptMetadata("summary")
	commitment, err := deres_protocol.ComputeMetadataCommitment(metadata)
	if err != nil {
		fmt.Println(warningStyle.Render(fmt.Sprintf("Failed to compute metadata commitment: %v", err)))
		return
	}

	fmt.Println(promptStyle.Render("\nSubmitting review... Please wait."))
	sig, err := client.AddPeerReview(paperPDA, scores[0], scores[1], scores[2], scores[3], commitment)
	if err != nil {
		fmt.Println(warningStyle.Render(fmt.Sprintf("\n❌ Failed to submit review: %v", err)))
		return
	}

	fmt.Println(titleStyle.Render("\n✅ Review Submitted!"))
	fmt.Printf("   Transaction Signature: %s\n", sig.String())
}

func handleBrowsePapers(client *deres_protocol.Client) {
	papers, err := client.FetchPublishedPapers()
	if err != nil {
		fmt.Println(warningStyle.Render(fmt.Sprintf("Failed to fetch papers: %v", err)))
		return
	}
	if len(papers) == 0 {
		fmt.Println(promptStyle.Render("\nNo published papers found."))
		return
	}

	fmt.Println(titleStyle.Render("\n📚 Published Papers"))
	for _, paper := range papers {
		fmt.Println(infoStyle.Render(fmt.Sprintf("   %s", paper.PublicKey)))
		fmt.Println(promptStyle.Render(fmt.Sprintf("     publisher: %s", paper.Account.Publisher)))
		fmt.Println(promptStyle.Render(fmt.Sprintf("     fee:       %d lamports", paper.Account.AccessFee)))

		reviews, err := client.FetchReviewsForPaper(paper.PublicKey)
		if err != nil || len(reviews) == 0 {
			continue
		}
		quality, potential, practicality, knowledge := deres_protocol.AverageScores(reviews)
		fmt.Println(promptStyle.Render(fmt.Sprintf(
			"     reviews:   %d (quality %.1f, potential %.1f, practicality %.1f, knowledge %.1f)",
			len(reviews), quality, potential, practicality, knowledge)))
	}
}

func handleMintAccess(client *deres_protocol.Client) {
	fmt.Println(promptStyle.Render("\n🎟️  Mint Paper Access"))

	paperPDA, ok := selectPublishedPaper(client)
	if !ok {
		return
	}

	paper, err := client.FetchPaperAccount(paperPDA)
	if err != nil {
		fmt.Println(warningStyle.Render(fmt.Sprintf("Failed to fetch paper: %v", err)))
		return
	}

	confirm := false
	confirmPrompt := &survey.Confirm{
		Message: fmt.Sprintf("This will pay %d lamports to the publisher. Continue?", paper.AccessFee),
		Default: false,
	}
	survey.AskOne(confirmPrompt, &confirm)
	if !confirm {
		fmt.Println(promptStyle.Render("\nMint cancelled."))
		return
	}

	fmt.Println(promptStyle.Render("\nMinting access token... Please wait."))
	sig, err := client.MintResearchPaper(paperPDA)
	if err != nil {
		fmt.Println(warningStyle.Render(fmt.Sprintf("\n❌ Failed to mint access: %v", err)))
		return
	}

	fmt.Println(titleStyle.Render("\n✅ Access Token Minted!"))
	fmt.Printf("   Transaction Signature: %s\n", sig.String())
}

func handleCheckAccess(client *deres_protocol.Client) {
	paperStr := ""
	prompt := &survey.Input{Message: "Enter the paper address:"}
	survey.AskOne(prompt, &paperStr, survey.WithValidator(survey.Required))

	paperPDA, err := solana.PublicKeyFromBase58(paperStr)
	if err != nil {
		fmt.Println(warningStyle.Render("Invalid paper address."))
		return
	}

	hasAccess, err := client.HasAccessToPaper(paperPDA)
	if err != nil {
		fmt.Println(warningStyle.Render(fmt.Sprintf("Failed to check access: %v", err)))
		return
	}

	if hasAccess {
		fmt.Println(titleStyle.Render("\n✅ You hold an access token for this paper."))
	} else {
		fmt.Println(promptStyle.Render("\nNo access token found. Mint one to read this paper."))
	}
}

func handleMintCollection(client *deres_protocol.Client) {
	collection, err := client.FetchMintCollection()
	if err != nil {
		fmt.Println(warningStyle.Render(fmt.Sprintf("Failed to fetch mint collection: %v", err)))
		return
	}

	fmt.Println(titleStyle.Render("\n🗂  Your Mint Collection"))
	fmt.Println(infoStyle.Render(fmt.Sprintf("   Papers minted: %d", collection.MintCount)))
}

func handleAssignReputation(client *deres_protocol.Client) {
	fmt.Println(promptStyle.Render("\n⭐ Assign Reputation"))

	researcherStr := ""
	prompt := &survey.Input{Message: "Enter the researcher's public key:"}
	survey.AskOne(prompt, &researcherStr, survey.WithValidator(survey.Required))
	researcher, err := solana.PublicKeyFromBase58(researcherStr)
	if err != nil {
		fmt.Println(warningStyle.Render("Invalid researcher public key."))
		return
	}

	repStr := ""
	repPrompt := &survey.Input{Message: "Enter reputation value (0-100):"}
	survey.AskOne(repPrompt, &repStr, survey.WithValidator(survey.Required))
	reputation, err := strconv.ParseUint(repStr, 10, 8)
	if err != nil || reputation > 100 {
		fmt.Println(warningStyle.Render("Reputation must be between 0 and 100."))
		return
	}

	fmt.Println(promptStyle.Render("\nAssigning reputation... Please wait."))
	sig, err := client.CheckAndAssignReputation(researcher, uint8(reputation))
	if err != nil {
		fmt.Println(warningStyle.Render(fmt.Sprintf("\n❌ Failed to assign reputation: %v", err)))
		return
	}

	fmt.Println(titleStyle.Render("\n✅ Reputation Assigned!"))
	fmt.Printf("   Transaction Signature: %s\n", sig.String())
}

func handleListResearchers(client *deres_protocol.Client) {
	profiles, err := client.FetchAllProfiles()
	if err != nil {
		fmt.Println(warningStyle.Render(fmt.Sprintf("Failed to fetch profiles: %v", err)))
		return
	}
	if len(profiles) == 0 {
		fmt.Println(promptStyle.Render("\nNo researcher profiles found."))
		return
	}

	fmt.Println(titleStyle.Render("\n👥 Registered Researchers"))
	for _, profile := range profiles {
		fmt.Println(infoStyle.Render(fmt.Sprintf("   %s", profile.Account.Owner)))
		fmt.Println(promptStyle.Render(fmt.Sprintf("     name:       %s", profile.Account.DisplayName())))
		fmt.Println(promptStyle.Render(fmt.Sprintf("     reputation: %d", profile.Account.Reputation)))
	}
}

func handleHistory(client *deres_protocol.Client) {
	fmt.Println(promptStyle.Render("\nFetching transaction history... Please wait."))
	history, err := client.GetHistory(client.Signer.PublicKey())
	if err != nil {
		fmt.Println(warningStyle.Render(fmt.Sprintf("Failed to fetch history: %v", err)))
		return
	}

	fmt.Println(titleStyle.Render("\n🧾 Protocol Activity"))
	for _, event := range history.ProtocolHistory {
		fmt.Println(promptStyle.Render(fmt.Sprintf("   %s  %s  %s", event.Timestamp.Format("2006-01-02 15:04"), event.Type, event.Signature)))
	}
	fmt.Println(titleStyle.Render("\n💸 SOL Transfers"))
	for _, event := range history.SolHistory {
		fmt.Println(promptStyle.Render(fmt.Sprintf("   %s  %s  %d lamports", event.Timestamp.Format("2006-01-02 15:04"), event.Type, event.Amount)))
	}
}

// promptMetadata collects an off-chain metadata document from the user.
func promptMetadata(fields ...string) map[string]string {
	metadata := make(map[string]string)
	for _, field := range fields {
		value := ""
		prompt := &survey.Input{Message: fmt.Sprintf("Enter %s (optional):", field)}
		survey.AskOne(prompt, &value)
		if value != "" {
			metadata[field] = value
		}
	}
	return metadata
}

func handleWalletManagement(signer solana.PrivateKey) {
	fmt.Println()
	menu := &survey.Select{
		Message: promptStyle.Render("Wallet Management:"),
		Options: []string{"View Address", "View Balance", "Send SOL", "Export Wallet (UNSAFE)", "Back to Main Menu"},
	}
	var choice string
	survey.AskOne(menu, &choice)

	switch choice {
	case "View Address":
		viewAddress(signer)
	case "View Balance":
		viewBalance(signer)
	case "Send SOL":
		sendSol(signer)
	case "Export Wallet (UNSAFE)":
		exportWallet(signer)
	case "Back to Main Menu":
		return
	}
}

func viewAddress(signer solana.PrivateKey) {
	fmt.Println(titleStyle.Render("\n🔑 Your Current Wallet Address:"))
	fmt.Println(signer.PublicKey().String())
}

func viewBalance(signer solana.PrivateKey) {
	client, err := deres_protocol.NewClient(GetRpcEndpoint(), signer)
	if err != nil {
		fmt.Println(warningStyle.Render(fmt.Sprintf("Failed to create Solana client: %v", err)))
		return
	}
	fmt.Println(promptStyle.Render("\nChecking balance... Please wait."))
	balanceLamports, err := client.GetBalance(signer.PublicKey())
	if err != nil {
		fmt.Println(warningStyle.Render(fmt.Sprintf("\n❌ Failed to get balance: %v", err)))
		return
	}
	balanceSOL := float64(balanceLamports) / float64(solana.LAMPORTS_PER_SOL)
	fmt.Println(titleStyle.Render("\n💰 Your Wallet Balance:"))
	fmt.Printf("   %.9f SOL\n", balanceSOL)
}

func exportWallet(signer solana.PrivateKey) {
	fmt.Println(warningStyle.Render("\n⚠️ WARNING: EXPORTING YOUR PRIVATE KEY ⚠️"))
	fmt.Println(promptStyle.Render("Sharing your private key can result in the permanent loss of your funds."))
	confirm := false
	prompt := &survey.Confirm{Message: "Are you absolutely sure?", Default: false}
	survey.AskOne(prompt, &confirm)
	if !confirm {
		fmt.Println(promptStyle.Render("\nExport cancelled."))
		return
	}
	fmt.Println(titleStyle.Render("\n🔐 Your Private Key (Base58):"))
	fmt.Println(signer.String())
}

func sendSol(signer solana.PrivateKey) {
	fmt.Println(promptStyle.Render("\n💸 Send SOL"))
	recipientStr := ""
	addrPrompt := &survey.Input{Message: "Enter recipient address:"}
	survey.AskOne(addrPrompt, &recipientStr, survey.WithValidator(survey.Required))
	recipient, err := solana.PublicKeyFromBase58(recipientStr)
	if err != nil {
		fmt.Println(warningStyle.Render("Invalid recipient address."))
		return
	}
	amountStr := ""
	amountPrompt := &survey.Input{Message: "Enter amount of SOL to send:"}
	survey.AskOne(amountPrompt, &amountStr, survey.WithValidator(survey.Required))
	amountFloat, err := strconv.ParseFloat(amountStr, 64)
	if err != nil {
		fmt.Println(warningStyle.Render("Invalid amount entered."))
		return
	}
	amountLamports := uint64(amountFloat * float64(solana.LAMPORTS_PER_SOL))
	confirm := false
	confirmPrompt := &survey.Confirm{
		Message: fmt.Sprintf("You are about to send %f SOL to %s. Continue?", amountFloat, recipient.String()),
		Default: false,
	}
	survey.AskOne(confirmPrompt, &confirm)
	if !confirm {
		fmt.Println(promptStyle.Render("\nSend cancelled."))
		return
	}
	client, err := deres_protocol.NewClient(GetRpcEndpoint(), signer)
	if err != nil {
		fmt.Println(warningStyle.Render(fmt.Sprintf("Failed to create Solana client: %v", err)))
		return
	}
	fmt.Println(promptStyle.Render("\nSending transaction... Please wait."))
	sig, err := client.SendSol(recipient, amountLamports)
	if err != nil {
		fmt.Println(warningStyle.Render(fmt.Sprintf("\n❌ Failed to send SOL: %v", err)))
		return
	}
	fmt.Println(titleStyle.Render("\n✅ Transaction Sent Successfully!"))
	fmt.Printf("   Transaction Signature: %s\n", sig.String())
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
