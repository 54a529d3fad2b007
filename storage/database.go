package storage

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gagliardetto/solana-go"
)

const (
	walletFileName = "wallets.json"
	configDirName  = "config"
)

// walletFile is the on-disk shape: profile name to base64-encoded
// private key.
type walletFile map[string]string

// WalletStorage provides a connection to the JSON-based wallet storage.
type WalletStorage struct {
	path string
}

// NewWalletStorage opens and initializes the JSON-based storage.
func NewWalletStorage() (*WalletStorage, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, fmt.Errorf("could not get db path: %w", err)
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	db := &WalletStorage{path: dbPath}

	// Initialize with empty file if it doesn't exist
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		file, err := os.Create(dbPath)
		if err != nil {
			return nil, fmt.Errorf("could not create wallet file: %w", err)
		}
		file.Close()
	}

	return db, nil
}

func (db *WalletStorage) load() (walletFile, error) {
	data, err := os.ReadFile(db.path)
	if err != nil {
		return nil, fmt.Errorf("could not read wallet file: %w", err)
	}
	if len(data) == 0 {
		return walletFile{}, nil
	}

	var wallets walletFile
	if err := json.Unmarshal(data, &wallets); err != nil {
		return nil, fmt.Errorf("could not parse wallet file: %w", err)
	}
	return wallets, nil
}

func (db *WalletStorage) store(wallets walletFile) error {
	data, err := json.Marshal(wallets)
	if err != nil {
		return fmt.Errorf("could not marshal wallet data: %w", err)
	}
	if err := os.WriteFile(db.path, data, 0644); err != nil {
		return fmt.Errorf("could not write wallet file: %w", err)
	}
	return nil
}

// GetWallet retrieves a stored wallet's private key by its profile name.
// It returns an error if no wallet is found under that name.
func (db *WalletStorage) GetWallet(name string) (solana.PrivateKey, error) {
	wallets, err := db.load()
	if err != nil {
		return nil, err
	}

	encoded, ok := wallets[name]
	if !ok || encoded == "" {
		return nil, fmt.Errorf("no wallet found for %q", name)
	}

	privateKeyBytes, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("could not decode private key: %w", err)
	}
	if len(privateKeyBytes) != solana.PrivateKeyLength {
		return nil, fmt.Errorf("invalid private key length in wallet file: expected %d, got %d", solana.PrivateKeyLength, len(privateKeyBytes))
	}

	return solana.PrivateKey(privateKeyBytes), nil
}

// SaveWallet saves a wallet under a profile name, replacing any
// previous key stored under that name.
func (db *WalletStorage) SaveWallet(name string, privateKey solana.PrivateKey) error {
	if name == "" {
		return fmt.Errorf("wallet name cannot be empty")
	}

	wallets, err := db.load()
	if err != nil {
		return err
	}

	wallets[name] = base64.StdEncoding.EncodeToString(privateKey[:])
	return db.store(wallets)
}

// GetAllWalletNames lists the stored profile names, sorted.
func (db *WalletStorage) GetAllWalletNames() ([]string, error) {
	wallets, err := db.load()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(wallets))
	for name := range wallets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// getDBPath returns the path for the wallet file relative to the current working directory.
func getDBPath() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("could not get current working directory: %w", err)
	}
	return filepath.Join(cwd, configDirName, walletFileName), nil
}

// Close closes the wallet storage (for interface compatibility).
// Since this is a JSON file implementation, there's no actual connection to close.
func (db *WalletStorage) Close() error {
	return nil
}
