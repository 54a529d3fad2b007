package node

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/multiformats/go-multiaddr"

	kaddht "github.com/libp2p/go-libp2p-kad-dht"
	"github.com/libp2p/go-libp2p/p2p/discovery/mdns"
	"github.com/libp2p/go-libp2p/p2p/discovery/routing"
	"github.com/libp2p/go-libp2p/p2p/discovery/util"
)

const (
	ProtocolMDNS   = "deres-papers-local"
	ProtocolDHT    = "deres-papers-global"
	ProtocolStream = "/deres/paper/1.0.0"
	ProtocolPing   = "/deres/ping/1.0.0"

	// MaxPaperSize bounds one transfer; papers are stored off-chain but
	// the node refuses to relay unbounded blobs.
	MaxPaperSize = 64 << 20
)

// --- Data Structures --- //

// PaperRequest asks a peer for the content behind a sha256 hash.
type PaperRequest struct {
	ContentHash string `json:"content_hash"`
}

// PaperResponse precedes the raw content bytes on the stream.
type PaperResponse struct {
	Found bool   `json:"found"`
	Size  int64  `json:"size"`
	Error string `json:"error,omitempty"`
}

type APIResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	ContentHash string `json:"content_hash,omitempty"`
	PeerID      string `json:"peer_id,omitempty"`
	Path        string `json:"path,omitempty"`
}

// PeerInfo holds detailed information about a discovered peer for the API
type PeerInfo struct {
	ID      string   `json:"id"`
	Addrs   []string `json:"addrs"`
	Latency int64    `json:"latency"` // Latency in milliseconds
}

// --- P2P Logic --- //

func pingHandler(s network.Stream) {
	defer s.Close()
	buf := make([]byte, 1)
	_, _ = s.Read(buf)
}

func measureLatency(ctx context.Context, h host.Host, p peer.ID) {
	start := time.Now()
	s, err := h.NewStream(ctx, p, ProtocolPing)
	if err != nil {
		h.Peerstore().Put(p, "latency", int64(9999))
		return
	}
	defer s.Close()

	_, err = s.Write([]byte("p"))
	if err != nil {
		h.Peerstore().Put(p, "latency", int64(9999))
		return
	}

	buf := make([]byte, 1)
	_, _ = s.Read(buf)

	latency := time.Since(start).Milliseconds()
	h.Peerstore().Put(p, "latency", latency)
	log.Printf("Measured latency to %s: %dms", p.String(), latency)
}

// PaperStore keeps paper content on disk, one file per sha256 hash.
type PaperStore struct {
	dir string
}

// NewPaperStore opens (creating if needed) the local paper directory.
func NewPaperStore(dir string) (*PaperStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create paper store directory: %w", err)
	}
	return &PaperStore{dir: dir}, nil
}

func (ps *PaperStore) pathFor(hash string) string {
	return filepath.Join(ps.dir, hash)
}

// Get returns the content for a hex-encoded hash, or nil when absent.
func (ps *PaperStore) Get(hash string) ([]byte, error) {
	data, err := os.ReadFile(ps.pathFor(hash))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read paper: %w", err)
	}
	return data, nil
}

// Put verifies the content against its hash and stores it.
func (ps *PaperStore) Put(hash string, content []byte) (string, error) {
	sum := sha256.Sum256(content)
	if hex.EncodeToString(sum[:]) != hash {
		return "", fmt.Errorf("content does not match hash %s", hash)
	}
	path := ps.pathFor(hash)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write paper: %w", err)
	}
	return path, nil
}

// List returns the hex hashes of every locally stored paper.
func (ps *PaperStore) List() ([]string, error) {
	entries, err := os.ReadDir(ps.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list paper store: %w", err)
	}
	var hashes []string
	for _, entry := range entries {
		if !entry.IsDir() && len(entry.Name()) == 64 {
			hashes = append(hashes, entry.Name())
		}
	}
	sort.Strings(hashes)
	return hashes, nil
}

// Distributor handles the peer-to-peer logic for serving paper content.
type Distributor struct {
	host  host.Host
	store *PaperStore
}

func (d *Distributor) streamHandler(s network.Stream) {
	remotePeer := s.Conn().RemotePeer()
	log.Printf("[NODE] Received paper request from peer: %s", remotePeer)

	var req PaperRequest
	if err := json.NewDecoder(s).Decode(&req); err != nil {
		log.Printf("[NODE] Failed to decode request: %v", err)
		_ = s.Reset()
		return
	}
	defer s.Close()

	content, err := d.store.Get(req.ContentHash)
	if err != nil {
		log.Printf("[NODE] Store error for %s: %v", req.ContentHash, err)
		_ = json.NewEncoder(s).Encode(PaperResponse{Found: false, Error: "internal error"})
		return
	}
	if content == nil {
		_ = json.NewEncoder(s).Encode(PaperResponse{Found: false})
		return
	}

	if err := json.NewEncoder(s).Encode(PaperResponse{Found: true, Size: int64(len(content))}); err != nil {
		log.Printf("[NODE] Failed to send response header: %v", err)
		return
	}
	if _, err := s.Write(content); err != nil {
		log.Printf("[NODE] Failed to send paper content: %v", err)
		return
	}
	log.Printf("✅ [NODE] Served paper %s (%d bytes) to %s", req.ContentHash, len(content), remotePeer)
}

// fetchFromPeer asks one peer for a paper and verifies the content.
func fetchFromPeer(ctx context.Context, h host.Host, p peer.ID, hash string) ([]byte, error) {
	stream, err := h.NewStream(ctx, p, ProtocolStream)
	if err != nil {
		return nil, fmt.Errorf("failed to open stream to peer: %w", err)
	}
	defer stream.Close()

	if err := json.NewEncoder(stream).Encode(PaperRequest{ContentHash: hash}); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	decoder := json.NewDecoder(stream)
	var resp PaperResponse
	if err := decoder.Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !resp.Found {
		return nil, fmt.Errorf("peer does not have paper %s", hash)
	}
	if resp.Size <= 0 || resp.Size > MaxPaperSize {
		return nil, fmt.Errorf("peer reported invalid size %d", resp.Size)
	}

	// The decoder may have buffered part of the content.
	content := make([]byte, 0, resp.Size)
	buffered, err := io.ReadAll(io.LimitReader(decoder.Buffered(), resp.Size))
	if err != nil {
		return nil, fmt.Errorf("failed to drain buffered content: %w", err)
	}
	content = append(content, buffered...)
	rest, err := io.ReadAll(io.LimitReader(stream, resp.Size-int64(len(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to read paper content: %w", err)
	}
	content = append(content, rest...)

	sum := sha256.Sum256(content)
	if hex.EncodeToString(sum[:]) != hash {
		return nil, fmt.Errorf("content from peer %s failed hash verification", p)
	}
	return content, nil
}

// --- API Handlers --- //

func peersHandler(w http.ResponseWriter, r *http.Request, h host.Host) {
	peers := h.Peerstore().Peers()
	var peerInfos []PeerInfo

	for _, p := range peers {
		if p == h.ID() {
			continue
		}

		addrs := h.Peerstore().Addrs(p)
		addrStrings := make([]string, len(addrs))
		for i, addr := range addrs {
			addrStrings[i] = addr.String()
		}

		latencyVal, err := h.Peerstore().Get(p, "latency")
		var latency int64
		if err == nil {
			if lat, ok := latencyVal.(int64); ok {
				latency = lat
			}
		}

		peerInfos = append(peerInfos, PeerInfo{
			ID:      p.String(),
			Addrs:   addrStrings,
			Latency: latency,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(peerInfos)
}

func papersHandler(w http.ResponseWriter, r *http.Request, store *PaperStore) {
	hashes, err := store.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to list papers: %v", err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(hashes)
}

func fetchHandler(w http.ResponseWriter, r *http.Request, h host.Host, store *PaperStore) {
	hash := r.URL.Query().Get("hash")
	if len(hash) != 64 {
		writeError(w, http.StatusBadRequest, "Query parameter 'hash' must be a hex sha256 digest.")
		return
	}
	if _, err := hex.DecodeString(hash); err != nil {
		writeError(w, http.StatusBadRequest, "Query parameter 'hash' must be a hex sha256 digest.")
		return
	}

	log.Printf("[API] Received /api/fetch request for %s", hash)

	// Already stored locally?
	if content, err := store.Get(hash); err == nil && content != nil {
		_ = json.NewEncoder(w).Encode(APIResponse{
			Status:      "success",
			Message:     "Paper already stored locally.",
			ContentHash: hash,
			Path:        store.pathFor(hash),
		})
		return
	}

	// Try discovered peers in latency order.
	peers := h.Peerstore().Peers()
	var availablePeers []peer.ID
	for _, p := range peers {
		if p == h.ID() {
			continue
		}
		latencyVal, err := h.Peerstore().Get(p, "latency")
		if err != nil {
			continue
		}
		latency, ok := latencyVal.(int64)
		if !ok || latency >= 9999 {
			continue
		}
		availablePeers = append(availablePeers, p)
	}
	if len(availablePeers) == 0 {
		writeError(w, http.StatusServiceUnavailable, "No available peers to fetch from.")
		return
	}

	sort.Slice(availablePeers, func(i, j int) bool {
		latI, _ := h.Peerstore().Get(availablePeers[i], "latency")
		latJ, _ := h.Peerstore().Get(availablePeers[j], "latency")
		return latI.(int64) < latJ.(int64)
	})

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	for _, p := range availablePeers {
		content, err := fetchFromPeer(ctx, h, p, hash)
		if err != nil {
			log.Printf("[API] Fetch from %s failed: %v", p, err)
			continue
		}

		path, err := store.Put(hash, content)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to store paper: %v", err))
			return
		}

		log.Printf("✅ [API] Fetched and verified paper %s from %s", hash, p)
		_ = json.NewEncoder(w).Encode(APIResponse{
			Status:      "success",
			Message:     "Paper fetched and verified.",
			ContentHash: hash,
			PeerID:      p.String(),
			Path:        path,
		})
		return
	}

	writeError(w, http.StatusNotFound, "No peer could provide this paper.")
}

func addHandler(w http.ResponseWriter, r *http.Request, store *PaperStore) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST the paper content to this endpoint.")
		return
	}

	content, err := io.ReadAll(io.LimitReader(r.Body, MaxPaperSize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to read body: %v", err))
		return
	}
	if len(content) == 0 || len(content) > MaxPaperSize {
		writeError(w, http.StatusBadRequest, "Paper content must be between 1 byte and 64 MiB.")
		return
	}

	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])
	path, err := store.Put(hash, content)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to store paper: %v", err))
		return
	}

	log.Printf("✅ [API] Stored paper %s (%d bytes)", hash, len(content))
	_ = json.NewEncoder(w).Encode(APIResponse{
		Status:      "success",
		Message:     "Paper stored. Use this hash when recording it on-chain.",
		ContentHash: hash,
		Path:        path,
	})
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(APIResponse{Status: "error", Message: message})
}

// StartNode starts the paper distribution node. With peerOnly set the
// node serves papers to the network without exposing the local HTTP API.
func StartNode(peerOnly bool, storeDir string) {
	h, err := libp2p.New(libp2p.EnableRelay(), libp2p.EnableHolePunching())
	if err != nil {
		log.Fatalf("Failed to create libp2p host: %v", err)
	}

	store, err := NewPaperStore(storeDir)
	if err != nil {
		log.Fatalf("Failed to open paper store: %v", err)
	}

	log.Printf("DeResearch P2P Node Initialized: %s", h.ID().String())
	distributor := &Distributor{host: h, store: store}
	h.SetStreamHandler(ProtocolStream, distributor.streamHandler)
	h.SetStreamHandler(ProtocolPing, pingHandler)

	go setupDiscovery(h)

	if !peerOnly {
		log.Println("Starting API server on :8080...")
		apiHandler := func(handler http.HandlerFunc) http.HandlerFunc {
			return func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Access-Control-Allow-Origin", "*")
				w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

				if r.Method == "OPTIONS" {
					w.WriteHeader(http.StatusOK)
					return
				}
				handler(w, r)
			}
		}

		http.HandleFunc("/api/peers", apiHandler(func(w http.ResponseWriter, r *http.Request) {
			peersHandler(w, r, h)
		}))
		http.HandleFunc("/api/papers", apiHandler(func(w http.ResponseWriter, r *http.Request) {
			papersHandler(w, r, store)
		}))
		http.HandleFunc("/api/fetch", apiHandler(func(w http.ResponseWriter, r *http.Request) {
			fetchHandler(w, r, h, store)
		}))
		http.HandleFunc("/api/add", apiHandler(func(w http.ResponseWriter, r *http.Request) {
			addHandler(w, r, store)
		}))

		go func() {
			if err := http.ListenAndServe(":8080", nil); err != nil {
				log.Printf("API server error: %v", err)
			}
		}()
	} else {
		log.Println("Running in peer-only mode.")
	}

	log.Println("Node is running. Press Ctrl+C to stop.")
	select {} // Block forever
}

func setupDiscovery(h host.Host) {
	ctx := context.Background()

	mdnsService := mdns.NewMdnsService(h, ProtocolMDNS, &discoveryNotifee{h: h})
	if err := mdnsService.Start(); err != nil {
		log.Printf("mDNS start error: %v", err)
	}

	kdht, err := kaddht.New(ctx, h)
	if err != nil {
		log.Printf("DHT create error: %v", err)
		return
	}
	if err = kdht.Bootstrap(ctx); err != nil {
		log.Printf("DHT bootstrap error: %v", err)
		return
	}

	// A known peer can be supplied to join a private swarm.
	if bootstrap := os.Getenv("DERES_BOOTSTRAP_PEER"); bootstrap != "" {
		if err := connectBootstrapPeer(ctx, h, bootstrap); err != nil {
			log.Printf("Bootstrap peer connect error: %v", err)
		}
	}

	routingDiscovery := routing.NewRoutingDiscovery(kdht)
	util.Advertise(ctx, routingDiscovery, ProtocolDHT)

	go func() {
		for {
			peerChan, _ := routingDiscovery.FindPeers(ctx, ProtocolDHT)
			for p := range peerChan {
				if p.ID != h.ID() {
					if len(h.Peerstore().Addrs(p.ID)) == 0 {
						log.Printf("Found peer via DHT: %s", p.ID.String())
						h.Peerstore().AddAddrs(p.ID, p.Addrs, time.Hour)
						go measureLatency(context.Background(), h, p.ID)
					}
				}
			}
			time.Sleep(1 * time.Minute)
		}
	}()

	log.Println("Discovery services running.")
}

func connectBootstrapPeer(ctx context.Context, h host.Host, addr string) error {
	maddr, err := multiaddr.NewMultiaddr(addr)
	if err != nil {
		return fmt.Errorf("invalid bootstrap multiaddr: %w", err)
	}
	info, err := peer.AddrInfoFromP2pAddr(maddr)
	if err != nil {
		return fmt.Errorf("invalid bootstrap peer address: %w", err)
	}
	if err := h.Connect(ctx, *info); err != nil {
		return fmt.Errorf("failed to connect to bootstrap peer: %w", err)
	}
	log.Printf("Connected to bootstrap peer %s", info.ID)
	return nil
}

type discoveryNotifee struct {
	h host.Host
}

func (n *discoveryNotifee) HandlePeerFound(pi peer.AddrInfo) {
	if pi.ID == n.h.ID() {
		return
	}
	log.Printf("Found peer via mDNS: %s", pi.ID.String())
	n.h.Peerstore().AddAddrs(pi.ID, pi.Addrs, time.Hour)

	go measureLatency(context.Background(), n.h, pi.ID)
}
