// internal/domain/sync.go
package domain

// SyncStatus reports the outcome of syncing one wallet during a fleet sync.
type SyncStatus string

const (
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusFailed  SyncStatus = "failed"
)

// SyncResult is the per-wallet entry of a fleet-sync report. A fleet sync
// always attempts every wallet and reports partial success rather than
// aborting on the first failure.
type SyncResult struct {
	WalletAddress string     `json:"wallet_address"`
	Chain         string     `json:"chain"`
	TokenCount    int        `json:"token_count"`
	Status        SyncStatus `json:"status"`
	Error         string     `json:"error,omitempty"`
}
