package blockchain

import (
	"context"
	"log"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
)

// DiagnosticResult holds the result of a Solana connectivity diagnostic
type DiagnosticResult struct {
	Network          string `json:"network"`
	RPCConnected     bool   `json:"rpc_connected"`
	RPCURL           string `json:"rpc_url"`
	RPCError         string `json:"rpc_error,omitempty"`
	LatestBlockhash  string `json:"latest_blockhash,omitempty"`
	ServerWalletSet  bool   `json:"server_wallet_set"`
	ServerWallet     string `json:"server_wallet,omitempty"`
	SOLBalance       string `json:"sol_balance,omitempty"`
	Mint             string `json:"mint"`
	LedgerTokenATA   string `json:"ledger_token_account,omitempty"`
	LedgerBalance    uint64 `json:"ledger_balance"`
	LedgerTokenError string `json:"ledger_token_error,omitempty"`
	Timestamp        string `json:"timestamp"`
}

// RunDiagnostics checks RPC connectivity, the server wallet and the ledger's token account
func (t *SPLToken) RunDiagnostics(ctx context.Context) *DiagnosticResult {
	c := t.client
	result := &DiagnosticResult{
		Network:   c.network,
		RPCURL:    c.rpcURL,
		Mint:      t.mint.String(),
		Timestamp: time.Now().Format(time.RFC3339),
	}

	log.Printf("[Diagnostics] Testing RPC connectivity...")
	blockhash, err := c.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		result.RPCError = err.Error()
		log.Printf("[Diagnostics] RPC FAILED: %v", err)
	} else {
		result.RPCConnected = true
		result.LatestBlockhash = blockhash.Value.Blockhash.String()
		log.Printf("[Diagnostics] RPC connected, blockhash: %s", result.LatestBlockhash)
	}

	server, ok := c.ServerPublicKey()
	result.ServerWalletSet = ok
	if !ok {
		log.Printf("[Diagnostics] Server wallet not set, refunds and payouts will fail")
		return result
	}
	result.ServerWallet = server.String()

	if sol, err := c.GetSOLBalance(ctx, server.String()); err == nil {
		result.SOLBalance = sol.String()
	}

	ata, err := AssociatedTokenAddress(server, t.mint)
	if err != nil {
		result.LedgerTokenError = err.Error()
		return result
	}
	result.LedgerTokenATA = ata.String()

	account, err := c.GetTokenAccount(ctx, ata)
	switch {
	case err != nil:
		result.LedgerTokenError = err.Error()
	case account == nil:
		result.LedgerTokenError = "ledger token account does not exist"
	default:
		result.LedgerBalance = account.Amount
	}
	log.Printf("[Diagnostics] Ledger token account %s balance %d", result.LedgerTokenATA, result.LedgerBalance)

	return result
}
