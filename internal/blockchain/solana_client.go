package blockchain

import (
	"context"
	"errors"
	"fmt"
	"log"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
)

// SolanaClient handles Solana blockchain interactions
type SolanaClient struct {
	rpcClient    *rpc.Client
	rpcURL       string
	network      string
	serverWallet *solana.Wallet
}

// RPCURLForNetwork returns the public endpoint for a cluster name
func RPCURLForNetwork(network string) string {
	switch network {
	case "mainnet-beta":
		return "https://api.mainnet-beta.solana.com"
	case "testnet":
		return "https://api.testnet.solana.com"
	case "localnet":
		return "http://127.0.0.1:8899"
	default:
		return "https://api.devnet.solana.com"
	}
}

// NewSolanaClient creates a new Solana client. An empty rpcURL selects the
// public endpoint of network.
func NewSolanaClient(network, rpcURL, privateKey string) *SolanaClient {
	if rpcURL == "" {
		rpcURL = RPCURLForNetwork(network)
	}

	client := &SolanaClient{
		rpcClient: rpc.New(rpcURL),
		rpcURL:    rpcURL,
		network:   network,
	}

	// Initialize server wallet if private key is provided
	if privateKey != "" {
		wallet, err := solana.WalletFromPrivateKeyBase58(privateKey)
		if err != nil {
			log.Printf("Warning: Failed to load server wallet: %v", err)
		} else {
			client.serverWallet = wallet
			log.Printf("Server wallet loaded: %s", wallet.PublicKey())
		}
	}

	return client
}

// ServerPublicKey returns the ledger wallet, or false if none is loaded
func (s *SolanaClient) ServerPublicKey() (solana.PublicKey, bool) {
	if s.serverWallet == nil {
		return solana.PublicKey{}, false
	}
	return s.serverWallet.PublicKey(), true
}

// SendTransaction sends a signed transaction to the network
func (s *SolanaClient) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := s.rpcClient.SendTransactionWithOpts(
		ctx,
		tx,
		rpc.TransactionOpts{
			SkipPreflight:       false,
			PreflightCommitment: rpc.CommitmentConfirmed,
		},
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	return sig, nil
}

// GetRecentBlockhash gets the latest blockhash
func (s *SolanaClient) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	resp, err := s.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("failed to get recent blockhash: %w", err)
	}
	return resp.Value.Blockhash, nil
}

// SignAndSend builds a transaction paid for by the server wallet, signs it
// with the server wallet and submits it
func (s *SolanaClient) SignAndSend(ctx context.Context, instructions ...solana.Instruction) (solana.Signature, error) {
	if s.serverWallet == nil {
		return solana.Signature{}, ErrNoServerWallet
	}

	recent, err := s.GetRecentBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, err
	}

	payer := s.serverWallet.PublicKey()
	tx, err := solana.NewTransaction(instructions, recent, solana.TransactionPayer(payer))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer) {
			return &s.serverWallet.PrivateKey
		}
		return nil
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	return s.SendTransaction(ctx, tx)
}

// ValidateWalletAddress validates a Solana wallet address format
func (s *SolanaClient) ValidateWalletAddress(address string) bool {
	_, err := solana.PublicKeyFromBase58(address)
	return err == nil
}

// GetSOLBalance gets the SOL balance for a wallet
func (s *SolanaClient) GetSOLBalance(ctx context.Context, walletAddress string) (decimal.Decimal, error) {
	pubKey, err := solana.PublicKeyFromBase58(walletAddress)
	if err != nil {
		return decimal.Zero, err
	}

	balance, err := s.rpcClient.GetBalance(ctx, pubKey, rpc.CommitmentConfirmed)
	if err != nil {
		return decimal.Zero, err
	}

	// Convert lamports to SOL
	return decimal.NewFromInt(int64(balance.Value)).Div(decimal.NewFromInt(1_000_000_000)), nil
}

// GetTokenAccountBalance gets the token balance for a specific owner and mint
func (s *SolanaClient) GetTokenAccountBalance(ctx context.Context, owner, mint solana.PublicKey) (uint64, error) {
	resp, err := s.rpcClient.GetTokenAccountsByOwner(
		ctx,
		owner,
		&rpc.GetTokenAccountsConfig{
			Mint: &mint,
		},
		&rpc.GetTokenAccountsOpts{
			Encoding: solana.EncodingBase64,
		},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to get token accounts: %w", err)
	}

	// Sum up balances if the owner has more than one account for the mint
	var totalBalance uint64
	for _, account := range resp.Value {
		var tokenAccount token.Account
		decoder := bin.NewBinDecoder(account.Account.Data.GetBinary())
		if err := tokenAccount.UnmarshalWithDecoder(decoder); err != nil {
			log.Printf("Warning: failed to decode token account data: %v", err)
			continue
		}
		totalBalance += tokenAccount.Amount
	}

	return totalBalance, nil
}

// GetTokenAccount fetches and decodes a single SPL token account. A missing
// account returns (nil, nil).
func (s *SolanaClient) GetTokenAccount(ctx context.Context, address solana.PublicKey) (*token.Account, error) {
	accountInfo, err := s.rpcClient.GetAccountInfo(ctx, address)
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch token account: %w", err)
	}
	if accountInfo == nil || accountInfo.Value == nil {
		return nil, nil
	}

	var account token.Account
	if err := account.UnmarshalWithDecoder(bin.NewBinDecoder(accountInfo.Value.Data.GetBinary())); err != nil {
		return nil, fmt.Errorf("failed to decode token account: %w", err)
	}
	return &account, nil
}
