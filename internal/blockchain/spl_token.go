package blockchain

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"

	"event-ticketing/internal/ticketing"
)

var (
	// ErrNoServerWallet is returned when a transfer needs the ledger wallet
	// but no private key was configured.
	ErrNoServerWallet = errors.New("server wallet not configured")
	// ErrOwnerSignatureRequired is returned by Approve: an SPL delegation
	// must be signed by the token owner's wallet.
	ErrOwnerSignatureRequired = errors.New("approval must be signed by the token owner")
	// ErrMintUnsupported is returned by Mint: supply is controlled by the mint authority on chain.
	ErrMintUnsupported = errors.New("minting is not supported for on-chain tokens")
)

// SPLToken settles ticket payments in an SPL token. The ledger account is
// the server wallet: buyers delegate to it, and it signs every transfer.
// A buyer's allowance is the delegated amount on their associated token
// account when the delegate is the ledger wallet.
type SPLToken struct {
	client   *SolanaClient
	mint     solana.PublicKey
	symbol   string
	decimals uint8
}

// NewSPLToken creates a token ledger for mintAddress
func NewSPLToken(client *SolanaClient, mintAddress, symbol string, decimals uint8) (*SPLToken, error) {
	mint, err := solana.PublicKeyFromBase58(mintAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid mint address: %w", err)
	}
	return &SPLToken{client: client, mint: mint, symbol: symbol, decimals: decimals}, nil
}

func (t *SPLToken) Symbol() string  { return t.symbol }
func (t *SPLToken) Decimals() uint8 { return t.decimals }

// MintAddress returns the token mint
func (t *SPLToken) MintAddress() solana.PublicKey {
	return t.mint
}

func (t *SPLToken) BalanceOf(ctx context.Context, holder ticketing.Address) (uint64, error) {
	owner, err := parseAddress(holder)
	if err != nil {
		return 0, err
	}
	return t.client.GetTokenAccountBalance(ctx, owner, t.mint)
}

func (t *SPLToken) Allowance(ctx context.Context, owner, spender ticketing.Address) (uint64, error) {
	ownerKey, err := parseAddress(owner)
	if err != nil {
		return 0, err
	}
	spenderKey, err := parseAddress(spender)
	if err != nil {
		return 0, err
	}
	ata, err := AssociatedTokenAddress(ownerKey, t.mint)
	if err != nil {
		return 0, err
	}

	account, err := t.client.GetTokenAccount(ctx, ata)
	if err != nil {
		return 0, err
	}
	if account == nil || account.Delegate == nil || !account.Delegate.Equals(spenderKey) {
		return 0, nil
	}
	return account.DelegatedAmount, nil
}

// Approve cannot be performed server side. Use ApproveTransaction to get a
// transaction for the owner's wallet to sign.
func (t *SPLToken) Approve(context.Context, ticketing.Address, ticketing.Address, uint64) error {
	return ErrOwnerSignatureRequired
}

// ApproveTransaction builds an unsigned ApproveChecked transaction, paid by
// the owner, delegating amount to spender. It returns the base64 wire form.
func (t *SPLToken) ApproveTransaction(ctx context.Context, owner, spender ticketing.Address, amount uint64) (string, error) {
	ownerKey, err := parseAddress(owner)
	if err != nil {
		return "", err
	}
	spenderKey, err := parseAddress(spender)
	if err != nil {
		return "", err
	}
	source, err := AssociatedTokenAddress(ownerKey, t.mint)
	if err != nil {
		return "", err
	}

	recent, err := t.client.GetRecentBlockhash(ctx)
	if err != nil {
		return "", err
	}

	ix, err := approveCheckedInstruction(source, t.mint, spenderKey, ownerKey, amount, t.decimals)
	if err != nil {
		return "", err
	}
	tx, err := solana.NewTransaction([]solana.Instruction{ix}, recent, solana.TransactionPayer(ownerKey))
	if err != nil {
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}
	// Empty signature slots for the wallet to fill in.
	tx.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)

	raw, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to encode transaction: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// TransferFrom pulls amount from owner's token account using the ledger
// wallet's delegation. spender must be the ledger wallet.
func (t *SPLToken) TransferFrom(ctx context.Context, spender, owner, recipient ticketing.Address, amount uint64) error {
	authority, err := t.serverAuthority(spender)
	if err != nil {
		return err
	}

	allowance, err := t.Allowance(ctx, owner, spender)
	if err != nil {
		return err
	}
	if allowance < amount {
		return ticketing.ErrInsufficientAllowance
	}
	balance, err := t.BalanceOf(ctx, owner)
	if err != nil {
		return err
	}
	if balance < amount {
		return ticketing.ErrInsufficientBalance
	}

	return t.transfer(ctx, authority, owner, recipient, amount)
}

// Transfer sends amount from the ledger wallet's token account. from must
// be the ledger wallet.
func (t *SPLToken) Transfer(ctx context.Context, from, to ticketing.Address, amount uint64) error {
	authority, err := t.serverAuthority(from)
	if err != nil {
		return err
	}
	return t.transfer(ctx, authority, from, to, amount)
}

// Mint is not available for on-chain tokens
func (t *SPLToken) Mint(context.Context, ticketing.Address, ticketing.Address, uint64) error {
	return ErrMintUnsupported
}

func (t *SPLToken) transfer(ctx context.Context, authority solana.PublicKey, from, to ticketing.Address, amount uint64) error {
	fromKey, err := parseAddress(from)
	if err != nil {
		return err
	}
	toKey, err := parseAddress(to)
	if err != nil {
		return err
	}
	source, err := AssociatedTokenAddress(fromKey, t.mint)
	if err != nil {
		return err
	}
	destination, err := AssociatedTokenAddress(toKey, t.mint)
	if err != nil {
		return err
	}

	ix, err := transferCheckedInstruction(source, t.mint, destination, authority, amount, t.decimals)
	if err != nil {
		return err
	}
	sig, err := t.client.SignAndSend(ctx, ix)
	if err != nil {
		return err
	}

	log.Printf("[SPLToken] Transferred %d %s from %s to %s (tx %s)", amount, t.symbol, from, to, sig)
	return nil
}

func (t *SPLToken) serverAuthority(addr ticketing.Address) (solana.PublicKey, error) {
	server, ok := t.client.ServerPublicKey()
	if !ok {
		return solana.PublicKey{}, ErrNoServerWallet
	}
	if string(addr) != server.String() {
		return solana.PublicKey{}, fmt.Errorf("%s cannot sign for %s: %w", server, addr, ticketing.ErrUnauthorized)
	}
	return server, nil
}

func parseAddress(addr ticketing.Address) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(string(addr))
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %v", ticketing.ErrInvalidAddress, err)
	}
	return key, nil
}

// AssociatedTokenAddress derives the associated token account of wallet for mint
func AssociatedTokenAddress(wallet, mint solana.PublicKey) (solana.PublicKey, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(wallet, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive token account: %w", err)
	}
	return ata, nil
}

func transferCheckedInstruction(source, mint, destination, authority solana.PublicKey, amount uint64, decimals uint8) (solana.Instruction, error) {
	ix, err := token.NewTransferCheckedInstruction(amount, decimals, source, mint, destination, authority, nil).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build transfer instruction: %w", err)
	}
	return ix, nil
}

func approveCheckedInstruction(source, mint, delegate, owner solana.PublicKey, amount uint64, decimals uint8) (solana.Instruction, error) {
	ix, err := token.NewApproveCheckedInstruction(amount, decimals, source, mint, delegate, owner, nil).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build approve instruction: %w", err)
	}
	return ix, nil
}
