package blockchain

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"

	"event-ticketing/internal/ticketing"
)

func TestTransferCheckedInstruction(t *testing.T) {
	source := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	dest := solana.NewWallet().PublicKey()
	authority := solana.NewWallet().PublicKey()

	ix, err := transferCheckedInstruction(source, mint, dest, authority, 12_500_000, 6)
	if err != nil {
		t.Fatalf("failed to build instruction: %v", err)
	}
	if !ix.ProgramID().Equals(solana.TokenProgramID) {
		t.Errorf("expected token program, got %s", ix.ProgramID())
	}
	accounts := ix.Accounts()
	if len(accounts) != 4 {
		t.Fatalf("expected 4 accounts, got %d", len(accounts))
	}
	if !accounts[3].PublicKey.Equals(authority) || !accounts[3].IsSigner {
		t.Error("expected authority to sign")
	}
	for _, acc := range accounts[:3] {
		if acc.IsSigner {
			t.Errorf("expected %s not to sign", acc.PublicKey)
		}
	}
	if !accounts[0].IsWritable || accounts[1].IsWritable || !accounts[2].IsWritable {
		t.Error("unexpected writable flags")
	}

	data, err := ix.Data()
	if err != nil {
		t.Fatalf("failed to encode instruction: %v", err)
	}
	if len(data) != 10 || data[0] != token.Instruction_TransferChecked || data[9] != 6 {
		t.Fatalf("unexpected layout %v", data)
	}
	if got := binary.LittleEndian.Uint64(data[1:9]); got != 12_500_000 {
		t.Errorf("expected amount 12500000, got %d", got)
	}
}

func TestApproveCheckedInstruction(t *testing.T) {
	source := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	delegate := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()

	ix, err := approveCheckedInstruction(source, mint, delegate, owner, 3, 6)
	if err != nil {
		t.Fatalf("failed to build instruction: %v", err)
	}
	accounts := ix.Accounts()
	if len(accounts) != 4 || !accounts[2].PublicKey.Equals(delegate) {
		t.Fatalf("expected delegate as third account, got %v", accounts)
	}
	if !accounts[3].PublicKey.Equals(owner) || !accounts[3].IsSigner {
		t.Error("expected owner to sign")
	}

	data, err := ix.Data()
	if err != nil {
		t.Fatalf("failed to encode instruction: %v", err)
	}
	if data[0] != token.Instruction_ApproveChecked {
		t.Errorf("expected ApproveChecked tag, got %d", data[0])
	}
}

func TestAssociatedTokenAddressMatchesProgramDerivation(t *testing.T) {
	wallet := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	ata, err := AssociatedTokenAddress(wallet, mint)
	if err != nil {
		t.Fatalf("failed to derive: %v", err)
	}
	want, _, err := solana.FindProgramAddress([][]byte{wallet[:], solana.TokenProgramID[:], mint[:]}, solana.SPLAssociatedTokenAccountProgramID)
	if err != nil {
		t.Fatalf("failed to derive: %v", err)
	}
	if !ata.Equals(want) {
		t.Errorf("expected %s, got %s", want, ata)
	}
}

func TestAssociatedTokenAddressIsDeterministic(t *testing.T) {
	wallet := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	a, err := AssociatedTokenAddress(wallet, mint)
	if err != nil {
		t.Fatalf("failed to derive: %v", err)
	}
	b, _ := AssociatedTokenAddress(wallet, mint)
	if !a.Equals(b) {
		t.Errorf("expected same address, got %s and %s", a, b)
	}
	other, _ := AssociatedTokenAddress(solana.NewWallet().PublicKey(), mint)
	if a.Equals(other) {
		t.Error("expected different wallets to get different token accounts")
	}
}

func TestSPLTokenRejectsServerSideApproval(t *testing.T) {
	client := NewSolanaClient("localnet", "", "")
	tok, err := NewSPLToken(client, solana.NewWallet().PublicKey().String(), "USDC", 6)
	if err != nil {
		t.Fatalf("failed to create token: %v", err)
	}

	if err := tok.Approve(context.Background(), "a", "b", 1); !errors.Is(err, ErrOwnerSignatureRequired) {
		t.Errorf("expected ErrOwnerSignatureRequired, got %v", err)
	}
	if err := tok.Mint(context.Background(), "a", "b", 1); !errors.Is(err, ErrMintUnsupported) {
		t.Errorf("expected ErrMintUnsupported, got %v", err)
	}
	err = tok.Transfer(context.Background(), ticketing.Address(solana.NewWallet().PublicKey().String()), "b", 1)
	if !errors.Is(err, ErrNoServerWallet) {
		t.Errorf("expected ErrNoServerWallet without a configured key, got %v", err)
	}
	if _, err := NewSPLToken(client, "not-a-key", "USDC", 6); err == nil {
		t.Error("expected invalid mint to be rejected")
	}
}
