package hostagent

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/monero-agent/xmrsigner/internal/moneroutil"
	"github.com/monero-agent/xmrsigner/internal/signer"
	"github.com/monero-agent/xmrsigner/internal/walletcreds"
	"github.com/monero-agent/xmrsigner/internal/xmrcrypto"
)

func mustScalar(t *testing.T) *xmrcrypto.Scalar {
	t.Helper()
	s, err := xmrcrypto.RandomScalar()
	if err != nil {
		t.Fatalf("random scalar: %v", err)
	}
	return s
}

func randPoint(t *testing.T) *xmrcrypto.Point {
	t.Helper()
	return xmrcrypto.NewIdentityPoint().ScalarBaseMult(mustScalar(t))
}

func randAddress(t *testing.T) moneroutil.Address {
	t.Helper()
	return moneroutil.Address{SpendPub: randPoint(t), ViewPub: randPoint(t)}
}

// startSigner brings up a real signer.Server on a temp UDS socket, wired to
// a freshly minted wallet, and returns a dialed Client plus that wallet's
// spend/view secrets so the test can mine an input that belongs to it.
func startSigner(t *testing.T) (*signer.Client, moneroutil.Credentials) {
	t.Helper()

	spendSecret := mustScalar(t)
	viewSecret := mustScalar(t)
	seed := append(append([]byte{}, spendSecret.Bytes()...), viewSecret.Bytes()...)

	vault, err := walletcreds.NewVault(seed)
	if err != nil {
		t.Fatalf("new vault: %v", err)
	}
	creds := moneroutil.Credentials{
		SpendSecret: spendSecret, SpendPublic: vault.SpendPublic(),
		ViewSecret: viewSecret, ViewPublic: vault.ViewPublic(),
	}

	mgr := signer.NewManager(vault, signer.NewInMemoryNonceStore(), time.Minute)
	handler := signer.NewHandler(mgr)

	socketPath := filepath.Join(t.TempDir(), "signer.sock")
	srv, err := signer.New(socketPath, handler)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	go srv.Serve()
	t.Cleanup(srv.GracefulStop)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := signer.Dial(ctx, socketPath)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return client, creds
}

// mineSourceEntry builds a ring of ringSize decoys with one real output at
// realIdx that genuinely belongs to creds, the way a wallet's outputs table
// would present it to set_input.
func mineSourceEntry(t *testing.T, creds moneroutil.Credentials, amount uint64, ringSize, realIdx int) moneroutil.SourceEntry {
	t.Helper()
	r := mustScalar(t)
	txPub := xmrcrypto.NewIdentityPoint().ScalarBaseMult(r)
	derivation := moneroutil.GenerateKeyDerivation(txPub, creds.ViewSecret)
	const outIdx = uint32(0)
	outKey := moneroutil.DerivePublicKey(derivation, uint64(outIdx), creds.SpendPublic)
	mask := mustScalar(t)
	commitment := xmrcrypto.PedersenCommit(mask, xmrcrypto.ScalarFromUint64(amount))

	outputs := make([]moneroutil.SourceOutput, ringSize)
	for i := range outputs {
		if i == realIdx {
			outputs[i] = moneroutil.SourceOutput{GlobalIndex: uint64(i), Dest: outKey, Mask: commitment}
		} else {
			outputs[i] = moneroutil.SourceOutput{GlobalIndex: uint64(i), Dest: randPoint(t), Mask: randPoint(t)}
		}
	}
	return moneroutil.SourceEntry{
		Amount:              amount,
		Outputs:             outputs,
		RealOutput:          realIdx,
		RealOutTxKey:        txPub,
		RealOutputInTxIndex: outIdx,
		Mask:                mask,
		RCT:                 true,
	}
}

func TestOrchestrateFullRCTSingleInput(t *testing.T) {
	client, creds := startSigner(t)
	src := mineSourceEntry(t, creds, 30, 5, 2)

	tsxData := moneroutil.TsxData{
		Version: 2,
		Outputs: []moneroutil.Destination{
			{Amount: 20, Addr: randAddress(t)},
			{Amount: 9, Addr: randAddress(t)},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tx, err := Orchestrate(ctx, client, tsxData, []moneroutil.SourceEntry{src}, 0, nil)
	if err != nil {
		t.Fatalf("orchestrate: %v", err)
	}
	if len(tx.Vin) != 1 {
		t.Fatalf("expected 1 vin, got %d", len(tx.Vin))
	}
	if len(tx.Vout) != 2 {
		t.Fatalf("expected 2 vout, got %d", len(tx.Vout))
	}
	if tx.RctSigs.Type != rctTypeFull {
		t.Fatalf("expected Full RCT for a single input, got type %d", tx.RctSigs.Type)
	}
	if len(tx.RctSigs.MGs) != 1 {
		t.Fatalf("expected 1 MLSAG signature, got %d", len(tx.RctSigs.MGs))
	}
	if len(tx.RctSigs.OutPk) != 2 || len(tx.RctSigs.EcdhInfo) != 2 {
		t.Fatalf("expected assembly material for 2 outputs, got outPk=%d ecdh=%d", len(tx.RctSigs.OutPk), len(tx.RctSigs.EcdhInfo))
	}
	if tx.RctSigs.Message == ([32]byte{}) {
		t.Fatal("expected a non-zero tx_prefix_hash")
	}
}

func TestOrchestrateSimpleRCTTwoInputsPermutation(t *testing.T) {
	client, creds := startSigner(t)
	sources := []moneroutil.SourceEntry{
		mineSourceEntry(t, creds, 10, 5, 0),
		mineSourceEntry(t, creds, 20, 5, 3),
	}

	tsxData := moneroutil.TsxData{
		Version: 2,
		Outputs: []moneroutil.Destination{
			{Amount: 15, Addr: randAddress(t)},
			{Amount: 13, Addr: randAddress(t)},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tx, err := Orchestrate(ctx, client, tsxData, sources, 0, nil)
	if err != nil {
		t.Fatalf("orchestrate: %v", err)
	}
	if tx.RctSigs.Type != rctTypeSimple {
		t.Fatalf("expected Simple RCT for 2 inputs, got type %d", tx.RctSigs.Type)
	}
	if len(tx.RctSigs.MGs) != 2 || len(tx.RctSigs.PseudoOuts) != 2 {
		t.Fatalf("expected 2 signatures and 2 pseudo-outs, got MGs=%d pseudoOuts=%d", len(tx.RctSigs.MGs), len(tx.RctSigs.PseudoOuts))
	}
	// vin order must be sorted by key image descending.
	if bytes.Compare(tx.Vin[0].KeyImage[:], tx.Vin[1].KeyImage[:]) < 0 {
		t.Fatal("expected vin to be sorted by key image descending")
	}
}
