package config

import "testing"

func TestDemoAccounts_SeedsDistinctFundedAddresses(t *testing.T) {
	accounts, err := DemoAccounts()
	if err != nil {
		t.Fatalf("demo accounts: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("len(accounts) = %d, want 2", len(accounts))
	}
	for addr, acct := range accounts {
		if acct.Balance.Cmp(DemoBalance) != 0 {
			t.Errorf("account %s balance = %s, want %s", addr, acct.Balance, DemoBalance)
		}
	}
}

func TestDemoAliceKey_IsDeterministic(t *testing.T) {
	k1, err := DemoAliceKey()
	if err != nil {
		t.Fatalf("demo alice key: %v", err)
	}
	k2, err := DemoAliceKey()
	if err != nil {
		t.Fatalf("demo alice key: %v", err)
	}
	if k1.Address() != k2.Address() {
		t.Error("demo alice key is not deterministic across calls")
	}
}
