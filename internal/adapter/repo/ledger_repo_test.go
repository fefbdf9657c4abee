package repo

import (
	"strings"
	"testing"
)

func TestGemTransactionInsertBindsCreatedAt(t *testing.T) {
	if !strings.Contains(insertGemTransactionSQL, "created_at") {
		t.Fatal("ledger insert must name created_at; the rate-limit window filters on it")
	}
	if !strings.Contains(insertGemTransactionSQL, "$7") {
		t.Fatal("created_at must be bound as an explicit parameter, not left to a column default")
	}
}
