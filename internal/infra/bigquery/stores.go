package bigquery

import (
	"github.com/moneyapps/ledger/internal/auth"
	"github.com/moneyapps/ledger/internal/importer"
	"github.com/moneyapps/ledger/internal/ledger"
)

// Ensure the stores satisfy the service interfaces.
var (
	_ ledger.AccountStore     = (*AccountStore)(nil)
	_ ledger.TransactionStore = (*TransactionStore)(nil)
	_ auth.UserStore          = (*UserStore)(nil)
	_ importer.RunStore       = (*RunStore)(nil)
)
