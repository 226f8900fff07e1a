package sqlite

import "database/sql"

// Amounts are stored as decimal strings so no precision is lost; dates are
// stored as TEXT in YYYY-MM-DD form.
func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL DEFAULT '',
		base_currency TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		password_salt TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	);

	CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id),
		name TEXT NOT NULL,
		account_type TEXT NOT NULL,
		balance TEXT NOT NULL,
		currency TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id),
		account_id INTEGER NOT NULL REFERENCES accounts(id),
		txn_date TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		amount TEXT NOT NULL,
		txn_type TEXT NOT NULL,
		category TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	);

	CREATE TABLE IF NOT EXISTS statement_documents (
		document_id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id),
		account_id INTEGER NOT NULL REFERENCES accounts(id),
		gcs_uri TEXT NOT NULL,
		original_filename TEXT NOT NULL DEFAULT '',
		uploaded_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS import_runs (
		import_run_id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL REFERENCES statement_documents(document_id),
		started_at TEXT NOT NULL,
		finished_at TEXT,
		status TEXT NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		imported_count INTEGER,
		skipped_count INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_accounts_user_id ON accounts(user_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_account_id ON transactions(account_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, txn_date);
	CREATE INDEX IF NOT EXISTS idx_import_runs_document ON import_runs(document_id);
	`

	_, err := db.Exec(schema)
	return err
}
