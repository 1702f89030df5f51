package logging

// Standardized field names for structured logging.
// These constants keep ledger log lines filterable by the same keys
// whichever component (store, ledger, api) emits them.
const (
	FieldFile          = "file_path"
	FieldTransactionID = "transaction_id"
	FieldDivision      = "division"
	FieldType          = "type"
	FieldAmount        = "amount"
	FieldBalance       = "balance"
	FieldReason        = "reason"
	FieldOperation     = "operation"
	FieldStatus        = "status"
	FieldError         = "error"
	FieldDuration      = "duration_ms"
	FieldCount         = "count"
	FieldVersion       = "schema_version"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldRemoteAddr    = "remote_addr"
)
