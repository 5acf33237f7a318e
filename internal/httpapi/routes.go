package httpapi

// Route-name constants mirror the teacher's exported `var X = "METHOD
// /path"` convention (handler.Authenticate, handler.GetTransactions, ...),
// renamed to the relay's own route table (§6) and to the asset-naming
// style GoPolymarket-go-builder-relayer-client uses for its endpoints
// (/nonce, /transaction, /transactions, /submit).
var (
	SubmitRelay    = "POST /relay"
	GetRelayStatus = "GET /relay/{txHash}"
	ListByAccount  = "GET /relay/by-account/{address}"
	GetRelayRLP    = "GET /relay/rlp/{rlpHex}"

	AdminLogin        = "POST /admin/login"
	ListPolicyRules   = "GET /admin/policy-rules"
	CreatePolicyRule  = "POST /admin/policy-rules"
	UpdatePolicyRule  = "PUT /admin/policy-rules/{id}"
	DeletePolicyRule  = "DELETE /admin/policy-rules/{id}"
	ReloadPolicyRules = "POST /admin/policy-rules/reload"

	Livez  = "GET /livez"
	Readyz = "GET /readyz"
)
