package api

const (
	// PingEndpoint is the endpoint for checking the API status
	PingEndpoint = "/ping"
	// LayoutsEndpoint lists the names of the loaded layouts
	LayoutsEndpoint = "/layouts"
	// LayoutEndpoint describes the groups and state slots of a layout
	LayoutURLParam = "name"
	LayoutEndpoint = "/layouts/{" + LayoutURLParam + "}"
	// LayoutCircuitEndpoint returns the generated circuit source of a layout
	LayoutCircuitEndpoint = "/layouts/{" + LayoutURLParam + "}/circuit"
	// WitnessesEndpoint builds and stores a witness (POST) or lists the
	// stored ones (GET)
	WitnessesEndpoint = "/witnesses"
	// WitnessEndpoint returns a stored witness
	TransactionIDURLParam = "txid"
	WitnessEndpoint       = "/witnesses/{" + TransactionIDURLParam + "}"
	// WitnessPublicEndpoint returns the public input of a stored witness
	WitnessPublicEndpoint = "/witnesses/{" + TransactionIDURLParam + "}/public"
	// WitnessVerifyEndpoint verifies a public input against a stored witness
	WitnessVerifyEndpoint = "/witnesses/{" + TransactionIDURLParam + "}/verify"
	// OutputsRootEndpoint returns the root of the committed outputs tree
	OutputsRootEndpoint = "/outputs/root"
	// OutputEndpoint returns the leaf hash committed for an output
	OutputIndexURLParam = "index"
	OutputEndpoint      = "/outputs/{" + TransactionIDURLParam + "}/{" + OutputIndexURLParam + "}"
)
