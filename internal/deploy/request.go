package deploy

type (
	// Block is one canvas block descriptor, carried opaquely into the
	// deployment record. The builder UI owns its meaning.
	Block struct {
		Kind   string            `json:"kind"`
		Label  string            `json:"label"`
		Params map[string]string `json:"params,omitempty"`
	}

	// Request is the immutable input of one deployment run.
	Request struct {
		UserID        string  `json:"userId"`
		Address       string  `json:"address"`
		Network       string  `json:"network"`
		ContractName  string  `json:"contractName"`
		TokenName     string  `json:"tokenName"`
		TokenSymbol   string  `json:"tokenSymbol"`
		InitialSupply string  `json:"initialSupply"`
		SourceCode    string  `json:"sourceCode,omitempty"`
		Blocks        []Block `json:"blocks,omitempty"`
	}

	// StageResult records one confirmed pipeline stage.
	StageResult struct {
		Name   string `json:"name"`
		TxHash string `json:"txHash"`
	}

	// Result is the outcome of one deployment run. Simulated marks the
	// offline placeholder path; a real on-chain run always carries an
	// explorer URL.
	Result struct {
		ContractID  string        `json:"contractId"`
		TxHash      string        `json:"txHash"`
		ExplorerURL string        `json:"explorerUrl,omitempty"`
		Simulated   bool          `json:"simulated"`
		Stages      []StageResult `json:"stages,omitempty"`
	}
)
