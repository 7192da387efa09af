package hcl

import "github.com/hashicorp/hcl/v2"

// --- HCL schema for a matrix description ---

// envBlock captures the attributes of an `env` block; attribute values
// are evaluated as expressions and converted to strings.
type envBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// toolchainBlock is one `toolchain "<label>" {}` row.
type toolchainBlock struct {
	Label string `hcl:"label,label"`
	Tag   string `hcl:"tag,optional"`
}

// includeBlock is one explicit, additive `include` row.
type includeBlock struct {
	Toolchain    string    `hcl:"toolchain,optional"`
	Tag          string    `hcl:"tag,optional"`
	Env          *envBlock `hcl:"env,block"`
	BeforeScript []string  `hcl:"before_script,optional"`
	Script       []string  `hcl:"script,optional"`
	AllowFailure bool      `hcl:"allow_failure,optional"`
}

// allowFailureBlock is one `allow_failure` predicate, matching shards by
// resolved attributes.
type allowFailureBlock struct {
	Toolchain string `hcl:"toolchain,optional"`
	Tag       string `hcl:"tag,optional"`
}

// matrixBlock is the `matrix` block with rows and policy.
type matrixBlock struct {
	Toolchains    []*toolchainBlock    `hcl:"toolchain,block"`
	Include       []*includeBlock      `hcl:"include,block"`
	AllowFailures []*allowFailureBlock `hcl:"allow_failure,block"`
	FastFinish    bool                 `hcl:"fast_finish,optional"`
}

// rootSchema is the top-level structure of a matrix description file.
type rootSchema struct {
	Env          *envBlock    `hcl:"env,block"`
	BeforeScript []string     `hcl:"before_script,optional"`
	Script       []string     `hcl:"script,optional"`
	Matrix       *matrixBlock `hcl:"matrix,block"`
}
