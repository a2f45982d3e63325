// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package securerpc

// Parameter records for the typed methods. The server takes positional
// parameters, so field order is part of the wire format: do not reorder fields.
// Optional values are pointers or maps and travel as null when unset.

// Ptr returns a pointer to v, for optional parameter fields.
func Ptr[T any](v T) *T { return &v }

type DeployParams struct {
	PrivateKey                string            `json:"private_key"`
	Program                   string            `json:"program"`
	FeeRecord                 *string           `json:"fee_record"`
	Imports                   map[string]string `json:"imports"`
	PriorityFeeInMicrocredits *uint64           `json:"priority_fee_in_microcredits"`
	Query                     *string           `json:"query"`
}

type ExecuteParams struct {
	PrivateKey string   `json:"private_key"`
	ProgramID  string   `json:"program_id"`
	Function   string   `json:"function"`
	Inputs     []string `json:"inputs"`
	FeeRecord  *string  `json:"fee_record"`
	Fee        *uint64  `json:"fee"`
	Query      *string  `json:"query"`
}

// TransferKind selects which balances a transfer moves between.
type TransferKind string

const (
	TransferPrivate         TransferKind = "private"
	TransferPublic          TransferKind = "public"
	TransferPrivateToPublic TransferKind = "private_to_public"
	TransferPublicToPrivate TransferKind = "public_to_private"
)

type TransferParams struct {
	PrivateKey  string       `json:"private_key"`
	Recipient   string       `json:"recipient"`
	Amount      uint64       `json:"amount"`
	Function    TransferKind `json:"function"`
	InputRecord *string      `json:"input_record"`
	FeeRecord   *string      `json:"fee_record"`
	Fee         *uint64      `json:"fee"`
	Query       *string      `json:"query"`
}

type JoinParams struct {
	PrivateKey   string  `json:"private_key"`
	FirstRecord  string  `json:"first_record"`
	SecondRecord string  `json:"second_record"`
	FeeRecord    *string `json:"fee_record"`
	Fee          *uint64 `json:"fee"`
	Query        *string `json:"query"`
}

type SplitParams struct {
	PrivateKey string  `json:"private_key"`
	Record     string  `json:"record"`
	Amount     uint64  `json:"amount"`
	Query      *string `json:"query"`
}

type DeploymentCostParams struct {
	Program string            `json:"program"`
	Imports map[string]string `json:"imports"`
}

type ExecutionCostParams struct {
	ProgramID string   `json:"program_id"`
	Function  string   `json:"function"`
	Inputs    []string `json:"inputs"`
	Query     *string  `json:"query"`
}

type DecryptRecordsParams struct {
	ViewKey string   `json:"view_key"`
	Records []string `json:"records"`
}

type TransactionFromAuthorizationParams struct {
	ProgramID            string  `json:"program_id"`
	ExecuteAuthorization string  `json:"execute_authorization_str"`
	FeeAuthorization     string  `json:"fee_authorization_str"`
	Query                *string `json:"query"`
}

type DeployFromAuthorizationParams struct {
	Program          string            `json:"program"`
	Imports          map[string]string `json:"imports"`
	Owner            string            `json:"owner_str"`
	FeeAuthorization string            `json:"fee_authorization_str"`
	Query            *string           `json:"query"`
}

type UpdateParams struct {
	Version string `json:"version"`
}
