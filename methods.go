// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package securerpc

import "context"

// Wire method names. Some differ from the Go method name because the server
// versions them.
const (
	MethodDeploy                       = "deploy"
	MethodExecute                      = "execute"
	MethodTransfer                     = "transfer"
	MethodJoin                         = "join"
	MethodSplit                        = "split"
	MethodDeploymentCost               = "deployment_cost"
	MethodExecutionCost                = "execution_costv2"
	MethodDecryptRecords               = "decrypt_recordsv2"
	MethodTransactionFromAuthorization = "transaction_from_authorization"
	MethodDeployFromAuthorization      = "deploy_from_authorization"
	MethodUpdate                       = "update"
)

func callString(ctx context.Context, c *Client, method string, params interface{}) (string, error) {
	var out string
	if err := c.Call(ctx, method, params, &out); err != nil {
		return "", err
	}
	return out, nil
}

// Deploy deploys a program and returns the transaction.
func (c *Client) Deploy(ctx context.Context, p *DeployParams) (string, error) {
	return callString(ctx, c, MethodDeploy, p)
}

// Execute runs a program function and returns the transaction.
func (c *Client) Execute(ctx context.Context, p *ExecuteParams) (string, error) {
	return callString(ctx, c, MethodExecute, p)
}

func (c *Client) Transfer(ctx context.Context, p *TransferParams) (string, error) {
	return callString(ctx, c, MethodTransfer, p)
}

func (c *Client) Join(ctx context.Context, p *JoinParams) (string, error) {
	return callString(ctx, c, MethodJoin, p)
}

func (c *Client) Split(ctx context.Context, p *SplitParams) (string, error) {
	return callString(ctx, c, MethodSplit, p)
}

// DeploymentCost returns the fee for deploying a program.
func (c *Client) DeploymentCost(ctx context.Context, p *DeploymentCostParams) (string, error) {
	return callString(ctx, c, MethodDeploymentCost, p)
}

// ExecutionCost returns the fee for executing a program function.
func (c *Client) ExecutionCost(ctx context.Context, p *ExecutionCostParams) (string, error) {
	return callString(ctx, c, MethodExecutionCost, p)
}

// DecryptRecords decrypts records with a view key, one plaintext per record.
func (c *Client) DecryptRecords(ctx context.Context, p *DecryptRecordsParams) ([]string, error) {
	var out []string
	if err := c.Call(ctx, MethodDecryptRecords, p, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TransactionFromAuthorization builds an execution from pre-signed authorizations.
func (c *Client) TransactionFromAuthorization(ctx context.Context, p *TransactionFromAuthorizationParams) (string, error) {
	return callString(ctx, c, MethodTransactionFromAuthorization, p)
}

// DeployFromAuthorization builds a deployment from a pre-signed fee authorization.
func (c *Client) DeployFromAuthorization(ctx context.Context, p *DeployFromAuthorizationParams) (string, error) {
	return callString(ctx, c, MethodDeployFromAuthorization, p)
}

// Update asks the server to prompt its operator to upgrade to p.Version.
func (c *Client) Update(ctx context.Context, p *UpdateParams) error {
	return c.Call(ctx, MethodUpdate, p, nil)
}
